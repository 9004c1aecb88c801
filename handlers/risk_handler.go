package handlers

import (
	"errors"
	"net/http"

	"clausecheck-backend/extraction"
	"clausecheck-backend/service"

	"github.com/gin-gonic/gin"
)

// RiskHandler handles HTTP requests for risk analysis
type RiskHandler struct {
	analysisService *service.AnalysisService
	extractor       extraction.Service
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(analysisService *service.AnalysisService, extractor extraction.Service) *RiskHandler {
	return &RiskHandler{
		analysisService: analysisService,
		extractor:       extractor,
	}
}

// CheckViolation handles POST /risk/check_violation
func (h *RiskHandler) CheckViolation(c *gin.Context) {
	var req CheckViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	report := h.analysisService.CategorizeClauses(c.Request.Context(), req.Clauses)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// Upload handles POST /risk/upload. Unlike the compliance flow, clause
// segmentation is delegated to the reasoning model.
func (h *RiskHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	text, err := h.extractor.ExtractText(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, extraction.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_TEXT",
					"message": "No text could be extracted. The document may be scanned or image-only.",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXTRACTION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	clauses, err := h.analysisService.ExtractClauses(c.Request.Context(), text)
	if err != nil {
		if errors.Is(err, service.ErrClauseExtractionFailed) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PARSE_FAILED",
					"message": "Failed to parse AI response.",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CLAUSE_EXTRACTION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	report := h.analysisService.CategorizeClauses(c.Request.Context(), clauses)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}
