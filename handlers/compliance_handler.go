package handlers

import (
	"errors"
	"net/http"

	"clausecheck-backend/extraction"
	"clausecheck-backend/service"

	"github.com/gin-gonic/gin"
)

// ComplianceHandler handles HTTP requests for compliance analysis
type ComplianceHandler struct {
	analysisService *service.AnalysisService
	extractor       extraction.Service
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(analysisService *service.AnalysisService, extractor extraction.Service) *ComplianceHandler {
	return &ComplianceHandler{
		analysisService: analysisService,
		extractor:       extractor,
	}
}

// CheckViolationRequest represents the request body for compliance checks
type CheckViolationRequest struct {
	Clauses []string `json:"clauses" binding:"required"`
}

// CheckViolation handles POST /compliance/check_violation
func (h *ComplianceHandler) CheckViolation(c *gin.Context) {
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

	results := h.analysisService.CheckClauses(c.Request.Context(), req.Clauses)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}

// Upload handles POST /compliance/upload
func (h *ComplianceHandler) Upload(c *gin.Context) {
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

	clauses := h.analysisService.SegmentText(text)
	results := h.analysisService.CheckClauses(c.Request.Context(), clauses)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}
