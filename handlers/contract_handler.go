package handlers

import (
	"errors"
	"net/http"

	"clausecheck-backend/models"
	"clausecheck-backend/service"

	"github.com/gin-gonic/gin"
)

// ContractHandler handles HTTP requests for contract generation
type ContractHandler struct {
	contractService *service.ContractService
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// GenerateContractRequest represents the request body for contract generation
type GenerateContractRequest struct {
	PartyA       string `json:"party_a" binding:"required"`
	PartyB       string `json:"party_b" binding:"required"`
	Duration     string `json:"duration" binding:"required"`
	Jurisdiction string `json:"jurisdiction"`
	ContractType string `json:"contract_type" binding:"required"`
	ClauseQuery  string `json:"clause_query"`

	Position         string `json:"position"`
	PropertyAddress  string `json:"property_address"`
	GoodsDescription string `json:"goods_description"`
	Scope            string `json:"scope"`
}

// Generate handles POST /contract/generate
func (h *ContractHandler) Generate(c *gin.Context) {
	var req GenerateContractRequest
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

	clauseQuery := req.ClauseQuery
	if clauseQuery == "" {
		clauseQuery = req.ContractType + " agreement standard clause"
	}

	serviceReq := models.ContractRequest{
		PartyA:           req.PartyA,
		PartyB:           req.PartyB,
		Duration:         req.Duration,
		Jurisdiction:     req.Jurisdiction,
		ContractType:     models.ContractType(req.ContractType),
		ClauseQuery:      clauseQuery,
		Position:         req.Position,
		PropertyAddress:  req.PropertyAddress,
		GoodsDescription: req.GoodsDescription,
		Scope:            req.Scope,
	}

	result, err := h.contractService.Generate(c.Request.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, service.ErrUnknownContractType) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_CONTRACT_TYPE",
					"message": "Unsupported contract type: " + req.ContractType,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GENERATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}
