package handlers

import (
	"net/http"

	"votearena/internal/apperr"
	"votearena/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MarketHandler struct {
	marketService     *services.MarketService
	resolutionService *services.ResolutionService
}

func NewMarketHandler(marketService *services.MarketService, resolutionService *services.ResolutionService) *MarketHandler {
	return &MarketHandler{
		marketService:     marketService,
		resolutionService: resolutionService,
	}
}

// CreateMarket submits a new market
// POST /api/markets
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	var input services.CreateMarketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("Invalid request body."))
		return
	}

	market, err := h.marketService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    market,
	})
}

// GetMarkets lists markets filtered by realm and/or status. Listing first
// sweeps expired markets into pending_result.
// GET /api/markets?realm=&status=
func (h *MarketHandler) GetMarkets(c *gin.Context) {
	realm := c.Query("realm")
	status := c.Query("status")

	markets, err := h.marketService.List(c.Request.Context(), realm, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    markets,
		"count":   len(markets),
	})
}

// GetMarketByID returns a single market
// GET /api/markets/:id
func (h *MarketHandler) GetMarketByID(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("Invalid market id."))
		return
	}

	market, err := h.marketService.Get(c.Request.Context(), marketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    market,
	})
}

// Vote casts one identity's vote on a market option
// PUT /api/markets/:id/vote
func (h *MarketHandler) Vote(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("Invalid market id."))
		return
	}

	var input services.VoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("Missing required fields"))
		return
	}

	if err := h.marketService.Vote(c.Request.Context(), marketID, input); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vote recorded successfully",
	})
}

// UpdateStatus approves or rejects a pending market (admin only)
// PUT /api/markets/:id/status
func (h *MarketHandler) UpdateStatus(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("Invalid market id."))
		return
	}

	var input services.StatusUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("Invalid request body."))
		return
	}

	market, err := h.marketService.UpdateStatus(c.Request.Context(), marketID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    market,
	})
}

// MarkOutcome resolves a market with a winning option or "No Result" (admin only)
// PUT /api/markets/:id/outcome
func (h *MarketHandler) MarkOutcome(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("Invalid market id."))
		return
	}

	var req struct {
		WinningOptionID string `json:"winningOptionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("winningOptionId is required."))
		return
	}

	market, err := h.resolutionService.MarkOutcome(c.Request.Context(), marketID, req.WinningOptionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    market,
	})
}
