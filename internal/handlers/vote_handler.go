package handlers

import (
	"net/http"
	"strconv"

	"votearena/internal/apperr"
	"votearena/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VoteHandler struct {
	voteService       *services.VoteService
	resolutionService *services.FixtureResolutionService
}

func NewVoteHandler(voteService *services.VoteService, resolutionService *services.FixtureResolutionService) *VoteHandler {
	return &VoteHandler{
		voteService:       voteService,
		resolutionService: resolutionService,
	}
}

// CastVote places a token-gated vote on a fixture
// POST /api/votes/cast
func (h *VoteHandler) CastVote(c *gin.Context) {
	var req struct {
		UserID    string `json:"userId" binding:"required"`
		FixtureID int64  `json:"fixtureId" binding:"required"`
		TeamVoted string `json:"teamVoted" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("userId, fixtureId and teamVoted are required."))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(c, apperr.Validation("Invalid user id."))
		return
	}

	result, err := h.voteService.CastVote(c.Request.Context(), userID, req.FixtureID, req.TeamVoted)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vote placed successfully",
		"data":    result,
	})
}

// GetUserVotes lists one user's fixture votes
// GET /api/votes/user/:userId
func (h *VoteHandler) GetUserVotes(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondError(c, apperr.Validation("Invalid user id."))
		return
	}

	votes, err := h.voteService.GetUserVotes(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    votes,
		"count":   len(votes),
	})
}

// ProcessFixtureResult triggers the oracle resolution pass for a fixture
// POST /api/fixtures/:fixtureId/process
func (h *VoteHandler) ProcessFixtureResult(c *gin.Context) {
	fixtureID, err := strconv.ParseInt(c.Param("fixtureId"), 10, 64)
	if err != nil || fixtureID <= 0 {
		respondError(c, apperr.Validation("Invalid fixture id."))
		return
	}

	summary, err := h.resolutionService.ProcessFixtureResult(c.Request.Context(), fixtureID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}
