package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"votearena/internal/apperr"
	"votearena/internal/fixtures"

	"github.com/gin-gonic/gin"
)

// FixtureHandler exposes the fixture browse endpoint: a cached passthrough to
// the external provider.
type FixtureHandler struct {
	client *fixtures.Client
	cache  *fixtures.Cache
}

func NewFixtureHandler(client *fixtures.Client, cache *fixtures.Cache) *FixtureHandler {
	return &FixtureHandler{client: client, cache: cache}
}

// GetFixturesByDateRange lists fixtures between two dates
// GET /api/fixtures?date_from=&date_to=
func (h *FixtureHandler) GetFixturesByDateRange(c *gin.Context) {
	dateFrom := c.Query("date_from")
	dateTo := c.Query("date_to")

	if dateFrom == "" || dateTo == "" {
		respondError(c, apperr.Validation("Both 'date_from' and 'date_to' are required."))
		return
	}

	key := fmt.Sprintf("%s_%s", dateFrom, dateTo)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"source":  "cache",
			"data":    cached.(json.RawMessage),
		})
		return
	}

	data, err := h.client.GetFixturesBetween(c.Request.Context(), dateFrom, dateTo)
	if err != nil {
		respondError(c, apperr.Upstream("Failed to fetch fixtures", err))
		return
	}
	h.cache.Set(key, data)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"source":  "live",
		"data":    data,
	})
}
