package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talhabinjaved/HireMatch/internal/services"
)

type AnalyticsHandler struct {
	usageService  *services.UsageService
	clientService *services.ClientService
}

func NewAnalyticsHandler(us *services.UsageService, cs *services.ClientService) *AnalyticsHandler {
	return &AnalyticsHandler{
		usageService:  us,
		clientService: cs,
	}
}

// ClientAnalytics returns a per-client usage summary over the last N days
func (h *AnalyticsHandler) ClientAnalytics(c *gin.Context) {
	clientID := c.Param("client_id")

	if _, err := h.clientService.Get(clientID); err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":             "not_found",
				"error_description": "Client not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to load client",
		})
		return
	}

	summary, err := h.usageService.ClientSummary(clientID, windowStart(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to compute usage summary",
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Overview returns system-wide usage over the last N days
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.usageService.SystemOverview(windowStart(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to compute usage overview",
		})
		return
	}

	c.JSON(http.StatusOK, overview)
}

// windowStart reads ?days= and converts it to an absolute cutoff. Values
// outside 1..365 fall back to the 30 day default.
func windowStart(c *gin.Context) time.Time {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		days = 30
	}
	return time.Now().UTC().AddDate(0, 0, -days)
}
