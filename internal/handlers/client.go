package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talhabinjaved/HireMatch/internal/middleware"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/services"
	"github.com/talhabinjaved/HireMatch/internal/store"
)

type ClientHandler struct {
	clientService *services.ClientService
	tokenService  *services.TokenService
}

func NewClientHandler(cs *services.ClientService, ts *services.TokenService) *ClientHandler {
	return &ClientHandler{
		clientService: cs,
		tokenService:  ts,
	}
}

// clientJSON is the wire shape of a client record. The secret hash never
// leaves the server.
type clientJSON struct {
	ClientID         string     `json:"client_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Scopes           string     `json:"scopes"`
	RateLimitPerHour int        `json:"rate_limit_per_hour"`
	IsActive         bool       `json:"is_active"`
	CreatedBy        string     `json:"created_by,omitempty"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toClientJSON(client *models.Client) clientJSON {
	return clientJSON{
		ClientID:         client.ClientID,
		Name:             client.Name,
		Description:      client.Description,
		Scopes:           client.Scopes,
		RateLimitPerHour: client.RateLimitPerHour,
		IsActive:         client.IsActive,
		CreatedBy:        client.CreatedBy,
		LastUsedAt:       client.LastUsedAt,
		CreatedAt:        client.CreatedAt,
		UpdatedAt:        client.UpdatedAt,
	}
}

type tokenJSON struct {
	ID         string     `json:"id"`
	TokenHash  string     `json:"token_hash"`
	TokenType  string     `json:"token_type"`
	Status     string     `json:"status"`
	Scopes     string     `json:"scopes"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Create registers a new client. The plaintext secret appears in this
// response and nowhere else, ever.
func (h *ClientHandler) Create(c *gin.Context) {
	var req struct {
		Name             string `json:"name" binding:"required"`
		Description      string `json:"description"`
		Scopes           string `json:"scopes"`
		RateLimitPerHour int    `json:"rate_limit_per_hour"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "name is required",
		})
		return
	}

	createdBy := ""
	if principal, ok := middleware.GetPrincipal(c); ok {
		if adminPrincipal, ok := principal.(services.AdminPrincipal); ok {
			createdBy = adminPrincipal.Admin.Username
		}
	}

	resp, err := h.clientService.Create(services.CreateClientRequest{
		Name:             req.Name,
		Description:      req.Description,
		Scopes:           req.Scopes,
		RateLimitPerHour: req.RateLimitPerHour,
		CreatedBy:        createdBy,
	})
	if err != nil {
		h.clientError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client":        toClientJSON(resp.Client),
		"client_secret": resp.ClientSecretPlain,
	})
}

// List returns a page of clients
func (h *ClientHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	clients, pagination, err := h.clientService.List(store.NewPaginationParams(page, perPage))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to list clients",
		})
		return
	}

	out := make([]clientJSON, 0, len(clients))
	for i := range clients {
		out = append(out, toClientJSON(&clients[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": out,
		"pagination": gin.H{
			"total":        pagination.Total,
			"total_pages":  pagination.TotalPages,
			"current_page": pagination.CurrentPage,
			"page_size":    pagination.PageSize,
			"has_prev":     pagination.HasPrev,
			"has_next":     pagination.HasNext,
		},
	})
}

// Get returns one client by ID
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.clientService.Get(c.Param("client_id"))
	if err != nil {
		h.clientError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": toClientJSON(client)})
}

// Update edits a client's registration
func (h *ClientHandler) Update(c *gin.Context) {
	var req struct {
		Name             string `json:"name" binding:"required"`
		Description      string `json:"description"`
		Scopes           string `json:"scopes"`
		RateLimitPerHour int    `json:"rate_limit_per_hour"`
		IsActive         *bool  `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "name and is_active are required",
		})
		return
	}

	client, err := h.clientService.Update(c.Param("client_id"), services.UpdateClientRequest{
		Name:             req.Name,
		Description:      req.Description,
		Scopes:           req.Scopes,
		RateLimitPerHour: req.RateLimitPerHour,
		IsActive:         *req.IsActive,
	})
	if err != nil {
		h.clientError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": toClientJSON(client)})
}

// Delete deactivates a client. With ?hard=true the record and its documents
// are removed outright; either way every outstanding token stops validating.
func (h *ClientHandler) Delete(c *gin.Context) {
	clientID := c.Param("client_id")

	if c.Query("hard") == "true" {
		if err := h.clientService.Delete(clientID); err != nil {
			h.clientError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	client, err := h.clientService.Deactivate(clientID)
	if err != nil {
		h.clientError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": toClientJSON(client)})
}

// RegenerateSecret rotates a client's secret and revokes its tokens
func (h *ClientHandler) RegenerateSecret(c *gin.Context) {
	resp, err := h.clientService.RegenerateSecret(c.Param("client_id"))
	if err != nil {
		h.clientError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client":        toClientJSON(resp.Client),
		"client_secret": resp.ClientSecretPlain,
	})
}

// ListTokens returns a client's tokens. Only hashes are stored, so only
// hashes can be shown.
func (h *ClientHandler) ListTokens(c *gin.Context) {
	clientID := c.Param("client_id")

	if _, err := h.clientService.Get(clientID); err != nil {
		h.clientError(c, err)
		return
	}

	tokens, err := h.tokenService.ListForClient(clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to list tokens",
		})
		return
	}

	out := make([]tokenJSON, 0, len(tokens))
	for _, accessToken := range tokens {
		out = append(out, tokenJSON{
			ID:         accessToken.ID,
			TokenHash:  accessToken.TokenHash,
			TokenType:  accessToken.TokenType,
			Status:     accessToken.Status,
			Scopes:     accessToken.Scopes,
			ExpiresAt:  accessToken.ExpiresAt,
			CreatedAt:  accessToken.CreatedAt,
			LastUsedAt: accessToken.LastUsedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"tokens": out})
}

// RevokeTokens revokes every outstanding token of a client
func (h *ClientHandler) RevokeTokens(c *gin.Context) {
	clientID := c.Param("client_id")

	if _, err := h.clientService.Get(clientID); err != nil {
		h.clientError(c, err)
		return
	}

	revoked, err := h.tokenService.RevokeAllForClient(clientID, "admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to revoke tokens",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked": revoked})
}

func (h *ClientHandler) clientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "Client not found",
		})
	case errors.Is(err, services.ErrClientNameRequired),
		errors.Is(err, services.ErrUnknownScope):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Operation failed",
		})
	}
}
