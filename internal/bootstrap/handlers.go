package bootstrap

import (
	"github.com/talhabinjaved/HireMatch/internal/handlers"
	"github.com/talhabinjaved/HireMatch/internal/services"
)

// handlerSet groups all HTTP handlers
type handlerSet struct {
	token     *handlers.TokenHandler
	auth      *handlers.AuthHandler
	client    *handlers.ClientHandler
	analytics *handlers.AnalyticsHandler
	documents *handlers.DocumentHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	tokenService *services.TokenService,
	adminService *services.AdminService,
	clientService *services.ClientService,
	usageService *services.UsageService,
	documentService *services.DocumentService,
) handlerSet {
	return handlerSet{
		token:     handlers.NewTokenHandler(tokenService),
		auth:      handlers.NewAuthHandler(adminService),
		client:    handlers.NewClientHandler(clientService, tokenService),
		analytics: handlers.NewAnalyticsHandler(usageService, clientService),
		documents: handlers.NewDocumentHandler(documentService),
	}
}
