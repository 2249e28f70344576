package bootstrap

import (
	"github.com/talhabinjaved/HireMatch/internal/cache"
	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/services"
	"github.com/talhabinjaved/HireMatch/internal/store"
	"github.com/talhabinjaved/HireMatch/internal/token"
)

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	clientCache cache.CacheWithFetch[models.Client],
	recorder metrics.Recorder,
) (*services.ClientService, *services.TokenService, *services.AdminService, *services.DocumentService, *services.Authenticator) {
	provider := token.NewProvider(cfg)

	clientService := services.NewClientService(db, cfg, clientCache, recorder)
	tokenService := services.NewTokenService(db, cfg, clientService, recorder)
	adminService := services.NewAdminService(db, cfg, provider, recorder)
	documentService := services.NewDocumentService(db)
	authenticator := services.NewAuthenticator(tokenService, adminService, provider)

	return clientService, tokenService, adminService, documentService, authenticator
}
