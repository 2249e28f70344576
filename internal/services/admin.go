package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/store"
	"github.com/talhabinjaved/HireMatch/internal/token"
	"github.com/talhabinjaved/HireMatch/internal/util"
)

var (
	// ErrInvalidCredentials covers unknown usernames, wrong passwords and
	// deactivated admins alike
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAdminNotFound indicates no super admin exists for the given ID
	ErrAdminNotFound = errors.New("super admin not found")

	// ErrAdminExists indicates the username or email is already taken
	ErrAdminExists = errors.New("super admin already exists")

	// ErrAdminFieldsRequired indicates a create request with blank fields
	ErrAdminFieldsRequired = errors.New("username, email and password are required")
)

// AdminService authenticates super admins and manages their JWT sessions
type AdminService struct {
	store    *store.Store
	config   *config.Config
	provider *token.Provider
	metrics  metrics.Recorder
}

// NewAdminService creates a new admin service
func NewAdminService(s *store.Store, cfg *config.Config, p *token.Provider, m metrics.Recorder) *AdminService {
	return &AdminService{
		store:    s,
		config:   cfg,
		provider: p,
		metrics:  m,
	}
}

// Login verifies a username and password and mints a JWT pair. Unknown
// usernames, wrong passwords and deactivated admins all return
// ErrInvalidCredentials.
func (s *AdminService) Login(ctx context.Context, username, password string) (*token.Pair, *models.SuperAdmin, error) {
	admin, err := s.store.GetSuperAdminByUsername(username)
	if err != nil {
		util.VerifySecret(password, dummySecretHash)
		s.metrics.RecordAdminLogin(false)
		return nil, nil, ErrInvalidCredentials
	}

	if !util.VerifySecret(password, admin.PasswordHash) {
		s.metrics.RecordAdminLogin(false)
		return nil, nil, ErrInvalidCredentials
	}

	if !admin.IsActive {
		s.metrics.RecordAdminLogin(false)
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.provider.GeneratePair(admin.ID, admin.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	s.metrics.RecordAdminLogin(true)
	return pair, admin, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The admin record
// is re-checked so a deactivated admin cannot refresh their way back in.
func (s *AdminService) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	claims, err := s.provider.VerifyRefresh(refreshToken)
	if err != nil {
		s.metrics.RecordAdminRefresh(false)
		return nil, err
	}

	admin, err := s.store.GetSuperAdminByID(claims.AdminID)
	if err != nil || !admin.IsActive {
		s.metrics.RecordAdminRefresh(false)
		return nil, token.ErrInvalidRefreshToken
	}

	pair, err := s.provider.GeneratePair(admin.ID, admin.Username)
	if err != nil {
		s.metrics.RecordAdminRefresh(false)
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	s.metrics.RecordAdminRefresh(true)
	return pair, nil
}

// GetByID fetches a super admin by ID
func (s *AdminService) GetByID(id string) (*models.SuperAdmin, error) {
	admin, err := s.store.GetSuperAdminByID(id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// CreateSuperAdmin registers a new super admin. Used by the create-admin
// command and the first-run bootstrap.
func (s *AdminService) CreateSuperAdmin(username, email, password string) (*models.SuperAdmin, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrAdminFieldsRequired
	}

	passwordHash, err := util.HashSecret(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.SuperAdmin{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := s.store.CreateSuperAdmin(admin); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("failed to save super admin: %w", err)
	}

	return admin, nil
}

// Count returns the number of super admins
func (s *AdminService) Count() (int64, error) {
	return s.store.CountSuperAdmins()
}
