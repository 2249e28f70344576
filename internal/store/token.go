package store

import (
	"time"

	"github.com/talhabinjaved/HireMatch/internal/models"
)

// Access token operations. Tokens are stored by SHA-256 hash only; the
// plaintext never reaches this layer.

func (s *Store) CreateAccessToken(token *models.AccessToken) error {
	return translate(s.db.Create(token).Error)
}

func (s *Store) GetAccessTokenByHash(hash string) (*models.AccessToken, error) {
	var t models.AccessToken
	if err := s.db.Where("token_hash = ?", hash).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) ListTokensByClientID(clientID string) ([]models.AccessToken, error) {
	var tokens []models.AccessToken
	if err := s.db.Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// RevokeTokenByHash marks a token revoked. Revoking an already revoked or
// unknown hash is not an error; revocation is idempotent.
func (s *Store) RevokeTokenByHash(hash string) error {
	return s.db.Model(&models.AccessToken{}).
		Where("token_hash = ?", hash).
		Update("status", models.TokenStatusRevoked).Error
}

// RevokeTokensByClientID revokes every active token of the client and
// returns how many were flipped.
func (s *Store) RevokeTokensByClientID(clientID string) (int64, error) {
	res := s.db.Model(&models.AccessToken{}).
		Where("client_id = ? AND status = ?", clientID, models.TokenStatusActive).
		Update("status", models.TokenStatusRevoked)
	return res.RowsAffected, res.Error
}

// TouchTokenLastUsed stamps the token's last successful validation. Best
// effort; the caller ignores failures.
func (s *Store) TouchTokenLastUsed(id string, when time.Time) error {
	return s.db.Model(&models.AccessToken{}).
		Where("id = ?", id).
		Update("last_used_at", when).Error
}

// DeleteTokensExpiredBefore removes tokens whose expiry predates cutoff,
// regardless of status. Returns the number of rows deleted.
func (s *Store) DeleteTokensExpiredBefore(cutoff time.Time) (int64, error) {
	res := s.db.Where("expires_at < ?", cutoff).Delete(&models.AccessToken{})
	return res.RowsAffected, res.Error
}

func (s *Store) CountActiveTokens(now time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.AccessToken{}).
		Where("status = ? AND expires_at > ?", models.TokenStatusActive, now).
		Count(&count).Error
	return count, err
}

func (s *Store) CountActiveTokensByClientID(clientID string, now time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.AccessToken{}).
		Where("client_id = ? AND status = ? AND expires_at > ?",
			clientID, models.TokenStatusActive, now).
		Count(&count).Error
	return count, err
}

func (s *Store) CountTokensIssuedSince(clientID string, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.AccessToken{}).
		Where("client_id = ? AND created_at >= ?", clientID, since).
		Count(&count).Error
	return count, err
}
