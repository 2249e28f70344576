package token

import "time"

// Token type constants
const (
	TokenTypeBearer = "Bearer"
)

// JWT type discriminator values
const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Pair is the access/refresh pair minted at super-admin login.
type Pair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // access token lifetime in seconds
}

// Claims is the verified subject of a super-admin JWT.
type Claims struct {
	AdminID   string
	Username  string
	TokenType string
	ExpiresAt time.Time
}
