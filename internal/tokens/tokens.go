// Package tokens issues and verifies the session credential bundles
// handed out after an active-organization switch.
package tokens

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/openorgs/orgd/internal/clock"
	"github.com/openorgs/orgd/internal/config"
	"go.uber.org/fx"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the active organization scope inside both access and
// refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	ActiveOrgID string `json:"active_org_id,omitempty"`
	TokenUse    string `json:"token_use"`
}

// Bundle is the credential set returned to the caller after a switch.
type Bundle struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

type Manager struct {
	secret   []byte
	issuer   string
	settings *SettingsHolder
	clock    clock.Clock
}

type Params struct {
	fx.In

	Config   config.Config
	Settings *SettingsHolder
	Clock    clock.Clock
}

func NewManager(p Params) *Manager {
	return &Manager{
		secret:   []byte(p.Config.TokenSigningSecret),
		issuer:   p.Config.TokenIssuer,
		settings: p.Settings,
		clock:    p.Clock,
	}
}

// Issue mints a fresh access+refresh pair scoped to the given active
// organization.
func (m *Manager) Issue(userID snowflake.ID, activeOrgID *snowflake.ID) (*Bundle, error) {
	settings := m.settings.Get()
	now := m.clock.Now().UTC()

	orgClaim := ""
	if activeOrgID != nil {
		orgClaim = activeOrgID.String()
	}

	access, err := m.sign(userID, orgClaim, "access", now, settings.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, orgClaim, "refresh", now, settings.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(settings.AccessTTL.Seconds()),
		RefreshExpiresIn: int64(settings.RefreshTTL.Seconds()),
	}, nil
}

// Verify parses an access token and returns its claims.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(func() time.Time { return m.clock.Now() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.TokenUse != "access" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) sign(userID snowflake.ID, orgClaim, use string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		ActiveOrgID: orgClaim,
		TokenUse:    use,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
