package tokens

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openorgs/orgd/internal/clock"
	"github.com/openorgs/orgd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, fake *clock.FakeClock) *Manager {
	t.Helper()
	holder := NewStaticSettingsHolder(Settings{
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 30 * time.Minute,
	})
	return NewManager(Params{
		Config: config.Config{
			TokenSigningSecret: "test-secret",
			TokenIssuer:        "orgd-test",
		},
		Settings: holder,
		Clock:    fake,
	})
}

func TestIssueAndVerify(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	m := newTestManager(t, fake)

	orgID := snowflake.ID(42)
	bundle, err := m.Issue(snowflake.ID(7), &orgID)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", bundle.TokenType)
	assert.Equal(t, int64(300), bundle.ExpiresIn)
	assert.Equal(t, int64(1800), bundle.RefreshExpiresIn)

	claims, err := m.Verify(bundle.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "42", claims.ActiveOrgID)
}

func TestVerifyRejectsRefreshToken(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	m := newTestManager(t, fake)

	bundle, err := m.Issue(snowflake.ID(7), nil)
	require.NoError(t, err)

	_, err = m.Verify(bundle.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	m := newTestManager(t, fake)

	bundle, err := m.Issue(snowflake.ID(7), nil)
	require.NoError(t, err)

	fake.Advance(6 * time.Minute)
	_, err = m.Verify(bundle.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	m := newTestManager(t, fake)

	other := NewManager(Params{
		Config: config.Config{
			TokenSigningSecret: "other-secret",
			TokenIssuer:        "orgd-test",
		},
		Settings: NewStaticSettingsHolder(DefaultSettings()),
		Clock: fake,
	})

	bundle, err := other.Issue(snowflake.ID(7), nil)
	require.NoError(t, err)

	_, err = m.Verify(bundle.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
