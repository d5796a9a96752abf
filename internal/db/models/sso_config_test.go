package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderSettings_Scan(t *testing.T) {
	var s ProviderSettings
	require.NoError(t, s.Scan([]byte(`{"client_id":"cid","well_known_url":"https://idp.example/.well-known/openid-configuration"}`)))
	assert.Equal(t, "cid", s.ClientID)
	assert.Equal(t, "https://idp.example/.well-known/openid-configuration", s.WellKnownURL)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, ProviderSettings{}, s)

	assert.Error(t, s.Scan(42))
}

func TestSSOConfig_IsInstanceLevel(t *testing.T) {
	orgID := "org-1"
	assert.False(t, (&SSOConfig{OrganizationID: &orgID}).IsInstanceLevel())
	assert.True(t, (&SSOConfig{}).IsInstanceLevel())
}
