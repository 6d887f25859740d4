package azure

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// testAccountKey is a base64 value of the form shared key credentials
// require; it carries no real secret.
const testAccountKey = "c2VjcmV0LWtleS1tYXRlcmlhbA=="

func testAddr() domain.BackendAddress {
	return domain.BackendAddress{Backend: domain.BackendAzure, Root: "container"}
}

// TestParseOptions tests option map decoding
func TestParseOptions(t *testing.T) {
	cfg := parseOptions(map[string]string{
		"account_name":      "devaccount",
		"account_key":       testAccountKey,
		"connection_string": "UseDevelopmentStorage=true",
		"endpoint":          "http://127.0.0.1:10000/devaccount",
	})

	assert.Equal(t, "devaccount", cfg.AccountName)
	assert.Equal(t, testAccountKey, cfg.AccountKey)
	assert.Equal(t, "UseDevelopmentStorage=true", cfg.ConnectionString)
	assert.Equal(t, "http://127.0.0.1:10000/devaccount", cfg.Endpoint)

	assert.Equal(t, Config{}, parseOptions(nil))
}

// TestConfig_ServiceURL tests endpoint resolution order
func TestConfig_ServiceURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name:     "explicit endpoint wins",
			cfg:      Config{AccountName: "acct", Endpoint: "http://127.0.0.1:10000/acct"},
			expected: "http://127.0.0.1:10000/acct",
		},
		{
			name:     "derived from account name",
			cfg:      Config{AccountName: "acct"},
			expected: "https://acct.blob.core.windows.net/",
		},
		{
			name:     "nothing configured",
			cfg:      Config{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.serviceURL())
		})
	}
}

// TestFactory_SharedKey tests shared key client construction
func TestFactory_SharedKey(t *testing.T) {
	fs, err := Factory(context.Background(), testAddr(), map[string]string{
		"account_name": "devaccount",
		"account_key":  testAccountKey,
	})

	require.NoError(t, err)
	require.NotNil(t, fs)
	assert.NoError(t, fs.Close())
}

// TestFactory_SharedKey_BadKey tests rejection of malformed keys
func TestFactory_SharedKey_BadKey(t *testing.T) {
	_, err := Factory(context.Background(), testAddr(), map[string]string{
		"account_name": "devaccount",
		"account_key":  "not base64!!",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shared key credential")
}

// TestFactory_Anonymous tests endpoint-only construction
func TestFactory_Anonymous(t *testing.T) {
	fs, err := Factory(context.Background(), testAddr(), map[string]string{
		"endpoint": "http://127.0.0.1:10000/devaccount",
	})

	require.NoError(t, err)
	require.NotNil(t, fs)
}

// TestFactory_Unconfigured tests the fatal missing-configuration path
func TestFactory_Unconfigured(t *testing.T) {
	_, err := Factory(context.Background(), testAddr(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
