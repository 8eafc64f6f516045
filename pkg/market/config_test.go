package market

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tickerlens-api/pkg/series"
)

type stubProvider struct{ name string }

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Daily(context.Context, string) (series.Series, Meta, error) {
	return nil, Meta{}, nil
}

func (s *stubProvider) Weekly(context.Context, string) (series.Series, error) { return nil, nil }

func (s *stubProvider) Monthly(context.Context, string) (series.Series, error) { return nil, nil }

func TestLoadConfigFromReader(t *testing.T) {
	RegisterProvider("stub", func(name string, cfg *ProviderConfig) (Provider, error) {
		return &stubProvider{name: name}, nil
	})

	os.Setenv("TEST_MARKET_KEY", "secret-key")
	defer os.Unsetenv("TEST_MARKET_KEY")

	yaml := `
primary: main
fallback: backup
providers:
  main:
    type: stub
    api_key: ${TEST_MARKET_KEY}
    timeout: 5s
  backup:
    type: stub
`
	cfg, err := LoadConfigFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	require.Equal(t, "secret-key", cfg.Providers["main"].APIKey)
	require.Equal(t, "5s", cfg.Providers["main"].TimeoutRaw)
	require.NotZero(t, cfg.Providers["main"].Timeout)
	require.Equal(t, "main", cfg.Quote) // defaults to primary

	providers, err := cfg.Build()
	require.NoError(t, err)
	require.Len(t, providers, 2)

	primary, err := cfg.PrimaryProvider(providers)
	require.NoError(t, err)
	require.Equal(t, "main", primary.Name())

	fallback, err := cfg.FallbackProviderFor(providers)
	require.NoError(t, err)
	require.Equal(t, "backup", fallback.Name())
}

func TestLoadConfigRejectsUnknownType(t *testing.T) {
	yaml := `
primary: main
providers:
  main:
    type: does-not-exist
`
	cfg, err := LoadConfigFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	_, err = cfg.Build()
	require.Error(t, err)
}

func TestLoadConfigRequiresPrimary(t *testing.T) {
	yaml := `
providers:
  main:
    type: stub
`
	_, err := LoadConfigFromReader(strings.NewReader(yaml))
	require.Error(t, err)
}
