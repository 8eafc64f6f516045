package market

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"tickerlens-api/pkg/confkit"
)

// Config describes the market data providers available to the application
// and which of them serve the primary, fallback and quote roles.
type Config struct {
	Primary   string                     `yaml:"primary"`
	Fallback  string                     `yaml:"fallback"`
	Quote     string                     `yaml:"quote"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig configures a single provider instance.
type ProviderConfig struct {
	Type string `yaml:"type"`

	BaseURL  string `yaml:"base_url"`
	RelayURL string `yaml:"relay_url"`
	APIKey   string `yaml:"api_key"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// ProviderBuilder constructs a Provider from configuration.
type ProviderBuilder func(name string, cfg *ProviderConfig) (Provider, error)

var (
	providerRegistry   = make(map[string]ProviderBuilder)
	providerRegistryMu sync.RWMutex
)

// RegisterProvider registers a provider constructor under a type name.
// Provider packages call this from init.
func RegisterProvider(typeName string, builder ProviderBuilder) {
	providerRegistryMu.Lock()
	defer providerRegistryMu.Unlock()
	providerRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupProviderBuilder(typeName string) (ProviderBuilder, bool) {
	providerRegistryMu.RLock()
	defer providerRegistryMu.RUnlock()
	builder, ok := providerRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// LoadConfig reads market configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader, expanding
// environment variables so API keys never live in the file itself.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read market config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal market config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("market config: no providers defined")
	}
	for name, pc := range c.Providers {
		if pc == nil {
			return fmt.Errorf("market config: provider %q is empty", name)
		}
		if strings.TrimSpace(pc.Type) == "" {
			pc.Type = name
		}
		if pc.TimeoutRaw != "" {
			d, err := time.ParseDuration(pc.TimeoutRaw)
			if err != nil {
				return fmt.Errorf("market config: provider %q timeout: %w", name, err)
			}
			pc.Timeout = d
		}
	}
	if c.Primary == "" {
		return fmt.Errorf("market config: primary provider is required")
	}
	if c.Quote == "" {
		c.Quote = c.Primary
	}
	return nil
}

// Build instantiates every configured provider through the registry.
func (c *Config) Build() (map[string]Provider, error) {
	out := make(map[string]Provider, len(c.Providers))
	for name, pc := range c.Providers {
		builder, ok := lookupProviderBuilder(pc.Type)
		if !ok {
			return nil, fmt.Errorf("market config: unknown provider type %q for %q", pc.Type, name)
		}
		provider, err := builder(name, pc)
		if err != nil {
			return nil, fmt.Errorf("market config: build provider %q: %w", name, err)
		}
		out[name] = provider
	}
	return out, nil
}

// PrimaryProvider resolves the configured primary as a SeriesProvider.
func (c *Config) PrimaryProvider(providers map[string]Provider) (SeriesProvider, error) {
	p, ok := providers[c.Primary]
	if !ok {
		return nil, fmt.Errorf("market config: primary provider %q not built", c.Primary)
	}
	sp, ok := p.(SeriesProvider)
	if !ok {
		return nil, fmt.Errorf("market config: provider %q does not serve native weekly/monthly series", c.Primary)
	}
	return sp, nil
}

// FallbackProviderFor resolves the configured fallback, which may be absent.
func (c *Config) FallbackProviderFor(providers map[string]Provider) (FallbackProvider, error) {
	if c.Fallback == "" {
		return nil, nil
	}
	p, ok := providers[c.Fallback]
	if !ok {
		return nil, fmt.Errorf("market config: fallback provider %q not built", c.Fallback)
	}
	fp, ok := p.(FallbackProvider)
	if !ok {
		return nil, fmt.Errorf("market config: provider %q cannot serve daily series", c.Fallback)
	}
	return fp, nil
}

// QuoteProviderFor resolves the configured quote source.
func (c *Config) QuoteProviderFor(providers map[string]Provider) (QuoteProvider, error) {
	p, ok := providers[c.Quote]
	if !ok {
		return nil, fmt.Errorf("market config: quote provider %q not built", c.Quote)
	}
	qp, ok := p.(QuoteProvider)
	if !ok {
		return nil, fmt.Errorf("market config: provider %q cannot serve quotes", c.Quote)
	}
	return qp, nil
}
