package config

import (
	"tickerlens-api/pkg/confkit"
	marketpkg "tickerlens-api/pkg/market"
)

// MustLoadMarket loads etc/market.yaml from the project root and panics on
// error. It isolates market config so tools that only need providers do not
// require the full application config.
func MustLoadMarket() *marketpkg.Config {
	cfg, err := marketpkg.LoadConfig(confkit.MustProjectPath("etc/market.yaml"))
	if err != nil {
		panic(err)
	}
	return cfg
}
