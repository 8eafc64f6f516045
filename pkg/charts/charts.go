// Package charts defines the boundary to the chart rendering collaborator.
// Rendering itself is external; the analysis flow only needs an image it can
// attach to the oracle request as a data URL.
package charts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"tickerlens-api/pkg/series"
)

// ErrNotRendered signals that no rendering backend is available.
var ErrNotRendered = errors.New("charts: no renderer configured")

// Overlay names an indicator drawn on top of the candlesticks.
type Overlay string

const (
	OverlaySMA20  Overlay = "sma20"
	OverlaySMA50  Overlay = "sma50"
	OverlayVolume Overlay = "volume"
	OverlayRSI    Overlay = "rsi"
	OverlayMACD   Overlay = "macd"
)

// Image is a rendered chart.
type Image struct {
	Timeframe string
	MIME      string
	Data      []byte
}

// DataURL encodes the image for embedding in an oracle message.
func (img Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", img.MIME, base64.StdEncoding.EncodeToString(img.Data))
}

// Renderer turns a series plus indicator overlays into a displayable image.
type Renderer interface {
	Render(ctx context.Context, timeframe string, s series.Series, overlays []Overlay) (Image, error)
}

// NopRenderer satisfies Renderer without producing images. Used when no
// rendering backend is configured; the oracle then works from the technical
// summary text alone.
type NopRenderer struct{}

func (NopRenderer) Render(ctx context.Context, timeframe string, s series.Series, overlays []Overlay) (Image, error) {
	return Image{}, ErrNotRendered
}
