package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Recommendation types.
const (
	TypeCall     = "call"
	TypePut      = "put"
	TypeNoAction = "no_action"
)

// ErrMalformedResponse marks oracle output that could not be decoded into a
// Recommendation. Callers recover by passing the raw text through instead of
// failing the analysis.
var ErrMalformedResponse = errors.New("advisor: malformed oracle response")

// Action holds the optional trade parameters attached to a call or put
// recommendation.
type Action struct {
	StrikePrice      float64 `json:"strike_price" description:"Option strike price"`
	OptionType       string  `json:"option_type" description:"call or put"`
	TargetPrice      float64 `json:"target_price,omitempty" description:"Price target for the underlying"`
	PriceType        string  `json:"price_type,omitempty" description:"Reference for target_price, e.g. underlying or premium"`
	ExpirationDate   string  `json:"expiration_date,omitempty" description:"Suggested expiration date, YYYY-MM-DD"`
	ExpirationReason string  `json:"expiration_reason,omitempty" description:"Why this expiration was chosen"`
}

// Recommendation is the structured verdict returned by the oracle. Action and
// Confidence are optional; older schema revisions omitted them and a missing
// field is treated as absent rather than an error.
type Recommendation struct {
	Type       string  `json:"type" description:"One of call, put, no_action"`
	Action     *Action `json:"action,omitempty" description:"Trade parameters when type is call or put"`
	Confidence *int    `json:"confidence,omitempty" description:"Confidence in the recommendation, 0-100"`
	Reasoning  string  `json:"reasoning" description:"Short justification for the recommendation"`
}

// DecodeRecommendation parses oracle output into a Recommendation. The text
// may be wrapped in markdown code fences or surrounded by prose; the first
// balanced JSON object is extracted before decoding.
func DecodeRecommendation(content string) (*Recommendation, error) {
	payload, ok := extractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var rec Recommendation
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	normalized, ok := normalizeType(rec.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown recommendation type %q", ErrMalformedResponse, rec.Type)
	}
	rec.Type = normalized

	if rec.Action != nil {
		rec.Action.OptionType = strings.ToLower(strings.TrimSpace(rec.Action.OptionType))
	}
	return &rec, nil
}

func normalizeType(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "call", "call option", "buy call":
		return TypeCall, true
	case "put", "put option", "buy put":
		return TypePut, true
	case "no_action", "no action", "none", "hold":
		return TypeNoAction, true
	default:
		return "", false
	}
}

// extractJSONObject returns the first balanced top-level JSON object in s,
// skipping markdown fences and surrounding prose. Braces inside JSON strings
// do not count toward the balance.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
