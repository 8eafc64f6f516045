package market

import "errors"

// Provider failure taxonomy. Callers branch with errors.Is; providers wrap
// these with request context. An empty series is never returned in place of
// an error.
var (
	// ErrRateLimited indicates upstream throttling. Retryable with backoff;
	// the aggregator treats it as a reason to fall back.
	ErrRateLimited = errors.New("market: rate limited")

	// ErrInvalidSymbol indicates the provider recognises the request but has
	// no data for the symbol. Not recoverable; surfaced to the caller.
	ErrInvalidSymbol = errors.New("market: invalid symbol or no data")

	// ErrProviderUnavailable indicates a transport or provider-side failure
	// that justifies trying the fallback provider.
	ErrProviderUnavailable = errors.New("market: provider unavailable")

	// ErrDataUnavailable is the terminal failure when the fallback path also
	// produced nothing. A partially populated bundle is never emitted.
	ErrDataUnavailable = errors.New("market: data unavailable")
)
