package alphavantage

// payload is the loose envelope every query endpoint responds with. The
// provider signals application-level failures through message fields rather
// than HTTP status codes: "Error Message" for unknown symbols, "Note" or
// "Information" for throttling. Exactly one of the time-series maps is
// populated per function.
type payload struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`

	MetaData map[string]string `json:"Meta Data"`

	Daily   map[string]rawBar `json:"Time Series (Daily)"`
	Weekly  map[string]rawBar `json:"Weekly Time Series"`
	Monthly map[string]rawBar `json:"Monthly Time Series"`

	GlobalQuote map[string]string `json:"Global Quote"`
}

// rawBar carries the provider's numbered, string-encoded OHLCV fields.
type rawBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

const (
	metaLastRefreshed = "3. Last Refreshed"
	quotePriceField   = "05. price"
)
