package types

// Request and response shapes for the HTTP surface. Field tags follow the
// go-zero httpx conventions: json for body fields, path for URL parameters.

type AnalyzeRequest struct {
	Symbol string `json:"symbol"`
}

type AnalyzeResponse struct {
	Symbol         string              `json:"symbol"`
	LastRefreshed  string              `json:"lastRefreshed"`
	IsStale        bool                `json:"isStale"`
	Summary        string              `json:"summary"`
	Source         string              `json:"source"`
	Recommendation *RecommendationView `json:"recommendation,omitempty"`
	RawText        string              `json:"rawText,omitempty"`
	Notice         string              `json:"notice,omitempty"`
}

type ActionView struct {
	StrikePrice      float64 `json:"strikePrice"`
	OptionType       string  `json:"optionType"`
	TargetPrice      float64 `json:"targetPrice,omitempty"`
	PriceType        string  `json:"priceType,omitempty"`
	ExpirationDate   string  `json:"expirationDate,omitempty"`
	ExpirationReason string  `json:"expirationReason,omitempty"`
}

type RecommendationView struct {
	Type       string      `json:"type"`
	Action     *ActionView `json:"action,omitempty"`
	Confidence *int        `json:"confidence,omitempty"`
	Reasoning  string      `json:"reasoning"`
}

type TradeView struct {
	ID             string             `json:"id"`
	Symbol         string             `json:"symbol"`
	Recommendation RecommendationView `json:"recommendation"`
	ConfirmedAt    string             `json:"confirmedAt"`
	EntryPrice     *float64           `json:"entryPrice,omitempty"`
	CurrentPrice   *float64           `json:"currentPrice,omitempty"`
	Status         string             `json:"status"`
	PnL            *float64           `json:"pnl,omitempty"`
	PnLPercentage  *float64           `json:"pnlPercentage,omitempty"`
	ClosedAt       string             `json:"closedAt,omitempty"`
}

type ConfirmTradeRequest struct {
	Symbol         string             `json:"symbol"`
	Recommendation RecommendationView `json:"recommendation"`
	EntryPrice     *float64           `json:"entryPrice,optional"`
}

type ConfirmTradeResponse struct {
	TradeID string    `json:"tradeId"`
	Trade   TradeView `json:"trade"`
}

type TradeHistoryResponse struct {
	Trades           []TradeView `json:"trades"`
	TotalTrades      int         `json:"totalTrades"`
	SuccessfulTrades int         `json:"successfulTrades"`
	SuccessRate      float64     `json:"successRate"`
}

type ActiveTradesResponse struct {
	Trades []TradeView `json:"trades"`
}

type UpdateTradePriceRequest struct {
	ID           string   `path:"id"`
	CurrentPrice float64  `json:"currentPrice"`
	EntryPrice   *float64 `json:"entryPrice,optional"`
}

type UpdateTradePriceResponse struct {
	Trade TradeView `json:"trade"`
}

type CloseTradeRequest struct {
	ID string `path:"id"`
}

type CloseTradeResponse struct {
	Trade TradeView `json:"trade"`
}
