package models

// PricesRequest is the query for the historical bars endpoint.
type PricesRequest struct {
	Symbol string `param:"symbol" validate:"required,max=16"`
	Days   int    `query:"days" default:"90" validate:"gte=1,lte=730"`
}

// PredictionsRequest is the query for the forecast endpoint.
type PredictionsRequest struct {
	Symbol string `param:"symbol" validate:"required,max=16"`
}

// RefreshRequest triggers a maintenance refresh over symbols. An empty list
// means the configured watchlist.
type RefreshRequest struct {
	Symbols []string `json:"symbols" validate:"omitempty,dive,max=16"`
}
