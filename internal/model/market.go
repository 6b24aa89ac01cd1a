package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tick 代表一笔实时成交 (pushed from the browser bridge)
type Tick struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
	Timestamp time.Time       `json:"ts" db:"time"`
}

// Bar 代表一根重采样K线
type Bar struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Period    string          `json:"period" db:"period"` // "1s", "1m"
	Open      decimal.Decimal `json:"o" db:"open"`
	High      decimal.Decimal `json:"h" db:"high"`
	Low       decimal.Decimal `json:"l" db:"low"`
	Close     decimal.Decimal `json:"c" db:"close"`
	Volume    decimal.Decimal `json:"v" db:"volume"`
	Timestamp time.Time       `json:"t" db:"time"` // bar open time
}

// PricePoint is one row of the analytics input table: the two legs' close
// prices joined on the bar timestamp. Timestamps are strictly increasing,
// gaps allowed and never interpolated.
type PricePoint struct {
	Timestamp time.Time `json:"t"`
	Target    float64   `json:"target"`    // dependent leg (Y)
	Reference float64   `json:"reference"` // independent leg (X)
}
