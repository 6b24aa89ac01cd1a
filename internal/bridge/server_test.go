package bridge

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTick(t *testing.T) {
	event := BinanceTradeEvent{
		EventType: "trade",
		EventTime: 1700000000500,
		Symbol:    "ETHUSDT",
		Price:     "3012.45",
		Quantity:  "0.731",
		TradeTime: 1700000000123,
	}

	tick, err := ToTick(event)
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", tick.Symbol)
	assert.True(t, tick.Price.Equal(decimal.RequireFromString("3012.45")))
	assert.True(t, tick.Quantity.Equal(decimal.RequireFromString("0.731")))
	assert.Equal(t, time.Unix(1700000000, 123*int64(time.Millisecond)).UnixNano(), tick.Timestamp.UnixNano())
}

func TestToTick_FallsBackToEventTime(t *testing.T) {
	event := BinanceTradeEvent{
		EventType: "trade",
		EventTime: 1700000000500,
		Symbol:    "BTCUSDT",
		Price:     "90000",
		Quantity:  "1",
	}

	tick, err := ToTick(event)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000500)*int64(time.Millisecond), tick.Timestamp.UnixNano())
}

func TestToTick_MalformedNumbers(t *testing.T) {
	_, err := ToTick(BinanceTradeEvent{Price: "not-a-price", Quantity: "1"})
	assert.Error(t, err)

	_, err = ToTick(BinanceTradeEvent{Price: "1", Quantity: ""})
	assert.Error(t, err)
}
