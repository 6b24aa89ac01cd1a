// Package bridge accepts the browser-side tick feed. The bundled static page
// subscribes to Binance trade streams in the browser and forwards every raw
// event over a local websocket; this server validates, converts and publishes
// them onto the bus. It is the only ingress for live data.
package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"alphatrawler/internal/infrastructure"
	"alphatrawler/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	js     nats.JetStreamContext
	logger *zap.Logger
}

func NewServer(js nats.JetStreamContext, logger *zap.Logger) *Server {
	return &Server{js: js, logger: logger}
}

// BinanceTradeEvent is the raw trade payload the page relays verbatim from
// the Binance websocket.
type BinanceTradeEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade bridge websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	infrastructure.WSConnections.Inc()
	defer infrastructure.WSConnections.Dec()
	s.logger.Info("browser bridge connected", zap.String("remote", r.RemoteAddr))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.logger.Warn("browser bridge disconnected", zap.Error(err))
			return
		}

		var event BinanceTradeEvent
		if err := json.Unmarshal(message, &event); err != nil {
			s.logger.Warn("invalid json from bridge", zap.Error(err))
			continue
		}
		if event.EventType != "trade" {
			continue
		}

		tick, err := ToTick(event)
		if err != nil {
			s.logger.Warn("malformed trade event", zap.Error(err))
			continue
		}
		s.publish(tick)
	}
}

// ToTick converts a raw browser event into the internal tick model.
func ToTick(event BinanceTradeEvent) (model.Tick, error) {
	price, err := decimal.NewFromString(event.Price)
	if err != nil {
		return model.Tick{}, fmt.Errorf("bad price %q: %w", event.Price, err)
	}
	qty, err := decimal.NewFromString(event.Quantity)
	if err != nil {
		return model.Tick{}, fmt.Errorf("bad quantity %q: %w", event.Quantity, err)
	}
	ts := event.TradeTime
	if ts == 0 {
		ts = event.EventTime
	}
	return model.Tick{
		Symbol:    event.Symbol,
		Price:     price,
		Quantity:  qty,
		Timestamp: time.Unix(0, ts*int64(time.Millisecond)),
	}, nil
}

func (s *Server) publish(tick model.Tick) {
	subject := fmt.Sprintf("market.raw.%s", tick.Symbol)
	data, err := json.Marshal(tick)
	if err != nil {
		s.logger.Error("failed to marshal tick", zap.Error(err))
		return
	}
	if _, err := s.js.Publish(subject, data); err != nil {
		s.logger.Error("failed to publish tick", zap.Error(err))
		return
	}
	infrastructure.TicksIngested.WithLabelValues(tick.Symbol).Inc()
}
