package kernel

import (
	"context"

	"github.com/shashiranjanraj/rocketcart/app/services"
	"github.com/shashiranjanraj/rocketcart/pkg/event"
	"github.com/shashiranjanraj/rocketcart/pkg/logger"
	"github.com/shashiranjanraj/rocketcart/pkg/ws"
)

// CartMessage is what /ws/cart subscribers receive. TotalCost is in whole
// units, like every price on the wire.
type CartMessage struct {
	Type       string   `json:"type"`
	ProductID  string   `json:"product_id,omitempty"`
	ProductIDs []string `json:"product_ids,omitempty"`
	TotalCost  int64    `json:"total_cost"`
}

// Message converts a cart event to its websocket form. A single product is
// reported as product_id, several as product_ids.
func Message(e services.CartEvent) CartMessage {
	m := CartMessage{Type: e.Type, TotalCost: e.TotalCost.IntPart()}
	if len(e.ProductIDs) == 1 {
		m.ProductID = e.ProductIDs[0]
	} else {
		m.ProductIDs = e.ProductIDs
	}
	return m
}

// BridgeEvents forwards every cart event on events to hub.
func BridgeEvents(events *event.Dispatcher, hub *ws.Hub) {
	forward := func(ctx context.Context, payload interface{}) {
		e, ok := payload.(services.CartEvent)
		if !ok {
			return
		}
		if err := hub.Publish(Message(e)); err != nil {
			logger.WithCtx(ctx).Warn("ws: publish cart event", "event", e.Type, "error", err)
		}
	}

	for _, name := range []string{services.EventReserved, services.EventReleased, services.EventCheckedOut} {
		events.Listen(name, forward)
	}
}
