package websocket

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// hubMetrics holds OTel instruments for the hub. They report to the global
// meter provider, which discards everything until one is configured.
type hubMetrics struct {
	sent    metric.Int64Counter
	dropped metric.Int64Counter
	clients metric.Int64UpDownCounter
}

func newHubMetrics() *hubMetrics {
	m := otel.Meter("github.com/wricardo/mcp-training/rushhour/transport/websocket")
	fallback := noop.Meter{}

	sent, err := m.Int64Counter("websocket.broadcasts.sent",
		metric.WithDescription("Frames written to client send queues"))
	if err != nil {
		sent, _ = fallback.Int64Counter("websocket.broadcasts.sent")
	}
	dropped, err := m.Int64Counter("websocket.broadcasts.dropped",
		metric.WithDescription("Broadcasts dropped because the hub queue was full"))
	if err != nil {
		dropped, _ = fallback.Int64Counter("websocket.broadcasts.dropped")
	}
	clients, err := m.Int64UpDownCounter("websocket.clients",
		metric.WithDescription("Connected WebSocket clients"))
	if err != nil {
		clients, _ = fallback.Int64UpDownCounter("websocket.clients")
	}

	return &hubMetrics{sent: sent, dropped: dropped, clients: clients}
}

func (m *hubMetrics) recordSent(n int) {
	if n > 0 {
		m.sent.Add(context.Background(), int64(n))
	}
}

func (m *hubMetrics) recordDropped() {
	m.dropped.Add(context.Background(), 1)
}

func (m *hubMetrics) clientDelta(delta int64) {
	m.clients.Add(context.Background(), delta)
}
