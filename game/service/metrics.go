package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

const instrumentationName = "github.com/wricardo/mcp-training/rushhour/game/service"

// serviceMetrics counts game activity on the global OTel meter, which is a
// no-op until a provider is installed.
type serviceMetrics struct {
	sessions metric.Int64Counter
	drags    metric.Int64Counter
	wins     metric.Int64Counter
	loads    metric.Int64Counter
}

func defaultMeter() metric.Meter {
	return otel.Meter(instrumentationName)
}

func newServiceMetrics(m metric.Meter) *serviceMetrics {
	fallback := noop.Meter{}

	counter := func(name, description string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(description))
		if err != nil {
			c, _ = fallback.Int64Counter(name)
		}
		return c
	}

	return &serviceMetrics{
		sessions: counter("rushhour.sessions.created", "Sessions created"),
		drags:    counter("rushhour.drags.ended", "Drag gestures released, including slides"),
		wins:     counter("rushhour.wins", "Levels won"),
		loads:    counter("rushhour.levels.loaded", "Level loads, including resets"),
	}
}

// observe records one engine event for a session's level
func (m *serviceMetrics) observe(levelID string, ev engine.Event) {
	attrs := metric.WithAttributes(attribute.String("level", levelID))
	ctx := context.Background()

	switch ev.Type {
	case engine.EventDragEnded:
		m.drags.Add(ctx, 1, attrs)
	case engine.EventWinExit:
		m.wins.Add(ctx, 1, attrs)
	case engine.EventLevelLoaded:
		m.loads.Add(ctx, 1, attrs)
	}
}
