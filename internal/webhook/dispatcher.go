package webhook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v71/github"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/service"
)

type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch parses the delivery payload and runs the handler for its route.
// Unknown routes return ErrUnsupportedEvent; payloads that do not parse into
// the route's event type return ErrUnexpectedPayload. Neither is retryable.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery *model.WebhookDelivery) error {
	route := Route{Event: delivery.Event, Action: delivery.Action}

	handler, ok := d.registry.Get(route)
	if !ok {
		return service.NewPermanentError("dispatch "+route.String(), fmt.Errorf("%w: %s", ErrUnsupportedEvent, route))
	}

	event, err := github.ParseWebHook(delivery.Event, delivery.Payload)
	if err != nil {
		return unexpectedPayload(delivery, "%v", err)
	}

	slog.InfoContext(ctx, "dispatching webhook delivery",
		"delivery_id", delivery.DeliveryID,
		"route", route.String())

	return handler(ctx, delivery, event)
}
