package services

import (
	"context"

	"studentspend/internal/core"
)

// Publisher delivers ledger events to whoever shows them to the user.
type Publisher interface {
	Publish(ctx context.Context, ev core.Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, core.Event) error { return nil }
