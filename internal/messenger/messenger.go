// Package messenger is the outbound chat-delivery boundary. The engine
// only needs text and photo sends with a delivery-result signal; retries
// and backoff on this boundary are the platform's concern.
package messenger

import "context"

// Messenger delivers outbound messages to an owner's chat.
type Messenger interface {
	SendText(ctx context.Context, ownerID int64, text string) error
	SendPhoto(ctx context.Context, ownerID int64, photoRef, caption string) error
}
