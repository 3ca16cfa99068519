package messenger

import (
	"context"
	"fmt"

	maxbot "github.com/max-messenger/max-bot-api-client-go"
)

// MaxMessenger delivers messages through the Max bot API. Photos are
// referenced by URL and delivered inline with the caption; the platform
// renders a preview for the link.
type MaxMessenger struct {
	api *maxbot.Api
}

// NewMaxMessenger wraps an authenticated Max bot API client.
func NewMaxMessenger(api *maxbot.Api) *MaxMessenger {
	return &MaxMessenger{api: api}
}

func (m *MaxMessenger) SendText(ctx context.Context, ownerID int64, text string) error {
	err := m.api.Messages.Send(ctx, maxbot.NewMessage().SetChat(ownerID).SetText(text))
	if err != nil {
		return fmt.Errorf("sending text to %d: %w", ownerID, err)
	}
	return nil
}

func (m *MaxMessenger) SendPhoto(ctx context.Context, ownerID int64, photoRef, caption string) error {
	body := caption
	if photoRef != "" {
		body = caption + "\n\n" + photoRef
	}
	err := m.api.Messages.Send(ctx, maxbot.NewMessage().SetChat(ownerID).SetText(body))
	if err != nil {
		return fmt.Errorf("sending photo to %d: %w", ownerID, err)
	}
	return nil
}
