package messenger

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleMessenger writes outbound messages to a writer instead of a
// chat platform. Used when no bot token is configured, so sweeps stay
// runnable in development.
type ConsoleMessenger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleMessenger(w io.Writer) *ConsoleMessenger {
	return &ConsoleMessenger{w: w}
}

func (c *ConsoleMessenger) SendText(ctx context.Context, ownerID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "[owner %d]\n%s\n\n", ownerID, text)
	return err
}

func (c *ConsoleMessenger) SendPhoto(ctx context.Context, ownerID int64, photoRef, caption string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "[owner %d] photo %s\n%s\n\n", ownerID, photoRef, caption)
	return err
}

var _ Messenger = (*ConsoleMessenger)(nil)
