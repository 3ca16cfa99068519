package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/Kamilla170/bloom/internal/llm"
	"github.com/Kamilla170/bloom/internal/messenger"
)

// ScriptedModelClient returns queued responses in order, one per Complete
// call. Queue a nil Response with a non-nil Err to script a failure.
type ScriptedModelClient struct {
	mu    sync.Mutex
	queue []ScriptedCall
	// Calls records every request received, in order.
	Calls []llm.CompleteRequest
}

type ScriptedCall struct {
	Response *llm.CompleteResponse
	Err      error
}

// Script appends calls to the queue.
func (c *ScriptedModelClient) Script(calls ...ScriptedCall) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, calls...)
}

// ScriptText is shorthand for queueing a single successful text response.
func (c *ScriptedModelClient) ScriptText(text string) {
	c.Script(ScriptedCall{Response: &llm.CompleteResponse{Text: text}})
}

// ScriptError queues a single failed call.
func (c *ScriptedModelClient) ScriptError(err error) {
	c.Script(ScriptedCall{Err: err})
}

func (c *ScriptedModelClient) Complete(ctx context.Context, req llm.CompleteRequest) (*llm.CompleteResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, req)
	if len(c.queue) == 0 {
		return nil, fmt.Errorf("scripted client: unexpected call %d (task %s)", len(c.Calls), req.Task)
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	resp := *next.Response
	if resp.Model == "" {
		resp.Model = req.Model
	}
	return &resp, nil
}

var _ llm.ModelClient = (*ScriptedModelClient)(nil)

// SentMessage is one delivery recorded by RecordingMessenger.
type SentMessage struct {
	OwnerID  int64
	Text     string
	PhotoRef string
}

// RecordingMessenger captures outbound messages for assertions. Set
// FailFor to make sends to a specific owner fail, which sweeps must
// survive.
type RecordingMessenger struct {
	mu      sync.Mutex
	Sent    []SentMessage
	FailFor map[int64]error
}

func (m *RecordingMessenger) SendText(ctx context.Context, ownerID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[ownerID]; ok {
		return err
	}
	m.Sent = append(m.Sent, SentMessage{OwnerID: ownerID, Text: text})
	return nil
}

func (m *RecordingMessenger) SendPhoto(ctx context.Context, ownerID int64, photoRef, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[ownerID]; ok {
		return err
	}
	m.Sent = append(m.Sent, SentMessage{OwnerID: ownerID, Text: caption, PhotoRef: photoRef})
	return nil
}

var _ messenger.Messenger = (*RecordingMessenger)(nil)

// TextsFor returns the message bodies delivered to one owner.
func (m *RecordingMessenger) TextsFor(ownerID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.Sent {
		if s.OwnerID == ownerID {
			out = append(out, s.Text)
		}
	}
	return out
}
