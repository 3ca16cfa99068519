package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// CompleteRequest holds the parameters for one chat-completion call.
// Model selection (primary vs fallback) is the caller's concern.
type CompleteRequest struct {
	Task         TaskType
	Model        string
	SystemPrompt string
	UserPrompt   string
	ImageJPEG    []byte   // optional; attached as a data URL when set
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// CompleteResponse holds the result of one chat-completion call.
type CompleteResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// ModelClient provides access to a chat-completion model, optionally with
// vision input.
type ModelClient interface {
	Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error)
}

// openAIClient implements ModelClient against an OpenAI-compatible
// /chat/completions endpoint. Each call is single-shot; retry policy
// belongs to the diagnosis pipeline, not the transport.
type openAIClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewOpenAIClient creates a ModelClient for an OpenAI-compatible API.
func NewOpenAIClient(cfg Config, observer Observer) ModelClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &openAIClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// chatMessage content is either a plain string or a list of content parts
// (text + image) for vision requests.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error) {
	start := time.Now()

	taskCfg := c.cfg.Tasks[req.Task]
	temp := taskCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	timeoutMs := c.cfg.TaskTimeout(req.Task)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	body := chatRequest{
		Model:       req.Model,
		MaxTokens:   maxTok,
		Temperature: temp,
		Messages:    buildMessages(req),
	}

	resp, err := c.doRequest(ctx, body)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		c.observer.OnCallComplete(CallEvent{
			Task:      req.Task,
			Model:     req.Model,
			LatencyMs: latency,
			Success:   false,
			ErrorCode: errorCode(ctx, err),
		})
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		if isConnectionError(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	if len(resp.Choices) == 0 {
		c.observer.OnCallComplete(CallEvent{
			Task: req.Task, Model: req.Model, LatencyMs: latency,
			Success: false, ErrorCode: "INVALID_OUTPUT",
		})
		return nil, fmt.Errorf("%w: response has no choices", ErrInvalidOutput)
	}

	c.observer.OnCallComplete(CallEvent{
		Task:      req.Task,
		Model:     req.Model,
		LatencyMs: latency,
		Success:   true,
	})
	return &CompleteResponse{
		Text:      resp.Choices[0].Message.Content,
		Model:     resp.Model,
		LatencyMs: latency,
	}, nil
}

func buildMessages(req CompleteRequest) []chatMessage {
	msgs := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.SystemPrompt})
	}

	if len(req.ImageJPEG) == 0 {
		return append(msgs, chatMessage{Role: "user", Content: req.UserPrompt})
	}

	encoded := base64.StdEncoding.EncodeToString(req.ImageJPEG)
	return append(msgs, chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: req.UserPrompt},
			{Type: "image_url", ImageURL: &imageURL{
				URL:    "data:image/jpeg;base64," + encoded,
				Detail: "high",
			}},
		},
	})
}

func (c *openAIClient) doRequest(ctx context.Context, body chatRequest) (*chatResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.cfg.Endpoint + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model endpoint returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &resp, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return ""
	case ctx.Err() != nil:
		return "TIMEOUT"
	case isConnectionError(err):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}
