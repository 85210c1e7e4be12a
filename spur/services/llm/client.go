package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AasheeshLikePanner/spur/spur/config"
	httputils "github.com/AasheeshLikePanner/spur/spur/utils/http"
	"github.com/AasheeshLikePanner/spur/spur/utils/logging"

	"go.uber.org/zap"
)

// Client talks to any OpenAI-compatible /chat/completions endpoint
// (OpenAI, Groq, OpenRouter, a local server). The base URL and model
// come from config so deployments can switch providers without a
// code change.
type Client struct {
	baseURL string
	apiKey  string
	model   string

	client *http.Client
	// streamClient has no timeout; SSE responses stay open for the
	// whole generation and are bounded by the request context instead.
	streamClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.LLMBaseURL, "/"),
		apiKey:       cfg.LLMAPIKey,
		model:        cfg.LLMModel,
		client:       &http.Client{Timeout: 120 * time.Second},
		streamClient: &http.Client{},
	}
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

// Complete executes a single completion request and returns the first
// choice's content. An empty completion is an error so callers never
// mistake a blank response for a usable one.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	defer logging.LogDuration(ctx, "llm_complete")()

	if req.Model == "" {
		req.Model = c.model
	}
	req.Stream = false

	var parsed chatResponse
	if err := httputils.PostJSON(ctx, c.client, c.baseURL+"/chat/completions", c.headers(), req, &parsed); err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty completion content")
	}
	return content, nil
}

// CompleteStream executes a streaming completion and emits content
// deltas on the returned channel. The channel closes when the server
// signals [DONE], the stream ends, or ctx is cancelled.
func (c *Client) CompleteStream(ctx context.Context, req ChatRequest) (<-chan string, error) {
	defer logging.LogDuration(ctx, "llm_complete_stream")()

	if req.Model == "" {
		req.Model = c.model
	}
	req.Stream = true

	body, err := httputils.PostStream(ctx, c.streamClient, c.baseURL+"/chat/completions", c.headers(), req)
	if err != nil {
		return nil, fmt.Errorf("stream request failed: %w", err)
	}

	ch := make(chan string)

	go func() {
		defer func() {
			close(ch)
			body.Close()
		}()

		reader := bufio.NewReader(body)

		for {
			select {
			case <-ctx.Done():
				logging.AppLogger.Info("llm stream context cancelled")
				return
			default:
			}

			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					logging.ErrorLogger.Error("llm stream read error", zap.Error(err))
				}
				return
			}

			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data:") {
				continue
			}

			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			var chunk streamResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				logging.ErrorLogger.Error("llm stream parse error",
					zap.Error(err), zap.String("raw_line", data))
				continue
			}

			for _, choice := range chunk.Choices {
				if choice.Delta.Content != "" {
					select {
					case ch <- choice.Delta.Content:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch, nil
}
