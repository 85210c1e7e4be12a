// Package support implements the widget's chat brain: persona-driven
// reply generation, conversation titling, and the fact-extraction
// memory loop.
package support

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AasheeshLikePanner/spur/spur/services/llm"
	"github.com/AasheeshLikePanner/spur/spur/sources/psql/models"
	"github.com/AasheeshLikePanner/spur/spur/utils/logging"

	"go.uber.org/zap"
)

// Completer is the non-streaming completion surface the support
// services call. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.ChatRequest) (string, error)
}

// StreamCompleter adds the streaming variant used on the websocket path.
type StreamCompleter interface {
	Completer
	CompleteStream(ctx context.Context, req llm.ChatRequest) (<-chan string, error)
}

// Fixed user-facing strings. The widget never shows a raw backend
// error in the message stream; generation failures become FallbackReply.
const (
	FallbackReply = "I couldn't generate a response. Please try again."
	FallbackTitle = "New Conversation"
)

type Responder struct {
	llm   StreamCompleter
	extra []KnowledgeEntry
}

// NewResponder builds a Responder; extra entries extend the built-in
// FAQ and may be nil.
func NewResponder(llm StreamCompleter, extra []KnowledgeEntry) *Responder {
	return &Responder{llm: llm, extra: extra}
}

// Reply produces the assistant's answer for one turn. It never returns
// an error: any completion failure is logged and replaced with
// FallbackReply so the turn always carries some reply.
func (r *Responder) Reply(ctx context.Context, history []models.Message, userMessage string, facts []string) string {
	content, err := r.llm.Complete(ctx, llm.ChatRequest{
		Messages:    buildReplyMessages(history, userMessage, facts, r.extra),
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
	if err != nil {
		logging.ErrorLogger.Error("reply generation failed", zap.Error(err))
		return FallbackReply
	}
	return content
}

// ReplyStream is the streaming counterpart of Reply. Unlike Reply it
// surfaces setup errors; the caller owns the degrade decision because
// it also owns what has already been sent over the wire.
func (r *Responder) ReplyStream(ctx context.Context, history []models.Message, userMessage string, facts []string) (<-chan string, error) {
	return r.llm.CompleteStream(ctx, llm.ChatRequest{
		Messages:    buildReplyMessages(history, userMessage, facts, r.extra),
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
}

// Title asks for a 3-5 word name for a conversation that opens with
// firstMessage. On failure it returns FallbackTitle together with the
// error; callers persist the result only when err is nil, so a stored
// name never changes because titling failed.
func (r *Responder) Title(ctx context.Context, firstMessage string) (string, error) {
	content, err := r.llm.Complete(ctx, llm.ChatRequest{
		Messages:    buildTitleMessages(firstMessage),
		Temperature: titleTemperature,
		MaxTokens:   titleMaxTokens,
	})
	if err != nil {
		return FallbackTitle, fmt.Errorf("title generation: %w", err)
	}
	title := sanitizeTitle(content)
	if title == "" {
		return FallbackTitle, errors.New("title generation: blank title")
	}
	return title, nil
}

// sanitizeTitle strips the quoting and trailing chatter models wrap
// titles in.
func sanitizeTitle(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}
