// spur/controllers/chat.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AasheeshLikePanner/spur/spur/services/support"
	"github.com/AasheeshLikePanner/spur/spur/sources/psql/models"
	"github.com/AasheeshLikePanner/spur/spur/types"
	"github.com/AasheeshLikePanner/spur/spur/utils/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinel errors the routes layer maps onto HTTP statuses. Ownership
// mismatches deliberately come back as ErrConversationNotFound so the
// API never confirms that somebody else's conversation exists.
var (
	ErrMissingUser          = errors.New("userId is required")
	ErrMissingMessage       = errors.New("message is required")
	ErrMissingSession       = errors.New("sessionId is required")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrArchiveUnavailable   = errors.New("archive storage is not configured")
)

const defaultConversationName = "New Chat"

const titleTimeout = 15 * time.Second

// ConversationStore is the conversation persistence surface.
// *dao.ConversationDAO satisfies it.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID, name string) (*models.Conversation, error)
	GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]models.Conversation, error)
	UpdateConversationName(ctx context.Context, id uuid.UUID, name string) error
}

// MessageStore is the message persistence surface. *dao.MessageDAO
// satisfies it.
type MessageStore interface {
	SaveMessage(ctx context.Context, conversationID uuid.UUID, sender, content string) (*models.Message, error)
	ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
}

// TranscriptArchive stores exported transcripts in object storage.
// *storage.ArchiveStore satisfies it; a nil archive means exports are
// unavailable on this deployment.
type TranscriptArchive interface {
	PutTranscript(ctx context.Context, conversationID uuid.UUID, data []byte) (string, error)
}

type ChatController struct {
	conversations ConversationStore
	messages      MessageStore
	memories      support.MemoryStore
	responder     *support.Responder
	extractor     *support.Extractor
	archive       TranscriptArchive

	// spawn runs the fire-and-forget title task; indirected so tests
	// can run it inline.
	spawn func(fn func())
}

func NewChatController(
	conversations ConversationStore,
	messages MessageStore,
	memories support.MemoryStore,
	responder *support.Responder,
	extractor *support.Extractor,
	archive TranscriptArchive,
) *ChatController {
	return &ChatController{
		conversations: conversations,
		messages:      messages,
		memories:      memories,
		responder:     responder,
		extractor:     extractor,
		archive:       archive,
		spawn:         func(fn func()) { go fn() },
	}
}

// Chat runs one full turn: validate, resolve the conversation, persist
// the user message, assemble context, generate, persist the reply, and
// extract facts. Validation, conversation resolution, saving the user
// message, and the history read abort the turn; everything after that
// degrades instead, so a reply always comes back once the user message
// is stored.
func (c *ChatController) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	defer logging.LogDuration(ctx, "chat_turn")()

	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrMissingUser
	}
	if strings.TrimSpace(req.Message) == "" {
		// A name with no message creates an empty named conversation.
		if strings.TrimSpace(req.Name) != "" {
			conv, err := c.conversations.CreateConversation(ctx, req.UserID, req.Name)
			if err != nil {
				return nil, fmt.Errorf("create conversation: %w", err)
			}
			return &types.ChatResponse{SessionID: conv.ID}, nil
		}
		return nil, ErrMissingMessage
	}

	conv, err := c.resolveConversation(ctx, req.UserID, req.SessionID)
	if err != nil {
		return nil, err
	}

	if _, err := c.messages.SaveMessage(ctx, conv.ID, models.SenderUser, req.Message); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	history, facts, err := c.loadContext(ctx, conv.ID, req.UserID)
	if err != nil {
		return nil, err
	}

	// First turn of a fresh conversation: name it in the background.
	if len(history) == 1 && history[0].Sender == models.SenderUser {
		id := conv.ID
		first := req.Message
		c.spawn(func() { c.generateTitle(id, first) })
	}

	// The just-saved user message sits at the tail of history; hand the
	// generator everything before it as prior turns.
	prior := history
	if len(prior) > 0 {
		prior = prior[:len(prior)-1]
	}
	reply := c.responder.Reply(ctx, prior, req.Message, facts)

	if _, err := c.messages.SaveMessage(ctx, conv.ID, models.SenderAI, reply); err != nil {
		logging.ErrorLogger.Error("save ai message failed",
			zap.String("conversation_id", conv.ID.String()),
			zap.Error(err),
		)
	}

	// Awaited so short-lived deployments don't drop it; its outcome
	// never changes the reply.
	if _, err := c.extractor.ProcessTurn(ctx, req.UserID, req.Message, reply); err != nil {
		logging.ErrorLogger.Error("fact extraction failed",
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
	}

	return &types.ChatResponse{Reply: reply, SessionID: conv.ID}, nil
}

// ChatStream is the websocket variant of Chat: same pipeline, but the
// reply streams chunk by chunk. Setup failures arrive on the error
// channel before any chunk; once streaming has begun, failures degrade
// exactly like Chat's.
func (c *ChatController) ChatStream(ctx context.Context, req types.ChatRequest) (<-chan string, <-chan error) {
	ch := make(chan string)
	errCh := make(chan error, 1)

	fail := func(err error) (<-chan string, <-chan error) {
		errCh <- err
		close(ch)
		close(errCh)
		return ch, errCh
	}

	if strings.TrimSpace(req.UserID) == "" {
		return fail(ErrMissingUser)
	}
	if strings.TrimSpace(req.Message) == "" {
		return fail(ErrMissingMessage)
	}

	conv, err := c.resolveConversation(ctx, req.UserID, req.SessionID)
	if err != nil {
		return fail(err)
	}
	if _, err := c.messages.SaveMessage(ctx, conv.ID, models.SenderUser, req.Message); err != nil {
		return fail(fmt.Errorf("save user message: %w", err))
	}
	history, facts, err := c.loadContext(ctx, conv.ID, req.UserID)
	if err != nil {
		return fail(err)
	}

	if len(history) == 1 && history[0].Sender == models.SenderUser {
		id := conv.ID
		first := req.Message
		c.spawn(func() { c.generateTitle(id, first) })
	}

	prior := history
	if len(prior) > 0 {
		prior = prior[:len(prior)-1]
	}
	stream, streamErr := c.responder.ReplyStream(ctx, prior, req.Message, facts)

	go func() {
		defer close(ch)
		defer close(errCh)

		var full strings.Builder
		if streamErr != nil {
			logging.ErrorLogger.Error("reply stream failed", zap.Error(streamErr))
		} else {
		deliver:
			for chunk := range stream {
				full.WriteString(chunk)
				select {
				case ch <- chunk:
				case <-ctx.Done():
					// Delivery stops here; whatever accumulated is
					// still the reply of record.
					break deliver
				}
			}
		}

		// A stream that never produced content degrades to the fixed
		// apology, delivered as a single chunk.
		if full.Len() == 0 {
			full.WriteString(support.FallbackReply)
			select {
			case ch <- support.FallbackReply:
			case <-ctx.Done():
			}
		}

		// Persistence and extraction run on their own context so neither
		// a dropped connection nor a cancelled request loses the
		// accumulated reply.
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		reply := full.String()
		if _, err := c.messages.SaveMessage(saveCtx, conv.ID, models.SenderAI, reply); err != nil {
			logging.ErrorLogger.Error("save ai message failed",
				zap.String("conversation_id", conv.ID.String()),
				zap.Error(err),
			)
		}
		if _, err := c.extractor.ProcessTurn(saveCtx, req.UserID, req.Message, reply); err != nil {
			logging.ErrorLogger.Error("fact extraction failed",
				zap.String("user_id", req.UserID),
				zap.Error(err),
			)
		}
	}()

	return ch, errCh
}

// GetHistory returns a conversation's transcript oldest-first. The
// session key is opaque to callers; anything that matches no stored
// conversation, including a malformed id, is just an empty transcript.
func (c *ChatController) GetHistory(ctx context.Context, sessionID string) ([]types.HistoryMessage, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrMissingSession
	}
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return []types.HistoryMessage{}, nil
	}
	msgs, err := c.messages.ListMessagesByConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	out := make([]types.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, types.HistoryMessage{
			Sender:    m.Sender,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// ListSessions returns the user's conversations newest-first.
func (c *ChatController) ListSessions(ctx context.Context, userID string) ([]types.SessionSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	convs, err := c.conversations.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	out := make([]types.SessionSummary, 0, len(convs))
	for _, conv := range convs {
		out = append(out, types.SessionSummary{
			ID:        conv.ID,
			Name:      conv.Name,
			CreatedAt: conv.CreatedAt,
		})
	}
	return out, nil
}

// ListMemories returns everything remembered about a user, oldest-first.
func (c *ChatController) ListMemories(ctx context.Context, userID string) ([]types.MemoryItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	rows, err := c.memories.ListMemoriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}
	out := make([]types.MemoryItem, 0, len(rows))
	for _, m := range rows {
		out = append(out, types.MemoryItem{
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// ExportTranscript writes a conversation's transcript to the archive
// bucket and returns the object key. The requester must own the
// conversation.
func (c *ChatController) ExportTranscript(ctx context.Context, req types.ExportRequest) (*types.ExportResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrMissingUser
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, ErrMissingSession
	}
	if c.archive == nil {
		return nil, ErrArchiveUnavailable
	}

	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, ErrConversationNotFound
	}
	conv, err := c.conversations.GetConversationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil || conv.UserID != req.UserID {
		return nil, ErrConversationNotFound
	}

	history, err := c.GetHistory(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	payload, err := json.MarshalIndent(struct {
		SessionID  uuid.UUID              `json:"session_id"`
		UserID     string                 `json:"user_id"`
		Name       string                 `json:"name"`
		ExportedAt time.Time              `json:"exported_at"`
		Messages   []types.HistoryMessage `json:"messages"`
	}{
		SessionID:  conv.ID,
		UserID:     conv.UserID,
		Name:       conv.Name,
		ExportedAt: time.Now().UTC(),
		Messages:   history,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}

	object, err := c.archive.PutTranscript(ctx, conv.ID, payload)
	if err != nil {
		return nil, fmt.Errorf("store transcript: %w", err)
	}
	logging.AppLogger.Info("transcript exported",
		zap.String("conversation_id", conv.ID.String()),
		zap.String("object", object),
	)
	return &types.ExportResponse{Object: object}, nil
}

// resolveConversation creates a fresh conversation when no session id
// is supplied, otherwise verifies the id exists and belongs to userID.
func (c *ChatController) resolveConversation(ctx context.Context, userID, sessionID string) (*models.Conversation, error) {
	if sessionID == "" {
		conv, err := c.conversations.CreateConversation(ctx, userID, defaultConversationName)
		if err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		return conv, nil
	}
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, ErrConversationNotFound
	}
	conv, err := c.conversations.GetConversationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil || conv.UserID != userID {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// loadContext fetches history and known facts in parallel. A facts
// failure degrades to none inside KnownFacts; a history failure is
// fatal because generation needs the transcript.
func (c *ChatController) loadContext(ctx context.Context, conversationID uuid.UUID, userID string) ([]models.Message, []string, error) {
	var (
		facts []string
		wg    sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		facts = c.extractor.KnownFacts(ctx, userID)
	}()

	history, err := c.messages.ListMessagesByConversation(ctx, conversationID)
	wg.Wait()
	if err != nil {
		return nil, nil, fmt.Errorf("load history: %w", err)
	}
	return history, facts, nil
}

// generateTitle names a conversation off its first message. Failures
// log and leave the stored name alone.
func (c *ChatController) generateTitle(conversationID uuid.UUID, firstMessage string) {
	ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
	defer cancel()

	title, err := c.responder.Title(ctx, firstMessage)
	if err != nil {
		logging.AppLogger.Warn("title generation failed",
			zap.String("conversation_id", conversationID.String()),
			zap.Error(err),
		)
		return
	}
	if err := c.conversations.UpdateConversationName(ctx, conversationID, title); err != nil {
		logging.ErrorLogger.Error("conversation rename failed",
			zap.String("conversation_id", conversationID.String()),
			zap.Error(err),
		)
	}
}
