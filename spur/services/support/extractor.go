package support

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AasheeshLikePanner/spur/spur/services/llm"
	"github.com/AasheeshLikePanner/spur/spur/sources/psql/models"
	"github.com/AasheeshLikePanner/spur/spur/utils/jsonutils"
	"github.com/AasheeshLikePanner/spur/spur/utils/logging"

	"go.uber.org/zap"
)

// MemoryStore is the persistence surface the extractor reads and
// writes through. *dao.MemoryDAO satisfies it.
type MemoryStore interface {
	SaveMemories(ctx context.Context, userID string, facts []string) ([]models.Memory, error)
	ListMemoriesByUser(ctx context.Context, userID string) ([]models.Memory, error)
}

// Extractor mines completed exchanges for durable customer facts.
type Extractor struct {
	llm      Completer
	memories MemoryStore
}

func NewExtractor(llm Completer, memories MemoryStore) *Extractor {
	return &Extractor{llm: llm, memories: memories}
}

// ProcessTurn extracts new facts from one user/assistant exchange and
// appends them to the user's memory. Zero extracted facts is a normal
// outcome, not an error. Callers treat any returned error as
// log-and-continue; extraction must never fail a turn.
func (e *Extractor) ProcessTurn(ctx context.Context, userID, userMessage, reply string) ([]models.Memory, error) {
	defer logging.LogDuration(ctx, "fact_extraction")()

	raw, err := e.llm.Complete(ctx, llm.ChatRequest{
		Messages:       buildExtractionMessages(userMessage, reply),
		Temperature:    extractTemperature,
		MaxTokens:      extractMaxTokens,
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}

	facts, err := parseFacts(raw)
	if err != nil {
		return nil, fmt.Errorf("extraction parse: %w", err)
	}
	if len(facts) == 0 {
		return nil, nil
	}

	stored, err := e.memories.SaveMemories(ctx, userID, facts)
	if err != nil {
		return nil, fmt.Errorf("extraction store: %w", err)
	}
	logging.AppLogger.Info("memories stored",
		zap.String("user_id", userID),
		zap.Int("count", len(stored)),
	)
	return stored, nil
}

// KnownFacts returns the user's remembered facts oldest-first. Reads
// are best-effort: a storage failure logs and degrades to no facts so
// a chat turn is never blocked on memory.
func (e *Extractor) KnownFacts(ctx context.Context, userID string) []string {
	rows, err := e.memories.ListMemoriesByUser(ctx, userID)
	if err != nil {
		logging.ErrorLogger.Error("memory read failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}
	facts := make([]string, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, row.Content)
	}
	return facts
}

func parseFacts(raw string) ([]string, error) {
	var out struct {
		Facts []string `json:"facts"`
	}
	if err := json.Unmarshal([]byte(jsonutils.ExtractJSON(raw)), &out); err != nil {
		return nil, err
	}
	facts := make([]string, 0, len(out.Facts))
	for _, f := range out.Facts {
		if f = strings.TrimSpace(f); f != "" {
			facts = append(facts, f)
		}
	}
	return facts, nil
}
