package support

import (
	"strings"
	"testing"

	"github.com/AasheeshLikePanner/spur/spur/sources/psql/models"
)

func TestBuildSystemPromptStructure(t *testing.T) {
	p := buildSystemPrompt(nil, nil)

	if !strings.Contains(p, "Store knowledge:") {
		t.Error("knowledge block missing")
	}
	for _, topic := range []string{"Shipping", "Returns", "Support hours", "Catalog", "Discounts"} {
		if !strings.Contains(p, "- "+topic+": ") {
			t.Errorf("FAQ topic %q missing", topic)
		}
	}
	if strings.Contains(p, "remember about this customer") {
		t.Error("facts block should be absent when there are no facts")
	}
}

func TestBuildSystemPromptFactsBlock(t *testing.T) {
	p := buildSystemPrompt([]string{"name is Priya", "prefers email over phone"}, nil)

	if !strings.Contains(p, "- name is Priya\n") {
		t.Error("first fact missing")
	}
	if !strings.Contains(p, "- prefers email over phone\n") {
		t.Error("second fact missing")
	}
	if !strings.Contains(p, memoryTrustNote) {
		t.Error("customer-fact-wins instruction missing")
	}
}

func TestBuildSystemPromptExtraKnowledge(t *testing.T) {
	extra := []KnowledgeEntry{{Topic: "Gift cards", Answer: "Digital gift cards ship instantly by email."}}
	p := buildSystemPrompt(nil, extra)

	if !strings.Contains(p, "- Gift cards: Digital gift cards ship instantly by email.") {
		t.Error("extra knowledge entry missing")
	}
}

func TestBuildReplyMessagesRoleMapping(t *testing.T) {
	history := []models.Message{
		{Sender: models.SenderUser, Content: "hi"},
		{Sender: models.SenderAI, Content: "hello, how can I help?"},
	}
	msgs := buildReplyMessages(history, "where is my order?", nil, nil)

	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Errorf("first message role = %q", msgs[0].Role)
	}
	if msgs[1].Role != "user" || msgs[1].Content != "hi" {
		t.Errorf("history user turn mangled: %+v", msgs[1])
	}
	if msgs[2].Role != "assistant" || msgs[2].Content != "hello, how can I help?" {
		t.Errorf("history ai turn mangled: %+v", msgs[2])
	}
	if msgs[3].Role != "user" || msgs[3].Content != "where is my order?" {
		t.Errorf("current message must come last: %+v", msgs[3])
	}
}

func TestBuildExtractionMessagesContainsExchange(t *testing.T) {
	msgs := buildExtractionMessages("my name is Ravi", "Nice to meet you, Ravi!")

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, `{"facts":`) {
		t.Errorf("system prompt must pin the JSON shape: %q", msgs[0].Content)
	}
	if !strings.Contains(msgs[1].Content, "[customer]: my name is Ravi") {
		t.Errorf("customer side missing: %q", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, "[assistant]: Nice to meet you, Ravi!") {
		t.Errorf("assistant side missing: %q", msgs[1].Content)
	}
}
