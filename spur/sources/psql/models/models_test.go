package models

import (
	"testing"

	"github.com/google/uuid"
)

// The BeforeCreate hooks only assign ids, so a nil tx is fine here.

func TestConversationBeforeCreateAssignsID(t *testing.T) {
	c := &Conversation{UserID: "alice"}
	if err := c.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Error("id not assigned")
	}

	fixed := uuid.New()
	c2 := &Conversation{ID: fixed, UserID: "alice"}
	if err := c2.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if c2.ID != fixed {
		t.Error("preset id must be kept")
	}
}

func TestMessageBeforeCreateAssignsID(t *testing.T) {
	m := &Message{ConversationID: uuid.New(), Sender: SenderUser, Content: "hi"}
	if err := m.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("id not assigned")
	}
}

func TestMemoryBeforeCreateAssignsID(t *testing.T) {
	m := &Memory{UserID: "alice", Content: "likes tea"}
	if err := m.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("id not assigned")
	}
}
