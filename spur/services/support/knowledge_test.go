package support

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKnowledgeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	content := `- topic: Gift cards
  answer: Digital gift cards ship instantly by email.
- topic: ""
  answer: dropped because the topic is blank
- topic: Warranty
  answer: Electronics carry a one-year warranty.
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadKnowledgeFile(path)
	if err != nil {
		t.Fatalf("LoadKnowledgeFile: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Topic != "Gift cards" || entries[1].Topic != "Warranty" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestLoadKnowledgeFileMissing(t *testing.T) {
	if _, err := LoadKnowledgeFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadKnowledgeFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKnowledgeFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}
