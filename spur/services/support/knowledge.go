package support

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KnowledgeEntry is one FAQ item the assistant can answer from.
type KnowledgeEntry struct {
	Topic  string `yaml:"topic"`
	Answer string `yaml:"answer"`
}

// builtinKnowledge is the store FAQ baked into every system prompt.
var builtinKnowledge = []KnowledgeEntry{
	{
		Topic:  "Shipping",
		Answer: "Standard shipping takes 5-7 business days, express takes 1-2. Orders over $50 ship free.",
	},
	{
		Topic:  "Returns",
		Answer: "Unused items can be returned within 30 days of delivery for a full refund. Returns start from the Orders page.",
	},
	{
		Topic:  "Support hours",
		Answer: "Human agents are available Monday to Friday, 9am-6pm ET. Outside those hours this assistant handles the chat.",
	},
	{
		Topic:  "Catalog",
		Answer: "Current lineup: Aurora desk lamp ($49), Drift wireless earbuds ($79), Atlas backpack ($89), Ember travel mug ($29).",
	},
	{
		Topic:  "Discounts",
		Answer: "Code WELCOME10 takes 10% off a first order at checkout.",
	},
}

// LoadKnowledgeFile reads extra FAQ entries from a YAML file so a
// deployment can extend the built-in set without a rebuild. Entries
// missing a topic or an answer are skipped.
func LoadKnowledgeFile(path string) ([]KnowledgeEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []KnowledgeEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse knowledge file %s: %w", path, err)
	}
	out := make([]KnowledgeEntry, 0, len(entries))
	for _, e := range entries {
		if e.Topic == "" || e.Answer == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
