package support

import (
	"fmt"
	"strings"

	"github.com/AasheeshLikePanner/spur/spur/services/llm"
	"github.com/AasheeshLikePanner/spur/spur/sources/psql/models"
)

// Sampling parameters per call site. Replies get room to breathe,
// titles and extraction are kept tight and deterministic.
const (
	replyTemperature = 0.6
	replyMaxTokens   = 512

	titleTemperature = 0.2
	titleMaxTokens   = 32

	extractTemperature = 0.3
	extractMaxTokens   = 1024
)

const personaPreamble = `You are the support assistant on Spur, an online store's chat widget. You are friendly, direct, and brief: a couple of sentences unless the customer asks for detail. Answer from the store knowledge below. If you genuinely don't know, say so and point the customer to support@spur.shop instead of guessing.`

const memoryTrustNote = `If a remembered customer fact conflicts with the store knowledge above, treat the customer's fact as true.`

const titleInstruction = `Generate a 3-5 word title for a customer support conversation that starts with the message below. Respond with the title only: no quotes, no trailing punctuation.`

const extractionInstruction = `You extract durable facts about a customer from one support exchange.

Return JSON of this exact shape: {"facts": ["fact one", "fact two"]}

Rules:
- Record only things that will still be true in future conversations: the customer's name, location, preferences, orders, sizes, past issues.
- Trust what the customer says about themselves, even when it contradicts the assistant.
- Ignore moods, greetings, one-off questions, and anything about the assistant.
- If the exchange states nothing durable, return {"facts": []}`

// buildSystemPrompt assembles persona, FAQ knowledge, and the
// remembered-facts block. The facts block appears only when there is
// something to remember.
func buildSystemPrompt(facts []string, extra []KnowledgeEntry) string {
	var b strings.Builder
	b.WriteString(personaPreamble)
	b.WriteString("\n\nStore knowledge:\n")
	for _, e := range builtinKnowledge {
		b.WriteString("- " + e.Topic + ": " + e.Answer + "\n")
	}
	for _, e := range extra {
		b.WriteString("- " + e.Topic + ": " + e.Answer + "\n")
	}
	if len(facts) > 0 {
		b.WriteString("\nThings you remember about this customer from previous conversations:\n")
		for _, f := range facts {
			b.WriteString("- " + f + "\n")
		}
		b.WriteString("\n" + memoryTrustNote)
	}
	return b.String()
}

// buildReplyMessages maps stored history onto alternating user and
// assistant turns, with the current message last.
func buildReplyMessages(history []models.Message, userMessage string, facts []string, extra []KnowledgeEntry) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: buildSystemPrompt(facts, extra)})
	for _, m := range history {
		role := "user"
		if m.Sender == models.SenderAI {
			role = "assistant"
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: userMessage})
	return msgs
}

func buildTitleMessages(firstMessage string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: titleInstruction},
		{Role: "user", Content: firstMessage},
	}
}

func buildExtractionMessages(userMessage, reply string) []llm.Message {
	exchange := fmt.Sprintf("[customer]: %s\n[assistant]: %s", userMessage, reply)
	return []llm.Message{
		{Role: "system", Content: extractionInstruction},
		{Role: "user", Content: exchange},
	}
}
