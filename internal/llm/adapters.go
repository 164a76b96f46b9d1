package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_model.go -package=mocks assistant-ai/internal/llm ChatModel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"assistant-ai/internal/contextutil"
)

// maxClassifierContext bounds how much document context goes into the routing prompt.
const maxClassifierContext = 3000

// ChatModel is the chat capability the adapters are built on.
type ChatModel interface {
	ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error)
}

var zeroTemperature float32

// deterministic pins temperature to 0 for labelling and extraction calls.
var deterministic = ChatParams{Temperature: &zeroTemperature}

// Classifier labels a question as rag, weather or unknown given document context.
type Classifier struct {
	chat ChatModel
}

// NewClassifier creates a Classifier.
func NewClassifier(chat ChatModel) *Classifier {
	return &Classifier{chat: chat}
}

// Classify returns the model's label, trimmed and lower-cased. Validating the
// label against the known intents is up to the caller.
func (c *Classifier) Classify(ctx context.Context, question, documentContext string) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(classifierPrompt, truncateRunes(documentContext, maxClassifierContext))},
		{Role: RoleUser, Content: question},
	}
	reply, err := c.chat.ChatWithMessages(ctx, messages, deterministic)
	if err != nil {
		return "", fmt.Errorf("failed to classify question: %w", err)
	}
	return strings.Trim(strings.ToLower(strings.TrimSpace(reply)), `."'`), nil
}

// Location is an extracted place. Empty fields mean the value was not found.
type Location struct {
	City  string
	State string
}

// LocationExtractor pulls a city and state out of a weather question.
type LocationExtractor struct {
	chat ChatModel
}

// NewLocationExtractor creates a LocationExtractor.
func NewLocationExtractor(chat ChatModel) *LocationExtractor {
	return &LocationExtractor{chat: chat}
}

// ExtractLocation asks the model for {"city", "state"}. A reply that is not
// valid JSON yields an empty Location and no error.
func (e *LocationExtractor) ExtractLocation(ctx context.Context, question string) (Location, error) {
	logger := contextutil.LoggerFromContext(ctx)

	messages := []Message{
		{Role: RoleSystem, Content: locationPrompt},
		{Role: RoleUser, Content: question},
	}
	reply, err := e.chat.ChatWithMessages(ctx, messages, deterministic)
	if err != nil {
		return Location{}, fmt.Errorf("failed to extract location: %w", err)
	}

	loc, ok := parseLocation(reply)
	if !ok {
		logger.WarnContext(ctx, "location extractor returned malformed output", "reply", reply)
		return Location{}, nil
	}
	return loc, nil
}

func parseLocation(reply string) (Location, bool) {
	reply = stripCodeFence(reply)

	var raw struct {
		City  *string `json:"city"`
		State *string `json:"state"`
	}
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return Location{}, false
	}

	var loc Location
	if raw.City != nil {
		loc.City = cleanPlace(*raw.City)
	}
	if raw.State != nil {
		loc.State = cleanPlace(*raw.State)
	}
	return loc, true
}

// cleanPlace trims a place name and drops the literal strings models use for "none".
func cleanPlace(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "null", "none", "n/a", "unknown":
		return ""
	}
	return s
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// AnswerGenerator answers a question strictly from retrieved context.
type AnswerGenerator struct {
	chat ChatModel
}

// NewAnswerGenerator creates an AnswerGenerator.
func NewAnswerGenerator(chat ChatModel) *AnswerGenerator {
	return &AnswerGenerator{chat: chat}
}

// Generate returns the model's answer for question given contextText.
func (g *AnswerGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: answerPrompt},
		{Role: RoleUser, Content: fmt.Sprintf("Question: %s\n\nContext:\n%s", question, contextText)},
	}
	answer, err := g.chat.ChatWithMessages(ctx, messages, ChatParams{})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// Summarizer condenses document sections and combines the partial summaries.
type Summarizer struct {
	chat ChatModel
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(chat ChatModel) *Summarizer {
	return &Summarizer{chat: chat}
}

// SummarizeSection summarizes one section of a document.
func (s *Summarizer) SummarizeSection(ctx context.Context, text string) (string, error) {
	return s.complete(ctx, fmt.Sprintf(sectionSummaryPrompt, text))
}

// Combine merges partial summaries into one overview.
func (s *Summarizer) Combine(ctx context.Context, summaries []string) (string, error) {
	return s.complete(ctx, fmt.Sprintf(combineSummaryPrompt, strings.Join(summaries, "\n\n")))
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	reply, err := s.chat.ChatWithMessages(ctx, []Message{{Role: RoleUser, Content: prompt}}, deterministic)
	if err != nil {
		return "", fmt.Errorf("failed to summarize: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
