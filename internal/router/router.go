// Package router decides which handler answers a question.
package router

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_router_deps.go -package=mocks assistant-ai/internal/router Classifier,ContextProvider

import (
	"context"
	"strings"

	"assistant-ai/internal/contextutil"
)

// Intent is the handler a question is routed to.
type Intent string

const (
	IntentRAG     Intent = "rag"
	IntentWeather Intent = "weather"
	IntentUnknown Intent = "unknown"
)

// ParseIntent maps a classifier label onto an Intent.
func ParseIntent(label string) (Intent, bool) {
	switch Intent(label) {
	case IntentRAG, IntentWeather, IntentUnknown:
		return Intent(label), true
	}
	return IntentUnknown, false
}

// Reasons recorded on a Decision.
const (
	ReasonWeatherKeyword  = "weather_keyword"
	ReasonNoDocument      = "no_document"
	ReasonContextError    = "context_error"
	ReasonEmptyContext    = "empty_context"
	ReasonClassifierError = "classifier_error"
	ReasonInvalidLabel    = "invalid_label"
	ReasonClassified      = "classified"
)

// weatherKeywords short-circuit routing before any document work happens.
// A document question that mentions one of them still routes to weather.
var weatherKeywords = []string{"weather", "temperature", "rain", "climate", "humidity", "forecast"}

// Classifier labels a question given document context.
type Classifier interface {
	Classify(ctx context.Context, question, documentContext string) (string, error)
}

// ContextProvider derives the context text the classifier sees for a document.
type ContextProvider interface {
	DocumentContext(ctx context.Context, docPath string) (string, error)
}

// Decision is the routing outcome and why it was reached.
type Decision struct {
	Intent Intent
	Reason string
}

// Router classifies questions. Failures never escape; they route to unknown.
type Router struct {
	classifier Classifier
	contexts   ContextProvider
}

// New creates a Router.
func New(classifier Classifier, contexts ContextProvider) *Router {
	return &Router{classifier: classifier, contexts: contexts}
}

// Route classifies question. docPath is empty when no document is available.
func (r *Router) Route(ctx context.Context, question, docPath string) Decision {
	logger := contextutil.LoggerFromContext(ctx)

	if HasWeatherKeyword(question) {
		return Decision{Intent: IntentWeather, Reason: ReasonWeatherKeyword}
	}

	if docPath == "" {
		return Decision{Intent: IntentUnknown, Reason: ReasonNoDocument}
	}

	docContext, err := r.contexts.DocumentContext(ctx, docPath)
	if err != nil {
		logger.WarnContext(ctx, "document context unavailable", "document", docPath, "error", err)
		return Decision{Intent: IntentUnknown, Reason: ReasonContextError}
	}
	if strings.TrimSpace(docContext) == "" {
		return Decision{Intent: IntentUnknown, Reason: ReasonEmptyContext}
	}

	label, err := r.classifier.Classify(ctx, question, docContext)
	if err != nil {
		logger.WarnContext(ctx, "classification failed", "error", err)
		return Decision{Intent: IntentUnknown, Reason: ReasonClassifierError}
	}

	intent, ok := ParseIntent(label)
	if !ok {
		logger.WarnContext(ctx, "classifier returned an unknown label", "label", label)
		return Decision{Intent: IntentUnknown, Reason: ReasonInvalidLabel}
	}
	return Decision{Intent: intent, Reason: ReasonClassified}
}

// HasWeatherKeyword reports whether the question's lowercase form contains a weather keyword.
func HasWeatherKeyword(question string) bool {
	lower := strings.ToLower(question)
	for _, kw := range weatherKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
