package weather

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/llm"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_weather_deps.go -package=mocks assistant-ai/internal/weather LocationExtractor,Provider

// LocationExtractor pulls a city and region out of free text.
type LocationExtractor interface {
	ExtractLocation(ctx context.Context, question string) (llm.Location, error)
}

// Provider fetches current conditions for a place.
type Provider interface {
	Fetch(ctx context.Context, city, state string) (*Report, error)
}

const clarificationMessage = "I couldn't identify a city from your question. Please specify a city name.\n\n" +
	"**Example:** 'What's the weather in Mumbai?' or 'Temperature in Pune, Maharashtra?'"

// Result is the outcome of a weather question. Failures are reported in
// Answer with Success=false rather than as errors.
type Result struct {
	Answer  string
	Success bool
	City    string
	State   string
	Report  *Report
}

// Handler answers weather questions.
type Handler struct {
	extractor LocationExtractor
	provider  Provider
	capitals  *Capitals
	title     cases.Caser
}

// NewHandler creates a Handler. A nil capitals table uses the defaults.
func NewHandler(extractor LocationExtractor, provider Provider, capitals *Capitals) *Handler {
	if capitals == nil {
		capitals = DefaultCapitals()
	}
	return &Handler{
		extractor: extractor,
		provider:  provider,
		capitals:  capitals,
		title:     cases.Title(language.English),
	}
}

// Handle resolves a location from question and reports its current weather.
func (h *Handler) Handle(ctx context.Context, question string) Result {
	logger := contextutil.LoggerFromContext(ctx)

	loc, err := h.extractor.ExtractLocation(ctx, question)
	if err != nil {
		logger.WarnContext(ctx, "location extraction failed", "error", err)
		loc = llm.Location{}
	}
	city, state := h.resolve(loc)
	if city == "" {
		logger.DebugContext(ctx, "no city resolved", "state", loc.State)
		return Result{Answer: clarificationMessage, State: state}
	}

	report, err := h.provider.Fetch(ctx, city, state)
	if err != nil {
		logger.WarnContext(ctx, "weather fetch failed", "city", city, "state", state, "error", err)
		return Result{
			Answer: fmt.Sprintf("Sorry, couldn't fetch weather data for %s. Please check the city/state name and try again.", placeName(city, state)),
			City:   city,
			State:  state,
		}
	}

	logger.InfoContext(ctx, "weather fetched", "city", city, "state", state, "temp", report.Temp)
	return Result{
		Answer:  h.format(city, report),
		Success: true,
		City:    city,
		State:   state,
		Report:  report,
	}
}

// resolve applies the region-only rule: a state without a city, or a city
// that is itself a known region, becomes that region's capital.
func (h *Handler) resolve(loc llm.Location) (city, state string) {
	city, state = strings.TrimSpace(loc.City), strings.TrimSpace(loc.State)

	if city != "" {
		if region, capital, ok := h.capitals.Lookup(city); ok {
			return capital, region
		}
		return city, state
	}
	if state == "" {
		return "", ""
	}
	if region, capital, ok := h.capitals.Lookup(state); ok {
		return capital, region
	}
	return "", state
}

func (h *Handler) format(city string, r *Report) string {
	return fmt.Sprintf("🌤️ **Weather in %s**\n\n"+
		"**Temperature:** %s°C (Feels like %s°C)\n"+
		"**Condition:** %s\n"+
		"**Humidity:** %s%%\n"+
		"**Wind Speed:** %s m/s\n\n"+
		"Have a great day! 🌈",
		h.title.String(city),
		formatNumber(r.Temp), formatNumber(r.FeelsLike),
		h.title.String(r.Description),
		formatNumber(r.Humidity),
		formatNumber(r.WindSpeed))
}

func placeName(city, state string) string {
	if state == "" {
		return city
	}
	return city + ", " + state
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
