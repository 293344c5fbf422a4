// Package reflection generates the weekly reflection for a user's journal
// entries and stores it.
package reflection

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kendinapp/kendin-backend/internal/apperr"
	"github.com/kendinapp/kendin-backend/internal/db"
	"github.com/kendinapp/kendin-backend/internal/logger"
	"github.com/kendinapp/kendin-backend/internal/models"
	"github.com/kendinapp/kendin-backend/internal/openai"
)

var tracer = otel.Tracer("kendin/reflection")

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 300
	DefaultTemperature = 0.7
)

var (
	ErrMissingFields    = apperr.Validation("Missing user_id or week_start_date")
	ErrInvalidWeekStart = apperr.Validation("Invalid week_start_date")
	ErrNoEntries        = apperr.Validation("No entries found for this week")
	ErrEmptyReflection  = apperr.New(apperr.KindInternal, "Empty reflection from AI")
)

// Store is the data access the generator needs. *db.DB implements it.
type Store interface {
	ListEntriesInRange(ctx context.Context, userID string, from, to time.Time) ([]models.Entry, error)
	IsPremium(ctx context.Context, userID string) (bool, error)
	UpsertWeeklyReflection(ctx context.Context, userID string, weekStart time.Time, content string) error
}

// Completer is the generative text API. *openai.Client implements it.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req *openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error)
}

// Config holds model parameters. Zero values take the defaults above;
// a nil Location renders date labels in UTC.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Location    *time.Location
}

// Request identifies the reflection to generate.
type Request struct {
	UserID        string `json:"user_id"`
	WeekStartDate string `json:"week_start_date"`
}

// Result describes a stored reflection.
type Result struct {
	UserID     string
	WeekStart  time.Time
	Content    string
	EntryCount int
	Premium    bool
}

// Generator runs the fetch, prompt, generate and store pipeline.
type Generator struct {
	store  Store
	llm    Completer
	config Config
}

// NewGenerator creates a generator with the given dependencies.
func NewGenerator(store Store, llm Completer, config Config) *Generator {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Generator{store: store, llm: llm, config: config}
}

// Validate checks the request without touching the store and returns the
// parsed week start.
func (req Request) Validate() (time.Time, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.WeekStartDate) == "" {
		return time.Time{}, ErrMissingFields
	}
	weekStart, err := ParseWeekStart(req.WeekStartDate)
	if err != nil {
		return time.Time{}, ErrInvalidWeekStart
	}
	return weekStart, nil
}

// Generate produces and stores the reflection for req. Either the whole
// pipeline succeeds and exactly one row for (user, week) holds the new
// content, or an error is returned and nothing was written.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	weekStart, err := req.Validate()
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "reflection.generate",
		trace.WithAttributes(
			attribute.String("user.id", req.UserID),
			attribute.String("week.start", weekStart.Format(models.WeekDateFormat)),
			attribute.String("llm.model", g.config.Model),
		))
	defer span.End()

	result, err := g.generate(ctx, req.UserID, weekStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("entries.count", result.EntryCount),
		attribute.Bool("user.premium", result.Premium),
	)
	return result, nil
}

func (g *Generator) generate(ctx context.Context, userID string, weekStart time.Time) (*Result, error) {
	from, to := Window(weekStart)
	entries, err := g.store.ListEntriesInRange(ctx, userID, from, to)
	if err != nil {
		return nil, apperr.Dependency("Failed to fetch entries", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	premium := g.isPremium(ctx, userID)

	temperature := g.config.Temperature
	resp, err := g.llm.CreateChatCompletion(ctx, &openai.ChatCompletionRequest{
		Model:       g.config.Model,
		Messages:    Messages(FormatEntries(entries, g.config.Location), premium),
		MaxTokens:   g.config.MaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, apperr.Dependency("OpenAI API error", err)
	}

	content := strings.TrimSpace(resp.FirstContent())
	if content == "" {
		return nil, ErrEmptyReflection
	}

	if err := g.store.UpsertWeeklyReflection(ctx, userID, weekStart, content); err != nil {
		return nil, apperr.Dependency("Failed to store reflection", err)
	}

	return &Result{
		UserID:     userID,
		WeekStart:  weekStart,
		Content:    content,
		EntryCount: len(entries),
		Premium:    premium,
	}, nil
}

// isPremium fails open to non-premium: a missing row or a failed lookup
// only changes the prompt, never the outcome of the request.
func (g *Generator) isPremium(ctx context.Context, userID string) bool {
	premium, err := g.store.IsPremium(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			logger.Ctx(ctx).Debug("no users row, treating as non-premium", "user_id", userID)
		} else {
			logger.Ctx(ctx).Warn("premium lookup failed, treating as non-premium", "user_id", userID, "error", err)
		}
		return false
	}
	return premium
}
