// Package matcher pairs current events and free-text questions with quotes
// and volunteer opportunities, asking an LLM to rank candidates and falling
// back to rule-based picks when the answer is unusable.
package matcher

import (
	"context"
	"errors"
	"strings"

	"github.com/david/goodworks/internal/ai"
	"github.com/david/goodworks/internal/bridge"
	"github.com/david/goodworks/internal/logger"
	"github.com/david/goodworks/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNewsMatchFailed     = errors.New("failed to match news events")
	ErrQuestionMatchFailed = errors.New("failed to match question to wisdom and action")
	ErrInvalidQuestion     = errors.New("question must not be empty")
)

// Collections is the request-scoped data the orchestrator reads.
type Collections interface {
	Quotes(ctx context.Context) []models.Quote
	Opportunities(ctx context.Context) []models.Opportunity
	CurrentEvents(ctx context.Context) []models.CurrentEvent
}

type Orchestrator struct {
	llm       ai.Completer
	logger    *zap.Logger
	maxLogLen int
}

// New returns an orchestrator. A nil completer makes every match fail.
func New(llm ai.Completer, l *zap.Logger) *Orchestrator {
	return &Orchestrator{
		llm:       llm,
		logger:    logger.WithComponent(l, "matcher"),
		maxLogLen: 200,
	}
}

type stepStatus int

const (
	stepOK stepStatus = iota
	stepFallback
	stepFatal
)

func (s stepStatus) String() string {
	switch s {
	case stepOK:
		return "ok"
	case stepFallback:
		return "fallback"
	default:
		return "fatal"
	}
}

// stepResult is the outcome of a single LLM call.
type stepResult struct {
	status     stepStatus
	selections []ai.Selection
	text       string
	err        error
}

// rank asks the model for a JSON array answer and validates it against shape.
func (o *Orchestrator) rank(ctx context.Context, step string, req ai.CompletionRequest, shape ai.Shape) stepResult {
	res := o.complete(ctx, step, req)
	if res.status != stepOK {
		return res
	}

	selections, err := ai.ParseSelections(res.text, shape)
	if err != nil {
		o.logger.Warn("llm answer rejected",
			zap.String("step", step),
			zap.String("response_preview", logger.TruncateForLog(res.text, o.maxLogLen)),
			zap.Error(err),
		)
		return stepResult{status: stepFallback, err: err}
	}
	res.selections = selections
	return res
}

// complete performs one LLM call. It is never retried.
func (o *Orchestrator) complete(ctx context.Context, step string, req ai.CompletionRequest) stepResult {
	text, err := o.llm.Complete(ctx, req)
	if err != nil {
		status := stepFallback
		if errors.Is(err, ai.ErrUnavailable) {
			status = stepFatal
		}
		o.logger.Warn("llm call failed",
			zap.String("step", step),
			zap.Stringer("status", status),
			zap.Error(err),
		)
		return stepResult{status: status, err: err}
	}
	o.logger.Debug("llm call succeeded",
		zap.String("step", step),
		zap.String("response_preview", logger.TruncateForLog(text, o.maxLogLen)),
	)
	return stepResult{status: stepOK, text: strings.TrimSpace(text)}
}

type snapshot struct {
	quotes        []models.Quote
	opportunities []models.Opportunity
	events        []models.CurrentEvent
}

// load resolves the needed collections concurrently.
func load(ctx context.Context, c Collections, withEvents bool) snapshot {
	var snap snapshot
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.quotes = c.Quotes(gCtx)
		return nil
	})
	g.Go(func() error {
		snap.opportunities = c.Opportunities(gCtx)
		return nil
	})
	if withEvents {
		g.Go(func() error {
			snap.events = c.CurrentEvents(gCtx)
			return nil
		})
	}
	_ = g.Wait()
	return snap
}

// candidates returns the active opportunities sharing a category with the
// matched quotes' bridged categories or with any of extra.
func candidates(opps []models.Opportunity, quotes []models.Quote, extra ...models.CauseCategory) []models.Opportunity {
	cats := append(bridge.ExpandQuotes(quotes), extra...)
	if len(cats) == 0 {
		return nil
	}
	var out []models.Opportunity
	for _, o := range opps {
		if o.ActiveStatus && o.HasCause(cats...) {
			out = append(out, o)
		}
	}
	return out
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
