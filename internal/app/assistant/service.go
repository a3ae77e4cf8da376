// Package assistant runs one conversational turn: transcribe, retrieve,
// infer, validate, execute, assemble.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/planora/internal/app/actions"
	"github.com/PabloGalante/planora/internal/app/retry"
	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

// Deps are the collaborators of a Service. Speech and Metrics may be nil.
type Deps struct {
	Generator domain.Generator
	Embedder  domain.Embedder
	Index     domain.VectorIndex
	Repos     domain.Repositories
	Executor  *actions.Executor
	Speech    domain.SpeechSynthesizer
	Metrics   *observability.Metrics
}

// Options tune the pipeline. Zero values are replaced by DefaultOptions.
type Options struct {
	// SimilarityThreshold is the minimum cosine similarity for a citation.
	// nil means 0.5; a pointer to 0 keeps every match.
	SimilarityThreshold *float64
	TopK                int
	HistoryTurns        int
	MaxActions          int

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	TranscribeTimeout time.Duration
	RetrieveTimeout   time.Duration
	InferTimeout      time.Duration

	// Location is the user's zone, used for "today" and for zone-less due dates.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time

	FallbackReply string
	AckReply      string
	NoMemoryReply string
}

func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: ptr(0.5),
		TopK:                5,
		HistoryTurns:        3,
		MaxActions:          10,
		RetryMaxAttempts:    3,
		RetryBaseDelay:      500 * time.Millisecond,
		RetryMaxDelay:       4 * time.Second,
		TranscribeTimeout:   30 * time.Second,
		RetrieveTimeout:     10 * time.Second,
		InferTimeout:        45 * time.Second,
		Location:            time.UTC,
		Now:                 time.Now,
		FallbackReply:       "Sorry, I couldn't process that request. Please try rephrasing it.",
		AckReply:            "Done.",
		NoMemoryReply:       "I couldn't find anything relevant in your notes or tasks.",
	}
}

func ptr[T any](v T) *T { return &v }

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SimilarityThreshold == nil {
		o.SimilarityThreshold = d.SimilarityThreshold
	}
	if o.TopK == 0 {
		o.TopK = d.TopK
	}
	if o.HistoryTurns == 0 {
		o.HistoryTurns = d.HistoryTurns
	}
	if o.MaxActions == 0 {
		o.MaxActions = d.MaxActions
	}
	if o.RetryMaxAttempts == 0 {
		o.RetryMaxAttempts = d.RetryMaxAttempts
	}
	if o.RetryBaseDelay == 0 {
		o.RetryBaseDelay = d.RetryBaseDelay
	}
	if o.RetryMaxDelay == 0 {
		o.RetryMaxDelay = d.RetryMaxDelay
	}
	if o.TranscribeTimeout == 0 {
		o.TranscribeTimeout = d.TranscribeTimeout
	}
	if o.RetrieveTimeout == 0 {
		o.RetrieveTimeout = d.RetrieveTimeout
	}
	if o.InferTimeout == 0 {
		o.InferTimeout = d.InferTimeout
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	if o.FallbackReply == "" {
		o.FallbackReply = d.FallbackReply
	}
	if o.AckReply == "" {
		o.AckReply = d.AckReply
	}
	if o.NoMemoryReply == "" {
		o.NoMemoryReply = d.NoMemoryReply
	}
	return o
}

// Service is the assistant pipeline. It is safe for concurrent use; each
// Handle call owns its own state.
type Service struct {
	gen       domain.Generator
	embedder  domain.Embedder
	index     domain.VectorIndex
	repos     domain.Repositories
	executor  *actions.Executor
	speech    domain.SpeechSynthesizer
	metrics   *observability.Metrics
	validator *Validator
	opts      Options
}

func NewService(deps Deps, opts Options) (*Service, error) {
	if deps.Generator == nil || deps.Embedder == nil || deps.Index == nil || deps.Executor == nil {
		return nil, errors.New("assistant: generator, embedder, index and executor are required")
	}
	opts = opts.withDefaults()
	if err := retry.CheckExponential(opts.RetryBaseDelay, opts.RetryMaxDelay, opts.RetryMaxAttempts); err != nil {
		return nil, fmt.Errorf("assistant: %w", err)
	}

	v, err := NewValidator(opts.MaxActions, opts.Location)
	if err != nil {
		return nil, err
	}

	return &Service{
		gen:       deps.Generator,
		embedder:  deps.Embedder,
		index:     deps.Index,
		repos:     deps.Repos,
		executor:  deps.Executor,
		speech:    deps.Speech,
		metrics:   deps.Metrics,
		validator: v,
		opts:      opts,
	}, nil
}

// Handle runs one turn. It returns domain.ErrUnauthorized for an anonymous
// message and an error only when inference fails for a reason other than its
// deadline; every other problem degrades into the response.
func (s *Service) Handle(ctx context.Context, in domain.InboundMessage) (*domain.PipelineResponse, error) {
	if in.Principal.UserID == "" {
		s.metrics.ObserveRequest("unauthorized")
		return nil, domain.ErrUnauthorized
	}
	if in.Mode == "" {
		in.Mode = domain.ModeAuto
	}

	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.Principal.UserID,
		"mode", in.Mode,
	)
	log.Info("assistant turn started",
		"has_audio", in.Audio != nil,
		"has_image", in.Image != nil,
		"history_turns", len(in.History))

	history := lastTurns(in.History, s.opts.HistoryTurns)
	transcript := s.transcribe(ctx, log, in, history)

	var (
		found     retrieval
		reference string
	)
	g, gctx := errgroup.WithContext(ctx)
	if in.Mode != domain.ModeAction && !in.HasMedia() {
		g.Go(func() error {
			found = s.retrieve(gctx, log, in.Principal.UserID, transcript)
			return nil
		})
	}
	if in.Mode != domain.ModeMemory {
		g.Go(func() error {
			reference = s.loadReference(gctx, log, in.Principal.UserID)
			return nil
		})
	}
	_ = g.Wait()

	if in.Mode == domain.ModeMemory && found.ok && len(found.citations) == 0 {
		log.Info("no stored content matched, skipping inference")
		return s.finish(ctx, log, in, "ok", &domain.PipelineResponse{
			Reply:         s.opts.NoMemoryReply,
			Citations:     []domain.Citation{},
			Transcript:    transcript,
			ActionResults: []domain.ActionResult{},
		}), nil
	}

	raw, err := s.infer(ctx, log, inference{
		mode:         in.Mode,
		transcript:   transcript,
		history:      history,
		contextBlock: found.contextBlock,
		reference:    reference,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			log.Warn("inference deadline exceeded, returning fallback", "error", err)
			return s.finish(ctx, log, in, "fallback", s.fallback(transcript)), nil
		}
		if errors.Is(err, domain.ErrMalformedOutput) {
			log.Warn("inference returned unusable output, returning fallback", "error", err)
			return s.finish(ctx, log, in, "fallback", s.fallback(transcript)), nil
		}
		log.Error("inference failed", "error", err)
		s.metrics.ObserveRequest("error")
		return nil, fmt.Errorf("infer: %w", err)
	}

	out, err := s.validate(ctx, log, raw)
	if err != nil {
		log.Warn("model output rejected, returning fallback", "error", err)
		return s.finish(ctx, log, in, "fallback", s.fallback(transcript)), nil
	}

	results := s.execute(ctx, log, out.Actions, in.Principal)

	return s.finish(ctx, log, in, "ok", assemble(out.Reply, found.citations, transcript, results, s.opts.AckReply)), nil
}

func (s *Service) validate(ctx context.Context, log *slog.Logger, raw string) (*Output, error) {
	defer s.stage(log, "validate")()
	return s.validator.Validate(ctx, raw)
}

func (s *Service) execute(ctx context.Context, log *slog.Logger, intents []domain.ActionIntent, p domain.Principal) []domain.ActionResult {
	defer s.stage(log, "execute")()
	return s.executor.Execute(ctx, intents, p)
}

// finish attaches optional speech and records the outcome.
func (s *Service) finish(ctx context.Context, log *slog.Logger, in domain.InboundMessage, outcome string, resp *domain.PipelineResponse) *domain.PipelineResponse {
	if in.Speak && s.speech != nil && resp.Reply != "" {
		done := s.stage(log, "speak")
		audio, err := s.speech.Synthesize(ctx, resp.Reply)
		done()
		if err != nil {
			log.Warn("speech synthesis failed, replying with text only", "error", err)
		} else {
			resp.ReplyAudio = audio
		}
	}

	s.metrics.ObserveRequest(outcome)
	log.Info("assistant turn finished",
		"outcome", outcome,
		"actions", len(resp.ActionResults),
		"citations", len(resp.Citations))
	return resp
}

func (s *Service) retryPolicy(log *slog.Logger, op string) retry.Policy {
	return retry.Policy{
		MaxAttempts: s.opts.RetryMaxAttempts,
		Backoff:     retry.Exponential(s.opts.RetryBaseDelay, s.opts.RetryMaxDelay),
		Retryable:   domain.IsRetryable,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			s.metrics.ObserveRetry(op)
			log.Warn("upstream call failed, retrying",
				"op", op,
				"attempt", attempt+1,
				"wait_ms", wait.Milliseconds(),
				"error", err)
		},
	}
}

// stage logs and records the duration of one pipeline stage. Call the
// returned func when the stage ends.
func (s *Service) stage(log *slog.Logger, name string) func() {
	start := time.Now()
	log.Debug("stage start", "stage", name)
	return func() {
		elapsed := time.Since(start)
		s.metrics.ObserveStage(name, elapsed)
		log.Info("stage end", "stage", name, "elapsed_ms", elapsed.Milliseconds())
	}
}

func lastTurns(history []domain.Turn, n int) []domain.Turn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
