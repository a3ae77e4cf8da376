package assistant

import (
	"context"
	"log/slog"

	"github.com/PabloGalante/planora/internal/app/retry"
	"github.com/PabloGalante/planora/internal/domain"
)

type inference struct {
	mode         domain.Mode
	transcript   string
	history      []domain.Turn
	contextBlock string
	reference    string
}

// infer asks the model for a reply and an action list. Only text reaches the
// model here; media was consumed by transcription. Transient failures are
// retried inside the inference deadline.
func (s *Service) infer(ctx context.Context, log *slog.Logger, in inference) (string, error) {
	defer s.stage(log, "infer")()

	ctx, cancel := context.WithTimeout(ctx, s.opts.InferTimeout)
	defer cancel()

	today := s.opts.Now().In(s.opts.Location)
	req := domain.GenerateRequest{
		Op:                "infer",
		SystemInstruction: inferInstruction(in.mode, today, in.contextBlock, in.reference),
		History:           in.history,
		Parts:             []domain.Part{{Text: in.transcript}},
		ResponseSchema:    outputSchema(s.opts.MaxActions),
		Temperature:       0,
	}

	return retry.Do(ctx, s.retryPolicy(log, req.Op), func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, req)
	})
}
