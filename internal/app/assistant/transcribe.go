package assistant

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/PabloGalante/planora/internal/app/retry"
	"github.com/PabloGalante/planora/internal/domain"
)

// transcribe turns audio or image input into plain text. Without media it
// returns the message text unchanged. Any failure falls back to the message
// text; transcription never fails the turn.
func (s *Service) transcribe(ctx context.Context, log *slog.Logger, in domain.InboundMessage, history []domain.Turn) string {
	if !in.HasMedia() {
		return in.Text
	}
	defer s.stage(log, "transcribe")()

	ctx, cancel := context.WithTimeout(ctx, s.opts.TranscribeTimeout)
	defer cancel()

	parts := make([]domain.Part, 0, 3)
	if in.Audio != nil {
		parts = append(parts, domain.Part{Media: in.Audio})
	}
	if in.Image != nil {
		parts = append(parts, domain.Part{Media: in.Image})
	}
	if strings.TrimSpace(in.Text) != "" {
		parts = append(parts, domain.Part{Text: "Caption from the user: " + in.Text})
	}

	req := domain.GenerateRequest{
		Op:                "transcribe",
		SystemInstruction: transcribeInstruction(in),
		History:           history,
		Parts:             parts,
		ResponseSchema:    transcriptSchema(),
	}
	raw, err := retry.Do(ctx, s.retryPolicy(log, req.Op), func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, req)
	})
	if err != nil {
		log.Warn("transcription failed, using message text", "error", err)
		return in.Text
	}

	var out struct {
		Transcript *string `json:"transcript"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil || out.Transcript == nil {
		log.Warn("unreadable transcription, using message text", "error", err)
		return in.Text
	}

	t := strings.TrimSpace(*out.Transcript)
	if t == "" {
		log.Warn("empty transcription, using message text")
		return in.Text
	}
	return t
}
