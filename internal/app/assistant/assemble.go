package assistant

import (
	"strings"

	"github.com/PabloGalante/planora/internal/domain"
)

// assemble builds the turn's response. Lists are never nil.
func assemble(reply string, citations []domain.Citation, transcript string, results []domain.ActionResult, ack string) *domain.PipelineResponse {
	if strings.TrimSpace(reply) == "" {
		reply = ack
	}
	if citations == nil {
		citations = []domain.Citation{}
	}
	if results == nil {
		results = []domain.ActionResult{}
	}
	return &domain.PipelineResponse{
		Reply:         reply,
		Citations:     citations,
		Transcript:    transcript,
		ActionResults: results,
	}
}

// fallback is the response for a turn whose inference timed out or produced
// unusable output. Nothing was executed.
func (s *Service) fallback(transcript string) *domain.PipelineResponse {
	return &domain.PipelineResponse{
		Reply:         s.opts.FallbackReply,
		Citations:     []domain.Citation{},
		Transcript:    transcript,
		ActionResults: []domain.ActionResult{},
	}
}
