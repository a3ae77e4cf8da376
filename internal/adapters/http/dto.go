package httpadapter

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/PabloGalante/planora/internal/domain"
)

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type mediaDTO struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

type turnDTO struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type assistantRequest struct {
	Message string    `json:"message"`
	History []turnDTO `json:"history"`
	Mode    string    `json:"mode"`
	Audio   *mediaDTO `json:"audio,omitempty"`
	Image   *mediaDTO `json:"image,omitempty"`
	Speak   bool      `json:"speak,omitempty"`
}

type citationDTO struct {
	EntityID   string  `json:"entityId"`
	EntityType string  `json:"entityType"`
	Snippet    string  `json:"snippet"`
	Similarity float64 `json:"similarity"`
}

type actionResultDTO struct {
	EntityType string        `json:"entityType"`
	Operation  string        `json:"operation"`
	Data       domain.Record `json:"data"`
}

type assistantResponse struct {
	Reply         string            `json:"reply"`
	Citations     []citationDTO     `json:"citations"`
	ActionResults []actionResultDTO `json:"actionResults"`
	Transcript    string            `json:"transcript"`
	ReplyAudio    *mediaDTO         `json:"replyAudio,omitempty"`
}

func (req assistantRequest) toDomain(p domain.Principal) (domain.InboundMessage, error) {
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return domain.InboundMessage{}, err
	}

	audio, err := decodeMedia("audio", req.Audio)
	if err != nil {
		return domain.InboundMessage{}, err
	}
	image, err := decodeMedia("image", req.Image)
	if err != nil {
		return domain.InboundMessage{}, err
	}

	history := make([]domain.Turn, 0, len(req.History))
	for i, t := range req.History {
		var sender domain.Sender
		switch strings.ToLower(strings.TrimSpace(t.Sender)) {
		case "user":
			sender = domain.SenderUser
		case "ai", "assistant", "model":
			sender = domain.SenderAI
		default:
			return domain.InboundMessage{}, fmt.Errorf("history[%d]: unknown sender %q", i, t.Sender)
		}
		history = append(history, domain.Turn{Sender: sender, Text: t.Text})
	}

	return domain.InboundMessage{
		Text:      req.Message,
		Audio:     audio,
		Image:     image,
		History:   history,
		Mode:      mode,
		Principal: p,
		Speak:     req.Speak,
	}, nil
}

func decodeMedia(field string, m *mediaDTO) (*domain.MediaBlob, error) {
	if m == nil || m.Data == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(m.Data)
	if err != nil {
		return nil, fmt.Errorf("%s.data is not valid base64", field)
	}
	if strings.TrimSpace(m.MIMEType) == "" {
		return nil, fmt.Errorf("%s.mimeType is required", field)
	}
	return &domain.MediaBlob{Data: data, MIMEType: m.MIMEType}, nil
}

func toAssistantResponse(out *domain.PipelineResponse) assistantResponse {
	resp := assistantResponse{
		Reply:         out.Reply,
		Citations:     make([]citationDTO, 0, len(out.Citations)),
		ActionResults: make([]actionResultDTO, 0, len(out.ActionResults)),
		Transcript:    out.Transcript,
	}
	for _, c := range out.Citations {
		resp.Citations = append(resp.Citations, citationDTO{
			EntityID:   c.EntityID,
			EntityType: string(c.EntityType),
			Snippet:    c.Snippet,
			Similarity: c.Similarity,
		})
	}
	for _, a := range out.ActionResults {
		resp.ActionResults = append(resp.ActionResults, actionResultDTO{
			EntityType: string(a.EntityType),
			Operation:  string(a.Operation),
			Data:       a.Data,
		})
	}
	if out.ReplyAudio != nil {
		resp.ReplyAudio = &mediaDTO{
			Data:     base64.StdEncoding.EncodeToString(out.ReplyAudio.Data),
			MIMEType: out.ReplyAudio.MIMEType,
		}
	}
	return resp
}
