package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/PabloGalante/planora/internal/domain"
)

// GeminiConfig selects the backend and models for GeminiClient.
type GeminiConfig struct {
	APIKey         string
	Project        string
	Location       string
	Backend        string // "gemini" or "vertex"
	Model          string
	EmbeddingModel string
}

// GeminiClient implements domain.Generator and domain.Embedder on top of genai.
type GeminiClient struct {
	client         *genai.Client
	modelName      string
	embeddingModel string
	safety         []*genai.SafetySetting
}

// NewGeminiClient creates a client for either the Gemini API (API key) or Vertex AI.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	cc := &genai.ClientConfig{}
	switch cfg.Backend {
	case "vertex":
		if cfg.Project == "" || cfg.Location == "" {
			return nil, fmt.Errorf("vertex backend requires project and location")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	default:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini backend requires an API key")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}

	return &GeminiClient{
		client:         client,
		modelName:      modelName,
		embeddingModel: embeddingModel,
		safety:         defaultSafetySettings(),
	}, nil
}

func defaultSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	out := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		out = append(out, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
		})
	}
	return out
}

// Generate implements domain.Generator. With a ResponseSchema the model is asked
// for JSON and the raw JSON text is returned unparsed.
func (g *GeminiClient) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	contents := buildContents(req.History, req.Parts)

	temp := req.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:    &temp,
		SafetySettings: g.safety,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(req.ResponseSchema)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", classify(req.Op, err)
	}

	text := res.Text()
	if strings.TrimSpace(text) == "" {
		// A blocked or empty candidate is unusable output, not an upstream outage.
		return "", fmt.Errorf("%s: %w: empty response (%s)", req.Op, domain.ErrMalformedOutput, emptyReason(res))
	}
	return text, nil
}

func emptyReason(res *genai.GenerateContentResponse) string {
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return "prompt blocked: " + string(res.PromptFeedback.BlockReason)
	}
	if len(res.Candidates) > 0 && res.Candidates[0].FinishReason != "" {
		return "finish reason " + string(res.Candidates[0].FinishReason)
	}
	return "no candidates"
}

// Embed implements domain.Embedder.
func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	res, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, classify("embed", err)
	}
	if len(res.Embeddings) == 0 || res.Embeddings[0] == nil || len(res.Embeddings[0].Values) == 0 {
		return nil, &domain.UpstreamError{Op: "embed", Err: errors.New("no embedding values returned")}
	}
	return res.Embeddings[0].Values, nil
}

// classify wraps a genai failure in a domain.UpstreamError. Only the overload
// signature (503 / UNAVAILABLE) is retryable; quota, auth and request errors are not.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &domain.UpstreamError{Op: op, Err: err}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{
			Op:        op,
			Code:      apiErr.Code,
			Retryable: apiErr.Code == http.StatusServiceUnavailable || apiErr.Status == "UNAVAILABLE",
			Err:       err,
		}
	}
	return &domain.UpstreamError{Op: op, Err: err}
}
