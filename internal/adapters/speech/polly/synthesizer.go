// Package polly renders assistant replies as speech with Amazon Polly.
package polly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"

	"github.com/PabloGalante/planora/internal/domain"
)

// Polly rejects plain text longer than this.
const maxTextChars = 3000

type synthClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

type Config struct {
	Region string
	Voice  string
	Engine string
}

// Synthesizer implements domain.SpeechSynthesizer. The AWS client is created
// on first use so a process without credentials can still start.
type Synthesizer struct {
	mu     sync.Mutex
	client synthClient
	cfg    Config
}

func NewSynthesizer(cfg Config) *Synthesizer {
	return newWithClient(cfg, nil)
}

func newWithClient(cfg Config, client synthClient) *Synthesizer {
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = "Joanna"
	}
	if strings.TrimSpace(cfg.Engine) == "" {
		cfg.Engine = "neural"
	}
	return &Synthesizer{client: client, cfg: cfg}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*domain.MediaBlob, error) {
	text = truncate(strings.TrimSpace(text), maxTextChars)
	if text == "" {
		return nil, errors.New("polly: empty text")
	}

	client, err := s.resolveClient(ctx)
	if err != nil {
		return nil, err
	}

	engine := pollytypes.EngineStandard
	if strings.EqualFold(s.cfg.Engine, "neural") {
		engine = pollytypes.EngineNeural
	}

	out, err := client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:       engine,
		OutputFormat: pollytypes.OutputFormatMp3,
		Text:         &text,
		TextType:     pollytypes.TextTypeText,
		VoiceId:      pollytypes.VoiceId(s.cfg.Voice),
	})
	if err != nil {
		return nil, classify(err)
	}
	if out == nil || out.AudioStream == nil {
		return nil, &domain.UpstreamError{Op: "speak", Retryable: true, Err: errors.New("empty audio stream")}
	}
	defer out.AudioStream.Close()

	data, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "speak", Retryable: true, Err: fmt.Errorf("read audio: %w", err)}
	}
	return &domain.MediaBlob{Data: data, MIMEType: "audio/mpeg"}, nil
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.UpstreamError{Op: "speak", Err: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException", "ServiceFailureException":
			return &domain.UpstreamError{Op: "speak", Retryable: true, Err: err}
		default:
			return &domain.UpstreamError{Op: "speak", Err: err}
		}
	}
	return &domain.UpstreamError{Op: "speak", Retryable: true, Err: err}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}

func (s *Synthesizer) resolveClient(ctx context.Context) (synthClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s.cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	s.client = polly.NewFromConfig(awsCfg)
	return s.client, nil
}
