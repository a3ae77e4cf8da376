package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/PabloGalante/planora/internal/domain"
)

// Response is one scripted answer for MockLLM.
type Response struct {
	Text  string
	Err   error
	Delay time.Duration
}

// MockLLM is a deterministic Generator and Embedder for local mode and tests.
// Scripted responses are consumed per op in order; without a script it echoes.
type MockLLM struct {
	mu       sync.Mutex
	scripts  map[string][]Response
	requests []domain.GenerateRequest
	embeds   []string
	embedErr error
}

func NewMockLLM() *MockLLM {
	return &MockLLM{scripts: make(map[string][]Response)}
}

// Script queues responses for the given op ("transcribe", "infer").
func (m *MockLLM) Script(op string, rs ...Response) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[op] = append(m.scripts[op], rs...)
	return m
}

// FailEmbeddings makes every Embed call return err.
func (m *MockLLM) FailEmbeddings(err error) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedErr = err
	return m
}

// Requests returns the generation requests seen for op, in call order.
func (m *MockLLM) Requests(op string) []domain.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GenerateRequest
	for _, r := range m.requests {
		if r.Op == op {
			out = append(out, r)
		}
	}
	return out
}

// Embedded returns every text passed to Embed.
func (m *MockLLM) Embedded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.embeds...)
}

func (m *MockLLM) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	var (
		r        Response
		scripted bool
	)
	if q := m.scripts[req.Op]; len(q) > 0 {
		r, scripted = q[0], true
		m.scripts[req.Op] = q[1:]
	}
	m.mu.Unlock()

	if r.Delay > 0 {
		t := time.NewTimer(r.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", &domain.UpstreamError{Op: req.Op, Err: ctx.Err()}
		case <-t.C:
		}
	}
	if scripted {
		return r.Text, r.Err
	}
	return echo(req)
}

func echo(req domain.GenerateRequest) (string, error) {
	var text []string
	for _, p := range req.Parts {
		if p.Text != "" {
			text = append(text, p.Text)
		}
	}
	joined := strings.Join(text, " ")

	var out any
	switch req.Op {
	case "transcribe":
		out = map[string]string{"transcript": joined}
	default:
		out = map[string]any{
			"transcript": joined,
			"reply":      fmt.Sprintf("You said %q.", joined),
			"actions":    []any{map[string]any{"type": "CHAT", "params": map[string]any{}}},
		}
	}
	b, err := json.Marshal(out)
	return string(b), err
}

const mockDims = 64

// Embed hashes lowercased words into a fixed-size bag-of-words vector, so texts
// sharing words score a high cosine similarity.
func (m *MockLLM) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embeds = append(m.embeds, text)
	err := m.embedErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	vec := make([]float32, mockDims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%mockDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}
