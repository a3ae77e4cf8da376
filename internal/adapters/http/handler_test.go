package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/planora/internal/adapters/auth"
	httpadapter "github.com/PabloGalante/planora/internal/adapters/http"
	"github.com/PabloGalante/planora/internal/adapters/llm"
	"github.com/PabloGalante/planora/internal/adapters/storage/memory"
	"github.com/PabloGalante/planora/internal/app/actions"
	"github.com/PabloGalante/planora/internal/app/assistant"
	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

const token = "Bearer tok-alice"

func newTestServer(t *testing.T) (http.Handler, *llm.MockLLM) {
	t.Helper()

	gen := llm.NewMockLLM()
	repos := memory.NewRepositories()
	metrics := observability.NewMetrics()

	svc, err := assistant.NewService(assistant.Deps{
		Generator: gen,
		Embedder:  gen,
		Index:     memory.NewVectorIndex(),
		Repos:     repos,
		Executor:  actions.NewExecutor(repos, nil, metrics),
		Metrics:   metrics,
	}, assistant.Options{})
	require.NoError(t, err)

	authn := auth.NewStaticTokens(map[string]string{"tok-alice": "alice"})
	return httpadapter.NewServer(svc, authn, metrics), gen
}

func post(t *testing.T, srv http.Handler, body string, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/assistant", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAssistantRequiresCredential(t *testing.T) {
	srv, gen := newTestServer(t)

	for _, cred := range []string{"", "Bearer wrong"} {
		w := post(t, srv, `{"message":"hi","mode":"auto"}`, cred)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	assert.Empty(t, gen.Requests("infer"), "no side effects before authentication")
}

func TestAssistantBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"message":`},
		{"unknown mode", `{"message":"hi","mode":"shout"}`},
		{"bad base64", `{"image":{"data":"***","mimeType":"image/png"}}`},
		{"media without mime", `{"audio":{"data":"aGk="}}`},
		{"unknown sender", `{"message":"hi","history":[{"sender":"bot","text":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, srv, tt.body, token)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAssistantCreatesTasks(t *testing.T) {
	srv, gen := newTestServer(t)
	gen.Script("infer", llm.Response{Text: `{
		"reply": "Added both.",
		"actions": [
			{"type": "CREATE_TASK", "params": {"title": "Buy milk"}},
			{"type": "CREATE_TASK", "params": {"title": "Call Ali", "dueDate": "2024-05-02"}}
		]
	}`})

	w := post(t, srv, `{"message":"buy milk and call Ali tomorrow","mode":"action","history":[{"sender":"user","text":"hello"},{"sender":"ai","text":"hi!"}]}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Reply         string `json:"reply"`
		Transcript    string `json:"transcript"`
		Citations     []any  `json:"citations"`
		ActionResults []struct {
			EntityType string         `json:"entityType"`
			Operation  string         `json:"operation"`
			Data       map[string]any `json:"data"`
		} `json:"actionResults"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "Added both.", resp.Reply)
	assert.Equal(t, "buy milk and call Ali tomorrow", resp.Transcript)
	assert.NotNil(t, resp.Citations)
	require.Len(t, resp.ActionResults, 2)
	assert.Equal(t, "task", resp.ActionResults[1].EntityType)
	assert.Equal(t, "create", resp.ActionResults[1].Operation)
	assert.Equal(t, "Call Ali", resp.ActionResults[1].Data["title"])
	assert.Equal(t, "alice", resp.ActionResults[1].Data["userId"])

	history := gen.Requests("infer")[0].History
	require.Len(t, history, 2)
	assert.Equal(t, domain.SenderAI, history[1].Sender)
}

func TestAssistantEmptyMessageRunsTheTurn(t *testing.T) {
	srv, gen := newTestServer(t)
	gen.Script("infer", llm.Response{Text: `{"reply": "What would you like to do?", "actions": [{"type": "CHAT", "params": {}}]}`})

	w := post(t, srv, `{"message":"  ","mode":"action"}`, token)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "What would you like to do?", body["reply"])
	assert.Empty(t, body["actionResults"])
	assert.Len(t, gen.Requests("infer"), 1)
}

func TestAssistantMalformedOutputIsStillOK(t *testing.T) {
	srv, gen := newTestServer(t)
	gen.Script("infer", llm.Response{Text: `I'd be happy to help!`})

	w := post(t, srv, `{"message":"add milk","mode":"action"}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actionResults":[]`)
}

func TestAssistantFatalErrorIs500(t *testing.T) {
	srv, gen := newTestServer(t)
	gen.Script("infer", llm.Response{Err: &domain.UpstreamError{Op: "infer", Code: 403, Err: errors.New("permission denied")}})

	w := post(t, srv, `{"message":"hi","mode":"action"}`, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "permission denied")
}

func TestMetricsAndPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	post(t, srv, `{"message":"hi","mode":"action"}`, token)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `planora_assistant_requests_total{outcome="ok"} 1`))

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/assistant", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
