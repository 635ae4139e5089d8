package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"halo-summarizer/internal/app"
	"halo-summarizer/internal/config"
	"halo-summarizer/internal/llm"
	"halo-summarizer/internal/notify"
	"halo-summarizer/internal/settings"
	"halo-summarizer/internal/summary"
)

var longText = strings.Repeat("The quick brown fox jumps over the lazy dog. ", 4)

type testEnv struct {
	store    *settings.MockStore
	notifier *notify.MockNotifier
	gemini   *llm.MockProvider
	groq     *llm.MockProvider
	handler  http.Handler
}

func newTestEnv(cfg config.Config) *testEnv {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		store:    &settings.MockStore{},
		notifier: &notify.MockNotifier{},
		gemini:   &llm.MockProvider{ProviderName: llm.ProviderGemini},
		groq:     &llm.MockProvider{ProviderName: llm.ProviderGroq},
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 1024 * 1024
	}
	deps := app.Deps{
		Config:   cfg,
		Log:      log,
		Settings: env.store,
		Notifier: env.notifier,
		Pipeline: summary.NewPipeline(log, nil, env.gemini, env.groq),
	}
	env.handler = newRouter(deps)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeOutcome(t *testing.T, rec *httptest.ResponseRecorder) summary.Outcome {
	t.Helper()
	var out summary.Outcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestSummarizeHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*testEnv)
		wantStatus int
		check      func(*testing.T, summary.Outcome)
	}{
		{
			name: "uses stored provider and credential",
			body: `{"text":"` + longText + `","style":"quick"}`,
			setup: func(e *testEnv) {
				e.store.On("Get", mock.Anything).
					Return(settings.Settings{Provider: llm.ProviderGroq, GroqAPIKey: "q-key"}, nil).Once()
				e.groq.On("Call", mock.Anything, mock.Anything, "q-key").Return("**Fox** jumps", nil).Once()
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, out summary.Outcome) {
				assert.Equal(t, summary.StateResult, out.State)
				assert.Equal(t, "Fox jumps", out.Summary)
			},
		},
		{
			name: "explicit provider overrides stored choice",
			body: `{"text":"` + longText + `","style":"bullets","provider":"gemini"}`,
			setup: func(e *testEnv) {
				e.store.On("Get", mock.Anything).
					Return(settings.Settings{Provider: llm.ProviderGroq, GeminiAPIKey: "g-key"}, nil).Once()
				e.gemini.On("Call", mock.Anything, mock.Anything, "g-key").Return("* a\n* b", nil).Once()
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, out summary.Outcome) {
				assert.Equal(t, "- a\n- b", out.Summary)
			},
		},
		{
			name: "short text",
			body: `{"text":"too short","style":"quick"}`,
			setup: func(e *testEnv) {
				e.store.On("Get", mock.Anything).Return(settings.Defaults(), nil).Once()
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, out summary.Outcome) {
				assert.Equal(t, summary.StateError, out.State)
				assert.Equal(t, summary.KindValidation, out.Kind)
			},
		},
		{
			name: "missing credential",
			body: `{"text":"` + longText + `","style":"quick"}`,
			setup: func(e *testEnv) {
				e.store.On("Get", mock.Anything).Return(settings.Defaults(), nil).Once()
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, out summary.Outcome) {
				assert.Equal(t, summary.KindMissingCredential, out.Kind)
				assert.Contains(t, out.Message, "Gemini")
			},
		},
		{
			name: "remote error surfaced",
			body: `{"text":"` + longText + `","style":"quick"}`,
			setup: func(e *testEnv) {
				e.store.On("Get", mock.Anything).
					Return(settings.Settings{Provider: llm.ProviderGemini, GeminiAPIKey: "bad"}, nil).Once()
				e.gemini.On("Call", mock.Anything, mock.Anything, "bad").
					Return("", &llm.RemoteError{Provider: llm.ProviderGemini, Status: 400, Message: "bad key"}).Once()
			},
			wantStatus: http.StatusBadGateway,
			check: func(t *testing.T, out summary.Outcome) {
				assert.Equal(t, summary.KindRemote, out.Kind)
				assert.Equal(t, "Error: bad key", out.Message)
			},
		},
		{
			name:       "invalid style",
			body:       `{"text":"` + longText + `","style":"haiku"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "settings store failure",
			body: `{"text":"` + longText + `","style":"quick"}`,
			setup: func(e *testEnv) {
				e.store.On("Get", mock.Anything).Return(settings.Settings{}, errors.New("redis down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(config.Config{})
			if tt.setup != nil {
				tt.setup(env)
			}

			rec := env.do(httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, decodeOutcome(t, rec))
			}
			env.store.AssertExpectations(t)
			env.gemini.AssertExpectations(t)
			env.groq.AssertExpectations(t)
		})
	}
}

func TestSummarizeRateLimited(t *testing.T) {
	env := newTestEnv(config.Config{RateLimitRPS: 0.001, RateLimitBurst: 1})
	env.store.On("Get", mock.Anything).Return(settings.Defaults(), nil)

	first := env.do(httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"text":"x","style":"quick"}`)))
	second := env.do(httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"text":"x","style":"quick"}`)))

	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	health := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func multipartBody(t *testing.T, filename, contentType string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	if contentType != "" {
		h["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	t.Run("text file summarized", func(t *testing.T) {
		env := newTestEnv(config.Config{})
		env.store.On("Get", mock.Anything).
			Return(settings.Settings{Provider: llm.ProviderGemini, GeminiAPIKey: "g"}, nil).Once()
		env.gemini.On("Call", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.HasSuffix(p, strings.TrimSpace(longText))
		}), "g").Return("Summary.", nil).Once()

		body, ct := multipartBody(t, "article.txt", "", []byte(longText), map[string]string{"style": "quick"})
		req := httptest.NewRequest(http.MethodPost, "/api/summarize/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := env.do(req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Summary.", decodeOutcome(t, rec).Summary)
		env.gemini.AssertExpectations(t)
	})

	t.Run("unsupported type", func(t *testing.T) {
		env := newTestEnv(config.Config{})
		body, ct := multipartBody(t, "article.docx", "", []byte("x"), map[string]string{"style": "quick"})
		req := httptest.NewRequest(http.MethodPost, "/api/summarize/upload", body)
		req.Header.Set("Content-Type", ct)

		assert.Equal(t, http.StatusBadRequest, env.do(req).Code)
	})

	t.Run("file too large", func(t *testing.T) {
		env := newTestEnv(config.Config{MaxUploadSize: 16})
		body, ct := multipartBody(t, "article.txt", "text/plain", []byte(longText), map[string]string{"style": "quick"})
		req := httptest.NewRequest(http.MethodPost, "/api/summarize/upload", body)
		req.Header.Set("Content-Type", ct)

		assert.Equal(t, http.StatusBadRequest, env.do(req).Code)
	})

	t.Run("chunked body over limit", func(t *testing.T) {
		env := newTestEnv(config.Config{MaxUploadSize: 16})
		body, ct := multipartBody(t, "article.txt", "text/plain", bytes.Repeat([]byte("x"), 4096), map[string]string{"style": "quick"})
		req := httptest.NewRequest(http.MethodPost, "/api/summarize/upload", io.MultiReader(body))
		req.Header.Set("Content-Type", ct)
		require.Equal(t, int64(-1), req.ContentLength)

		rec := env.do(req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "file too large")
		env.store.AssertNotCalled(t, "Get", mock.Anything)
	})

	t.Run("missing file", func(t *testing.T) {
		env := newTestEnv(config.Config{})
		req := httptest.NewRequest(http.MethodPost, "/api/summarize/upload", strings.NewReader(""))
		assert.Equal(t, http.StatusBadRequest, env.do(req).Code)
	})
}

func TestSettingsHandlers(t *testing.T) {
	t.Run("get hides keys", func(t *testing.T) {
		env := newTestEnv(config.Config{})
		env.store.On("Get", mock.Anything).
			Return(settings.Settings{Provider: llm.ProviderGroq, GroqAPIKey: "secret"}, nil).Once()

		rec := env.do(httptest.NewRequest(http.MethodGet, "/api/settings", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret")
		var view settingsView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
		assert.Equal(t, settingsView{Provider: llm.ProviderGroq, GroqConfigured: true}, view)
	})

	t.Run("put saves and notifies", func(t *testing.T) {
		env := newTestEnv(config.Config{})
		want := settings.Settings{Provider: llm.ProviderGroq, GroqAPIKey: "q", GeminiAPIKey: "g"}
		env.store.On("Save", mock.Anything, want).Return(nil).Once()
		env.notifier.On("Publish", mock.Anything, mock.MatchedBy(func(e notify.Event) bool {
			return e.Type == notify.EventSettingsUpdated && e.Provider == llm.ProviderGroq
		})).Return(nil).Once()

		body := `{"aiProvider":"groq","geminiApiKey":" g ","groqApiKey":"q"}`
		rec := env.do(httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body)))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		env.store.AssertExpectations(t)
		env.notifier.AssertExpectations(t)
	})

	t.Run("put survives notifier failure", func(t *testing.T) {
		env := newTestEnv(config.Config{})
		env.store.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		env.notifier.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down")).Once()

		rec := env.do(httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"aiProvider":"gemini","geminiApiKey":"g"}`)))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("put requires key for selected provider", func(t *testing.T) {
		env := newTestEnv(config.Config{})

		rec := env.do(httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"aiProvider":"groq","geminiApiKey":"g"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please enter a Groq API key")
		env.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("put rejects unknown provider", func(t *testing.T) {
		env := newTestEnv(config.Config{})
		rec := env.do(httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"aiProvider":"claude","geminiApiKey":"g"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
