package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/genai"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL},
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return &GeminiProvider{client: client, model: "gemini-2.5-flash"}
}

func geminiReply(text, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
				"finishReason": finish,
			}},
			"usageMetadata": map[string]any{
				"promptTokenCount":     200,
				"candidatesTokenCount": 50,
				"totalTokenCount":      262,
			},
			"modelVersion": "gemini-2.5-flash",
		})
	}
}

func TestGeminiProvider_Explanation(t *testing.T) {
	p := newTestGeminiProvider(t, geminiReply(`{"explanation":"Pub/Sub decouples producers from consumers."}`, "STOP"))

	resp, err := p.Generate(context.Background(), explanationRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 200 || resp.Usage.OutputTokens != 50 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.Usage.TotalTokens != 262 {
		t.Errorf("total tokens = %d, want the reported 262", resp.Usage.TotalTokens)
	}
	if resp.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q", resp.Model)
	}
}

func TestGeminiProvider_MaxTokens(t *testing.T) {
	p := newTestGeminiProvider(t, geminiReply(`{"explanation":"Pub/Sub dec`, "MAX_TOKENS"))

	_, err := p.Generate(context.Background(), explanationRequest())
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestGeminiProvider_StatusErrors(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusForbidden, http.StatusServiceUnavailable} {
		p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": status, "message": http.StatusText(status)},
			})
		})
		_, err := p.Generate(context.Background(), explanationRequest())
		assertStatusError(t, status, err)
	}
}

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string", "description": "why"},
			"services": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": []any{"gcs", "bigquery"}},
			},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	}

	s := geminiSchema(def)
	if s.Type != genai.TypeObject {
		t.Fatalf("type = %v, want object", s.Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "explanation" {
		t.Errorf("required = %v", s.Required)
	}
	if s.Properties["explanation"].Description != "why" {
		t.Errorf("description = %q", s.Properties["explanation"].Description)
	}
	items := s.Properties["services"].Items
	if items == nil || items.Type != genai.TypeString || len(items.Enum) != 2 {
		t.Errorf("items = %+v", items)
	}
}

func TestNewGeminiProvider_DefaultAlias(t *testing.T) {
	cfg := DefaultConfig().Gemini
	cfg.APIKey = "test-key"
	p, err := NewGeminiProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gemini-2.5-flash" {
		t.Errorf("model = %q, want gemini-2.5-flash", p.ModelID())
	}
}
