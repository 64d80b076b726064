package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		raw     string
		wantErr string
	}{
		{"explanation", testExplanationSchema, `{"explanation":"BigQuery is serverless."}`, ""},
		{"hint", testHintSchema, `{"hint":"Think columnar."}`, ""},
		{"nil schema accepts prose", nil, `Cloud Run scales to zero.`, ""},
		{"missing field", testExplanationSchema, `{}`, "does not match answer-explanation"},
		{"extra field", testHintSchema, `{"hint":"x","answer":"B"}`, "does not match question-hint"},
		{"wrong type", testHintSchema, `{"hint":42}`, "does not match question-hint"},
		{"not JSON", testExplanationSchema, `Sure! Here is the explanation`, "not JSON"},
		{"empty", testExplanationSchema, ``, "not JSON"},
	}
	for _, tt := range tests {
		err := validateResponse(tt.schema, json.RawMessage(tt.raw))
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}
		var inv *ErrInvalidResponse
		if !errors.As(err, &inv) {
			t.Errorf("%s: expected ErrInvalidResponse, got %v", tt.name, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.wantErr)
		}
		if string(inv.Content) != tt.raw {
			t.Errorf("%s: content = %q, want the raw reply", tt.name, inv.Content)
		}
	}
}

func TestValidateResponse_SchemasWithSameNameDoNotCollide(t *testing.T) {
	strict := &Schema{Name: "question-hint", Definition: map[string]any{
		"type":     "object",
		"required": []string{"hint", "confidence"},
	}}

	if err := validateResponse(testHintSchema, json.RawMessage(`{"hint":"x"}`)); err != nil {
		t.Fatalf("loose schema: %v", err)
	}
	if err := validateResponse(strict, json.RawMessage(`{"hint":"x"}`)); err == nil {
		t.Error("strict schema accepted a reply missing confidence")
	}
}

func TestValidateResponse_BadSchema(t *testing.T) {
	bad := &Schema{Name: "broken", Definition: map[string]any{"type": 12}}
	err := validateResponse(bad, json.RawMessage(`{}`))
	if err == nil || !strings.Contains(err.Error(), "compile schema broken") {
		t.Fatalf("err = %v", err)
	}
}
