// Package bank reads and writes question bank files.
//
// A bank file is either the versioned envelope written by Encode:
//
//	{"format_version": "v1.0.0", "exported_at": "...", "questions": [...]}
//
// or a bare JSON array of questions, the layout of hand-maintained data files.
package bank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/abhisek/certguru/internal/question"
)

// FormatVersion is the version written by Encode. Files with the same major
// version can be read.
const FormatVersion = "v1.0.0"

// ErrUnsupportedVersion is returned for a format_version this build cannot read.
var ErrUnsupportedVersion = errors.New("unsupported bank format version")

// File is a decoded bank file.
type File struct {
	FormatVersion string               `json:"format_version"`
	ExportedAt    time.Time            `json:"exported_at"`
	Questions     []*question.Question `json:"questions"`
}

var answerSchema = map[string]any{
	"type":     "object",
	"required": []any{"answer_text", "status"},
	"properties": map[string]any{
		"answer_text": map[string]any{"type": "string"},
		"status":      map[string]any{"enum": []any{"correct", "incorrect"}},
	},
}

var questionSchema = map[string]any{
	"type":     "object",
	"required": []any{"question_number", "question_text", "answers", "tag"},
	"properties": map[string]any{
		"question_number": map[string]any{"type": "integer", "minimum": 1},
		"question_text":   map[string]any{"type": "string", "minLength": 1},
		"answers": map[string]any{
			"type":                 "object",
			"minProperties":        2,
			"additionalProperties": answerSchema,
		},
		"tag": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "string"},
		},
		"score":      map[string]any{"type": "integer"},
		"starred":    map[string]any{"type": "boolean"},
		"active":     map[string]any{"type": "boolean"},
		"note":       map[string]any{"type": "string"},
		"case_study": map[string]any{"type": "string"},
	},
}

var fileSchema = map[string]any{
	"oneOf": []any{
		map[string]any{"type": "array", "items": questionSchema},
		map[string]any{
			"type":     "object",
			"required": []any{"format_version", "questions"},
			"properties": map[string]any{
				"format_version": map[string]any{"type": "string"},
				"questions":      map[string]any{"type": "array", "items": questionSchema},
			},
		},
	},
}

func compileSchema() (*jsonschema.Schema, error) {
	// Round-trip through JSON so the compiler sees plain decoded values.
	raw, err := json.Marshal(fileSchema)
	if err != nil {
		return nil, err
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://bank.json", def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile("schema://bank.json")
}

// Decode reads and validates a bank file. Every question is also checked
// with Question.Validate and numbers must be unique.
func Decode(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile bank schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("bank schema validation failed: %w", err)
	}

	var f File
	if _, isList := doc.([]any); isList {
		f.FormatVersion = FormatVersion
		if err := json.Unmarshal(raw, &f.Questions); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
	} else {
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("decode bank: %w", err)
		}
		if err := checkVersion(f.FormatVersion); err != nil {
			return nil, err
		}
	}

	seen := make(map[int]bool, len(f.Questions))
	for _, q := range f.Questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if seen[q.Number] {
			return nil, fmt.Errorf("duplicate question_number %d", q.Number)
		}
		seen[q.Number] = true
	}
	return &f, nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, v)
	}
	if semver.Major(v) != semver.Major(FormatVersion) {
		return fmt.Errorf("%w: %s (this build reads %s.x)", ErrUnsupportedVersion, v, semver.Major(FormatVersion))
	}
	return nil
}

// Encode writes qs as a versioned, indented bank file ordered by number.
func Encode(w io.Writer, qs []*question.Question, now time.Time) error {
	sorted := make([]*question.Question, len(qs))
	copy(sorted, qs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(File{
		FormatVersion: FormatVersion,
		ExportedAt:    now.UTC(),
		Questions:     sorted,
	})
}
