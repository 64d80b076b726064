package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/abhisek/certguru/internal/question"
)

const questionsCollection = "questions"

type questionRepo struct {
	docs *Fallback
}

// NewQuestionRepo stores questions as one document per question number.
func NewQuestionRepo(docs *Fallback) QuestionRepo {
	return &questionRepo{docs: docs}
}

func (r *questionRepo) ListAll(ctx context.Context) ([]*question.Question, error) {
	docs, res := r.docs.List(ctx, questionsCollection)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	qs := make([]*question.Question, 0, len(docs))
	for _, d := range docs {
		var q question.Question
		if err := json.Unmarshal(d.Data, &q); err != nil {
			return nil, fmt.Errorf("decode question %s: %w", d.ID, err)
		}
		qs = append(qs, &q)
	}
	sortByNumber(qs)
	return qs, nil
}

func (r *questionRepo) Get(ctx context.Context, number int) (*question.Question, error) {
	data, res := r.docs.Get(ctx, questionsCollection, strconv.Itoa(number))
	if err := res.Err(); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get question %d: %w", number, err)
	}
	var q question.Question
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decode question %d: %w", number, err)
	}
	return &q, nil
}

func (r *questionRepo) Upsert(ctx context.Context, q *question.Question) Result {
	return r.UpsertMany(ctx, []*question.Question{q})
}

func (r *questionRepo) UpsertMany(ctx context.Context, qs []*question.Question) Result {
	docs := make([]Document, 0, len(qs))
	for _, q := range qs {
		data, err := json.Marshal(q)
		if err != nil {
			return Result{Failures: []BackendError{{Backend: "encode", Err: err}}}
		}
		docs = append(docs, Document{ID: strconv.Itoa(q.Number), Data: data})
	}
	return r.docs.Put(ctx, questionsCollection, docs...)
}

func sortByNumber(qs []*question.Question) {
	sort.Slice(qs, func(i, j int) bool { return qs[i].Number < qs[j].Number })
}
