package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/certguru/internal/progress"
)

const (
	historyCollection = "history"
	dailyDocID        = "daily"
	sessionsDocID     = "sessions"
)

type historyRepo struct {
	docs *Fallback
}

// NewHistoryRepo stores the daily list and the session list as one document
// each.
func NewHistoryRepo(docs *Fallback) HistoryRepo {
	return &historyRepo{docs: docs}
}

func (r *historyRepo) ReadDaily(ctx context.Context) ([]progress.DailySessionHistory, error) {
	var daily []progress.DailySessionHistory
	if err := r.read(ctx, dailyDocID, &daily); err != nil {
		return nil, err
	}
	return daily, nil
}

func (r *historyRepo) WriteDaily(ctx context.Context, daily []progress.DailySessionHistory) Result {
	if daily == nil {
		daily = []progress.DailySessionHistory{}
	}
	return r.write(ctx, dailyDocID, daily)
}

func (r *historyRepo) ReadSessions(ctx context.Context) ([]progress.IndividualSession, error) {
	var sessions []progress.IndividualSession
	if err := r.read(ctx, sessionsDocID, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *historyRepo) WriteSessions(ctx context.Context, sessions []progress.IndividualSession) Result {
	if sessions == nil {
		sessions = []progress.IndividualSession{}
	}
	return r.write(ctx, sessionsDocID, sessions)
}

func (r *historyRepo) read(ctx context.Context, id string, v any) error {
	data, res := r.docs.Get(ctx, historyCollection, id)
	if err := res.Err(); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("read %s history: %w", id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s history: %w", id, err)
	}
	return nil
}

func (r *historyRepo) write(ctx context.Context, id string, v any) Result {
	data, err := json.Marshal(v)
	if err != nil {
		return Result{Failures: []BackendError{{Backend: "encode", Err: err}}}
	}
	return r.docs.Put(ctx, historyCollection, Document{ID: id, Data: data})
}

// LoadHistory reads both history lists.
func LoadHistory(ctx context.Context, repo HistoryRepo) (*progress.History, error) {
	daily, err := repo.ReadDaily(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := repo.ReadSessions(ctx)
	if err != nil {
		return nil, err
	}
	return &progress.History{Daily: daily, Sessions: sessions}, nil
}

// SaveHistory writes both history lists and returns the first failed result,
// or the daily result when both succeed.
func SaveHistory(ctx context.Context, repo HistoryRepo, h *progress.History) Result {
	daily := repo.WriteDaily(ctx, h.Daily)
	sessions := repo.WriteSessions(ctx, h.Sessions)
	if !sessions.OK() {
		return sessions
	}
	return daily
}
