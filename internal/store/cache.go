package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/certguru/internal/question"
)

// CacheState is the lifecycle of a QuestionCache.
type CacheState int

const (
	CacheUnloaded CacheState = iota
	CacheLoading
	CacheReady
	CacheStale
)

func (s CacheState) String() string {
	switch s {
	case CacheUnloaded:
		return "unloaded"
	case CacheLoading:
		return "loading"
	case CacheReady:
		return "ready"
	case CacheStale:
		return "stale"
	default:
		return fmt.Sprintf("CacheState(%d)", int(s))
	}
}

// QuestionCache keeps the question bank in memory and writes changes
// through to the repo. The in-memory copy stays authoritative when a write
// fails.
//
//	unloaded --load--> loading --ok--> ready --Invalidate--> stale
//	loading --error--> unloaded (or stale when data was loaded before)
//	stale --load--> loading
type QuestionCache struct {
	mu       sync.Mutex
	repo     QuestionRepo
	log      logrus.FieldLogger
	state    CacheState
	list     []*question.Question
	byNumber map[int]*question.Question
}

// NewQuestionCache creates an unloaded cache over repo.
func NewQuestionCache(repo QuestionRepo, log logrus.FieldLogger) *QuestionCache {
	return &QuestionCache{repo: repo, log: log, state: CacheUnloaded}
}

// State returns the current lifecycle state.
func (c *QuestionCache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Invalidate marks loaded data stale so the next access reloads it.
func (c *QuestionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CacheReady {
		c.state = CacheStale
	}
}

// Reload forces a load from the repo.
func (c *QuestionCache) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// All returns every question ordered by number. Callers own the returned
// slice but share the question pointers with the cache.
func (c *QuestionCache) All(ctx context.Context) ([]*question.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	out := make([]*question.Question, len(c.list))
	copy(out, c.list)
	return out, nil
}

// Get returns the question with number, or ErrNotFound.
func (c *QuestionCache) Get(ctx context.Context, number int) (*question.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	q, ok := c.byNumber[number]
	if !ok {
		return nil, ErrNotFound
	}
	return q, nil
}

// Save persists q, adding it to the cache when new.
func (c *QuestionCache) Save(ctx context.Context, q *question.Question) Result {
	return c.SaveMany(ctx, []*question.Question{q})
}

// SaveMany persists qs, adding unknown questions to the cache.
func (c *QuestionCache) SaveMany(ctx context.Context, qs []*question.Question) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == CacheReady || c.state == CacheStale {
		for _, q := range qs {
			c.put(q)
		}
	}

	res := c.repo.UpsertMany(ctx, qs)
	if !res.OK() {
		c.log.WithError(res.Err()).WithField("questions", len(qs)).
			Error("question write failed; keeping in-memory state")
	}
	return res
}

func (c *QuestionCache) ensure(ctx context.Context) error {
	if c.state == CacheReady {
		return nil
	}
	return c.load(ctx)
}

func (c *QuestionCache) load(ctx context.Context) error {
	prev := c.state
	c.state = CacheLoading

	qs, err := c.repo.ListAll(ctx)
	if err != nil {
		if prev == CacheStale || (prev == CacheReady && c.list != nil) {
			c.state = CacheStale
			c.log.WithError(err).Warn("question reload failed; serving stale data")
			return nil
		}
		c.state = CacheUnloaded
		return fmt.Errorf("load questions: %w", err)
	}

	c.list = nil
	c.byNumber = make(map[int]*question.Question, len(qs))
	for _, q := range qs {
		c.put(q)
	}
	c.state = CacheReady
	c.log.WithField("questions", len(qs)).Debug("question cache loaded")
	return nil
}

func (c *QuestionCache) put(q *question.Question) {
	if existing, ok := c.byNumber[q.Number]; ok {
		if existing != q {
			*existing = *q
		}
		return
	}
	c.byNumber[q.Number] = q
	c.list = append(c.list, q)
	if n := len(c.list); n > 1 && c.list[n-2].Number > q.Number {
		sortByNumber(c.list)
	}
}
