package store

import (
	"context"
	"time"

	"github.com/abhisek/certguru/internal/progress"
	"github.com/abhisek/certguru/internal/question"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact match when set
}

// QuestionRepo persists the question bank.
type QuestionRepo interface {
	// ListAll returns every question, active or not, ordered by number.
	ListAll(ctx context.Context) ([]*question.Question, error)

	// Get returns one question or ErrNotFound.
	Get(ctx context.Context, number int) (*question.Question, error)

	// Upsert writes one question.
	Upsert(ctx context.Context, q *question.Question) Result

	// UpsertMany writes several questions in one operation.
	UpsertMany(ctx context.Context, qs []*question.Question) Result
}

// HistoryRepo persists training history. Reading before anything was
// written yields empty lists.
type HistoryRepo interface {
	ReadDaily(ctx context.Context) ([]progress.DailySessionHistory, error)
	WriteDaily(ctx context.Context, daily []progress.DailySessionHistory) Result
	ReadSessions(ctx context.Context) ([]progress.IndividualSession, error)
	WriteSessions(ctx context.Context, sessions []progress.IndividualSession) Result
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to the LLM event log.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil when it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
