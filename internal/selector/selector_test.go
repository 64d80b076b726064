package selector

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/scoring"
	"github.com/abhisek/certguru/internal/session"
)

func newQ(number, score int, tags ...string) *question.Question {
	return &question.Question{Number: number, Score: score, Tags: tags, Active: true}
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

func TestCandidates_TagFilterOR(t *testing.T) {
	qs := []*question.Question{
		newQ(1, 0, "networking"),
		newQ(2, 0, "security"),
		newQ(3, 0, "storage"),
	}

	got := Candidates(qs, Filter{Tags: []string{"networking", "security"}}, session.NewTracker())
	assert.Equal(t, []int{1, 2}, numbers(got))
}

func TestCandidates_StarredPseudoTag(t *testing.T) {
	starredNet := newQ(1, 0, "networking")
	starredNet.Starred = true
	starredOther := newQ(2, 0, "storage")
	starredOther.Starred = true
	qs := []*question.Question{starredNet, starredOther, newQ(3, 0, "networking")}

	got := Candidates(qs, Filter{Tags: []string{"starred", "networking"}}, nil)
	assert.Equal(t, []int{1, 2, 3}, numbers(got), "starred union must be deduplicated")

	got = Candidates(qs, Filter{Tags: []string{"starred"}}, nil)
	assert.Equal(t, []int{1, 2}, numbers(got))
}

func TestCandidates_ExcludesShownAndInactive(t *testing.T) {
	inactive := newQ(3, 0, "a")
	inactive.Active = false
	qs := []*question.Question{newQ(1, 0, "a"), newQ(2, 0, "a"), inactive}

	tr := session.NewTracker()
	tr.MarkShown(qs[0])

	got := Candidates(qs, Filter{}, tr)
	assert.Equal(t, []int{2}, numbers(got))
}

func TestCandidates_Levels(t *testing.T) {
	qs := []*question.Question{
		newQ(1, -1, "a"),
		newQ(2, 1, "a"),
		newQ(3, 3, "a"),
		newQ(4, 4, "a"),
	}

	got := Candidates(qs, Filter{Levels: []scoring.Band{scoring.BandMistakes, scoring.BandMastered}}, nil)
	assert.Equal(t, []int{1, 3}, numbers(got))
}

func TestCandidates_SkipsPerfectedUnlessRequested(t *testing.T) {
	qs := []*question.Question{newQ(1, 0, "net"), newQ(2, 4, "net"), newQ(3, 5, "net")}

	got := Candidates(qs, Filter{Tags: []string{"net"}}, nil)
	assert.Equal(t, []int{1}, numbers(got))

	got = Candidates(qs, Filter{Levels: []scoring.Band{scoring.BandLearning, scoring.BandPerfected}}, nil)
	assert.Equal(t, []int{1, 2, 3}, numbers(got))
}

func TestCandidates_StarredOnly(t *testing.T) {
	star := newQ(2, 0, "a")
	star.Starred = true
	got := Candidates([]*question.Question{newQ(1, 0, "a"), star}, Filter{StarredOnly: true}, nil)
	assert.Equal(t, []int{2}, numbers(got))
}

func TestPick_EmptyPool(t *testing.T) {
	s := New(seeded(), session.NewTracker())
	assert.Nil(t, s.Pick(nil))
}

func TestPick_MarksShown(t *testing.T) {
	tr := session.NewTracker()
	s := New(seeded(), tr)
	q := s.Pick([]*question.Question{newQ(9, 0, "x")})
	require.NotNil(t, q)
	assert.True(t, tr.IsShown(9))
	assert.Equal(t, []string{"x"}, tr.Tags())
}

func TestPick_NeverSelectsPerfected(t *testing.T) {
	s := New(seeded(), nil)
	pool := []*question.Question{newQ(1, 4, "a"), newQ(2, 3, "a")}
	for range 1000 {
		q := s.Pick(pool)
		require.Equal(t, 2, q.Number)
	}
}

func TestPick_AllZeroWeightsIsUniform(t *testing.T) {
	s := New(seeded(), nil)
	pool := []*question.Question{newQ(1, 4, "a"), newQ(2, 4, "a")}

	counts := map[int]int{}
	const draws = 10000
	for range draws {
		counts[s.Pick(pool).Number]++
	}
	assert.InDelta(t, 0.5, float64(counts[1])/draws, 0.05)
	assert.InDelta(t, 0.5, float64(counts[2])/draws, 0.05)
}

func TestPick_WeightedRatio(t *testing.T) {
	s := New(seeded(), nil)
	pool := []*question.Question{newQ(1, -1, "a"), newQ(2, 3, "a")}

	counts := map[int]int{}
	const draws = 10000
	for range draws {
		counts[s.Pick(pool).Number]++
	}

	want := 1.5 / (1.5 + 0.2)
	got := float64(counts[1]) / draws
	if math.Abs(got-want) > 0.05 {
		t.Errorf("mistakes share = %.3f, want %.3f ±0.05", got, want)
	}
}

func TestPick_NoRepeatsWithinSession(t *testing.T) {
	var qs []*question.Question
	for i := 1; i <= 20; i++ {
		qs = append(qs, newQ(i, i%5-1, "a"))
	}

	tr := session.NewTracker()
	s := New(seeded(), tr)
	seen := map[int]bool{}
	for {
		q := s.Pick(Candidates(qs, Filter{}, tr))
		if q == nil {
			break
		}
		require.False(t, seen[q.Number], "question %d picked twice", q.Number)
		seen[q.Number] = true
	}
	assert.Len(t, seen, 20)
}

func numbers(qs []*question.Question) []int {
	out := make([]int, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Number)
	}
	return out
}
