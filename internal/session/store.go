// Package session keeps per-visitor chat state: the transcript and the
// places resolved by the latest turn.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/xyd945/travel-ai-agent/internal/domain"
)

// Ticket identifies one in-flight turn. Ctx is cancelled with
// domain.ErrSuperseded as its cause when a newer turn begins.
type Ticket struct {
	SessionID string
	Turn      uint64
	History   []domain.Turn // turns before the current message
	Ctx       context.Context

	cancel context.CancelCauseFunc
}

// Outcome is what a finished turn hands back to the store.
type Outcome struct {
	Reply  string
	Answer domain.StructuredAnswer
	Places []domain.ResolvedPlace
	Links  []domain.LinkedPlace
}

type Snapshot struct {
	ID        string                   `json:"id"`
	Turn      uint64                   `json:"turn"`
	History   []domain.Turn            `json:"history"`
	Answer    *domain.StructuredAnswer `json:"answer,omitempty"`
	Places    []domain.ResolvedPlace   `json:"places"`
	Links     []domain.LinkedPlace     `json:"links"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

type state struct {
	id      string
	history []domain.Turn
	seq     uint64
	cancel  context.CancelCauseFunc
	answer  *domain.StructuredAnswer
	places  []domain.ResolvedPlace
	links   []domain.LinkedPlace
	updated time.Time
}

type Store struct {
	mu    sync.Mutex
	items *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewStore expires sessions after ttl without activity.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		items: cache.New(ttl, ttl/2),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Begin records the user's message and opens a new turn. An empty or unknown
// id starts a fresh session. Any earlier in-flight turn is cancelled.
func (s *Store) Begin(parent context.Context, id, userText string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.lookup(id)
	if st == nil {
		// ids are always server-assigned
		st = &state{id: uuid.NewString()}
	}

	if st.cancel != nil {
		st.cancel(domain.ErrSuperseded)
	}
	ctx, cancel := context.WithCancelCause(parent)

	history := make([]domain.Turn, len(st.history))
	copy(history, st.history)

	st.history = append(st.history, domain.Turn{Role: domain.RoleUser, Text: userText})
	st.seq++
	st.cancel = cancel
	st.updated = s.now()
	s.items.Set(st.id, st, s.ttl)

	return Ticket{SessionID: st.id, Turn: st.seq, History: history, Ctx: ctx, cancel: cancel}
}

// Commit stores the outcome only if t is still the latest turn of its
// session. A stale ticket leaves the session untouched and returns false.
func (s *Store) Commit(t Ticket, o Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.lookup(t.SessionID)
	if st == nil || st.seq != t.Turn {
		return false
	}
	ans := o.Answer
	st.answer = &ans
	st.places = o.Places
	st.links = o.Links
	if o.Reply != "" {
		st.history = append(st.history, domain.Turn{Role: domain.RoleAssistant, Text: o.Reply})
	}
	st.updated = s.now()
	s.items.Set(st.id, st, s.ttl)
	return true
}

// Release frees the turn's context. Safe to call more than once.
func (s *Store) Release(t Ticket) {
	if t.cancel != nil {
		t.cancel(context.Canceled)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.lookup(t.SessionID); st != nil && st.seq == t.Turn {
		st.cancel = nil
	}
}

// Get returns a copy of the session, refreshing its expiry.
func (s *Store) Get(id string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.lookup(id)
	if st == nil {
		return Snapshot{}, false
	}
	s.items.Set(st.id, st, s.ttl)

	snap := Snapshot{
		ID:        st.id,
		Turn:      st.seq,
		History:   append([]domain.Turn(nil), st.history...),
		Places:    append([]domain.ResolvedPlace{}, st.places...),
		Links:     append([]domain.LinkedPlace{}, st.links...),
		UpdatedAt: st.updated,
	}
	if st.answer != nil {
		ans := *st.answer
		ans.PlacesOfInterest = append([]domain.PlaceOfInterest{}, st.answer.PlacesOfInterest...)
		snap.Answer = &ans
	}
	return snap, true
}

func (s *Store) Len() int { return s.items.ItemCount() }

func (s *Store) lookup(id string) *state {
	if id == "" {
		return nil
	}
	v, ok := s.items.Get(id)
	if !ok {
		return nil
	}
	return v.(*state)
}
