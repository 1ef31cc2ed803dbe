package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyd945/travel-ai-agent/internal/domain"
	"github.com/xyd945/travel-ai-agent/internal/session"
)

func TestBegin_NewSessionGetsID(t *testing.T) {
	s := session.NewStore(time.Minute)

	tk := s.Begin(context.Background(), "", "cheap eats in Lisbon")
	defer s.Release(tk)

	require.NotEmpty(t, tk.SessionID)
	assert.EqualValues(t, 1, tk.Turn)
	assert.Empty(t, tk.History)

	snap, ok := s.Get(tk.SessionID)
	require.True(t, ok)
	require.Len(t, snap.History, 1)
	assert.Equal(t, domain.RoleUser, snap.History[0].Role)
	assert.Nil(t, snap.Answer)
}

func TestCommit_AppendsAssistantTurn(t *testing.T) {
	s := session.NewStore(time.Minute)

	tk := s.Begin(context.Background(), "", "museums in Paris")
	id := tk.SessionID
	ok := s.Commit(tk, session.Outcome{
		Reply:  "Paris, France: Louvre Museum",
		Answer: domain.StructuredAnswer{Location: domain.KnownLocation("Paris, France")},
		Places: []domain.ResolvedPlace{{Name: "Louvre Museum"}},
	})
	s.Release(tk)
	require.True(t, ok)

	tk2 := s.Begin(context.Background(), id, "and restaurants?")
	defer s.Release(tk2)
	assert.EqualValues(t, 2, tk2.Turn)
	require.Len(t, tk2.History, 2)
	assert.Equal(t, domain.RoleAssistant, tk2.History[1].Role)

	assert.Equal(t, id, tk2.SessionID)
	snap, _ := s.Get(id)
	require.NotNil(t, snap.Answer)
	assert.Equal(t, "Paris, France", snap.Answer.Location.Name)
	assert.Len(t, snap.History, 3)
}

func TestBegin_SupersedesInFlightTurn(t *testing.T) {
	s := session.NewStore(time.Minute)

	first := s.Begin(context.Background(), "", "Lisbon")
	second := s.Begin(context.Background(), first.SessionID, "Porto")
	defer s.Release(second)

	select {
	case <-first.Ctx.Done():
	default:
		t.Fatal("first turn should be cancelled")
	}
	assert.True(t, errors.Is(context.Cause(first.Ctx), domain.ErrSuperseded))
	assert.NoError(t, second.Ctx.Err())

	assert.False(t, s.Commit(first, session.Outcome{Reply: "stale"}), "stale commit must be refused")
	assert.True(t, s.Commit(second, session.Outcome{Reply: "fresh"}))

	snap, _ := s.Get(first.SessionID)
	require.Len(t, snap.History, 3)
	assert.Equal(t, "fresh", snap.History[2].Text)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := session.NewStore(time.Minute)
	tk := s.Begin(context.Background(), "", "Rome")
	s.Commit(tk, session.Outcome{Places: []domain.ResolvedPlace{{Name: "Colosseum"}}})
	s.Release(tk)

	snap, _ := s.Get(tk.SessionID)
	snap.Places[0].Name = "changed"
	snap.History[0].Text = "changed"

	again, _ := s.Get(tk.SessionID)
	assert.Equal(t, "Colosseum", again.Places[0].Name)
	assert.Equal(t, "Rome", again.History[0].Text)
}

func TestBegin_UnknownIDGetsFreshID(t *testing.T) {
	s := session.NewStore(time.Minute)

	tk := s.Begin(context.Background(), "client-picked", "Rome")
	defer s.Release(tk)

	require.NotEmpty(t, tk.SessionID)
	assert.NotEqual(t, "client-picked", tk.SessionID)
	assert.EqualValues(t, 1, tk.Turn)
	_, ok := s.Get("client-picked")
	assert.False(t, ok)
	_, ok = s.Get(tk.SessionID)
	assert.True(t, ok)
}

func TestGet_Unknown(t *testing.T) {
	s := session.NewStore(time.Minute)
	_, ok := s.Get("missing")
	assert.False(t, ok)
	_, ok = s.Get("")
	assert.False(t, ok)
}
