package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeplanner/homeplanner/internal/auth"
	"github.com/homeplanner/homeplanner/internal/db"
)

type recorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *recorder) Report(_ context.Context, _ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

type brokenStore struct{ *MemoryStore }

func (b *brokenStore) CreateLoginAttempt(context.Context, *db.LoginAttempt) error {
	return errors.New("disk full")
}

func newLogger(store Store, rep *recorder) *Logger {
	l := NewLogger(store, rep)
	base := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	n := 0
	l.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return l
}

func TestRecord_SuccessAndFailure(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)
	l := newLogger(store, &recorder{})

	parent := &auth.AccessCode{Label: "Parent", Role: auth.RoleAdmin}
	ok := l.Record(ctx, Attempt{Submitted: "9566RFB", Code: parent, ClientIP: "10.0.0.2"})
	bad := l.Record(ctx, Attempt{Submitted: "wrong-code", ClientIP: "10.0.0.3"})

	assert.True(t, ok.Success)
	assert.Equal(t, "9566***", ok.MaskedCode)
	require.NotNil(t, ok.CodeLabel)
	assert.Equal(t, "Parent", *ok.CodeLabel)
	assert.Equal(t, "admin", *ok.CodeRole)
	assert.Nil(t, ok.FailureReason)
	assert.Empty(t, ok.PrevHash)

	assert.False(t, bad.Success)
	assert.Equal(t, "wron***", bad.MaskedCode)
	assert.Nil(t, bad.CodeLabel)
	require.NotNil(t, bad.FailureReason)
	assert.Equal(t, FailureInvalidCode, *bad.FailureReason)
	assert.Equal(t, ok.Hash, bad.PrevHash)

	list, err := l.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, bad.ID, list[0].ID, "newest first")
	assert.NoError(t, Verify(list))
}

func TestVerify_DetectsTampering(t *testing.T) {
	ctx := context.Background()
	l := newLogger(NewMemoryStore(10), &recorder{})
	for _, code := range []string{"a1", "b2", "c3"} {
		l.Record(ctx, Attempt{Submitted: code})
	}

	list, err := l.List(ctx, 10)
	require.NoError(t, err)
	require.NoError(t, Verify(list))

	list[1].ClientIP = "forged"
	assert.ErrorIs(t, Verify(list), ErrBrokenChain)

	list, _ = l.List(ctx, 10)
	list = append(list[:1], list[2:]...)
	assert.ErrorIs(t, Verify(list), ErrBrokenChain, "a dropped attempt breaks the chain")
}

func TestRecord_StoreFailureIsReported(t *testing.T) {
	rep := &recorder{}
	l := newLogger(&brokenStore{NewMemoryStore(10)}, rep)

	a := l.Record(context.Background(), Attempt{Submitted: "9566RFB"})
	assert.NotEmpty(t, a.Hash)
	require.Len(t, rep.errs, 1)
	assert.EqualError(t, rep.errs[0], "disk full")
}

func TestMemoryStore_Bounded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)
	l := newLogger(store, &recorder{})
	for i := 0; i < 5; i++ {
		l.Record(ctx, Attempt{Submitted: "code"})
	}

	list, err := store.ListLoginAttempts(ctx, 100)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(5), list[0].ID)
	assert.Equal(t, int64(3), list[2].ID)

	list, err = store.ListLoginAttempts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestVerify_ClockStepsBackwards(t *testing.T) {
	ctx := context.Background()
	l := NewLogger(NewMemoryStore(10), &recorder{})
	times := []time.Time{
		time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC),
	}
	n := 0
	l.now = func() time.Time {
		at := times[n]
		n++
		return at
	}
	for _, code := range []string{"a1", "b2", "c3"} {
		l.Record(ctx, Attempt{Submitted: code})
	}

	list, err := l.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.NoError(t, Verify(list))
}
