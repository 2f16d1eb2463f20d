// Package audit records login attempts with hash chaining so the trail is
// tamper-evident.
package audit

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/homeplanner/homeplanner/internal/auth"
	"github.com/homeplanner/homeplanner/internal/db"
	"github.com/homeplanner/homeplanner/internal/report"
)

// FailureInvalidCode is the failure reason for an unmatched code.
const FailureInvalidCode = "invalid_code"

// Store persists login attempts. *db.DB satisfies it.
type Store interface {
	CreateLoginAttempt(ctx context.Context, a *db.LoginAttempt) error
	ListLoginAttempts(ctx context.Context, limit int) ([]db.LoginAttempt, error)
	LastLoginAttemptHash(ctx context.Context) (string, error)
}

// Attempt is the input for recording a login.
type Attempt struct {
	Submitted string
	Code      *auth.AccessCode // nil when nothing matched
	ClientIP  string
}

// Logger records login attempts with hash chaining.
type Logger struct {
	store    Store
	reporter report.Reporter
	now      func() time.Time
	mu       sync.Mutex // serial hash chaining
}

// NewLogger creates a new audit logger.
func NewLogger(store Store, reporter report.Reporter) *Logger {
	return &Logger{store: store, reporter: reporter, now: time.Now}
}

// Record stores a login attempt. Store failures are reported and never
// returned, so a broken audit table cannot block a login.
func (l *Logger) Record(ctx context.Context, in Attempt) *db.LoginAttempt {
	l.mu.Lock()
	defer l.mu.Unlock()

	a := &db.LoginAttempt{
		MaskedCode: auth.MaskCode(in.Submitted),
		Success:    in.Code != nil,
		ClientIP:   in.ClientIP,
		CreatedAt:  l.now().UTC().Truncate(time.Microsecond),
	}
	if in.Code != nil {
		label, role := in.Code.Label, string(in.Code.Role)
		a.CodeLabel, a.CodeRole = &label, &role
	} else {
		reason := FailureInvalidCode
		a.FailureReason = &reason
	}

	prevHash, err := l.store.LastLoginAttemptHash(ctx)
	if err != nil {
		l.reporter.Report(ctx, "audit", err)
		prevHash = ""
	}
	a.PrevHash = prevHash
	a.Hash = computeHash(prevHash, a)

	if err := l.store.CreateLoginAttempt(ctx, a); err != nil {
		l.reporter.Report(ctx, "audit", err)
	}
	return a
}

// List returns recent attempts, newest first.
func (l *Logger) List(ctx context.Context, limit int) ([]db.LoginAttempt, error) {
	return l.store.ListLoginAttempts(ctx, db.ClampAttemptLimit(limit))
}

// ErrBrokenChain is returned by Verify when a hash does not match.
var ErrBrokenChain = errors.New("audit chain broken")

// Verify checks a run of attempts given newest first, as List returns them.
func Verify(attempts []db.LoginAttempt) error {
	for i := len(attempts) - 1; i >= 0; i-- {
		a := &attempts[i]
		if computeHash(a.PrevHash, a) != a.Hash {
			return fmt.Errorf("%w at attempt %d", ErrBrokenChain, a.ID)
		}
		if i < len(attempts)-1 && a.PrevHash != attempts[i+1].Hash {
			return fmt.Errorf("%w before attempt %d", ErrBrokenChain, a.ID)
		}
	}
	return nil
}

// computeHash creates a SHA-256 hash for an attempt, chained to the previous hash.
func computeHash(prevHash string, a *db.LoginAttempt) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
		prevHash,
		a.CreatedAt.UTC().Format(time.RFC3339Nano),
		a.MaskedCode,
		deref(a.CodeLabel),
		deref(a.CodeRole),
		strconv.FormatBool(a.Success),
		deref(a.FailureReason),
		a.ClientIP,
	)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MemoryStore keeps the most recent attempts in memory. It is used when no
// database is configured.
type MemoryStore struct {
	mu       sync.Mutex
	max      int
	nextID   int64
	attempts []db.LoginAttempt // oldest first
}

// NewMemoryStore creates a store holding at most max attempts.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = db.MaxAttemptLimit
	}
	return &MemoryStore{max: max}
}

// CreateLoginAttempt implements Store.
func (m *MemoryStore) CreateLoginAttempt(_ context.Context, a *db.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	a.ID = m.nextID
	m.attempts = append(m.attempts, *a)
	if over := len(m.attempts) - m.max; over > 0 {
		m.attempts = append(m.attempts[:0:0], m.attempts[over:]...)
	}
	return nil
}

// ListLoginAttempts implements Store.
func (m *MemoryStore) ListLoginAttempts(_ context.Context, limit int) ([]db.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]db.LoginAttempt, len(m.attempts))
	copy(out, m.attempts)
	slices.Reverse(out)
	if limit := db.ClampAttemptLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LastLoginAttemptHash implements Store.
func (m *MemoryStore) LastLoginAttemptHash(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.attempts) == 0 {
		return "", nil
	}
	return m.attempts[len(m.attempts)-1].Hash, nil
}
