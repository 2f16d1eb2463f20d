// Package aggregator fetches the dashboard's four source collections and
// turns them into a dashboard.View.
package aggregator

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/homeplanner/homeplanner/internal/dashboard"
	"github.com/homeplanner/homeplanner/internal/model"
	"github.com/homeplanner/homeplanner/internal/report"
)

// Source provides the read-only collections a dashboard is computed from.
type Source interface {
	Tasks(ctx context.Context) ([]model.Task, error)
	UpcomingReminders(ctx context.Context) ([]model.Reminder, error)
	Knowledge(ctx context.Context) ([]model.KnowledgeEntry, error)
	Team(ctx context.Context) ([]model.TeamMember, error)
}

// Fetch reads all four collections concurrently. A failed read is reported
// and recorded in the snapshot's Failures; its collection stays empty and
// the other reads are unaffected.
func Fetch(ctx context.Context, src Source, rep report.Reporter) dashboard.Snapshot {
	var (
		snap dashboard.Snapshot
		mu   sync.Mutex
		g    errgroup.Group
	)

	fail := func(s dashboard.Source, err error) {
		mu.Lock()
		if snap.Failures == nil {
			snap.Failures = make(map[dashboard.Source]error)
		}
		snap.Failures[s] = err
		mu.Unlock()

		// A superseded pass is cancelled on purpose; nothing to report.
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return
		}
		rep.Report(ctx, string(s), err)
	}

	g.Go(func() error {
		tasks, err := src.Tasks(ctx)
		if err != nil {
			fail(dashboard.SourceTasks, err)
			return nil
		}
		snap.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		reminders, err := src.UpcomingReminders(ctx)
		if err != nil {
			fail(dashboard.SourceReminders, err)
			return nil
		}
		snap.Reminders = reminders
		return nil
	})
	g.Go(func() error {
		entries, err := src.Knowledge(ctx)
		if err != nil {
			fail(dashboard.SourceKnowledge, err)
			return nil
		}
		snap.Knowledge = entries
		return nil
	})
	g.Go(func() error {
		team, err := src.Team(ctx)
		if err != nil {
			fail(dashboard.SourceTeam, err)
			return nil
		}
		snap.Team = team
		return nil
	})

	g.Wait()
	return snap
}

// Build fetches a snapshot and computes the view for window w as of now.
func Build(ctx context.Context, src Source, rep report.Reporter, w dashboard.Window, now time.Time) dashboard.View {
	return dashboard.Compute(Fetch(ctx, src, rep), w, now)
}

// Board keeps the most recent dashboard for one viewer. Each Refresh is an
// independent pass; a pass that has been superseded by a newer one is
// cancelled and never published.
type Board struct {
	src Source
	rep report.Reporter
	now func() time.Time

	mu        sync.Mutex
	started   uint64
	published uint64
	cancel    context.CancelFunc
	view      dashboard.View
}

// NewBoard creates a Board whose calendar dates are taken in loc.
func NewBoard(src Source, rep report.Reporter, loc *time.Location) *Board {
	return &Board{
		src: src,
		rep: rep,
		now: func() time.Time { return time.Now().In(loc) },
	}
}

// Refresh runs a pass for window w. It returns the computed view and
// whether it was published; false means a newer pass started meanwhile.
func (b *Board) Refresh(ctx context.Context, w dashboard.Window) (dashboard.View, bool) {
	b.mu.Lock()
	b.started++
	gen := b.started
	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	view := Build(ctx, b.src, b.rep, w, b.now())

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.started {
		return view, false
	}
	b.view = view
	b.published = gen
	return view, true
}

// Latest returns the last published view and its generation. The
// generation is 0 until a pass has been published.
func (b *Board) Latest() (dashboard.View, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view, b.published
}
