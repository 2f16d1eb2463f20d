package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeplanner/homeplanner/internal/aggregator"
	"github.com/homeplanner/homeplanner/internal/dashboard"
	"github.com/homeplanner/homeplanner/internal/model"
	"github.com/homeplanner/homeplanner/internal/report"
)

func TestTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnv, dir)

	_, err := LoadToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	require.NoError(t, SaveToken(TokenData{Token: "abc", Server: "http://localhost:8080", Label: "Parent"}))
	info, err := os.Stat(filepath.Join(dir, tokenFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "abc", data.Token)
	assert.Equal(t, "Parent", data.Label)

	require.NoError(t, RemoveToken())
	require.NoError(t, RemoveToken(), "removing twice is fine")
	_, err = LoadToken()
	assert.Error(t, err)
}

func TestAPIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			w.Write([]byte(`{"access_token":"tok","token_type":"bearer","label":"Parent","role":"admin","expires_at":"2026-10-15T15:00:00Z"}`))
		case "/api/v1/dashboard":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "daily", r.URL.Query().Get("window"))
			w.Write([]byte(`{"window":"daily","workload":[{"name":"Alice","capacity":60,"assigned":30,"percentage":50}]}`))
		case "/api/v1/admin/login-attempts":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"admin access required"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := NewClientWithURL(srv.URL + "/")

	resp, err := c.Login(ctx, "9566RFB")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, "Parent", resp.Label)

	c.Token = resp.AccessToken
	view, err := c.Dashboard(ctx, dashboard.Daily)
	require.NoError(t, err)
	require.Len(t, view.Workload, 1)
	assert.Equal(t, 50, view.Workload[0].Percentage)

	_, err = c.LoginAttempts(ctx, 10)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "admin access required", apiErr.Message)
}

func TestRenderView(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 10, 14, 15, 0, 0, 0, zone)
	due := model.At(now.Add(20 * time.Hour))

	view := dashboard.Compute(dashboard.Snapshot{
		Tasks: []model.Task{
			{Title: "Pay bills", Priority: model.PriorityUrgent, Status: model.StatusTodo, DueDate: &due},
			{Title: "Odd", Priority: "someday", Status: model.StatusTodo},
		},
		Reminders: []model.Reminder{{Title: "Dentist", RemindAt: model.At(now.Add(2 * time.Hour))}},
		Team:      []model.TeamMember{{Name: "Alice", Role: "Parent", DailyCapacityMinutes: 60}},
		Failures:  map[dashboard.Source]error{dashboard.SourceKnowledge: errors.New("boom")},
	}, dashboard.Weekly, now)

	var buf bytes.Buffer
	renderView(&buf, &view)
	out := buf.String()

	assert.Contains(t, out, "Household dashboard (weekly, Sun Oct 11 to Sat Oct 17)")
	assert.Contains(t, out, "! Could not load: knowledge")
	assert.Contains(t, out, "urgent 1")
	assert.Contains(t, out, "other 1")
	assert.Contains(t, out, "Tomorrow 11:00")
	assert.Contains(t, out, "Today 17:00")
	assert.Contains(t, out, "Nothing yet")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "5h")
	assert.Contains(t, out, "normal")
}

type countingSource struct {
	calls atomic.Int32
}

func (c *countingSource) Tasks(context.Context) ([]model.Task, error) {
	c.calls.Add(1)
	return nil, nil
}

func (c *countingSource) UpcomingReminders(context.Context) ([]model.Reminder, error) {
	return nil, nil
}

func (c *countingSource) Knowledge(context.Context) ([]model.KnowledgeEntry, error) {
	return nil, nil
}

func (c *countingSource) Team(context.Context) ([]model.TeamMember, error) {
	return []model.TeamMember{{Name: "Alice", DailyCapacityMinutes: 60}}, nil
}

func TestWatch_ShowsPublishedViews(t *testing.T) {
	src := &countingSource{}
	board := aggregator.NewBoard(src, report.Log{}, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shown := make(chan dashboard.View, 10)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, board, dashboard.Daily, 10*time.Millisecond, func(v dashboard.View) {
			select {
			case shown <- v:
			default:
			}
		})
	}()

	for i := 0; i < 2; i++ {
		select {
		case v := <-shown:
			assert.Equal(t, dashboard.Daily, v.Window)
			require.Len(t, v.Workload, 1)
		case <-time.After(2 * time.Second):
			t.Fatal("no view shown")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.GreaterOrEqual(t, src.calls.Load(), int32(2))
}

func TestShowNewer_NeverGoesBackwards(t *testing.T) {
	src := &countingSource{}
	board := aggregator.NewBoard(src, report.Log{}, time.UTC)
	ctx := context.Background()

	var shown []dashboard.View
	show := func(v dashboard.View) { shown = append(shown, v) }

	assert.Equal(t, uint64(0), showNewer(board, 0, show), "nothing published yet")
	assert.Empty(t, shown)

	_, ok := board.Refresh(ctx, dashboard.Daily)
	require.True(t, ok)
	_, ok = board.Refresh(ctx, dashboard.Weekly)
	require.True(t, ok)

	gen := showNewer(board, 0, show)
	assert.Equal(t, uint64(2), gen)
	require.Len(t, shown, 1)
	assert.Equal(t, dashboard.Weekly, shown[0].Window)

	assert.Equal(t, gen, showNewer(board, gen, show), "same generation is not shown twice")
	assert.Equal(t, uint64(5), showNewer(board, 5, show), "an older generation is never shown")
	assert.Len(t, shown, 1)
}
