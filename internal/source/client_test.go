package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Reads(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/tasks/":             `[{"id":1,"title":"Dishes","priority":"low","status":"todo","time_to_complete_minutes":15}]`,
		"/reminders/upcoming": `[{"id":2,"title":"Dentist","remind_at":"2026-10-20T09:00:00","is_active":true}]`,
		"/knowledge/":         `[{"id":3,"title":"Wifi","category":"house","updated_at":"2026-10-01T12:00:00Z"}]`,
		"/team/":              `{"team":[{"name":"Alice","role":"Parent","daily_capacity_minutes":480}]}`,
	})
	c := New(srv.URL+"/", "tok", nil)
	ctx := context.Background()

	tasks, err := c.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Dishes", tasks[0].Title)
	assert.Equal(t, 15, tasks[0].Minutes())

	reminders, err := c.UpcomingReminders(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].RemindAt.Naive)

	knowledge, err := c.Knowledge(ctx)
	require.NoError(t, err)
	require.Len(t, knowledge, 1)
	assert.Equal(t, "house", knowledge[0].Category)

	team, err := c.Team(ctx)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, 480, team[0].DailyCapacityMinutes)
}

func TestClient_APIError(t *testing.T) {
	srv := newTestServer(t, nil)

	_, err := New(srv.URL, "wrong", nil).Tasks(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "API error (401): Could not validate credentials", apiErr.Error())
}

func TestClient_NotFoundUsesStatusText(t *testing.T) {
	srv := newTestServer(t, nil)

	_, err := New(srv.URL, "tok", nil).Team(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_MalformedPayload(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/tasks/": `{"not":"a list"}`})

	_, err := New(srv.URL, "tok", nil).Tasks(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestClient_WithToken(t *testing.T) {
	base := New("http://example.invalid", "", nil)
	withTok := base.WithToken("tok")

	assert.Empty(t, base.Token)
	assert.Equal(t, "tok", withTok.Token)
	assert.Same(t, base.HTTPClient, withTok.HTTPClient)
}
