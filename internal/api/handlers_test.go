package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/playhook/internal/events"
	"github.com/mattjoyce/playhook/internal/history"
	"github.com/mattjoyce/playhook/internal/player"
	"github.com/mattjoyce/playhook/internal/shellevents"
	"github.com/mattjoyce/playhook/internal/shellevents/mocks"
)

const testKey = "test-key"

type fakeSink struct {
	events []player.Event
}

func (f *fakeSink) Deliver(ev player.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	f.events = append(f.events, ev)
	return nil
}

type closedSink struct{}

func (closedSink) Deliver(player.Event) error { return errors.New("shutting down") }

type fakeLister struct {
	records []history.Record
	err     error
	limit   int
}

func (f *fakeLister) List(_ context.Context, limit int) ([]history.Record, error) {
	f.limit = limit
	return f.records, f.err
}

func newTestServer(sink EventSink, lister ExecutionLister, hub *events.Hub) *Server {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(Config{Listen: "127.0.0.1:0", APIKey: testKey}, sink, lister, hub, logger)
}

func do(t *testing.T, h http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	srv := newTestServer(&fakeSink{}, nil, nil)

	rr := do(t, srv.Handler(), http.MethodGet, "/healthz", "", false)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HealthzResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestProtectedRoutesRequireKey(t *testing.T) {
	srv := newTestServer(&fakeSink{}, &fakeLister{}, nil)
	h := srv.Handler()

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/events"},
		{http.MethodGet, "/executions"},
		{http.MethodGet, "/events/stream"},
	} {
		rr := do(t, h, route.method, route.path, "{}", false)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, route.path)

		req := httptest.NewRequest(route.method, route.path, nil)
		req.Header.Set("Authorization", "Bearer wrong-key")
		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, route.path)
	}
}

func TestPostEventDelivers(t *testing.T) {
	sink := &fakeSink{}
	hub := events.NewHub(10)
	srv := newTestServer(sink, nil, hub)

	body := `{"kind":"track_changed","track_uri":"spotify:track:1","user_initiated":true,
"metadata":{"uri":"spotify:track:1","name":"Song","artist":"A","album":"B","duration_ms":1000}}`
	rr := do(t, srv.Handler(), http.MethodPost, "/events", body, true)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, player.KindTrackChanged, ev.Kind)
	assert.True(t, ev.UserInitiated)
	require.NotNil(t, ev.Metadata)
	assert.Equal(t, "Song", ev.Metadata.Name())

	snap := hub.Since(0)
	require.Len(t, snap, 1)
	assert.Equal(t, events.TypeEventReceived, snap[0].Type)
}

func TestPostEventRejectsBadInput(t *testing.T) {
	sink := &fakeSink{}
	srv := newTestServer(sink, nil, nil)
	h := srv.Handler()

	tests := map[string]string{
		"not json":        `{`,
		"unknown field":   `{"kind":"panic_state","bogus":1}`,
		"unknown kind":    `{"kind":"volume"}`,
		"volume range":    `{"kind":"volume_changed","volume":2}`,
		"negative volume": `{"kind":"volume_changed","volume":-0.1}`,
		"missing uri":     `{"kind":"context_changed"}`,
		"empty metadata":  `{"kind":"metadata_available"}`,
	}
	for name, body := range tests {
		rr := do(t, h, http.MethodPost, "/events", body, true)
		assert.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
	assert.Empty(t, sink.events)
	assert.Empty(t, srv.hub.Since(0), "rejected events are not published")
}

func TestPostEventAfterShutdown(t *testing.T) {
	srv := newTestServer(closedSink{}, nil, nil)
	rr := do(t, srv.Handler(), http.MethodPost, "/events", `{"kind":"panic_state"}`, true)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestPostEventRunsHook(t *testing.T) {
	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	launcher.EXPECT().Launch(gomock.Any(), shellevents.Invocation{
		Path: "notify-send",
		Args: []string{"Volume"},
		Env:  []string{"VOLUME=73"},
	}).Return(0, nil)

	conf := shellevents.NewBuilder().SetEnabled(true).SetOnVolumeChanged("notify-send Volume").Build()
	hub := events.NewHub(10)
	d := shellevents.New(conf, shellevents.WithLauncher(launcher), shellevents.WithObserver(hub))
	src := player.NewSource()
	d.Register(src)

	srv := newTestServer(src, nil, hub)
	rr := do(t, srv.Handler(), http.MethodPost, "/events", `{"kind":"volume_changed","volume":0.73}`, true)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	snap := hub.Since(0)
	require.Len(t, snap, 2)
	assert.Equal(t, events.TypeEventReceived, snap[0].Type)
	assert.Equal(t, events.TypeCommandExecuted, snap[1].Type)
	assert.Less(t, snap[0].ID, snap[1].ID)
}

func TestListExecutions(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{records: []history.Record{
		{ID: "1", Event: "panic_state", Command: "alarm", Mode: "bash", ExitCode: 1, StartedAt: started},
	}}
	srv := newTestServer(&fakeSink{}, lister, nil)
	h := srv.Handler()

	rr := do(t, h, http.MethodGet, "/executions?limit=5", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, lister.limit)

	var resp ListExecutionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Executions, 1)
	assert.Equal(t, "alarm", resp.Executions[0].Command)

	rr = do(t, h, http.MethodGet, "/executions", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, history.DefaultListLimit, lister.limit)

	rr = do(t, h, http.MethodGet, "/executions?limit=abc", "", true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	lister.err = errors.New("db gone")
	rr = do(t, h, http.MethodGet, "/executions", "", true)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestListExecutionsEmptyIsArray(t *testing.T) {
	srv := newTestServer(&fakeSink{}, &fakeLister{}, nil)
	rr := do(t, srv.Handler(), http.MethodGet, "/executions", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"executions":[]}`, rr.Body.String())
}

func TestListExecutionsDisabled(t *testing.T) {
	srv := newTestServer(&fakeSink{}, nil, nil)
	rr := do(t, srv.Handler(), http.MethodGet, "/executions", "", true)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventStreamReplaysBuffered(t *testing.T) {
	hub := events.NewHub(10)
	hub.Publish(events.TypeEventReceived, map[string]string{"kind": "panic_state"})
	hub.Publish(events.TypeCommandExecuted, map[string]string{"command": "alarm"})

	srv := newTestServer(&fakeSink{}, nil, hub)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events/stream?type="+events.TypeCommandExecuted, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 3 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		lines = append(lines, strings.TrimRight(line, "\n"))
	}
	assert.Equal(t, []string{
		"id: 2",
		"event: " + events.TypeCommandExecuted,
		`data: {"command":"alarm"}`,
	}, lines)
}
