package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jtaylor-dev/avalon-backend/internal/game"
	"github.com/jtaylor-dev/avalon-backend/internal/session"
	"github.com/jtaylor-dev/avalon-backend/internal/timer"
)

var testTable = game.KnowledgeTable{
	"merlin":  {"minion"},
	"servant": {},
	"minion":  {},
}

func newTestServer(t *testing.T) (*httptest.Server, *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clock := clockwork.NewFakeClock()
	sess := session.New(ctx, game.NewState("minion"), zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(sess, timer.New(clock), zap.NewNop(), []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, clock
}

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	res, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestAPI_FullGameFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// lobby
	for _, name := range []string{"A", "B", "C"} {
		res := post(t, srv, "/join", map[string]any{"name": name})
		require.Equal(t, http.StatusOK, res.StatusCode)
	}
	require.Equal(t, http.StatusBadRequest, post(t, srv, "/join", map[string]any{"name": "A"}).StatusCode)

	res := post(t, srv, "/join", map[string]any{"name": "D"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, http.StatusOK, post(t, srv, "/quit", map[string]any{"name": "D"}).StatusCode)
	require.Equal(t, []string{"A", "B", "C"}, decode[[]string](t, get(t, srv, "/list")))

	require.False(t, decode[bool](t, get(t, srv, "/active")))
	require.Equal(t, http.StatusBadRequest, get(t, srv, "/role?name=A").StatusCode)

	// start: bad requests first, then the real one
	res = post(t, srv, "/start", map[string]any{"knowledgeTable": testTable, "roles": []string{"merlin", "servant"}})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	res = post(t, srv, "/start", map[string]any{"knowledgeTable": testTable, "roles": []string{"merlin", "servant", "ghost"}})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	res = post(t, srv, "/start", map[string]any{"knowledgeTable": testTable, "roles": []string{"merlin", "servant", "minion"}})
	require.Equal(t, http.StatusOK, res.StatusCode)

	require.True(t, decode[bool](t, get(t, srv, "/active")))
	require.Equal(t, http.StatusUnauthorized, post(t, srv, "/join", map[string]any{"name": "E"}).StatusCode)
	require.Equal(t, http.StatusUnauthorized, post(t, srv, "/start", map[string]any{"knowledgeTable": testTable, "roles": []string{"merlin", "servant", "minion"}}).StatusCode)

	// who got what
	holders := map[string]string{} // role -> player name
	for _, name := range []string{"A", "B", "C"} {
		res := get(t, srv, "/role?name="+name)
		require.Equal(t, http.StatusOK, res.StatusCode)
		view := decode[game.RoleView](t, res)
		holders[view.Role] = name

		if view.Role == "merlin" {
			require.Len(t, view.Knows, 1)
		} else {
			require.Empty(t, view.Knows)
		}
	}
	require.Len(t, holders, 3)

	merlinView := decode[game.RoleView](t, get(t, srv, "/role?name="+holders["merlin"]))
	require.Equal(t, []string{holders["minion"]}, merlinView.Knows)

	// voting round 1: servant tries to sabotage, then votes properly
	voters := []string{holders["servant"], holders["minion"]}
	require.Equal(t, http.StatusOK, post(t, srv, "/start-vote", map[string]any{"names": voters, "failsRequired": 1}).StatusCode)
	require.Equal(t, http.StatusBadRequest, post(t, srv, "/start-vote", map[string]any{"names": []string{"A"}}).StatusCode)

	view := decode[game.VoteView](t, get(t, srv, "/current-vote"))
	require.Equal(t, 1, view.Round)
	require.Equal(t, voters, view.Voters)
	require.Empty(t, view.Results)

	res = post(t, srv, "/vote", map[string]any{"name": holders["servant"], "vote": false})
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, http.StatusOK, post(t, srv, "/vote", map[string]any{"name": holders["servant"], "vote": true}).StatusCode)
	require.Equal(t, http.StatusBadRequest, post(t, srv, "/vote", map[string]any{"name": holders["servant"], "vote": true}).StatusCode)
	require.Equal(t, http.StatusBadRequest, post(t, srv, "/vote", map[string]any{"name": holders["merlin"], "vote": true}).StatusCode)
	require.Equal(t, http.StatusOK, post(t, srv, "/vote", map[string]any{"name": holders["minion"], "vote": false}).StatusCode)

	view = decode[game.VoteView](t, get(t, srv, "/current-vote"))
	require.Empty(t, view.Voters)
	require.Len(t, view.Results, 1)
	require.Equal(t, 1, view.Results[0].NumFails)
	require.Equal(t, 1, view.Results[0].FailsRequired)
	require.Equal(t, voters, view.Results[0].Voters)

	// round 2 opens cleanly
	require.Equal(t, http.StatusOK, post(t, srv, "/start-vote", map[string]any{"names": []string{holders["merlin"]}}).StatusCode)
	require.Equal(t, 2, decode[game.VoteView](t, get(t, srv, "/current-vote")).Round)

	// reset
	require.Equal(t, http.StatusOK, post(t, srv, "/end", nil).StatusCode)
	require.False(t, decode[bool](t, get(t, srv, "/active")))
	require.Empty(t, decode[[]string](t, get(t, srv, "/list")))
}

func TestAPI_ValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		path string
		body string
	}{
		{"join without name", "/join", `{}`},
		{"join bad json", "/join", `{"name":`},
		{"quit without name", "/quit", `{}`},
		{"start without table", "/start", `{"roles":["merlin"]}`},
		{"vote without ballot", "/vote", `{"name":"A"}`},
		{"vote without name", "/vote", `{"vote":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := http.Post(srv.URL+tc.path, "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer res.Body.Close()
			require.Equal(t, http.StatusBadRequest, res.StatusCode)
		})
	}
}

func TestAPI_Timer(t *testing.T) {
	srv, clock := newTestServer(t)

	require.Equal(t, http.StatusBadRequest, post(t, srv, "/start-timer", map[string]any{"time": 0}).StatusCode)
	require.Equal(t, 0, decode[int](t, get(t, srv, "/get-time")))

	require.Equal(t, http.StatusOK, post(t, srv, "/start-timer", map[string]any{"time": 10}).StatusCode)
	require.Equal(t, 10, decode[int](t, get(t, srv, "/get-time")))

	clock.Advance(4 * time.Second)
	require.Equal(t, 6, decode[int](t, get(t, srv, "/get-time")))

	require.Equal(t, http.StatusOK, post(t, srv, "/toggle-timer", nil).StatusCode)
	clock.Advance(time.Minute)
	require.Equal(t, 6, decode[int](t, get(t, srv, "/get-time")))

	require.Equal(t, http.StatusOK, post(t, srv, "/toggle-timer", nil).StatusCode)
	clock.Advance(10 * time.Second)
	require.Equal(t, 0, decode[int](t, get(t, srv, "/get-time")))
}

func TestAPI_Healthz(t *testing.T) {
	srv, _ := newTestServer(t)
	require.Equal(t, http.StatusOK, get(t, srv, "/healthz").StatusCode)
}
