package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/wordimposter/games/imposter"
	"github.com/Seednode/wordimposter/internal/storage"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		bind:            "127.0.0.1",
		discussionTime:  90 * time.Second,
		maxCategoryName: 30,
		port:            8080,
		seed:            42,
		store:           storeMemory,
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func newTestServer(t *testing.T) (*httptest.Server, storage.KV) {
	t.Helper()

	kv := storage.NewMemory()
	errs := make(chan error, 16)

	mux, gm := newRouter(testConfig(), kv, errs)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Close()
		gm.shutdown()
	})

	return srv, kv
}

func postAction(t *testing.T, srv *httptest.Server, game string, msg ClientMessage) (int, []byte) {
	t.Helper()

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/imposter/"+game+"/action", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func mustAct(t *testing.T, srv *httptest.Server, game string, msg ClientMessage) GameView {
	t.Helper()

	status, data := postAction(t, srv, game, msg)
	require.Equal(t, http.StatusOK, status, string(data))

	var view GameView
	require.NoError(t, json.Unmarshal(data, &view))
	return view
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func addPlayers(t *testing.T, srv *httptest.Server, game string, names ...string) GameView {
	t.Helper()

	var view GameView
	for _, name := range names {
		view = mustAct(t, srv, game, ClientMessage{Type: "add_player", Name: name})
	}
	return view
}

func TestStaticRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/healthz", http.StatusOK, "text/plain", "Ok"},
		{"/version", http.StatusOK, "text/plain", "wordimposter v" + releaseVersion},
		{"/robots.txt", http.StatusOK, "text/plain", "GPTBot"},
		{"/", http.StatusOK, "text/html", "New game"},
		{"/favicon.svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"/favicons/site.webmanifest", http.StatusOK, "application/manifest+json", "Word Imposter"},
		{"/assets/imposter/app.js", http.StatusOK, "text/javascript", "WebSocket"},
		{"/assets/imposter/app.css", http.StatusOK, "text/css", "--accent"},
		{"/assets/imposter/missing.js", http.StatusNotFound, "", ""},
		{"/nothing-here", http.StatusNotFound, "text/html", "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.contentType != "" {
				assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			}
			assert.Contains(t, string(body), tt.contains)
			if tt.status == http.StatusOK {
				assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
			}
		})
	}
}

func TestNewGameRedirect(t *testing.T) {
	srv, _ := newTestServer(t)

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(srv.URL + "/imposter")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/imposter/"), location)
	assert.Len(t, strings.TrimPrefix(location, "/imposter/"), 8)

	page, err := http.Get(srv.URL + location)
	require.NoError(t, err)
	defer page.Body.Close()

	body, err := io.ReadAll(page.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, string(body), `id="setup"`)
}

func TestGamePageControls(t *testing.T) {
	srv, _ := newTestServer(t)

	read := func(path string) string {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	page := read("/imposter/controls")
	assert.Contains(t, page, `id="quit"`)
	assert.Contains(t, page, `id="round-targets"`)
	assert.Contains(t, page, "Back to setup")
	assert.NotContains(t, page, "New players")

	script := read("/assets/imposter/app.js")
	assert.Contains(t, script, `$("quit").hidden = s.gamePhase === "setup"`)
	assert.Contains(t, script, `targets($("round-targets"), pickToEliminate)`)
	assert.Contains(t, script, "out.isImposter ?")
	assert.NotContains(t, script, "was not the imposter")
}

func TestFreshGameState(t *testing.T) {
	srv, _ := newTestServer(t)

	var view GameView
	status := getJSON(t, srv.URL+"/imposter/fresh/state", &view)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "game_state", view.Type)
	assert.Equal(t, "fresh", view.GameID)
	assert.Equal(t, imposter.PhaseSetup, view.State.Phase)
	assert.Empty(t, view.State.Players)
	assert.Equal(t, imposter.DefaultImposters, view.State.ImposterCount)
	assert.Equal(t, 90, view.Limits.DiscussionSeconds)
	assert.Equal(t, imposter.MinPlayers, view.Limits.MinPlayers)
	assert.Equal(t, imposter.MaxPlayers, view.Limits.MaxPlayers)
	assert.NotEmpty(t, view.Categories)
	assert.Nil(t, view.CurrentPlayer)
}

func TestActionRejections(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		msg    ClientMessage
		status int
		code   string
	}{
		{"start without players", ClientMessage{Type: "start_game"}, http.StatusUnprocessableEntity, string(imposter.CodeNotEnoughPlayers)},
		{"blank name", ClientMessage{Type: "add_player", Name: "   "}, http.StatusUnprocessableEntity, string(imposter.CodeNameRequired)},
		{"vote during setup", ClientMessage{Type: "cast_vote", VoterID: "a", TargetID: "b"}, http.StatusUnprocessableEntity, string(imposter.CodeWrongPhase)},
		{"imposter count too high", ClientMessage{Type: "set_imposter_count", Count: 4}, http.StatusUnprocessableEntity, string(imposter.CodeInvalidImposterCount)},
		{"unknown action", ClientMessage{Type: "dance"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"reorder without indexes", ClientMessage{Type: "reorder_players"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"toggle without flag", ClientMessage{Type: "set_show_roles"}, http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := postAction(t, srv, "rejections", tt.msg)
			assert.Equal(t, tt.status, status)

			var body errorBody
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}

	var view GameView
	getJSON(t, srv.URL+"/imposter/rejections/state", &view)
	assert.Equal(t, imposter.PhaseSetup, view.State.Phase)
	assert.Empty(t, view.State.Players)
}

func TestMalformedAction(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/imposter/bad/action", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRevealOutsideRevealPhase(t *testing.T) {
	srv, _ := newTestServer(t)

	var body errorBody
	status := getJSON(t, srv.URL+"/imposter/early/reveal", &body)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, string(imposter.CodeWrongPhase), body.Code)
}

func TestFullVotingGame(t *testing.T) {
	srv, _ := newTestServer(t)
	const game = "table"

	addPlayers(t, srv, game, "Ann", "Ben", "Cat")
	mustAct(t, srv, game, ClientMessage{Type: "set_voting_enabled", Enabled: boolPtr(true)})
	mustAct(t, srv, game, ClientMessage{Type: "set_show_roles", Enabled: boolPtr(true)})

	view := mustAct(t, srv, game, ClientMessage{Type: "start_game"})
	require.Equal(t, imposter.PhaseReveal, view.State.Phase)
	assert.Empty(t, view.State.Imposters, "imposters are hidden during play")
	assert.Empty(t, view.State.Words.MainWord)
	assert.Empty(t, view.State.Words.ImposterWord)
	for _, p := range view.State.Players {
		assert.False(t, p.IsImposter)
	}
	require.NotNil(t, view.CurrentPlayer)
	assert.Equal(t, "Ann", view.CurrentPlayer.Name)

	for i, name := range []string{"Ann", "Ben", "Cat"} {
		var reveal RevealView
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/imposter/"+game+"/reveal", &reveal))
		assert.Equal(t, name, reveal.Name)
		assert.NotEmpty(t, reveal.Word)
		assert.NotEmpty(t, reveal.CategoryName)
		assert.NotNil(t, reveal.IsImposter)
		assert.Equal(t, i == 2, reveal.Last)

		if !reveal.Last {
			mustAct(t, srv, game, ClientMessage{Type: "next_player"})
		}
	}

	status, _ := postAction(t, srv, game, ClientMessage{Type: "next_player"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	mustAct(t, srv, game, ClientMessage{Type: "start_discussion"})
	view = mustAct(t, srv, game, ClientMessage{Type: "start_voting"})
	require.Equal(t, imposter.PhaseVoting, view.State.Phase)

	ids := map[string]string{}
	for _, p := range view.State.Players {
		ids[p.Name] = p.ID
	}

	view = mustAct(t, srv, game, ClientMessage{Type: "cast_vote", VoterID: ids["Ann"], TargetID: ids["Cat"]})
	assert.Equal(t, imposter.PhaseVoting, view.State.Phase)
	require.NotNil(t, view.CurrentPlayer)
	assert.Equal(t, "Ben", view.CurrentPlayer.Name)

	status, data := postAction(t, srv, game, ClientMessage{Type: "cast_vote", VoterID: ids["Ann"], TargetID: ids["Ben"]})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(data), string(imposter.CodeOutOfTurn))

	mustAct(t, srv, game, ClientMessage{Type: "cast_vote", VoterID: ids["Ben"], TargetID: ids["Cat"]})
	view = mustAct(t, srv, game, ClientMessage{Type: "cast_vote", VoterID: ids["Cat"], TargetID: ids["Ann"]})

	// Three players and one imposter: any elimination ends the game.
	require.Equal(t, imposter.PhaseResults, view.State.Phase)
	assert.True(t, view.State.GameOver)
	assert.Equal(t, ids["Cat"], view.State.LastEliminatedID)
	assert.Len(t, view.State.Imposters, 1)
	assert.NotEmpty(t, view.State.Words.MainWord)
	assert.NotEmpty(t, view.State.Words.ImposterWord)
	assert.Equal(t, []imposter.VoteCount{
		{PlayerID: ids["Cat"], Votes: 2},
		{PlayerID: ids["Ann"], Votes: 1},
	}, view.Tally)

	catWasImposter := view.State.Imposters[0] == ids["Cat"]
	assert.Equal(t, !catWasImposter, view.State.ImpostersWon)

	status, _ = postAction(t, srv, game, ClientMessage{Type: "continue_game"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	view = mustAct(t, srv, game, ClientMessage{Type: "play_again"})
	assert.Equal(t, imposter.PhaseReveal, view.State.Phase)
	assert.Equal(t, 1, view.State.RoundNumber)
	assert.False(t, view.State.GameOver)
	assert.Empty(t, view.State.EliminatedPlayers)
	assert.Len(t, view.State.Players, 3)
	assert.True(t, view.State.VotingEnabled)

	view = mustAct(t, srv, game, ClientMessage{Type: "reset_game"})
	assert.Equal(t, imposter.PhaseSetup, view.State.Phase)
	assert.Len(t, view.State.Players, 3, "reset reloads the saved roster")
}

// dealRoles starts a game with roles shown and walks the reveal, returning
// each player's id and whether they were dealt the imposter word.
func dealRoles(t *testing.T, srv *httptest.Server, game string) (ids map[string]string, imposters map[string]bool) {
	t.Helper()

	mustAct(t, srv, game, ClientMessage{Type: "set_show_roles", Enabled: boolPtr(true)})
	view := mustAct(t, srv, game, ClientMessage{Type: "start_game"})
	require.Equal(t, imposter.PhaseReveal, view.State.Phase)

	ids = map[string]string{}
	imposters = map[string]bool{}
	for range view.State.Players {
		var reveal RevealView
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/imposter/"+game+"/reveal", &reveal))
		require.NotNil(t, reveal.IsImposter)

		ids[reveal.Name] = reveal.PlayerID
		imposters[reveal.PlayerID] = *reveal.IsImposter

		if !reveal.Last {
			mustAct(t, srv, game, ClientMessage{Type: "next_player"})
		}
	}

	return ids, imposters
}

func pickByRole(ids map[string]string, imposters map[string]bool, imposter bool, skip ...string) string {
	for _, id := range ids {
		if imposters[id] == imposter && !slices.Contains(skip, id) {
			return id
		}
	}
	return ""
}

func TestGroupElimination(t *testing.T) {
	srv, _ := newTestServer(t)
	const game = "group"

	addPlayers(t, srv, game, "Ann", "Ben", "Cat", "Dan", "Eve")
	ids, imposters := dealRoles(t, srv, game)
	mustAct(t, srv, game, ClientMessage{Type: "start_discussion"})

	status, _ := postAction(t, srv, game, ClientMessage{Type: "eliminate", PlayerID: "nobody"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	first := pickByRole(ids, imposters, false)
	view := mustAct(t, srv, game, ClientMessage{Type: "eliminate", PlayerID: first})

	assert.Equal(t, imposter.PhaseResults, view.State.Phase)
	assert.Equal(t, []string{first}, view.State.EliminatedPlayers)
	assert.Len(t, view.ActivePlayers, 4)
	assert.Nil(t, view.Tally)
	require.False(t, view.State.GameOver)
	assert.Empty(t, view.State.Imposters)

	// Later rounds enter the voting phase; a group-pick table eliminates
	// directly from there.
	view = mustAct(t, srv, game, ClientMessage{Type: "continue_game"})
	assert.Equal(t, 2, view.State.RoundNumber)
	assert.Equal(t, imposter.PhaseVoting, view.State.Phase)
	assert.False(t, view.State.VotingEnabled)
	require.NotNil(t, view.CurrentPlayer)

	second := pickByRole(ids, imposters, false, first)
	view = mustAct(t, srv, game, ClientMessage{Type: "eliminate", PlayerID: second})
	assert.Equal(t, imposter.PhaseResults, view.State.Phase)
	assert.Equal(t, []string{first, second}, view.State.EliminatedPlayers)
	require.False(t, view.State.GameOver, "one imposter against two civilians plays on")

	mustAct(t, srv, game, ClientMessage{Type: "continue_game"})
	view = mustAct(t, srv, game, ClientMessage{Type: "eliminate", PlayerID: pickByRole(ids, imposters, true)})
	assert.True(t, view.State.GameOver)
	assert.False(t, view.State.ImpostersWon)
	assert.Equal(t, 3, view.State.RoundNumber)
}

func TestEliminatedImposterWithOthersRemaining(t *testing.T) {
	srv, _ := newTestServer(t)
	const game = "two-imposters"

	addPlayers(t, srv, game, "Ann", "Ben", "Cat", "Dan", "Eve", "Fay", "Gus")
	mustAct(t, srv, game, ClientMessage{Type: "set_imposter_count", Count: 2})
	ids, imposters := dealRoles(t, srv, game)

	caught := pickByRole(ids, imposters, true)
	require.NotEmpty(t, caught)

	mustAct(t, srv, game, ClientMessage{Type: "start_discussion"})
	view := mustAct(t, srv, game, ClientMessage{Type: "eliminate", PlayerID: caught})

	assert.Equal(t, imposter.PhaseResults, view.State.Phase)
	assert.False(t, view.State.GameOver)
	assert.Equal(t, caught, view.State.LastEliminatedID)
	assert.Empty(t, view.State.Imposters, "the remaining imposter stays hidden")

	out, ok := view.State.Player(caught)
	require.True(t, ok)
	assert.True(t, out.IsImposter, "an eliminated imposter is shown as one")

	hidden := 0
	for _, p := range view.State.Players {
		if !p.IsEliminated {
			assert.False(t, p.IsImposter)
			hidden++
		}
	}
	assert.Equal(t, 6, hidden)
}

func TestOutOfTurnVote(t *testing.T) {
	srv, _ := newTestServer(t)
	const game = "turns"

	addPlayers(t, srv, game, "Ann", "Ben", "Cat", "Dan")
	mustAct(t, srv, game, ClientMessage{Type: "set_voting_enabled", Enabled: boolPtr(true)})
	mustAct(t, srv, game, ClientMessage{Type: "start_game"})
	view := mustAct(t, srv, game, ClientMessage{Type: "start_voting"})

	ids := map[string]string{}
	for _, p := range view.State.Players {
		ids[p.Name] = p.ID
	}
	require.NotNil(t, view.CurrentPlayer)
	require.Equal(t, "Ann", view.CurrentPlayer.Name)

	status, data := postAction(t, srv, game, ClientMessage{Type: "cast_vote", VoterID: ids["Cat"], TargetID: ids["Ben"]})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(data), string(imposter.CodeOutOfTurn))

	var after GameView
	getJSON(t, srv.URL+"/imposter/"+game+"/state", &after)
	require.NotNil(t, after.CurrentPlayer)
	assert.Equal(t, "Ann", after.CurrentPlayer.Name)
	assert.Empty(t, after.State.Votes)

	view = mustAct(t, srv, game, ClientMessage{Type: "cast_vote", VoterID: ids["Ann"], TargetID: ids["Ben"]})
	require.NotNil(t, view.CurrentPlayer)
	assert.Equal(t, "Ben", view.CurrentPlayer.Name)
}

func TestStartClampsImposterCount(t *testing.T) {
	srv, _ := newTestServer(t)
	const game = "clamp"

	addPlayers(t, srv, game, "Ann", "Ben", "Cat", "Dan", "Eve")
	view := mustAct(t, srv, game, ClientMessage{Type: "set_imposter_count", Count: 3})
	assert.Equal(t, 2, view.Limits.MaxImposters)

	view = mustAct(t, srv, game, ClientMessage{Type: "start_game"})
	assert.Equal(t, 2, view.State.ImposterCount)
}

func TestRosterSurvivesSessions(t *testing.T) {
	srv, kv := newTestServer(t)

	addPlayers(t, srv, "first", "Ann", "Ben")

	raw, ok, err := kv.Get(imposter.RosterKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["Ann","Ben"]`, raw)

	var view GameView
	getJSON(t, srv.URL+"/imposter/second/state", &view)
	require.Len(t, view.State.Players, 2)
	assert.Equal(t, "Ann", view.State.Players[0].Name)
}

func TestCategoryRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	do := func(method, path string, body any) *http.Response {
		t.Helper()
		var r io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
		req, err := http.NewRequest(method, srv.URL+path, r)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := do(http.MethodPost, "/categories", CategoryRequest{Name: "Snacks", Text: "Chips, Crisps\nPretzel, Popcorn, Pretzel"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created CategoryDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, strings.HasPrefix(created.Key, "snacks_"), created.Key)
	assert.True(t, created.IsCustom)
	assert.Equal(t, [][]string{{"Chips", "Crisps"}, {"Pretzel", "Popcorn"}}, created.Sets)

	var list []CategoryDetail
	getJSON(t, srv.URL+"/categories", &list)
	require.NotEmpty(t, list)
	assert.Equal(t, created.Key, list[len(list)-1].Key, "custom categories follow the built-ins")

	var view GameView
	getJSON(t, srv.URL+"/imposter/cats/state", &view)
	found := false
	for _, c := range view.Categories {
		if c.Key == created.Key {
			found = true
			assert.Equal(t, 2, c.Sets)
		}
	}
	assert.True(t, found)

	resp = do(http.MethodPut, "/categories/"+created.Key, CategoryRequest{Name: "Treats", Text: "Cake, Pie"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var edited CategoryDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&edited))
	assert.Equal(t, created.Key, edited.Key)
	assert.Equal(t, "Treats", edited.Name)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"blank name", http.MethodPost, "/categories", CategoryRequest{Name: " ", Text: "A, B"}, http.StatusUnprocessableEntity, "NAME_REQUIRED"},
		{"long name", http.MethodPost, "/categories", CategoryRequest{Name: strings.Repeat("x", 31), Text: "A, B"}, http.StatusUnprocessableEntity, "NAME_TOO_LONG"},
		{"no sets", http.MethodPost, "/categories", CategoryRequest{Name: "Solo", Text: "Lonely"}, http.StatusUnprocessableEntity, "NO_VALID_SETS"},
		{"edit builtin", http.MethodPut, "/categories/animals", CategoryRequest{Name: "Beasts", Text: "A, B"}, http.StatusNotFound, "NOT_CUSTOM"},
		{"delete builtin", http.MethodDelete, "/categories/animals", nil, http.StatusNotFound, "NOT_CUSTOM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
		})
	}

	resp = do(http.MethodDelete, "/categories/"+created.Key, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(http.MethodDelete, "/categories/"+created.Key, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQRCode(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/imposter/share/qr")
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))
}

func TestWebsocketSession(t *testing.T) {
	srv, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/imposter/live/ws"

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()

	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()

	readView := func(conn *websocket.Conn) map[string]any {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, "game_state", readView(first)["type"])
	assert.Equal(t, "game_state", readView(second)["type"])

	require.NoError(t, first.WriteJSON(ClientMessage{Type: "add_player", Name: "Ann"}))

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readView(conn)
		assert.Equal(t, "game_state", msg["type"])
		state := msg["state"].(map[string]any)
		assert.Len(t, state["players"], 1)
	}

	require.NoError(t, second.WriteJSON(ClientMessage{Type: "add_player", Name: "ann"}))

	msg := readView(second)
	assert.Equal(t, "rejected", msg["type"])
	assert.Equal(t, string(imposter.CodeNameTaken), msg["code"])
}

func TestReapIdleGames(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg, newGameDeps(cfg, storage.NewMemory()))
	defer gm.shutdown()

	hub := gm.getHub("idle")
	_, err := hub.view()
	require.NoError(t, err)

	gm.reap(time.Now().Add(time.Minute))

	_, err = hub.do(ClientMessage{Type: "clear_players"})
	assert.ErrorIs(t, err, errSessionClosed)

	assert.NotSame(t, hub, gm.getHub("idle"))
}
