// Word Imposter
//
// One device is passed around the table. The moderator enters the players,
// the server deals one shared word to the civilians and a different word to
// the imposters, and each player privately views their word in turn. The
// table then votes, or picks as a group, whom to eliminate, round after
// round, until every imposter is caught or the imposters reach parity.
//
// Features:
// - One session per game ID: /imposter/:gameid, with a websocket feed at
//   /imposter/:gameid/ws and plain JSON at /state, /action and /reveal
// - The hub's run loop applies one action at a time to its state machine
// - Words and roles stay hidden from the shared view until the game ends
// - Saved player names and custom categories outlive sessions
// - Idle sessions are reaped after the configured timeout
// - In-browser QR code to open the session on the phone being passed round

package main

import (
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/wordimposter/games/imposter"
	"github.com/Seednode/wordimposter/games/words"
	"github.com/Seednode/wordimposter/internal/random"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

var (
	errSessionClosed = errors.New("game session has ended")
	errUnknownAction = errors.New("unknown action")
	errBadRequest    = errors.New("malformed action")
)

// ClientMessage is one action sent by the page, over the websocket or as
// the body of POST /action.
type ClientMessage struct {
	Type     string `json:"type"`                // see Hub.apply for the list
	Name     string `json:"name,omitempty"`      // add_player
	PlayerID string `json:"player_id,omitempty"` // remove_player, eliminate
	From     *int   `json:"from,omitempty"`      // reorder_players
	To       *int   `json:"to,omitempty"`        // reorder_players
	Count    int    `json:"count,omitempty"`     // set_imposter_count
	Category string `json:"category,omitempty"`  // toggle_category
	Enabled  *bool  `json:"enabled,omitempty"`   // set_show_roles, set_voting_enabled
	VoterID  string `json:"voter_id,omitempty"`  // cast_vote
	TargetID string `json:"target_id,omitempty"` // cast_vote
}

// RejectedMessage is sent only to the client whose action was refused.
type RejectedMessage struct {
	Type    string        `json:"type"` // "rejected"
	Code    imposter.Code `json:"code"`
	Message string        `json:"message"`
}

func rejection(err error) RejectedMessage {
	msg := RejectedMessage{
		Type:    "rejected",
		Message: err.Error(),
	}
	if code, ok := imposter.CodeOf(err); ok {
		msg.Code = code
	}
	return msg
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

type actionRequest struct {
	client *Client
	msg    ClientMessage
	reply  chan actionResult
}

type actionResult struct {
	view GameView
	err  error
}

type viewRequest struct {
	reply chan GameView
}

type revealRequest struct {
	reply chan revealResult
}

type revealResult struct {
	view RevealView
	err  error
}

// Hub owns one table. Only the run loop touches the machine.
type Hub struct {
	id      string
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan actionRequest
	views    chan viewRequest
	reveals  chan revealRequest
	refresh  chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	lastActive time.Time

	machine    *imposter.Machine
	categories *words.Store
	limits     Limits
}

func newHub(cfg *Config, gameID string, deps *gameDeps) *Hub {
	now := time.Now()

	machineSeed, wordSeed := cfg.seed, cfg.seed
	if wordSeed != 0 {
		wordSeed++
	}

	return &Hub{
		id:         gameID,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		actions:    make(chan actionRequest),
		views:      make(chan viewRequest),
		reveals:    make(chan revealRequest),
		refresh:    make(chan struct{}, 1),
		done:       make(chan struct{}),
		lastActive: now,
		machine: imposter.New(
			imposter.WithRoster(deps.roster),
			imposter.WithWords(words.NewSelector(deps.categories, random.NewSeeded(wordSeed))),
			imposter.WithRandom(random.NewSeeded(machineSeed)),
		),
		categories: deps.categories,
		limits: Limits{
			MinPlayers:        imposter.MinPlayers,
			MaxPlayers:        imposter.MaxPlayers,
			DiscussionSeconds: int(cfg.discussionTime / time.Second),
			MaxCategoryName:   cfg.maxCategoryName,
		},
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.touch()
			h.clients[c] = true
			h.sendTo(c, h.viewLocked())

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case req := <-h.actions:
			h.touch()
			err := h.apply(req.msg)
			if err != nil {
				logf(cfg, "GAMES: %s rejected %s: %v", h.id, req.msg.Type, err)
				if req.client != nil {
					h.sendTo(req.client, rejection(err))
				}
			} else {
				logf(cfg, "GAMES: %s applied %s (%s)", h.id, req.msg.Type, h.machine.Phase())
				h.broadcastLocked()
			}
			if req.reply != nil {
				req.reply <- actionResult{view: h.viewLocked(), err: err}
			}

		case req := <-h.views:
			req.reply <- h.viewLocked()

		case req := <-h.reveals:
			view, err := h.revealLocked()
			req.reply <- revealResult{view: view, err: err}

		case <-h.refresh:
			h.broadcastLocked()

		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// apply performs one action on the machine. The sequencing the screens
// need (clamping the imposter count, counting the vote after the last
// ballot, redealing on play again) lives here rather than in the page.
func (h *Hub) apply(msg ClientMessage) error {
	m := h.machine

	switch msg.Type {
	case "add_player":
		_, err := m.AddPlayer(msg.Name)
		return err
	case "remove_player":
		return m.RemovePlayer(msg.PlayerID)
	case "reorder_players":
		if msg.From == nil || msg.To == nil {
			return errBadRequest
		}
		return m.ReorderPlayers(*msg.From, *msg.To)
	case "clear_players":
		return m.ClearPlayers()
	case "set_imposter_count":
		return m.SetImposterCount(msg.Count)
	case "toggle_category":
		m.ToggleCategory(msg.Category)
		return nil
	case "clear_categories":
		m.ClearCategories()
		return nil
	case "set_show_roles":
		if msg.Enabled == nil {
			return errBadRequest
		}
		m.SetShowRoles(*msg.Enabled)
		return nil
	case "set_voting_enabled":
		if msg.Enabled == nil {
			return errBadRequest
		}
		m.SetVotingEnabled(*msg.Enabled)
		return nil
	case "start_game":
		return h.deal()
	case "next_player":
		return m.NextPlayer()
	case "start_discussion":
		return m.StartDiscussion()
	case "start_voting":
		return m.StartVoting()
	case "cast_vote":
		return h.vote(msg.VoterID, msg.TargetID)
	case "eliminate":
		return m.Eliminate(msg.PlayerID)
	case "continue_game":
		return m.ContinueGame()
	case "show_results":
		return m.ShowResults()
	case "play_again":
		if !m.Phase().InGame() {
			return imposter.ErrWrongPhase
		}
		m.PlayAgain()
		return h.deal()
	case "reset_game":
		m.Reset()
		return nil
	default:
		return errUnknownAction
	}
}

// deal caps the imposter count below half the table, then starts the game.
func (h *Hub) deal() error {
	s := h.machine.Snapshot()
	if limit := imposter.MaxImpostersFor(len(s.Players)); limit >= 1 && s.ImposterCount > limit {
		if err := h.machine.SetImposterCount(limit); err != nil {
			return err
		}
	}
	return h.machine.StartGame()
}

// vote records the ballot of the player holding the device and either
// hands it to the next voter or, once every active player has voted,
// counts the votes.
func (h *Hub) vote(voterID, targetID string) error {
	if h.machine.Phase() == imposter.PhaseVoting {
		if cur, ok := h.machine.CurrentPlayer(); ok && cur.ID != voterID {
			return imposter.ErrOutOfTurn
		}
	}

	if err := h.machine.CastVote(voterID, targetID); err != nil {
		return err
	}

	for _, p := range h.machine.ActivePlayers() {
		if !p.HasVoted {
			if err := h.machine.NextPlayer(); err != nil && !errors.Is(err, imposter.ErrNoMorePlayers) {
				return err
			}
			return nil
		}
	}

	_, err := h.machine.ResolveVotes()
	return err
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastActive
}

func (h *Hub) sendTo(c *Client, msg any) {
	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcastLocked() {
	view := h.viewLocked()
	for c := range h.clients {
		h.sendTo(c, view)
	}
}

func (h *Hub) closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// do hands an action to the run loop and waits for its outcome.
func (h *Hub) do(msg ClientMessage) (GameView, error) {
	if h.closed() {
		return GameView{}, errSessionClosed
	}

	reply := make(chan actionResult, 1)
	select {
	case h.actions <- actionRequest{msg: msg, reply: reply}:
	case <-h.done:
		return GameView{}, errSessionClosed
	}
	res := <-reply
	return res.view, res.err
}

func (h *Hub) view() (GameView, error) {
	if h.closed() {
		return GameView{}, errSessionClosed
	}

	reply := make(chan GameView, 1)
	select {
	case h.views <- viewRequest{reply: reply}:
	case <-h.done:
		return GameView{}, errSessionClosed
	}
	return <-reply, nil
}

func (h *Hub) reveal() (RevealView, error) {
	if h.closed() {
		return RevealView{}, errSessionClosed
	}

	reply := make(chan revealResult, 1)
	select {
	case h.reveals <- revealRequest{reply: reply}:
	case <-h.done:
		return RevealView{}, errSessionClosed
	}
	res := <-reply
	return res.view, res.err
}

// notify asks the run loop to rebroadcast, e.g. after categories change.
func (h *Hub) notify() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// closeAll disconnects all clients and stops the run loop.
func (h *Hub) closeAll() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// gameDeps are shared by every session.
type gameDeps struct {
	roster     imposter.Roster
	categories *words.Store
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own table.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	cfg         *Config
	deps        *gameDeps
	stop        chan struct{}
}

func newGameManager(cfg *Config, deps *gameDeps) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
		cfg:         cfg,
		deps:        deps,
		stop:        make(chan struct{}),
	}
	if gm.idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(gm.cfg, gameID, gm.deps)
	gm.hubs[gameID] = hub
	go hub.run(gm.cfg)
	return hub
}

// notifyAll rebroadcasts every table's view.
func (gm *GameManager) notifyAll() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for _, hub := range gm.hubs {
		hub.notify()
	}
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			gm.reap(time.Now().Add(-gm.idleTimeout))
		}
	}
}

func (gm *GameManager) reap(cutoff time.Time) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		if hub.idleSince().Before(cutoff) {
			delete(gm.hubs, id)
			logf(gm.cfg, "GAMES: Reaped idle game %s", id)
			hub.closeAll()
		}
	}
}

// shutdown stops the reaper and every hub.
func (gm *GameManager) shutdown() {
	close(gm.stop)

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.closeAll()
	}
}

func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		hub := gm.getHub(ps.ByName("gameid"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade from %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxActionBytes)

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.actions <- actionRequest{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// qrHandler generates a PNG QR code for the current game URL.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		scheme := cfg.scheme()
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")

		const qrSize = 320
		png, err := qrcode.Encode(scheme+"://"+r.Host+path, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}
