/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package imposter is the game state machine for the word imposter party
// game: roster management, role assignment, rounds of voting and
// elimination, and the win conditions.
//
// A Machine owns its State exclusively. Every change goes through one of
// the transition methods, each of which either applies completely or
// returns an *Error and leaves the state as it was. A Machine is not safe
// for concurrent use; callers serialise transitions.
package imposter

import (
	"slices"
	"strings"

	"github.com/Seednode/wordimposter/games/words"
	"github.com/Seednode/wordimposter/internal/fold"
	"github.com/Seednode/wordimposter/internal/random"
	"github.com/google/uuid"
)

// WordSource deals the word pair for a new game.
type WordSource interface {
	Select(restrict []string) words.Selection
}

// Machine is the single authority over one game session.
type Machine struct {
	state  State
	roster Roster
	words  WordSource
	rng    random.Source
	newID  func() string
}

// Option configures a Machine.
type Option func(*Machine)

// WithRoster persists player names through r after every roster change and
// reloads them on Reset.
func WithRoster(r Roster) Option {
	return func(m *Machine) {
		m.roster = r
	}
}

// WithWords sets the word source consulted by StartGame.
func WithWords(w WordSource) Option {
	return func(m *Machine) {
		m.words = w
	}
}

// WithRandom sets the randomness used for imposter assignment.
func WithRandom(rng random.Source) Option {
	return func(m *Machine) {
		m.rng = rng
	}
}

// WithIDGenerator overrides how player ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(m *Machine) {
		m.newID = newID
	}
}

// New creates a machine in the setup phase, hydrated from the roster.
func New(opts ...Option) *Machine {
	m := &Machine{
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.rng == nil {
		m.rng = random.NewSeeded(0)
	}

	m.state = initialState(m.loadPlayers())

	return m
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	return m.state.clone()
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.state.Phase
}

// ActivePlayers returns the players still in the game.
func (m *Machine) ActivePlayers() []Player {
	return m.state.ActivePlayers()
}

// CurrentPlayer returns the player the cursor points at: the next revealer
// during the reveal, or the next voter (among active players) during a vote.
func (m *Machine) CurrentPlayer() (Player, bool) {
	var seats []Player
	switch m.state.Phase {
	case PhaseReveal:
		seats = m.state.Players
	case PhaseVoting:
		seats = m.state.ActivePlayers()
	default:
		return Player{}, false
	}

	i := m.state.CurrentPlayerIndex
	if i < 0 || i >= len(seats) {
		return Player{}, false
	}
	return seats[i], true
}

// WordFor returns the word dealt to the player with id.
func (m *Machine) WordFor(id string) (string, error) {
	if !m.state.Phase.InGame() {
		return "", wrongPhase("reveal words", m.state.Phase)
	}
	p, ok := m.state.Player(id)
	if !ok {
		return "", ErrPlayerNotFound
	}
	return m.state.Words.WordFor(p.IsImposter), nil
}

// AddPlayer appends a player to the roster.
func (m *Machine) AddPlayer(name string) (Player, error) {
	if m.state.Phase != PhaseSetup {
		return Player{}, wrongPhase("add players", m.state.Phase)
	}

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return Player{}, ErrNameRequired
	case fold.Contains(m.state.Names(), name):
		return Player{}, ErrNameTaken
	case len(m.state.Players) >= MaxPlayers:
		return Player{}, ErrRosterFull
	}

	p := Player{ID: m.newID(), Name: name}
	m.state.Players = append(m.state.Players, p)
	m.saveRoster()

	return p, nil
}

// RemovePlayer drops the player with id. Unknown ids are ignored.
func (m *Machine) RemovePlayer(id string) error {
	if m.state.Phase != PhaseSetup {
		return wrongPhase("remove players", m.state.Phase)
	}

	i := m.state.indexOf(id)
	if i < 0 {
		return nil
	}

	m.state.Players = slices.Delete(m.state.Players, i, i+1)
	m.saveRoster()

	return nil
}

// ReorderPlayers moves the player at from to position to, keeping the
// relative order of everyone else.
func (m *Machine) ReorderPlayers(from, to int) error {
	if m.state.Phase != PhaseSetup {
		return wrongPhase("reorder players", m.state.Phase)
	}

	n := len(m.state.Players)
	if from < 0 || from >= n || to < 0 || to >= n {
		return reject(CodeIndexOutOfRange, "cannot move player %d to %d in a roster of %d", from, to, n)
	}
	if from == to {
		return nil
	}

	moved := m.state.Players[from]
	players := slices.Delete(m.state.Players, from, from+1)
	m.state.Players = slices.Insert(players, to, moved)
	m.saveRoster()

	return nil
}

// ClearPlayers empties the roster and forgets the saved names.
func (m *Machine) ClearPlayers() error {
	if m.state.Phase != PhaseSetup {
		return wrongPhase("clear players", m.state.Phase)
	}

	m.state.Players = []Player{}
	if m.roster != nil {
		m.roster.Clear()
	}

	return nil
}

// SetImposterCount stores the imposter count for the next game. The
// per-roster cap from MaxImpostersFor is left to the caller, since the
// roster may still change before the deal.
func (m *Machine) SetImposterCount(n int) error {
	if n < 1 || n > MaxImposters {
		return ErrInvalidImposterCount
	}

	m.state.ImposterCount = n

	return nil
}

// ToggleCategory adds key to the category restriction, or removes it if
// already present.
func (m *Machine) ToggleCategory(key string) {
	if i := slices.Index(m.state.SelectedCategories, key); i >= 0 {
		m.state.SelectedCategories = slices.Delete(m.state.SelectedCategories, i, i+1)
		return
	}
	m.state.SelectedCategories = append(m.state.SelectedCategories, key)
}

// ClearCategories removes the restriction so every category is eligible.
func (m *Machine) ClearCategories() {
	m.state.SelectedCategories = []string{}
}

// SetShowRoles toggles whether players are told their role at reveal.
func (m *Machine) SetShowRoles(show bool) {
	m.state.ShowRoles = show
}

// SetVotingEnabled switches between individual voting and group picks.
func (m *Machine) SetVotingEnabled(enabled bool) {
	m.state.VotingEnabled = enabled
}

// StartGame deals words and roles and moves to the reveal. Imposter seats
// are drawn uniformly without replacement; if the stored count exceeds the
// roster, every player becomes an imposter rather than failing.
func (m *Machine) StartGame() error {
	if m.state.Phase != PhaseSetup {
		return wrongPhase("start a game", m.state.Phase)
	}
	if len(m.state.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	available := make([]string, len(m.state.Players))
	for i, p := range m.state.Players {
		available[i] = p.ID
	}

	imposters := make([]string, 0, m.state.ImposterCount)
	for range m.state.ImposterCount {
		if len(available) == 0 {
			break
		}
		i := m.rng.IntN(len(available))
		imposters = append(imposters, available[i])
		available = slices.Delete(available, i, i+1)
	}

	for i := range m.state.Players {
		p := &m.state.Players[i]
		p.resetGame()
		p.IsImposter = slices.Contains(imposters, p.ID)
	}

	m.state.Words = m.selectWords()
	m.state.Imposters = imposters
	m.state.Phase = PhaseReveal
	m.state.CurrentPlayerIndex = 0
	m.state.RoundNumber = 1
	m.state.EliminatedPlayers = []string{}
	m.state.Votes = []Vote{}
	m.state.LastEliminatedID = ""
	m.state.GameOver = false
	m.state.ImpostersWon = false

	return nil
}

// NextPlayer advances the reveal or voting cursor by one seat.
func (m *Machine) NextPlayer() error {
	var seats int
	switch m.state.Phase {
	case PhaseReveal:
		seats = len(m.state.Players)
	case PhaseVoting:
		seats = len(m.state.ActivePlayers())
	default:
		return wrongPhase("advance to the next player", m.state.Phase)
	}

	if m.state.CurrentPlayerIndex+1 >= seats {
		return ErrNoMorePlayers
	}

	m.state.CurrentPlayerIndex++

	return nil
}

// StartDiscussion moves from the reveal to open discussion.
func (m *Machine) StartDiscussion() error {
	if m.state.Phase != PhaseReveal {
		return wrongPhase("start the discussion", m.state.Phase)
	}

	m.state.Phase = PhaseDiscussion

	return nil
}

// StartVoting opens a vote after the reveal or the discussion.
func (m *Machine) StartVoting() error {
	if m.state.Phase != PhaseReveal && m.state.Phase != PhaseDiscussion {
		return wrongPhase("start voting", m.state.Phase)
	}

	m.state.Phase = PhaseVoting
	m.state.CurrentPlayerIndex = 0
	m.state.Votes = []Vote{}

	return nil
}

// CastVote records voterID's ballot against votedForID.
func (m *Machine) CastVote(voterID, votedForID string) error {
	if m.state.Phase != PhaseVoting {
		return wrongPhase("vote", m.state.Phase)
	}

	voter, err := m.activePlayer(voterID)
	if err != nil {
		return err
	}
	if _, err := m.activePlayer(votedForID); err != nil {
		return err
	}
	if voterID == votedForID {
		return ErrSelfVote
	}
	if voter.HasVoted {
		return ErrAlreadyVoted
	}

	p := &m.state.Players[m.state.indexOf(voterID)]
	p.HasVoted = true
	p.VotedFor = votedForID
	m.state.Votes = append(m.state.Votes, Vote{VoterID: voterID, TargetID: votedForID})

	return nil
}

// ResolveVotes tallies a completed vote and eliminates the leader,
// returning who was eliminated.
func (m *Machine) ResolveVotes() (string, error) {
	if m.state.Phase != PhaseVoting {
		return "", wrongPhase("count votes", m.state.Phase)
	}
	for _, p := range m.state.ActivePlayers() {
		if !p.HasVoted {
			return "", ErrVotingIncomplete
		}
	}

	leader, ok := Leader(Tally(m.state.Votes))
	if !ok {
		return "", ErrVotingIncomplete
	}

	return leader, m.Eliminate(leader)
}

// Eliminate removes playerID from play, either as the result of a vote or
// as the group's direct pick, then checks the win conditions and moves to
// the results.
func (m *Machine) Eliminate(playerID string) error {
	switch m.state.Phase {
	case PhaseReveal, PhaseDiscussion, PhaseVoting:
	default:
		return wrongPhase("eliminate a player", m.state.Phase)
	}
	if m.state.GameOver {
		return ErrGameOver
	}
	if _, err := m.activePlayer(playerID); err != nil {
		return err
	}

	m.state.Players[m.state.indexOf(playerID)].IsEliminated = true
	m.state.EliminatedPlayers = append(m.state.EliminatedPlayers, playerID)
	m.state.LastEliminatedID = playerID

	imposters, civilians := m.state.counts()
	switch {
	case imposters == 0:
		m.state.GameOver, m.state.ImpostersWon = true, false
	case imposters >= civilians:
		m.state.GameOver, m.state.ImpostersWon = true, true
	default:
		m.state.GameOver, m.state.ImpostersWon = false, false
	}

	m.state.Phase = PhaseResults

	return nil
}

// ContinueGame starts the next round after a non-final elimination.
func (m *Machine) ContinueGame() error {
	if m.state.Phase != PhaseResults {
		return wrongPhase("continue", m.state.Phase)
	}
	if m.state.GameOver {
		return ErrGameOver
	}

	for i := range m.state.Players {
		m.state.Players[i].resetRound()
	}

	m.state.Phase = PhaseVoting
	m.state.CurrentPlayerIndex = 0
	m.state.Votes = []Vote{}
	m.state.RoundNumber++
	m.state.LastEliminatedID = ""

	return nil
}

// ShowResults jumps to the results screen of the game in progress.
func (m *Machine) ShowResults() error {
	if !m.state.Phase.InGame() {
		return wrongPhase("show results", m.state.Phase)
	}

	m.state.Phase = PhaseResults

	return nil
}

// PlayAgain returns to setup with the same players and session settings,
// discarding roles, votes, eliminations and words.
func (m *Machine) PlayAgain() {
	players := slices.Clone(m.state.Players)
	for i := range players {
		players[i].resetGame()
	}

	next := initialState(players)
	next.SelectedCategories = slices.Clone(m.state.SelectedCategories)
	next.ShowRoles = m.state.ShowRoles
	next.VotingEnabled = m.state.VotingEnabled
	next.ImposterCount = m.state.ImposterCount

	m.state = next
}

// Reset discards the session and reloads the saved roster.
func (m *Machine) Reset() {
	m.state = initialState(m.loadPlayers())
}

func (m *Machine) activePlayer(id string) (Player, error) {
	p, ok := m.state.Player(id)
	if !ok {
		return Player{}, ErrPlayerNotFound
	}
	if p.IsEliminated {
		return Player{}, ErrPlayerEliminated
	}
	return p, nil
}

func (m *Machine) selectWords() words.Selection {
	if m.words == nil {
		return words.Fallback()
	}
	return m.words.Select(slices.Clone(m.state.SelectedCategories))
}

func (m *Machine) loadPlayers() []Player {
	players := []Player{}
	if m.roster == nil {
		return players
	}

	for _, name := range m.roster.Load() {
		players = append(players, Player{ID: m.newID(), Name: name})
	}

	return players
}

func (m *Machine) saveRoster() {
	if m.roster != nil {
		m.roster.Save(m.state.Names())
	}
}
