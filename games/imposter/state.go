/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"slices"

	"github.com/Seednode/wordimposter/games/words"
)

// State is everything the table can see about the session.
type State struct {
	Players            []Player        `json:"players"`
	ImposterCount      int             `json:"imposterCount"`
	Phase              Phase           `json:"gamePhase"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`
	Votes              []Vote          `json:"votes"`
	Imposters          []string        `json:"imposters"`
	SelectedCategories []string        `json:"selectedCategories"`
	ShowRoles          bool            `json:"showRoles"`
	VotingEnabled      bool            `json:"votingEnabled"`
	EliminatedPlayers  []string        `json:"eliminatedPlayers"`
	RoundNumber        int             `json:"roundNumber"`
	LastEliminatedID   string          `json:"lastEliminatedId,omitempty"`
	GameOver           bool            `json:"gameOver"`
	ImpostersWon       bool            `json:"impostersWon"`
	Words              words.Selection `json:"words"`
}

func initialState(players []Player) State {
	return State{
		Players:            players,
		ImposterCount:      DefaultImposters,
		Phase:              PhaseSetup,
		Votes:              []Vote{},
		Imposters:          []string{},
		SelectedCategories: []string{},
		EliminatedPlayers:  []string{},
		RoundNumber:        1,
	}
}

func (s State) clone() State {
	s.Players = slices.Clone(s.Players)
	s.Votes = slices.Clone(s.Votes)
	s.Imposters = slices.Clone(s.Imposters)
	s.SelectedCategories = slices.Clone(s.SelectedCategories)
	s.EliminatedPlayers = slices.Clone(s.EliminatedPlayers)
	s.Words.SetWords = slices.Clone(s.Words.SetWords)
	return s
}

// VoteMap returns the ballots keyed by voter.
func (s State) VoteMap() map[string]string {
	m := make(map[string]string, len(s.Votes))
	for _, v := range s.Votes {
		m[v.VoterID] = v.TargetID
	}
	return m
}

// ActivePlayers returns the players not yet eliminated, in roster order.
func (s State) ActivePlayers() []Player {
	active := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		if !p.IsEliminated {
			active = append(active, p)
		}
	}
	return active
}

// Player returns the player with id.
func (s State) Player(id string) (Player, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Players[i], true
	}
	return Player{}, false
}

func (s State) indexOf(id string) int {
	return slices.IndexFunc(s.Players, func(p Player) bool {
		return p.ID == id
	})
}

// Names returns the roster names in order.
func (s State) Names() []string {
	names := make([]string, len(s.Players))
	for i, p := range s.Players {
		names[i] = p.Name
	}
	return names
}

// counts returns the active imposters and civilians.
func (s State) counts() (imposters, civilians int) {
	for _, p := range s.Players {
		if p.IsEliminated {
			continue
		}
		if p.IsImposter {
			imposters++
		} else {
			civilians++
		}
	}
	return imposters, civilians
}
