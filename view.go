/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"slices"

	"github.com/Seednode/wordimposter/games/imposter"
)

// GameView is what every screen at the table receives. Roles and words
// are withheld until the game is over; a player's own word is fetched
// from /reveal while it is their turn.
type GameView struct {
	Type          string               `json:"type"` // "game_state"
	GameID        string               `json:"game_id"`
	State         imposter.State       `json:"state"`
	ActivePlayers []imposter.Player    `json:"active_players"`
	CurrentPlayer *imposter.Player     `json:"current_player,omitempty"`
	Tally         []imposter.VoteCount `json:"tally,omitempty"`
	Categories    []CategorySummary    `json:"categories"`
	Limits        Limits               `json:"limits"`
}

// Limits tell the page which controls to offer.
type Limits struct {
	MinPlayers        int `json:"min_players"`
	MaxPlayers        int `json:"max_players"`
	MaxImposters      int `json:"max_imposters"`
	DiscussionSeconds int `json:"discussion_seconds"`
	MaxCategoryName   int `json:"max_category_name"`
}

// CategorySummary is one row of the category picker.
type CategorySummary struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Sets     int    `json:"sets"`
	IsCustom bool   `json:"is_custom"`
	Selected bool   `json:"selected"`
}

// RevealView is the private screen shown to the player holding the device.
type RevealView struct {
	PlayerID     string `json:"player_id"`
	Name         string `json:"name"`
	Word         string `json:"word"`
	CategoryName string `json:"category_name"`
	IsImposter   *bool  `json:"is_imposter,omitempty"`
	Last         bool   `json:"last"`
}

func (h *Hub) viewLocked() GameView {
	s := h.machine.Snapshot()

	limits := h.limits
	limits.MaxImposters = max(1, imposter.MaxImpostersFor(len(s.Players)))

	view := GameView{
		Type:          "game_state",
		GameID:        h.id,
		State:         redact(s),
		ActivePlayers: redactPlayers(s, s.ActivePlayers()),
		Categories:    h.categorySummaries(s.SelectedCategories),
		Limits:        limits,
	}

	if p, ok := h.machine.CurrentPlayer(); ok {
		p = redactPlayers(s, []imposter.Player{p})[0]
		view.CurrentPlayer = &p
	}

	if s.Phase == imposter.PhaseResults && s.VotingEnabled && len(s.Votes) > 0 {
		view.Tally = imposter.Tally(s.Votes)
	}

	return view
}

// revealLocked returns the word for whoever holds the device.
func (h *Hub) revealLocked() (RevealView, error) {
	s := h.machine.Snapshot()
	if s.Phase != imposter.PhaseReveal {
		return RevealView{}, imposter.ErrWrongPhase
	}

	p, ok := h.machine.CurrentPlayer()
	if !ok {
		return RevealView{}, imposter.ErrNoMorePlayers
	}

	word, err := h.machine.WordFor(p.ID)
	if err != nil {
		return RevealView{}, err
	}

	view := RevealView{
		PlayerID:     p.ID,
		Name:         p.Name,
		Word:         word,
		CategoryName: s.Words.CategoryName,
		Last:         s.CurrentPlayerIndex == len(s.Players)-1,
	}
	if s.ShowRoles {
		view.IsImposter = &p.IsImposter
	}

	return view, nil
}

func (h *Hub) categorySummaries(selected []string) []CategorySummary {
	all := h.categories.All()
	keys := h.categories.Keys()

	out := make([]CategorySummary, 0, len(keys))
	for _, key := range keys {
		c := all[key]
		out = append(out, CategorySummary{
			Key:      key,
			Name:     c.Name,
			Sets:     len(c.Sets),
			IsCustom: c.IsCustom,
			Selected: slices.Contains(selected, key),
		})
	}
	return out
}

// redact hides who the imposters are and what the words were until the
// game is over. Eliminated players are already revealed by the results.
func redact(s imposter.State) imposter.State {
	if s.GameOver {
		return s
	}

	s.Players = redactPlayers(s, s.Players)
	s.Imposters = []string{}
	s.Words.MainWord = ""
	s.Words.ImposterWord = ""
	s.Words.SetWords = []string{}

	return s
}

func redactPlayers(s imposter.State, players []imposter.Player) []imposter.Player {
	if s.GameOver {
		return players
	}

	out := make([]imposter.Player, len(players))
	for i, p := range players {
		if !p.IsEliminated {
			p.IsImposter = false
		}
		out[i] = p
	}
	return out
}
