/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

const (
	// MinPlayers is the minimum number of players required to start a game
	MinPlayers = 3

	// MaxPlayers is the largest roster the setup screen accepts
	MaxPlayers = 10

	// DefaultImposters is the imposter count for a fresh session
	DefaultImposters = 1

	// MaxImposters is the hard cap on imposters, before the per-roster cap
	MaxImposters = 3
)

// MaxImpostersFor returns the largest imposter count allowed for a roster
// of n players: imposters must stay below half the table.
func MaxImpostersFor(n int) int {
	return max(0, min(MaxImposters, n/2))
}

// Phase represents the current phase of the game
type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhaseReveal     Phase = "reveal"
	PhaseDiscussion Phase = "discussion"
	PhaseVoting     Phase = "voting"
	PhaseResults    Phase = "results"
)

func (p Phase) String() string {
	return string(p)
}

// InGame reports whether a game has been dealt and is being played.
func (p Phase) InGame() bool {
	return p != PhaseSetup && p != ""
}
