/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

// Player is one seat at the table.
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsImposter   bool   `json:"isImposter"`
	HasVoted     bool   `json:"hasVoted"`
	VotedFor     string `json:"votedFor,omitempty"`
	IsEliminated bool   `json:"isEliminated"`
}

// resetRound clears the per-round voting fields.
func (p *Player) resetRound() {
	p.HasVoted = false
	p.VotedFor = ""
}

// resetGame clears everything but identity.
func (p *Player) resetGame() {
	p.resetRound()
	p.IsImposter = false
	p.IsEliminated = false
}

// Vote is one ballot, kept in the order it was cast.
type Vote struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

// VoteCount is the number of ballots naming one candidate.
type VoteCount struct {
	PlayerID string `json:"playerId"`
	Votes    int    `json:"votes"`
}
