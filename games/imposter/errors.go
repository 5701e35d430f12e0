/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"errors"
	"fmt"
)

// Code is a machine-readable rejection reason.
type Code string

const (
	CodeNameRequired         Code = "NAME_REQUIRED"
	CodeNameTaken            Code = "NAME_TAKEN"
	CodeRosterFull           Code = "ROSTER_FULL"
	CodeNotEnoughPlayers     Code = "NOT_ENOUGH_PLAYERS"
	CodeWrongPhase           Code = "WRONG_PHASE"
	CodePlayerNotFound       Code = "PLAYER_NOT_FOUND"
	CodePlayerEliminated     Code = "PLAYER_ELIMINATED"
	CodeSelfVote             Code = "SELF_VOTE"
	CodeAlreadyVoted         Code = "ALREADY_VOTED"
	CodeVotingIncomplete     Code = "VOTING_INCOMPLETE"
	CodeIndexOutOfRange      Code = "INDEX_OUT_OF_RANGE"
	CodeInvalidImposterCount Code = "INVALID_IMPOSTER_COUNT"
	CodeGameOver             Code = "GAME_OVER"
	CodeNoMorePlayers        Code = "NO_MORE_PLAYERS"
	CodeOutOfTurn            Code = "OUT_OF_TURN"
)

// Error is a rejected transition. The state is unchanged when one is
// returned.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrNameRequired         = &Error{Code: CodeNameRequired, Message: "please enter a name"}
	ErrNameTaken            = &Error{Code: CodeNameTaken, Message: "this name is already taken"}
	ErrRosterFull           = &Error{Code: CodeRosterFull, Message: fmt.Sprintf("maximum %d players allowed", MaxPlayers)}
	ErrNotEnoughPlayers     = &Error{Code: CodeNotEnoughPlayers, Message: fmt.Sprintf("need at least %d players to start", MinPlayers)}
	ErrWrongPhase           = &Error{Code: CodeWrongPhase, Message: "not allowed in this phase"}
	ErrPlayerNotFound       = &Error{Code: CodePlayerNotFound, Message: "player not found"}
	ErrPlayerEliminated     = &Error{Code: CodePlayerEliminated, Message: "player has been eliminated"}
	ErrSelfVote             = &Error{Code: CodeSelfVote, Message: "players cannot vote for themselves"}
	ErrAlreadyVoted         = &Error{Code: CodeAlreadyVoted, Message: "player has already voted this round"}
	ErrVotingIncomplete     = &Error{Code: CodeVotingIncomplete, Message: "not every active player has voted"}
	ErrIndexOutOfRange      = &Error{Code: CodeIndexOutOfRange, Message: "player position out of range"}
	ErrInvalidImposterCount = &Error{Code: CodeInvalidImposterCount, Message: fmt.Sprintf("imposter count must be between 1 and %d", MaxImposters)}
	ErrGameOver             = &Error{Code: CodeGameOver, Message: "the game is over"}
	ErrNoMorePlayers        = &Error{Code: CodeNoMorePlayers, Message: "every player has already had a turn"}
	ErrOutOfTurn            = &Error{Code: CodeOutOfTurn, Message: "it is another player's turn to vote"}
)

func reject(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrongPhase(action string, phase Phase) *Error {
	return reject(CodeWrongPhase, "cannot %s during %s", action, phase)
}

// CodeOf returns the rejection code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
