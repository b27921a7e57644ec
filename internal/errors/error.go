package errors

import "errors"

var (
	ErrNoAPIKey         = errors.New("api key not configured")
	ErrUnknownProvider  = errors.New("unknown llm provider")
	ErrEmptyLlmResponse = errors.New("llm returned an empty response")
	ErrUnparsableMove   = errors.New("no move found in reply")
	ErrIllegalMove      = errors.New("illegal move")
	ErrNoLegalMoves     = errors.New("no legal moves available")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrGameNotStarted   = errors.New("game is not started")
	ErrGameNotPaused    = errors.New("game is not paused")
	ErrGameOver         = errors.New("game is already over")
	ErrGameNotFound     = errors.New("game not found")
	ErrInternal         = errors.New("internal error")
)
