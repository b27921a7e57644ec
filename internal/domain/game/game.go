package game

import "time"

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusFinished   Status = "finished"
)

const (
	MessageNotStarted = "Not started"
	MessageInProgress = "Game in progress"
	MessagePaused     = "Game paused"
)

type PlayerInfo struct {
	Name     string `json:"name" bson:"name"`
	Color    string `json:"color" bson:"color"`
	Provider string `json:"provider" bson:"provider"`
	Model    string `json:"model" bson:"model"`
}

// GameState is the snapshot rendered by the dashboard and persisted after every move.
type GameState struct {
	ID            string       `json:"id"`
	Status        Status       `json:"status"`
	StatusMessage string       `json:"status_message"`
	IsGameOver    bool         `json:"is_game_over"`
	StartFEN      string       `json:"start_fen"`
	FEN           string       `json:"fen"`
	Turn          string       `json:"turn"`
	Outcome       string       `json:"outcome,omitempty"`
	Method        string       `json:"method,omitempty"`
	Winner        string       `json:"winner,omitempty"`
	CurrentMove   *MoveRecord  `json:"current_move,omitempty"`
	Moves         []MoveRecord `json:"moves"`
	White         PlayerInfo   `json:"white"`
	Black         PlayerInfo   `json:"black"`
	ConfigError   string       `json:"config_error,omitempty"`
	StartedAt     *time.Time   `json:"started_at,omitempty"`
	FinishedAt    *time.Time   `json:"finished_at,omitempty"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// ArchivedGame is a finished game kept for later review.
type ArchivedGame struct {
	ID            string       `json:"id" bson:"_id"`
	White         PlayerInfo   `json:"white" bson:"white"`
	Black         PlayerInfo   `json:"black" bson:"black"`
	Outcome       string       `json:"outcome" bson:"outcome"`
	Method        string       `json:"method" bson:"method"`
	StatusMessage string       `json:"status_message" bson:"status_message"`
	PGN           string       `json:"pgn" bson:"pgn"`
	Moves         []MoveRecord `json:"moves" bson:"moves"`
	StartedAt     time.Time    `json:"started_at" bson:"started_at"`
	FinishedAt    time.Time    `json:"finished_at" bson:"finished_at"`
}

type PlayerRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// StartRequest optionally overrides the configured provider binding of either side.
type StartRequest struct {
	White *PlayerRequest `json:"white,omitempty"`
	Black *PlayerRequest `json:"black,omitempty"`
}

type ConfigResponse struct {
	White       PlayerInfo `json:"white"`
	Black       PlayerInfo `json:"black"`
	ConfigError string     `json:"config_error,omitempty"`
	MaxAttempts int        `json:"max_attempts"`
	MoveTimeout string     `json:"move_timeout"`
}
