package game

import "time"

const (
	SourceLlm    = "llm"
	SourceRandom = "random"
)

// MoveRecord is one entry of the append-only move log.
type MoveRecord struct {
	Ply         int           `json:"ply" bson:"ply"`
	Number      int           `json:"number" bson:"number"`
	Side        string        `json:"side" bson:"side"`
	UCI         string        `json:"uci" bson:"uci"`
	SAN         string        `json:"san" bson:"san"`
	Piece       string        `json:"piece" bson:"piece"`
	From        string        `json:"from" bson:"from"`
	To          string        `json:"to" bson:"to"`
	Special     string        `json:"special,omitempty" bson:"special,omitempty"`
	Description string        `json:"description" bson:"description"`
	Status      string        `json:"status,omitempty" bson:"status,omitempty"`
	Source      string        `json:"source" bson:"source"`
	Attempts    int           `json:"attempts" bson:"attempts"`
	Duration    time.Duration `json:"duration" bson:"duration"`
	FEN         string        `json:"fen" bson:"fen"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
}

// Decision is what an agent settled on for one turn.
type Decision struct {
	UCI      string
	Source   string
	Attempts int
	Reply    string
}
