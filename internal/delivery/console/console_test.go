package console

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "ai_chess/internal/domain/game"
)

func TestPrinter(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	p := NewPrinter(&out, false)

	first := domain.MoveRecord{Ply: 1, Side: "White", From: "f2", To: "f3", SAN: "f3", Source: domain.SourceLlm, Attempts: 1,
		Duration: 1500 * time.Millisecond, Description: "Move 1: White moved Pawn from f2 to f3 [f3]"}
	second := domain.MoveRecord{Ply: 2, Side: "Black", From: "e7", To: "e5", SAN: "e5", Source: domain.SourceRandom, Attempts: 3,
		Description: "Move 1: Black moved pawn from e7 to e5 [e5]"}

	// Given a running game with one move
	p.Notify(domain.GameState{Status: domain.StatusInProgress, StatusMessage: domain.MessageInProgress, Turn: "Black",
		Moves: []domain.MoveRecord{first}})
	// When the next state repeats it and adds another
	p.Notify(domain.GameState{Status: domain.StatusFinished, StatusMessage: "Game ended - move limit reached",
		Moves: []domain.MoveRecord{first, second}})

	// Then every move is printed once
	text := out.String()
	req.Equal(1, bytes.Count(out.Bytes(), []byte(first.Description)))
	req.Contains(text, "Move 1: White moved Pawn from f2 to f3 [f3] (1.50s)")
	req.Contains(text, "[random fallback]")
	req.Contains(text, domain.MessageInProgress)

	out.Reset()
	p.Summary(domain.GameState{Status: domain.StatusFinished, StatusMessage: "Game ended - move limit reached",
		Moves: []domain.MoveRecord{first, second}})

	summary := out.String()
	req.Contains(summary, "PLY")
	req.Contains(summary, "f2-f3")
	req.Contains(summary, "random")
	req.Contains(summary, "Game ended - move limit reached")
}
