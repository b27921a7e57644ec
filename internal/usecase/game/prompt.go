package game

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
)

var systemPromptTemplate = heredoc.Doc(`
	You are a professional chess player and you play as %s.
	You receive the current position and the complete list of legal moves.
	Choose exactly one move from that list. Respond quickly with minimal thinking:
	any legal move is better than no move.
	Answer with a single JSON object and nothing else, for example {"move": "e2e4"}.
`)

func SystemPrompt(side string) string {
	return fmt.Sprintf(systemPromptTemplate, strings.ToLower(side))
}

// BuildMovePrompt describes the position to the side to move. A non-empty
// rejected reply is quoted back so the model can correct itself.
func BuildMovePrompt(b *Board, side, rejected string, reason error) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Position (FEN): %s\n\n", b.FEN())
	fmt.Fprintf(&sb, "Board:\n%s\n", b.ASCII())

	history := b.HistorySAN()
	if history == "" {
		history = "none, this is the first move"
	}
	fmt.Fprintf(&sb, "Moves so far: %s\n\n", history)

	fmt.Fprintf(&sb, "You are playing %s. Available moves are: %s\n",
		strings.ToLower(side), strings.Join(b.LegalMoves(), ","))

	if rejected != "" {
		fmt.Fprintf(&sb, "\nYour previous answer %q was rejected", truncate(rejected, 120))
		if reason != nil {
			fmt.Fprintf(&sb, " (%v)", reason)
		}
		sb.WriteString(". Pick one move from the list above.\n")
	}

	sb.WriteString(`Reply with {"move": "<uci>"} only.`)
	return sb.String()
}
