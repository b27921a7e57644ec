package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ai_chess/internal/errors"
)

func TestBoard_ParseMove(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		reply string
		want  string
	}{
		{name: "json", reply: `{"move": "e2e4"}`, want: "e2e4"},
		{name: "fenced json", reply: "```json\n{\"move\": \"g1f3\"}\n```", want: "g1f3"},
		{name: "json with san", reply: `{"move": "Nc3"}`, want: "b1c3"},
		{name: "bare uci", reply: "d2d4", want: "d2d4"},
		{name: "uci with dash", reply: "I will play e2-e4.", want: "e2e4"},
		{name: "uppercase uci", reply: "E2E4", want: "e2e4"},
		{name: "san in prose", reply: "My move is Nf3, developing the knight.", want: "g1f3"},
		{name: "lowercase knight", reply: "nf3", want: "g1f3"},
		{name: "lowercase knight in json", reply: `{"move": "nf3"}`, want: "g1f3"},
		{name: "lowercase knight in prose", reply: "I play nc3", want: "b1c3"},
		{name: "skips illegal candidate", reply: "e2e5 is not possible so d2d4", want: "d2d4"},
		{
			name:  "castling with zeros",
			fen:   "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			reply: "0-0",
			want:  "e1g1",
		},
		{
			name:  "castling san",
			fen:   "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			reply: `{"move": "O-O-O"}`,
			want:  "e1c1",
		},
		{
			name:  "promotion suffix",
			fen:   "8/P7/8/8/8/8/8/2k4K w - - 0 1",
			reply: "a7a8=N",
			want:  "a7a8n",
		},
		{
			name:  "promotion defaults to queen",
			fen:   "8/P7/8/8/8/8/8/2k4K w - - 0 1",
			reply: "a7a8",
			want:  "a7a8q",
		},
		{
			name:  "san capture",
			fen:   "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2",
			reply: "exd5",
			want:  "e4d5",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			board := NewBoard(true)
			if tc.fen != "" {
				var err error
				board, err = NewBoardFromFEN(tc.fen, true)
				req.NoError(err)
			}

			got, err := board.ParseMove(tc.reply)
			req.NoError(err)
			req.Equal(tc.want, got)
		})
	}
}

func TestBoard_ParseMoveErrors(t *testing.T) {
	board := NewBoard(true)

	cases := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "empty", reply: "   ", err: errors.ErrUnparsableMove},
		{name: "no move", reply: "I resign, good game!", err: errors.ErrUnparsableMove},
		{name: "illegal uci", reply: `{"move": "e2e5"}`, err: errors.ErrIllegalMove},
		{name: "illegal san", reply: "Qh5", err: errors.ErrIllegalMove},
		{name: "square inside a word", reply: "staf3", err: errors.ErrUnparsableMove},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := board.ParseMove(tc.reply)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestTruncate(t *testing.T) {
	req := require.New(t)

	req.Equal("e2e4", truncate("e2e4", 10))
	req.Equal("♔♕...", truncate("♔♕♖♗", 2))
	req.Equal("ab...", truncate("abcdef", 2))
}
