package game

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/notnil/chess"

	"ai_chess/internal/errors"
)

var (
	jsonMoveRe = regexp.MustCompile(`(?i)"move"\s*:\s*"([^"]+)"`)
	uciRe      = regexp.MustCompile(`(?i)\b([a-h][1-8])-?([a-h][1-8])(?:=?([qrbn]))?\b`)
	sanRe      = regexp.MustCompile(`(?:^|[^A-Za-z0-9])(O-O-O|O-O|0-0-0|0-0|[KQRBNkqrn]?[a-h]?[1-8]?x?[a-h][1-8](?:=?[QRBNqrbn])?)[+#]?`)
	uciOnlyRe  = regexp.MustCompile(`(?i)^([a-h][1-8])-?([a-h][1-8])(?:=?([qrbn]))?$`)
)

// ParseMove turns a free-text reply into a legal move in UCI notation.
// Candidates are tried in order: a JSON "move" field, UCI tokens, SAN tokens.
func (b *Board) ParseMove(reply string) (string, error) {
	text := strings.TrimSpace(reply)
	if text == "" {
		return "", errors.ErrUnparsableMove
	}

	var candidates []string
	if m := jsonMoveRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	for _, m := range uciRe.FindAllString(text, -1) {
		candidates = append(candidates, m)
	}
	for _, m := range sanRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %q", errors.ErrUnparsableMove, truncate(text, 80))
	}

	for _, candidate := range candidates {
		if uci, ok := b.resolve(candidate); ok {
			return uci, nil
		}
	}
	return "", fmt.Errorf("%w: %s", errors.ErrIllegalMove, candidates[0])
}

func (b *Board) resolve(token string) (string, bool) {
	token = strings.TrimSpace(token)
	token = strings.TrimRight(token, "+#!?.")
	if token == "" {
		return "", false
	}

	if m := uciOnlyRe.FindStringSubmatch(token); m != nil {
		uci := strings.ToLower(m[1] + m[2] + m[3])
		if _, ok := b.legal(uci); ok {
			return uci, true
		}
		// e7e8 without a piece means a queen.
		if m[3] == "" {
			if _, ok := b.legal(uci + "q"); ok {
				return uci + "q", true
			}
		}
	}

	// The check suffix was trimmed above; encoded SAN may carry one.
	san := strings.ReplaceAll(token, "0", "O")
	// A lowercase b is a pawn file, so only n, r, q and k name pieces.
	if len(san) > 2 && strings.ContainsRune("nrqk", rune(san[0])) {
		san = strings.ToUpper(san[:1]) + san[1:]
	}
	for _, variant := range []string{san, san + "+", san + "#"} {
		mv, err := chess.AlgebraicNotation{}.Decode(b.game.Position(), variant)
		if err != nil {
			continue
		}
		if _, ok := b.legal(mv.String()); ok {
			return mv.String(), true
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
