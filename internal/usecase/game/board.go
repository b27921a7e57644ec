package game

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/notnil/chess"
	chessimage "github.com/notnil/chess/image"
	"github.com/samber/lo"

	domain "ai_chess/internal/domain/game"
	"ai_chess/internal/errors"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var lastMoveHighlight = color.RGBA{R: 128, G: 128, B: 128, A: 140}

var pieceNames = map[chess.PieceType]string{
	chess.King:   "king",
	chess.Queen:  "queen",
	chess.Rook:   "rook",
	chess.Bishop: "bishop",
	chess.Knight: "knight",
	chess.Pawn:   "pawn",
}

// Board wraps the rules library. It is not safe for concurrent use.
type Board struct {
	game       *chess.Game
	startFEN   string
	claimDraws bool
}

func NewBoard(claimDraws bool) *Board {
	board, _ := NewBoardFromFEN(StartFEN, claimDraws)
	return board
}

func NewBoardFromFEN(fen string, claimDraws bool) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return &Board{
		game:       chess.NewGame(opt),
		startFEN:   fen,
		claimDraws: claimDraws,
	}, nil
}

// NewBoardFromMoves replays a move log on top of startFEN.
func NewBoardFromMoves(startFEN string, moves []string, claimDraws bool) (*Board, error) {
	if startFEN == "" {
		startFEN = StartFEN
	}
	board, err := NewBoardFromFEN(startFEN, claimDraws)
	if err != nil {
		return nil, err
	}
	for _, uci := range moves {
		if _, err = board.Apply(uci); err != nil {
			return nil, err
		}
	}
	return board, nil
}

func (b *Board) Clone() *Board {
	return &Board{
		game:       b.game.Clone(),
		startFEN:   b.startFEN,
		claimDraws: b.claimDraws,
	}
}

func (b *Board) Turn() chess.Color {
	return b.game.Position().Turn()
}

func (b *Board) FEN() string {
	return b.game.Position().String()
}

func (b *Board) StartFEN() string {
	return b.startFEN
}

func (b *Board) ASCII() string {
	return b.game.Position().Board().Draw()
}

func (b *Board) LegalMoves() []string {
	return lo.Map(b.game.ValidMoves(), func(m *chess.Move, _ int) string {
		return m.String()
	})
}

func (b *Board) legal(uci string) (*chess.Move, bool) {
	return lo.Find(b.game.ValidMoves(), func(m *chess.Move) bool {
		return m.String() == uci
	})
}

func (b *Board) IsOver() bool {
	return b.game.Outcome() != chess.NoOutcome
}

func (b *Board) Outcome() string {
	return string(b.game.Outcome())
}

func (b *Board) Method() string {
	if b.game.Method() == chess.NoMethod {
		return ""
	}
	return b.game.Method().String()
}

func (b *Board) Winner() string {
	switch b.game.Outcome() {
	case chess.WhiteWon:
		return chess.White.Name()
	case chess.BlackWon:
		return chess.Black.Name()
	}
	return ""
}

// Apply plays uci and describes it the way the move log shows it.
func (b *Board) Apply(uci string) (domain.MoveRecord, error) {
	if b.IsOver() {
		return domain.MoveRecord{}, errors.ErrGameOver
	}

	uci = strings.ToLower(strings.TrimSpace(uci))
	mv, ok := b.legal(uci)
	if !ok {
		return domain.MoveRecord{}, fmt.Errorf("%w: %s", errors.ErrIllegalMove, uci)
	}

	pos := b.game.Position()
	side := pos.Turn().Name()
	number := fullMoveNumber(pos.String())
	san := chess.AlgebraicNotation{}.Encode(pos, mv)

	if err := b.game.Move(mv); err != nil {
		return domain.MoveRecord{}, fmt.Errorf("%w: %v", errors.ErrIllegalMove, err)
	}
	b.claimDraw()

	piece := pieceName(b.game.Position().Board().Piece(mv.S2()))
	from, to := mv.S1().String(), mv.S2().String()

	var special string
	switch {
	case mv.Promo() != chess.NoPieceType:
		special = "promoted to " + capitalize(pieceNames[mv.Promo()])
	case mv.HasTag(chess.KingSideCastle):
		special = "Kingside Castle"
	case mv.HasTag(chess.QueenSideCastle):
		special = "Queenside Castle"
	case mv.HasTag(chess.EnPassant):
		special = "en passant"
	}

	desc := fmt.Sprintf("Move %d: %s moved %s from %s to %s", number, side, piece, from, to)
	if special != "" {
		desc += " (" + special + ")"
	}
	desc += " [" + san + "]"

	status := b.StatusMessage()
	if status == "" && mv.HasTag(chess.Check) {
		status = "Check!"
	}
	if status != "" {
		desc += ". " + status
	}

	return domain.MoveRecord{
		Number:      number,
		Side:        side,
		UCI:         uci,
		SAN:         san,
		Piece:       piece,
		From:        from,
		To:          to,
		Special:     special,
		Description: desc,
		Status:      status,
		FEN:         b.FEN(),
	}, nil
}

func (b *Board) claimDraw() {
	if !b.claimDraws || b.IsOver() {
		return
	}
	for _, method := range b.game.EligibleDraws() {
		if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
			_ = b.game.Draw(method)
			return
		}
	}
}

// Adjudicate ends an unfinished game as a draw.
func (b *Board) Adjudicate() {
	if b.IsOver() {
		return
	}
	_ = b.game.Draw(chess.DrawOffer)
}

// StatusMessage is empty while the game is still running.
func (b *Board) StatusMessage() string {
	switch b.game.Method() {
	case chess.Checkmate:
		return fmt.Sprintf("Checkmate! %s wins!", b.Winner())
	case chess.Stalemate:
		return "Game ended in stalemate!"
	case chess.InsufficientMaterial:
		return "Game ended - insufficient material to checkmate!"
	case chess.ThreefoldRepetition:
		return "Game ended in a draw by threefold repetition!"
	case chess.FivefoldRepetition:
		return "Game ended in a draw by fivefold repetition!"
	case chess.FiftyMoveRule:
		return "Game ended in a draw by the fifty-move rule!"
	case chess.SeventyFiveMoveRule:
		return "Game ended in a draw by the seventy-five-move rule!"
	case chess.DrawOffer:
		return "Game ended in a draw"
	}
	if b.IsOver() {
		return "Game ended"
	}
	return ""
}

func (b *Board) RandomMove(pick func(n int) int) (string, error) {
	if b.IsOver() {
		return "", errors.ErrNoLegalMoves
	}
	moves := b.game.ValidMoves()
	if len(moves) == 0 {
		return "", errors.ErrNoLegalMoves
	}
	i := pick(len(moves))
	if i < 0 || i >= len(moves) {
		return "", fmt.Errorf("%w: random index %d out of %d moves", errors.ErrInternal, i, len(moves))
	}
	return moves[i].String(), nil
}

// HistorySAN renders the moves so far as "1. e4 e5 2. Nf3".
func (b *Board) HistorySAN() string {
	moves := b.game.Moves()
	positions := b.game.Positions()

	var sb strings.Builder
	for i, mv := range moves {
		pos := positions[i]
		number := fullMoveNumber(pos.String())
		if pos.Turn() == chess.White {
			fmt.Fprintf(&sb, "%d. ", number)
		} else if i == 0 {
			fmt.Fprintf(&sb, "%d... ", number)
		}
		sb.WriteString(chess.AlgebraicNotation{}.Encode(pos, mv))
		if i < len(moves)-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func (b *Board) PGN(tags map[string]string) string {
	if b.startFEN != StartFEN {
		b.game.AddTagPair("SetUp", "1")
		b.game.AddTagPair("FEN", b.startFEN)
	}
	for k, v := range tags {
		b.game.AddTagPair(k, v)
	}
	return b.game.String()
}

// SVG draws the board with the last move's squares marked.
func (b *Board) SVG(w io.Writer) error {
	board := b.game.Position().Board()
	moves := b.game.Moves()
	if len(moves) == 0 {
		return chessimage.SVG(w, board)
	}
	last := moves[len(moves)-1]
	return chessimage.SVG(w, board, chessimage.MarkSquares(lastMoveHighlight, last.S1(), last.S2()))
}

func fullMoveNumber(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil {
		return 1
	}
	return n
}

func pieceName(p chess.Piece) string {
	name, ok := pieceNames[p.Type()]
	if !ok {
		return "unknown"
	}
	if p.Color() == chess.White {
		return capitalize(name)
	}
	return name
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
