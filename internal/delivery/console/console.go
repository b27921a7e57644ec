package console

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	domain "ai_chess/internal/domain/game"
)

const spinnerCharset = 14

// Printer follows a game on a terminal: one line per move while it runs
// and a move table once it is over.
type Printer struct {
	out         io.Writer
	interactive bool
	spinner     *spinner.Spinner

	mu      sync.Mutex
	printed int
	status  domain.Status
}

func NewPrinter(out io.Writer, interactive bool) *Printer {
	p := &Printer{out: out, interactive: interactive}
	if interactive {
		p.spinner = spinner.New(spinner.CharSets[spinnerCharset], 100*time.Millisecond, spinner.WithWriter(out))
	}
	return p
}

func (p *Printer) Notify(state domain.GameState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	if len(state.Moves) < p.printed {
		p.printed = 0
	}
	for _, move := range state.Moves[p.printed:] {
		p.printMove(move)
	}
	p.printed = len(state.Moves)

	if state.Status != p.status {
		p.status = state.Status
		if state.Status != domain.StatusFinished {
			fmt.Fprintln(p.out, p.paint(color.Cyan, state.StatusMessage))
		}
	}

	if state.Status == domain.StatusInProgress && p.spinner != nil {
		p.spinner.Suffix = fmt.Sprintf(" %s is thinking...", "Agent_"+state.Turn)
		p.spinner.Start()
	}
}

func (p *Printer) printMove(move domain.MoveRecord) {
	line := fmt.Sprintf("%s (%.2fs)", move.Description, move.Duration.Seconds())
	if move.Source == domain.SourceRandom {
		fmt.Fprintln(p.out, p.paint(color.Yellow, line+" [random fallback]"))
		return
	}
	fmt.Fprintln(p.out, line)
}

// Summary prints the move table and the final status.
func (p *Printer) Summary(state domain.GameState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSpinner()

	table := tablewriter.NewWriter(p.out)
	table.SetHeader([]string{"Ply", "Side", "Move", "SAN", "Source", "Attempts", "Time"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, m := range state.Moves {
		table.Append([]string{
			strconv.Itoa(m.Ply),
			m.Side,
			m.From + "-" + m.To,
			m.SAN,
			m.Source,
			strconv.Itoa(m.Attempts),
			fmt.Sprintf("%.2fs", m.Duration.Seconds()),
		})
	}
	fmt.Fprintln(p.out)
	table.Render()
	fmt.Fprintln(p.out)

	switch {
	case state.Status == domain.StatusFinished:
		fmt.Fprintln(p.out, p.paint(color.Green, state.StatusMessage))
	case state.StatusMessage != "":
		fmt.Fprintln(p.out, p.paint(color.Red, state.StatusMessage))
	}
}

func (p *Printer) stopSpinner() {
	if p.spinner != nil && p.spinner.Active() {
		p.spinner.Stop()
	}
}

func (p *Printer) paint(c color.Color, s string) string {
	if !p.interactive {
		return s
	}
	return c.Sprint(s)
}
