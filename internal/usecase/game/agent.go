package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "ai_chess/internal/domain/game"
)

type LlmStore interface {
	SendRequestToLlm(ctx context.Context, systemPrompt, request string) (string, error)
}

// Agent plays one colour by asking an LLM for moves.
type Agent struct {
	info        domain.PlayerInfo
	llm         LlmStore
	log         *zap.SugaredLogger
	maxAttempts int
	moveTimeout time.Duration
	pick        func(n int) int
}

func NewAgent(info domain.PlayerInfo, llm LlmStore, log *zap.SugaredLogger, maxAttempts int, moveTimeout time.Duration, pick func(n int) int) *Agent {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Agent{
		info:        info,
		llm:         llm,
		log:         log,
		maxAttempts: maxAttempts,
		moveTimeout: moveTimeout,
		pick:        pick,
	}
}

func (a *Agent) Info() domain.PlayerInfo {
	return a.info
}

// ChooseMove returns a legal move for the side to move on board. After
// maxAttempts failed LLM calls a random legal move is played instead.
func (a *Agent) ChooseMove(ctx context.Context, board *Board) (domain.Decision, error) {
	system := SystemPrompt(a.info.Color)

	var (
		rejected string
		reason   error
	)
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		reply, err := a.ask(ctx, system, BuildMovePrompt(board, a.info.Color, rejected, reason))
		if ctx.Err() != nil {
			return domain.Decision{}, ctx.Err()
		}
		if err != nil {
			a.log.Warnw("llm request failed", "agent", a.info.Name, "attempt", attempt, "error", err)
			rejected, reason = "", nil
			continue
		}

		uci, err := board.ParseMove(reply)
		if err != nil {
			a.log.Infow("llm reply rejected", "agent", a.info.Name, "attempt", attempt, "reply", truncate(reply, 120), "error", err)
			rejected, reason = reply, err
			continue
		}

		return domain.Decision{
			UCI:      uci,
			Source:   domain.SourceLlm,
			Attempts: attempt,
			Reply:    reply,
		}, nil
	}

	uci, err := board.RandomMove(a.pick)
	if err != nil {
		return domain.Decision{}, err
	}
	a.log.Warnw("playing random move", "agent", a.info.Name, "move", uci, "attempts", a.maxAttempts)

	return domain.Decision{
		UCI:      uci,
		Source:   domain.SourceRandom,
		Attempts: a.maxAttempts,
		Reply:    rejected,
	}, nil
}

func (a *Agent) ask(ctx context.Context, system, prompt string) (string, error) {
	if a.moveTimeout <= 0 {
		return a.llm.SendRequestToLlm(ctx, system, prompt)
	}
	callCtx, cancel := context.WithTimeout(ctx, a.moveTimeout)
	defer cancel()
	return a.llm.SendRequestToLlm(callCtx, system, prompt)
}
