package main

import (
	"context"
	"fmt"
	"time"

	"guardians/internal/game"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
)

type batchSummary struct {
	Games       int
	Finished    int
	MeanValue   float64
	MedianValue float64
	BestValue   float64
	MeanDays    float64
}

// autoplay drives one game with a simple strategy: answer the first dilemma
// option, guess quizzes at random, take the calmer choice on choice events, and
// rebalance towards badge thresholds on the first day.
func autoplay(engine *game.Engine, days int, r game.Rand) game.State {
	st := engine.NewState()
	for _, step := range []struct {
		asset game.Asset
		value int
	}{
		{game.Tech, 10}, {game.Crypto, 10}, {game.Bond, 0},
		{game.ESG, 20}, {game.Gold, 20}, {game.Stablecoin, 20}, {game.Yield, 20},
	} {
		st, _ = engine.Apply(st, game.SetWeight{Asset: step.asset, Value: step.value})
	}

	// Each day can take several actions to resolve, so bound the loop by actions.
	for i := 0; i < days*8 && st.Day < days && !st.Endgame; i++ {
		switch {
		case st.ActiveDilemma != "":
			st, _ = engine.Apply(st, game.AnswerDilemma{Option: 0})
		case st.ActiveQuiz != "":
			q, _ := engine.Content.Quiz(st.ActiveQuiz)
			st, _ = engine.Apply(st, game.AnswerQuiz{Option: r.Intn(max(len(q.Options), 1))})
		case st.PendingEvent != "":
			ev, _ := engine.Content.Event(st.PendingEvent)
			choice := len(ev.Choices) - 1
			st, _ = engine.Apply(st, game.AdvanceDay{Choice: &choice})
		default:
			if !st.WheelUsed {
				st, _ = engine.Apply(st, game.SpinWheel{})
			}
			st, _ = engine.Apply(st, game.AdvanceDay{})
		}
	}
	return st
}

func runBatch(ctx context.Context, content *game.Content, rules game.Rules, seed int64, games, days int, rec game.ResultRecorder) (batchSummary, error) {
	out := batchSummary{Games: games}
	values := make([]float64, 0, games)
	dayCounts := make([]float64, 0, games)
	for i := 0; i < games; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		gameSeed := seed
		if gameSeed != 0 {
			gameSeed += int64(i)
		}
		r := game.NewRand(gameSeed)
		engine := game.NewEngine(content, rules, r)
		st := autoplay(engine, days, r)
		values = append(values, st.PortfolioValue)
		dayCounts = append(dayCounts, float64(st.Day))
		if !st.Endgame {
			continue
		}
		out.Finished++
		st, _ = engine.Apply(st, game.RevealSummary{})
		if err := rec.RecordResult(ctx, game.ResultFromState("sim-"+uuid.NewString(), st, time.Now().UTC())); err != nil {
			return out, fmt.Errorf("record result: %w", err)
		}
	}

	var err error
	if out.MeanValue, err = stats.Mean(values); err != nil {
		return out, err
	}
	if out.MedianValue, err = stats.Median(values); err != nil {
		return out, err
	}
	if out.BestValue, err = stats.Max(values); err != nil {
		return out, err
	}
	if out.MeanDays, err = stats.Mean(dayCounts); err != nil {
		return out, err
	}
	return out, nil
}
