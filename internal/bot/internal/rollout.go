package internal

import (
	"context"
	"math/rand"
	"runtime"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ringo/internal/domain"
)

const (
	DefaultSamples = 32
	DefaultHorizon = 6
	// soonPlies is how many plies after the action count as "soon".
	soonPlies = 2
	// finisherHandSize is the hand size at which an opponent can go out in one play.
	finisherHandSize = 2
)

// ActionKind is the first action of a rollout.
type ActionKind uint8

const (
	// ActionPlay plays Combo from the bot's hand.
	ActionPlay ActionKind = iota
	// ActionDraw draws and lets the bot's rollout policy place the card.
	ActionDraw
	// ActionKeep ends the turn with the bot's hand set to Hand.
	ActionKeep
)

// Action is a candidate first move. When Hand is set it replaces the bot's
// hand before the action is applied; Discard is added to the discard pile.
type Action struct {
	Kind    ActionKind
	Combo   domain.Combo
	Hand    []domain.Card
	Discard []domain.Card
}

// Stats aggregates the trials run for one action.
type Stats struct {
	Trials         int
	Truncated      int
	PWin           float64
	POppWinsSoon   float64
	PGivesFinisher float64
	ExpectedTurns  float64
}

// Sampler deals one hidden world. It must be safe for concurrent use.
type Sampler func(rng *rand.Rand) (*domain.GameState, error)

// Simulator runs bounded forward simulations from sampled worlds.
type Simulator struct {
	Samples int
	Horizon int
	Workers int
}

type trialResult struct {
	ok        bool
	win       bool
	turns     int
	oppSoon   bool
	finisher  bool
	truncated bool
}

// Evaluate runs Samples trials for every action. Each trial samples one world
// and plays every action from it, so actions are compared on the same deals.
// Seeds are drawn from rng up front, making results reproducible.
func (s Simulator) Evaluate(ctx context.Context, rng *rand.Rand, botID string, sample Sampler, actions []Action) []Stats {
	logger := zerolog.Ctx(ctx)
	samples, horizon := s.Samples, s.Horizon
	if samples <= 0 {
		samples = DefaultSamples
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	seeds := make([]int64, samples)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}
	results := make([][]trialResult, len(actions))
	for i := range results {
		results[i] = make([]trialResult, samples)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for trial := range seeds {
		trial := trial
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trng := rand.New(rand.NewSource(seeds[trial]))
			state, err := sample(trng)
			if err != nil {
				logger.Debug().Err(err).Int("trial", trial).Msg("sample failed")
				return nil
			}
			bot := state.PlayerIndex(botID)
			if bot < 0 {
				return nil
			}
			base := NewWorld(state)
			for i, a := range actions {
				arng := rand.New(rand.NewSource(seeds[trial] + int64(i)))
				results[i][trial] = runTrial(arng, base.Clone(), bot, a, horizon)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Debug().Err(err).Msg("rollout interrupted")
	}

	out := make([]Stats, len(actions))
	for i := range actions {
		out[i] = aggregate(results[i], horizon)
	}
	logger.Debug().Int("actions", len(actions)).Int("samples", samples).Int("horizon", horizon).Msg("rollout finished")
	return out
}

func aggregate(results []trialResult, horizon int) Stats {
	var st Stats
	wins, turns, soon, finisher := 0, 0, 0, 0
	for _, r := range results {
		if !r.ok {
			continue
		}
		st.Trials++
		if r.truncated {
			st.Truncated++
		}
		if r.win {
			wins++
			turns += r.turns
		}
		if r.oppSoon {
			soon++
		}
		if r.finisher {
			finisher++
		}
	}
	st.ExpectedTurns = float64(horizon + 1)
	if st.Trials == 0 {
		return st
	}
	n := float64(st.Trials)
	st.PWin = float64(wins) / n
	st.POppWinsSoon = float64(soon) / n
	st.PGivesFinisher = float64(finisher) / n
	if wins > 0 {
		st.ExpectedTurns = float64(turns) / float64(wins)
	}
	return st
}

// runTrial applies the action for the bot, then plays up to horizon rounds
// with the bot on ShapePolicy and everyone else on SimplePolicy.
func runTrial(rng *rand.Rand, w World, bot int, a Action, horizon int) trialResult {
	res := trialResult{ok: true, turns: 1}
	if a.Hand != nil {
		w.Hands[bot] = slices.Clip(a.Hand)
	}
	if len(a.Discard) > 0 {
		w.Discard = append(slices.Clip(w.Discard), domain.PlainCards(a.Discard)...)
	}
	w.Current = bot

	switch a.Kind {
	case ActionPlay:
		w.Play(bot, a.Combo)
	case ActionDraw:
		if !w.TakeTurn(bot, drawOnly{ShapePolicy{}}, rng) {
			res.truncated = true
			return res
		}
	}
	if len(w.Hands[bot]) == 0 {
		res.win = true
		return res
	}
	w.Advance()

	next := w.Hands[w.Current]
	if w.Current != bot && len(next) <= finisherHandSize && len(domain.FindValidCombos(next, w.Table)) > 0 {
		res.finisher = true
	}

	plies := horizon * len(w.Hands)
	for ply := 1; ply <= plies; ply++ {
		seat := w.Current
		var policy SeatPolicy = SimplePolicy{}
		if seat == bot {
			policy = ShapePolicy{}
			res.turns++
		}
		if !w.TakeTurn(seat, policy, rng) {
			res.truncated = true
			return res
		}
		if len(w.Hands[seat]) == 0 {
			if seat == bot {
				res.win = true
			} else if ply <= soonPlies {
				res.oppSoon = true
			}
			return res
		}
		w.Advance()
	}
	return res
}

// drawOnly wraps a policy so that it never plays from hand; the draw is
// forced and only the rescue decision is delegated.
type drawOnly struct {
	SeatPolicy
}

func (drawOnly) Play([]domain.Card, *domain.Combo) (domain.Combo, bool) {
	return domain.Combo{}, false
}
