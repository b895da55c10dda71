// Command selfplay pits bot levels against each other and prints win rates.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ringo/internal/app"
	"ringo/internal/bot"
	"ringo/internal/config"
	"ringo/internal/domain"
)

// maxSteps bounds a single game; a game that runs longer is reported as unfinished.
const maxSteps = 5000

type seatPlan struct {
	ID    string
	Level bot.BotLevel
}

type gameOutcome struct {
	Winner   string
	Level    bot.BotLevel
	Stalled  bool
	Finished bool
	Turns    int
	Steps    int
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	games := flag.Int("games", envInt("RINGO_SELFPLAY_GAMES", 20), "number of games")
	players := flag.Int("players", envInt("RINGO_SELFPLAY_PLAYERS", 4), "players per game")
	nightmares := flag.Int("nightmare", 1, "seats played by the nightmare level, the rest play easy")
	parallel := flag.Int("parallel", 4, "games run at once")
	seed := flag.Int64("seed", time.Now().UnixNano(), "base random seed")
	samples := flag.Int("samples", 0, "override rollout samples")
	configPath := flag.String("config", os.Getenv("RINGO_CONFIG_PATH"), "YAML config file")
	verbose := flag.Bool("v", false, "log bot decisions")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger().Level(level)

	if *configPath != "" {
		if err := config.LoadConfig(*configPath); err != nil {
			pterm.Error.Printfln("Loading config: %v", err)
			os.Exit(1)
		}
	}
	cfg := config.Get()
	if *samples > 0 {
		cfg.Bot.Samples = *samples
	}
	if *players < app.MinPlayersToStartGame || *players > app.MaxPlayers {
		pterm.Error.Printfln("players must be between %d and %d", app.MinPlayersToStartGame, app.MaxPlayers)
		os.Exit(2)
	}

	plan := make([]seatPlan, *players)
	for i := range plan {
		plan[i] = seatPlan{ID: fmt.Sprintf("seat-%d", i), Level: bot.BotLevelEasy}
		if i < *nightmares {
			plan[i].Level = bot.BotLevelNightmare
		}
	}

	pterm.Info.Printfln("Running %d games with %d players (%d nightmare), seed %d", *games, *players, min(*nightmares, *players), *seed)
	spinner, _ := pterm.DefaultSpinner.Start("Playing ...")

	outcomes := make([]gameOutcome, *games)
	g, ctx := errgroup.WithContext(logger.WithContext(context.Background()))
	g.SetLimit(max(*parallel, 1))
	for i := range outcomes {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(*seed + int64(i)))
			out, err := playGame(ctx, cfg, plan, rng)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spinner.Fail(err.Error())
		os.Exit(1)
	}
	spinner.Success("Done")

	if err := pterm.DefaultTable.WithHasHeader().WithData(summarize(plan, outcomes)).Render(); err != nil {
		pterm.Error.Println(err)
	}
}

// playGame runs one bot-only game to the end, checking card conservation after
// every accepted action.
func playGame(ctx context.Context, cfg config.Config, plan []seatPlan, rng *rand.Rand) (gameOutcome, error) {
	svc := app.NewService(rng, cfg.Deck)
	seats := make([]app.Seat, len(plan))
	agents := make(map[string]*bot.Agent, len(plan))
	levels := make(map[string]bot.BotLevel, len(plan))
	for i, p := range plan {
		brain, err := bot.NewBrain(p.Level, cfg.Bot)
		if err != nil {
			return gameOutcome{}, err
		}
		seats[i] = app.Seat{ID: p.ID, Name: p.Level.String()}
		agents[p.ID] = &bot.Agent{ID: p.ID, Name: p.Level.String(), Brain: brain}
		levels[p.ID] = p.Level
	}

	res, err := svc.CreateGame(seats, "")
	if err != nil {
		return gameOutcome{}, err
	}
	state := res.State
	room := bot.NewRoom(state.ID, cfg.Deck.HandSize, rand.New(rand.NewSource(rng.Int63())))
	room.Observe(res.Events)

	out := gameOutcome{}
	for out.Steps = 0; out.Steps < maxSteps && state.Status == domain.StatusPlaying; out.Steps++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if svc.Stalled(state) {
			res, err = svc.EndStalled(state)
		} else {
			res, err = agents[state.CurrentPlayer().ID].Act(ctx, svc, state, room)
		}
		if err != nil {
			return out, err
		}
		if err := domain.CheckConservation(res.State); err != nil {
			return out, err
		}
		state = res.State
		room.Observe(res.Events)
	}

	out.Turns = state.Turn
	out.Finished = state.Status == domain.StatusOver
	out.Stalled = out.Finished && state.Winner == ""
	out.Winner = state.Winner
	out.Level = levels[state.Winner]
	return out, nil
}

// summarize renders one row per seat plus totals.
func summarize(plan []seatPlan, outcomes []gameOutcome) pterm.TableData {
	wins := make(map[string]int, len(plan))
	var stalled, unfinished, turns int
	for _, o := range outcomes {
		switch {
		case !o.Finished:
			unfinished++
		case o.Stalled:
			stalled++
		default:
			wins[o.Winner]++
		}
		turns += o.Turns
	}

	data := pterm.TableData{{"Seat", "Level", "Wins", "Win rate"}}
	for _, p := range plan {
		rate := 0.0
		if len(outcomes) > 0 {
			rate = float64(wins[p.ID]) / float64(len(outcomes))
		}
		data = append(data, []string{p.ID, p.Level.String(), strconv.Itoa(wins[p.ID]), fmt.Sprintf("%.1f%%", 100*rate)})
	}
	avg := 0.0
	if len(outcomes) > 0 {
		avg = float64(turns) / float64(len(outcomes))
	}
	data = append(data,
		[]string{"stalled", "", strconv.Itoa(stalled), ""},
		[]string{"unfinished", "", strconv.Itoa(unfinished), ""},
		[]string{"avg turns", "", fmt.Sprintf("%.1f", avg), ""},
	)
	return data
}
