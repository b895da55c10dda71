package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/structpb"

	"ringo/internal/app"
	"ringo/internal/bot"
	"ringo/internal/config"
	"ringo/internal/domain"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID              string                 `json:"match_id"`
	Seats                [app.MaxPlayers]string `json:"seats"`
	OwnerSeat            int                    `json:"owner_seat"`
	LastWinnerID         string                 `json:"last_winner_id"`
	Tick                 int64                  `json:"tick"`
	BotsEnabled          bool                   `json:"bots_enabled"`
	BotMinDelay          int                    `json:"bot_min_delay"`
	BotMaxDelay          int                    `json:"bot_max_delay"`
	BotAutoFillDelay     int                    `json:"bot_auto_fill_delay"`
	BotWaitUntil         int64                  `json:"bot_wait_until"`
	LastSinglePlayerTick int64                  `json:"last_single_player_tick"`

	Presences map[string]runtime.Presence `json:"-"`
	Game      *domain.GameState           `json:"-"`
	App       *app.Service                `json:"-"`
	Room      *bot.Room                   `json:"-"`
	// Bots maps a seated user to the agent acting for it. Humans who leave a
	// running game are played by a bot and listed in Departed.
	Bots     map[string]*bot.Agent `json:"-"`
	Departed map[string]bool       `json:"-"`
	Roster   *bot.Roster           `json:"-"`
	Tickets  *app.TicketService    `json:"-"`
	Config   config.Config         `json:"-"`
	Log      zerolog.Logger        `json:"-"`

	rng *rand.Rand
}

// newMatchState builds an empty lobby for matchID.
func newMatchState(matchID string, cfg config.Config, roster *bot.Roster) *MatchState {
	if roster == nil {
		roster = bot.NewRoster(nil)
	}
	return &MatchState{
		MatchID:          matchID,
		OwnerSeat:        -1,
		BotsEnabled:      cfg.Match.BotsEnabled,
		BotMinDelay:      cfg.Match.BotMinDelaySeconds,
		BotMaxDelay:      cfg.Match.BotMaxDelaySeconds,
		BotAutoFillDelay: cfg.Match.BotAutoFillDelaySeconds,
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(app.NewRand(), cfg.Deck),
		Room:             bot.NewRoom(matchID, cfg.Deck.HandSize, nil),
		Bots:             make(map[string]*bot.Agent),
		Departed:         make(map[string]bool),
		Roster:           roster,
		Config:           cfg,
		Log:              zerolog.New(os.Stderr).With().Timestamp().Str("match", matchID).Logger().Level(zerolog.InfoLevel),
		rng:              app.NewRand(),
	}
}

// seatLimit is the number of usable seats.
func (ms *MatchState) seatLimit() int {
	if n := ms.Config.Match.MaxSeats; n > 0 && n < len(ms.Seats) {
		return n
	}
	return len(ms.Seats)
}

func (ms *MatchState) seatOf(userID string) int {
	for i, id := range ms.Seats[:ms.seatLimit()] {
		if id != "" && id == userID {
			return i
		}
	}
	return -1
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats[:ms.seatLimit()] {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return ms.seatLimit() - ms.GetOpenSeatsCount()
}

// IsBot reports whether an agent acts for the user.
func (ms *MatchState) IsBot(userID string) bool {
	_, ok := ms.Bots[userID]
	return ok
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !ms.IsBot(seat) {
			count++
		}
	}
	return count
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func (ms *MatchState) findFirstHumanSeat() int {
	for i, userID := range ms.Seats {
		if userID != "" && !ms.IsBot(userID) {
			return i
		}
	}
	return -1
}

func (ms *MatchState) isHumanSeat(seat int) bool {
	if seat < 0 || seat >= len(ms.Seats) {
		return false
	}
	return ms.Seats[seat] != "" && !ms.IsBot(ms.Seats[seat])
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func (ms *MatchState) shouldTerminateNoHumans() bool {
	return ms.findFirstHumanSeat() == -1
}

func (ms *MatchState) playing() bool {
	return ms.Game != nil && ms.Game.Status == domain.StatusPlaying
}

func (ms *MatchState) displayName(userID string) string {
	if p, ok := ms.Presences[userID]; ok && p.GetUsername() != "" {
		return p.GetUsername()
	}
	if name := ms.Roster.DisplayName(userID); name != "" {
		return name
	}
	if ms.Game != nil {
		if p, ok := ms.Game.Player(userID); ok && p.Name != "" {
			return p.Name
		}
	}
	return userID
}

// newAgent creates the agent for a bot identity. Identities without a valid
// difficulty use the configured default.
func (ms *MatchState) newAgent(identity bot.BotIdentity) (*bot.Agent, error) {
	level, err := identity.Level()
	if err != nil {
		if level, err = bot.ParseLevel(ms.Config.Match.BotDifficulty); err != nil {
			return nil, err
		}
	}
	brain, err := bot.NewBrain(level, ms.Config.Bot)
	if err != nil {
		return nil, err
	}
	return &bot.Agent{ID: identity.UserID, Name: identity.DisplayName, Brain: brain}, nil
}

// applyEnv overrides match settings from the Nakama runtime environment.
func (ms *MatchState) applyEnv(env map[string]string) {
	if val, ok := env["ringo_bots_enabled"]; ok {
		ms.BotsEnabled = val == "true"
	}
	for key, dst := range map[string]*int{
		"ringo_bot_min_delay_sec":       &ms.BotMinDelay,
		"ringo_bot_max_delay_sec":       &ms.BotMaxDelay,
		"ringo_bot_auto_fill_delay_sec": &ms.BotAutoFillDelay,
	} {
		if val, ok := env[key]; ok {
			if i, err := strconv.Atoi(val); err == nil && i >= 0 {
				*dst = i
			}
		}
	}
	if ms.BotMaxDelay < ms.BotMinDelay {
		ms.BotMaxDelay = ms.BotMinDelay
	}
}

// ticketService builds the seat ticket service from the runtime environment.
// Without ringo_ticket_secret tickets are disabled.
func ticketService(env map[string]string, cfg config.Config) *app.TicketService {
	ttl := time.Duration(cfg.Match.TicketTTLSeconds) * time.Second
	return app.NewTicketService(env["ringo_ticket_secret"], cfg.Match.TicketIssuer, ttl)
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := config.Get()
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state := newMatchState(matchID, cfg, bot.DefaultRoster())

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	state.applyEnv(env)
	state.Tickets = ticketService(env, cfg)

	label, err := matchLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := cfg.Match.TickRate
	if tickRate <= 0 {
		tickRate = 1
	}
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	userID := presence.GetUserId()

	// Seated players may always come back.
	if matchState.seatOf(userID) >= 0 {
		return state, true, ""
	}

	if matchState.Tickets.Enabled() {
		if _, err := matchState.Tickets.Verify(metadata[MetadataTicket], userID, matchState.MatchID); err != nil {
			logger.Warn("MatchJoinAttempt: User %s rejected: %v", userID, err)
			return state, false, "invalid seat ticket"
		}
	}

	// Allow join if there is an empty seat OR a bot to replace (if game hasn't started)
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Game == nil {
			for _, seat := range matchState.Seats {
				if matchState.IsBot(seat) && !matchState.Departed[seat] {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if matchState.seatOf(userID) >= 0 {
			if matchState.Departed[userID] {
				logger.Info("MatchJoin: User %s is back, taking the seat over from its bot.", userID)
				delete(matchState.Departed, userID)
				delete(matchState.Bots, userID)
			}
			continue
		}

		// Assign seat: Try empty seats first, then bots (if lobby)
		assigned := false
		for i, seatUserID := range matchState.Seats[:matchState.seatLimit()] {
			if seatUserID == "" {
				matchState.Seats[i] = userID
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserID := range matchState.Seats[:matchState.seatLimit()] {
				if matchState.IsBot(seatUserID) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, userID, i)
					delete(matchState.Bots, seatUserID)
					matchState.Seats[i] = userID
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !matchState.isHumanSeat(matchState.OwnerSeat) {
		matchState.OwnerSeat = matchState.findFirstHumanSeat()
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	for _, p := range presences {
		mh.sendGameState(matchState, dispatcher, logger, p.GetUserId())
	}

	return matchState
}

// MatchLeave is called when one or more players leave the match. A player
// leaving a running game is replaced by a bot until the game ends.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		seat := matchState.seatOf(userID)
		if seat < 0 {
			continue
		}
		if matchState.playing() && matchState.Game.PlayerIndex(userID) >= 0 {
			identity := bot.BotIdentity{UserID: userID, DisplayName: matchState.displayName(userID), Difficulty: matchState.Config.Match.BotDifficulty}
			agent, err := matchState.newAgent(identity)
			if err != nil {
				logger.Error("MatchLeave: Failed to create stand-in bot for %s: %v", userID, err)
				matchState.Seats[seat] = ""
				continue
			}
			matchState.Bots[userID] = agent
			matchState.Departed[userID] = true
			logger.Debug("MatchLeave: User %s left mid-game, a bot plays seat %d.", userID, seat)
			continue
		}
		matchState.Seats[seat] = ""
		logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
	}

	if newOwner := matchState.findFirstHumanSeat(); newOwner != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwner
		logger.Debug("MatchLeave: Owner set to seat %d.", newOwner)
	}

	if matchState.shouldTerminateNoHumans() {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick
	ctx = matchState.Log.WithContext(ctx)

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpRequestState:
			mh.sendGameState(matchState, dispatcher, logger, msg.GetUserId())
		case OpPlay, OpDraw, OpRescuePlay, OpInsertDrawn, OpDiscardDrawn, OpResolveCapture:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.playing() && matchState.App.Stalled(matchState.Game) {
		res, err := matchState.App.EndStalled(matchState.Game)
		if err != nil {
			logger.Error("MatchLoop: Failed to end stalled game: %v", err)
		} else {
			logger.Info("MatchLoop: Game stalled, ending without a winner.")
			mh.applyResult(ctx, matchState, dispatcher, logger, res)
		}
	}

	if matchState.BotsEnabled || len(matchState.Departed) > 0 {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with bots if there's only one human player after delay
	if state.Game == nil {
		if !state.BotsEnabled {
			return
		}
		if state.GetHumanPlayerCount() != 1 {
			state.LastSinglePlayerTick = 0
			return
		}
		if state.LastSinglePlayerTick == 0 {
			state.LastSinglePlayerTick = state.Tick
			logger.Debug("processBots: Single player detected, starting auto-fill timer.")
		}
		if state.Tick-state.LastSinglePlayerTick < int64(state.BotAutoFillDelay) {
			return
		}

		added := false
		for i, seat := range state.Seats[:state.seatLimit()] {
			if seat != "" {
				continue
			}
			identity := state.Roster.Pick(i)
			if state.seatOf(identity.UserID) >= 0 {
				continue
			}
			agent, err := state.newAgent(identity)
			if err != nil {
				logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
				continue
			}
			state.Seats[i] = identity.UserID
			state.Bots[identity.UserID] = agent
			logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
			added = true
		}
		if added {
			mh.updateLabel(state, dispatcher, logger)
			mh.broadcastMatchState(state, dispatcher, logger)
		}
		state.LastSinglePlayerTick = 0
		return
	}

	// 2. Handle bot turns in-game
	if !state.playing() {
		return
	}
	current := state.Game.CurrentPlayer()
	agent, ok := state.Bots[current.ID]
	if !ok {
		state.BotWaitUntil = 0
		return
	}

	// Think time only applies at the start of a turn; follow-up steps of the
	// same turn run right away.
	if state.Game.Phase == domain.PhaseWaitingForPlayOrDraw {
		if state.BotWaitUntil == 0 {
			delay := state.BotMinDelay
			if spread := state.BotMaxDelay - state.BotMinDelay; spread > 0 {
				delay += state.rng.Intn(spread + 1)
			}
			state.BotWaitUntil = state.Tick + int64(delay)
			logger.Debug("processBots: Bot %s will act at tick %d (current %d)", current.ID, state.BotWaitUntil, state.Tick)
		}
		if state.Tick < state.BotWaitUntil {
			return
		}
	}
	state.BotWaitUntil = 0

	res, err := agent.Act(ctx, state.App, state.Game, state.Room)
	if err != nil {
		logger.Error("processBots: Bot %s failed to act: %v", current.ID, err)
		return
	}
	mh.applyResult(ctx, state, dispatcher, logger, res)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat < 0 || senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the match owner can start the game")
		return
	}
	if state.Game != nil && state.Game.Status == domain.StatusPlaying {
		mh.sendError(state, dispatcher, logger, senderID, 400, "game already running")
		return
	}

	seats := make([]app.Seat, 0, state.seatLimit())
	for _, userID := range state.Seats[:state.seatLimit()] {
		if userID != "" {
			seats = append(seats, app.Seat{ID: userID, Name: state.displayName(userID)})
		}
	}
	if len(seats) < app.MinPlayersToStartGame {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", len(seats), app.MinPlayersToStartGame)
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrTooFewPlayers.Error())
		return
	}

	res, err := state.App.CreateGame(seats, state.LastWinnerID)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.BotWaitUntil = 0
	mh.applyResult(ctx, state, dispatcher, logger, res)
	mh.updateLabel(state, dispatcher, logger)

	logger.Info("StartGame: Game %s started with %d players.", res.State.ID, len(seats))
}

// handleAction decodes a player action and runs it through the app service.
func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		logger.Warn("handleAction: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, 400, app.ErrNotPlaying.Error())
		return
	}

	body, err := decodeMessage(msg.GetData())
	if err != nil {
		logger.Warn("handleAction: Bad payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	res, err := dispatchAction(state.App, state.Game, senderID, msg.GetOpCode(), body)
	if err != nil {
		code := 400
		if domain.IsInconsistency(err) {
			code = 500
			logger.Error("handleAction: Inconsistent state for %s (op %d): %v", senderID, msg.GetOpCode(), err)
		} else {
			logger.Warn("handleAction: User %s action %d rejected: %v", senderID, msg.GetOpCode(), err)
		}
		mh.sendError(state, dispatcher, logger, senderID, code, err.Error())
		return
	}
	mh.applyResult(ctx, state, dispatcher, logger, res)
}

// dispatchAction maps an op code and its decoded body to a service call.
func dispatchAction(svc *app.Service, game *domain.GameState, playerID string, op int64, body *structpb.Struct) (app.Result, error) {
	switch op {
	case OpPlay:
		indices, err := intsField(body, "indices")
		if err != nil {
			return app.Result{}, err
		}
		resolutions, err := resolutionsField(body, "resolutions")
		if err != nil {
			return app.Result{}, err
		}
		return svc.Play(game, playerID, indices, resolutions)
	case OpDraw:
		return svc.Draw(game, playerID)
	case OpRescuePlay:
		indices, err := intsField(body, "indices")
		if err != nil {
			return app.Result{}, err
		}
		pos, err := intField(body, "insert_position")
		if err != nil {
			return app.Result{}, err
		}
		resolutions, err := resolutionsField(body, "resolutions")
		if err != nil {
			return app.Result{}, err
		}
		return svc.RescuePlay(game, playerID, indices, pos, resolutions)
	case OpInsertDrawn:
		pos, err := intField(body, "position")
		if err != nil {
			return app.Result{}, err
		}
		return svc.InsertDrawnCard(game, playerID, pos)
	case OpDiscardDrawn:
		return svc.DiscardDrawnCard(game, playerID)
	case OpResolveCapture:
		action := app.CaptureAction{Kind: app.CaptureKind(stringField(body, "action"))}
		if action.Kind == app.CaptureInsertOne {
			var err error
			if action.Position, err = intField(body, "position"); err != nil {
				return app.Result{}, err
			}
			if action.CardID, err = intField(body, "card_id"); err != nil {
				return app.Result{}, err
			}
		}
		return svc.ResolveCapture(game, playerID, action)
	default:
		return app.Result{}, fmt.Errorf("unknown op code %d", op)
	}
}

// applyResult stores the new snapshot, feeds the bot room and dispatches the
// events. A finished game returns the match to the lobby.
func (mh *matchHandler) applyResult(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, res app.Result) {
	state.Game = res.State
	state.Room.Observe(res.Events)
	for _, ev := range res.Events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	if state.Game.Status == domain.StatusOver {
		mh.finishGame(state, dispatcher, logger)
	}
}

func (mh *matchHandler) finishGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game.Winner != "" {
		state.LastWinnerID = state.Game.Winner
	}
	logger.Info("finishGame: Game %s over, winner %q.", state.Game.ID, state.Game.Winner)
	state.Game = nil
	state.BotWaitUntil = 0
	for userID := range state.Departed {
		if seat := state.seatOf(userID); seat >= 0 {
			state.Seats[seat] = ""
		}
		delete(state.Bots, userID)
		delete(state.Departed, userID)
	}
	if !state.isHumanSeat(state.OwnerSeat) {
		state.OwnerSeat = state.findFirstHumanSeat()
	}
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	players := make([]any, 0, len(state.Seats))
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		cardsRemaining := 0
		if state.Game != nil {
			if p, ok := state.Game.Player(userID); ok {
				cardsRemaining = len(p.Hand)
			}
		}
		players = append(players, map[string]any{
			"user_id":         userID,
			"seat":            i,
			"is_owner":        i == state.OwnerSeat,
			"is_bot":          state.IsBot(userID),
			"display_name":    state.displayName(userID),
			"cards_remaining": cardsRemaining,
		})
	}

	data, err := encodeMessage(map[string]any{
		"seats":      stringsValue(state.Seats[:state.seatLimit()]),
		"owner_seat": state.OwnerSeat,
		"tick":       state.Tick,
		"playing":    state.playing(),
		"players":    players,
	})
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true)
}

// sendGameState sends the running game as seen by userID.
func (mh *matchHandler) sendGameState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := state.Presences[userID]
	if !ok || state.Game == nil {
		return
	}
	data, err := encodeMessage(publicStateValue(state.App.PublicView(state.Game, userID)))
	if err != nil {
		logger.Error("sendGameState: Failed to marshal view for %s: %v", userID, err)
		return
	}
	dispatcher.BroadcastMessage(OpGameState, data, []runtime.Presence{presence}, nil, true)
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, fields, err := eventMessage(ev)
	if err != nil {
		logger.Warn("broadcastEvent: %v", err)
		return
	}
	data, err := encodeMessage(fields)
	if err != nil {
		logger.Error("broadcastEvent: Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they are bots),
		// we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	data, err := encodeMessage(map[string]any{"code": code, "message": message})
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

// matchLabel renders the listing label: game tag, open seats and phase.
func matchLabel(state *MatchState) (string, error) {
	phase := "lobby"
	if state.playing() {
		phase = "playing"
	}
	data, err := encodeMessage(map[string]any{
		"game":                  MatchLabelGame,
		MatchLabelKey_OpenSeats: state.GetOpenSeatsCount(),
		"phase":                 phase,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated, grace %d seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
