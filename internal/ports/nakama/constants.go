package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameRingo is the authoritative match handler name registered with Nakama.
	MatchNameRingo = "ringo_match"

	// MatchLabelGame tags ringo matches in the label so listings can filter on it.
	MatchLabelGame = "ringo"

	// MatchLabelKey_OpenSeats is the label key holding the open seat count.
	MatchLabelKey_OpenSeats = "open"

	// MetadataTicket is the join metadata key carrying the seat ticket.
	MetadataTicket = "ticket"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame      int64 = 1
	OpPlay           int64 = 2
	OpDraw           int64 = 3
	OpRescuePlay     int64 = 4
	OpInsertDrawn    int64 = 5
	OpDiscardDrawn   int64 = 6
	OpResolveCapture int64 = 7
	OpRequestState   int64 = 8

	// Server -> Client events
	OpMatchState         int64 = 101
	OpGameStarted        int64 = 102
	OpHandDealt          int64 = 103 // send privately
	OpComboPlayed        int64 = 104
	OpCaptureAwaiting    int64 = 105 // send privately
	OpCaptureResolved    int64 = 106
	OpCardDrawn          int64 = 107
	OpDrawnCardRevealed  int64 = 108 // send privately
	OpDrawnCardInserted  int64 = 109
	OpDrawnCardDiscarded int64 = 110
	OpDeckRecycled       int64 = 111
	OpPileClosed         int64 = 112
	OpTurnChanged        int64 = 113
	OpGameEnded          int64 = 114
	OpGameState          int64 = 115 // send privately
	OpGameError          int64 = 120
)
