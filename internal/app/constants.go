package app

// Seat limits for a game. MinPlayersToStartGame is checked by the room before
// it asks for a new game; CreateGame enforces both.
const (
	MinPlayersToStartGame = 2
	MaxPlayers            = 5
)
