// Package games implements the capability set the MCTS core consumes:
// move enumeration, move application, terminal/winner detection, and an
// optional heuristic evaluator, for four board games (Gomoku, Connect4,
// Othello, Blokus).
//
// This mirrors alphabeth's game.State interface (game/state.go), widened
// from a single chess.State implementation to four board-array
// realizations selected by a small integer GameID tag. The tag is switched
// on once, in ByID; the kernel then calls the returned Game through its
// interface methods, including inside its selection and rollout loops.
package games

// Cell is one board square's occupant. 0 means empty; positive values are
// 1-indexed players (so player 1 occupies value 1, etc.).
type Cell = int8

// GameID selects a Game implementation at dispatch time.
type GameID uint8

const (
	GameGomoku GameID = iota
	GameConnect4
	GameOthello
	GameBlokus
)

func (g GameID) String() string {
	switch g {
	case GameGomoku:
		return "gomoku"
	case GameConnect4:
		return "connect4"
	case GameOthello:
		return "othello"
	case GameBlokus:
		return "blokus"
	default:
		return "unknown"
	}
}

// MoveID identifies a legal move in a game's own index space. For board
// games without placement pieces this is simply the target cell index.
type MoveID int32

// Game is the capability set a game must provide. Implementations must be
// safe to call concurrently from many worker goroutines against distinct
// board slices (no implementation holds mutable state itself).
type Game interface {
	ID() GameID
	Name() string

	// BoardCells is the number of cells in the board array passed to every
	// other method.
	BoardCells() int

	// NumPlayers is 2 for Gomoku/Connect4/Othello, 4 for Blokus.
	NumPlayers() int

	// EnumerateMoves lists the legal moves for player on board: every one
	// for Gomoku, Connect4 and Othello; Blokus stops after the first 4096.
	EnumerateMoves(board []Cell, player int8) []MoveID

	// ApplyMove mutates board in place applying m for player, and returns
	// the player to move next.
	ApplyMove(board []Cell, player int8, m MoveID) (nextPlayer int8)

	// IsTerminal reports whether the game has ended at this board state.
	IsTerminal(board []Cell) bool

	// Winner returns the winning player (1-indexed) once IsTerminal is
	// true. ok is false for a draw or a position with no single winner.
	Winner(board []Cell) (winner int8, ok bool)

	// Heuristic scores the board from player's perspective for the
	// heuristic-evaluation simulation mode. decided reports
	// whether the heuristic is confident enough to short-circuit a
	// rollout; when false, callers should treat it as a draw-ish nudge
	// only, not a simulated outcome.
	Heuristic(board []Cell, player int8) (score float32, decided bool)

	// InitialBoard returns a freshly allocated empty board and the player
	// to move first.
	InitialBoard() (board []Cell, firstPlayer int8)
}

// ByID returns the Game implementation for id.
func ByID(id GameID) Game {
	switch id {
	case GameGomoku:
		return NewGomoku()
	case GameConnect4:
		return NewConnect4()
	case GameOthello:
		return NewOthello()
	case GameBlokus:
		return NewBlokus()
	default:
		panic("games: unknown GameID")
	}
}
