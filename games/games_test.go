package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGomokuWinDetection(t *testing.T) {
	g := NewGomoku()
	board, _ := g.InitialBoard()
	player := int8(1)
	for i := 0; i < 5; i++ {
		board[i] = player // row 0, cols 0..4
	}
	winner, ok := g.Winner(board)
	require.True(t, ok)
	assert.EqualValues(t, player, winner)
	assert.True(t, g.IsTerminal(board))
}

func TestGomokuEnumerateExcludesOccupied(t *testing.T) {
	g := NewGomoku()
	board, _ := g.InitialBoard()
	board[0] = 1
	moves := g.EnumerateMoves(board, 2)
	for _, m := range moves {
		assert.NotEqualValues(t, 0, m)
	}
	assert.Equal(t, g.BoardCells()-1, len(moves))
}

func TestConnect4GravityAndWin(t *testing.T) {
	g := NewConnect4()
	board, player := g.InitialBoard()
	// drop four pieces into column 0 for player 1, alternating a harmless
	// column 1 move for player 2 so the win is unambiguous.
	for i := 0; i < 4; i++ {
		next := g.ApplyMove(board, player, MoveID(0))
		assert.EqualValues(t, 2, next)
		player = 1
		if i < 3 {
			g.ApplyMove(board, 2, MoveID(1))
		}
	}
	winner, ok := g.Winner(board)
	require.True(t, ok)
	assert.EqualValues(t, 1, winner)
}

func TestConnect4FullColumnNotPlayable(t *testing.T) {
	g := NewConnect4()
	board, _ := g.InitialBoard()
	for i := 0; i < g.Height; i++ {
		g.ApplyMove(board, 1, MoveID(0))
	}
	moves := g.EnumerateMoves(board, 1)
	for _, m := range moves {
		assert.NotEqualValues(t, 0, m)
	}
}

func TestOthelloOpeningHasFourMoves(t *testing.T) {
	g := NewOthello()
	board, player := g.InitialBoard()
	moves := g.EnumerateMoves(board, player)
	assert.Len(t, moves, 4)
}

func TestOthelloApplyFlips(t *testing.T) {
	g := NewOthello()
	board, player := g.InitialBoard()
	moves := g.EnumerateMoves(board, player)
	require.NotEmpty(t, moves)
	before := countPieces(board, 1)
	g.ApplyMove(board, player, moves[0])
	after := countPieces(board, 1)
	assert.Greater(t, after, before+1, "expected at least one opponent disc flipped")
}

func countPieces(board []Cell, player int8) int {
	n := 0
	for _, c := range board {
		if c == player {
			n++
		}
	}
	return n
}

func TestBlokusFirstMoveMustCoverCorner(t *testing.T) {
	g := NewBlokus()
	board, _ := g.InitialBoard()
	moves := g.EnumerateMoves(board, 1)
	require.NotEmpty(t, moves)
	for _, m := range moves {
		shapeIdx, row, col := g.decodeMove(m)
		shape := g.shapes[shapeIdx]
		covers := false
		for _, off := range shape {
			if row+off[0] == 0 && col+off[1] == 0 {
				covers = true
			}
		}
		assert.True(t, covers, "every legal first move for player 1 must cover the (0,0) home corner")
	}
}

func TestBlokusSecondMoveRequiresCornerTouch(t *testing.T) {
	g := NewBlokus()
	board, _ := g.InitialBoard()
	moves := g.EnumerateMoves(board, 1)
	require.NotEmpty(t, moves)
	g.ApplyMove(board, 1, moves[0])

	moves2 := g.EnumerateMoves(board, 1)
	for _, m := range moves2 {
		shapeIdx, row, col := g.decodeMove(m)
		shape := g.shapes[shapeIdx]
		touchesCorner := false
		for _, off := range shape {
			r, c := row+off[0], col+off[1]
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nr, nc := r+d[0], c+d[1]
				if g.inBounds(nr, nc) {
					assert.NotEqualValues(t, 1, board[g.idx(nr, nc)], "no cell may be edge-adjacent to the player's own colour")
				}
			}
			for _, d := range [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
				nr, nc := r+d[0], c+d[1]
				if g.inBounds(nr, nc) && board[g.idx(nr, nc)] == 1 {
					touchesCorner = true
				}
			}
		}
		assert.True(t, touchesCorner, "every later move must touch the player's own colour at a corner")
	}
}
