package kernel

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/aryanbdps9/gpumcts/games"
)

// simulateFrom estimates the outcome of the position (board, playerToMove)
// using whichever mode params.SimMode selects — a lightweight random
// rollout or a cheap heuristic evaluation — returning a canonical winner
// (or no-winner/draw) the same way a played-out rollout would, so
// backpropagation consumes one shape regardless of mode.
func simulateFrom(params *Params, board []games.Cell, playerToMove int8, rng *rand.Rand) expandResult {
	switch params.SimMode {
	case SimHeuristicEval:
		winner, ok := heuristicWinner(params, board)
		return expandResult{winner: winner, ok: ok}
	default:
		winner, ok := randomRollout(params, board, playerToMove, rng)
		return expandResult{winner: winner, ok: ok}
	}
}

// randomRollout plays uniformly random legal moves to termination or
// params.MaxRolloutPlies, whichever comes first. A rollout cut off by the
// ply limit is scored as a draw rather than inventing a partial-credit
// score.
func randomRollout(params *Params, board []games.Cell, player int8, rng *rand.Rand) (winner int8, ok bool) {
	current := player
	for ply := 0; ply < params.MaxRolloutPlies; ply++ {
		if params.Game.IsTerminal(board) {
			break
		}
		moves := params.Game.EnumerateMoves(board, current)
		if len(moves) == 0 {
			break
		}
		move := moves[rng.Intn(len(moves))]
		current = params.Game.ApplyMove(board, current, move)
	}
	if params.Game.IsTerminal(board) {
		return params.Game.Winner(board)
	}
	return -1, false
}

// heuristicWinner evaluates every player's heuristic score at board and
// declares the top scorer the winner only if it clears the second-best by
// more than HeuristicMargin; otherwise the position is scored as a draw.
// This generalizes the 2-player "score sign vs threshold" reading to
// Blokus's four players without singling out an arbitrary "opponent".
func heuristicWinner(params *Params, board []games.Cell) (winner int8, ok bool) {
	n := params.Game.NumPlayers()
	bestPlayer := int8(-1)
	best, second := math32.Inf(-1), math32.Inf(-1)

	for p := int8(1); p <= int8(n); p++ {
		score, decided := params.Game.Heuristic(board, p)
		if !decided {
			continue
		}
		if score > best {
			second = best
			best = score
			bestPlayer = p
		} else if score > second {
			second = score
		}
	}

	if bestPlayer == -1 || best-second <= params.HeuristicMargin {
		return -1, false
	}
	return bestPlayer, true
}
