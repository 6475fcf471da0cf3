package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-peer/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWinner(t *testing.T) {
	t.Run("Every winning triple is detected", func(t *testing.T) {
		for _, combo := range WinCombos {
			for _, mark := range []string{PlayerX, PlayerO} {
				// Given: a board where only one triple is filled with the same mark
				var board Board
				for _, cell := range combo {
					board[cell] = mark
				}

				// When: checking the winner
				result := CheckWinner(board, 5)

				// Then: the mark is reported as the winner
				assert.Equal(t, mark, result, "combo %v", combo)
			}
		}
	})

	t.Run("Winner is reported regardless of other cells", func(t *testing.T) {
		// Given: X holds the top row and the rest of the board is full
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerO, PlayerO, PlayerX,
			PlayerO, PlayerX, PlayerO,
		}

		// When: checking the winner after nine moves
		result := CheckWinner(board, 9)

		// Then: X wins, not a draw
		assert.Equal(t, PlayerX, result)
	})

	t.Run("Diagonal win is found after the first triple misses", func(t *testing.T) {
		// Given: O holds the main diagonal
		board := Board{
			PlayerO, PlayerX, EmptyCell,
			PlayerX, PlayerO, EmptyCell,
			PlayerX, EmptyCell, PlayerO,
		}

		// When: checking the winner
		result := CheckWinner(board, 6)

		// Then: O wins
		assert.Equal(t, PlayerO, result)
	})

	t.Run("Returns PlayerTie when nine moves are played without a winner", func(t *testing.T) {
		// Given: a full board without a winning triple
		board := Board{
			PlayerX, PlayerO, PlayerX,
			PlayerO, PlayerX, PlayerO,
			PlayerO, PlayerX, PlayerO,
		}

		// When: checking the winner
		result := CheckWinner(board, 9)

		// Then: the round is a draw
		assert.Equal(t, PlayerTie, result)
	})

	t.Run("Returns EmptyCell while the round is undecided", func(t *testing.T) {
		// Given: a partially filled board
		board := Board{
			PlayerX, PlayerO, EmptyCell,
			EmptyCell, PlayerX, EmptyCell,
			EmptyCell, EmptyCell, PlayerO,
		}

		// When: checking the winner
		result := CheckWinner(board, 4)

		// Then: nothing is decided yet
		assert.Equal(t, EmptyCell, result)
	})
}

func TestRound_Place(t *testing.T) {
	t.Run("Successful placement flips the turn", func(t *testing.T) {
		// Given: a new round
		round := NewRound()

		// When: X plays the center
		err := round.Place(PlayerX, 4)
		require.NoError(t, err)

		// Then: the mark is placed and O is to move
		expected := Round{
			Board: Board{"", "", "", "", PlayerX, "", "", "", ""},
			Turn:  PlayerO,
			Moves: 1,
		}
		require.Equal(t, expected, round)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: X has taken cell 0
		round := NewRound()
		require.NoError(t, round.Place(PlayerX, 0))
		before := round

		// When: O plays the same cell
		err := round.Place(PlayerO, 0)

		// Then: ErrCellOccupied is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.Equal(t, before, round)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: a new round where X is to move
		round := NewRound()

		// When: O tries to move
		err := round.Place(PlayerO, 1)

		// Then: ErrNotYourTurn is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		require.Equal(t, NewRound(), round)
	})

	t.Run("Error on invalid cell index", func(t *testing.T) {
		round := NewRound()

		assert.ErrorIs(t, round.Place(PlayerX, 9), apperror.ErrInvalidCell)
		assert.ErrorIs(t, round.Place(PlayerX, -1), apperror.ErrInvalidCell)
	})

	t.Run("Winning move finishes the round", func(t *testing.T) {
		// Given: X has two cells of the top row
		round := NewRound()
		for _, move := range []struct {
			mark string
			cell int
		}{{PlayerX, 0}, {PlayerO, 3}, {PlayerX, 1}, {PlayerO, 4}} {
			require.NoError(t, round.Place(move.mark, move.cell))
		}

		// When: X completes the row
		require.NoError(t, round.Place(PlayerX, 2))

		// Then: the round is over with X as winner
		assert.True(t, round.Over)
		assert.Equal(t, PlayerX, round.Winner)

		// And: no more moves are accepted
		assert.ErrorIs(t, round.Place(PlayerO, 5), apperror.ErrRoundOver)
	})

	t.Run("Ninth move without a winner is a draw", func(t *testing.T) {
		// Given: a sequence of moves that fills the board without a line
		round := NewRound()
		cells := []int{0, 1, 2, 4, 3, 5, 7, 6, 8}
		mark := PlayerX
		for _, cell := range cells {
			require.NoError(t, round.Place(mark, cell))
			mark = Opponent(mark)
		}

		// Then: the round is a draw
		assert.True(t, round.IsDraw())
		assert.Equal(t, 9, round.Moves)
	})
}

func TestBoard_String(t *testing.T) {
	board := Board{PlayerX, "", "", "", PlayerO, "", "", "", PlayerX}

	assert.Equal(t, "X _ _\n_ O _\n_ _ X", board.String())
}

func TestScoreboard_Record(t *testing.T) {
	var scores Scoreboard

	scores.Record(PlayerX)
	scores.Record(PlayerO)
	scores.Record(PlayerX)
	scores.Record(PlayerTie)

	assert.Equal(t, Scoreboard{X: 2, O: 1}, scores)
}
