package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-peer/internal/apperror"
)

const (
	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""

	BoardSize = 9
)

// WinCombos - every row, column and diagonal of the board.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Board [BoardSize]string

// Round - one playthrough from an empty board to a win or a draw.
type Round struct {
	Board  Board
	Turn   string
	Moves  int
	Over   bool
	Winner string
}

func NewRound() Round {
	return Round{Turn: PlayerX}
}

// CheckWinner - returns the winning mark, PlayerTie when all moves are played without a winner, or "" otherwise.
func CheckWinner(board Board, moves int) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	if moves >= BoardSize {
		return PlayerTie
	}

	return ""
}

// Place - puts mark into cell for the player whose turn it is, flips the turn and updates the round result.
func (that *Round) Place(mark string, cell int) error {
	if that.Over {
		return apperror.ErrRoundOver
	}

	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = mark
	that.Turn = Opponent(mark)
	that.Moves++

	that.updateResult()

	return nil
}

func (that *Round) updateResult() {
	switch winner := CheckWinner(that.Board, that.Moves); winner {
	case PlayerX, PlayerO, PlayerTie:
		that.Winner = winner
		that.Over = true
	default:
		// round continues
	}
}

func (that *Round) IsDraw() bool {
	return that.Over && that.Winner == PlayerTie
}

func Opponent(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func IsPiece(mark string) bool {
	return mark == PlayerX || mark == PlayerO
}

// String renders the board as three rows, empty cells shown as '_'.
func (that Board) String() string {
	var sb strings.Builder

	for i, cell := range that {
		if cell == EmptyCell {
			cell = "_"
		}
		sb.WriteString(cell)

		switch {
		case i == BoardSize-1:
		case i%3 == 2:
			sb.WriteByte('\n')
		default:
			sb.WriteByte(' ')
		}
	}

	return sb.String()
}
