package game

import (
	"fmt"
	"strings"
)

// Cell indexes a tic-tac-toe square, row-major from the top left.
type Cell int

const boardSize = 9

var lines = [8][3]Cell{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

type mark int8

const (
	empty mark = iota
	cross
	nought
)

func markOf(p Player) mark {
	if p == First {
		return cross
	}
	return nought
}

type TicTacToe struct {
	board  [boardSize]mark
	player Player
}

func NewTicTacToe() *TicTacToe {
	return &TicTacToe{player: First}
}

// TicTacToeFrom builds a position from a 9 character layout of 'X', 'O' and
// '.', with X moving first.
func TicTacToeFrom(layout string) (*TicTacToe, error) {
	layout = strings.ReplaceAll(layout, "\n", "")
	if len(layout) != boardSize {
		return nil, fmt.Errorf("layout has %d cells, expected %d", len(layout), boardSize)
	}

	t := &TicTacToe{}
	crosses, noughts := 0, 0
	for i, c := range layout {
		switch c {
		case 'X', 'x':
			t.board[i] = cross
			crosses++
		case 'O', 'o':
			t.board[i] = nought
			noughts++
		case '.':
		default:
			return nil, fmt.Errorf("unexpected cell %q at %d", c, i)
		}
	}

	switch crosses - noughts {
	case 0:
		t.player = First
	case 1:
		t.player = Second
	default:
		return nil, fmt.Errorf("layout has %d crosses and %d noughts", crosses, noughts)
	}

	// The winner must have made the last move
	crossWins, noughtWins := t.completes(cross), t.completes(nought)
	switch {
	case crossWins && noughtWins:
		return nil, fmt.Errorf("layout %q has two winners", layout)
	case crossWins && t.player != Second:
		return nil, fmt.Errorf("layout %q: X won but O has moved since", layout)
	case noughtWins && t.player != First:
		return nil, fmt.Errorf("layout %q: O won but X has moved since", layout)
	}
	return t, nil
}

// completes reports whether m fills any line.
func (t *TicTacToe) completes(m mark) bool {
	for _, line := range lines {
		if t.board[line[0]] == m && t.board[line[1]] == m && t.board[line[2]] == m {
			return true
		}
	}
	return false
}

func (t *TicTacToe) Player() Player {
	return t.player
}

func (t *TicTacToe) Actions() []Cell {
	if t.winner() != empty {
		return nil
	}
	var cells []Cell
	for i, m := range t.board {
		if m == empty {
			cells = append(cells, Cell(i))
		}
	}
	return cells
}

func (t *TicTacToe) Result(cell Cell) State[Cell] {
	if cell < 0 || cell >= boardSize || t.board[cell] != empty {
		panic(fmt.Sprintf("illegal tic-tac-toe move: cell %d", cell))
	}
	next := &TicTacToe{board: t.board, player: t.player.Opponent()}
	next.board[cell] = markOf(t.player)
	return next
}

func (t *TicTacToe) Utility(player Player) float64 {
	switch t.winner() {
	case empty:
		return 0
	case markOf(player):
		return Win
	default:
		return Loss
	}
}

func (t *TicTacToe) winner() mark {
	for _, line := range lines {
		m := t.board[line[0]]
		if m != empty && m == t.board[line[1]] && m == t.board[line[2]] {
			return m
		}
	}
	return empty
}

// Layout is the inverse of TicTacToeFrom.
func (t *TicTacToe) Layout() string {
	return strings.ReplaceAll(t.String(), "\n", "")
}

func (t *TicTacToe) String() string {
	var b strings.Builder
	for i, m := range t.board {
		switch m {
		case cross:
			b.WriteByte('X')
		case nought:
			b.WriteByte('O')
		default:
			b.WriteByte('.')
		}
		if i%3 == 2 && i != boardSize-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
