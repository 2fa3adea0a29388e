package game

import (
	"fmt"
	"strings"
)

// NimMove removes Take objects from pile Pile.
type NimMove struct {
	Pile int `json:"pile"`
	Take int `json:"take"`
}

func (m NimMove) String() string {
	return fmt.Sprintf("take %d from pile %d", m.Take, m.Pile)
}

// Nim is normal-play Nim: the player who takes the last object wins, so the
// player to move at an empty board has lost.
type Nim struct {
	piles  []int
	player Player
}

func NewNim(piles ...int) *Nim {
	copied := make([]int, len(piles))
	for i, size := range piles {
		if size < 0 {
			panic(fmt.Sprintf("pile %d has negative size %d", i, size))
		}
		copied[i] = size
	}
	return &Nim{piles: copied, player: First}
}

// NimFrom builds a position with the given side to move.
func NimFrom(piles []int, player Player) (*Nim, error) {
	if player != First && player != Second {
		return nil, fmt.Errorf("unknown player %d", player)
	}
	for i, size := range piles {
		if size < 0 {
			return nil, fmt.Errorf("pile %d has negative size %d", i, size)
		}
	}
	n := NewNim(piles...)
	n.player = player
	return n, nil
}

func (n *Nim) Piles() []int {
	return append([]int(nil), n.piles...)
}

func (n *Nim) Player() Player {
	return n.player
}

func (n *Nim) Actions() []NimMove {
	var moves []NimMove
	for pile, size := range n.piles {
		for take := 1; take <= size; take++ {
			moves = append(moves, NimMove{Pile: pile, Take: take})
		}
	}
	return moves
}

func (n *Nim) Result(move NimMove) State[NimMove] {
	if move.Pile < 0 || move.Pile >= len(n.piles) || move.Take < 1 || move.Take > n.piles[move.Pile] {
		panic(fmt.Sprintf("illegal nim move: %v on %v", move, n.piles))
	}
	next := &Nim{piles: n.Piles(), player: n.player.Opponent()}
	next.piles[move.Pile] -= move.Take
	return next
}

func (n *Nim) Utility(player Player) float64 {
	for _, size := range n.piles {
		if size > 0 {
			return 0
		}
	}
	// The previous player took the last object
	if player == n.player {
		return Loss
	}
	return Win
}

// NimSum is the xor of all pile sizes; the mover is losing under perfect play iff it is 0.
func (n *Nim) NimSum() int {
	sum := 0
	for _, size := range n.piles {
		sum ^= size
	}
	return sum
}

func (n *Nim) String() string {
	sizes := make([]string, len(n.piles))
	for i, size := range n.piles {
		sizes[i] = fmt.Sprintf("%d", size)
	}
	return fmt.Sprintf("piles [%s], %s to move", strings.Join(sizes, " "), n.player)
}
