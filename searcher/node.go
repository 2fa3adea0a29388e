package searcher

import (
	"duel/game"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

const noParent = -1

// node is one visited position. Children and parent are indices into the
// owning tree's arena. The legal actions of state are always split between
// the incoming actions of children and untried.
type node[A comparable] struct {
	state    game.State[A]
	player   game.Player // Mover at state
	action   A           // Incoming action, zero value at the root
	parent   int
	children []int
	untried  []A
	visits   int
	value    float64 // Sum of rewards, from the perspective of the parent's mover
	score    float64 // Utility of state for player, nonzero iff decided
}

func newNode[A comparable](state game.State[A], action A, parent int) node[A] {
	player := state.Player()
	score := state.Utility(player)

	var untried []A
	if score == 0 {
		untried = slices.Clone(state.Actions())
	}

	return node[A]{
		state:   state,
		player:  player,
		action:  action,
		parent:  parent,
		untried: untried,
		score:   score,
	}
}

func (n *node[A]) isTerminal() bool {
	return n.score != 0 || (len(n.untried) == 0 && len(n.children) == 0)
}

func (n *node[A]) isFullyExpanded() bool {
	return len(n.untried) == 0
}

// tree owns every node of one search call. The root is nodes[0].
type tree[A comparable] struct {
	nodes []node[A]
	rng   *rand.Rand
	cost  float64 // Exploration cost during descent
}

func newTree[A comparable](state game.State[A], rng *rand.Rand, cost float64) *tree[A] {
	var zero A
	return &tree[A]{
		nodes: []node[A]{newNode(state, zero, noParent)},
		rng:   rng,
		cost:  cost,
	}
}

// addChild pops a random untried action of node i and appends the node it
// leads to. The arena may grow, so callers must not hold node pointers
// across this call.
func (t *tree[A]) addChild(i int) int {
	parent := &t.nodes[i]
	if len(parent.untried) == 0 {
		panic("node has no untried actions")
	}

	index := t.rng.Intn(len(parent.untried))
	action := parent.untried[index]
	parent.untried = slices.Delete(parent.untried, index, index+1)
	child := newNode(parent.state.Result(action), action, i)

	t.nodes = append(t.nodes, child)
	ith := len(t.nodes) - 1
	t.nodes[i].children = append(t.nodes[i].children, ith)
	return ith
}

// bestChild returns the child of node i maximizing
// Q/N + cost*sqrt(2*ln(N_parent)/N). Ties keep the earliest child.
func (t *tree[A]) bestChild(i int, cost float64) int {
	parent := &t.nodes[i]
	if len(parent.children) == 0 {
		panic("node has no children")
	}
	if parent.visits == 0 {
		panic("node has children but no visits")
	}

	policy := newUCT(cost, float64(parent.visits))

	bestIndex := -1
	maxScore := 0.0
	for _, c := range parent.children {
		child := &t.nodes[c]
		score := policy.evaluate(child.value, float64(child.visits))
		if bestIndex == -1 || score > maxScore {
			maxScore = score
			bestIndex = c
		}
	}
	return bestIndex
}

func (t *tree[A]) backupNode(i int, delta float64) int {
	n := &t.nodes[i]
	n.visits++
	n.value += delta
	return n.parent
}

func (t *tree[A]) root() *node[A] {
	return &t.nodes[0]
}
