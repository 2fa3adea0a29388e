package searcher

import "math"

type uct struct {
	numerator float64
}

// newUCT prepares the exploration term for the children of a node visited N
// times: c*sqrt(2*ln(N)/n) == sqrt(2*c^2*ln(N)/n).
func newUCT(cost float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: 2 * cost * cost * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCT = q/n + c*sqrt(2*ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}
