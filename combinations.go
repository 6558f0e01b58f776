package plasmonet

// CombinationIndices generates every r-element subset of {0, ..., n-1} in
// lexicographic order without materializing the full power set, the same
// incremental-successor algorithm as the stackoverflow-derived generator
// the original project used for parent-set enumeration.
type CombinationIndices struct {
	n, r      int
	curr      []int
	Completed bool
	Generated int
	Total     int
}

// NewCombinationIndices creates a generator over n-choose-r index subsets.
// It starts positioned at the first combination {0, 1, ..., r-1}.
func NewCombinationIndices(n, r int) *CombinationIndices {
	c := &CombinationIndices{}
	c.Reset(n, r)
	return c
}

// Reset repositions the generator at n-choose-r, discarding prior progress.
func (c *CombinationIndices) Reset(n, r int) {
	c.n, c.r = n, r
	c.Completed = n < 1 || r > n || r == 0
	c.Generated = 1
	c.curr = make([]int, r)
	for i := range c.curr {
		c.curr[i] = i
	}
	c.Total = numCombinations(n, r)
}

// Curr returns the current combination as an index slice. The caller must
// not mutate the returned slice.
func (c *CombinationIndices) Curr() []int { return c.curr }

// Next advances to the next combination in lexicographic order, setting
// Completed once the sequence is exhausted.
func (c *CombinationIndices) Next() {
	c.Completed = true
	for i := c.r - 1; i >= 0; i-- {
		if c.curr[i] < c.n-c.r+i {
			j := c.curr[i] + 1
			for ; i < c.r; i++ {
				c.curr[i] = j
				j++
			}
			c.Completed = false
			c.Generated++
			return
		}
	}
}

func numCombinations(n, r int) int {
	if r > n {
		return 0
	}
	if r*2 > n {
		r = n - r
	}
	if r == 0 {
		return 1
	}
	total := n
	for i := 2; i <= r; i++ {
		total *= (n - i + 1)
		total /= i
	}
	return total
}

// ProbAnyMissing computes the probability that at least one of a set of
// labeled events never occurs across numEvents independent trials, via
// inclusion-exclusion over every non-empty subset of eventProbs. Used by
// the node-transmission term to penalize parent-set candidates that would
// require an observed allele to go unsampled across every descendant.
func ProbAnyMissing(eventProbs []float64, numEvents int) float64 {
	total := len(eventProbs)
	if numEvents < total {
		return 1.0
	}

	prob := 0.0
	for i := 1; i <= total; i++ {
		c := NewCombinationIndices(total, i)
		sign := 1.0
		if (i-1)%2 != 0 {
			sign = -1.0
		}
		for !c.Completed {
			eventCombo := 0.0
			for _, j := range c.Curr() {
				eventCombo += eventProbs[j]
			}
			prob += pow(1-eventCombo, numEvents) * sign
			c.Next()
		}
	}
	return prob
}

// pow computes x**n for a non-negative integer exponent, avoiding a
// dependency on math.Pow's float exponent path for the common small-integer
// case ProbAnyMissing always uses.
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
