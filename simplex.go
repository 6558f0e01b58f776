package plasmonet

// Simplex is a probability vector that always sums to 1, caching its
// min and max coordinate so samplers can reject proposals that would push
// a frequency outside (0, 1) without rescanning the whole vector.
type Simplex struct {
	coefficients []float64
	min, max     float64
}

// NewSimplex creates a uniform simplex over n elements (each 1/n).
func NewSimplex(n int) Simplex {
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1.0 / float64(n)
	}
	return Simplex{coefficients: coeffs, min: coeffs[0], max: coeffs[0]}
}

// NewSimplexFrom creates a simplex from an explicit frequency vector,
// renormalizing it to sum to 1 if it does not already.
func NewSimplexFrom(freqs []float64) Simplex {
	s := Simplex{coefficients: make([]float64, len(freqs))}
	s.Set(freqs)
	return s
}

// Set replaces every coordinate, renormalizing the whole vector if the sum
// is not already 1.
func (s *Simplex) Set(values []float64) {
	sum := 0.0
	min, max := values[0], values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	copy(s.coefficients, values)
	if sum != 1.0 {
		min, max = s.coefficients[0]/sum, s.coefficients[0]/sum
		for i, v := range s.coefficients {
			s.coefficients[i] = v / sum
			if s.coefficients[i] < min {
				min = s.coefficients[i]
			}
			if s.coefficients[i] > max {
				max = s.coefficients[i]
			}
		}
	}
	s.min, s.max = min, max
}

// SetIndex replaces coordinate idx with value, proportionally rescaling
// every other coordinate so the vector still sums to 1. This is the SALT
// proposal's single-coordinate move: the mass removed from or added to idx
// is redistributed across the remaining coordinates in proportion to their
// current share.
func (s *Simplex) SetIndex(idx int, value float64) {
	prev := s.coefficients[idx]
	s.coefficients[idx] = 0
	min, max := value, value
	for i, v := range s.coefficients {
		if i == idx {
			continue
		}
		rescaled := (v / (1 - prev)) * (1 - value)
		s.coefficients[i] = rescaled
		if rescaled < min {
			min = rescaled
		}
		if rescaled > max {
			max = rescaled
		}
	}
	s.coefficients[idx] = value
	s.min, s.max = min, max
}

// At returns the frequency at idx.
func (s Simplex) At(idx int) float64 { return s.coefficients[idx] }

// Frequencies returns the full frequency vector. The caller must not mutate
// the returned slice; copy it first.
func (s Simplex) Frequencies() []float64 { return s.coefficients }

// Len returns the number of coordinates in the simplex.
func (s Simplex) Len() int { return len(s.coefficients) }

// Min returns the smallest coordinate.
func (s Simplex) Min() float64 { return s.min }

// Max returns the largest coordinate.
func (s Simplex) Max() float64 { return s.max }

// Clone returns a deep copy, used by SALT proposal kernels to build a
// candidate without mutating the committed value before the Metropolis
// test runs.
func (s Simplex) Clone() Simplex {
	coeffs := make([]float64, len(s.coefficients))
	copy(coeffs, s.coefficients)
	return Simplex{coefficients: coeffs, min: s.min, max: s.max}
}
