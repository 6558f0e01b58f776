package plasmonet

import "math"

// LogPQ converts a vector of real-valued logits into paired stable
// log-probability and log-complementary-probability vectors, reporting both
// sigmoid(x) and 1-sigmoid(x) without the cancellation error a naive
// log(sigmoid(x)) then log(1-sigmoid(x)) computation would introduce near
// the tails. The bounded Gaussian random walk kernel
// (kernel_boundedwalk.go) computes its logit transform directly and does
// not use LogPQ.
type LogPQ struct {
	LogP []float64
	LogQ []float64
}

// NewLogPQ computes LogPQ for every element of x.
func NewLogPQ(x []float64) LogPQ {
	p := LogPQ{
		LogP: make([]float64, len(x)),
		LogQ: make([]float64, len(x)),
	}
	for i, el := range x {
		ex := math.Exp(el)
		if el < 0 {
			p.LogQ[i] = -math.Log1p(ex)
			p.LogP[i] = p.LogQ[i] + el
		} else {
			p.LogP[i] = -math.Log1p(1 / ex)
			p.LogQ[i] = p.LogP[i] - el
		}
	}
	return p
}

// LogSumExp computes log(sum(exp(x))) for a slice of log-values in a
// numerically stable way by factoring out the maximum element. Used by
// transmission.go, kernel_jointgenotypetime.go and kernel_zanella.go to
// marginalize over enumerated parent-set or neighborhood candidates
// without overflow.
func LogSumExp(x []float64) float64 {
	if len(x) == 0 {
		return math.Inf(-1)
	}
	max := x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}
	sum := 0.0
	for _, v := range x {
		sum += math.Exp(v - max)
	}
	return max + math.Log(sum)
}

// ExpNormalize exponentiates and renormalizes a slice of log-weights into a
// probability vector, used by the Zanella informed proposal to turn
// half-likelihood neighborhood scores into a categorical sampling
// distribution.
func ExpNormalize(logWeights []float64) []float64 {
	lse := LogSumExp(logWeights)
	out := make([]float64, len(logWeights))
	for i, w := range logWeights {
		out[i] = math.Exp(w - lse)
	}
	return out
}
