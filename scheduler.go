package plasmonet

import (
	"fmt"
	"math/rand"
)

// registeredKernel bundles a proposal kernel with its scheduling metadata:
// the weight it is drawn with, the step-index window it is eligible in,
// and (for kernels exposing one) the adaptive-variance controller its
// acceptance rate feeds back into.
type registeredKernel struct {
	kernel      Kernel
	weight      float64
	updateStart int
	updateEnd   int // updateEnd <= 0 means no upper bound
	variance    *AdaptiveVariance
}

func (r registeredKernel) eligible(step int) bool {
	if step < r.updateStart {
		return false
	}
	if r.updateEnd > 0 && step > r.updateEnd {
		return false
	}
	return true
}

// Scheduler holds the registered proposal kernels for one chain and
// advances them by weighted random selection among the kernels eligible at
// the current step index. Selection uses a cumulative-weight binary
// search; a single chain's scheduler is never touched from more than one
// goroutine at a time.
type Scheduler struct {
	kernels        []registeredKernel
	samplesPerStep int
	step           int
	rng            *rand.Rand
}

// NewScheduler creates a scheduler that performs samplesPerStep kernel
// invocations per call to Step, drawing randomness from rng.
func NewScheduler(rng *rand.Rand, samplesPerStep int) *Scheduler {
	return &Scheduler{samplesPerStep: samplesPerStep, rng: rng}
}

// RegisterKernel adds k to the scheduler's pool with the given selection
// weight, eligibility window (updateEnd <= 0 means unbounded), and
// optional adaptive-variance controller (nil for kernels, like BitFlip,
// that carry no tunable step size).
func (s *Scheduler) RegisterKernel(k Kernel, weight float64, updateStart, updateEnd int, variance *AdaptiveVariance) {
	s.kernels = append(s.kernels, registeredKernel{
		kernel:      k,
		weight:      weight,
		updateStart: updateStart,
		updateEnd:   updateEnd,
		variance:    variance,
	})
}

// Step performs one scheduling step: samplesPerStep kernel invocations,
// each choosing among the kernels eligible at the current step index with
// probability proportional to weight. It returns an error if no kernel is
// eligible, since that would stall the chain silently otherwise.
func (s *Scheduler) Step() error {
	for i := 0; i < s.samplesPerStep; i++ {
		k, err := s.selectKernel()
		if err != nil {
			return err
		}
		k.Step(s.rng)
	}
	s.step++
	return nil
}

// selectKernel draws one eligible kernel by cumulative-weight binary
// search over the eligible subset's prefix sums.
func (s *Scheduler) selectKernel() (Kernel, error) {
	var (
		eligible []registeredKernel
		prefix   []float64
		total    float64
	)
	for _, rk := range s.kernels {
		if !rk.eligible(s.step) {
			continue
		}
		total += rk.weight
		eligible = append(eligible, rk)
		prefix = append(prefix, total)
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf(NoEligibleKernelError, s.step)
	}

	target := s.rng.Float64() * total
	lo, hi := 0, len(prefix)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if prefix[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return eligible[lo].kernel, nil
}

// StepIndex returns the number of completed Step calls, the index
// eligibility windows are evaluated against.
func (s *Scheduler) StepIndex() int { return s.step }
