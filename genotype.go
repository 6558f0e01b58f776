package plasmonet

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxAlleles is the largest allele count a single Genotype can represent.
// Alleles pack into a uint64 bitset so every set operation (union,
// intersection, symmetric difference, complement) and every comparison
// (true/false positive/negative counts) runs as one machine word op rather
// than iterating a bool slice.
const MaxAlleles = 64

// Genotype is a fixed-width bitset of up to MaxAlleles alleles. Allele i is
// the bit at position i, read left to right as in the observed genotype
// string ("1010" has allele 0 and allele 2 present).
type Genotype struct {
	bits  uint64
	total int
}

// NewGenotype creates a genotype with total alleles, all absent.
func NewGenotype(total int) Genotype {
	if total < 0 || total > MaxAlleles {
		panic(fmt.Sprintf(InvalidIntParameterError, "genotype allele count", total, "must be between 0 and 64"))
	}
	return Genotype{total: total}
}

// ParseGenotype builds a genotype from a string of '0'/'1' characters, one
// per allele, left to right.
func ParseGenotype(bitstr string) (Genotype, error) {
	if len(bitstr) > MaxAlleles {
		return Genotype{}, fmt.Errorf(GenotypeLengthMismatchError, "(parsed)", len(bitstr), MaxAlleles)
	}
	g := NewGenotype(len(bitstr))
	for i, c := range bitstr {
		if c == '1' {
			g.Set(i, true)
		} else if c != '0' {
			return Genotype{}, fmt.Errorf("invalid allele character %q at position %d, want '0' or '1'", c, i)
		}
	}
	return g, nil
}

// TotalAlleles returns how many alleles this genotype tracks.
func (g Genotype) TotalAlleles() int { return g.total }

// Allele reports whether allele pos is present.
func (g Genotype) Allele(pos int) bool {
	return g.bits&(1<<uint(g.total-1-pos)) != 0
}

// Set sets allele pos to val.
func (g *Genotype) Set(pos int, val bool) {
	shift := uint(g.total - 1 - pos)
	if val {
		g.bits |= 1 << shift
	} else {
		g.bits &^= 1 << shift
	}
}

// Flip toggles allele pos.
func (g *Genotype) Flip(pos int) {
	g.bits ^= 1 << uint(g.total-1-pos)
}

func (g Genotype) mask() uint64 {
	if g.total == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(g.total)) - 1
}

// TotalPositiveCount returns the number of present alleles.
func (g Genotype) TotalPositiveCount() int { return bits.OnesCount64(g.bits) }

// TotalNegativeCount returns the number of absent alleles.
func (g Genotype) TotalNegativeCount() int { return g.total - g.TotalPositiveCount() }

// TruePositiveCount returns the number of alleles present in both parent
// and child, used by the observation-process likelihood to score how well
// a candidate transmission chain explains a shared allele.
func TruePositiveCount(parent, child Genotype) int {
	return bits.OnesCount64(child.bits & parent.bits)
}

// TrueNegativeCount returns the number of alleles absent from both parent
// and child.
func TrueNegativeCount(parent, child Genotype) int {
	return bits.OnesCount64(^child.bits &^ parent.bits & child.mask())
}

// FalsePositiveCount returns the number of alleles present in the child but
// absent from the parent.
func FalsePositiveCount(parent, child Genotype) int {
	return bits.OnesCount64(child.bits &^ parent.bits)
}

// FalseNegativeCount returns the number of alleles present in the parent
// but absent from the child.
func FalseNegativeCount(parent, child Genotype) int {
	return bits.OnesCount64(^child.bits & parent.bits & child.mask())
}

// Shared returns the intersection of lhs and rhs: alleles present in both.
func Shared(lhs, rhs Genotype) Genotype {
	return Genotype{bits: lhs.bits & rhs.bits, total: lhs.total}
}

// Any returns the union of lhs and rhs: alleles present in either.
func Any(lhs, rhs Genotype) Genotype {
	return Genotype{bits: lhs.bits | rhs.bits, total: lhs.total}
}

// Diff returns the symmetric difference of lhs and rhs: alleles present in
// exactly one of the two.
func Diff(lhs, rhs Genotype) Genotype {
	return Genotype{bits: lhs.bits ^ rhs.bits, total: lhs.total}
}

// Invert returns the complement of g within its own allele count.
func Invert(g Genotype) Genotype {
	return Genotype{bits: ^g.bits & g.mask(), total: g.total}
}

// MutationMask returns the alleles present in g (the child) but not in
// parent: the set of alleles that must have arisen between parent and
// child under a no-recombination assumption.
func MutationMask(g, parent Genotype) Genotype {
	return Genotype{bits: ^parent.bits & g.bits & g.mask(), total: g.total}
}

// String renders the genotype as a '0'/'1' string, left to right.
func (g Genotype) String() string {
	var sb strings.Builder
	sb.Grow(g.total)
	for i := 0; i < g.total; i++ {
		if g.Allele(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Equal reports whether two genotypes have the same allele count and bits.
func (g Genotype) Equal(other Genotype) bool {
	return g.total == other.total && g.bits == other.bits
}
