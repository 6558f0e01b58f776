package plasmonet

// Error message formats shared across the package. Configuration and
// input-validation errors use these as fmt.Errorf formats wrapped with
// github.com/pkg/errors at the call site; numerical degeneracies are never
// represented as errors (see likelihood.go).
const (
	// UnknownLocusError is returned when an infection event or allele
	// frequency entry references a locus not present in the loci table.
	UnknownLocusError = "unknown locus %q referenced by %s"

	// GenotypeLengthMismatchError is returned when an observed genotype
	// string's length does not match the locus's declared allele count.
	GenotypeLengthMismatchError = "genotype length mismatch at locus %q: got %d, want %d"

	// DisallowedParentError is returned when a disallowed-parent entry
	// references an unknown infection event id.
	DisallowedParentError = "disallowed parent %q referenced by %q is not a known infection event"

	// DoubleSaveError / MissingRestoreError name the programming-error
	// conditions spec.md calls out as assertion-guarded in debug builds.
	DoubleSaveError     = "state %s already saved for node %d"
	MissingRestoreError = "no saved state %s for node %d"

	// NoEligibleKernelError is returned when a scheduler step has no
	// kernel eligible for the current iteration.
	NoEligibleKernelError = "no eligible kernel at iteration %d"

	InvalidFloatParameterError  = "invalid %s %f, %s"
	InvalidIntParameterError    = "invalid %s %d, %s"
	InvalidStringParameterError = "invalid %s %s, %s"
)

// Test-comparison message formats, kept alongside the production error
// formats the same way the teacher's errors.go mixes both.
const (
	UnequalFloatParameterError = "expected %s %f, instead got %f"
	UnequalIntParameterError   = "expected %s %d, instead got %d"
	UnexpectedErrorWhileError  = "encountered error while %s: %s"
	ExpectedErrorWhileError    = "expected an error while %s, instead got none"
)
