package sigma

import "errors"

// Every rejection class is a distinguishable sentinel so callers can tell a
// malformed proof apart from a wrong statement. Failures propagated from the
// inner proof system are joined with the matching sentinel, never swallowed.
var (
	// ErrSetup reports that inner proof system key generation failed.
	ErrSetup = errors.New("sigma: inner proof system setup failed")

	// ErrInvalidWitness reports a secret scalar outside the valid Fr range,
	// rejected before any cryptographic work.
	ErrInvalidWitness = errors.New("sigma: witness scalar is not a valid field element")

	// ErrConfigMismatch reports that the transcript's Poseidon configuration
	// does not match the one the parameters were generated with.
	ErrConfigMismatch = errors.New("sigma: hash configuration fingerprint mismatch")

	// ErrChallengeMismatch reports that the recomputed Fiat-Shamir challenge
	// differs from the one carried by the proof.
	ErrChallengeMismatch = errors.New("sigma: transcript challenge mismatch")

	// ErrDigestMismatch reports that the natively recomputed digest of R
	// differs from the public digest carried by the proof.
	ErrDigestMismatch = errors.New("sigma: commitment point digest mismatch")

	// ErrInnerProofInvalid reports that the inner SNARK verification rejected.
	ErrInnerProofInvalid = errors.New("sigma: inner proof verification failed")

	// ErrGroupEquationMismatch reports that the native group check
	// s*G == R + c*X does not hold.
	ErrGroupEquationMismatch = errors.New("sigma: group equation s*G == R + c*X does not hold")
)
