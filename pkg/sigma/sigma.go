// Package sigma implements the three-algorithm protocol proving knowledge of
// x with X = x*G on BN254 G1, without scalar multiplication inside the
// circuit. The scalar side of the Schnorr relation s = k + c*x is proved by a
// Groth16 SNARK bound to a Poseidon2 digest of the commitment point R; the
// group side s*G == R + c*X is checked natively by the verifier. The two
// halves meet only through the digest and the public scalars.
package sigma

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog/log"

	"sigmabus/pkg/circuit"
	"sigmabus/pkg/group"
	"sigmabus/pkg/transcript"
)

// ScalarFromBig converts a caller-supplied integer into a secret scalar,
// rejecting values outside [0, r).
func ScalarFromBig(v *big.Int) (fr.Element, error) {
	var x fr.Element
	if v == nil || v.Sign() < 0 || v.Cmp(fr.Modulus()) >= 0 {
		return x, ErrInvalidWitness
	}
	x.SetBigInt(v)
	return x, nil
}

// ScalarFromBytes converts a canonical big-endian encoding into a secret
// scalar, rejecting non-canonical values.
func ScalarFromBytes(b []byte) (fr.Element, error) {
	var x fr.Element
	if len(b) != fr.Bytes {
		return x, ErrInvalidWitness
	}
	if err := x.SetBytesCanonical(b); err != nil {
		return x, errors.Join(ErrInvalidWitness, err)
	}
	return x, nil
}

// sampleScalar draws a uniform Fr element from rng. The blinding scalar k
// must never repeat across proofs under distinct challenges, or the secret
// leaks; callers therefore inject rng explicitly instead of relying on
// ambient randomness.
func sampleScalar(rng io.Reader) (fr.Element, error) {
	var k fr.Element
	b, err := rand.Int(rng, fr.Modulus())
	if err != nil {
		return k, fmt.Errorf("sigma: sample blinding scalar: %w", err)
	}
	k.SetBigInt(b)
	return k, nil
}

func toBig(e *fr.Element) *big.Int {
	var b big.Int
	e.BigInt(&b)
	return &b
}

// Prove produces a proof of knowledge of x for X = x*G. It mutates tr (one
// point absorbed, one challenge squeezed) and draws the blinding scalar from
// rng. The transcript must be fresh and bound to the same hash configuration
// as params.
func Prove(rng io.Reader, params *Params, tr *transcript.Transcript, x fr.Element) (*Proof, error) {
	if rng == nil {
		return nil, errors.New("sigma: nil randomness source")
	}
	if tr.ConfigFingerprint() != params.fingerprint {
		return nil, ErrConfigMismatch
	}
	start := time.Now()

	k, err := sampleScalar(rng)
	if err != nil {
		return nil, err
	}

	R := group.ScalarBaseMul(&k)
	tr.AbsorbPoint(&R)
	c := tr.Challenge()

	digestR := group.Digest(params.cfg, &R)

	// s = k + c*x
	var s fr.Element
	s.Mul(&c, &x).Add(&s, &k)

	coords := group.Decompose(&R)
	assignment := &circuit.Relation{
		DigestR: toBig(&digestR),
		C:       toBig(&c),
		S:       toBig(&s),
		X:       toBig(&x),
		K:       toBig(&k),
		RxQ:     toBig(&coords[0]),
		RxM:     toBig(&coords[1]),
		RyQ:     toBig(&coords[2]),
		RyM:     toBig(&coords[3]),
		Hash:    params.cfg,
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("sigma: build witness: %w", err)
	}

	inner, err := groth16.Prove(params.ccs, params.pk, w)
	if err != nil {
		return nil, fmt.Errorf("sigma: inner prove: %w", err)
	}

	log.Debug().Dur("took", time.Since(start)).Msg("proof generated")

	return &Proof{
		DigestR: digestR,
		C:       c,
		S:       s,
		R:       R,
		inner:   inner,
	}, nil
}

// Verify checks a proof against the public point X. The transcript must
// replicate the prover's: fresh, same configuration, same label. All four
// checks must pass; each failure is reported with its own sentinel.
func Verify(params *Params, tr *transcript.Transcript, proof *Proof, X *bn254.G1Affine) error {
	if tr.ConfigFingerprint() != params.fingerprint {
		return ErrConfigMismatch
	}
	if !proof.R.IsInSubGroup() {
		return errors.Join(ErrGroupEquationMismatch, errors.New("commitment point not in the prime-order subgroup"))
	}

	tr.AbsorbPoint(&proof.R)
	c := tr.Challenge()
	if !c.Equal(&proof.C) {
		return ErrChallengeMismatch
	}

	digestR := group.Digest(params.cfg, &proof.R)
	if !digestR.Equal(&proof.DigestR) {
		return ErrDigestMismatch
	}

	public := &circuit.Relation{
		DigestR: toBig(&proof.DigestR),
		C:       toBig(&proof.C),
		S:       toBig(&proof.S),
		Hash:    params.cfg,
	}
	w, err := frontend.NewWitness(public, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("sigma: build public witness: %w", err)
	}
	if proof.inner == nil {
		return errors.Join(ErrInnerProofInvalid, errors.New("missing inner proof"))
	}
	if err := groth16.Verify(proof.inner, params.vk, w); err != nil {
		return errors.Join(ErrInnerProofInvalid, err)
	}

	// s*G == R + c*X, native group arithmetic only.
	lhs := group.ScalarBaseMul(&proof.S)
	cX := group.ScalarMul(X, &c)
	rhs := group.Add(&proof.R, &cX)
	if !lhs.Equal(&rhs) {
		return ErrGroupEquationMismatch
	}

	return nil
}
