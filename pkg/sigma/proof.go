package sigma

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
)

// Proof is the artifact crossing the prover-to-verifier boundary. Besides the
// opaque inner SNARK proof it carries the public scalars (digestR, c, s) and
// the commitment point R needed for the native group check.
type Proof struct {
	DigestR fr.Element
	C       fr.Element
	S       fr.Element
	R       bn254.G1Affine

	inner groth16.Proof
}

// WriteTo serializes the proof as digestR || c || s || R (compressed)
// followed by the inner proof in gnark's canonical encoding.
func (p *Proof) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, e := range []*fr.Element{&p.DigestR, &p.C, &p.S} {
		n, err := w.Write(e.Marshal())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	rb := p.R.Bytes()
	n, err := w.Write(rb[:])
	total += int64(n)
	if err != nil {
		return total, err
	}

	m, err := p.inner.WriteTo(w)
	total += m
	return total, err
}

// ReadFrom deserializes a proof previously written with WriteTo. Scalars must
// be canonical field elements and R must be a valid subgroup point; anything
// else is rejected here, before verification.
func (p *Proof) ReadFrom(r io.Reader) (int64, error) {
	var total int64

	var buf [fr.Bytes]byte
	for _, e := range []*fr.Element{&p.DigestR, &p.C, &p.S} {
		n, err := io.ReadFull(r, buf[:])
		total += int64(n)
		if err != nil {
			return total, err
		}
		if err := e.SetBytesCanonical(buf[:]); err != nil {
			return total, fmt.Errorf("sigma: non-canonical scalar in proof: %w", err)
		}
	}

	var rBuf [bn254.SizeOfG1AffineCompressed]byte
	n, err := io.ReadFull(r, rBuf[:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	if _, err := p.R.SetBytes(rBuf[:]); err != nil {
		return total, fmt.Errorf("sigma: invalid commitment point in proof: %w", err)
	}

	p.inner = groth16.NewProof(ecc.BN254)
	m, err := p.inner.ReadFrom(r)
	total += m
	return total, err
}
