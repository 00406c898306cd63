// Package transcript implements the Fiat-Shamir transcript: a deterministic
// challenge oracle over the BN254 scalar field built on the shared Poseidon2
// compression. Prover and verifier each build their own transcript and must
// absorb the identical sequence, or the derived challenges diverge and
// verification fails.
package transcript

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"sigmabus/pkg/group"
	"sigmabus/pkg/hash"
)

// Transcript is sequential, single-session state. It is not safe for
// concurrent use; every Prove or Verify call gets a fresh instance.
type Transcript struct {
	cfg      hash.Config
	state    fr.Element
	absorbed int
}

// New creates an empty transcript bound to a hash configuration.
func New(cfg hash.Config) *Transcript {
	return &Transcript{cfg: cfg}
}

// NewWithLabel creates a transcript seeded with a domain separation label,
// binding all derived challenges to session context. Prover and verifier must
// use the same label.
func NewWithLabel(cfg hash.Config, label []byte) *Transcript {
	t := New(cfg)
	if len(label) > 0 {
		var e fr.Element
		e.SetBigInt(new(big.Int).SetBytes(ethcrypto.Keccak256(label)))
		t.Absorb(e)
	}
	return t
}

// Absorbed reports how many field elements have been folded into the state.
func (t *Transcript) Absorbed() int { return t.absorbed }

// ConfigFingerprint reports the fingerprint of the bound hash configuration.
func (t *Transcript) ConfigFingerprint() [32]byte {
	return t.cfg.Fingerprint()
}

// Absorb folds scalar field elements into the sponge state.
func (t *Transcript) Absorb(vals ...fr.Element) {
	for _, v := range vals {
		t.state = t.cfg.Compress(t.state, v)
		t.absorbed++
	}
}

// AbsorbPoint absorbs a group element by its injective coordinate
// decomposition, the same encoding the point digest uses.
func (t *Transcript) AbsorbPoint(p *bn254.G1Affine) {
	d := group.Decompose(p)
	t.Absorb(d[:]...)
}

// Challenge squeezes one scalar field element and advances the state, so a
// repeated call never returns the same value.
func (t *Transcript) Challenge() fr.Element {
	var pad fr.Element
	c := t.cfg.Compress(t.state, pad)
	t.state = t.cfg.Compress(t.state, c)
	return c
}
