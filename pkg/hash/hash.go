// Package hash centralizes the Poseidon2 configuration shared by the
// transcript, the native point digest and the in-circuit gadget. Both sides
// derive their round keys from the same parameters, so they agree by
// construction; the configuration fingerprint makes that agreement checkable.
package hash

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	"github.com/ethereum/go-ethereum/crypto"
)

// encodingTag names the digest construction (Merkle-Damgard fold of the
// quotient/remainder point decomposition). It is hashed into the fingerprint
// so that two deployments disagreeing on the encoding cannot silently
// interoperate.
const encodingTag = "sigmabus/poseidon2-bn254/md-qr/v1"

// Config is the Poseidon2 parameter set. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	Width         int
	FullRounds    int
	PartialRounds int
}

// DefaultConfig returns the standard BN254 Poseidon2 parameters (t=2, rF=6,
// rP=50), the same set gnark uses for its BN254 Merkle-Damgard hasher.
func DefaultConfig() Config {
	return Config{Width: 2, FullRounds: 6, PartialRounds: 50}
}

// Fingerprint returns the Keccak256 fingerprint of the configuration and the
// digest encoding. Parameters embed it and Prove/Verify compare it against
// the transcript's, so a prover/verifier hash mismatch surfaces as an
// explicit error instead of a silent soundness break.
func (c Config) Fingerprint() [32]byte {
	buf := make([]byte, 0, len(encodingTag)+12)
	buf = append(buf, encodingTag...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(c.Width))
	buf = binary.BigEndian.AppendUint32(buf, uint32(c.FullRounds))
	buf = binary.BigEndian.AppendUint32(buf, uint32(c.PartialRounds))
	var fp [32]byte
	copy(fp[:], crypto.Keccak256(buf))
	return fp
}

// Validate rejects parameter sets the compression function cannot support.
// Callers deserializing a configuration from untrusted bytes must validate it
// before use.
func (c Config) Validate() error {
	if c.Width != 2 {
		return fmt.Errorf("poseidon2 width must be 2 for two-to-one compression, got %d", c.Width)
	}
	if c.FullRounds <= 0 || c.PartialRounds <= 0 {
		return fmt.Errorf("poseidon2 rounds must be positive, got rF=%d rP=%d", c.FullRounds, c.PartialRounds)
	}
	return nil
}

// permCache holds one native permutation per configuration; deriving round
// keys from the seed is not free, so permutations are built once.
var permCache sync.Map // Config -> *poseidon2.Permutation

func (c Config) permutation() *poseidon2.Permutation {
	if p, ok := permCache.Load(c); ok {
		return p.(*poseidon2.Permutation)
	}
	if err := c.Validate(); err != nil {
		panic(err)
	}
	p := poseidon2.NewPermutation(c.Width, c.FullRounds, c.PartialRounds)
	actual, _ := permCache.LoadOrStore(c, p)
	return actual.(*poseidon2.Permutation)
}

// Compress is the two-to-one compression perm([x,y])[1] + y, matching the
// gnark circuit gadget's Compress for the same parameters.
func (c Config) Compress(x, y fr.Element) fr.Element {
	state := [2]fr.Element{x, y}
	if err := c.permutation().Permutation(state[:]); err != nil {
		// width is validated on construction, a two-element block cannot fail
		panic(err)
	}
	var out fr.Element
	out.Add(&state[1], &y)
	return out
}

// Sum is the Merkle-Damgard fold of Compress starting from the zero state.
// It matches the in-circuit hasher fed the same sequence.
func (c Config) Sum(vals ...fr.Element) fr.Element {
	var acc fr.Element
	for _, v := range vals {
		acc = c.Compress(acc, v)
	}
	return acc
}
