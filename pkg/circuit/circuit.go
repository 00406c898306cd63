// Package circuit defines the relation proved by the inner Groth16 SNARK.
// Everything here lives in the BN254 scalar field: the blinded point R enters
// only through its decomposed coordinates supplied as witness, never through
// base field or curve types. Recomputing k*G in-circuit is exactly the
// non-native arithmetic this construction exists to avoid.
package circuit

import (
	"github.com/consensys/gnark/frontend"
	stdhash "github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"

	"sigmabus/pkg/hash"
)

// Relation proves knowledge of (x, k) such that s = k + c*x, with the claimed
// commitment point R bound to the public digest via Poseidon2. Whether R is
// actually k*G is checked natively by the verifier through s*G == R + c*X;
// the circuit only pins R down by its hash.
//
// Public input order is digestR, c, s; the verifier's public witness must be
// assembled in the same order.
type Relation struct {
	DigestR frontend.Variable `gnark:",public"`
	C       frontend.Variable `gnark:",public"`
	S       frontend.Variable `gnark:",public"`

	X   frontend.Variable
	K   frontend.Variable
	RxQ frontend.Variable
	RxM frontend.Variable
	RyQ frontend.Variable
	RyM frontend.Variable

	Hash hash.Config
}

func (r *Relation) Define(api frontend.API) error {
	perm, err := poseidon2.NewPoseidon2FromParameters(api, r.Hash.Width, r.Hash.FullRounds, r.Hash.PartialRounds)
	if err != nil {
		return err
	}

	// digestR == Poseidon2-MD(RxQ, RxM, RyQ, RyM)
	h := stdhash.NewMerkleDamgardHasher(api, perm, 0)
	h.Write(r.RxQ, r.RxM, r.RyQ, r.RyM)
	api.AssertIsEqual(r.DigestR, h.Sum())

	// s == k + c*x
	api.AssertIsEqual(r.S, api.Add(r.K, api.Mul(r.C, r.X)))

	return nil
}
