// Package group owns all native BN254 G1 arithmetic and the bridge from base
// field coordinates into scalar field digests. It is the only package that
// touches Fq values; the circuit side never imports these types.
package group

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"sigmabus/pkg/hash"
)

// Generator returns the fixed G1 generator the protocol statement X = x*G is
// made against.
func Generator() bn254.G1Affine {
	_, _, g1, _ := bn254.Generators()
	return g1
}

// ScalarBaseMul computes k*G.
func ScalarBaseMul(k *fr.Element) bn254.G1Affine {
	var b big.Int
	k.BigInt(&b)
	var p bn254.G1Affine
	p.ScalarMultiplicationBase(&b)
	return p
}

// ScalarMul computes k*P.
func ScalarMul(p *bn254.G1Affine, k *fr.Element) bn254.G1Affine {
	var b big.Int
	k.BigInt(&b)
	var out bn254.G1Affine
	out.ScalarMultiplication(p, &b)
	return out
}

// Add computes P+Q.
func Add(p, q *bn254.G1Affine) bn254.G1Affine {
	var jac, qJac bn254.G1Jac
	jac.FromAffine(p)
	qJac.FromAffine(q)
	jac.AddAssign(&qJac)
	var out bn254.G1Affine
	out.FromJacobian(&jac)
	return out
}

// Decompose encodes an affine point into four Fr elements by splitting each
// Fq coordinate against the Fr modulus: X = xq*r + xm, Y = yq*r + ym. The
// decomposition is exact, so the encoding is injective; reducing coordinates
// mod r instead would lose information since q > r on BN254.
func Decompose(p *bn254.G1Affine) [4]fr.Element {
	var xb, yb, xq, xm, yq, ym big.Int
	p.X.BigInt(&xb)
	p.Y.BigInt(&yb)
	xq.DivMod(&xb, fr.Modulus(), &xm)
	yq.DivMod(&yb, fr.Modulus(), &ym)

	var out [4]fr.Element
	out[0].SetBigInt(&xq)
	out[1].SetBigInt(&xm)
	out[2].SetBigInt(&yq)
	out[3].SetBigInt(&ym)
	return out
}

// Digest computes the Fr digest of a point: the Poseidon2 Merkle-Damgard fold
// over its decomposed coordinates. This is the digest(R) bound inside the
// relation circuit and recomputed natively by the verifier.
func Digest(cfg hash.Config, p *bn254.G1Affine) fr.Element {
	d := Decompose(p)
	return cfg.Sum(d[:]...)
}
