package util

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ScalarToHex encodes a scalar field element as 0x-prefixed big-endian hex.
func ScalarToHex(e *fr.Element) string {
	return hexutil.Encode(e.Marshal())
}

// ScalarFromHex decodes a 0x-prefixed hex string into a canonical scalar
// field element.
func ScalarFromHex(s string) (fr.Element, error) {
	var e fr.Element
	b, err := hexutil.Decode(s)
	if err != nil {
		return e, fmt.Errorf("decode scalar hex: %w", err)
	}
	if len(b) != fr.Bytes {
		return e, fmt.Errorf("scalar must be %d bytes, got %d", fr.Bytes, len(b))
	}
	if err := e.SetBytesCanonical(b); err != nil {
		return e, fmt.Errorf("non-canonical scalar: %w", err)
	}
	return e, nil
}

// PointToHex encodes a G1 point in compressed form as 0x-prefixed hex.
func PointToHex(p *bn254.G1Affine) string {
	b := p.Bytes()
	return hexutil.Encode(b[:])
}

// PointFromHex decodes a compressed G1 point from 0x-prefixed hex, including
// on-curve and subgroup checks.
func PointFromHex(s string) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	b, err := hexutil.Decode(s)
	if err != nil {
		return p, fmt.Errorf("decode point hex: %w", err)
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, fmt.Errorf("invalid point encoding: %w", err)
	}
	return p, nil
}
