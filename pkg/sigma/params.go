package sigma

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog/log"

	"sigmabus/pkg/circuit"
	"sigmabus/pkg/hash"
)

// Params is the immutable public data produced once by Setup: the compiled
// relation constraint system, the Groth16 key pair and the Poseidon2
// configuration they were generated against. Params are read-only after Setup
// and safe to share across concurrent Prove and Verify calls.
type Params struct {
	cfg         hash.Config
	fingerprint [32]byte
	ccs         constraint.ConstraintSystem
	pk          groth16.ProvingKey
	vk          groth16.VerifyingKey
}

// Setup compiles the relation circuit for the given hash configuration and
// runs the Groth16 trusted setup. Keys from distinct runs are paired and not
// interchangeable. The setup randomness is drawn internally by gnark.
func Setup(cfg hash.Config) (*Params, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(ErrSetup, err)
	}
	start := time.Now()

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit.Relation{Hash: cfg})
	if err != nil {
		return nil, errors.Join(ErrSetup, fmt.Errorf("compile relation circuit: %w", err))
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, errors.Join(ErrSetup, fmt.Errorf("groth16 setup: %w", err))
	}

	log.Debug().
		Int("constraints", ccs.GetNbConstraints()).
		Dur("took", time.Since(start)).
		Msg("relation circuit compiled and keys generated")

	return &Params{
		cfg:         cfg,
		fingerprint: cfg.Fingerprint(),
		ccs:         ccs,
		pk:          pk,
		vk:          vk,
	}, nil
}

// HashConfig returns the Poseidon2 configuration the parameters are bound to.
func (p *Params) HashConfig() hash.Config { return p.cfg }

// Fingerprint returns the fingerprint of the bound hash configuration.
func (p *Params) Fingerprint() [32]byte { return p.fingerprint }

// WriteTo serializes the parameters: the hash configuration followed by the
// constraint system, proving key and verifying key in gnark's canonical
// encodings.
func (p *Params) WriteTo(w io.Writer) (int64, error) {
	var total int64

	var hdr [12]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(p.cfg.Width))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(p.cfg.FullRounds))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(p.cfg.PartialRounds))
	n, err := w.Write(hdr[:])
	total += int64(n)
	if err != nil {
		return total, err
	}

	for _, wt := range []io.WriterTo{p.ccs, p.pk, p.vk} {
		m, err := wt.WriteTo(w)
		total += m
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadFrom deserializes parameters previously written with WriteTo.
func (p *Params) ReadFrom(r io.Reader) (int64, error) {
	var total int64

	var hdr [12]byte
	n, err := io.ReadFull(r, hdr[:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	cfg := hash.Config{
		Width:         int(binary.BigEndian.Uint32(hdr[0:4])),
		FullRounds:    int(binary.BigEndian.Uint32(hdr[4:8])),
		PartialRounds: int(binary.BigEndian.Uint32(hdr[8:12])),
	}
	if err := cfg.Validate(); err != nil {
		return total, fmt.Errorf("sigma: invalid hash configuration in parameters: %w", err)
	}
	p.cfg = cfg
	p.fingerprint = p.cfg.Fingerprint()

	p.ccs = groth16.NewCS(ecc.BN254)
	p.pk = groth16.NewProvingKey(ecc.BN254)
	p.vk = groth16.NewVerifyingKey(ecc.BN254)
	for _, rt := range []io.ReaderFrom{p.ccs, p.pk, p.vk} {
		m, err := rt.ReadFrom(r)
		total += m
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
