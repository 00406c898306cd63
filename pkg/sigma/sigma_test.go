package sigma

import (
	"bytes"
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"sigmabus/pkg/group"
	"sigmabus/pkg/hash"
	"sigmabus/pkg/transcript"
)

var (
	setupOnce   sync.Once
	setupParams *Params
	setupErr    error
)

// params runs the trusted setup once for the whole package; Groth16 setup is
// by far the most expensive step.
func params(tb testing.TB) *Params {
	tb.Helper()
	setupOnce.Do(func() {
		setupParams, setupErr = Setup(hash.DefaultConfig())
	})
	if setupErr != nil {
		tb.Fatalf("setup failed: %v", setupErr)
	}
	return setupParams
}

func randScalar(tb testing.TB) fr.Element {
	tb.Helper()
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		tb.Fatalf("sample scalar: %v", err)
	}
	return e
}

func freshTranscript(p *Params) *transcript.Transcript {
	return transcript.NewWithLabel(p.HashConfig(), []byte("sigmabus/test"))
}

func proveValid(tb testing.TB, p *Params, x fr.Element) *Proof {
	tb.Helper()
	proof, err := Prove(rand.Reader, p, freshTranscript(p), x)
	if err != nil {
		tb.Fatalf("prove: %v", err)
	}
	return proof
}

func TestCompleteness(t *testing.T) {
	p := params(t)

	for i := 0; i < 3; i++ {
		x := randScalar(t)
		X := group.ScalarBaseMul(&x)

		proof := proveValid(t, p, x)
		err := Verify(p, freshTranscript(p), proof, &X)
		require.NoError(t, err, "honest proof must verify")
	}
}

func TestSoundnessWrongStatement(t *testing.T) {
	p := params(t)

	x := randScalar(t)
	proof := proveValid(t, p, x)

	for i := 0; i < 8; i++ {
		wrong := randScalar(t)
		Xwrong := group.ScalarBaseMul(&wrong)

		err := Verify(p, freshTranscript(p), proof, &Xwrong)
		require.ErrorIs(t, err, ErrGroupEquationMismatch)
	}
}

func TestStatementPointBitFlip(t *testing.T) {
	p := params(t)

	x := randScalar(t)
	X := group.ScalarBaseMul(&x)
	proof := proveValid(t, p, x)

	require.NoError(t, Verify(p, freshTranscript(p), proof, &X))

	// shift the statement by the generator: still a valid point, wrong X
	g := group.Generator()
	shifted := group.Add(&X, &g)
	err := Verify(p, freshTranscript(p), proof, &shifted)
	require.ErrorIs(t, err, ErrGroupEquationMismatch)
}

func TestChallengeMismatchOnDivergentTranscripts(t *testing.T) {
	p := params(t)

	x := randScalar(t)
	X := group.ScalarBaseMul(&x)
	proof := proveValid(t, p, x)

	other := transcript.NewWithLabel(p.HashConfig(), []byte("some-other-session"))
	err := Verify(p, other, proof, &X)
	require.ErrorIs(t, err, ErrChallengeMismatch)
}

func TestConfigMismatch(t *testing.T) {
	p := params(t)
	x := randScalar(t)
	X := group.ScalarBaseMul(&x)
	proof := proveValid(t, p, x)

	otherCfg := hash.Config{Width: 2, FullRounds: 8, PartialRounds: 56}
	err := Verify(p, transcript.New(otherCfg), proof, &X)
	require.ErrorIs(t, err, ErrConfigMismatch)

	_, err = Prove(rand.Reader, p, transcript.New(otherCfg), x)
	require.ErrorIs(t, err, ErrConfigMismatch)
}

func TestDigestMismatch(t *testing.T) {
	p := params(t)
	x := randScalar(t)
	X := group.ScalarBaseMul(&x)

	proof := proveValid(t, p, x)
	tampered := *proof
	var one fr.Element
	one.SetOne()
	tampered.DigestR.Add(&tampered.DigestR, &one)

	err := Verify(p, freshTranscript(p), &tampered, &X)
	require.ErrorIs(t, err, ErrDigestMismatch)
}

func TestInnerProofRejectsMutatedResponse(t *testing.T) {
	p := params(t)
	x := randScalar(t)
	X := group.ScalarBaseMul(&x)

	proof := proveValid(t, p, x)
	tampered := *proof
	var one fr.Element
	one.SetOne()
	tampered.S.Add(&tampered.S, &one)

	// s is a public input of the inner proof, so the SNARK check fails first
	err := Verify(p, freshTranscript(p), &tampered, &X)
	require.ErrorIs(t, err, ErrInnerProofInvalid)
}

func TestInnerProofNotInterchangeable(t *testing.T) {
	p := params(t)

	x1 := randScalar(t)
	x2 := randScalar(t)
	X1 := group.ScalarBaseMul(&x1)

	proof1 := proveValid(t, p, x1)
	proof2 := proveValid(t, p, x2)

	grafted := *proof1
	grafted.inner = proof2.inner

	err := Verify(p, freshTranscript(p), &grafted, &X1)
	require.ErrorIs(t, err, ErrInnerProofInvalid)
}

func TestNonceReuseRecoversSecret(t *testing.T) {
	p := params(t)
	x := randScalar(t)

	// identical rng seeds force the same blinding scalar k under two
	// different session labels, i.e. two different challenges
	tr1 := transcript.NewWithLabel(p.HashConfig(), []byte("session-1"))
	tr2 := transcript.NewWithLabel(p.HashConfig(), []byte("session-2"))

	proof1, err := Prove(mrand.New(mrand.NewSource(1337)), p, tr1, x)
	require.NoError(t, err)
	proof2, err := Prove(mrand.New(mrand.NewSource(1337)), p, tr2, x)
	require.NoError(t, err)

	require.True(t, proof1.R.Equal(&proof2.R), "same rng stream must reuse k")
	require.False(t, proof1.C.Equal(&proof2.C), "different labels must yield different challenges")

	// x = (s1 - s2) / (c1 - c2): the classic Schnorr nonce-reuse extraction
	var num, den, recovered fr.Element
	num.Sub(&proof1.S, &proof2.S)
	den.Sub(&proof1.C, &proof2.C)
	den.Inverse(&den)
	recovered.Mul(&num, &den)

	require.True(t, recovered.Equal(&x), "reused nonce must leak the secret")
}

func TestProofRoundTrip(t *testing.T) {
	p := params(t)
	x := randScalar(t)
	X := group.ScalarBaseMul(&x)
	proof := proveValid(t, p, x)

	var buf bytes.Buffer
	_, err := proof.WriteTo(&buf)
	require.NoError(t, err)

	var decoded Proof
	_, err = decoded.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.True(t, decoded.DigestR.Equal(&proof.DigestR))
	require.True(t, decoded.C.Equal(&proof.C))
	require.True(t, decoded.S.Equal(&proof.S))
	require.True(t, decoded.R.Equal(&proof.R))

	err = Verify(p, freshTranscript(p), &decoded, &X)
	require.NoError(t, err, "round-tripped proof must verify identically")
}

func TestParamsRoundTrip(t *testing.T) {
	p := params(t)
	x := randScalar(t)
	X := group.ScalarBaseMul(&x)
	proof := proveValid(t, p, x)

	var buf bytes.Buffer
	_, err := p.WriteTo(&buf)
	require.NoError(t, err)

	var decoded Params
	_, err = decoded.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, p.Fingerprint(), decoded.Fingerprint())

	err = Verify(&decoded, freshTranscript(&decoded), proof, &X)
	require.NoError(t, err, "verification must behave identically on deserialized parameters")
}

func TestParamsRejectsCorruptedConfigHeader(t *testing.T) {
	p := params(t)

	var buf bytes.Buffer
	_, err := p.WriteTo(&buf)
	require.NoError(t, err)
	encoded := buf.Bytes()

	// header is width(4) || fullRounds(4) || partialRounds(4); an unsupported
	// width must be rejected at decode time, not by a later panic
	mutated := make([]byte, len(encoded))
	copy(mutated, encoded)
	mutated[3] = 3

	var decoded Params
	_, err = decoded.ReadFrom(bytes.NewReader(mutated))
	require.Error(t, err)

	// zeroed rounds are equally invalid
	copy(mutated, encoded)
	for i := 4; i < 12; i++ {
		mutated[i] = 0
	}
	_, err = decoded.ReadFrom(bytes.NewReader(mutated))
	require.Error(t, err)
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	_, err := Setup(hash.Config{Width: 3, FullRounds: 6, PartialRounds: 50})
	require.ErrorIs(t, err, ErrSetup)
}

func TestTamperedSerializedProofRejected(t *testing.T) {
	p := params(t)
	x := randScalar(t)
	X := group.ScalarBaseMul(&x)
	proof := proveValid(t, p, x)

	var buf bytes.Buffer
	_, err := proof.WriteTo(&buf)
	require.NoError(t, err)
	encoded := buf.Bytes()

	// one offset inside each serialized component: digestR, c, s, R and the
	// inner proof payload
	offsets := []int{
		5,                // digestR
		fr.Bytes + 5,     // c
		2*fr.Bytes + 5,   // s
		3*fr.Bytes + 5,   // R
		4*fr.Bytes + 16,  // inner proof
		len(encoded) - 1, // inner proof tail
	}

	for _, off := range offsets {
		mutated := make([]byte, len(encoded))
		copy(mutated, encoded)
		mutated[off] ^= 0x40

		var decoded Proof
		if _, err := decoded.ReadFrom(bytes.NewReader(mutated)); err != nil {
			continue // rejected already at decode time
		}
		err := Verify(p, freshTranscript(p), &decoded, &X)
		require.Error(t, err, "tampered byte at offset %d must be rejected", off)
	}
}

func TestScalarValidation(t *testing.T) {
	_, err := ScalarFromBig(big.NewInt(-1))
	require.ErrorIs(t, err, ErrInvalidWitness)

	_, err = ScalarFromBig(fr.Modulus())
	require.ErrorIs(t, err, ErrInvalidWitness)

	_, err = ScalarFromBig(nil)
	require.ErrorIs(t, err, ErrInvalidWitness)

	maxValid := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	x, err := ScalarFromBig(maxValid)
	require.NoError(t, err)

	back, err := ScalarFromBytes(x.Marshal())
	require.NoError(t, err)
	require.True(t, x.Equal(&back))

	_, err = ScalarFromBytes([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidWitness)
}

func TestConcurrentProveVerifySharedParams(t *testing.T) {
	p := params(t)

	xs := make([]fr.Element, 4)
	for i := range xs {
		xs[i] = randScalar(t)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(xs))
	for i := 0; i < len(xs); i++ {
		wg.Add(1)
		go func(x fr.Element) {
			defer wg.Done()
			X := group.ScalarBaseMul(&x)
			proof, err := Prove(rand.Reader, p, freshTranscript(p), x)
			if err != nil {
				errs <- err
				return
			}
			errs <- Verify(p, freshTranscript(p), proof, &X)
		}(xs[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func BenchmarkProve(b *testing.B) {
	p := params(b)
	x := randScalar(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Prove(rand.Reader, p, freshTranscript(p), x); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	p := params(b)
	x := randScalar(b)
	X := group.ScalarBaseMul(&x)
	proof, err := Prove(rand.Reader, p, freshTranscript(p), x)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Verify(p, freshTranscript(p), proof, &X); err != nil {
			b.Fatal(err)
		}
	}
}
