package core

// Config carries the run configuration for the command surface. The protocol
// itself takes everything explicitly; this only names where artifacts live
// and how proof sessions are labeled.
type Config struct {
	// Artifact locations
	ParamsFile string
	ProofFile  string

	// Transcript domain separation label shared by prover and verifier.
	SessionLabel string

	// Poseidon2 configuration
	HashWidth         int
	HashFullRounds    int
	HashPartialRounds int
}

func DefaultConfig() *Config {
	return &Config{
		ParamsFile:        "./sigmabus-params.bin",
		ProofFile:         "./sigmabus-proof.bin",
		SessionLabel:      "sigmabus/v1",
		HashWidth:         2,
		HashFullRounds:    6,
		HashPartialRounds: 50,
	}
}

// HashConfigValues returns the Poseidon2 parameter triple.
func (c *Config) HashConfigValues() (width, fullRounds, partialRounds int) {
	return c.HashWidth, c.HashFullRounds, c.HashPartialRounds
}
