package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sigmabus/pkg/core"
	"sigmabus/pkg/group"
	"sigmabus/pkg/hash"
	"sigmabus/pkg/sigma"
	"sigmabus/pkg/transcript"
	"sigmabus/pkg/util"
)

func main() {
	// Configure logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := core.DefaultConfig()

	// Parse flags
	action := flag.String("action", "", "setup | prove | verify")
	paramsFile := flag.String("params", cfg.ParamsFile, "parameters file")
	proofFile := flag.String("proof", cfg.ProofFile, "proof file")
	label := flag.String("label", cfg.SessionLabel, "transcript domain separation label")
	xHex := flag.String("x", "", "secret scalar x as 0x-prefixed hex (prove)")
	pointHex := flag.String("point", "", "public point X as 0x-prefixed compressed hex (verify)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	w, rf, rp := cfg.HashConfigValues()
	hashCfg := hash.Config{Width: w, FullRounds: rf, PartialRounds: rp}

	switch *action {
	case "setup":
		runSetup(hashCfg, *paramsFile)
	case "prove":
		runProve(hashCfg, *paramsFile, *proofFile, *label, *xHex)
	case "verify":
		runVerify(hashCfg, *paramsFile, *proofFile, *label, *pointHex)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runSetup(hashCfg hash.Config, paramsFile string) {
	params, err := sigma.Setup(hashCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Setup failed")
	}

	f, err := os.Create(paramsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create parameters file")
	}
	defer f.Close()

	if _, err := params.WriteTo(f); err != nil {
		log.Fatal().Err(err).Msg("Failed to write parameters")
	}

	fp := params.Fingerprint()
	fmt.Println("Generated Sigmabus parameters")
	fmt.Println("-----------------------------")
	fmt.Printf("Parameters file:  %s\n", paramsFile)
	fmt.Printf("Hash fingerprint: %x\n", fp)
}

func loadParams(paramsFile string) *sigma.Params {
	f, err := os.Open(paramsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open parameters file (run -action setup first)")
	}
	defer f.Close()

	var params sigma.Params
	if _, err := params.ReadFrom(f); err != nil {
		log.Fatal().Err(err).Msg("Failed to read parameters")
	}
	return &params
}

func runProve(hashCfg hash.Config, paramsFile, proofFile, label, xHex string) {
	params := loadParams(paramsFile)
	if params.Fingerprint() != hashCfg.Fingerprint() {
		log.Fatal().Msg("Parameters were generated with a different hash configuration")
	}

	x, err := util.ScalarFromHex(xHex)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid secret scalar")
	}

	tr := transcript.NewWithLabel(hashCfg, []byte(label))
	proof, err := sigma.Prove(rand.Reader, params, tr, x)
	if err != nil {
		log.Fatal().Err(err).Msg("Proving failed")
	}

	f, err := os.Create(proofFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create proof file")
	}
	defer f.Close()

	if _, err := proof.WriteTo(f); err != nil {
		log.Fatal().Err(err).Msg("Failed to write proof")
	}

	X := group.ScalarBaseMul(&x)
	fmt.Println("Generated Sigmabus proof")
	fmt.Println("------------------------")
	fmt.Printf("Proof file:   %s\n", proofFile)
	fmt.Printf("Public point: %s\n", util.PointToHex(&X))
	fmt.Println("\nTo verify:")
	fmt.Printf("./sigmabus -action verify -point %s -params %s -proof %s -label %q\n",
		util.PointToHex(&X), paramsFile, proofFile, label)
}

func runVerify(hashCfg hash.Config, paramsFile, proofFile, label, pointHex string) {
	params := loadParams(paramsFile)

	X, err := util.PointFromHex(pointHex)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid public point")
	}

	f, err := os.Open(proofFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open proof file")
	}
	defer f.Close()

	var proof sigma.Proof
	if _, err := proof.ReadFrom(f); err != nil {
		log.Fatal().Err(err).Msg("Failed to read proof")
	}

	tr := transcript.NewWithLabel(hashCfg, []byte(label))
	if err := sigma.Verify(params, tr, &proof, &X); err != nil {
		log.Fatal().Err(err).Msg("Proof rejected")
	}

	fmt.Println("Proof verified: X = x*G for a scalar known to the prover")
}
