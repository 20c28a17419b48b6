package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/golang/glog"

	"github.com/nlpcore/fastalign/config"
	"github.com/nlpcore/fastalign/corpus"
	"github.com/nlpcore/fastalign/em"
	"github.com/nlpcore/fastalign/emit"
	"github.com/nlpcore/fastalign/score"
)

var (
	input                  = flag.String("input", "", "parallel corpus input file")
	reverse                = flag.Bool("reverse", false, "reverse estimation (swap source and target during training)")
	iterations             = flag.Uint("iterations", 5, "number of iterations of EM training")
	favorDiagonal          = flag.Bool("favor_diagonal", false, "use a static alignment distribution that assigns higher probabilities to alignments near the diagonal")
	probAlignNull          = flag.Float64("prob_align_null", 0.08, "when -favor_diagonal is set, what's the probability of a null alignment?")
	diagonalTension        = flag.Float64("diagonal_tension", 4.0, "how sharp or flat around the diagonal is the alignment distribution (<1 = flat >1 = sharp)")
	variationalBayes       = flag.Bool("variational_bayes", false, "infer VB estimate of parameters under a symmetric Dirichlet prior")
	alpha                  = flag.Float64("alpha", 0.01, "hyperparameter for optional Dirichlet prior")
	noNullWord             = flag.Bool("no_null_word", false, "do not generate from a null token")
	outputParameters       = flag.Bool("output_parameters", false, "write model parameters instead of alignments")
	beamThreshold          = flag.Float64("beam_threshold", -4, "when writing parameters, log_10 of beam threshold for writing parameter (-10000 to include everything, 0 max parameter only)")
	hideTrainingAlignments = flag.Bool("hide_training_alignments", false, "hide training alignments (only useful with -testset)")
	testset                = flag.String("testset", "", "after training completes, compute the log likelihood of this set of sentence pairs under the learned model")
	noAddViterbi           = flag.Bool("no_add_viterbi", false, "when writing model parameters, do not add Viterbi alignment points")
	configFile             = flag.String("config", "", "configuration file (key=value pairs; command-line flags take precedence)")
)

func main() {
	defer log.Flush()

	// the flag package prints the parse error (or the usage text for -h)
	// itself; every usage failure exits 1.
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	explicit := config.ExplicitFlags(flag.CommandLine)

	if *configFile != "" {
		if err := config.ApplyFile(flag.CommandLine, *configFile, explicit); err != nil {
			fmt.Fprintf(os.Stderr, "fastalign: %v\n", err)
			os.Exit(1)
		}
	}

	if *input == "" {
		fmt.Fprintf(os.Stderr, "Usage %s [OPTIONS] -input corpus.fr-en\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *variationalBayes && *alpha <= 0.0 {
		fmt.Fprintln(os.Stderr, "--alpha must be > 0")
		os.Exit(1)
	}

	vocab := corpus.NewVocab()
	cfg := em.Config{
		Iterations:             int(*iterations),
		Reverse:                *reverse,
		FavorDiagonal:          *favorDiagonal,
		ProbAlignNull:          *probAlignNull,
		DiagonalTension:        *diagonalTension,
		VariationalBayes:       *variationalBayes,
		Alpha:                  *alpha,
		UseNull:                !*noNullWord,
		HideTrainingAlignments: *hideTrainingAlignments,
	}
	driver := em.NewDriver(cfg)

	open := func() (corpus.PairReader, error) {
		return corpus.OpenFile(*input, vocab)
	}

	if err := driver.Run(open, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fastalign: %v\n", err)
		os.Exit(1)
	}

	if *outputParameters {
		if err := emit.Dump(os.Stdout, driver.Table(), vocab, *beamThreshold, driver.Viterbi(), !*noAddViterbi); err != nil {
			fmt.Fprintf(os.Stderr, "fastalign: %v\n", err)
			os.Exit(1)
		}
	}

	if *testset != "" {
		reader, err := corpus.OpenFile(*testset, vocab)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fastalign: %v\n", err)
			os.Exit(1)
		}
		defer reader.Close()

		scoreCfg := score.Config{
			Reverse:              *reverse,
			FavorDiagonal:        *favorDiagonal,
			ProbAlignNull:        *probAlignNull,
			DiagonalTension:      *diagonalTension,
			UseNull:              !*noNullWord,
			MeanSrcLenMultiplier: driver.MeanSrcLenMultiplier(),
			WriteAlignments:      true,
		}
		if _, err := score.Score(os.Stdout, reader, vocab, driver.Table(), scoreCfg); err != nil {
			fmt.Fprintf(os.Stderr, "fastalign: %v\n", err)
			os.Exit(1)
		}
	}
}
