// Package em drives the batch EM training loop: each iteration re-reads
// the corpus, computes per-sentence posteriors against the diagonal prior
// and the current TTable, accumulates expected counts, and — between
// non-final iterations — renormalizes the table. On the final iteration it
// streams Viterbi alignments and records the Viterbi set the parameter
// dump later consults.
package em

import (
	"fmt"
	"io"
	"math"

	log "github.com/golang/glog"

	"github.com/nlpcore/fastalign/align"
	"github.com/nlpcore/fastalign/corpus"
	"github.com/nlpcore/fastalign/emit"
	"github.com/nlpcore/fastalign/ttable"
)

// Config collects every training knob the CLI surface exposes.
type Config struct {
	Iterations             int
	Reverse                bool
	FavorDiagonal          bool
	ProbAlignNull          float64
	DiagonalTension        float64
	VariationalBayes       bool
	Alpha                  float64
	UseNull                bool
	HideTrainingAlignments bool
}

// Stats summarizes one completed iteration.
type Stats struct {
	Iteration     int
	LogLikelihood float64
	CrossEntropy  float64
	Perplexity    float64
}

// OpenCorpus re-opens the training corpus for a fresh pass. The driver
// calls it once per iteration so each pass starts from the first line.
type OpenCorpus func() (corpus.PairReader, error)

// Driver owns the TTable and Viterbi set accumulated across iterations.
type Driver struct {
	cfg     Config
	table   *ttable.Table
	prior   *align.DiagonalPrior
	viterbi *emit.ViterbiSet

	totLenRatio          float64
	meanSrcLenMultiplier float64
}

// NewDriver returns a Driver with a fresh, empty TTable.
func NewDriver(cfg Config) *Driver {
	return &Driver{
		cfg:   cfg,
		table: ttable.NewTable(),
		prior: &align.DiagonalPrior{
			FavorDiagonal:   cfg.FavorDiagonal,
			UseNull:         cfg.UseNull,
			ProbAlignNull:   cfg.ProbAlignNull,
			DiagonalTension: cfg.DiagonalTension,
		},
		viterbi: emit.NewViterbiSet(),
	}
}

// Table returns the TTable accumulated so far.
func (this *Driver) Table() *ttable.Table { return this.table }

// Viterbi returns the Viterbi set populated on the final iteration.
func (this *Driver) Viterbi() *emit.ViterbiSet { return this.viterbi }

// MeanSrcLenMultiplier returns tot_len_ratio / n_sentences as fixed after
// iteration 0, the expected-target-length-per-source-word scale the test
// scorer's Poisson prior uses.
func (this *Driver) MeanSrcLenMultiplier() float64 { return this.meanSrcLenMultiplier }

// Run trains for cfg.Iterations passes. w receives streamed Viterbi
// alignments for the final pass, unless cfg.HideTrainingAlignments is set.
func (this *Driver) Run(open OpenCorpus, w io.Writer) error {
	for iter := 0; iter < this.cfg.Iterations; iter++ {
		final := iter == this.cfg.Iterations-1
		stats, err := this.runIteration(open, w, iter, final)
		if err != nil {
			return err
		}

		suffix := ""
		if final {
			suffix = " (final)"
		}
		log.Infof("iteration %d%s: log_e likelihood %.6f cross-entropy %.6f perplexity %.6f",
			stats.Iteration, suffix, stats.LogLikelihood, stats.CrossEntropy, stats.Perplexity)

		if !final {
			if this.cfg.VariationalBayes {
				if err := this.table.NormalizeVB(this.cfg.Alpha); err != nil {
					return err
				}
			} else {
				this.table.Normalize()
			}
		}
	}
	return nil
}

func (this *Driver) runIteration(open OpenCorpus, w io.Writer, iter int, final bool) (Stats, error) {
	reader, err := open()
	if err != nil {
		return Stats{}, err
	}
	defer reader.Close()

	var writer *emit.AlignmentWriter
	if final && !this.cfg.HideTrainingAlignments {
		writer = emit.NewAlignmentWriter(w, this.cfg.Reverse)
	}

	var likelihood, denom float64
	var lineCount int
	probs := make([]float64, 0, 64)

	for {
		pair, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Stats{}, err
		}

		src, trg := pair.Src, pair.Trg
		if this.cfg.Reverse {
			src, trg = trg, src
		}
		// the reader guarantees non-empty sides; this only guards the
		// PairReader contract.
		if len(src) == 0 || len(trg) == 0 {
			return Stats{}, fmt.Errorf("line %d: empty sentence side", lineCount+1)
		}

		lineCount++
		if iter == 0 {
			this.totLenRatio += float64(len(trg)) / float64(len(src))
		}
		denom += float64(len(trg))

		if cap(probs) < len(src)+1 {
			probs = make([]float64, len(src)+1)
		} else {
			probs = probs[:len(src)+1]
		}

		if writer != nil {
			writer.BeginSentence()
		}

		for j, f := range trg {
			this.prior.Weights(probs, len(src), len(trg), j)

			var sum float64
			if this.cfg.UseNull {
				probs[0] *= this.table.Prob(ttable.NullID, f)
			} else {
				probs[0] = 0
			}
			sum += probs[0]
			for i := 1; i <= len(src); i++ {
				probs[i] *= this.table.Prob(src[i-1], f)
				sum += probs[i]
			}
			if sum <= 0 {
				return Stats{}, fmt.Errorf("line %d: target position %d has zero total probability", lineCount, j)
			}
			likelihood += math.Log(sum)

			if final {
				maxIdx, maxWord := argmax(probs, src, this.cfg.UseNull)
				this.viterbi.Add(maxWord, f)
				if writer != nil && maxIdx > 0 {
					writer.Token(maxIdx-1, j)
				}
			} else {
				if this.cfg.UseNull {
					this.table.Increment(ttable.NullID, f, probs[0]/sum)
				}
				for i := 1; i <= len(src); i++ {
					this.table.Increment(src[i-1], f, probs[i]/sum)
				}
			}
		}

		if writer != nil {
			if err := writer.EndSentence(); err != nil {
				return Stats{}, err
			}
		}
	}

	if iter == 0 {
		if lineCount == 0 {
			return Stats{}, fmt.Errorf("corpus has no sentence pairs")
		}
		this.meanSrcLenMultiplier = this.totLenRatio / float64(lineCount)
	}

	log2Likelihood := likelihood / math.Ln2
	crossEntropy := -log2Likelihood / denom
	return Stats{
		Iteration:     iter + 1,
		LogLikelihood: likelihood,
		CrossEntropy:  crossEntropy,
		Perplexity:    math.Pow(2, crossEntropy),
	}, nil
}

// argmax returns the 1-indexed winner among probs[0:len(src)+1] (0 means
// NULL), breaking ties in favor of the first (lowest) index. When useNull
// is true, NULL is seeded as the initial candidate, matching the original
// tool's seeding of max_i at probs[0] before scanning real source
// positions.
func argmax(probs []float64, src []ttable.WordID, useNull bool) (index int, word ttable.WordID) {
	index, maxP := -1, -1.0
	if useNull {
		index, maxP, word = 0, probs[0], ttable.NullID
	}
	for i := 1; i <= len(src); i++ {
		if probs[i] > maxP {
			index, maxP, word = i, probs[i], src[i-1]
		}
	}
	return index, word
}
