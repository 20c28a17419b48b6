// Package score evaluates a held-out test corpus against an already
// trained TTable and diagonal prior: for each sentence pair it reports the
// Viterbi alignment (optional) and a log probability that combines the
// lexical/alignment model with a Poisson prior over target length.
package score

import (
	"bufio"
	"fmt"
	"io"
	"math"

	log "github.com/golang/glog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nlpcore/fastalign/align"
	"github.com/nlpcore/fastalign/corpus"
	"github.com/nlpcore/fastalign/ttable"
)

// Config controls how the test set is read and scored. It mirrors the
// subset of em.Config that still matters once the TTable is frozen.
type Config struct {
	Reverse              bool
	FavorDiagonal        bool
	ProbAlignNull        float64
	DiagonalTension      float64
	UseNull              bool
	MeanSrcLenMultiplier float64
	WriteAlignments      bool
}

// Score reads every pair from reader and writes one line per sentence to
// w: "<src> ||| <trg> ||| [alignment |]|| <log probability>". It logs the
// summed log probability across the test set as the running total and
// also returns it.
func Score(w io.Writer, reader corpus.PairReader, vocab corpus.Vocabulary, table *ttable.Table, cfg Config) (float64, error) {
	prior := &align.DiagonalPrior{
		FavorDiagonal:   cfg.FavorDiagonal,
		UseNull:         cfg.UseNull,
		ProbAlignNull:   cfg.ProbAlignNull,
		DiagonalTension: cfg.DiagonalTension,
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	var total float64
	probs := make([]float64, 0, 64)

	for {
		pair, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, err
		}

		src, trg := pair.Src, pair.Trg
		if cfg.Reverse {
			src, trg = trg, src
		}
		logProb := logPoisson(float64(len(trg)), 0.05+float64(len(src))*cfg.MeanSrcLenMultiplier)

		if cap(probs) < len(src)+1 {
			probs = make([]float64, len(src)+1)
		} else {
			probs = probs[:len(src)+1]
		}

		alignment := ""
		for j, f := range trg {
			prior.Weights(probs, len(src), len(trg), j)

			var sum float64
			if cfg.UseNull {
				probs[0] *= table.Prob(ttable.NullID, f)
			} else {
				probs[0] = 0
			}
			sum += probs[0]

			aj, maxP := 0, probs[0]
			for i := 1; i <= len(src); i++ {
				probs[i] *= table.Prob(src[i-1], f)
				if probs[i] > maxP {
					aj, maxP = i, probs[i]
				}
				sum += probs[i]
			}
			logProb += math.Log(sum)

			if cfg.WriteAlignments && aj > 0 {
				if alignment != "" {
					alignment += " "
				}
				srcIdx, trgIdx := aj-1, j
				if cfg.Reverse {
					srcIdx, trgIdx = j, aj-1
				}
				alignment += fmt.Sprintf("%d-%d", srcIdx, trgIdx)
			}
		}

		total += logProb
		srcSurface := surfaces(pair.Src, vocab)
		trgSurface := surfaces(pair.Trg, vocab)
		if alignment != "" {
			fmt.Fprintf(bw, "%s ||| %s ||| %s ||| %v\n", srcSurface, trgSurface, alignment, logProb)
		} else {
			fmt.Fprintf(bw, "%s ||| %s ||| %v\n", srcSurface, trgSurface, logProb)
		}
	}

	log.Infof("TOTAL LOG PROB %v", total)
	return total, nil
}

func surfaces(ids []ttable.WordID, vocab corpus.Vocabulary) string {
	out := make([]byte, 0, len(ids)*4)
	for i, id := range ids {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, vocab.String(id)...)
	}
	return string(out)
}

// logPoisson is the log probability mass of a Poisson(lambda) distribution
// at k, used as the target-length prior in test-set scoring.
func logPoisson(k, lambda float64) float64 {
	return distuv.Poisson{Lambda: lambda}.LogProb(k)
}
