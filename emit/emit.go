// Package emit writes the two outputs the final EM iteration can produce:
// per-sentence Viterbi alignments, streamed during training, and a pruned,
// thresholded dump of the learned lexical table, written once training
// completes.
package emit

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/nlpcore/fastalign/corpus"
	"github.com/nlpcore/fastalign/ttable"
)

// ViterbiSet records, for each source word, every target word that some
// training position selected as the posterior argmax on the final EM
// iteration. Population is unconditional on the final iteration; only the
// parameter dump's rescue behavior is gated by a flag (see Dump).
type ViterbiSet struct {
	bySource map[ttable.WordID]map[ttable.WordID]struct{}
}

// NewViterbiSet returns an empty ViterbiSet.
func NewViterbiSet() *ViterbiSet {
	return &ViterbiSet{bySource: make(map[ttable.WordID]map[ttable.WordID]struct{})}
}

// Add records that e was the winning source word for a position that
// emitted target word f.
func (this *ViterbiSet) Add(e, f ttable.WordID) {
	targets, ok := this.bySource[e]
	if !ok {
		targets = make(map[ttable.WordID]struct{})
		this.bySource[e] = targets
	}
	targets[f] = struct{}{}
}

// Has reports whether (e, f) was ever a winning Viterbi pair.
func (this *ViterbiSet) Has(e, f ttable.WordID) bool {
	targets, ok := this.bySource[e]
	if !ok {
		return false
	}
	_, ok = targets[f]
	return ok
}

// AlignmentWriter streams "i-j" alignment tokens one sentence at a time,
// flushing after every sentence so that an abort mid-corpus leaves a
// usable partial file rather than a half-written line.
type AlignmentWriter struct {
	w       *bufio.Writer
	reverse bool
	wrote   bool
}

// NewAlignmentWriter wraps w. When reverse is set, tokens are emitted as
// j-i instead of i-j, matching training that swapped source and target
// before estimating.
func NewAlignmentWriter(w io.Writer, reverse bool) *AlignmentWriter {
	return &AlignmentWriter{w: bufio.NewWriter(w), reverse: reverse}
}

// BeginSentence resets the inter-token separator state for a new sentence.
func (this *AlignmentWriter) BeginSentence() {
	this.wrote = false
}

// Token emits one alignment edge for the sentence in progress.
func (this *AlignmentWriter) Token(srcIdx, trgIdx int) {
	if this.wrote {
		this.w.WriteByte(' ')
	}
	this.wrote = true
	if this.reverse {
		fmt.Fprintf(this.w, "%d-%d", trgIdx, srcIdx)
	} else {
		fmt.Fprintf(this.w, "%d-%d", srcIdx, trgIdx)
	}
}

// EndSentence terminates the current sentence's alignment line and flushes
// it to the underlying writer.
func (this *AlignmentWriter) EndSentence() error {
	this.w.WriteByte('\n')
	return this.w.Flush()
}

// Dump writes the pruned, thresholded lexical table to w: one line per
// surviving (e, f) pair, "<e_surface> <f_surface> <log probability>". A
// pair survives if its probability is at least the per-source maximum
// scaled by 10^beamThreshold (so beamThreshold 0 keeps each source word's
// maximum), or — when addViterbi is set — if it was ever a
// winning Viterbi edge, which guarantees every alignment edge produced
// during training is still reachable after pruning. Output is sorted by
// (e_surface, f_surface) for determinism across runs.
func Dump(w io.Writer, table *ttable.Table, vocab corpus.Vocabulary, beamThreshold float64, viterbi *ViterbiSet, addViterbi bool) error {
	threshold := math.Pow(10, beamThreshold)

	type row struct {
		eSurface, fSurface string
		logProb            float64
	}
	var rows []row

	table.ForEachSource(func(e ttable.WordID) {
		var maxP float64
		table.ForEachTarget(e, func(_ ttable.WordID, p float64) {
			if p > maxP {
				maxP = p
			}
		})
		cut := maxP * threshold
		eSurface := vocab.String(e)
		table.ForEachTarget(e, func(f ttable.WordID, p float64) {
			if p >= cut || (addViterbi && viterbi.Has(e, f)) {
				rows = append(rows, row{eSurface, vocab.String(f), math.Log(p)})
			}
		})
	})

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].eSurface != rows[j].eSurface {
			return rows[i].eSurface < rows[j].eSurface
		}
		return rows[i].fSurface < rows[j].fSurface
	})

	bw := bufio.NewWriter(w)
	for _, r := range rows {
		if _, err := fmt.Fprintf(bw, "%s %s %v\n", r.eSurface, r.fSurface, r.logProb); err != nil {
			return err
		}
	}
	return bw.Flush()
}
