// Package align computes fast_align's parametric alignment prior: a
// distribution over source positions (and, optionally, NULL) for a given
// target position that is biased toward the sentence diagonal i/I ≈ j/J.
package align

import "math"

// DiagonalPrior holds the alignment-prior configuration and a reusable
// scratch buffer, mirroring the single reused vector<double> unnormed_a_i
// the original tool threads through every sentence rather than
// reallocating per call.
type DiagonalPrior struct {
	FavorDiagonal   bool
	UseNull         bool
	ProbAlignNull   float64
	DiagonalTension float64

	unnormedA []float64
}

func (this *DiagonalPrior) grow(n int) {
	if n > len(this.unnormedA) {
		this.unnormedA = make([]float64, n)
	}
}

// Weights fills probs[0:srcLen+1] with P(a=NULL) (probs[0]) and P(a=i) for
// i in [1, srcLen] (probs[i]), for target position j out of trgLen target
// positions. probs must already have length srcLen+1; the caller
// multiplies these prior weights by the lexical probability T(f|e) to get
// the unnormalized posterior.
func (this *DiagonalPrior) Weights(probs []float64, srcLen, trgLen, j int) {
	probAI := 1.0 / float64(srcLen+boolToInt(this.UseNull))
	probNotNull := 1.0

	if this.UseNull {
		if this.FavorDiagonal {
			probAI = this.ProbAlignNull
		}
		probs[0] = probAI
		probNotNull = 1.0 - this.ProbAlignNull
	} else {
		probs[0] = 0
	}

	if !this.FavorDiagonal {
		for i := 0; i < srcLen; i++ {
			probs[i+1] = probAI
		}
		return
	}

	this.grow(srcLen)
	jOverTrgLen := float64(j) / float64(trgLen)
	var z float64
	for i := 0; i < srcLen; i++ {
		w := math.Exp(-math.Abs(float64(i)/float64(srcLen)-jOverTrgLen) * this.DiagonalTension)
		this.unnormedA[i] = w
		z += w
	}
	z /= probNotNull
	for i := 0; i < srcLen; i++ {
		probs[i+1] = this.unnormedA[i] / z
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
