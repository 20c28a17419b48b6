package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightsUniformWhenDiagonalDisabled(t *testing.T) {
	p := &DiagonalPrior{UseNull: true}
	probs := make([]float64, 5)
	p.Weights(probs, 4, 6, 2)

	want := 1.0 / 5.0
	for _, v := range probs {
		assert.InDelta(t, want, v, 1e-12)
	}
}

func TestWeightsSumToOneWithNullAndDiagonal(t *testing.T) {
	p := &DiagonalPrior{
		FavorDiagonal:   true,
		UseNull:         true,
		ProbAlignNull:   0.08,
		DiagonalTension: 4.0,
	}
	probs := make([]float64, 8)
	for j := 0; j < 5; j++ {
		p.Weights(probs, 7, 5, j)
		var sum float64
		for _, v := range probs {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
		assert.InDelta(t, 0.08, probs[0], 1e-12)
	}
}

func TestWeightsZeroTensionReproducesUniform(t *testing.T) {
	p := &DiagonalPrior{
		FavorDiagonal:   true,
		UseNull:         false,
		DiagonalTension: 0,
	}
	probs := make([]float64, 6)
	p.Weights(probs, 5, 3, 1)

	assert.Equal(t, 0.0, probs[0])
	want := 1.0 / 5.0
	for i := 1; i < len(probs); i++ {
		assert.InDelta(t, want, probs[i], 1e-12)
	}
}

func TestWeightsPeaksNearDiagonal(t *testing.T) {
	p := &DiagonalPrior{
		FavorDiagonal:   true,
		UseNull:         false,
		DiagonalTension: 4.0,
	}
	probs := make([]float64, 11)
	// target position exactly 3/10 of the way through a 10-long target,
	// source length 10: the prior should peak near source index 3.
	p.Weights(probs, 10, 10, 3)

	maxIdx := 1
	for i := 2; i < len(probs); i++ {
		if probs[i] > probs[maxIdx] {
			maxIdx = i
		}
	}
	assert.Equal(t, 4, maxIdx) // probs[i] is 1-indexed; source index 3 is probs[4]
}
