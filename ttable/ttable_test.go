package ttable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableProbUnseen(t *testing.T) {
	tab := NewTable()
	assert.Equal(t, unseenProb, tab.Prob(WordID(1), WordID(2)))
}

func TestTableIncrementAndProb(t *testing.T) {
	tab := NewTable()
	tab.Increment(WordID(1), WordID(2), 3.0)
	tab.Increment(WordID(1), WordID(2), 1.5)
	assert.Equal(t, 4.5, tab.Prob(WordID(1), WordID(2)))
}

func TestTableNormalizeSumsToOne(t *testing.T) {
	tab := NewTable()
	tab.Increment(WordID(1), WordID(2), 2.0)
	tab.Increment(WordID(1), WordID(3), 6.0)
	tab.Normalize()

	var sum float64
	tab.ForEachTarget(WordID(1), func(_ WordID, v float64) { sum += v })
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, 0.25, tab.Prob(WordID(1), WordID(2)), 1e-12)
	assert.InDelta(t, 0.75, tab.Prob(WordID(1), WordID(3)), 1e-12)
}

func TestTableNormalizeLeavesZeroRowsAlone(t *testing.T) {
	tab := NewTable()
	tab.Normalize()
	assert.Equal(t, unseenProb, tab.Prob(WordID(0), WordID(0)))
}

func TestTableNormalizeVBRequiresPositiveAlpha(t *testing.T) {
	tab := NewTable()
	tab.Increment(WordID(1), WordID(2), 1.0)
	assert.ErrorIs(t, tab.NormalizeVB(0), ErrNonPositiveAlpha)
	assert.ErrorIs(t, tab.NormalizeVB(-1), ErrNonPositiveAlpha)
}

func TestTableNormalizeVBMatchesClosedForm(t *testing.T) {
	tab := NewTable()
	tab.Increment(WordID(1), WordID(2), 2.0)
	tab.Increment(WordID(1), WordID(3), 6.0)
	alpha := 0.5
	assert.NoError(t, tab.NormalizeVB(alpha))

	s := (2.0 + alpha) + (6.0 + alpha)
	want2 := math.Exp(digamma(2.0+alpha) - digamma(s))
	want3 := math.Exp(digamma(6.0+alpha) - digamma(s))
	assert.InDelta(t, want2, tab.Prob(WordID(1), WordID(2)), 1e-12)
	assert.InDelta(t, want3, tab.Prob(WordID(1), WordID(3)), 1e-12)
}

func TestTableForEachSourceOrder(t *testing.T) {
	tab := NewTable()
	tab.Increment(WordID(3), WordID(0), 1)
	tab.Increment(WordID(1), WordID(0), 1)

	var seen []WordID
	tab.ForEachSource(func(e WordID) { seen = append(seen, e) })
	assert.Equal(t, []WordID{WordID(1), WordID(3)}, seen)
}
