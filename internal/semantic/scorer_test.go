package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreLine_ExactMatch(t *testing.T) {
	sc := newScorer("authentication")
	score := sc.scoreLine(Tokenize("check authentication token"))
	assert.Equal(t, 1.0, score)
}

func TestScoreLine_StemEquivalence(t *testing.T) {
	sc := newScorer("authenticate")

	// "authenticate" and "authentication" share the Porter2 stem.
	score := sc.scoreLine(Tokenize("user authentication flow"))
	assert.InDelta(t, stemEqualScore, score, 0.001)
}

func TestScoreLine_UnrelatedLineScoresLow(t *testing.T) {
	sc := newScorer("authenticate")
	score := sc.scoreLine(Tokenize("the zebra jumped over"))
	assert.Less(t, score, DefaultThreshold)
}

func TestScoreLine_AllQueryTermsMustBeCovered(t *testing.T) {
	sc := newScorer("parse query")

	// Both terms present: perfect score.
	assert.Equal(t, 1.0, sc.scoreLine(Tokenize("parseQuery(input)")))

	// Only one term present: the mean drops well below a full match.
	partial := sc.scoreLine(Tokenize("parse the input"))
	assert.Less(t, partial, 1.0)
}

func TestScoreLine_EmptyInputs(t *testing.T) {
	sc := newScorer("something")
	assert.Equal(t, 0.0, sc.scoreLine(nil))

	empty := newScorer("")
	assert.True(t, empty.empty())
	assert.Equal(t, 0.0, empty.scoreLine(Tokenize("anything at all")))
}
