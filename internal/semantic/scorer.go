package semantic

import (
	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// DefaultThreshold is the minimum line similarity reported as a hit.
const DefaultThreshold = 0.80

// stemEqualScore ranks a stem match ("authenticate" vs "authentication")
// just below an exact token match.
const stemEqualScore = 0.95

// scorer holds the tokenized and stemmed form of one query so per-line
// scoring does not re-stem the query terms.
type scorer struct {
	tokens []string
	stems  []string
}

func newScorer(queryText string) *scorer {
	tokens := Tokenize(queryText)
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = porter2.Stem(tok)
	}
	return &scorer{tokens: tokens, stems: stems}
}

func (s *scorer) empty() bool {
	return len(s.tokens) == 0
}

// scoreLine rates how well a line's tokens cover the query terms. Each query
// token contributes its best similarity against any line token; the line
// score is the mean of those contributions, so every query term must find a
// reasonable counterpart for the line to score well.
func (s *scorer) scoreLine(lineTokens []string) float64 {
	if len(s.tokens) == 0 || len(lineTokens) == 0 {
		return 0
	}

	lineStems := make([]string, len(lineTokens))
	for i, tok := range lineTokens {
		lineStems[i] = porter2.Stem(tok)
	}

	total := 0.0
	for qi, qTok := range s.tokens {
		best := 0.0
		for li, lTok := range lineTokens {
			sim := tokenSimilarity(qTok, s.stems[qi], lTok, lineStems[li])
			if sim > best {
				best = sim
				if best == 1.0 {
					break
				}
			}
		}
		total += best
	}
	return total / float64(len(s.tokens))
}

func tokenSimilarity(qTok, qStem, lTok, lStem string) float64 {
	if qTok == lTok {
		return 1.0
	}
	if qStem == lStem {
		return stemEqualScore
	}
	sim, err := edlib.StringsSimilarity(qTok, lTok, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(sim)
}
