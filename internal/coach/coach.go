// Package coach implements the coherence engine: confidence scoring, rule
// match collection, conflict resolution, rewriting, and report assembly.
// The engine is a pure function of its input against an immutable rule
// library; it holds no state between calls and is safe for concurrent use.
package coach

import (
	"math"
	"sort"
	"strings"

	"github.com/lunabriana98-creator/luna-app/internal/models"
	"github.com/lunabriana98-creator/luna-app/internal/rules"
)

// Coach rewrites unconfident phrasing using a rule library supplied at
// construction time.
type Coach struct {
	library *rules.Library
}

// New creates a Coach backed by the given rule library.
func New(library *rules.Library) *Coach {
	return &Coach{library: library}
}

// Score computes the confidence of text on a 0-100 scale. Higher means less
// hedging density. Empty or whitespace-only text scores exactly 100: there
// is nothing to criticize. The metric is per-word, so the same hedge costs
// more in a short text than in a long one, and a word matched by several
// distinct rules is penalized by each of them.
func (c *Coach) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 100
	}

	words := len(strings.Fields(text))
	if words == 0 {
		words = 1
	}

	penalty := 0
	c.library.Each(func(_ rules.Category, r rules.Rule) {
		penalty += len(r.Pattern.FindAllStringIndex(text, -1)) * r.Weight
	})

	score := 100 - float64(penalty)/float64(words)*100
	return math.Max(0, math.Min(100, score))
}

// match is one located rule hit in the original text.
type match struct {
	start, end  int
	replacement string
	explanation string
	weight      int
	changeType  models.ChangeType
}

// collectMatches finds every rule match across all categories, annotated
// with absolute byte spans in text. Order within the result follows catalog
// order for equal starts, which the conflict-resolution sort preserves.
func (c *Coach) collectMatches(text string) []match {
	var matches []match
	c.library.Each(func(cat rules.Category, r rules.Rule) {
		for _, span := range r.Pattern.FindAllStringIndex(text, -1) {
			matches = append(matches, match{
				start:       span[0],
				end:         span[1],
				replacement: r.Replacement,
				explanation: r.Explanation,
				weight:      r.Weight,
				changeType:  cat.ChangeType(),
			})
		}
	})
	return matches
}

// Transform rewrites text toward assertive phrasing and records every edit.
// It never fails: empty input yields the degenerate report with both scores
// at 100 and no changes.
//
// Conflict resolution: matches are sorted stably by start offset, so ties
// keep catalog order and the more specific rule listed first wins. A single
// cursor scans left to right; any match starting before the cursor overlaps
// an already-consumed span and is skipped entirely. Skipped matches are not
// recorded.
func (c *Coach) Transform(text string) models.Report {
	if strings.TrimSpace(text) == "" {
		report := models.Report{
			Original:         text,
			Transformed:      text,
			Changes:          []models.Change{},
			ConfidenceBefore: 100,
			ConfidenceAfter:  100,
		}
		report.Coherence = coherence(report.ConfidenceBefore, report.ConfidenceAfter)
		return report
	}

	confidenceBefore := c.Score(text)

	matches := c.collectMatches(text)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].start < matches[j].start
	})

	var out strings.Builder
	changes := []models.Change{}
	cursor := 0
	for _, m := range matches {
		if m.start < cursor {
			continue
		}
		out.WriteString(text[cursor:m.start])
		out.WriteString(m.replacement)

		after := m.replacement
		if after == "" {
			after = models.RemovedSentinel
		}
		changes = append(changes, models.Change{
			Start:       m.start,
			End:         m.end,
			Before:      text[m.start:m.end],
			After:       after,
			ChangeType:  m.changeType,
			Explanation: m.explanation,
			Impact:      m.weight,
		})
		cursor = m.end
	}
	out.WriteString(text[cursor:])

	transformed := normalize(out.String())
	confidenceAfter := c.Score(transformed)

	wordsRemoved := len(strings.Fields(text)) - len(strings.Fields(transformed))
	if wordsRemoved < 0 {
		wordsRemoved = 0
	}

	report := models.Report{
		Original:          text,
		Transformed:       transformed,
		Changes:           changes,
		ConfidenceBefore:  confidenceBefore,
		ConfidenceAfter:   confidenceAfter,
		TotalWordsRemoved: wordsRemoved,
		TotalChanges:      len(changes),
	}
	report.Coherence = coherence(confidenceBefore, confidenceAfter)
	return report
}
