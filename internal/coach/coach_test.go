package coach

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunabriana98-creator/luna-app/internal/models"
	"github.com/lunabriana98-creator/luna-app/internal/rules"
)

// hedgyCorpus is a spread of weak phrasing used by the property tests.
var hedgyCorpus = []string{
	"I think that maybe we could possibly try this approach.",
	"Sorry to bother you, but I was just wondering if maybe you might be able to help?",
	"their team is doing better than us I don't know if ill be able to pull this off",
	"The results seem to kind of suggest that we might be able to see some sort of improvement, probably.",
	"I'm not sure if this is really the right call, what do you think?",
	"Maybe we should basically just wait and see, perhaps?",
	"I feel like the report could be better but I can't fix it.",
	"It was just reviewed by the team and it seems to be fine, probably.",
	"I dont know if im the right person for this.",
	"This approach tends to be slow and might be risky.",
}

func TestScoreEmptyInput(t *testing.T) {
	c := New(rules.Default())

	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"spaces", "   "},
		{"tabs and newlines", "\t\n  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Score(tt.input); got != 100 {
				t.Errorf("Score(%q) = %v, want 100", tt.input, got)
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	c := New(rules.Default())

	inputs := append([]string{
		"",
		"The quarterly revenue increased by twelve percent.",
		"maybe maybe maybe",
		strings.Repeat("I think that maybe ", 50),
	}, hedgyCorpus...)

	for _, input := range inputs {
		score := c.Score(input)
		if score < 0 || score > 100 {
			t.Errorf("Score(%q) = %v, out of [0,100]", input, score)
		}
	}
}

func TestScoreConfidentText(t *testing.T) {
	c := New(rules.Default())

	// Zero rule matches means zero penalty, which the formula maps to 100.
	score := c.Score("The quarterly revenue increased by twelve percent.")
	if score != 100 {
		t.Errorf("expected 100 for confident text, got %v", score)
	}
}

func TestTransformEmptyInput(t *testing.T) {
	c := New(rules.Default())

	report := c.Transform("")
	assert.Empty(t, report.Changes)
	assert.Equal(t, float64(100), report.ConfidenceBefore)
	assert.Equal(t, float64(100), report.ConfidenceAfter)
	assert.Equal(t, 0, report.TotalChanges)
	assert.Equal(t, 0, report.TotalWordsRemoved)
}

func TestTransformConfidentTextUntouched(t *testing.T) {
	c := New(rules.Default())

	report := c.Transform("The quarterly revenue increased by twelve percent.")
	assert.Empty(t, report.Changes)
	assert.Equal(t, float64(100), report.ConfidenceBefore)
	assert.Equal(t, float64(100), report.ConfidenceAfter)
	assert.Equal(t, "The quarterly revenue increased by twelve percent.", report.Transformed)
}

func TestTransformHedgedSentence(t *testing.T) {
	c := New(rules.Default())

	report := c.Transform("I think that maybe we could possibly try this approach.")

	if report.TotalChanges < 3 {
		t.Fatalf("expected at least 3 changes, got %d: %+v", report.TotalChanges, report.Changes)
	}
	assert.Greater(t, report.ConfidenceAfter, report.ConfidenceBefore)

	removed := map[string]bool{}
	for _, ch := range report.Changes {
		removed[strings.ToLower(strings.TrimSpace(ch.Before))] = true
	}
	for _, want := range []string{"i think that", "maybe", "possibly"} {
		if !removed[want] {
			t.Errorf("expected %q to be removed, changes: %+v", want, report.Changes)
		}
	}
}

func TestTransformApologeticQuestion(t *testing.T) {
	c := New(rules.Default())

	report := c.Transform("Sorry to bother you, but I was just wondering if maybe you might be able to help?")

	byBefore := map[string]string{}
	for _, ch := range report.Changes {
		byBefore[strings.ToLower(strings.TrimSpace(ch.Before))] = ch.After
	}

	assert.Equal(t, models.RemovedSentinel, byBefore["sorry to bother"])
	assert.Equal(t, models.RemovedSentinel, byBefore["just"])
	assert.Equal(t, "can", byBefore["might be able to"])
	assert.Greater(t, report.TotalWordsRemoved, 0)
	assert.True(t, strings.HasSuffix(report.Transformed, "."),
		"trailing question mark should become a period: %q", report.Transformed)
	assert.False(t, strings.Contains(report.Transformed, "?"))
}

func TestTransformScoresMatchScore(t *testing.T) {
	c := New(rules.Default())

	for _, input := range hedgyCorpus {
		report := c.Transform(input)
		assert.Equal(t, c.Score(input), report.ConfidenceBefore, "input: %q", input)
		assert.Equal(t, c.Score(report.Transformed), report.ConfidenceAfter, "input: %q", input)
		assert.Equal(t, len(report.Changes), report.TotalChanges, "input: %q", input)
	}
}

func TestChangeOffsetsAnchorToOriginal(t *testing.T) {
	c := New(rules.Default())

	for _, input := range hedgyCorpus {
		report := c.Transform(input)
		for _, ch := range report.Changes {
			require.GreaterOrEqual(t, ch.Start, 0)
			require.LessOrEqual(t, ch.End, len(input))
			require.Less(t, ch.Start, ch.End)
			if got := input[ch.Start:ch.End]; got != ch.Before {
				t.Errorf("offset mismatch for %q: original[%d:%d] = %q, before = %q",
					input, ch.Start, ch.End, got, ch.Before)
			}
		}
	}
}

func TestChangesOrderedLeftToRight(t *testing.T) {
	c := New(rules.Default())

	for _, input := range hedgyCorpus {
		report := c.Transform(input)
		prevEnd := 0
		for _, ch := range report.Changes {
			if ch.Start < prevEnd {
				t.Errorf("overlapping or out-of-order change in %q: start %d before previous end %d",
					input, ch.Start, prevEnd)
			}
			prevEnd = ch.End
		}
	}
}

// Re-running the transform on its own output must never regress confidence.
func TestTransformConvergence(t *testing.T) {
	c := New(rules.Default())

	for _, input := range hedgyCorpus {
		first := c.Transform(input)
		second := c.Transform(first.Transformed)
		if second.ConfidenceAfter < first.ConfidenceAfter {
			t.Errorf("confidence regressed on second pass for %q: %v -> %v",
				input, first.ConfidenceAfter, second.ConfidenceAfter)
		}
	}
}

func TestTransformWordsRemovedNeverNegative(t *testing.T) {
	c := New(rules.Default())

	// Grammar fixes can add words ("ill" -> "I'll be able to" stays, but
	// "dont" -> "don't" keeps count; the clamp still must hold everywhere).
	inputs := append([]string{"ill be able to finish", "I dont agree"}, hedgyCorpus...)
	for _, input := range inputs {
		report := c.Transform(input)
		if report.TotalWordsRemoved < 0 {
			t.Errorf("negative words removed for %q: %d", input, report.TotalWordsRemoved)
		}
	}
}

func TestOverlapResolutionFirstMatchWins(t *testing.T) {
	// Two rules with the same start: the one listed first in the catalog
	// must win and the shorter rival must not be recorded.
	lib := rules.NewLibrary([]rules.RuleSet{
		{Category: rules.WeakVerbs, Rules: []rules.Rule{
			{Pattern: regexp.MustCompile(`(?i)\bmight be able to\b`), Replacement: "can", Explanation: "specific", Weight: 18},
			{Pattern: regexp.MustCompile(`(?i)\bmight be\b`), Replacement: "is", Explanation: "general", Weight: 15},
		}},
	})
	c := New(lib)

	report := c.Transform("we might be able to win")
	require.Len(t, report.Changes, 1)
	assert.Equal(t, "might be able to", report.Changes[0].Before)
	assert.Equal(t, "can", report.Changes[0].After)
	assert.Equal(t, "We can win", report.Transformed)
}

func TestTransformUppercasesFirstRune(t *testing.T) {
	c := New(rules.Default())

	report := c.Transform("maybe this works")
	if report.Transformed == "" {
		t.Fatal("expected non-empty output")
	}
	first := report.Transformed[0]
	if first < 'A' || first > 'Z' {
		t.Errorf("expected uppercase first character, got %q", report.Transformed)
	}
}

func TestCoherenceMetrics(t *testing.T) {
	c := New(rules.Default())

	report := c.Transform("I think that maybe we could possibly try this approach.")
	m := report.Coherence

	assert.GreaterOrEqual(t, m.Psi, 0.0)
	assert.LessOrEqual(t, m.Psi, 1.0)
	assert.GreaterOrEqual(t, m.Delta, 0.0)
	assert.LessOrEqual(t, m.Delta, 1.0)
	assert.GreaterOrEqual(t, m.Omega, 0.0)
	assert.LessOrEqual(t, m.Omega, 1.0)
	assert.NotEmpty(t, m.State)

	// Fully hedged input scores 0, so psi is 1 and the state is chaos.
	assert.Equal(t, models.StateChaos, m.State)

	// Confident input holds steady at coherent.
	calm := c.Transform("The quarterly revenue increased by twelve percent.")
	assert.Equal(t, models.StateCoherent, calm.Coherence.State)
	assert.Equal(t, 1.0, calm.Coherence.Omega)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapse whitespace", "hello   world", "Hello world"},
		{"trim", "  hello  ", "Hello"},
		{"space before punctuation", "hello , world .", "Hello, world."},
		{"space after punctuation", "hello,world", "Hello, world"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"already clean", "Hello world.", "Hello world."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize(tt.input); got != tt.expected {
				t.Errorf("normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
