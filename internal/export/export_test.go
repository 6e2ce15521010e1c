package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunabriana98-creator/luna-app/internal/coach"
	"github.com/lunabriana98-creator/luna-app/internal/rules"
)

func TestJSONRecordFields(t *testing.T) {
	c := coach.New(rules.Default())
	report := c.Transform("I think that maybe we could possibly try this approach.")

	data, err := JSON(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, field := range []string{
		"confidence_before", "confidence_after", "total_changes",
		"total_words_removed", "original", "transformed", "changes",
	} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("exported record missing field %q", field)
		}
	}

	changes, ok := decoded["changes"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, changes)
	first, ok := changes[0].(map[string]interface{})
	require.True(t, ok)
	for _, field := range []string{"change_type", "before", "after", "explanation", "impact", "start", "end"} {
		if _, ok := first[field]; !ok {
			t.Errorf("exported change missing field %q", field)
		}
	}
}

func TestSummary(t *testing.T) {
	c := coach.New(rules.Default())
	report := c.Transform("Sorry to bother you, but I was just wondering if maybe you might be able to help?")

	summary := Summary(report)
	assert.Contains(t, summary, "Confidence:")
	assert.Contains(t, summary, "Before:")
	assert.Contains(t, summary, "After:")
	assert.Contains(t, summary, "might be able to")
}

func TestSummaryNoChanges(t *testing.T) {
	c := coach.New(rules.Default())
	report := c.Transform("The quarterly revenue increased by twelve percent.")

	assert.Contains(t, Summary(report), "No changes needed.")
}

func TestInlineDiff(t *testing.T) {
	c := coach.New(rules.Default())
	report := c.Transform("I think that maybe we could possibly try this approach.")

	diff := InlineDiff(report)
	if !strings.Contains(diff, "[-") {
		t.Errorf("expected deletions in diff, got %q", diff)
	}
}
