// Package export serializes transformation reports for external consumers:
// a stable JSON record, a plain-text summary, and an inline diff of the
// original against the rewrite.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/lunabriana98-creator/luna-app/internal/models"
)

// ChangeRecord is one edit in the exported record.
type ChangeRecord struct {
	ChangeType  string `json:"change_type"`
	Before      string `json:"before"`
	After       string `json:"after"`
	Explanation string `json:"explanation"`
	Impact      int    `json:"impact"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// Record is the stable export shape for a report. It is decoupled from the
// internal model so the wire contract survives model changes.
type Record struct {
	ConfidenceBefore  float64        `json:"confidence_before"`
	ConfidenceAfter   float64        `json:"confidence_after"`
	TotalChanges      int            `json:"total_changes"`
	TotalWordsRemoved int            `json:"total_words_removed"`
	Original          string         `json:"original"`
	Transformed       string         `json:"transformed"`
	Changes           []ChangeRecord `json:"changes"`
}

// NewRecord builds an export record from a report.
func NewRecord(r models.Report) Record {
	changes := make([]ChangeRecord, 0, len(r.Changes))
	for _, ch := range r.Changes {
		changes = append(changes, ChangeRecord{
			ChangeType:  string(ch.ChangeType),
			Before:      ch.Before,
			After:       ch.After,
			Explanation: ch.Explanation,
			Impact:      ch.Impact,
			Start:       ch.Start,
			End:         ch.End,
		})
	}
	return Record{
		ConfidenceBefore:  r.ConfidenceBefore,
		ConfidenceAfter:   r.ConfidenceAfter,
		TotalChanges:      r.TotalChanges,
		TotalWordsRemoved: r.TotalWordsRemoved,
		Original:          r.Original,
		Transformed:       r.Transformed,
		Changes:           changes,
	}
}

// JSON renders the report as an indented JSON record.
func JSON(r models.Report) ([]byte, error) {
	data, err := json.MarshalIndent(NewRecord(r), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Summary renders a human-readable plain-text report.
func Summary(r models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Confidence: %.0f/100 -> %.0f/100 (%+.0f)\n",
		r.ConfidenceBefore, r.ConfidenceAfter, r.ConfidenceAfter-r.ConfidenceBefore)
	fmt.Fprintf(&b, "Changes: %d | Words removed: %d\n", r.TotalChanges, r.TotalWordsRemoved)
	fmt.Fprintf(&b, "\nBefore: %s\nAfter:  %s\n", r.Original, r.Transformed)

	if len(r.Changes) == 0 {
		b.WriteString("\nNo changes needed.\n")
		return b.String()
	}

	b.WriteString("\n")
	for i, ch := range r.Changes {
		fmt.Fprintf(&b, "%d. [%s] %q -> %q (+%d confidence)\n   %s\n",
			i+1, ch.ChangeType, ch.Before, ch.After, ch.Impact, ch.Explanation)
	}
	return b.String()
}

// InlineDiff renders the original-to-transformed edit as an inline diff,
// deletions wrapped in [-...-] and insertions in {+...+}.
func InlineDiff(r models.Report) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(r.Original, r.Transformed, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-")
			b.WriteString(d.Text)
			b.WriteString("-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+")
			b.WriteString(d.Text)
			b.WriteString("+}")
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
