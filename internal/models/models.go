package models

import "time"

// RemovedSentinel is recorded as a Change's "after" text when a rule deletes
// the matched span outright.
const RemovedSentinel = "[removed]"

// ChangeType is the coarse label attached to a recorded change. The set is
// closed; new rule categories must map onto one of these.
type ChangeType string

const (
	ChangeHedgingRemoved        ChangeType = "hedging_removed"
	ChangeUncertaintyRemoved    ChangeType = "uncertainty_removed"
	ChangeWeakVerbStrengthened  ChangeType = "weak_verb_strengthened"
	ChangePassiveToActive       ChangeType = "passive_to_active"
	ChangeQuestionRemoved       ChangeType = "question_removed"
	ChangeQualifierRemoved      ChangeType = "qualifier_removed"
	ChangeGrammarFixed          ChangeType = "grammar_fixed"
)

// Valid reports whether ct is one of the known change types.
func (ct ChangeType) Valid() bool {
	switch ct {
	case ChangeHedgingRemoved, ChangeUncertaintyRemoved, ChangeWeakVerbStrengthened,
		ChangePassiveToActive, ChangeQuestionRemoved, ChangeQualifierRemoved,
		ChangeGrammarFixed:
		return true
	}
	return false
}

// Change is one concrete edit applied during a rewrite. Start and End are
// byte offsets into the original text; Original[Start:End] always equals
// Before exactly.
type Change struct {
	Start       int        `json:"start"`
	End         int        `json:"end"`
	Before      string     `json:"before"`
	After       string     `json:"after"`
	ChangeType  ChangeType `json:"change_type"`
	Explanation string     `json:"explanation"`
	Impact      int        `json:"impact"`
}

// ProcessingState classifies a rewrite by how much work it did.
type ProcessingState string

const (
	StateChaos     ProcessingState = "chaos"     // input was dominated by weak phrasing
	StateTransform ProcessingState = "transform" // meaningful rewriting happened
	StateCoherent  ProcessingState = "coherent"  // input was already confident
)

// CoherenceMetrics summarizes a rewrite in normalized [0,1] terms: psi is the
// chaos density of the input, delta the effectiveness of the transform, and
// omega the coherence of the result.
type CoherenceMetrics struct {
	Psi          float64         `json:"psi"`
	Delta        float64         `json:"delta"`
	Omega        float64         `json:"omega"`
	Conservation float64         `json:"conservation"`
	Efficiency   float64         `json:"efficiency"`
	State        ProcessingState `json:"state"`
}

// Report is the complete result of one transform invocation. It is built
// once and never mutated; callers own its lifetime.
type Report struct {
	Original          string           `json:"original"`
	Transformed       string           `json:"transformed"`
	Changes           []Change         `json:"changes"`
	ConfidenceBefore  float64          `json:"confidence_before"`
	ConfidenceAfter   float64          `json:"confidence_after"`
	TotalWordsRemoved int              `json:"total_words_removed"`
	TotalChanges      int              `json:"total_changes"`
	Coherence         CoherenceMetrics `json:"coherence"`
}

// Revision is a persisted transform: a Report plus storage identity.
type Revision struct {
	ID        string    `json:"id"`
	Report    Report    `json:"report"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStats aggregates stored revisions into trend figures.
type SessionStats struct {
	TotalRevisions     int     `json:"total_revisions"`
	AverageImprovement float64 `json:"average_improvement"`
	BestImprovement    float64 `json:"best_improvement"`
	TotalChanges       int     `json:"total_changes"`
	TotalWordsRemoved  int     `json:"total_words_removed"`
}
