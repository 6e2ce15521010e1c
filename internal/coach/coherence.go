package coach

import (
	"math"

	"github.com/lunabriana98-creator/luna-app/internal/models"
)

// coherence derives the psi/delta/omega view of one rewrite from the two
// confidence scores. Psi is the chaos density of the input, delta how much of
// that chaos the transform eliminated, omega the coherence of the result.
// Conservation measures how closely omega-squared tracks psi-squared plus
// delta-squared; efficiency is their ratio.
func coherence(confidenceBefore, confidenceAfter float64) models.CoherenceMetrics {
	psi := (100 - confidenceBefore) / 100
	psiAfter := (100 - confidenceAfter) / 100

	delta := (psi - psiAfter) / math.Max(psi, 0.1)
	delta = math.Max(0, math.Min(1, delta))

	omega := 1 - psiAfter

	psiSq := psi * psi
	deltaSq := delta * delta
	omegaSq := omega * omega

	conservation := 1 - math.Abs(omegaSq-(psiSq+deltaSq))
	efficiency := omegaSq / math.Max(psiSq+deltaSq, 0.01)

	state := models.StateCoherent
	switch {
	case psi > 0.6:
		state = models.StateChaos
	case delta > 0.3:
		state = models.StateTransform
	}

	return models.CoherenceMetrics{
		Psi:          psi,
		Delta:        delta,
		Omega:        omega,
		Conservation: conservation,
		Efficiency:   efficiency,
		State:        state,
	}
}
