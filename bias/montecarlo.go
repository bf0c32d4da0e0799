package bias

import (
	"math"

	"github.com/pkg/errors"
)

// proposeMove draws a symmetric move of half-width delta around cur from the
// uniform deviate r and reflects once at each bound. The reflection is not
// iterated: a move wider than the band can still land outside it, and the
// caller accepts such a proposal as-is.
func proposeMove(r float64, cur float64, delta float64, min float64, max float64) float64 {
	next := cur + (-delta + 2.0*delta*r)
	if next > max {
		next = 2.0*max - next
	}
	if next < min {
		next = 2.0*min - next
	}
	return next
}

// shareScale forces a single value onto every replica: the replica
// representative broadcasts over the inter group, then each representative
// broadcasts within its intra group. Both stages use root 0, so replica 0's
// value wins.
func (m *Metainference) shareScale(scale *float64) error {
	m.scaleBuf[0] = *scale
	if m.topo.Intra.Rank() == 0 {
		if err := m.topo.Inter.BcastFloat64s(m.scaleBuf, 0); err != nil {
			return errors.Wrap(err, "Scale consensus failed across replicas")
		}
	}
	if err := m.topo.Intra.BcastFloat64s(m.scaleBuf, 0); err != nil {
		return errors.Wrap(err, "Scale consensus failed within the replica")
	}
	*scale = m.scaleBuf[0]
	return nil
}

// doMonteCarlo runs one batch of Metropolis iterations over sigma and, when
// enabled, the shared scale. Sigma moves are replica-local; the scale
// proposal and the post-decision value are forced to consensus, so replicas
// may disagree on acceptance but never on the scale itself.
func (m *Metainference) doMonteCarlo(args []float64) error {
	// calculate old energy (first time only)
	if m.mcFirst == -1 {
		m.oldEnergy = m.energy(m.sigma, m.scale, args)
	}

	newSigma := make([]float64, len(m.sigma))

	for it := int64(0); it < m.mcSteps; it++ {
		// propose move for scale
		newScale := m.scale
		if m.doScale {
			newScale = proposeMove(m.gen.Float64(), m.scale, m.dScale, m.scaleMin, m.scaleMax)
			// the scaling factor should be the same for all the replicas
			if err := m.shareScale(&newScale); err != nil {
				return err
			}
		}

		// propose move for sigma
		for j := range m.sigma {
			newSigma[j] = proposeMove(m.gen.Float64(), m.sigma[j], m.dSigma, m.sigmaMin, m.sigmaMax)
		}

		newEnergy := m.energy(newSigma, newScale, args)

		// accept if downhill, else with probability exp(-delta); the second
		// uniform deviate is only drawn on the uphill branch
		delta := (newEnergy - m.oldEnergy) / m.kbt
		if delta <= 0.0 || m.gen.Float64() < math.Exp(-delta) {
			m.oldEnergy = newEnergy
			m.scale = newScale
			copy(m.sigma, newSigma)
			m.mcAccept++
		}

		if m.doScale {
			// re-sync even after a reject: the decision was replica-local
			if err := m.shareScale(&m.scale); err != nil {
				return err
			}
		}
	}

	return nil
}
