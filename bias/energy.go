package bias

import (
	"math"
)

const (
	sqrt2Pi     = 2.506628274631001 // sqrt(2*pi)
	sqrt2OverPi = 0.45015815807855  // sqrt(2)/pi
)

// energy is the Monte Carlo objective: the bias energy for trial values of
// sigma and scale at the current observables. Pure with respect to m: the
// live parameters are untouched.
func (m *Metainference) energy(sigma []float64, scale float64, args []float64) float64 {
	switch m.noise {
	case GaussianSingle, GaussianMulti:
		return m.energyGJE(sigma, scale, args)
	case LongTail:
		return m.energySPE(sigma[0], scale, args)
	}
	panic("bias: unknown noise type")
}

// energyGJE is the generalized Jeffreys/gaussian form: per datum,
// 0.5*dev^2/ss + ln(ss*sqrt(2*pi)) with ss = sigma^2 + sigma_mean^2. Under
// GaussianMulti each datum uses its own sigma; otherwise sigma[0] is shared.
func (m *Metainference) energyGJE(sigma []float64, scale float64, args []float64) float64 {
	smean2 := m.sigmaMean * m.sigmaMean
	ss := sigma[0]*sigma[0] + smean2

	ene := 0.0
	for i, x := range args {
		if m.noise.perDatumSigma() {
			ss = sigma[i]*sigma[i] + smean2
		}
		dev := scale*x - m.parameters[i]
		ene += 0.5*dev*dev/ss + math.Log(ss*sqrt2Pi)
	}
	return m.kbt * ene
}

// energySPE is the long-tailed form with a single shared sigma: per datum,
// ln(2*a2 / (1 - exp(-a2/sigma_mean^2))) with a2 = 0.5*dev^2 + s^2 and
// s = sqrt(sigma^2 + sigma_mean^2), plus the normalization and Jeffreys prior
// added once after the sum.
func (m *Metainference) energySPE(sigma float64, scale float64, args []float64) float64 {
	smean2 := m.sigmaMean * m.sigmaMean
	s := math.Sqrt(sigma*sigma + smean2)

	ene := 0.0
	for i, x := range args {
		dev := scale*x - m.parameters[i]
		a2 := 0.5*dev*dev + s*s
		ene += math.Log(2.0 * a2 / (1.0 - math.Exp(-a2/smean2)))
	}
	ene += math.Log(s) - float64(m.ndata)*math.Log(sqrt2OverPi*s)
	return m.kbt * ene
}
