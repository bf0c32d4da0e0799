package bias

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cdmartin/metainf/comm"
)

// baseConfig is the template most bias tests start from: single replica,
// kbt=1 so reduced and absolute energies coincide.
func baseConfig(noise NoiseType, params []float64) Config {
	return Config{
		Noise:      noise,
		Parameters: params,
		Sigma0:     []float64{0.1},
		SigmaMin:   0.001,
		SigmaMax:   1.0,
		DSigma:     0.01,
		SigmaMean:  0.05,
		KbT:        1.0,
		MCSteps:    1,
		MCStride:   1,
		Seed:       42,
	}
}

func soloBias(t *testing.T, cfg Config, narg int) *Metainference {
	m, err := New(narg, cfg, comm.SoloTopology())
	if err != nil {
		t.Fatalf("Could not build test bias: %v", err)
	}
	return m
}

func TestEnergyGaussianSingleScenario(t *testing.T) {
	assert := assert.New(t)

	// x == p: the deviation term vanishes and only the normalization
	// ln(ss*sqrt(2*pi)) remains, ss = 0.1^2 + 0.05^2 = 0.0125
	m := soloBias(t, baseConfig(GaussianSingle, []float64{1.0}), 1)

	ene := m.energy(m.sigma, 1.0, []float64{1.0})
	want := math.Log(0.0125 * sqrt2Pi)
	assert.InDelta(want, ene, 1e-12)
	assert.False(math.IsNaN(ene) || math.IsInf(ene, 0))
}

func TestEnergyGaussianMultiPerDatum(t *testing.T) {
	assert := assert.New(t)

	cfg := baseConfig(GaussianMulti, []float64{1.0, 2.0, 3.0})
	cfg.Sigma0 = []float64{0.1, 0.2, 0.3}
	m := soloBias(t, cfg, 3)

	args := []float64{1.1, 1.8, 3.3}
	ene := m.energy(m.sigma, 1.0, args)

	// sum the closed form by hand
	want := 0.0
	smean2 := 0.05 * 0.05
	for i, x := range args {
		ss := cfg.Sigma0[i]*cfg.Sigma0[i] + smean2
		dev := x - cfg.Parameters[i]
		want += 0.5*dev*dev/ss + math.Log(ss*sqrt2Pi)
	}
	assert.InDelta(want, ene, 1e-12)
}

func TestEnergyLongTailClosedForm(t *testing.T) {
	assert := assert.New(t)

	params := []float64{1.0, 2.0}
	m := soloBias(t, baseConfig(LongTail, params), 2)

	args := []float64{1.2, 1.7}
	ene := m.energy(m.sigma, 1.0, args)

	smean2 := 0.05 * 0.05
	s := math.Sqrt(0.1*0.1 + smean2)
	want := 0.0
	for i, x := range args {
		dev := x - params[i]
		a2 := 0.5*dev*dev + s*s
		want += math.Log(2.0 * a2 / (1.0 - math.Exp(-a2/smean2)))
	}
	want += math.Log(s) - 2.0*math.Log(sqrt2OverPi*s)
	assert.InDelta(want, ene, 1e-12)
	assert.False(math.IsNaN(ene) || math.IsInf(ene, 0))
}

func TestEnergyMinimumAtZeroDeviation(t *testing.T) {
	assert := assert.New(t)

	params := []float64{1.0, 2.0, 3.0}
	for _, noise := range []NoiseType{GaussianSingle, GaussianMulti, LongTail} {
		m := soloBias(t, baseConfig(noise, params), 3)

		atRef := m.energy(m.sigma, 1.0, params)
		off := m.energy(m.sigma, 1.0, []float64{1.1, 2.1, 3.1})
		assert.True(atRef < off, "%v: energy at x=p (%v) should undercut off-reference (%v)", noise, atRef, off)
	}
}

func TestEnergyScaleApplied(t *testing.T) {
	assert := assert.New(t)

	// scale*x == p cancels the deviation even though x != p
	m := soloBias(t, baseConfig(GaussianSingle, []float64{1.0}), 1)

	withScale := m.energy(m.sigma, 0.5, []float64{2.0})
	want := math.Log(0.0125 * sqrt2Pi)
	assert.InDelta(want, withScale, 1e-12)
}

func TestEnergyKbtScaling(t *testing.T) {
	assert := assert.New(t)

	cfg := baseConfig(GaussianSingle, []float64{1.0})
	m1 := soloBias(t, cfg, 1)

	cfg.KbT = 2.5
	m2 := soloBias(t, cfg, 1)

	args := []float64{1.3}
	assert.InDelta(2.5*m1.energy(m1.sigma, 1.0, args), m2.energy(m2.sigma, 1.0, args), 1e-12)
}

func TestSigmaMeanReplicaReduction(t *testing.T) {
	assert := assert.New(t)

	// four single-process replicas: sigma_mean must shrink by sqrt(4)
	inter, err := comm.NewWorld(4)
	assert.NoError(err)

	means := make([]float64, 4)
	done := make(chan int, 4)
	for r := 0; r < 4; r++ {
		go func(r int) {
			topo := comm.Topology{Intra: comm.Solo{}, Inter: inter[r]}
			m, err := New(1, baseConfig(GaussianSingle, []float64{1.0}), topo)
			assert.NoError(err)
			means[r] = m.sigmaMean
			done <- r
		}(r)
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	for r := 0; r < 4; r++ {
		assert.InDelta(0.05/2.0, means[r], 1e-12)
	}
}
