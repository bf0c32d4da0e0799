package cmd

import (
	"log"
	"math"
	"os"
	"sync"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/cdmartin/metainf/bias"
	"github.com/cdmartin/metainf/buffer"
	"github.com/cdmartin/metainf/comm"
	"github.com/cdmartin/metainf/rand"
	"github.com/cdmartin/metainf/stopwatch"
)

// replicaTrace is everything one replica reports back from its run
type replicaTrace struct {
	biases  []float64
	scales  []float64
	accepts []float64
	sigma0s []float64

	window *buffer.CircularFloat

	finalScale  float64
	finalAccept float64
	watch       *stopwatch.Stopwatch

	err error
}

// runDemo drives the bias over synthetic observables with replicaCount
// in-process replicas. Each replica is a goroutine; they meet at the
// collective operations inside the bias exactly like MPI ranks would.
func runDemo() error {
	out := log.New(os.Stdout, "", 0)

	noise, err := bias.ParseNoiseType(noiseName)
	if err != nil {
		return err
	}

	// the synthetic "experiment": reference values spread over [1, 2)
	reference := make([]float64, argCount)
	for i := range reference {
		reference[i] = 1.0 + float64(i)/float64(argCount)
	}

	out.Printf("metainf demo\n")
	out.Printf("Noise:    %v\n", noise)
	out.Printf("Args:     %d\n", argCount)
	out.Printf("Replicas: %d\n", replicaCount)
	out.Printf("Steps:    %d (MC %d x %d)\n", stepCount, mcSteps, mcStride)
	out.Printf("Rnd Seed: %d\n", randomSeed)

	var mon *monitor
	if monitorAddr != "" {
		mon = &monitor{}
		if err := mon.Start(monitorAddr); err != nil {
			return err
		}
		defer mon.Stop()
	}

	inter, err := comm.NewWorld(replicaCount)
	if err != nil {
		return err
	}

	traces := make([]*replicaTrace, replicaCount)
	var wg sync.WaitGroup
	for r := 0; r < replicaCount; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			var liveMon *monitor
			if r == 0 {
				liveMon = mon
			}
			traces[r] = runReplica(noise, reference, inter[r], liveMon)
		}(r)
	}
	wg.Wait()

	for r, tr := range traces {
		if tr.err != nil {
			return errors.Wrapf(tr.err, "Replica %d failed", r)
		}
	}

	report(out, traces)
	return nil
}

// runReplica builds one bias instance over a solo intra group and the shared
// inter group, then steps it. Every replica must execute the same sequence of
// Calculate calls or the collectives deadlock.
func runReplica(noise bias.NoiseType, reference []float64, inter comm.Communicator, mon *monitor) *replicaTrace {
	tr := &replicaTrace{
		window: buffer.NewCircularFloat(convergeWindow),
		watch:  stopwatch.New(),
	}

	topo := comm.Topology{Intra: comm.Solo{}, Inter: inter}

	cfg := bias.Config{
		Noise:      noise,
		Parameters: reference,
		ScaleData:  scaleData,
		Scale0:     scale0,
		ScaleMin:   scaleMin,
		ScaleMax:   scaleMax,
		DScale:     dScale,
		Sigma0:     []float64{sigma0},
		SigmaMin:   sigmaMin,
		SigmaMax:   sigmaMax,
		DSigma:     dSigma,
		SigmaMean:  sigmaMean,
		KbT:        kbt,
		MCSteps:    mcSteps,
		MCStride:   mcStride,
		Seed:       randomSeed,
	}

	m, err := bias.New(len(reference), cfg, topo)
	if err != nil {
		tr.err = err
		return tr
	}

	// data generator, distinct from the sampler's own stream
	_, replica := m.Replicas()
	dataGen, err := rand.NewGenerator(randomSeed*7919 + replica)
	if err != nil {
		tr.err = err
		return tr
	}

	args := make([]float64, len(reference))

	total := tr.watch.Start("")
	for step := int64(0); step < stepCount; step++ {
		// observables jitter around reference/trueScale
		for i, p := range reference {
			args[i] = p/trueScale + dataNoise*(2.0*dataGen.Float64()-1.0)
		}

		lap := tr.watch.Start("step")
		res, err := m.Calculate(step, false, args)
		lap.Stop()
		if err != nil {
			tr.err = err
			return tr
		}

		tr.biases = append(tr.biases, res.Bias)
		tr.scales = append(tr.scales, res.Scale)
		tr.accepts = append(tr.accepts, res.Accept)
		tr.sigma0s = append(tr.sigma0s, res.Sigma[0])
		tr.window.Add(res.Sigma[0])

		tr.finalScale = res.Scale
		tr.finalAccept = res.Accept

		if mon != nil {
			mon.Publish(res)
		}
	}
	total.Stop()

	return tr
}

// report prints per-replica summaries plus the cross-replica consensus check
func report(out *log.Logger, traces []*replicaTrace) {
	for r, tr := range traces {
		out.Printf("--------------------------------------------------\n")
		out.Printf("Replica %d\n", r)
		out.Printf("Bias   | mean %9.4f stddev %9.4f\n",
			stat.Mean(tr.biases, nil), stat.StdDev(tr.biases, nil))

		med, _ := stats.Median(tr.sigma0s)
		p5, _ := stats.Percentile(tr.sigma0s, 5)
		p95, _ := stats.Percentile(tr.sigma0s, 95)
		out.Printf("Sigma  | median %8.4f p5 %8.4f p95 %8.4f\n", med, p5, p95)

		out.Printf("Scale  | final %8.4f\n", tr.finalScale)
		out.Printf("Accept | final %8.4f\n", tr.finalAccept)

		if first := tr.window.FirstHalf(); first != nil {
			second := tr.window.SecondHalf()
			drift := math.Abs(stat.Mean(second, nil) - stat.Mean(first, nil))
			out.Printf("Equil  | sigma window drift %8.5f over last %d samples\n",
				drift, tr.window.BufSize)
		}

		if verbose {
			out.Printf("Timing |\n%s", tr.watch.String())
		}
	}

	out.Printf("--------------------------------------------------\n")
	if scaleData && len(traces) > 1 {
		consensus := true
		for _, tr := range traces[1:] {
			if tr.finalScale != traces[0].finalScale {
				consensus = false
			}
		}
		out.Printf("Scale consensus across replicas: %v\n", consensus)
	}
}
