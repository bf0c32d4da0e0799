package cmd

import (
	"expvar"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/cdmartin/metainf/bias"
)

// monitor publishes the live bias outputs of replica 0 over expvar
type monitor struct {
	info    *expvar.Map
	stopped chan struct{}
	server  *http.Server

	Bias   *expvar.Float
	Scale  *expvar.Float
	Accept *expvar.Float
	Sigma  *expvar.Float
	Steps  *expvar.Int
}

// Start begins the monitor on the given address
func (m *monitor) Start(addr string) error {
	if m.info != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	m.info = expvar.NewMap("metainf-progress")
	m.stopped = make(chan struct{})
	m.server = &http.Server{
		Addr: addr,
	}

	// Help the user and redirect to the only thing currently available:
	// the handler from the expvar package
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})

	m.Bias = expvar.NewFloat("Bias")
	m.Scale = expvar.NewFloat("Scale")
	m.Accept = expvar.NewFloat("Accept")
	m.Sigma = expvar.NewFloat("Sigma-0")
	m.Steps = expvar.NewInt("Steps")

	// Actual server that will close the stopped channel on exit
	started := make(chan struct{})
	go func() {
		defer close(m.stopped)
		fmt.Fprintf(os.Stderr, "HTTP now available at %v (see debug/vars/)\n", m.server.Addr)
		close(started)
		m.server.ListenAndServe()
	}()

	<-started
	return nil
}

// Publish pushes one step's outputs to the exported variables
func (m *monitor) Publish(res *bias.Result) {
	m.Bias.Set(res.Bias)
	m.Scale.Set(res.Scale)
	m.Accept.Set(res.Accept)
	m.Sigma.Set(res.Sigma[0])
	m.Steps.Add(1)
}

func (m *monitor) Stop() {
	if m.info == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		fmt.Fprintf(os.Stderr, "HTTP Info Stopped\n")
	case <-time.After(2 * time.Second):
		fmt.Fprintf(os.Stderr, "HTTP would NOT stop: just continuing on\n")
	}
}
