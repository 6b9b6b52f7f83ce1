package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/KaramelBytes/driftdash/internal/columnar"
	cfgpkg "github.com/KaramelBytes/driftdash/internal/config"
	"github.com/KaramelBytes/driftdash/internal/dataset"
	"github.com/KaramelBytes/driftdash/internal/pipeline"
	"github.com/KaramelBytes/driftdash/internal/report"
	"github.com/KaramelBytes/driftdash/internal/store"
)

// loaders returns the dataset readers for every supported format.
func loaders(c *cfgpkg.Global) dataset.Loaders {
	opt := dataset.DefaultOptions()
	opt.Delimiter = c.DelimiterRune()
	return append(dataset.DefaultLoaders(opt), columnar.ParquetLoader{})
}

func engineSettings(c *cfgpkg.Global) report.Settings {
	return report.Settings{
		HistogramBins:  c.HistogramBins,
		DriftThreshold: c.DriftThreshold,
		DriftShare:     c.DriftShare,
		TopCategories:  c.TopCategories,
	}
}

// buildPipeline wires the pipeline from configuration. Callers that persist
// reports run Init on the returned store first.
func buildPipeline(c *cfgpkg.Global) (*pipeline.Pipeline, *store.Store, error) {
	eng, ok := report.NewEngine(c.Engine, engineSettings(c))
	if !ok {
		return nil, nil, fmt.Errorf("unknown engine %q (available: %v)", c.Engine, report.EngineNames())
	}
	st := store.New(c.ReportsDir)
	p := &pipeline.Pipeline{
		Source:   dataset.NewCache(loaders(c)),
		Engine:   eng,
		Store:    st,
		DataPath: c.DataPath,
		SplitAt:  c.SplitIndex,
		Log:      log.StandardLogger(),
	}
	return p, st, nil
}

// spinner is a progress indicator for interactive terminals.
type spinner struct {
	out  io.Writer
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// newIndicator returns a spinner on stderr when it is a terminal, nil otherwise.
func newIndicator() pipeline.Indicator {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return &spinner{out: os.Stderr}
}

func (s *spinner) Start(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		frames := []rune{'|', '/', '-', '\\'}
		tick := time.NewTicker(120 * time.Millisecond)
		defer tick.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.out, "\r%c %s", frames[i%len(frames)], label)
			select {
			case <-stop:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-tick.C:
			}
		}
	}(s.stop, s.done)
}

func (s *spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}
