// Package server is the web dashboard: a page with the report menu that runs
// the pipeline for the selected report and embeds the persisted result.
package server

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/facebookgo/httpdown"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/driftdash/internal/pipeline"
	"github.com/KaramelBytes/driftdash/internal/report"
)

// Runner runs one selection; *pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Columns() ([]string, error)
}

// Reports gives access to persisted reports; *store.Store implements it.
type Reports interface {
	Path(key string) string
	Load(path string) ([]byte, error)
}

// Server serves the dashboard. Pipeline runs are serialized so that a single
// run writes a report file at a time.
type Server struct {
	runner  Runner
	reports Reports
	log     logrus.FieldLogger

	mu sync.Mutex
}

// New creates a dashboard server.
func New(runner Runner, reports Reports, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{runner: runner, reports: reports, log: log}
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /reports/{kind}", s.handleReport)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

type kindOption struct {
	Name        string
	NeedsColumn bool
	Selected    bool
}

type columnOption struct {
	Name     string
	Selected bool
}

type pageData struct {
	Kinds   []kindOption
	Columns []columnOption
	Error   string
	Report  string
	Path    string
	RunID   string
	Elapsed time.Duration
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	kindName := r.URL.Query().Get("kind")
	column := r.URL.Query().Get("column")

	data := pageData{}
	for _, k := range report.Kinds() {
		data.Kinds = append(data.Kinds, kindOption{Name: k.String(), NeedsColumn: k.NeedsColumn(), Selected: k.String() == kindName})
	}
	cols, err := s.runner.Columns()
	if err != nil {
		data.Error = err.Error()
	}
	if column == "" && len(cols) > 0 {
		column = cols[0]
	}
	for _, c := range cols {
		data.Columns = append(data.Columns, columnOption{Name: c, Selected: c == column})
	}

	status := http.StatusOK
	if kindName != "" && data.Error == "" {
		status = s.run(r.Context(), kindName, column, &data)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.log.WithError(err).Error("render dashboard page")
	}
}

// run executes the selection and fills either the report or the error, never both.
func (s *Server) run(ctx context.Context, kindName, column string, data *pageData) int {
	kind, err := report.ParseKind(kindName)
	if err != nil {
		data.Error = err.Error()
		return http.StatusBadRequest
	}
	if !kind.NeedsColumn() {
		column = ""
	}
	res, err := s.runLocked(ctx, pipeline.Request{Kind: kind, Column: column})
	if err != nil {
		data.Error = err.Error()
		var ic *report.InvalidColumnError
		if errors.As(err, &ic) {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
	data.Report = string(res.HTML)
	data.Path = res.Path
	data.RunID = res.RunID
	data.Elapsed = res.Elapsed.Round(time.Millisecond)
	return http.StatusOK
}

// runLocked runs one pipeline request at a time.
func (s *Server) runLocked(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.Run(ctx, req)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseKind(r.PathValue("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	b, err := s.reports.Load(s.reports.Path(kind.String()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "report not generated yet", http.StatusNotFound)
			return
		}
		s.log.WithError(err).WithField("kind", kind.String()).Error("load report")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}

// Serve listens on addr until ctx is done, then stops gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done, then stops gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	hd := httpdown.HTTP{StopTimeout: 10 * time.Second, KillTimeout: 5 * time.Second}
	srv := hd.Serve(hs, ln)
	s.log.WithField("addr", ln.Addr().String()).Info("dashboard listening")

	done := make(chan error, 1)
	go func() { done <- srv.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.log.Info("dashboard stopping")
		if err := srv.Stop(); err != nil {
			return err
		}
		return <-done
	}
}
