// Package pipeline runs one report selection end to end: load the dataset,
// build the report configuration, impute, split, compute, persist and read back.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/driftdash/internal/dataset"
	"github.com/KaramelBytes/driftdash/internal/report"
)

// Stage names a step of a pipeline run.
type Stage string

const (
	StageLoad    Stage = "load"
	StageSelect  Stage = "select"
	StageImpute  Stage = "impute"
	StageSplit   Stage = "split"
	StageRun     Stage = "run"
	StagePersist Stage = "persist"
	StageRead    Stage = "read"
)

// StageError reports which stage of a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Source provides the dataset; *dataset.Cache implements it.
type Source interface {
	Get(path string) (*dataset.Table, error)
}

// Store persists and reads back rendered reports; *store.Store implements it.
type Store interface {
	Persist(a report.Artifact, key string) (string, error)
	Load(path string) ([]byte, error)
}

// Indicator is shown while the engine computes a report.
type Indicator interface {
	Start(label string)
	Stop()
}

// GeneratingLabel is the indicator text shown during a run.
const GeneratingLabel = "Generating Report..."

// Pipeline holds the collaborators of a run. Source, Engine and Store are required.
type Pipeline struct {
	Source   Source
	Engine   report.Engine
	Store    Store
	DataPath string
	// SplitAt is the number of leading rows used as reference; values <= 0
	// mean dataset.DefaultSplitIndex.
	SplitAt   int
	Log       logrus.FieldLogger
	Indicator Indicator
}

// Request is one user selection.
type Request struct {
	Kind   report.Kind
	Column string
}

// Result describes a completed run.
type Result struct {
	RunID         string
	Kind          report.Kind
	Column        string
	Path          string
	HTML          []byte
	ReferenceRows int
	CurrentRows   int
	Imputed       bool
	Elapsed       time.Duration
}

func (p *Pipeline) logger() logrus.FieldLogger {
	if p.Log != nil {
		return p.Log
	}
	return logrus.StandardLogger()
}

func (p *Pipeline) splitAt() int {
	if p.SplitAt > 0 {
		return p.SplitAt
	}
	return dataset.DefaultSplitIndex
}

// Columns returns the column names of the dataset.
func (p *Pipeline) Columns() ([]string, error) {
	t, err := p.Source.Get(p.DataPath)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	return t.ColumnNames(), nil
}

// Slices loads the dataset and splits it into reference and current,
// imputing missing values first when impute is set.
func (p *Pipeline) Slices(impute bool) (reference, current *dataset.Table, err error) {
	t, err := p.Source.Get(p.DataPath)
	if err != nil {
		return nil, nil, &StageError{Stage: StageLoad, Err: err}
	}
	if impute {
		t = dataset.Impute(t)
	}
	reference, current = dataset.Split(t, p.splitAt())
	return reference, current, nil
}

// Run executes the selection in req. Nothing is retried; on failure no result
// is returned and the error is a *StageError.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.logger().WithFields(logrus.Fields{
		"run_id": runID,
		"kind":   req.Kind.String(),
		"column": req.Column,
	})
	fail := func(stage Stage, err error) (*Result, error) {
		log.WithField("stage", stage).WithError(err).Error("report run failed")
		return nil, &StageError{Stage: stage, Err: err}
	}

	if !req.Kind.Valid() {
		return fail(StageSelect, &report.UnknownKindError{Name: req.Kind.String()})
	}
	t, err := p.Source.Get(p.DataPath)
	if err != nil {
		return fail(StageLoad, err)
	}
	log.WithFields(logrus.Fields{"stage": StageLoad, "rows": t.NumRows(), "columns": t.NumCols()}).Debug("dataset ready")

	cfg, err := report.Select(req.Kind, req.Column, t)
	if err != nil {
		return fail(StageSelect, err)
	}
	if req.Kind.Imputes() {
		t = dataset.Impute(t)
		log.WithField("stage", StageImpute).Debug("missing values imputed")
	}
	reference, current := dataset.Split(t, p.splitAt())
	log = log.WithFields(logrus.Fields{"rows_reference": reference.NumRows(), "rows_current": current.NumRows()})
	log.WithField("stage", StageSplit).Debug("dataset split")

	artifact, err := p.compute(report.WithRunID(ctx, runID), cfg, reference, current)
	if err != nil {
		return fail(StageRun, err)
	}

	path, err := p.Store.Persist(artifact, req.Kind.String())
	if err != nil {
		return fail(StagePersist, err)
	}
	html, err := p.Store.Load(path)
	if err != nil {
		return fail(StageRead, err)
	}

	res := &Result{
		RunID:         runID,
		Kind:          req.Kind,
		Column:        req.Column,
		Path:          path,
		HTML:          html,
		ReferenceRows: reference.NumRows(),
		CurrentRows:   current.NumRows(),
		Imputed:       req.Kind.Imputes(),
		Elapsed:       time.Since(start),
	}
	log.WithFields(logrus.Fields{"path": path, "elapsed": res.Elapsed}).Info("report generated")
	return res, nil
}

// compute runs the engine with the progress indicator shown.
func (p *Pipeline) compute(ctx context.Context, cfg report.Config, reference, current *dataset.Table) (report.Artifact, error) {
	if p.Indicator != nil {
		p.Indicator.Start(GeneratingLabel)
		defer p.Indicator.Stop()
	}
	return p.Engine.Run(ctx, cfg, reference, current)
}
