package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/model"
)

// Options selects the engine's configurable behavior for one run.
type Options struct {
	Weighting  model.WeightingMode
	Projection model.ProjectionMode
	Scenario   model.Scenario
}

// Result is the complete output of one computation pass.
type Result struct {
	RunID      string
	Options    Options
	Series     []model.PeriodMetrics
	Adjusted   []model.AdjustedMetrics
	Projection Projection
	Verdict    model.Verdict
	Excluded   int // items dropped by the filter across all periods
	ItemCount  int
}

// Run executes aggregate, build, adjust, project, and classify once.
// Panics raised by any step are returned as a KindInternal ComputeError.
func Run(in model.Input, opts Options) (res *Result, err error) {
	runID := uuid.NewString()
	log := logging.Log.WithFields(logrus.Fields{
		"run_id":     runID,
		"source":     in.Source,
		"weighting":  opts.Weighting.String(),
		"projection": opts.Projection.String(),
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("computation panicked")
			res = nil
			err = &ComputeError{Kind: KindInternal, Detail: fmt.Sprint(r)}
		}
	}()

	log.WithFields(logrus.Fields{
		"periods": len(in.Periods),
		"items":   in.ItemCount(),
	}).Debug("computation started")

	series := BuildSeries(in, opts.Weighting)
	adjusted := Adjust(series, opts.Scenario)

	proj, err := Project(adjusted, opts.Projection)
	if err != nil {
		log.WithError(err).Warn("projection failed")
		return nil, err
	}

	res = &Result{
		RunID:      runID,
		Options:    opts,
		Series:     series,
		Adjusted:   adjusted,
		Projection: proj,
		Verdict:    Classify(proj.MonthIndex),
		ItemCount:  in.ItemCount(),
	}
	for _, pm := range series {
		res.Excluded += pm.ExcludedItems
	}

	log.WithFields(logrus.Fields{
		"tier":     res.Verdict.Tier.String(),
		"excluded": res.Excluded,
	}).Debug("computation finished")

	return res, nil
}

// IsComputeError reports whether err is a ComputeError and returns it.
func IsComputeError(err error) (*ComputeError, bool) {
	var ce *ComputeError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
