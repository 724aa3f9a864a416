// Package apply orchestrates applying a rendering definition across a
// collection of images, isolating per-image failure.
package apply

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ome/omero-cli-render/internal/logging"
	"github.com/ome/omero-cli-render/internal/merge"
	"github.com/ome/omero-cli-render/internal/omero"
	"github.com/ome/omero-cli-render/internal/render"
)

// State tracks how far one image progressed.
type State string

const (
	StatePending   State = "pending"
	StateFetched   State = "fetched"
	StateMerged    State = "merged"
	StateCommitted State = "committed"
	StateFailed    State = "failed"
)

// Result is the outcome for one image.
type Result struct {
	ImageID  int64
	State    State
	Err      error
	Warnings []merge.Warning
}

// Report aggregates per-image results in enumeration order.
type Report struct {
	Results []Result
}

// OK reports whether every image reached the committed state.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if res.State != StateCommitted {
			return false
		}
	}
	return true
}

// Failed returns the results for images that did not commit.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.State != StateCommitted {
			failed = append(failed, res)
		}
	}
	return failed
}

// Options carry the per-run merge behaviour.
type Options struct {
	DisableUnspecified bool
	IgnoreErrors       bool
}

// Engine applies one rendering definition to many images sequentially.
type Engine struct {
	gateway omero.Gateway
	logger  *slog.Logger
}

// NewEngine builds an engine. A nil logger is replaced with a no-op one.
func NewEngine(gateway omero.Gateway, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{gateway: gateway, logger: logger}
}

// Run applies the definition to each image in order. An image that fails at
// any step is recorded as failed and processing moves on to the next one;
// settings already committed are never rolled back. After the fold the
// channel renames requested by the definition are applied to every image
// that committed.
func (e *Engine) Run(ctx context.Context, spec *render.Spec, imageIDs []int64, opts Options) Report {
	runID := uuid.NewString()
	logger := e.logger.With(
		logging.String(logging.FieldRunID, runID),
		logging.Int(logging.FieldImageCount, len(imageIDs)),
	)
	logger.Info("applying rendering definition",
		logging.Int("channels", len(spec.Channels)),
		logging.Int("version", int(spec.Version)),
		logging.Bool("disable_unspecified", opts.DisableUnspecified),
	)

	report := Report{Results: make([]Result, 0, len(imageIDs))}
	var committed []int64
	for _, imageID := range imageIDs {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, Result{ImageID: imageID, State: StateFailed, Err: err})
			continue
		}
		result := e.applyOne(ctx, logger, spec, imageID, opts)
		if result.State == StateCommitted {
			committed = append(committed, imageID)
		}
		report.Results = append(report.Results, result)
	}

	if labels := spec.Labels(); len(labels) > 0 && len(committed) > 0 {
		if err := e.gateway.SetChannelNames(ctx, committed, labels); err != nil {
			logger.Warn("channel rename failed", logging.Error(err))
		} else {
			logger.Debug("updated channel names",
				logging.Int("channels", len(labels)),
				logging.Int("images", len(committed)),
			)
		}
	}
	return report
}

// applyOne runs the fetch-merge-commit sequence for a single image. The
// rendering handle is released on every path before the next image is
// touched, so at most one handle is open at a time.
func (e *Engine) applyOne(ctx context.Context, logger *slog.Logger, spec *render.Spec, imageID int64, opts Options) (result Result) {
	result = Result{ImageID: imageID, State: StatePending}
	logger = logger.With(logging.Int64(logging.FieldImageID, imageID))

	service, err := e.gateway.OpenRendering(ctx, imageID)
	if err != nil {
		result.State = StateFailed
		result.Err = omero.FetchError(imageID, err)
		logger.Error("open rendering service failed", logging.Error(err))
		return result
	}
	defer func() {
		if err := service.Close(); err != nil {
			logger.Warn("close rendering service failed", logging.Error(err))
		}
	}()

	current, err := service.Fetch(ctx)
	if err != nil {
		result.State = StateFailed
		result.Err = err
		logger.Error("fetch rendering settings failed", logging.Error(err))
		return result
	}
	result.State = StateFetched

	merged, err := merge.Merge(spec, current, merge.Options{
		DisableUnspecified: opts.DisableUnspecified,
		IgnoreErrors:       opts.IgnoreErrors,
	})
	if err != nil {
		result.State = StateFailed
		result.Err = fmt.Errorf("merge settings for image %d: %w", imageID, err)
		logger.Error("merge rendering settings failed", logging.Error(err))
		return result
	}
	result.State = StateMerged
	result.Warnings = merged.Warnings
	for _, warning := range merged.Warnings {
		logger.Warn("merge warning", logging.String("warning", warning.String()))
	}

	if err := service.Commit(ctx, merged.State); err != nil {
		result.State = StateFailed
		result.Err = err
		logger.Error("commit rendering settings failed", logging.Error(err))
		return result
	}
	result.State = StateCommitted
	logger.Debug("updated rendering settings")
	return result
}
