package driver

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codec-generator/internal/diagnostic"
	"codec-generator/internal/emit"
	"codec-generator/internal/schema"
	"codec-generator/internal/synth"
	"codec-generator/internal/trait"
)

// DefaultWorkers bounds the fan-out when the caller does not.
const DefaultWorkers = 4

// Diagnostic codes reported by the driver.
const (
	CodeSynthesisFailed = "DRIVER_SYNTHESIS_FAILED"
	CodeEmitFailed      = "DRIVER_EMIT_FAILED"
)

// Config controls one generation run.
type Config struct {
	// Workers bounds concurrent per-field synthesis. Zero or negative
	// selects DefaultWorkers.
	Workers int
	// Logger receives per-field progress. Nil disables logging.
	Logger *zap.Logger
}

// Result is the outcome of one run: the artifacts that succeeded, in
// stable field order, plus the diagnostics of everything that did not.
type Result struct {
	Artifacts   []emit.Artifact
	Diagnostics diagnostic.Diagnostics
}

// Run synthesizes and lowers a codec for every field in the model.
// Fields are independent, so they fan out across workers; the graph,
// binding, and emitter are shared read-only. A per-field failure is
// recorded as a diagnostic and the run continues.
func Run(ctx context.Context, model *schema.Model, emitter emit.Emitter, cfg Config) (*Result, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	synthesizer := synth.NewSynthesizer(model.Graph, trait.NewResolver(model.Binding))

	var (
		mu        sync.Mutex
		artifacts []emit.Artifact
		diags     diagnostic.Diagnostics
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, field := range model.Fields {
		field := field
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			name := field.QualifiedName()
			logger.Debug("synthesizing field", zap.String("field", name))

			codec, err := synthesizer.Synthesize(field)
			if err != nil {
				logger.Warn("synthesis failed", zap.String("field", name), zap.Error(err))

				mu.Lock()
				diags.AddError(CodeSynthesisFailed, err.Error(), name)
				mu.Unlock()

				return nil
			}

			artifact, err := emitter.Emit(codec)
			if err != nil {
				logger.Warn("emit failed", zap.String("field", name), zap.Error(err))

				mu.Lock()
				diags.AddError(CodeEmitFailed, err.Error(), name)
				mu.Unlock()

				return nil
			}

			mu.Lock()
			artifacts = append(artifacts, artifact)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Field() < artifacts[j].Field()
	})

	logger.Info("generation run finished",
		zap.Int("fields", len(model.Fields)),
		zap.Int("artifacts", len(artifacts)),
		zap.Int("errors", len(diags.Errors)))

	return &Result{Artifacts: artifacts, Diagnostics: diags}, nil
}
