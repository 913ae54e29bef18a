// Package main provides the CLI entrypoint for codec-generator.
//
// codec-generator reads a YAML schema document describing recursive
// aggregate shapes and their wire traits, synthesizes a decode/encode
// plan per selected field, and emits generated Go codec source.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"codec-generator/internal/driver"
	"codec-generator/internal/emit"
	"codec-generator/internal/schema"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "codec-generator:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		schemaPath  = pflag.StringP("schema", "s", "", "path to the YAML schema document (required)")
		outDir      = pflag.StringP("out", "o", ".", "output directory for generated files")
		packageName = pflag.StringP("package", "p", "codecs", "package name of generated files")
		strategy    = pflag.String("strategy", "source", "emitter strategy: source | closure")
		workers     = pflag.Int("workers", driver.DefaultWorkers, "concurrent per-field synthesis limit")
		verbose     = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Parse()

	if *schemaPath == "" {
		pflag.Usage()
		return fmt.Errorf("--schema is required")
	}

	logger, err := buildLogger(*verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	model, err := schema.Load(*schemaPath)
	if err != nil {
		return err
	}

	logger.Info("schema loaded",
		zap.String("path", *schemaPath),
		zap.Int("shapes", len(model.Graph.Shapes)),
		zap.Int("fields", len(model.Fields)),
		zap.String("binding", model.Binding.Name))

	emitter, err := buildEmitter(*strategy, *packageName)
	if err != nil {
		return err
	}

	result, err := driver.Run(context.Background(), model, emitter, driver.Config{
		Workers: *workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	for _, w := range result.Diagnostics.Warnings {
		logger.Warn(w.Message, zap.String("field", w.Field), zap.String("code", w.Code))
	}

	if *strategy == "source" {
		files := make([]emit.GeneratedFile, 0, len(result.Artifacts))

		for _, a := range result.Artifacts {
			src, ok := a.(*emit.SourceArtifact)
			if !ok {
				continue
			}

			files = append(files, src.File)
		}

		if err := emit.WriteFiles(files, *outDir); err != nil {
			return err
		}

		logger.Info("files written", zap.Int("count", len(files)), zap.String("dir", *outDir))
	}

	if result.Diagnostics.HasErrors() {
		for _, d := range result.Diagnostics.Errors {
			logger.Error(d.Message, zap.String("field", d.Field), zap.String("code", d.Code))
		}

		return fmt.Errorf("%d field(s) failed", len(result.Diagnostics.Errors))
	}

	return nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func buildEmitter(strategy, packageName string) (emit.Emitter, error) {
	switch strategy {
	case "source":
		return emit.NewSourceEmitter(emit.SourceConfig{PackageName: packageName}), nil
	case "closure":
		return emit.NewClosureEmitter(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want source or closure)", strategy)
	}
}
