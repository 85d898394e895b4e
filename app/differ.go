// Package app wires documents, compiled schemas and metrics into the diff
// service used by the CLI and the watcher.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/artpar/modeldiff/adapters/document"
	"github.com/artpar/modeldiff/adapters/metrics"
	"github.com/artpar/modeldiff/core/formatter"
	"github.com/artpar/modeldiff/core/registry"
	"github.com/rs/zerolog"
)

// ErrUnknownSchema is returned when a schema name is not registered.
var ErrUnknownSchema = errors.New("unknown schema")

// ErrEmptyBase is returned when the base document of a record diff is empty.
var ErrEmptyBase = errors.New("base document is empty")

// Differ loads two documents of a named schema and diffs them.
type Differ struct {
	registry *registry.Registry
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

// NewDiffer creates a differ. collector may be nil.
func NewDiffer(reg *registry.Registry, collector *metrics.Collector, logger zerolog.Logger) *Differ {
	return &Differ{
		registry: reg,
		metrics:  collector,
		logger:   logger,
	}
}

// DiffFiles reads base and current from disk and diffs them.
func (d *Differ) DiffFiles(schemaName, basePath, currentPath string) (formatter.Result, error) {
	start := time.Now()

	res, err := d.diffFiles(schemaName, basePath, currentPath)
	d.observe(res, err, time.Since(start))
	return res, err
}

func (d *Differ) diffFiles(schemaName, basePath, currentPath string) (formatter.Result, error) {
	res := formatter.Result{Schema: schemaName}

	base, err := document.Read(basePath)
	if err != nil {
		return res, err
	}
	current, err := document.Read(currentPath)
	if err != nil {
		return res, err
	}

	return d.diff(schemaName, base, current)
}

// DiffDocuments diffs two decoded documents. An empty current document
// deletes everything in base.
func (d *Differ) DiffDocuments(schemaName string, base, current any) (formatter.Result, error) {
	start := time.Now()

	res, err := d.diff(schemaName, base, current)
	d.observe(res, err, time.Since(start))
	return res, err
}

func (d *Differ) diff(schemaName string, base, current any) (formatter.Result, error) {
	res := formatter.Result{Schema: schemaName}

	if s, ok := d.registry.Record(schemaName); ok {
		if base == nil {
			return res, fmt.Errorf("%s: %w", schemaName, ErrEmptyBase)
		}
		a, err := document.DecodeRecord(s, base)
		if err != nil {
			return res, fmt.Errorf("decode base: %w", err)
		}

		if current == nil {
			res.Record, err = a.Diff(nil)
			return res, err
		}
		b, err := document.DecodeRecord(s, current)
		if err != nil {
			return res, fmt.Errorf("decode current: %w", err)
		}

		res.Record, err = a.Diff(b)
		return res, err
	}

	if ls, ok := d.registry.List(schemaName); ok {
		if base == nil {
			base = []any{}
		}
		a, err := document.DecodeList(ls, base)
		if err != nil {
			return res, fmt.Errorf("decode base: %w", err)
		}

		if current == nil {
			res.List, err = a.Diff(nil)
			return res, err
		}
		b, err := document.DecodeList(ls, current)
		if err != nil {
			return res, fmt.Errorf("decode current: %w", err)
		}

		res.List, err = a.Diff(b)
		return res, err
	}

	return res, fmt.Errorf("%w %q", ErrUnknownSchema, schemaName)
}

func (d *Differ) observe(res formatter.Result, err error, elapsed time.Duration) {
	if d.metrics != nil {
		d.metrics.ObserveDiff(res, err, elapsed)
	}

	if err != nil {
		d.logger.Error().Err(err).Str("schema", res.Schema).Msg("diff failed")
		return
	}

	d.logger.Debug().
		Str("schema", res.Schema).
		Bool("changed", res.Changed()).
		Int("changes", len(res.Changes())).
		Dur("elapsed", elapsed).
		Msg("diff completed")
}
