package s0_data

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

// SourceGate validates that every source table is reachable and carries
// the columns its stage reads (S0)
type SourceGate struct {
	loader  *Loader
	sources map[string]Source
	logger  *logger.Logger
}

// NewSourceGate creates a new SourceGate instance
func NewSourceGate(loader *Loader, sources map[string]Source, log *logger.Logger) *SourceGate {
	return &SourceGate{
		loader:  loader,
		sources: sources,
		logger:  log.WithField("module", "source_gate"),
	}
}

// Check reads the header of every source
// ⭐ SSOT: S0 → S1 source validation
func (g *SourceGate) Check(ctx context.Context) (*contracts.SourceReport, error) {
	report := &contracts.SourceReport{CheckedAt: time.Now()}

	names := make([]string, 0, len(g.sources))
	for name := range g.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := g.sources[name]
		status := contracts.SourceStatus{Name: name, Location: src.Location}

		header, err := g.loader.ReadHeader(ctx, src)
		switch {
		case err == nil:
			status.Reachable = true
			status.MissingColumns = MissingColumns(header, src.Columns)
		case errors.Is(err, contracts.ErrSchemaMismatch):
			status.Reachable = true
			status.MissingColumns = src.Columns
			status.Error = err.Error()
		default:
			status.Error = err.Error()
		}

		g.logger.WithFields(map[string]interface{}{
			"source":    name,
			"location":  src.Location,
			"reachable": status.Reachable,
			"missing":   status.MissingColumns,
		}).Debug("Source checked")

		report.Sources = append(report.Sources, status)
	}

	g.logger.WithFields(map[string]interface{}{
		"sources":  len(report.Sources),
		"coverage": report.Coverage(),
		"passed":   report.Passed(),
	}).Info("Source check completed")

	return report, nil
}
