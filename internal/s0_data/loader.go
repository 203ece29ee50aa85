package s0_data

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/httputil"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/metrics"
)

const (
	// DefaultChunkSize is the number of rows handed to a transform at once
	DefaultChunkSize = 500_000

	maxLineBytes = 4 * 1024 * 1024
)

// Config holds loader settings
type Config struct {
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"` // rows per block
	Workers   int `yaml:"workers" json:"workers"`       // concurrent blocks; <= 1 is sequential
}

// Transform maps a row to a value. keep=false drops the row.
// A non-nil error aborts the whole load.
type Transform[T any] func(Row) (value T, keep bool, err error)

// Stats describes one load
type Stats struct {
	Source        string        `json:"source"`
	RowsRead      int           `json:"rows_read"`
	RowsKept      int           `json:"rows_kept"`
	RowsMalformed int           `json:"rows_malformed"`
	Chunks        int           `json:"chunks"`
	Duration      time.Duration `json:"duration"`
}

// Loader reads tab-separated tables in bounded blocks
// ⭐ SSOT: every source table is read through this loader
type Loader struct {
	config Config
	http   *httputil.Client
	logger *logger.Logger
}

// NewLoader creates a new Loader. client may be nil when all sources are local.
func NewLoader(config Config, client *httputil.Client, log *logger.Logger) *Loader {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &Loader{
		config: config,
		http:   client,
		logger: log.WithField("module", "loader"),
	}
}

// Config returns the effective loader settings
func (l *Loader) Config() Config {
	return l.config
}

// Open returns a reader over the decompressed content of src
func (l *Loader) Open(ctx context.Context, src Source) (io.ReadCloser, error) {
	var raw io.ReadCloser

	if src.IsRemote() {
		if l.http == nil {
			return nil, fmt.Errorf("%w: %s: no HTTP client for %s", contracts.ErrSourceUnavailable, src.Name, src.Location)
		}
		body, err := l.http.Open(ctx, src.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", contracts.ErrSourceUnavailable, src.Name, err)
		}
		raw = body
	} else {
		f, err := os.Open(src.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", contracts.ErrSourceUnavailable, src.Name, err)
		}
		raw = f
	}

	if !src.IsGzip() {
		return raw, nil
	}

	gz, err := gzip.NewReader(raw)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: %s: %v", contracts.ErrSourceUnavailable, src.Name, err)
	}
	return &gzipReadCloser{Reader: gz, raw: raw}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	raw io.Closer
}

func (g *gzipReadCloser) Close() error {
	gzErr := g.Reader.Close()
	if err := g.raw.Close(); err != nil {
		return err
	}
	return gzErr
}

// ReadHeader opens src and returns its column names
func (l *Loader) ReadHeader(ctx context.Context, src Source) ([]string, error) {
	rc, err := l.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	scanner := newScanner(rc)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", contracts.ErrSourceUnavailable, src.Name, err)
		}
		return nil, fmt.Errorf("%w: %s: empty table", contracts.ErrSchemaMismatch, src.Name)
	}
	return splitLine(scanner.Text()), nil
}

// MissingColumns returns the requested columns absent from header
func MissingColumns(header, columns []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	var missing []string
	for _, c := range columns {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// LoadTable reads src and applies fn to every row, block by block.
// Kept values are returned in source order whatever the worker count.
// No partial table is returned on error.
func LoadTable[T any](ctx context.Context, l *Loader, src Source, fn Transform[T]) ([]T, Stats, error) {
	start := time.Now()
	stats := Stats{Source: src.Name}

	rc, err := l.Open(ctx, src)
	if err != nil {
		return nil, stats, err
	}
	defer rc.Close()

	scanner := newScanner(rc)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, stats, fmt.Errorf("%w: %s: %v", contracts.ErrSourceUnavailable, src.Name, err)
		}
		return nil, stats, fmt.Errorf("%w: %s: empty table", contracts.ErrSchemaMismatch, src.Name)
	}

	header := splitLine(scanner.Text())
	if missing := MissingColumns(header, src.Columns); len(missing) > 0 {
		return nil, stats, fmt.Errorf("%w: %s: missing columns %v", contracts.ErrSchemaMismatch, src.Name, missing)
	}

	index := make(map[string]int, len(src.Columns))
	for i, h := range header {
		for _, c := range src.Columns {
			if c == h {
				index[c] = i
			}
		}
	}

	var malformed atomic.Int64
	process := func(lines []string) ([]T, error) {
		out := make([]T, 0, len(lines)/4)
		for _, line := range lines {
			fields := splitLine(line)
			if len(fields) < len(header) {
				malformed.Add(1)
				continue
			}
			v, keep, err := fn(Row{fields: fields, index: index})
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, v)
			}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.config.Workers)

	var mu sync.Mutex
	blocks := make(map[int][]T)

	chunk := make([]string, 0, min(l.config.ChunkSize, 4096))
	flush := func(idx int, lines []string) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := process(lines)
			if err != nil {
				return err
			}
			mu.Lock()
			blocks[idx] = out
			mu.Unlock()
			return nil
		})
	}

	for scanner.Scan() {
		if gctx.Err() != nil {
			break
		}
		chunk = append(chunk, scanner.Text())
		stats.RowsRead++
		if len(chunk) == l.config.ChunkSize {
			flush(stats.Chunks, chunk)
			stats.Chunks++
			chunk = make([]string, 0, len(chunk))
		}
	}
	if len(chunk) > 0 && gctx.Err() == nil {
		flush(stats.Chunks, chunk)
		stats.Chunks++
	}

	if err := g.Wait(); err != nil {
		return nil, stats, fmt.Errorf("load %s: %w", src.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("%w: %s: %v", contracts.ErrSourceUnavailable, src.Name, err)
	}

	total := 0
	for _, b := range blocks {
		total += len(b)
	}
	result := make([]T, 0, total)
	for i := 0; i < stats.Chunks; i++ {
		result = append(result, blocks[i]...)
	}

	stats.RowsKept = len(result)
	stats.RowsMalformed = int(malformed.Load())
	stats.Duration = time.Since(start)

	metrics.AddRows(src.Name, stats.RowsRead, stats.RowsKept, stats.RowsMalformed)
	l.logger.WithFields(map[string]interface{}{
		"source":         src.Name,
		"rows_read":      stats.RowsRead,
		"rows_kept":      stats.RowsKept,
		"rows_malformed": stats.RowsMalformed,
		"chunks":         stats.Chunks,
		"workers":        l.config.Workers,
		"duration":       stats.Duration.String(),
	}).Info("Table loaded")

	return result, stats, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return scanner
}

// splitLine splits a TSV line. IMDb exports use no quoting.
func splitLine(line string) []string {
	return strings.Split(strings.TrimSuffix(line, "\r"), "\t")
}
