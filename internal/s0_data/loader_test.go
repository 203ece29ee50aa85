package s0_data

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/config"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/httputil"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

const basicsFixture = "tconst\ttitleType\tstartYear\truntimeMinutes\tgenres\n" +
	"tt01\tmovie\t1994\t142\tDrama\n" +
	"tt02\tshort\t1994\t10\tComedy\n" +
	"tt03\tmovie\t\\N\t90\tAction\n" +
	"tt04\tmovie\t2001\t\\N\tDrama,Comedy\n" +
	"broken\tline\n" +
	"tt05\tmovie\t1979\t100\tHorror\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeGzip(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func idTransform(r Row) (string, bool, error) {
	return r.Get("tconst"), r.Get("titleType") == "movie", nil
}

func TestLoadTable_FiltersAndPreservesOrder(t *testing.T) {
	src := Source{Name: SourceAttributes, Location: writeFile(t, "basics.tsv", basicsFixture), Columns: []string{"tconst", "titleType"}}
	loader := NewLoader(Config{ChunkSize: 2}, nil, logger.Nop())

	ids, stats, err := LoadTable(context.Background(), loader, src, idTransform)
	require.NoError(t, err)

	assert.Equal(t, []string{"tt01", "tt03", "tt04", "tt05"}, ids)
	assert.Equal(t, 6, stats.RowsRead)
	assert.Equal(t, 4, stats.RowsKept)
	assert.Equal(t, 1, stats.RowsMalformed)
	assert.Equal(t, 3, stats.Chunks)
}

func TestLoadTable_ParallelMatchesSequential(t *testing.T) {
	var b strings.Builder
	b.WriteString("tconst\ttitleType\n")
	for i := 0; i < 1000; i++ {
		kind := "movie"
		if i%3 == 0 {
			kind = "tvSeries"
		}
		fmt.Fprintf(&b, "tt%05d\t%s\n", i, kind)
	}
	path := writeFile(t, "many.tsv", b.String())
	src := Source{Name: "many", Location: path, Columns: []string{"tconst", "titleType"}}

	seq, _, err := LoadTable(context.Background(), NewLoader(Config{ChunkSize: 1000, Workers: 1}, nil, logger.Nop()), src, idTransform)
	require.NoError(t, err)

	par, stats, err := LoadTable(context.Background(), NewLoader(Config{ChunkSize: 7, Workers: 8}, nil, logger.Nop()), src, idTransform)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	assert.Equal(t, 143, stats.Chunks)
	assert.Len(t, par, 666)
}

func TestLoadTable_Gzip(t *testing.T) {
	src := Source{Name: SourceAttributes, Location: writeGzip(t, "basics.tsv.gz", basicsFixture), Columns: []string{"tconst", "titleType"}}

	ids, _, err := LoadTable(context.Background(), NewLoader(Config{}, nil, logger.Nop()), src, idTransform)
	require.NoError(t, err)
	assert.Equal(t, []string{"tt01", "tt03", "tt04", "tt05"}, ids)
}

func TestLoadTable_Remote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/title.basics.tsv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(basicsFixture))
	}))
	defer server.Close()

	cfg := &config.Config{Data: config.DataConfig{HTTPTimeout: 5 * time.Second, FetchRatePerSec: 100}}
	client := httputil.New(cfg, logger.Nop()).DisableRetry()
	loader := NewLoader(Config{}, client, logger.Nop())

	src := Source{Name: SourceAttributes, Location: server.URL + "/title.basics.tsv", Columns: []string{"tconst", "titleType"}}
	ids, _, err := LoadTable(context.Background(), loader, src, idTransform)
	require.NoError(t, err)
	assert.Len(t, ids, 4)

	missing := Source{Name: SourceRatings, Location: server.URL + "/title.ratings.tsv", Columns: []string{"tconst"}}
	_, _, err = LoadTable(context.Background(), loader, missing, idTransform)
	assert.ErrorIs(t, err, contracts.ErrSourceUnavailable)
}

func TestLoadTable_RemoteSlowStream(t *testing.T) {
	// 20 rows at 50ms each stream for ~1s against a 300ms timeout
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "tconst\ttitleType\n")
		for i := 0; i < 20; i++ {
			fmt.Fprintf(w, "tt%02d\tmovie\n", i)
			flusher.Flush()
			select {
			case <-r.Context().Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
		}
	}))
	defer server.Close()

	cfg := &config.Config{Data: config.DataConfig{HTTPTimeout: 300 * time.Millisecond, FetchRatePerSec: 100}}
	client := httputil.New(cfg, logger.Nop()).DisableRetry()
	loader := NewLoader(Config{ChunkSize: 4, Workers: 2}, client, logger.Nop())

	src := Source{Name: SourceAttributes, Location: server.URL + "/title.basics.tsv", Columns: []string{"tconst", "titleType"}}
	ids, stats, err := LoadTable(context.Background(), loader, src, idTransform)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.RowsRead)
	require.Len(t, ids, 20)
	assert.Equal(t, "tt00", ids[0])
	assert.Equal(t, "tt19", ids[19])
}

func TestLoadTable_Errors(t *testing.T) {
	path := writeFile(t, "basics.tsv", basicsFixture)
	loader := NewLoader(Config{}, nil, logger.Nop())

	t.Run("missing file", func(t *testing.T) {
		src := Source{Name: "nope", Location: filepath.Join(t.TempDir(), "nope.tsv"), Columns: []string{"tconst"}}
		_, _, err := LoadTable(context.Background(), loader, src, idTransform)
		assert.ErrorIs(t, err, contracts.ErrSourceUnavailable)
	})

	t.Run("missing column", func(t *testing.T) {
		src := Source{Name: SourceAttributes, Location: path, Columns: []string{"tconst", "region"}}
		_, _, err := LoadTable(context.Background(), loader, src, idTransform)
		assert.ErrorIs(t, err, contracts.ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "region")
	})

	t.Run("empty file", func(t *testing.T) {
		src := Source{Name: "empty", Location: writeFile(t, "empty.tsv", ""), Columns: []string{"tconst"}}
		_, _, err := LoadTable(context.Background(), loader, src, idTransform)
		assert.ErrorIs(t, err, contracts.ErrSchemaMismatch)
	})

	t.Run("not gzip", func(t *testing.T) {
		src := Source{Name: "bad", Location: writeFile(t, "bad.tsv.gz", basicsFixture), Columns: []string{"tconst"}}
		_, _, err := LoadTable(context.Background(), loader, src, idTransform)
		assert.ErrorIs(t, err, contracts.ErrSourceUnavailable)
	})

	t.Run("transform error aborts", func(t *testing.T) {
		boom := errors.New("boom")
		src := Source{Name: SourceAttributes, Location: path, Columns: []string{"tconst"}}
		out, _, err := LoadTable(context.Background(), loader, src, func(r Row) (string, bool, error) {
			if r.Get("tconst") == "tt03" {
				return "", false, boom
			}
			return r.Get("tconst"), true, nil
		})
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, out)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := Source{Name: SourceAttributes, Location: path, Columns: []string{"tconst"}}
		_, _, err := LoadTable(ctx, loader, src, idTransform)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRowHelpers(t *testing.T) {
	row := Row{fields: []string{"tt01", `\N`, "1994"}, index: map[string]int{"tconst": 0, "runtimeMinutes": 1, "startYear": 2}}

	assert.Equal(t, "tt01", row.Get("tconst"))
	assert.Equal(t, "", row.Get("genres"))
	assert.True(t, row.IsNoData("runtimeMinutes"))
	assert.False(t, row.IsNoData("startYear"))

	assert.True(t, IsNumeric("1994"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric(`\N`))
	assert.False(t, IsNumeric("-5"))
	assert.Equal(t, 1994, ParseIntOrZero("1994"))
	assert.Equal(t, 0, ParseIntOrZero(`\N`))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "title.akas.tsv.gz"), nil, 0o644))

	sources := Resolve(dir, "https://datasets.imdbws.com/", Files{
		SourceAliases:    "title.akas.tsv.gz",
		SourceAttributes: "title.basics.tsv.gz",
	})

	assert.Equal(t, filepath.Join(dir, "title.akas.tsv.gz"), sources[SourceAliases].Location)
	assert.Equal(t, "https://datasets.imdbws.com/title.basics.tsv.gz", sources[SourceAttributes].Location)
	assert.True(t, sources[SourceAttributes].IsRemote())
	assert.True(t, sources[SourceAttributes].IsGzip())
	assert.Equal(t, SourceAliases, sources[SourceAliases].Name)
	assert.Equal(t, []string{"titleId", "title", "region"}, sources[SourceAliases].Columns)
}

func TestSourceGate_Check(t *testing.T) {
	path := writeFile(t, "basics.tsv", basicsFixture)
	loader := NewLoader(Config{}, nil, logger.Nop())

	gate := NewSourceGate(loader, map[string]Source{
		SourceAttributes: {Name: SourceAttributes, Location: path, Columns: []string{"tconst", "genres"}},
		SourceAliases:    {Name: SourceAliases, Location: path, Columns: []string{"titleId", "region"}},
		SourceRatings:    {Name: SourceRatings, Location: filepath.Join(t.TempDir(), "missing.tsv")},
	}, logger.Nop())

	report, err := gate.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Sources, 3)

	// sorted by name
	assert.Equal(t, SourceAliases, report.Sources[0].Name)
	assert.Equal(t, []string{"titleId", "region"}, report.Sources[0].MissingColumns)
	assert.True(t, report.Sources[1].OK())
	assert.False(t, report.Sources[2].Reachable)
	assert.False(t, report.Passed())
	assert.InDelta(t, 1.0/3.0, report.Coverage(), 1e-9)
}
