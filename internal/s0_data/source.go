package s0_data

import (
	"os"
	"path/filepath"
	"strings"
)

// Source names used in logs, metrics and errors
const (
	SourceAliases    = "title.akas"
	SourceAttributes = "title.basics"
	SourceRatings    = "title.ratings"
	SourcePrincipals = "title.principals"
	SourcePersons    = "name.basics"
)

// Columns lists the columns the pipeline reads from each source
var Columns = map[string][]string{
	SourceAliases:    {"titleId", "title", "region"},
	SourceAttributes: {"tconst", "titleType", "startYear", "runtimeMinutes", "genres"},
	SourceRatings:    {"tconst", "averageRating", "numVotes"},
	SourcePrincipals: {"tconst", "nconst", "category"},
	SourcePersons:    {"nconst", "primaryName"},
}

// Source describes one tab-separated table and the columns a stage needs from it
type Source struct {
	Name     string
	Location string // local path or http(s) URL; ".gz" is decompressed
	Columns  []string
}

// IsRemote reports whether the source is fetched over HTTP
func (s Source) IsRemote() bool {
	return strings.HasPrefix(s.Location, "http://") || strings.HasPrefix(s.Location, "https://")
}

// IsGzip reports whether the source is gzip compressed
func (s Source) IsGzip() bool {
	return strings.HasSuffix(s.Location, ".gz")
}

// WithColumns returns a copy of s requesting other columns
func (s Source) WithColumns(cols ...string) Source {
	s.Columns = cols
	return s
}

// Files maps each source name to its file name (e.g. "title.akas.tsv.gz")
type Files map[string]string

// Resolve turns file names into Sources requesting their Columns. A file
// present under dir is read locally; otherwise it is fetched from baseURL.
func Resolve(dir, baseURL string, files Files) map[string]Source {
	out := make(map[string]Source, len(files))
	for name, file := range files {
		out[name] = Source{Name: name, Location: locate(dir, baseURL, file), Columns: Columns[name]}
	}
	return out
}

func locate(dir, baseURL, file string) string {
	if strings.HasPrefix(file, "http://") || strings.HasPrefix(file, "https://") || filepath.IsAbs(file) {
		return file
	}

	if dir != "" {
		local := filepath.Join(dir, file)
		if _, err := os.Stat(local); err == nil || baseURL == "" {
			return local
		}
	}

	return strings.TrimRight(baseURL, "/") + "/" + file
}
