package s0_data

import (
	"strconv"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// Row is one data line restricted to the requested columns
type Row struct {
	fields []string
	index  map[string]int
}

// Get returns the raw value of column, "" if the column was not requested
func (r Row) Get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// IsNoData reports whether column holds the "\N" sentinel
func (r Row) IsNoData(column string) bool {
	return r.Get(column) == contracts.NoData
}

// IsNumeric reports whether s is a non-empty run of ASCII digits
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseIntOrZero parses a digit string, returning 0 for "\N" or anything non-numeric
func ParseIntOrZero(s string) int {
	if !IsNumeric(s) {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
