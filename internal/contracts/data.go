package contracts

import "time"

// SourceStatus is the S0 check result for one source table
type SourceStatus struct {
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	Reachable      bool     `json:"reachable"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// OK reports whether the source can be loaded
func (s *SourceStatus) OK() bool {
	return s.Reachable && len(s.MissingColumns) == 0
}

// SourceReport summarizes the S0 check across all source tables
// ⭐ SSOT: S0 → S1 source validation
type SourceReport struct {
	CheckedAt time.Time      `json:"checked_at"`
	Sources   []SourceStatus `json:"sources"`
}

// Passed reports whether every source is usable
func (r *SourceReport) Passed() bool {
	if len(r.Sources) == 0 {
		return false
	}
	for i := range r.Sources {
		if !r.Sources[i].OK() {
			return false
		}
	}
	return true
}

// Coverage returns the fraction of usable sources
func (r *SourceReport) Coverage() float64 {
	if len(r.Sources) == 0 {
		return 0.0
	}

	ok := 0
	for i := range r.Sources {
		if r.Sources[i].OK() {
			ok++
		}
	}
	return float64(ok) / float64(len(r.Sources))
}
