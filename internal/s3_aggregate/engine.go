package s3_aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// Grouping parametrizes Aggregate over a fact type
type Grouping[T any] struct {
	// Key returns the grouping key parts of a fact
	Key func(T) []string
	// Member optionally returns an id collected per bucket (e.g. person id)
	Member func(T) string
	Rating func(T) float64
	Votes  func(T) int64
	// Means are passthrough means; ok=false leaves the fact out of that mean
	Means map[string]func(T) (value float64, ok bool)
}

// Degenerate is a bucket excluded because its total votes are zero
type Degenerate struct {
	Key   []string `json:"key"`
	Count int      `json:"count"`
}

// Result holds the buckets of one aggregation
type Result struct {
	Buckets    []contracts.Bucket `json:"buckets"`
	Degenerate []Degenerate       `json:"degenerate,omitempty"`
}

// Err reports excluded buckets as contracts.ErrDegenerateAggregate, nil if none
func (r Result) Err() error {
	if len(r.Degenerate) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d bucket(s) excluded", contracts.ErrDegenerateAggregate, len(r.Degenerate))
}

type meanAcc struct {
	sum float64
	n   int
}

type acc struct {
	key     []string
	members []string
	seen    map[string]struct{}
	votes   int64
	wsum    float64
	count   int
	means   map[string]*meanAcc
}

// Aggregate groups facts by g.Key and computes vote-weighted ratings.
// Zero-vote facts add nothing to either sum but are counted.
// Buckets whose total votes are zero are excluded and listed in Degenerate.
// Buckets are sorted by key parts.
func Aggregate[T any](facts []T, g Grouping[T]) Result {
	buckets := make(map[string]*acc)
	order := make([]string, 0)

	for _, f := range facts {
		key := g.Key(f)
		id := strings.Join(key, "\x1f")

		a, ok := buckets[id]
		if !ok {
			a = &acc{key: key, means: make(map[string]*meanAcc, len(g.Means))}
			buckets[id] = a
			order = append(order, id)
		}

		votes := g.Votes(f)
		a.votes += votes
		a.wsum += g.Rating(f) * float64(votes)
		a.count++

		if g.Member != nil {
			m := g.Member(f)
			if a.seen == nil {
				a.seen = make(map[string]struct{})
			}
			if _, dup := a.seen[m]; !dup {
				a.seen[m] = struct{}{}
				a.members = append(a.members, m)
			}
		}

		for name, fn := range g.Means {
			v, ok := fn(f)
			if !ok {
				continue
			}
			m := a.means[name]
			if m == nil {
				m = &meanAcc{}
				a.means[name] = m
			}
			m.sum += v
			m.n++
		}
	}

	res := Result{Buckets: make([]contracts.Bucket, 0, len(order))}
	for _, id := range order {
		a := buckets[id]
		if a.votes == 0 {
			res.Degenerate = append(res.Degenerate, Degenerate{Key: a.key, Count: a.count})
			continue
		}

		b := contracts.Bucket{
			Key:            a.key,
			Members:        a.members,
			TotalVotes:     a.votes,
			WeightedSum:    a.wsum,
			WeightedRating: a.wsum / float64(a.votes),
			Count:          a.count,
		}
		if len(a.means) > 0 {
			b.Means = make(map[string]float64, len(a.means))
			for name, m := range a.means {
				b.Means[name] = m.sum / float64(m.n)
			}
		}
		res.Buckets = append(res.Buckets, b)
	}

	SortBuckets(res.Buckets)
	sort.SliceStable(res.Degenerate, func(i, j int) bool {
		return lessKey(res.Degenerate[i].Key, res.Degenerate[j].Key)
	})

	return res
}

// SortBuckets orders buckets by key parts, byte-wise
func SortBuckets(buckets []contracts.Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return lessKey(buckets[i].Key, buckets[j].Key)
	})
}

func lessKey(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
