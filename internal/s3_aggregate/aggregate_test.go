package s3_aggregate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

func fact(name, id string, rating float64, votes int64) contracts.CreditFact {
	return contracts.CreditFact{PersonID: id, Name: name, AverageRating: rating, NumVotes: votes}
}

func TestByPerson_ZeroVoteFactDoesNotMoveRating(t *testing.T) {
	res := ByPerson([]contracts.CreditFact{
		fact("Ann", "nm1", 8.0, 10),
		fact("Ann", "nm1", 6.0, 0),
	})

	require.Len(t, res.Buckets, 1)
	b := res.Buckets[0]
	assert.InDelta(t, 8.0, b.WeightedRating, 1e-9)
	assert.Equal(t, int64(10), b.TotalVotes)
	assert.Equal(t, 2, b.Count)
	assert.Equal(t, []string{"nm1"}, b.Members)
	assert.NoError(t, res.Err())
}

func TestByPerson_WeightedIdentity(t *testing.T) {
	res := ByPerson([]contracts.CreditFact{
		fact("Ann", "nm1", 8.0, 100),
		fact("Ann", "nm1", 6.0, 300),
		fact("Bob", "nm2", 7.5, 40),
	})

	require.Len(t, res.Buckets, 2)
	for _, b := range res.Buckets {
		assert.InDelta(t, b.WeightedSum, b.WeightedRating*float64(b.TotalVotes), 1e-6, b.KeyString())
	}
	assert.InDelta(t, 6.5, res.Buckets[0].WeightedRating, 1e-9)
}

func TestByPerson_DegenerateBucketExcluded(t *testing.T) {
	res := ByPerson([]contracts.CreditFact{
		fact("Zed", "nm9", 9.0, 0),
		fact("Ann", "nm1", 7.0, 5),
	})

	require.Len(t, res.Buckets, 1)
	assert.Equal(t, []string{"Ann"}, res.Buckets[0].Key)
	require.Len(t, res.Degenerate, 1)
	assert.Equal(t, []string{"Zed"}, res.Degenerate[0].Key)
	assert.True(t, errors.Is(res.Err(), contracts.ErrDegenerateAggregate))
}

func TestByPerson_HomonymsShareBucket(t *testing.T) {
	res := ByPerson([]contracts.CreditFact{
		fact("John Smith", "nm1", 6.0, 10),
		fact("John Smith", "nm2", 8.0, 10),
		fact("John Smith", "nm1", 7.0, 10),
	})

	require.Len(t, res.Buckets, 1)
	assert.Equal(t, []string{"nm1", "nm2"}, res.Buckets[0].Members)
	assert.Equal(t, 3, res.Buckets[0].Count)
}

func TestYearGenre(t *testing.T) {
	titles := []contracts.Title{
		{ID: "tt1", Year: 1994, RuntimeMinutes: 142, Genres: []string{"Drama", "Crime"}},
		{ID: "tt2", Year: 1994, RuntimeMinutes: 0, Genres: []string{"Drama"}},
		{ID: "tt3", Year: 1995, RuntimeMinutes: 100, Genres: []string{"Comedy"}},
		{ID: "tt4", Year: 1994, RuntimeMinutes: 90, Genres: []string{"Drama"}}, // unrated
	}
	ratings := map[string]contracts.Rating{
		"tt1": {TitleID: "tt1", AverageRating: 9.0, NumVotes: 300},
		"tt2": {TitleID: "tt2", AverageRating: 7.0, NumVotes: 100},
		"tt3": {TitleID: "tt3", AverageRating: 6.0, NumVotes: 50},
	}

	res := YearGenre(titles, ratings, contracts.NewGenreSelection("Drama", "Comedy"))

	require.Len(t, res.Buckets, 2)
	drama := res.Buckets[0]
	assert.Equal(t, []string{"1994", "Drama"}, drama.Key)
	assert.Equal(t, int64(400), drama.TotalVotes)
	assert.InDelta(t, 8.5, drama.WeightedRating, 1e-9)
	assert.Equal(t, 2, drama.Count)
	// unknown runtime stays out of the mean
	assert.InDelta(t, 142.0, drama.Means[MeanRuntime], 1e-9)

	comedy := res.Buckets[1]
	assert.Equal(t, []string{"1995", "Comedy"}, comedy.Key)
	assert.InDelta(t, 100.0, comedy.Means[MeanRuntime], 1e-9)
}

func TestAggregate_SortedByKey(t *testing.T) {
	type f struct {
		k string
		v int64
	}
	res := Aggregate([]f{{"c", 1}, {"a", 1}, {"b", 1}, {"a", 2}}, Grouping[f]{
		Key:    func(x f) []string { return []string{x.k} },
		Rating: func(x f) float64 { return 5 },
		Votes:  func(x f) int64 { return x.v },
	})

	require.Len(t, res.Buckets, 3)
	assert.Equal(t, "a", res.Buckets[0].KeyString())
	assert.Equal(t, "b", res.Buckets[1].KeyString())
	assert.Equal(t, "c", res.Buckets[2].KeyString())
	assert.Equal(t, int64(3), res.Buckets[0].TotalVotes)
	assert.Nil(t, res.Buckets[0].Means)
}

func TestBuild(t *testing.T) {
	credits := &contracts.Credits{
		Acting:    []contracts.CreditFact{fact("Ann", "nm1", 8.0, 10)},
		Directing: []contracts.CreditFact{fact("Dan", "nm2", 7.0, 0)},
	}

	aggs := Build(nil, nil, credits, contracts.NewGenreSelection())

	assert.Len(t, aggs.Actors, 1)
	assert.Empty(t, aggs.Directors)
	assert.Empty(t, aggs.YearGenre)
	assert.Equal(t, 1, aggs.Degenerate)
}

func TestSortBuckets_RestoresByteOrderAfterCollatedLoad(t *testing.T) {
	// order a locale-aware collation returns: case-insensitive, "de F" < "Dep"
	collated := []contracts.Bucket{
		{Key: []string{"de Funès"}, TotalVotes: 500},
		{Key: []string{"Depardieu"}, TotalVotes: 500},
	}
	fresh := ByPerson([]contracts.CreditFact{
		fact("de Funès", "nm1", 7.0, 500),
		fact("Depardieu", "nm2", 7.0, 500),
	}).Buckets

	SortBuckets(collated)

	require.Len(t, fresh, 2)
	assert.Equal(t, fresh[0].Key, collated[0].Key)
	assert.Equal(t, []string{"Depardieu"}, collated[0].Key)
}
