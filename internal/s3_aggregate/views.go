package s3_aggregate

import (
	"strconv"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// MeanRuntime is the passthrough mean reported by YearGenre
const MeanRuntime = "runtime"

type yearGenreFact struct {
	year    int
	genre   string
	runtime int
	rating  float64
	votes   int64
}

// YearGenre explodes titles by genre, keeps the selected genres, inner-joins
// ratings and aggregates by (year, genre)
func YearGenre(titles []contracts.Title, ratings map[string]contracts.Rating, sel contracts.GenreSelection) Result {
	facts := make([]yearGenreFact, 0, len(titles))
	for _, t := range titles {
		r, ok := ratings[t.ID]
		if !ok {
			continue
		}
		for _, g := range t.Genres {
			if !sel.Contains(g) {
				continue
			}
			facts = append(facts, yearGenreFact{
				year:    t.Year,
				genre:   g,
				runtime: t.RuntimeMinutes,
				rating:  r.AverageRating,
				votes:   r.NumVotes,
			})
		}
	}

	return Aggregate(facts, Grouping[yearGenreFact]{
		Key:    func(f yearGenreFact) []string { return []string{strconv.Itoa(f.year), f.genre} },
		Rating: func(f yearGenreFact) float64 { return f.rating },
		Votes:  func(f yearGenreFact) int64 { return f.votes },
		Means: map[string]func(yearGenreFact) (float64, bool){
			MeanRuntime: func(f yearGenreFact) (float64, bool) {
				return float64(f.runtime), f.runtime > 0
			},
		},
	})
}

// ByPerson aggregates credit facts by display name.
// Distinct people sharing a name fall into one bucket; their ids are kept in Members.
func ByPerson(facts []contracts.CreditFact) Result {
	return Aggregate(facts, Grouping[contracts.CreditFact]{
		Key:    func(f contracts.CreditFact) []string { return []string{f.Name} },
		Member: func(f contracts.CreditFact) string { return f.PersonID },
		Rating: func(f contracts.CreditFact) float64 { return f.AverageRating },
		Votes:  func(f contracts.CreditFact) int64 { return f.NumVotes },
	})
}

// Build computes the three S5 views
// ⭐ SSOT: S5 → S6 aggregates
func Build(titles []contracts.Title, ratings map[string]contracts.Rating, credits *contracts.Credits, sel contracts.GenreSelection) *contracts.Aggregates {
	yg := YearGenre(titles, ratings, sel)
	actors := ByPerson(credits.Acting)
	directors := ByPerson(credits.Directing)

	return &contracts.Aggregates{
		YearGenre:  yg.Buckets,
		Actors:     actors.Buckets,
		Directors:  directors.Buckets,
		Degenerate: len(yg.Degenerate) + len(actors.Degenerate) + len(directors.Degenerate),
	}
}
