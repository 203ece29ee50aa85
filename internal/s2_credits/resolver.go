package s2_credits

import (
	"context"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s0_data"
)

// LoadCredits loads acting and directing credits. When scope is non-nil,
// credits of titles outside it are dropped while loading.
func (r *Reader) LoadCredits(ctx context.Context, scope map[string]struct{}) ([]contracts.Credit, error) {
	credits, _, err := s0_data.LoadTable(ctx, r.loader, r.principals, func(row s0_data.Row) (contracts.Credit, bool, error) {
		role, ok := contracts.RoleFromCategory(row.Get("category"))
		if !ok {
			return contracts.Credit{}, false, nil
		}
		titleID := row.Get("tconst")
		if scope != nil {
			if _, in := scope[titleID]; !in {
				return contracts.Credit{}, false, nil
			}
		}
		return contracts.Credit{TitleID: titleID, PersonID: row.Get("nconst"), Role: role}, true, nil
	})
	return credits, err
}

// LoadPersons loads person names. When scope is non-nil only those ids are kept.
func (r *Reader) LoadPersons(ctx context.Context, scope map[string]struct{}) ([]contracts.Person, error) {
	persons, _, err := s0_data.LoadTable(ctx, r.loader, r.persons, func(row s0_data.Row) (contracts.Person, bool, error) {
		id := row.Get("nconst")
		if scope != nil {
			if _, in := scope[id]; !in {
				return contracts.Person{}, false, nil
			}
		}
		return contracts.Person{ID: id, Name: row.Get("primaryName")}, true, nil
	})
	return persons, err
}

// PersonIDs returns the distinct person ids referenced by credits
func PersonIDs(credits []contracts.Credit) map[string]struct{} {
	ids := make(map[string]struct{}, len(credits))
	for _, c := range credits {
		ids[c.PersonID] = struct{}{}
	}
	return ids
}

// Resolve splits credits by role, drops exact duplicates and inner-joins
// person names then ratings. Output follows credit order.
// ⭐ SSOT: S4 → S5 credit facts
func Resolve(credits []contracts.Credit, persons []contracts.Person, ratings map[string]contracts.Rating) *contracts.Credits {
	names := make(map[string]string, len(persons))
	for _, p := range persons {
		if _, ok := names[p.ID]; !ok {
			names[p.ID] = p.Name
		}
	}

	out := &contracts.Credits{
		Acting:    make([]contracts.CreditFact, 0),
		Directing: make([]contracts.CreditFact, 0),
	}
	seen := make(map[contracts.Credit]struct{}, len(credits))

	for _, c := range credits {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		name, ok := names[c.PersonID]
		if !ok {
			continue
		}
		rating, ok := ratings[c.TitleID]
		if !ok {
			continue
		}

		fact := contracts.CreditFact{
			TitleID:       c.TitleID,
			PersonID:      c.PersonID,
			Name:          name,
			Role:          c.Role,
			AverageRating: rating.AverageRating,
			NumVotes:      rating.NumVotes,
		}

		switch c.Role {
		case contracts.RoleActing:
			out.Acting = append(out.Acting, fact)
		case contracts.RoleDirecting:
			out.Directing = append(out.Directing, fact)
		}
	}

	return out
}

// FactsByTitle groups facts of both roles by title id
func FactsByTitle(credits *contracts.Credits) map[string][]contracts.CreditFact {
	byTitle := make(map[string][]contracts.CreditFact)
	for _, f := range credits.Acting {
		byTitle[f.TitleID] = append(byTitle[f.TitleID], f)
	}
	for _, f := range credits.Directing {
		byTitle[f.TitleID] = append(byTitle[f.TitleID], f)
	}
	return byTitle
}
