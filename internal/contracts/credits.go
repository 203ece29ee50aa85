package contracts

// Rating is one row of the ratings table
type Rating struct {
	TitleID       string  `json:"title_id"`
	AverageRating float64 `json:"average_rating"` // 1.0–10.0
	NumVotes      int64   `json:"num_votes"`
}

// RatedTitle is a Title inner-joined with its rating
// ⭐ SSOT: S3 → S5/S7 rated title
type RatedTitle struct {
	Title
	AverageRating float64 `json:"average_rating"`
	NumVotes      int64   `json:"num_votes"`
}

// Role is the credited role kept by the credits resolver
type Role string

const (
	RoleActing    Role = "acting"
	RoleDirecting Role = "directing"
)

// RoleFromCategory maps an IMDb principal category to a Role
func RoleFromCategory(category string) (Role, bool) {
	switch category {
	case "actor", "actress":
		return RoleActing, true
	case "director":
		return RoleDirecting, true
	default:
		return "", false
	}
}

// Credit is one (title, person, role) row from the principals table
type Credit struct {
	TitleID  string `json:"title_id"`
	PersonID string `json:"person_id"`
	Role     Role   `json:"role"`
}

// Person is one row of the names table
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreditFact is a deduplicated credit with person name and title rating
// ⭐ SSOT: S4 → S5/S7 credit fact
type CreditFact struct {
	TitleID       string  `json:"title_id"`
	PersonID      string  `json:"person_id"`
	Name          string  `json:"name"`
	Role          Role    `json:"role"`
	AverageRating float64 `json:"average_rating"`
	NumVotes      int64   `json:"num_votes"`
}

// Credits is the S4 output
type Credits struct {
	Acting    []CreditFact `json:"acting"`
	Directing []CreditFact `json:"directing"`
}
