package model

// Genres accepted on create and update, in canonical spelling.
var genres = []string{
	"Action",
	"Adventure",
	"Crime",
	"Comedy",
	"Drama",
	"Fantasy",
	"Horror",
	"Thriller",
	"Sci-Fi",
}

// Genres returns the genre enumeration.
func Genres() []string {
	out := make([]string, len(genres))
	copy(out, genres)
	return out
}

// IsGenre reports whether g is one of the enumerated genres (exact match).
func IsGenre(g string) bool {
	for _, v := range genres {
		if v == g {
			return true
		}
	}
	return false
}
