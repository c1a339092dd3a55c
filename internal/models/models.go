// package models defines the movie data model
package models

import (
	"fmt"
	"slices"
	"strings"
)

// MaxPages is the highest page TMDB serves for any listing.
const MaxPages = 500

// Movie is a movie summary as returned by TMDB listings.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
	GenreIDs     []int   `json:"genre_ids"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Company is a production company.
type Company struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LogoPath string `json:"logo_path"`
}

// Country is a production country.
type Country struct {
	ISO  string `json:"iso_3166_1"`
	Name string `json:"name"`
}

// MovieDetails is the full movie record.
type MovieDetails struct {
	Movie
	Genres              []Genre   `json:"genres"`
	Runtime             int       `json:"runtime"`
	Budget              int64     `json:"budget"`
	Revenue             int64     `json:"revenue"`
	Tagline             string    `json:"tagline"`
	Status              string    `json:"status"`
	ProductionCompanies []Company `json:"production_companies"`
	ProductionCountries []Country `json:"production_countries"`
}

// GenreNames joins the genre names with ", ".
func (d MovieDetails) GenreNames() string {
	names := make([]string, len(d.Genres))
	for i, g := range d.Genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

// CastMember is one actor credit.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewMember is one crew credit.
type CrewMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

// Credits groups the cast and crew of a movie.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Directors returns the names of crew members whose job is "Director".
func (c Credits) Directors() []string {
	var names []string
	for _, m := range c.Crew {
		if m.Job == "Director" {
			names = append(names, m.Name)
		}
	}
	return names
}

// Video is a trailer, teaser or clip hosted on an external site.
type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// URL returns a watch URL for YouTube and Vimeo videos, or "" for other sites.
func (v Video) URL() string {
	switch v.Site {
	case "YouTube":
		return "https://www.youtube.com/watch?v=" + v.Key
	case "Vimeo":
		return "https://vimeo.com/" + v.Key
	default:
		return ""
	}
}

// MoviePage is one page of a paginated movie listing.
type MoviePage struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Movie `json:"results"`
}

// HasNext reports whether a following page exists.
func (p MoviePage) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether a preceding page exists.
func (p MoviePage) HasPrev() bool { return p.Page > 1 }

// SortOptions lists the sort keys accepted by the discover endpoint.
var SortOptions = []string{
	"popularity.desc",
	"popularity.asc",
	"vote_average.desc",
	"vote_average.asc",
	"release_date.desc",
	"release_date.asc",
}

// DefaultSort is the sort order used when none is given.
const DefaultSort = "popularity.desc"

// Filters narrows discover results. Zero values mean "no filter".
type Filters struct {
	Year      int
	Genre     int
	MinRating float64
	SortBy    string
}

// Validate checks the filter values against what TMDB accepts.
func (f Filters) Validate() error {
	if f.Year < 0 {
		return fmt.Errorf("year must be positive, got %d", f.Year)
	}
	if f.MinRating < 0 || f.MinRating > 10 {
		return fmt.Errorf("minimum rating must be between 0 and 10, got %g", f.MinRating)
	}
	if f.SortBy != "" && !slices.Contains(SortOptions, f.SortBy) {
		return fmt.Errorf("unknown sort order %q (want one of %s)", f.SortBy, strings.Join(SortOptions, ", "))
	}
	return nil
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// ClampPage keeps page within [1, min(totalPages, MaxPages)]. A non-positive totalPages is treated as 1.
func ClampPage(page, totalPages int) int {
	last := CapTotalPages(totalPages)
	if last < 1 {
		last = 1
	}
	return max(1, min(page, last))
}

// CapTotalPages applies the TMDB page ceiling to a reported page count.
func CapTotalPages(totalPages int) int {
	return min(totalPages, MaxPages)
}

// PosterURL joins an image base URL and a TMDB image path. Returns "" when path is empty.
func PosterURL(base, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
