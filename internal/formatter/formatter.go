// package formatter provides functions to export movie lists to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
)

// Formats lists the accepted export formats.
var Formats = []string{"json", "csv", "markdown", "txt"}

// MovieList is an ordered, titled list of movies to export.
type MovieList struct {
	Title        string                `json:"title"`
	Description  string                `json:"description,omitempty"`
	Movies       []models.MovieDetails `json:"movies"`
	ImageBaseURL string                `json:"-"`
}

func (l *MovieList) posterURL(m models.MovieDetails) string {
	if l.ImageBaseURL == "" {
		return ""
	}
	return models.PosterURL(l.ImageBaseURL, m.PosterPath)
}

// ExportToCSV converts a MovieList to CSV format with columns: ID, Title, Year, Rating, Runtime, Genres, Poster
func ExportToCSV(list *MovieList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Rating", "Runtime", "Genres", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range list.Movies {
		runtime := ""
		if movie.Runtime > 0 {
			runtime = strconv.Itoa(movie.Runtime)
		}
		record := []string{
			strconv.Itoa(movie.ID),
			movie.Title,
			shared.ReleaseYear(movie.ReleaseDate),
			strconv.FormatFloat(movie.VoteAverage, 'f', 1, 64),
			runtime,
			movie.GenreNames(),
			list.posterURL(movie),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a MovieList to Markdown format, linking posters when an image base URL is set
func ExportToMarkdown(list *MovieList) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", list.Title))

	if list.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", list.Description))
	}

	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(list.Movies)))

	buf.WriteString("## Movies\n\n")
	for i, movie := range list.Movies {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, summaryLine(movie)))
		if poster := list.posterURL(movie); poster != "" {
			buf.WriteString(fmt.Sprintf("   ![%s](%s)\n", movie.Title, poster))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a MovieList to plain text format
func ExportToText(list *MovieList) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("List: %s\n", list.Title))
	if list.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", list.Description))
	}
	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(list.Movies)))

	for i, movie := range list.Movies {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, movie.Title, shared.ReleaseYear(movie.ReleaseDate)))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a MovieList to indented JSON
func ExportToJSON(list *MovieList) ([]byte, error) {
	return shared.MarshalJSON(list, true)
}

// summaryLine renders "Title (Year) ★ 8.4 · 2h 19m · Genres", omitting unknown parts.
func summaryLine(m models.MovieDetails) string {
	parts := []string{fmt.Sprintf("%s (%s) ★ %.1f", m.Title, shared.ReleaseYear(m.ReleaseDate), m.VoteAverage)}
	if m.Runtime > 0 {
		parts = append(parts, shared.FormatRuntime(m.Runtime))
	}
	if genres := m.GenreNames(); genres != "" {
		parts = append(parts, genres)
	}
	return strings.Join(parts, " · ")
}

// Export renders list in the named format.
func Export(list *MovieList, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(list)
	case "markdown", "md":
		return ExportToMarkdown(list)
	case "txt", "text":
		return ExportToText(list)
	case "json", "":
		return ExportToJSON(list)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// Extension returns the file extension used for format, including the dot.
func Extension(format string) string {
	switch format {
	case "csv":
		return ".csv"
	case "markdown", "md":
		return ".md"
	case "txt", "text":
		return ".txt"
	default:
		return ".json"
	}
}

// WriteExport renders list and writes it to path, creating parent directories.
//
// An empty path defaults to "favorites" plus the format's extension in the working directory.
func WriteExport(list *MovieList, format, path string) (string, error) {
	data, err := Export(list, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "favorites" + Extension(format)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
