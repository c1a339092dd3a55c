package formatter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
	th "github.com/desertthunder/reel/internal/testing"
)

func testList() *MovieList {
	return &MovieList{
		Title:        "Favorites",
		Description:  "Movies I keep coming back to",
		ImageBaseURL: "https://image.tmdb.org/t/p/w500",
		Movies: []models.MovieDetails{
			{
				Movie: models.Movie{
					ID:          550,
					Title:       "Fight Club",
					PosterPath:  "/fc.jpg",
					ReleaseDate: "1999-10-15",
					VoteAverage: 8.43,
				},
				Runtime: 139,
				Genres:  []models.Genre{{ID: 18, Name: "Drame"}, {ID: 53, Name: "Thriller"}},
			},
			{
				Movie: models.Movie{ID: 13, Title: "Forrest Gump, the movie", VoteAverage: 8.5},
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testList())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Title,Year,Rating,Runtime,Genres,Poster") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "550,Fight Club,1999,8.4,139,\"Drame, Thriller\",https://image.tmdb.org/t/p/w500/fc.jpg") {
			t.Errorf("CSV missing first movie, got: %s", output)
		}
		if !strings.Contains(output, "13,\"Forrest Gump, the movie\",----,8.5,,,") {
			t.Errorf("CSV did not quote title or blank unknown fields, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testList())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		for _, want := range []string{
			"# Favorites",
			"Movies I keep coming back to",
			"**Movies**: 2",
			"## Movies",
			"1. Fight Club (1999) ★ 8.4 · 2h 19m · Drame, Thriller",
			"   ![Fight Club](https://image.tmdb.org/t/p/w500/fc.jpg)",
			"2. Forrest Gump, the movie (----) ★ 8.5",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
		if strings.Contains(output, "![Forrest") {
			t.Error("expected no poster for a movie without poster path")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testList())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "List: Favorites\n") || !strings.Contains(output, "Movies: 2\n") {
			t.Errorf("Text missing header, got: %s", output)
		}
		if !strings.Contains(output, "1. Fight Club (1999)\n") {
			t.Errorf("Text missing movie line, got: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testList())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, `"title": "Favorites"`) || !strings.Contains(output, `"id": 550`) {
			t.Errorf("JSON missing fields, got: %s", output)
		}
		if strings.Contains(output, "ImageBaseURL") {
			t.Error("JSON should not include the image base URL")
		}
	})

	t.Run("Empty List", func(t *testing.T) {
		list := &MovieList{Title: "Empty"}
		for _, format := range Formats {
			if _, err := Export(list, format); err != nil {
				t.Errorf("Export(%s) failed on empty list: %v", format, err)
			}
		}
	})
}

func TestExport(t *testing.T) {
	t.Run("Unknown Format", func(t *testing.T) {
		_, err := Export(testList(), "xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Extensions", func(t *testing.T) {
		tests := map[string]string{"json": ".json", "csv": ".csv", "markdown": ".md", "md": ".md", "txt": ".txt", "": ".json"}
		for format, want := range tests {
			if got := Extension(format); got != want {
				t.Errorf("Extension(%q) = %s, want %s", format, got, want)
			}
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Writes Nested Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "exports", "favorites.csv")

		written, err := WriteExport(testList(), "csv", path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "ID,Title") {
			t.Errorf("unexpected content %q", content)
		}
	})

	t.Run("Default Path", func(t *testing.T) {
		wd := th.MustGetwd(t)
		dir := t.TempDir()
		th.MustChdir(t, dir)
		defer th.MustChdir(t, wd)

		written, err := WriteExport(testList(), "markdown", "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "favorites.md" {
			t.Errorf("expected favorites.md, got %s", written)
		}
		th.AssertFileExists(t, filepath.Join(dir, "favorites.md"))
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := WriteExport(testList(), "json", filepath.Join(blocker, "out.json")); err == nil {
			t.Error("expected error when parent is a file")
		}
	})
}
