package tasks

import (
	"fmt"

	"github.com/desertthunder/reel/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchDetails Phase = iota
	FetchCredits
	FetchSimilar
	FetchVideos
	FetchFavorites
	CachePosters
	ExportList
)

func (p Phase) String() string {
	switch p {
	case FetchDetails:
		return "fetch_details"
	case FetchCredits:
		return "fetch_credits"
	case FetchSimilar:
		return "fetch_similar"
	case FetchVideos:
		return "fetch_videos"
	case FetchFavorites:
		return "fetch_favorites"
	case CachePosters:
		return "cache_posters"
	case ExportList:
		return "export_list"
	default:
		return ""
	}
}

func sectionUpdate(phase Phase, step, total int, id int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s for movie %d", step, total, phase, id),
	}
}

func favoritesStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching %d favorites...", total),
	}
}

func favoriteFetchedUpdate(step, total int, movie *models.MovieDetails) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, movie.Title),
		Data:    movie,
	}
}

func favoriteCachedUpdate(step, total int, movie *models.MovieDetails) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ~ %s (cached copy)", step, total, movie.Title),
		Data:    movie,
	}
}

func favoriteFailedUpdate(step, total int, id int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ movie %d: %v", step, total, id, err),
	}
}

func cachePostersUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CachePosters,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Caching %d posters...", total),
	}
}

func postersCachedUpdate(stored, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CachePosters,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Cached %d new posters (%d requested)", stored, total),
	}
}

func exportUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportList,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %d movies to %s", count, path),
		Data:    path,
	}
}
