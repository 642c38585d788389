package tasks

import (
	"fmt"

	"github.com/desertthunder/multilink/internal/models"
)

// ProgressUpdate represents a progress event while a link is being resolved.
//
// Used to send real-time updates to the CLI or transport layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Pipeline phase enumeration
type Phase int

const (
	Recognize Phase = iota
	Extract
	Search
)

func (p Phase) String() string {
	switch p {
	case Recognize:
		return "recognize"
	case Extract:
		return "extract"
	case Search:
		return "search"
	default:
		return ""
	}
}

func recognizedUpdate(desc models.ServiceDescriptor, link string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Recognize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recognized %s link: %s", desc.DisplayName, link),
		Data:    desc,
	}
}

func extractingUpdate(desc models.ServiceDescriptor) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Extract,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Reading track details from %s...", desc.DisplayName),
	}
}

func extractedUpdate(ref models.TrackReference) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Extract,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found: %s - %s", ref.Performer, ref.Title),
		Data:    ref,
	}
}

func searchingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Search,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching %d other services...", total),
	}
}

func searchedUpdate(step, total int, name string, res models.CrossServiceResult) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s", step, total, name)
	switch {
	case !res.Found():
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, name, res.Err)
	case res.Fallback:
		msg = fmt.Sprintf("[%d/%d] ~ %s (search page)", step, total, name)
	}
	return ProgressUpdate{
		Phase:   Search,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}
