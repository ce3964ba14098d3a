package releasenotes

import (
	"strings"
	"time"

	"modbase/internal/services/steam"
)

// Announcement is one feed entry reduced to what matching needs.
type Announcement struct {
	ID     string
	Title  string
	Body   string
	Posted time.Time
}

// FromEvent converts a store event.
func FromEvent(e steam.Event) Announcement {
	return Announcement{
		ID:     e.GID,
		Title:  e.EventName,
		Body:   e.AnnouncementBody.Body,
		Posted: e.Posted(),
	}
}

// Date is the UTC publish date as YYYY-MM-DD.
func (a Announcement) Date() string {
	return a.Posted.UTC().Format(time.DateOnly)
}

var previewKeywords = []string{"dev diary", "developer diary", "dev update", "upcoming", "preview"}

// IsPreview reports whether the title marks a dev diary or preview rather
// than a shipped patch.
func (a Announcement) IsPreview() bool {
	title := strings.ToLower(a.Title)
	for _, kw := range previewKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
