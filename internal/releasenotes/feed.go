package releasenotes

import (
	"context"
	"iter"

	"modbase/internal/services/steam"
)

// EventSource serves pages of the announcement feed.
type EventSource interface {
	EventsPage(ctx context.Context, appID string, offset, count int) ([]steam.Event, error)
}

// Feed walks the announcement feed a page at a time, up to a page ceiling.
// Pages fetched once are kept for the lifetime of the Feed, so searching for
// several versions in one run does not refetch the head of the feed.
type Feed struct {
	source   EventSource
	appID    string
	pageSize int
	maxPages int
	pacer    *steam.Pacer

	pages     [][]Announcement
	exhausted bool
	fetches   int
}

// NewFeed creates a feed reader.
func NewFeed(source EventSource, appID string, pageSize, maxPages int, pacer *steam.Pacer) *Feed {
	if pageSize <= 0 {
		pageSize = 100
	}
	if maxPages <= 0 {
		maxPages = 1
	}
	return &Feed{source: source, appID: appID, pageSize: pageSize, maxPages: maxPages, pacer: pacer}
}

// Fetches reports how many remote page requests have been made.
func (f *Feed) Fetches() int { return f.fetches }

// PageSize returns the number of announcements requested per page.
func (f *Feed) PageSize() int { return f.pageSize }

// Pages yields pages lazily. Iteration ends at an empty page, at the page
// ceiling, or after yielding a fetch error.
func (f *Feed) Pages(ctx context.Context) iter.Seq2[[]Announcement, error] {
	return func(yield func([]Announcement, error) bool) {
		for i := 0; i < f.maxPages; i++ {
			if i < len(f.pages) {
				if !yield(f.pages[i], nil) {
					return
				}
				continue
			}
			if f.exhausted {
				return
			}
			page, err := f.fetch(ctx, i*f.pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page) == 0 {
				f.exhausted = true
				return
			}
			f.pages = append(f.pages, page)
			if !yield(page, nil) {
				return
			}
		}
	}
}

func (f *Feed) fetch(ctx context.Context, offset int) ([]Announcement, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	f.fetches++
	events, err := f.source.EventsPage(ctx, f.appID, offset, f.pageSize)
	if err != nil {
		return nil, err
	}
	page := make([]Announcement, 0, len(events))
	for _, e := range events {
		page = append(page, FromEvent(e))
	}
	return page, nil
}
