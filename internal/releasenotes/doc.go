// Package releasenotes finds, converts, and persists the store announcement
// that documents each release of the product.
//
// For every version in a required chain it first looks for an existing note
// file keyed by the version slug; only when none exists does it walk the
// paginated announcement feed, pick the matching announcement, convert its
// BBCode body to Markdown, and write the note. Existing notes are never
// rewritten, so repeated runs are cheap and stable.
//
// The package also reads persisted notes back (title, release date,
// announcement URL) and detects the newest released version from the head of
// the feed.
package releasenotes
