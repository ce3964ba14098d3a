// Package snapshot assembles and persists the metadata document that
// describes one mirrored installation: its version, the release note chosen
// to describe it, and every depot's manifest and timestamp.
package snapshot

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"modbase/internal/catalog"
	"modbase/internal/manifest"
	"modbase/internal/releasenotes"
	"modbase/internal/version"
)

// Metadata is the persisted document.
type Metadata struct {
	Version      string          `json:"version"`
	VersionName  string          `json:"version_name,omitempty"`
	Updated      string          `json:"updated"`
	ReleaseNotes ReleaseNotesRef `json:"release_notes"`
	Depots       Depots          `json:"depots"`
}

// ReleaseNotesRef points at the note describing the snapshot.
type ReleaseNotesRef struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	File  string `json:"file"`
	URL   string `json:"url"`
}

// DepotEntry is one depot's record.
type DepotEntry struct {
	Manifest string `json:"manifest"`
	Updated  string `json:"updated,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Depot pairs an entry with its id.
type Depot struct {
	ID    uint64
	Entry DepotEntry
}

// Depots serializes as a JSON object keyed by depot id, in slice order.
type Depots []Depot

// MarshalJSON writes the depots in order, without HTML escaping.
func (d Depots) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := bytes.NewBufferString("{")
	for i, depot := range d {
		if i > 0 {
			out.WriteByte(',')
		}
		out.WriteString(strconv.Quote(strconv.FormatUint(depot.ID, 10)))
		out.WriteByte(':')
		buf.Reset()
		if err := enc.Encode(depot.Entry); err != nil {
			return nil, err
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// Input gathers everything the document is built from.
type Input struct {
	Version     version.Version
	VersionName string
	Catalog     *catalog.Catalog
	Note        releasenotes.Note
	// NoteFile is the note path relative to the output directory.
	NoteFile string
	// Now stands in for the depot timestamp when no manifest carried one.
	Now time.Time
}

// Assemble builds the document.
func Assemble(in Input) Metadata {
	meta := Metadata{
		Version:     in.Version.String(),
		VersionName: in.VersionName,
		ReleaseNotes: ReleaseNotesRef{
			Title: in.Note.Title,
			Date:  in.Note.Date,
			File:  in.NoteFile,
			URL:   in.Note.URL,
		},
	}
	updated := in.Now
	if in.Catalog != nil {
		if !in.Catalog.MostRecent.IsZero() {
			updated = in.Catalog.MostRecent
		}
		meta.Depots = make(Depots, 0, len(in.Catalog.Depots))
		for _, d := range in.Catalog.Depots {
			entry := DepotEntry{Manifest: d.Manifest, Name: d.Name}
			if !d.UpdatedAt.IsZero() {
				entry.Updated = manifest.FormatTimestamp(d.UpdatedAt)
			}
			meta.Depots = append(meta.Depots, Depot{ID: d.ID, Entry: entry})
		}
	}
	if meta.Depots == nil {
		meta.Depots = Depots{}
	}
	meta.Updated = manifest.FormatTimestamp(updated)
	return meta
}

// Marshal renders meta with two-space indentation and a trailing newline.
func Marshal(meta Metadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
