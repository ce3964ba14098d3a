// Package manifest decodes depot manifest files: a payload frame that is
// skipped followed by a metadata frame holding a protobuf record.
//
// Both frames are little-endian: a 4-byte magic, a 4-byte length, then the
// body. A wrong magic or a length running past the end of the data yields a
// *FormatError naming the frame.
package manifest

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"

	"modbase/internal/services"
)

const (
	PayloadMagic  uint32 = 0x71F617D0
	MetadataMagic uint32 = 0x1F4812BE

	SectionPayload  = "payload"
	SectionMetadata = "metadata"

	frameHeaderSize = 8
)

// TimestampLayout renders instants as ISO-8601 UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Metadata is the decoded metadata frame. Only CreationTime feeds the
// catalog; the rest is kept for inspection.
type Metadata struct {
	DepotID            uint32
	ManifestGID        uint64
	CreationTime       uint32
	HasCreationTime    bool
	FilenamesEncrypted bool
	SizeOriginal       uint64
	SizeCompressed     uint64
	UniqueChunks       uint32
	CRCEncrypted       uint32
	CRCClear           uint32
}

// UpdatedAt converts CreationTime to a UTC instant. A missing or zero
// creation time reports false.
func (m Metadata) UpdatedAt() (time.Time, bool) {
	if !m.HasCreationTime || m.CreationTime == 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(m.CreationTime), 0).UTC(), true
}

// FormatError describes a framing failure.
type FormatError struct {
	Section  string
	Expected uint32
	Observed uint32
	Reason   string
}

func (e *FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("manifest %s section: %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("manifest %s section: invalid magic 0x%08x (want 0x%08x)", e.Section, e.Observed, e.Expected)
}

func (e *FormatError) Unwrap() error { return services.ErrFormat }

// Parse decodes one manifest's bytes using schema.
func Parse(schema *Schema, data []byte) (Metadata, error) {
	if schema == nil {
		return Metadata{}, fmt.Errorf("manifest parse: nil schema")
	}
	_, rest, err := readFrame(data, SectionPayload, PayloadMagic)
	if err != nil {
		return Metadata{}, err
	}
	body, _, err := readFrame(rest, SectionMetadata, MetadataMagic)
	if err != nil {
		return Metadata{}, err
	}
	return schema.decode(body)
}

// ParseFile reads and decodes the manifest at path.
func ParseFile(schema *Schema, path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return Parse(schema, data)
}

func readFrame(data []byte, section string, magic uint32) ([]byte, []byte, error) {
	if len(data) < frameHeaderSize {
		return nil, nil, &FormatError{Section: section, Expected: magic, Reason: fmt.Sprintf("truncated header (%d bytes)", len(data))}
	}
	observed := binary.LittleEndian.Uint32(data[0:4])
	if observed != magic {
		return nil, nil, &FormatError{Section: section, Expected: magic, Observed: observed}
	}
	length := uint64(binary.LittleEndian.Uint32(data[4:8]))
	if length > uint64(len(data)-frameHeaderSize) {
		return nil, nil, &FormatError{
			Section:  section,
			Expected: magic,
			Observed: observed,
			Reason:   fmt.Sprintf("declared length %d exceeds remaining %d bytes", length, len(data)-frameHeaderSize),
		}
	}
	end := frameHeaderSize + int(length)
	return data[frameHeaderSize:end], data[end:], nil
}

func (s *Schema) decode(body []byte) (Metadata, error) {
	msg := dynamicpb.NewMessage(s.message)
	if err := proto.Unmarshal(body, msg); err != nil {
		return Metadata{}, services.Wrap(services.ErrFormat, "manifest", "decode metadata", "", err)
	}
	f := s.fields
	meta := Metadata{
		DepotID:            uint32(msg.Get(f.depotID).Uint()),
		ManifestGID:        msg.Get(f.gidManifest).Uint(),
		CreationTime:       uint32(msg.Get(f.creationTime).Uint()),
		HasCreationTime:    msg.Has(f.creationTime),
		FilenamesEncrypted: msg.Get(f.filenamesEncrypted).Bool(),
		SizeOriginal:       msg.Get(f.cbDiskOriginal).Uint(),
		SizeCompressed:     msg.Get(f.cbDiskCompressed).Uint(),
		UniqueChunks:       uint32(msg.Get(f.uniqueChunks).Uint()),
		CRCEncrypted:       uint32(msg.Get(f.crcEncrypted).Uint()),
		CRCClear:           uint32(msg.Get(f.crcClear).Uint()),
	}
	return meta, nil
}

// FormatTimestamp renders t with TimestampLayout in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
