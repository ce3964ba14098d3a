package manifest_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"modbase/internal/manifest"
	"modbase/internal/services"
	"modbase/internal/testsupport"
)

func TestParseDecodesAllFields(t *testing.T) {
	schema := manifest.MustSchema()
	data := testsupport.ManifestBytes(testsupport.ManifestFields{
		DepotID:        1158311,
		ManifestGID:    9876543210123,
		CreationTime:   1700000000,
		Encrypted:      true,
		SizeOriginal:   1 << 33,
		SizeCompressed: 1 << 31,
		UniqueChunks:   42,
		CRCEncrypted:   0xDEADBEEF,
		CRCClear:       7,
		Payload:        []byte("opaque payload bytes"),
	})

	meta, err := manifest.Parse(schema, data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := manifest.Metadata{
		DepotID:            1158311,
		ManifestGID:        9876543210123,
		CreationTime:       1700000000,
		HasCreationTime:    true,
		FilenamesEncrypted: true,
		SizeOriginal:       1 << 33,
		SizeCompressed:     1 << 31,
		UniqueChunks:       42,
		CRCEncrypted:       0xDEADBEEF,
		CRCClear:           7,
	}
	if meta != want {
		t.Fatalf("Parse = %+v, want %+v", meta, want)
	}

	ts, ok := meta.UpdatedAt()
	if !ok {
		t.Fatal("expected creation time")
	}
	if got := manifest.FormatTimestamp(ts); got != "2023-11-14T22:13:20.000Z" {
		t.Fatalf("timestamp = %s", got)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	schema := manifest.MustSchema()
	data := testsupport.ManifestBytes(testsupport.ManifestFields{DepotID: 1, CreationTime: 1600000000})
	first, err1 := manifest.Parse(schema, data)
	second, err2 := manifest.Parse(schema, data)
	if err1 != nil || err2 != nil {
		t.Fatalf("errors: %v %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decode differs: %+v vs %+v", first, second)
	}

	bad := testsupport.ManifestBytesWithMagic(testsupport.ManifestFields{}, 0x1, testsupport.MetadataMagic)
	_, errA := manifest.Parse(schema, bad)
	_, errB := manifest.Parse(schema, bad)
	if errA == nil || errB == nil || errA.Error() != errB.Error() {
		t.Fatalf("failures differ: %v vs %v", errA, errB)
	}
}

func TestParseCorruptMagicNamesSection(t *testing.T) {
	schema := manifest.MustSchema()
	fields := testsupport.ManifestFields{CreationTime: 1700000000, Payload: []byte{1, 2, 3}}

	tests := []struct {
		name     string
		payload  uint32
		metadata uint32
		section  string
		observed uint32
	}{
		{"payload", 0xCAFEBABE, testsupport.MetadataMagic, manifest.SectionPayload, 0xCAFEBABE},
		{"metadata", testsupport.PayloadMagic, 0x12345678, manifest.SectionMetadata, 0x12345678},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.Parse(schema, testsupport.ManifestBytesWithMagic(fields, tt.payload, tt.metadata))
			var fe *manifest.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if fe.Section != tt.section || fe.Observed != tt.observed {
				t.Fatalf("FormatError = %+v", fe)
			}
			if !errors.Is(err, services.ErrFormat) {
				t.Fatalf("expected ErrFormat marker, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.section) {
				t.Fatalf("message %q does not name section", err)
			}
		})
	}
}

func TestParseRejectsOverlongFrame(t *testing.T) {
	schema := manifest.MustSchema()
	data := testsupport.ManifestBytes(testsupport.ManifestFields{CreationTime: 5})
	truncated := data[:len(data)-1]

	_, err := manifest.Parse(schema, truncated)
	var fe *manifest.FormatError
	if !errors.As(err, &fe) || fe.Section != manifest.SectionMetadata {
		t.Fatalf("expected metadata FormatError, got %v", err)
	}

	_, err = manifest.Parse(schema, []byte{0xD0, 0x17})
	if !errors.As(err, &fe) || fe.Section != manifest.SectionPayload {
		t.Fatalf("expected payload FormatError for short input, got %v", err)
	}
}

func TestMissingCreationTime(t *testing.T) {
	meta, err := manifest.Parse(manifest.MustSchema(), testsupport.ManifestBytes(testsupport.ManifestFields{DepotID: 3}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := meta.UpdatedAt(); ok {
		t.Fatal("expected no timestamp")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1000_5.manifest")
	testsupport.WriteBytes(t, path, testsupport.ManifestBytes(testsupport.ManifestFields{CreationTime: 1700000000}))
	meta, err := manifest.ParseFile(manifest.MustSchema(), path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if meta.CreationTime != 1700000000 {
		t.Fatalf("creation time = %d", meta.CreationTime)
	}
	if _, err := manifest.ParseFile(manifest.MustSchema(), path+".missing"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
