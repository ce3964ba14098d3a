package testsupport

import (
	"encoding/binary"

	"google.golang.org/protobuf/encoding/protowire"
)

// Frame magics of the depot manifest format.
const (
	PayloadMagic  uint32 = 0x71F617D0
	MetadataMagic uint32 = 0x1F4812BE
)

// ManifestFields are the metadata values encoded by ManifestBytes. Zero
// values are omitted from the encoded record.
type ManifestFields struct {
	DepotID        uint32
	ManifestGID    uint64
	CreationTime   uint32
	Encrypted      bool
	SizeOriginal   uint64
	SizeCompressed uint64
	UniqueChunks   uint32
	CRCEncrypted   uint32
	CRCClear       uint32
	Payload        []byte
}

// ManifestBytes builds a framed manifest: payload frame then metadata frame.
func ManifestBytes(f ManifestFields) []byte {
	return ManifestBytesWithMagic(f, PayloadMagic, MetadataMagic)
}

// ManifestBytesWithMagic is ManifestBytes with caller-chosen magics, for
// corruption tests.
func ManifestBytesWithMagic(f ManifestFields, payloadMagic, metadataMagic uint32) []byte {
	meta := MetadataRecord(f)
	out := make([]byte, 0, 16+len(f.Payload)+len(meta))
	out = appendFrame(out, payloadMagic, f.Payload)
	out = appendFrame(out, metadataMagic, meta)
	return out
}

// MetadataRecord encodes only the protobuf body of the metadata frame.
func MetadataRecord(f ManifestFields) []byte {
	var b []byte
	varint := func(num protowire.Number, v uint64) {
		if v == 0 {
			return
		}
		b = protowire.AppendTag(b, num, protowire.VarintType)
		b = protowire.AppendVarint(b, v)
	}
	varint(1, uint64(f.DepotID))
	varint(2, f.ManifestGID)
	varint(3, uint64(f.CreationTime))
	if f.Encrypted {
		varint(4, 1)
	}
	varint(5, f.SizeOriginal)
	varint(6, f.SizeCompressed)
	varint(7, uint64(f.UniqueChunks))
	varint(8, uint64(f.CRCEncrypted))
	varint(9, uint64(f.CRCClear))
	return b
}

func appendFrame(dst []byte, magic uint32, body []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, magic)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(body)))
	return append(dst, body...)
}
