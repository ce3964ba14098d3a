package manifest

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

const metadataMessage = "ContentManifestMetadata"

// Schema holds the message descriptor for the metadata frame. Build it once
// with NewSchema and pass it to every decode call.
type Schema struct {
	message protoreflect.MessageDescriptor
	fields  schemaFields
}

type schemaFields struct {
	depotID            protoreflect.FieldDescriptor
	gidManifest        protoreflect.FieldDescriptor
	creationTime       protoreflect.FieldDescriptor
	filenamesEncrypted protoreflect.FieldDescriptor
	cbDiskOriginal     protoreflect.FieldDescriptor
	cbDiskCompressed   protoreflect.FieldDescriptor
	uniqueChunks       protoreflect.FieldDescriptor
	crcEncrypted       protoreflect.FieldDescriptor
	crcClear           protoreflect.FieldDescriptor
}

var metadataFields = []struct {
	name   string
	number int32
	kind   descriptorpb.FieldDescriptorProto_Type
}{
	{"depot_id", 1, descriptorpb.FieldDescriptorProto_TYPE_UINT32},
	{"gid_manifest", 2, descriptorpb.FieldDescriptorProto_TYPE_UINT64},
	{"creation_time", 3, descriptorpb.FieldDescriptorProto_TYPE_UINT32},
	{"filenames_encrypted", 4, descriptorpb.FieldDescriptorProto_TYPE_BOOL},
	{"cb_disk_original", 5, descriptorpb.FieldDescriptorProto_TYPE_UINT64},
	{"cb_disk_compressed", 6, descriptorpb.FieldDescriptorProto_TYPE_UINT64},
	{"unique_chunks", 7, descriptorpb.FieldDescriptorProto_TYPE_UINT32},
	{"crc_encrypted", 8, descriptorpb.FieldDescriptorProto_TYPE_UINT32},
	{"crc_clear", 9, descriptorpb.FieldDescriptorProto_TYPE_UINT32},
}

// NewSchema compiles the metadata message descriptor.
func NewSchema() (*Schema, error) {
	msg := &descriptorpb.DescriptorProto{Name: proto.String(metadataMessage)}
	for _, f := range metadataFields {
		msg.Field = append(msg.Field, &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(f.name),
			Number: proto.Int32(f.number),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			Type:   f.kind.Enum(),
		})
	}
	file := &descriptorpb.FileDescriptorProto{
		Name:        proto.String("content_manifest.proto"),
		Syntax:      proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{msg},
	}

	fd, err := protodesc.NewFile(file, new(protoregistry.Files))
	if err != nil {
		return nil, fmt.Errorf("build manifest schema: %w", err)
	}
	md := fd.Messages().ByName(metadataMessage)
	if md == nil {
		return nil, fmt.Errorf("build manifest schema: message %s missing", metadataMessage)
	}
	fields := md.Fields()
	return &Schema{
		message: md,
		fields: schemaFields{
			depotID:            fields.ByNumber(1),
			gidManifest:        fields.ByNumber(2),
			creationTime:       fields.ByNumber(3),
			filenamesEncrypted: fields.ByNumber(4),
			cbDiskOriginal:     fields.ByNumber(5),
			cbDiskCompressed:   fields.ByNumber(6),
			uniqueChunks:       fields.ByNumber(7),
			crcEncrypted:       fields.ByNumber(8),
			crcClear:           fields.ByNumber(9),
		},
	}, nil
}

// MustSchema is NewSchema for program start-up; the descriptor is static so
// failure is a programming error.
func MustSchema() *Schema {
	s, err := NewSchema()
	if err != nil {
		panic(err)
	}
	return s
}
