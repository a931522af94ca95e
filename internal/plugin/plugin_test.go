package plugin

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/noahseger/ProtoScript/internal/config"
)

func simpleFile(name, pkg, msgName string) *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(name),
		Package: proto.String(pkg),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String(msgName),
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:     proto.String("id"),
				Number:   proto.Int32(1),
				Type:     descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
				Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				JsonName: proto.String("id"),
			}},
		}},
	}
}

func TestGenerate_Response(t *testing.T) {
	t.Parallel()

	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{"a.proto", "b.proto"},
		ProtoFile: []*descriptorpb.FileDescriptorProto{
			simpleFile("a.proto", "pa", "A"),
			simpleFile("b.proto", "pb", "B"),
		},
	}
	cfg := config.Default()
	cfg.Language = config.LangTypeScript

	resp := Generate(req, cfg, zerolog.Nop(), nil)
	require.Empty(t, resp.GetError())
	require.Len(t, resp.GetFile(), 2)
	// Output order follows request order.
	assert.Equal(t, "a.pb.ts", resp.GetFile()[0].GetName())
	assert.Equal(t, "b.pb.ts", resp.GetFile()[1].GetName())
	assert.Contains(t, resp.GetFile()[0].GetContent(), "export interface A")
	assert.Equal(t,
		uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL),
		resp.GetSupportedFeatures())
}

func TestGenerate_WellKnownTypesSkipped(t *testing.T) {
	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{"google/protobuf/timestamp.proto", "a.proto"},
		ProtoFile: []*descriptorpb.FileDescriptorProto{
			simpleFile("google/protobuf/timestamp.proto", "google.protobuf", "Timestamp"),
			simpleFile("a.proto", "pa", "A"),
		},
	}
	cfg := config.Default()
	cfg.Language = config.LangTypeScript

	resp := Generate(req, cfg, zerolog.Nop(), nil)
	require.Len(t, resp.GetFile(), 1)
	assert.Equal(t, "a.pb.ts", resp.GetFile()[0].GetName())

	t.Setenv(GenerateKnownTypesEnv, "1")
	resp = Generate(req, cfg, zerolog.Nop(), nil)
	require.Len(t, resp.GetFile(), 2)
}

func TestGenerate_ErrorAttachment(t *testing.T) {
	t.Parallel()

	bad := simpleFile("bad.proto", "pb", "Bad")
	bad.MessageType[0].Field = append(bad.MessageType[0].Field, &descriptorpb.FieldDescriptorProto{
		Name:     proto.String("dup"),
		Number:   proto.Int32(1),
		Type:     descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		JsonName: proto.String("dup"),
	})
	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{"bad.proto", "a.proto"},
		ProtoFile: []*descriptorpb.FileDescriptorProto{
			bad,
			simpleFile("a.proto", "pa", "A"),
		},
	}
	cfg := config.Default()
	cfg.Language = config.LangTypeScript

	resp := Generate(req, cfg, zerolog.Nop(), nil)
	// The bad file contributes an error, the good one still generates.
	assert.Contains(t, resp.GetError(), "duplicate field number")
	require.Len(t, resp.GetFile(), 1)
	assert.Equal(t, "a.pb.ts", resp.GetFile()[0].GetName())
}

func TestOutputName(t *testing.T) {
	t.Parallel()

	ts := config.Config{Language: config.LangTypeScript}
	js := config.Config{Language: config.LangJavaScript}
	assert.Equal(t, "x/y.pb.ts", OutputName("x/y.proto", ts))
	assert.Equal(t, "x/y.pb.js", OutputName("x/y.proto", js))

	dest := config.Config{Language: config.LangTypeScript, Dest: "gen"}
	assert.Equal(t, "gen/x/y.pb.ts", OutputName("x/y.proto", dest))
}

func TestRun_Streams(t *testing.T) {
	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{"a.proto"},
		ProtoFile: []*descriptorpb.FileDescriptorProto{
			simpleFile("a.proto", "pa", "A"),
		},
		Parameter: proto.String("language=typescript"),
	}
	in, err := proto.Marshal(req)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Run(bytes.NewReader(in), &out, zerolog.Nop(), nil))

	resp := &pluginpb.CodeGeneratorResponse{}
	require.NoError(t, proto.Unmarshal(out.Bytes(), resp))
	require.Empty(t, resp.GetError())
	require.Len(t, resp.GetFile(), 1)
	assert.Equal(t, "a.pb.ts", resp.GetFile()[0].GetName())
}
