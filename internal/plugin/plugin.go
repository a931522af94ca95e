// Package plugin implements the protobuf compiler plugin contract:
// a serialized CodeGeneratorRequest on the input stream, a serialized
// CodeGeneratorResponse on the output stream.
package plugin

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/noahseger/ProtoScript/internal/config"
	"github.com/noahseger/ProtoScript/internal/generate"
	"github.com/noahseger/ProtoScript/internal/walker"
)

// GenerateKnownTypesEnv, when set, lifts the default exclusion of the
// google.protobuf well-known types.
const GenerateKnownTypesEnv = "GENERATE_KNOWN_TYPES"

// Run drives one full plugin invocation over the given streams.
func Run(stdin io.Reader, stdout io.Writer, logger zerolog.Logger, plugins []generate.Plugin) error {
	input, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(input, req); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if err := cfg.ApplyParameter(req.GetParameter()); err != nil {
		return err
	}
	cfg.ResolveLanguage(".")

	resp := Generate(req, cfg, logger, plugins)

	out, err := proto.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	if _, err := stdout.Write(out); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// Generate produces the response for one request. Files appear in the
// response in request order; a file that fails to generate contributes
// an error instead of output.
func Generate(req *pluginpb.CodeGeneratorRequest, cfg config.Config, logger zerolog.Logger, plugins []generate.Plugin) *pluginpb.CodeGeneratorResponse {
	resp := &pluginpb.CodeGeneratorResponse{
		SupportedFeatures: proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)),
	}

	table := walker.BuildTable(req.GetProtoFile())
	var errs []string
	for _, name := range req.GetFileToGenerate() {
		if isWellKnown(name) && os.Getenv(GenerateKnownTypesEnv) == "" {
			logger.Debug().Str("file", name).Msg("skipping well-known type")
			continue
		}
		fd := findFile(req.GetProtoFile(), name)
		if fd == nil {
			errs = append(errs, fmt.Sprintf("%s: file not present in request", name))
			continue
		}
		irFile, err := walker.Walk(fd, table)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		content, err := generate.Emit(irFile, cfg, plugins)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		outName := OutputName(name, cfg)
		resp.File = append(resp.File, &pluginpb.CodeGeneratorResponse_File{
			Name:    proto.String(outName),
			Content: proto.String(content),
		})
		logger.Debug().Str("file", name).Str("out", outName).Msg("generated")
	}
	if len(errs) > 0 {
		resp.Error = proto.String(strings.Join(errs, "\n"))
	}
	return resp
}

// OutputName derives the generated filename: the proto stem plus
// .pb.ts/.pb.js, mirrored beneath dest when one is configured.
func OutputName(protoPath string, cfg config.Config) string {
	stem := strings.TrimSuffix(protoPath, path.Ext(protoPath))
	ext := ".pb.js"
	if cfg.Language == config.LangTypeScript {
		ext = ".pb.ts"
	}
	name := stem + ext
	if cfg.Dest != "" {
		name = path.Join(cfg.Dest, name)
	}
	return name
}

func isWellKnown(name string) bool {
	return strings.HasPrefix(name, "google/protobuf/")
}

func findFile(files []*descriptorpb.FileDescriptorProto, name string) *descriptorpb.FileDescriptorProto {
	for _, f := range files {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}
