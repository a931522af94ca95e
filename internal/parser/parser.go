// Package parser compiles .proto sources in-process so the generator
// can run without the protobuf compiler in front of it.
package parser

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bufbuild/protocompile"
	"github.com/spf13/afero"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

type Parser struct {
	// Root is the import path root .proto files resolve against.
	Root string
	// Exclude holds regex patterns matched against discovered paths.
	Exclude []string

	// FS is the filesystem files are discovered on; defaults to the OS
	// filesystem.
	FS afero.Fs
}

func (p *Parser) fsys() afero.Fs {
	if p.FS != nil {
		return p.FS
	}
	return afero.NewOsFs()
}

// Discover walks Root for .proto files, returning paths relative to
// Root with the exclude patterns applied.
func (p *Parser) Discover() ([]string, error) {
	excludes := make([]*regexp.Regexp, 0, len(p.Exclude))
	for _, pattern := range p.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		excludes = append(excludes, re)
	}

	var files []string
	err := afero.Walk(p.fsys(), p.Root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".proto") {
			return nil
		}
		rel, err := filepath.Rel(p.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, re := range excludes {
			if re.MatchString(rel) {
				return nil
			}
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover protos under %s: %w", p.Root, err)
	}
	return files, nil
}

// Parse compiles the named files and assembles the same request shape
// the compiler would hand a plugin, dependencies included.
func (p *Parser) Parse(ctx context.Context, filePaths []string) (*pluginpb.CodeGeneratorRequest, error) {
	resolver := &protocompile.SourceResolver{
		ImportPaths: []string{p.Root},
		Accessor: func(path string) (io.ReadCloser, error) {
			return p.fsys().Open(path)
		},
	}
	compiler := protocompile.Compiler{
		Resolver:       protocompile.WithStandardImports(resolver),
		SourceInfoMode: protocompile.SourceInfoStandard,
	}
	files, err := compiler.Compile(ctx, filePaths...)
	if err != nil {
		return nil, err
	}

	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: filePaths,
	}
	seen := make(map[string]bool)
	for _, file := range files {
		appendWithDeps(&req.ProtoFile, seen, file)
	}
	return req, nil
}

// appendWithDeps lowers a compiled file and its imports to descriptor
// protos, dependencies first, each file once.
func appendWithDeps(out *[]*descriptorpb.FileDescriptorProto, seen map[string]bool, fd protoreflect.FileDescriptor) {
	if seen[fd.Path()] {
		return
	}
	seen[fd.Path()] = true
	imports := fd.Imports()
	for i := 0; i < imports.Len(); i++ {
		appendWithDeps(out, seen, imports.Get(i).FileDescriptor)
	}
	*out = append(*out, protodesc.ToFileDescriptorProto(fd))
}
