package walker

import (
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/noahseger/ProtoScript/internal/ir"
)

// commentIndex maps source-code-info location paths to their leading
// comment blocks, original line structure intact.
type commentIndex map[string]string

func indexComments(info *descriptorpb.SourceCodeInfo) commentIndex {
	idx := make(commentIndex)
	for _, loc := range info.GetLocation() {
		leading := loc.GetLeadingComments()
		if leading == "" {
			continue
		}
		idx[pathKey(loc.GetPath())] = strings.TrimSuffix(leading, "\n")
	}
	return idx
}

func (idx commentIndex) at(path []int32) ir.Comments {
	return ir.Comments{Leading: idx[pathKey(path)]}
}

func pathKey(path []int32) string {
	var sb strings.Builder
	for i, p := range path {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(p)))
	}
	return sb.String()
}

// Field numbers of FileDescriptorProto and DescriptorProto used to form
// source-code-info paths.
const (
	filePathMessage = 4
	filePathEnum    = 5

	messagePathField  = 2
	messagePathNested = 3
	messagePathEnum   = 4

	enumPathValue = 2
)
