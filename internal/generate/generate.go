package generate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/noahseger/ProtoScript/internal/config"
	"github.com/noahseger/ProtoScript/internal/ir"
)

type OutputFile struct {
	Path    string
	Content []byte
}

func WriteFiles(outputs []OutputFile) error {
	for _, file := range outputs {
		if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", filepath.Dir(file.Path), err)
		}
		if err := os.WriteFile(file.Path, file.Content, 0o644); err != nil {
			return fmt.Errorf("write file %s: %w", file.Path, err)
		}
	}
	return nil
}

// Fragment is what a plugin contributes to a generated file: import
// lines and a services block, both injected verbatim.
type Fragment struct {
	Imports  string
	Services string
}

// Plugin extends the emitter. Plugins receive the finished IR and the
// effective config; they must not mutate either.
type Plugin func(file *ir.File, cfg config.Config) Fragment
