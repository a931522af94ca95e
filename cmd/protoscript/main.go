package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/noahseger/ProtoScript/internal/config"
	"github.com/noahseger/ProtoScript/internal/generate"
	"github.com/noahseger/ProtoScript/internal/logging"
	"github.com/noahseger/ProtoScript/internal/parser"
	"github.com/noahseger/ProtoScript/internal/plugin"
)

const version = "dev"

var (
	logPretty bool

	rootCmd = &cobra.Command{
		Use:   "protoscript [proto files...]",
		Short: "Generate TypeScript/JavaScript protobuf codecs without protoc",
		Long: "protoscript compiles .proto sources in-process and emits data types\n" +
			"with binary and JSON codecs, the same output the protoc plugin produces.",
		RunE: runGenerate,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("protoscript %s\n", version)
		},
	}
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute() error {
	initCommands()
	return rootCmd.Execute()
}

func initCommands() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("root", "", "directory .proto files are searched under")
	rootCmd.PersistentFlags().StringArray("exclude", nil, "regex pattern skipped during discovery (repeatable)")
	rootCmd.PersistentFlags().String("dest", "", "output directory root")
	rootCmd.PersistentFlags().String("language", "", "target language (typescript, javascript)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", false, "enable pretty logging")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)
	cfg.ResolveLanguage(".")

	logger := logging.New(cfg.LogLevel, logPretty)

	p := parser.Parser{Root: cfg.Root, Exclude: cfg.Exclude}
	files := args
	if len(files) == 0 {
		files, err = p.Discover()
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		return errors.New("no proto files found")
	}

	req, err := p.Parse(context.Background(), files)
	if err != nil {
		return err
	}

	resp := plugin.Generate(req, cfg, logger, nil)
	if resp.GetError() != "" {
		return errors.New(resp.GetError())
	}

	outputs := make([]generate.OutputFile, 0, len(resp.GetFile()))
	for _, file := range resp.GetFile() {
		outPath := filepath.FromSlash(file.GetName())
		if cfg.Dest == "" {
			// Colocate with the sources beneath the proto root.
			outPath = filepath.Join(cfg.Root, outPath)
		}
		outputs = append(outputs, generate.OutputFile{
			Path:    outPath,
			Content: []byte(file.GetContent()),
		})
	}
	if err := generate.WriteFiles(outputs); err != nil {
		return err
	}
	logger.Info().Int("files", len(outputs)).Str("language", cfg.Language).Msg("generated")
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root, _ = flags.GetString("root")
	}
	if flags.Changed("exclude") {
		patterns, _ := flags.GetStringArray("exclude")
		cfg.Exclude = append(cfg.Exclude, patterns...)
	}
	if flags.Changed("dest") {
		cfg.Dest, _ = flags.GetString("dest")
	}
	if flags.Changed("language") {
		cfg.Language, _ = flags.GetString("language")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
}
