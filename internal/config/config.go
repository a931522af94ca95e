package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	LangTypeScript = "typescript"
	LangJavaScript = "javascript"
)

// Config is the effective generator configuration: project-root config
// file layered under the compiler parameter string.
type Config struct {
	// Root is the directory .proto files are discovered under and
	// import paths resolve against.
	Root string `mapstructure:"root"`
	// Exclude holds regex patterns skipped during discovery.
	Exclude []string `mapstructure:"exclude"`
	// Dest is the output root; proto paths are mirrored beneath it.
	Dest     string `mapstructure:"dest"`
	Language string `mapstructure:"language"`
	LogLevel string `mapstructure:"logLevel"`

	JSON       JSONConfig       `mapstructure:"json"`
	TypeScript TypeScriptConfig `mapstructure:"typescript"`
}

type JSONConfig struct {
	EmitFieldsWithDefaultValues bool `mapstructure:"emitFieldsWithDefaultValues"`
	UseProtoFieldName           bool `mapstructure:"useProtoFieldName"`
}

type TypeScriptConfig struct {
	EmitDeclarationOnly bool `mapstructure:"emitDeclarationOnly"`
}

func Default() Config {
	return Config{
		Root:     ".",
		LogLevel: "info",
	}
}

// Load reads protoscript.{yaml,yml,json} from dir, falling back to
// defaults when no config file exists.
func Load(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("protoscript")
	v.AddConfigPath(dir)
	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		return cfg, nil
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyParameter layers a compiler parameter string (`k=v,k=v`) over the
// file-sourced values.
func (c *Config) ApplyParameter(param string) error {
	for _, pair := range strings.Split(param, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		switch key {
		case "root":
			c.Root = value
		case "exclude":
			if value != "" {
				c.Exclude = append(c.Exclude, strings.Split(value, ";")...)
			}
		case "dest":
			c.Dest = value
		case "language":
			c.Language = value
		case "logLevel":
			c.LogLevel = value
		case "json.emitFieldsWithDefaultValues":
			b, err := parseBool(key, value)
			if err != nil {
				return err
			}
			c.JSON.EmitFieldsWithDefaultValues = b
		case "json.useProtoFieldName":
			b, err := parseBool(key, value)
			if err != nil {
				return err
			}
			c.JSON.UseProtoFieldName = b
		case "typescript.emitDeclarationOnly":
			b, err := parseBool(key, value)
			if err != nil {
				return err
			}
			c.TypeScript.EmitDeclarationOnly = b
		default:
			return fmt.Errorf("unknown option %q", key)
		}
	}
	return c.validate()
}

// ResolveLanguage settles the target language, auto-detecting TypeScript
// from the presence of a tsconfig.json at the project root.
func (c *Config) ResolveLanguage(dir string) {
	if c.Language != "" {
		return
	}
	if _, err := os.Stat(filepath.Join(dir, "tsconfig.json")); err == nil {
		c.Language = LangTypeScript
		return
	}
	c.Language = LangJavaScript
}

func (c *Config) validate() error {
	switch c.Language {
	case "", LangTypeScript, LangJavaScript:
		return nil
	default:
		return fmt.Errorf("unknown language %q", c.Language)
	}
}

func parseBool(key, value string) (bool, error) {
	if value == "" {
		// A bare key counts as switched on.
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("option %s: %w", key, err)
	}
	return b, nil
}
