// Package model loads annotated design models and exposes them as a
// read-only element graph.
package model

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError     ErrorCode = "InputError"
	ParseError     ErrorCode = "ParseError"
	ProfileError   ErrorCode = "ProfileError"
	ReferenceError ErrorCode = "ReferenceError"
	StructureError ErrorCode = "StructureError"
)

// LoadError is a structured error with optional location and element path.
type LoadError struct {
	Code     ErrorCode
	Message  string
	Location string // file path
	Element  string // qualified name of the offending element, when known
	Cause    error
}

func (e *LoadError) Error() string { return e.Message }
func (e *LoadError) Unwrap() error { return e.Cause }

// Format is the serialization of a model file.
type Format string

const (
	FormatAuto Format = ""
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Settings configures loader behavior.
type Settings struct {
	// Format forces a decoder; FormatAuto picks one from the file extension.
	Format Format
	// RootName names the model root when the file does not.
	RootName string
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		Format:   FormatAuto,
		RootName: "Model",
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithFormat(f Format) Option { return func(s *Settings) { s.Format = f } }
func WithRootName(name string) Option { return func(s *Settings) { s.RootName = name } }

// Load reads a model file from disk, decodes it and links every reference.
func Load(ctx context.Context, input string, opts ...Option) (*Model, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &LoadError{Code: InputError, Message: "model: input is empty"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}

	if settings.Format == FormatAuto {
		settings.Format = detectFormat(abs)
	}
	m, err := decode(raw, settings)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Location == "" {
			le.Location = abs
		}
		return nil, err
	}
	return m, nil
}

// LoadData decodes an in-memory model. Without WithFormat the data is read
// as YAML, which also accepts JSON.
func LoadData(data []byte, opts ...Option) (*Model, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Format == FormatAuto {
		settings.Format = FormatYAML
	}
	return decode(data, settings)
}

// detectFormat picks a decoder from the file extension.
func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

func decode(data []byte, settings Settings) (*Model, error) {
	var doc rawModel
	switch settings.Format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Code: ParseError, Message: fmt.Sprintf("parse toml model: %v", err), Cause: err}
		}
	case FormatYAML, FormatJSON:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Code: ParseError, Message: fmt.Sprintf("parse %s model: %v", settings.Format, err), Cause: err}
		}
	default:
		return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("model: unsupported format %q", settings.Format)}
	}
	if strings.TrimSpace(doc.Name) == "" {
		doc.Name = settings.RootName
	}
	return build(&doc)
}
