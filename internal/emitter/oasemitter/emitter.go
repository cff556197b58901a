package oasemitter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/uml2raml/internal/emitter"
	"github.com/mark3labs/uml2raml/internal/raml"
)

// Format selects the OpenAPI serialization.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Options controls where the OpenAPI document goes.
type Options struct {
	Out    string // target file; empty or "-" writes to Stdout
	Format Format // defaults to JSON
	DryRun bool
	Stdout io.Writer
	Logger *zap.Logger
}

// Emit converts api and writes the OpenAPI document. Validation problems are
// logged as warnings and do not stop the export.
func Emit(ctx context.Context, api *raml.API, opts Options) (*emitter.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	doc, err := Convert(api)
	if err != nil {
		return nil, err
	}
	if err := openapi3.NewLoader().ResolveRefsIn(doc, nil); err != nil {
		log.Warn("unresolved references in OpenAPI export", zap.Error(err))
	}
	if err := doc.Validate(ctx); err != nil {
		log.Warn("OpenAPI export does not validate", zap.Error(err))
	}

	content, err := Marshal(doc, opts.Format)
	if err != nil {
		return nil, err
	}

	if emitter.ToStdout(opts.Out) {
		res := &emitter.Result{Planned: []emitter.PlannedFile{{RelPath: "-", Size: len(content)}}}
		if opts.DryRun {
			return res, nil
		}
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(content); err != nil {
			return nil, errors.Wrap(err, "write document")
		}
		return res, nil
	}

	out, err := filepath.Abs(opts.Out)
	if err != nil {
		return nil, errors.Wrap(err, "resolve output path")
	}
	res := &emitter.Result{Planned: []emitter.PlannedFile{{RelPath: filepath.Base(out), Size: len(content), Mode: 0o644}}}
	if opts.DryRun {
		return res, nil
	}
	if err := emitter.WriteAtomic(out, content); err != nil {
		return nil, err
	}
	log.Debug("wrote OpenAPI document", zap.String("path", out))
	return res, nil
}

// Marshal renders doc as indented JSON or as block-style YAML with the same
// key order.
func Marshal(doc *openapi3.T, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal OpenAPI document")
	}
	switch format {
	case "", JSON:
		return append(data, '\n'), nil
	case YAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, errors.Wrap(err, "reparse OpenAPI document")
		}
		blockStyle(&node)
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return nil, errors.Wrap(err, "encode OpenAPI document")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "encode OpenAPI document")
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Newf("unknown OpenAPI format %q", format)
	}
}

// blockStyle drops the flow and quoting styles the JSON input carried so the
// encoder picks plain YAML where it can.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
