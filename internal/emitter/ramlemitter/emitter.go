package ramlemitter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mark3labs/uml2raml/internal/emitter"
	"github.com/mark3labs/uml2raml/internal/raml"
)

// Options controls where and how a RAML document is written.
type Options struct {
	Out              string // target file; empty or "-" writes to Stdout
	DescriptionFiles bool   // turn "!" descriptions into !include'd Markdown stubs
	DescriptionDir   string // stub directory; defaults to the directory of Out
	DryRun           bool   // don't write, only plan
	Stdout           io.Writer
	Logger           *zap.Logger
}

const stubPrefix = "!include "

// Emit serializes api and writes it with its description stubs. api itself
// is never modified; stubs are rendered from a copy.
func Emit(ctx context.Context, api *raml.API, opts Options) (*emitter.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if api == nil {
		return nil, errors.New("ramlemitter: nil API")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if emitter.ToStdout(opts.Out) {
		if opts.DescriptionFiles {
			log.Debug("description files are not generated when writing to stdout")
		}
		content := raml.Marshal(api)
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
	base := filepath.Dir(out)

	doc := api
	var stubs []stub
	if opts.DescriptionFiles {
		dir := base
		if strings.TrimSpace(opts.DescriptionDir) != "" {
			if dir, err = filepath.Abs(opts.DescriptionDir); err != nil {
				return nil, errors.Wrap(err, "resolve description directory")
			}
		}
		rel, err := filepath.Rel(base, dir)
		if err != nil {
			return nil, errors.Wrapf(err, "description directory %s", dir)
		}
		prefix := ""
		if rel != "." {
			prefix = filepath.ToSlash(rel) + "/"
		}
		doc = api.Clone()
		stubs = rewriteDescriptions(doc, dir, prefix)
	}

	content := raml.Marshal(doc)
	res := &emitter.Result{Planned: []emitter.PlannedFile{{RelPath: filepath.Base(out), Size: len(content), Mode: 0o644}}}
	for _, s := range stubs {
		rel, _ := filepath.Rel(base, s.path)
		_, statErr := os.Stat(s.path)
		res.Planned = append(res.Planned, emitter.PlannedFile{
			RelPath: filepath.ToSlash(rel),
			Size:    len(s.content),
			Mode:    0o644,
			Exists:  statErr == nil,
		})
	}
	if opts.DryRun {
		return res, nil
	}

	if err := emitter.WriteAtomic(out, content); err != nil {
		return nil, err
	}
	log.Debug("wrote document", zap.String("path", out))
	for i, s := range stubs {
		if res.Planned[i+1].Exists {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := emitter.WriteAtomic(s.path, s.content); err != nil {
			return nil, err
		}
		log.Debug("wrote description stub", zap.String("path", s.path))
	}
	return res, nil
}

// stubName keeps every stub inside the description directory.
var stubName = strings.NewReplacer("/", "_", "\\", "_")

type stub struct {
	path    string
	content []byte
}

// rewriteDescriptions replaces every "!" description in doc by an include of
// <prefix><FQName>.md and returns the stubs to create under dir, sorted by
// path and without duplicates.
func rewriteDescriptions(doc *raml.API, dir, prefix string) []stub {
	byPath := map[string]stub{}
	visit := func(desc *string, fqName, name string) {
		if strings.TrimSpace(*desc) != "!" {
			return
		}
		file := stubName.Replace(fqName) + ".md"
		*desc = stubPrefix + prefix + file
		p := filepath.Join(dir, file)
		if _, ok := byPath[p]; !ok {
			byPath[p] = stub{path: p, content: []byte("This is the description for **" + name + "**\n")}
		}
	}

	visit(&doc.Description, doc.Title, doc.Title)
	doc.Walk(func(r *raml.Resource) bool {
		fq := doc.Title + "_" + r.Name
		visit(&r.Description, fq, r.Name)
		for _, m := range r.Methods {
			visit(&m.Description, fq+"_"+m.DisplayName, m.DisplayName)
		}
		return true
	})
	for _, d := range doc.TypeDefs {
		switch d := d.(type) {
		case *raml.ScalarType:
			visit(&d.Description, doc.Title+"_"+d.Name, d.Name)
		case *raml.ObjectType:
			visit(&d.Description, doc.Title+"_"+d.Name, d.Name)
		}
	}

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	stubs := make([]stub, 0, len(paths))
	for _, p := range paths {
		stubs = append(stubs, byPath[p])
	}
	return stubs
}
