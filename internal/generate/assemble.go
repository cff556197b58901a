package generate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mark3labs/uml2raml/internal/model"
	"github.com/mark3labs/uml2raml/internal/profile"
	"github.com/mark3labs/uml2raml/internal/raml"
)

func (r *run) processAPI(pkg *model.Element) (*raml.API, error) {
	title := r.str(pkg, profile.TagAPI, profile.PropTitle)
	if title == "" {
		title = strings.TrimSpace(pkg.Name)
	}
	if title == "" {
		return nil, invalidf("API package %s has neither a title nor a name", pkg.QualifiedName)
	}
	r.log.Debug("processing API", zap.String("title", title))

	api := &raml.API{
		Title:             title,
		Version:           r.str(pkg, profile.TagAPI, profile.PropVersion),
		BaseURI:           r.str(pkg, profile.TagAPI, profile.PropBaseURI),
		BaseURIParameters: r.str(pkg, profile.TagAPI, profile.PropBaseURIParameters),
		Description:       r.str(pkg, profile.TagAPI, profile.PropDescription),
		MediaType:         r.str(pkg, profile.TagAPI, profile.PropMediaType),
		Protocols:         r.str(pkg, profile.TagAPI, profile.PropProtocols),
		Documentation:     r.str(pkg, profile.TagAPI, profile.PropDocumentation),
		SecuritySchemes:   r.str(pkg, profile.TagAPI, profile.PropSecuritySchemes),
		SecuredBy:         r.str(pkg, profile.TagAPI, profile.PropSecuredBy),
		Types:             r.list(pkg, profile.TagAPI, profile.PropTypes),
		Traits:            r.list(pkg, profile.TagAPI, profile.PropTraits),
		ResourceTypes:     r.list(pkg, profile.TagAPI, profile.PropResourceTypes),
		Uses:              r.list(pkg, profile.TagAPI, profile.PropUses),
	}

	for _, el := range r.topLevelResources(pkg) {
		res, err := r.processResource(nil, el, map[*model.Element]bool{})
		if err != nil {
			return nil, err
		}
		api.Resources = append(api.Resources, res)
	}

	if err := r.closeTypes(); err != nil {
		return nil, err
	}
	defs, err := r.resolveTypes()
	if err != nil {
		return nil, err
	}
	api.TypeNames = r.types.modelNames()
	api.TypeDefs = defs

	if len(api.Resources) > 0 && len(api.ResourceTypes) > 0 {
		r.log.Warn("resourceTypes include list is replaced by generated resource types", zap.Strings("resourceTypes", api.ResourceTypes))
	}
	if len(api.TypeDefs) > 0 && len(api.Types) > 0 {
		r.log.Warn("types include list is replaced by generated types", zap.Strings("types", api.Types))
	}
	return api, nil
}

// topLevelResources returns the resources owned by pkg that no sibling
// resource links to.
func (r *run) topLevelResources(pkg *model.Element) []*model.Element {
	var resources []*model.Element
	for _, el := range pkg.Owned {
		if r.isResource(el) {
			resources = append(resources, el)
		}
	}
	linked := map[*model.Element]bool{}
	for _, el := range resources {
		for _, dep := range el.Dependencies() {
			if !r.isPathLink(dep) {
				continue
			}
			for _, t := range dep.Targets {
				linked[t] = true
			}
		}
	}
	var top []*model.Element
	for _, el := range resources {
		if !linked[el] {
			top = append(top, el)
		}
	}
	return top
}

// processResource builds the resource for el and, recursively, the
// resources it links to. ancestors guards against link cycles.
func (r *run) processResource(parent *raml.Resource, el *model.Element, ancestors map[*model.Element]bool) (*raml.Resource, error) {
	if ancestors[el] {
		return nil, invalidf("resource %s links back to itself through its path links", el.QualifiedName)
	}
	ancestors[el] = true
	defer delete(ancestors, el)

	name := resourceTypeName(el)
	if name == "" {
		return nil, invalidf("resource %s has no name", el.QualifiedName)
	}

	path := r.str(el, profile.TagResource, profile.PropPath)
	if path != "" {
		if parent != nil {
			r.log.Warn("explicit path overrides the incoming path link",
				zap.String("resource", el.QualifiedName), zap.String("path", path))
		}
		path = withSlash(path)
	} else {
		var err error
		if path, err = r.getPath(el, true); err != nil {
			return nil, err
		}
	}
	if path == "" {
		return nil, invalidf("resource %s has no path", el.QualifiedName)
	}
	r.log.Debug("processing resource", zap.String("resource", name), zap.String("path", path))

	res := &raml.Resource{
		Name:          name,
		Path:          path,
		Parent:        parent,
		URIParameters: raml.URIParameterNames(path),
		Description:   r.str(el, profile.TagResource, profile.PropDescription),
		Is:            r.str(el, profile.TagResource, profile.PropIs),
		Type:          r.str(el, profile.TagResource, profile.PropType),
		SecuredBy:     r.str(el, profile.TagResource, profile.PropSecuredBy),
	}

	for _, op := range el.Operations() {
		if !r.res.Has(op, profile.TagHTTPMethod) {
			continue
		}
		m, err := r.processMethod(op)
		if err != nil {
			return nil, err
		}
		if prev := res.Method(m.Verb); prev != nil {
			return nil, invalidf("resource %s binds %s to both %q and %q", el.QualifiedName, strings.ToUpper(string(m.Verb)), prev.DisplayName, m.DisplayName)
		}
		res.Methods = append(res.Methods, m)
	}

	var links []*model.Element
	seen := map[*model.Element]bool{}
	for _, dep := range el.Dependencies() {
		pathLink := r.isPathLink(dep)
		for _, t := range dep.Targets {
			switch {
			case pathLink:
				if !r.isResource(t) {
					return nil, invalidf("path link %s of %s targets %s, which is not a resource", dep.Name, el.QualifiedName, t.QualifiedName)
				}
				if !seen[t] {
					seen[t] = true
					links = append(links, t)
				}
			case r.isCustomType(t):
				r.types.queue(t.QualifiedName)
			}
		}
	}
	for _, t := range links {
		child, err := r.processResource(res, t, ancestors)
		if err != nil {
			return nil, err
		}
		res.Children = append(res.Children, child)
	}
	return res, nil
}

// getPath computes the path of el. An explicit path wins; otherwise the path
// link pointing at el supplies the segment, prefixed with the linking
// resource's own path unless relative is set.
func (r *run) getPath(el *model.Element, relative bool) (string, error) {
	return r.pathOf(el, relative, map[*model.Element]bool{})
}

func (r *run) pathOf(el *model.Element, relative bool, visited map[*model.Element]bool) (string, error) {
	if p := r.str(el, profile.TagResource, profile.PropPath); p != "" {
		return withSlash(p), nil
	}
	if visited[el] {
		return "", invalidf("path of %s depends on itself", el.QualifiedName)
	}
	visited[el] = true

	scope := el.Namespace()
	if scope == nil {
		return "", nil
	}
	var (
		source  *model.Element
		segment string
		count   int
	)
	for _, cand := range scope.AllOwned() {
		if !r.isResource(cand) {
			continue
		}
		for _, dep := range cand.Dependencies() {
			if !r.isPathLink(dep) || !targets(dep, el) {
				continue
			}
			seg := r.str(dep, profile.TagResourcePath, profile.PropPath)
			if seg == "" {
				seg = strings.TrimSpace(dep.Name)
			}
			if seg == "" {
				return "", invalidf("path link from %s to %s has neither a path nor a name", cand.QualifiedName, el.QualifiedName)
			}
			source, segment = cand, withSlash(seg)
			count++
		}
	}
	if source == nil {
		return "", nil
	}
	if count > 1 {
		r.log.Warn("resource has several incoming path links; using the last one",
			zap.String("resource", el.QualifiedName), zap.String("from", source.QualifiedName))
	}
	if relative {
		return segment, nil
	}
	prefix, err := r.pathOf(source, false, visited)
	if err != nil {
		return "", err
	}
	return prefix + segment, nil
}

func targets(dep, el *model.Element) bool {
	for _, t := range dep.Targets {
		if t == el {
			return true
		}
	}
	return false
}

func withSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
