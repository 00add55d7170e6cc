package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/mediator/internal/parser"
)

// importSpec is one import line of the generated file
type importSpec struct {
	Alias string // empty when the path's own package name is used
	Path  string
	Break bool // blank line before this import, between std and other groups
}

// importManager assigns each imported path a unique local name. Names are
// handed out first come first served, so the same sequence of calls always
// yields the same aliases.
type importManager struct {
	self    string            // import path of the package being generated
	byPath  map[string]string // path -> local name
	byAlias map[string]string // local name -> path, "" for reserved names
}

func newImportManager(self string) *importManager {
	return &importManager{
		self:    self,
		byPath:  make(map[string]string),
		byAlias: make(map[string]string),
	}
}

// add registers path under the preferred name (or the path's assumed package
// name) and returns the qualifier to use in generated code, "" for the
// package being generated.
func (im *importManager) add(preferred, path string) string {
	if path == im.self {
		return ""
	}
	if alias, ok := im.byPath[path]; ok {
		return alias
	}

	base := preferred
	if base == "" || base == "_" || base == "." {
		base = parser.AssumedPackageName(path)
	}

	alias := im.unused(base)
	im.byPath[path] = alias
	im.byAlias[alias] = path
	return alias
}

// reserve keeps names from being handed out as import names
func (im *importManager) reserve(names ...string) {
	for _, name := range names {
		if _, taken := im.byAlias[name]; !taken {
			im.byAlias[name] = ""
		}
	}
}

// unused returns base, or base with the first numeric suffix that is not
// taken yet
func (im *importManager) unused(base string) string {
	name := base
	for n := 2; ; n++ {
		if _, taken := im.byAlias[name]; !taken {
			return name
		}
		name = fmt.Sprintf("%s%d", base, n)
	}
}

// qualifier returns the prefix ("name.") for identifiers from path
func (im *importManager) qualifier(path string) string {
	alias := im.add("", path)
	if alias == "" {
		return ""
	}
	return alias + "."
}

// specs returns the standard library imports followed by the others, each
// group sorted by path
func (im *importManager) specs() []importSpec {
	specs := make([]importSpec, 0, len(im.byPath))
	for path, alias := range im.byPath {
		spec := importSpec{Path: path}
		if alias != parser.AssumedPackageName(path) {
			spec.Alias = alias
		}
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool {
		si, sj := isStdLib(specs[i].Path), isStdLib(specs[j].Path)
		if si != sj {
			return si
		}
		return specs[i].Path < specs[j].Path
	})
	for i := 1; i < len(specs); i++ {
		specs[i].Break = isStdLib(specs[i-1].Path) && !isStdLib(specs[i].Path)
	}
	return specs
}

// isStdLib reports whether path looks like a standard library import
func isStdLib(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}
