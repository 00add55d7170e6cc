package cli

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	mederrors "github.com/toyz/mediator/internal/errors"
	"github.com/toyz/mediator/internal/utils"
)

// ModuleInfo describes the module a package directory belongs to
type ModuleInfo struct {
	Path string // module path
	Root string // absolute directory holding go.mod
}

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	goMod        *utils.GoModParser
	customModule string
	cache        map[string]ModuleInfo // go.mod path -> module
}

// NewModuleResolver creates a new module resolver. A non-empty customModule
// replaces the module path read from go.mod; the module root still comes
// from the go.mod location.
func NewModuleResolver(customModule string) *ModuleResolver {
	return &ModuleResolver{
		goMod:        utils.NewGoModParser(),
		customModule: customModule,
		cache:        make(map[string]ModuleInfo),
	}
}

// Module returns the module enclosing dir
func (r *ModuleResolver) Module(dir string) (ModuleInfo, error) {
	goModPath, err := r.goMod.FindGoModFile(dir)
	if err != nil {
		return ModuleInfo{}, mederrors.WrapModuleError(dir, err)
	}

	if info, ok := r.cache[goModPath]; ok {
		return info, nil
	}

	modulePath := r.customModule
	if modulePath == "" {
		modulePath, err = r.goMod.ParseModuleName(goModPath)
		if err != nil {
			return ModuleInfo{}, mederrors.WrapModuleError(goModPath, err)
		}
	}
	if err := utils.ValidateModulePath(modulePath); err != nil {
		return ModuleInfo{}, mederrors.WrapModuleError(goModPath, err)
	}

	info := ModuleInfo{Path: modulePath, Root: filepath.Dir(goModPath)}
	r.cache[goModPath] = info
	return info, nil
}

// ImportPath returns the import path of the package in dir
func (r *ModuleResolver) ImportPath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", mederrors.WrapFileSystemError("resolve", dir, err)
	}

	info, err := r.Module(absDir)
	if err != nil {
		return "", err
	}

	return BuildPackagePath(info, absDir)
}

// BuildPackagePath joins the module path with dir relative to the module root
func BuildPackagePath(info ModuleInfo, dir string) (string, error) {
	rel, err := filepath.Rel(info.Root, dir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside module root %s", dir, info.Root)
	}
	if rel == "." {
		return info.Path, nil
	}
	return path.Join(info.Path, rel), nil
}
