// Package analyze loads Go packages and indexes their exported struct types
// so declaration tables can be validated against real code.
package analyze

import (
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// TypeIndex maps declared type names to their field sets.
type TypeIndex struct {
	// Types maps "pkg.Name" (and the full "path.Name" form) to field names.
	Types map[string]*StructInfo
}

// StructInfo describes one exported struct type.
type StructInfo struct {
	PkgPath string
	Name    string
	Fields  map[string]struct{}
}

// FullName returns the fully qualified "path.Name" form.
func (s *StructInfo) FullName() string {
	return s.PkgPath + "." + s.Name
}

// Load loads the given package patterns and indexes their exported structs.
func Load(patterns ...string) (*TypeIndex, error) {
	cfg := &packages.Config{Mode: LoadMode}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	idx := &TypeIndex{Types: make(map[string]*StructInfo)}
	for _, pkg := range pkgs {
		indexPackage(pkg, idx)
	}
	return idx, nil
}

// indexPackage extracts exported struct types from a loaded package.
func indexPackage(pkg *packages.Package, idx *TypeIndex) {
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)

		typeName, ok := obj.(*types.TypeName)
		if !ok || !typeName.Exported() {
			continue
		}
		st, ok := typeName.Type().Underlying().(*types.Struct)
		if !ok {
			continue
		}

		info := &StructInfo{
			PkgPath: pkg.PkgPath,
			Name:    name,
			Fields:  make(map[string]struct{}, st.NumFields()),
		}
		for i := 0; i < st.NumFields(); i++ {
			field := st.Field(i)
			if field.Exported() {
				info.Fields[field.Name()] = struct{}{}
			}
		}

		idx.Types[info.FullName()] = info
		idx.Types[shortName(pkg.PkgPath, name)] = info
	}
}

// shortName builds the "pkg.Name" form from the last path segment.
func shortName(pkgPath, name string) string {
	if i := strings.LastIndex(pkgPath, "/"); i >= 0 {
		pkgPath = pkgPath[i+1:]
	}
	return pkgPath + "." + name
}

// Lookup resolves a declared type name in either short or full form.
func (idx *TypeIndex) Lookup(name string) (*StructInfo, bool) {
	info, ok := idx.Types[name]
	return info, ok
}

// HasField reports whether the named struct declares the field.
func (s *StructInfo) HasField(name string) bool {
	_, ok := s.Fields[name]
	return ok
}
