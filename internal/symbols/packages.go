// SPDX-License-Identifier: MPL-2.0

package symbols

import (
	"context"
	"fmt"
	"go/ast"
	"sync"

	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedModule

type (
	// PackagesResolver resolves symbols by loading the declaring package, including its
	// _test.go files, with golang.org/x/tools/go/packages. Loaded packages are cached
	// per import path for the lifetime of the resolver.
	PackagesResolver struct {
		dir   string
		env   []string
		mu    sync.Mutex
		cache map[string]map[string]Location
	}

	// PackagesOption configures a PackagesResolver.
	PackagesOption func(*PackagesResolver)
)

// WithEnv sets the environment used for the underlying go list invocation.
func WithEnv(env []string) PackagesOption {
	return func(r *PackagesResolver) { r.env = env }
}

// NewPackagesResolver returns a resolver that loads packages relative to dir,
// which should be inside the module that declares the benchmarks.
func NewPackagesResolver(dir string, opts ...PackagesOption) *PackagesResolver {
	r := &PackagesResolver{dir: dir, cache: make(map[string]map[string]Location)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements Resolver.
func (r *PackagesResolver) Resolve(ctx context.Context, sym Symbol) (Location, error) {
	funcs, err := r.load(ctx, sym.Package)
	if err != nil {
		return Location{}, &UnresolvedError{Symbol: sym, Reason: err.Error()}
	}
	loc, ok := funcs[sym.Name]
	if !ok {
		return Location{}, &UnresolvedError{Symbol: sym, Reason: "no such function"}
	}
	return loc, nil
}

func (r *PackagesResolver) load(ctx context.Context, pkgPath string) (map[string]Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if funcs, ok := r.cache[pkgPath]; ok {
		return funcs, nil
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     r.dir,
		Env:     r.env,
		Tests:   true,
	}
	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pkgPath, err)
	}

	funcs := make(map[string]Location)
	for _, pkg := range pkgs {
		// With Tests set, the package is returned up to three times (plain, internal
		// test variant, external _test package). Only keep variants of pkgPath.
		if pkg.PkgPath != pkgPath && pkg.PkgPath != pkgPath+"_test" {
			continue
		}
		if len(pkg.Errors) > 0 && len(pkg.Syntax) == 0 {
			return nil, fmt.Errorf("load %s: %v", pkgPath, pkg.Errors[0])
		}
		collectFuncs(pkg, funcs)
	}
	if len(funcs) == 0 && len(pkgs) == 0 {
		return nil, fmt.Errorf("package %s not found", pkgPath)
	}

	r.cache[pkgPath] = funcs
	return funcs, nil
}

// collectFuncs records top-level functions (not methods) declared in pkg.
func collectFuncs(pkg *packages.Package, into map[string]Location) {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv != nil {
				continue
			}
			if _, seen := into[fn.Name.Name]; seen {
				continue
			}
			pos := pkg.Fset.Position(fn.Type.Func)
			into[fn.Name.Name] = Location{File: pos.Filename, Line: pos.Line}
		}
	}
}
