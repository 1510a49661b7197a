// Package fileperm is an analyzer that flags hardcoded permission
// literals in file-writing calls. The named constants in pkg/fileutil
// exist so permission choices stay searchable and consistent.
package fileperm

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports octal permission literals passed to WriteFile and
// MkdirAll style calls.
var Analyzer = &analysis.Analyzer{
	Name: "fileperm",
	Doc:  "flags hardcoded file permission literals instead of the fileutil constants",
	Run:  run,
}

// permArgIndex locates the permission argument for each call shape this
// analyzer understands. Matching is by method name suffix, so os, afero,
// and wrapper variants are all covered.
var permArgIndex = map[string]int{
	"WriteFile": 2,
	"MkdirAll":  1,
}

// constantFor maps known permission literals to the constant a call site
// should use instead.
var constantFor = map[string]string{
	"0o600": "fileutil.ReadWriteUserPermission",
	"0600":  "fileutil.ReadWriteUserPermission",
	"0o644": "fileutil.ReadWriteUserReadOthers",
	"0644":  "fileutil.ReadWriteUserReadOthers",
	"0o755": "fileutil.ReadWriteExecuteUserReadExecuteOthers",
	"0755":  "fileutil.ReadWriteExecuteUserReadExecuteOthers",
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			argIndex := -1
			for suffix, idx := range permArgIndex {
				if strings.HasSuffix(sel.Sel.Name, suffix) {
					argIndex = idx
					break
				}
			}
			if argIndex < 0 || len(call.Args) <= argIndex {
				return true
			}

			lit, ok := call.Args[argIndex].(*ast.BasicLit)
			if !ok || lit.Kind != token.INT {
				return true
			}
			if constant, known := constantFor[lit.Value]; known {
				pass.Reportf(lit.Pos(), "use %s instead of hardcoded %s", constant, lit.Value)
			}
			return true
		})
	}
	return nil, nil //nolint:nilnil // analyzers without a result type return nil
}
