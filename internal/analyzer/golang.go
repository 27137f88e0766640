package analyzer

import (
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
)

var (
	goImportRegex = regexp.MustCompile("import\\s+[\"`]([^\"`]+)[\"`]")
	goFuncRegex   = regexp.MustCompile(`func\s+([a-zA-Z_]\w*)`)
)

// analyzeGo extracts facts from Go source. The precise path parses the
// file with go/parser; any parse error degrades silently to the same
// regex heuristics used for other languages.
func analyzeGo(content string, facts *FileFacts) {
	if parseGoPrecise(content, facts) {
		return
	}

	for _, m := range goImportRegex.FindAllStringSubmatch(content, -1) {
		facts.Imports = appendUnique(facts.Imports, m[1])
	}
	for _, m := range goFuncRegex.FindAllStringSubmatch(content, -1) {
		facts.Functions = appendUnique(facts.Functions, m[1])
	}
	if strings.Contains(content, "func main(") {
		facts.HasEntryMarker = true
	}
}

// parseGoPrecise walks the AST for imports, declared functions and types,
// exported symbols, and a main function. Returns false on parse error.
func parseGoPrecise(content string, facts *FileFacts) bool {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, facts.Path, content, 0)
	if err != nil {
		return false
	}

	for _, imp := range file.Imports {
		facts.Imports = appendUnique(facts.Imports, strings.Trim(imp.Path.Value, "`\""))
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			name := d.Name.Name
			facts.Functions = appendUnique(facts.Functions, name)
			if d.Recv == nil {
				if name == "main" {
					facts.HasEntryMarker = true
				}
				if ast.IsExported(name) {
					facts.Exports = appendUnique(facts.Exports, name)
				}
			}
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				facts.Types = appendUnique(facts.Types, ts.Name.Name)
				if ast.IsExported(ts.Name.Name) {
					facts.Exports = appendUnique(facts.Exports, ts.Name.Name)
				}
			}
		}
	}
	return true
}
