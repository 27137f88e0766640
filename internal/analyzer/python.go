package analyzer

import "regexp"

var (
	pythonImportRegex     = regexp.MustCompile(`(?m)^\s*import\s+([a-zA-Z_][\w.]*)`)
	pythonFromImportRegex = regexp.MustCompile(`(?m)^\s*from\s+\.*([a-zA-Z_][\w.]*)\s+import`)
	pythonFuncRegex       = regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+([a-zA-Z_]\w*)`)
	pythonClassRegex      = regexp.MustCompile(`(?m)^\s*class\s+([a-zA-Z_]\w*)`)
	pythonMainGuardRegex  = regexp.MustCompile(`if\s+__name__\s*==\s*['"]__main__['"]`)
)

// analyzePython extracts imports, definitions, and the entry marker from
// Python source. Relative imports contribute their module name with the
// leading dots stripped.
func analyzePython(content string, facts *FileFacts) {
	for _, m := range pythonImportRegex.FindAllStringSubmatch(content, -1) {
		facts.Imports = appendUnique(facts.Imports, m[1])
	}
	for _, m := range pythonFromImportRegex.FindAllStringSubmatch(content, -1) {
		facts.Imports = appendUnique(facts.Imports, m[1])
	}
	for _, m := range pythonFuncRegex.FindAllStringSubmatch(content, -1) {
		facts.Functions = appendUnique(facts.Functions, m[1])
		if m[1] == "main" {
			facts.HasEntryMarker = true
		}
	}
	for _, m := range pythonClassRegex.FindAllStringSubmatch(content, -1) {
		facts.Types = appendUnique(facts.Types, m[1])
	}
	if pythonMainGuardRegex.MatchString(content) {
		facts.HasEntryMarker = true
	}
}
