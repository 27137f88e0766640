package analyzer

import (
	"regexp"
	"strings"
)

var (
	includeRegex = regexp.MustCompile(`#include\s+[<"]([^>"]+)[>"]`)
	cFuncRegex   = regexp.MustCompile(`(?m)^\s*(?:static\s+)?(?:inline\s+)?[a-zA-Z_][\w*\s]+\s+([a-zA-Z_]\w*)\s*\(`)
)

// analyzeCFamily extracts includes, function-looking declarations, and
// the entry marker from C or C++ source. The function pattern is loose
// and picks up some call sites; downstream consumers treat it as a
// signal, not a symbol table.
func analyzeCFamily(content string, facts *FileFacts) {
	for _, m := range includeRegex.FindAllStringSubmatch(content, -1) {
		facts.Imports = appendUnique(facts.Imports, m[1])
	}
	for _, m := range cFuncRegex.FindAllStringSubmatch(content, -1) {
		facts.Functions = appendUnique(facts.Functions, m[1])
	}
	if strings.Contains(content, "int main(") {
		facts.HasEntryMarker = true
	}
}
