package analyzer

import (
	"regexp"
	"strings"
)

var (
	javaImportRegex = regexp.MustCompile(`import\s+(?:static\s+)?([a-zA-Z_][\w.]*?)(?:\.\*)?\s*;`)
	javaTypeRegex   = regexp.MustCompile(`\b(?:class|interface|enum|record)\s+([A-Za-z_]\w*)`)
)

// analyzeJava extracts imports, declared types, and the entry marker from
// Java source.
func analyzeJava(content string, facts *FileFacts) {
	for _, m := range javaImportRegex.FindAllStringSubmatch(content, -1) {
		facts.Imports = appendUnique(facts.Imports, m[1])
	}
	for _, m := range javaTypeRegex.FindAllStringSubmatch(content, -1) {
		facts.Types = appendUnique(facts.Types, m[1])
	}
	if strings.Contains(content, "public static void main") {
		facts.HasEntryMarker = true
	}
}
