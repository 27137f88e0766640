package analyzer

import (
	"regexp"
	"strings"
)

var (
	jsImportFromRegex = regexp.MustCompile("import\\s+[^;\\n]*?from\\s+['\"`]([^'\"`]+)['\"`]")
	jsImportBareRegex = regexp.MustCompile("import\\s+['\"`]([^'\"`]+)['\"`]")
	jsRequireRegex    = regexp.MustCompile("require\\(['\"`]([^'\"`]+)['\"`]\\)")
	jsExportRegex     = regexp.MustCompile(`export\s+`)
)

// analyzeJSTS extracts module references and export markers from
// JavaScript or TypeScript source. Symbol-level extraction is not
// attempted; the import graph is what downstream analysis needs.
func analyzeJSTS(content string, facts *FileFacts) {
	for _, re := range []*regexp.Regexp{jsImportFromRegex, jsImportBareRegex, jsRequireRegex} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			facts.Imports = appendUnique(facts.Imports, m[1])
		}
	}

	if jsExportRegex.MatchString(content) {
		if strings.Contains(content, "export default") {
			facts.Exports = appendUnique(facts.Exports, "default")
		} else {
			facts.Exports = appendUnique(facts.Exports, "named")
		}
	}
}
