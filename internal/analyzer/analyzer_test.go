package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lore/internal/source"
)

func srcFile(path, content string) source.File {
	return source.File{
		Path:     path,
		Content:  content,
		Size:     len(content),
		Lines:    strings.Count(content, "\n"),
		Language: source.DetectLanguage(path),
	}
}

func TestAnalyze_PythonProject(t *testing.T) {
	t.Parallel()

	files := []source.File{
		srcFile("main.py", `
import os
from utils.helper import process

def main():
    process()

if __name__ == "__main__":
    main()
`),
		srcFile("utils/helper.py", `
def process():
    return 1

class Processor:
    pass
`),
	}

	report := Analyze(files)
	require.Len(t, report.Files, 2)

	main := report.Files[0]
	assert.Equal(t, "python", main.Language)
	assert.Contains(t, main.Imports, "os")
	assert.Contains(t, main.Imports, "utils.helper")
	assert.Contains(t, main.Functions, "main")
	assert.True(t, main.HasEntryMarker)

	helper := report.Files[1]
	assert.Contains(t, helper.Functions, "process")
	assert.Contains(t, helper.Types, "Processor")
	assert.False(t, helper.HasEntryMarker)

	assert.Equal(t, []string{"utils/helper.py"}, report.Dependencies["main.py"])
	assert.Equal(t, []string{"main.py"}, report.EntryPoints)
	require.Len(t, report.CoreModules, 1)
	assert.Equal(t, CoreModule{Path: "utils/helper.py", Dependents: 1}, report.CoreModules[0])
}

func TestAnalyze_Deterministic(t *testing.T) {
	t.Parallel()

	files := []source.File{
		srcFile("app/models/user.py", "class User:\n    pass\n"),
		srcFile("app/views/user_view.py", "from app.models.user import User\n"),
		srcFile("app/controllers/user_controller.py", "from app.models.user import User\n"),
		srcFile("main.py", "from app.models.user import User\n\ndef main():\n    pass\n"),
	}

	first := Analyze(files)
	second := Analyze(files)
	assert.Equal(t, first, second)
}

func TestAnalyze_EntryPoints(t *testing.T) {
	t.Parallel()

	t.Run("CanonicalBasenames", func(t *testing.T) {
		t.Parallel()
		files := []source.File{
			srcFile("index.js", "const x = 1\n"),
			srcFile("lib.js", "const y = 2\n"),
			srcFile("app.py", "x = 1\n"),
		}
		report := Analyze(files)
		assert.Equal(t, []string{"index.js", "app.py"}, report.EntryPoints)
	})

	t.Run("InitFilesNeedContent", func(t *testing.T) {
		t.Parallel()
		small := srcFile("pkg/__init__.py", "x = 1\n")
		big := srcFile("pkg2/__init__.py", strings.Repeat("# package wiring\n", 10))

		report := Analyze([]source.File{small, big})
		assert.Equal(t, []string{"pkg2/__init__.py"}, report.EntryPoints)
	})

	t.Run("EntryMarkerWins", func(t *testing.T) {
		t.Parallel()
		files := []source.File{
			srcFile("tool.c", "#include <stdio.h>\n\nint main(void) {\n    return 0;\n}\n"),
		}
		report := Analyze(files)
		assert.Equal(t, []string{"tool.c"}, report.EntryPoints)
	})
}

func TestAnalyze_ConfigDetection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want bool
	}{
		{"config.py", true},
		{"app/settings.py", true},
		{"deploy/values.yaml", true},
		{"pyproject.toml", true},
		{"package.json", true},
		{"requirements.txt", true},
		{"go.mod", true},
		{"Makefile", true},
		{"Dockerfile", true},
		{".env", true},
		{"main.py", false},
		{"server.go", false},
		{"README.md", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isConfigFile(tc.path), tc.path)
	}
}

func TestAnalyze_DirectoryShapeAndPatterns(t *testing.T) {
	t.Parallel()

	files := []source.File{
		srcFile("app/models/a.py", "x = 1\n"),
		srcFile("app/models/b.py", "x = 1\n"),
		srcFile("app/models/c.py", "x = 1\n"),
		srcFile("app/models/d.py", "x = 1\n"),
		srcFile("app/views/v.py", "x = 1\n"),
		srcFile("app/controllers/c.py", "x = 1\n"),
		srcFile("tests/test_a.py", "x = 1\n"),
		srcFile("main.py", "x = 1\n"),
	}

	report := Analyze(files)

	assert.Equal(t, 3, report.MaxDepth)
	assert.Equal(t, []string{"app/models"}, report.CommonDirs)
	assert.Equal(t, []DirCount{
		{Dir: "app/controllers", Files: 1},
		{Dir: "app/models", Files: 4},
		{Dir: "app/views", Files: 1},
		{Dir: "tests", Files: 1},
	}, report.Directories)

	assert.True(t, report.Patterns.MVC)
	assert.True(t, report.Patterns.Layered) // "controllers" contains "controller"
	assert.True(t, report.Patterns.HasTests)
	assert.True(t, report.Patterns.Modular)
}

func TestAnalyze_FileTypes(t *testing.T) {
	t.Parallel()

	files := []source.File{
		srcFile("a.py", "x = 1\n"),
		srcFile("b.py", "y = 2\n"),
		srcFile("Makefile", "all:\n"),
	}
	report := Analyze(files)

	assert.Equal(t, map[string]int{".py": 2, "": 1}, report.FileTypes)
}

func TestAnalyze_MalformedSourceNeverPanics(t *testing.T) {
	t.Parallel()

	files := []source.File{
		srcFile("broken.py", "def (((\nclass \x01\n"),
		srcFile("broken.go", "package\nfunc {{{"),
		srcFile("broken.js", "import from from import\n"),
		srcFile("weird.bin.c", "\x00\x01\x02 int main("),
	}

	require.NotPanics(t, func() {
		report := Analyze(files)
		assert.Len(t, report.Files, 4)
	})
}

func TestReport_Summarize(t *testing.T) {
	t.Parallel()

	files := []source.File{
		srcFile("main.py", "from utils.helper import f\n\ndef main():\n    f()\n"),
		srcFile("utils/helper.py", "def f():\n    pass\n"),
		srcFile("utils/extra.py", "def g():\n    pass\n"),
		srcFile("utils/more.py", "def h():\n    pass\n"),
		srcFile("utils/last.py", "def i():\n    pass\n"),
	}
	report := Analyze(files)
	summary := report.Summarize()

	assert.Contains(t, summary, "Files: 5")
	assert.Contains(t, summary, ".py=5")
	assert.Contains(t, summary, "Entry points: main.py")
	assert.Contains(t, summary, "utils/helper.py (1)")
	assert.Contains(t, summary, "Main directories: utils")

	// Deterministic input produces identical summaries.
	assert.Equal(t, summary, Analyze(files).Summarize())
}
