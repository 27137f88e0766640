package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLibrary is an in-memory DocLibrary for server tests.
type mockLibrary struct {
	root      string
	projects  []Project
	docs      map[string][]string
	content   map[string]string
	hits      map[string][]SearchHit
	err       error
	lastLimit int
}

func (m *mockLibrary) Root() string {
	if m.root == "" {
		return "/tmp/lore-docs"
	}
	return m.root
}

func (m *mockLibrary) Projects(ctx context.Context) ([]Project, error) {
	return m.projects, m.err
}

func (m *mockLibrary) Documents(ctx context.Context, project string) ([]string, error) {
	docs, ok := m.docs[project]
	if !ok {
		return nil, fmt.Errorf("project %q not found", project)
	}
	return docs, nil
}

func (m *mockLibrary) Read(ctx context.Context, project, document string) (string, error) {
	text, ok := m.content[project+"/"+document]
	if !ok {
		return "", fmt.Errorf("document %q not found in %q", document, project)
	}
	return text, nil
}

func (m *mockLibrary) Search(ctx context.Context, project, query string, limit int) ([]SearchHit, error) {
	m.lastLimit = limit
	if _, ok := m.docs[project]; !ok {
		return nil, fmt.Errorf("project %q not found", project)
	}
	hits := m.hits[query]
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func demoMock() *mockLibrary {
	return &mockLibrary{
		projects: []Project{
			{Name: "demo", Documents: 3, Modified: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		},
		docs: map[string][]string{
			"demo": {"index.md", "01_store.md", "project_overview.md"},
		},
		content: map[string]string{
			"demo/index.md": "# demo\n",
		},
		hits: map[string][]SearchHit{
			"store": {{Document: "01_store.md", Hits: 2, Snippet: "# Store"}},
		},
	}
}

func TestNewServer(t *testing.T) {
	s := NewServer(&mockLibrary{})
	assert.NotNil(t, s)
	assert.NotNil(t, s.server)
}

func TestListTools(t *testing.T) {
	s := NewServer(&mockLibrary{})
	tools := s.ListTools()
	require.Len(t, tools, 4)

	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
		assert.NotEmpty(t, tool.Description)
		assert.NotNil(t, tool.InputSchema)
	}
	assert.Equal(t, []string{"lore_projects", "lore_documents", "lore_read", "lore_search"}, names)
}

func TestListResources(t *testing.T) {
	s := NewServer(&mockLibrary{})
	resources := s.ListResources()
	require.Len(t, resources, 2)
	assert.Equal(t, "lore://overview", resources[0].URI)
	assert.Equal(t, "lore://layout", resources[1].URI)
}

func TestCallTool(t *testing.T) {
	s := NewServer(demoMock())
	ctx := context.Background()

	t.Run("Projects", func(t *testing.T) {
		out, err := s.CallTool(ctx, "lore_projects", nil)
		require.NoError(t, err)
		assert.Contains(t, out, "**demo** (3 documents")
		assert.Contains(t, out, "updated 2025-06-01 12:00")
		assert.Contains(t, out, "lore_documents")
	})

	t.Run("ProjectsEmpty", func(t *testing.T) {
		empty := NewServer(&mockLibrary{})
		out, err := empty.CallTool(ctx, "lore_projects", nil)
		require.NoError(t, err)
		assert.Contains(t, out, "No document sets found")
	})

	t.Run("Documents", func(t *testing.T) {
		out, err := s.CallTool(ctx, "lore_documents", map[string]any{"project": "demo"})
		require.NoError(t, err)
		assert.Contains(t, out, "1. index.md")
		assert.Contains(t, out, "2. 01_store.md")
		assert.Contains(t, out, "3. project_overview.md")
	})

	t.Run("DocumentsMissingProject", func(t *testing.T) {
		out, err := s.CallTool(ctx, "lore_documents", map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, "No project provided", out)
	})

	t.Run("DocumentsUnknownProject", func(t *testing.T) {
		out, err := s.CallTool(ctx, "lore_documents", map[string]any{"project": "ghost"})
		require.NoError(t, err)
		assert.Equal(t, "Document set 'ghost' not found", out)
	})

	t.Run("Read", func(t *testing.T) {
		out, err := s.CallTool(ctx, "lore_read", map[string]any{
			"project":  "demo",
			"document": "index.md",
		})
		require.NoError(t, err)
		assert.Equal(t, "# demo\n", out)
	})

	t.Run("ReadUnknownDocument", func(t *testing.T) {
		out, err := s.CallTool(ctx, "lore_read", map[string]any{
			"project":  "demo",
			"document": "ghost.md",
		})
		require.NoError(t, err)
		assert.Equal(t, "Document 'ghost.md' not found in 'demo'", out)
	})

	t.Run("Search", func(t *testing.T) {
		out, err := s.CallTool(ctx, "lore_search", map[string]any{
			"project": "demo",
			"query":   "store",
		})
		require.NoError(t, err)
		assert.Contains(t, out, "1. **01_store.md** (2 hits)")
		assert.Contains(t, out, "# Store")
	})

	t.Run("SearchNoResults", func(t *testing.T) {
		out, err := s.CallTool(ctx, "lore_search", map[string]any{
			"project": "demo",
			"query":   "ghost",
		})
		require.NoError(t, err)
		assert.Equal(t, "No results found", out)
	})

	t.Run("SearchDefaultLimit", func(t *testing.T) {
		lib := demoMock()
		srv := NewServer(lib)
		_, err := srv.CallTool(ctx, "lore_search", map[string]any{
			"project": "demo",
			"query":   "store",
		})
		require.NoError(t, err)
		assert.Equal(t, 10, lib.lastLimit)
	})

	t.Run("SearchExplicitLimit", func(t *testing.T) {
		lib := demoMock()
		srv := NewServer(lib)
		// JSON numbers arrive as float64.
		_, err := srv.CallTool(ctx, "lore_search", map[string]any{
			"project": "demo",
			"query":   "store",
			"limit":   float64(3),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, lib.lastLimit)
	})

	t.Run("UnknownTool", func(t *testing.T) {
		_, err := s.CallTool(ctx, "lore_nonsense", nil)
		assert.ErrorContains(t, err, "unknown tool")
	})
}

func TestReadResource(t *testing.T) {
	s := NewServer(demoMock())
	ctx := context.Background()

	t.Run("Overview", func(t *testing.T) {
		out, err := s.ReadResource(ctx, "lore://overview")
		require.NoError(t, err)
		assert.Contains(t, out, "# Lore Document Library")
		assert.Contains(t, out, "**Document sets:** 1")
		assert.Contains(t, out, "- demo (3 documents)")
	})

	t.Run("OverviewEmpty", func(t *testing.T) {
		empty := NewServer(&mockLibrary{})
		out, err := empty.ReadResource(ctx, "lore://overview")
		require.NoError(t, err)
		assert.Contains(t, out, "No document sets generated yet")
	})

	t.Run("Layout", func(t *testing.T) {
		out, err := s.ReadResource(ctx, "lore://layout")
		require.NoError(t, err)
		assert.Contains(t, out, "index.md")
		assert.Contains(t, out, "project_overview.md")
		assert.Contains(t, out, "numeric order")
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := s.ReadResource(ctx, "lore://ghost")
		assert.ErrorContains(t, err, "unknown resource")
	})
}

func TestServer_JSONRPCSession(t *testing.T) {
	s := NewServer(demoMock())

	var in bytes.Buffer
	in.WriteString(`{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n")
	in.WriteString("not json\n")
	in.WriteString(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")
	in.WriteString(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"lore_read","arguments":{"project":"demo","document":"index.md"}}}` + "\n")
	in.WriteString(`{"jsonrpc":"2.0","id":4,"method":"nope"}` + "\n")

	var out bytes.Buffer
	err := s.Run(context.Background(), &in, &out)
	require.NoError(t, err)

	var responses []map[string]any
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp map[string]any
		require.NoError(t, dec.Decode(&resp))
		responses = append(responses, resp)
	}
	// The unparsable line is skipped without a response.
	require.Len(t, responses, 4)

	init, ok := responses[0]["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-11-05", init["protocolVersion"])

	toolsResult, ok := responses[1]["result"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, toolsResult["tools"], 4)

	callResult, ok := responses[2]["result"].(map[string]any)
	require.True(t, ok)
	content := callResult["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "# demo\n", content["text"])

	errObj, ok := responses[3]["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(-32601), errObj["code"])
}

func TestServer_RejectsNilStreams(t *testing.T) {
	s := NewServer(demoMock())
	err := s.Run(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestServer_HTTP(t *testing.T) {
	s := NewServer(demoMock())

	t.Run("RejectsGet", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("RejectsBadJSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("AnswersRequest", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":7,"method":"resources/read","params":{"uri":"lore://layout"}}`
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		result, ok := resp["result"].(map[string]any)
		require.True(t, ok)
		contents, ok := result["contents"].([]any)
		require.True(t, ok)
		require.Len(t, contents, 1)
		assert.Contains(t, contents[0].(map[string]any)["text"], "Document Set Layout")
	})
}
