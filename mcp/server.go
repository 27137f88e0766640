// Package mcp provides the MCP (Model Context Protocol) server that
// exposes generated document sets to AI agents.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverVersion = "0.1.0"

// Server represents the MCP server.
type Server struct {
	library DocLibrary
	server  *mcp.Server
}

// DocLibrary defines the document backend the server reads from.
type DocLibrary interface {
	Root() string
	Projects(ctx context.Context) ([]Project, error)
	Documents(ctx context.Context, project string) ([]string, error)
	Read(ctx context.Context, project, document string) (string, error)
	Search(ctx context.Context, project, query string, limit int) ([]SearchHit, error)
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a new MCP server over the given document library.
func NewServer(library DocLibrary) *Server {
	s := &Server{
		library: library,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "lore",
		Version: serverVersion,
	}, nil)

	return s
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "lore_projects",
			Description: "List generated document sets with their document counts and last update time.",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{},
			},
		},
		{
			Name:        "lore_documents",
			Description: "List one document set's files in reading order: index, chapters, then the project overview.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"project": {Type: "string", Description: "Document set name"},
				},
				Required: []string{"project"},
			},
		},
		{
			Name:        "lore_read",
			Description: "Return one document's markdown content.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"project":  {Type: "string", Description: "Document set name"},
					"document": {Type: "string", Description: "Document filename, e.g. index.md"},
				},
				Required: []string{"project", "document"},
			},
		},
		{
			Name:        "lore_search",
			Description: "Search one document set for identifiers or phrases. Returns documents ranked by hit count.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"project": {Type: "string", Description: "Document set name"},
					"query":   {Type: "string", Description: "Search query text"},
					"limit":   {Type: "integer", Description: "Maximum number of results"},
				},
				Required: []string{"project", "query"},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "lore://overview",
			Name:        "Library Overview",
			Description: "Statistics about the served document sets",
			MimeType:    "text/plain",
		},
		{
			URI:         "lore://layout",
			Name:        "Document Set Layout",
			Description: "How a generated document set is organized and the order to read it in",
			MimeType:    "text/plain",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "lore_projects":
		return handleProjects(ctx, s.library)
	case "lore_documents":
		project, _ := args["project"].(string)
		return handleDocuments(ctx, s.library, project)
	case "lore_read":
		project, _ := args["project"].(string)
		document, _ := args["document"].(string)
		return handleRead(ctx, s.library, project, document)
	case "lore_search":
		project, _ := args["project"].(string)
		query, _ := args["query"].(string)
		limit, _ := args["limit"].(float64)
		if limit == 0 {
			limit = 10
		}
		return handleSearch(ctx, s.library, project, query, int(limit))
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "lore://overview":
		return getOverview(ctx, s.library), nil
	case "lore://layout":
		return getLayout(), nil
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// MCP messages are newline-delimited, so the encoder must stay
	// compact: one JSON object per line, no indentation.

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

// ServeHTTP answers one JSON-RPC request per POST. The same dispatch
// backs the stdio transport.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON-RPC request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := s.handleRequest(r.Context(), req)
	_ = json.NewEncoder(w).Encode(resp)
}

// RunHTTP serves the JSON-RPC dispatch over HTTP until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errc:
		return err
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    "lore",
				"version": serverVersion,
			},
			"capabilities": map[string]any{
				"tools": map[string]any{
					"listChanged": false,
				},
				"resources": map[string]any{
					"listChanged": false,
				},
			},
		},
	}
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		schema, _ := json.Marshal(tool.InputSchema)
		var schemaMap map[string]any
		json.Unmarshal(schema, &schemaMap)

		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": schemaMap,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"tools": toolList,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"resources": resourceList,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"contents": []map[string]any{
				{
					"uri":      uri,
					"mimeType": "text/plain",
					"text":     content,
				},
			},
		},
	}
}

// Tool Handlers

func handleProjects(ctx context.Context, library DocLibrary) (string, error) {
	projects, err := library.Projects(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("## Generated Document Sets\n\n")

	if len(projects) == 0 {
		sb.WriteString("No document sets found. Run `lore generate` against a codebase first.\n")
		return sb.String(), nil
	}

	for _, p := range projects {
		sb.WriteString(fmt.Sprintf("- **%s** (%d documents", p.Name, p.Documents))
		if !p.Modified.IsZero() {
			sb.WriteString(fmt.Sprintf(", updated %s", p.Modified.Format("2006-01-02 15:04")))
		}
		sb.WriteString(")\n")
	}

	sb.WriteString("\nNext: Use `lore_documents` to list a set's files in reading order.")

	return sb.String(), nil
}

func handleDocuments(ctx context.Context, library DocLibrary, project string) (string, error) {
	if project == "" {
		return "No project provided", nil
	}

	docs, err := library.Documents(ctx, project)
	if err != nil {
		return fmt.Sprintf("Document set '%s' not found", project), nil
	}
	if len(docs) == 0 {
		return fmt.Sprintf("Document set '%s' is empty", project), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Documents in '%s', in reading order:\n\n", project))
	for i, doc := range docs {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, doc))
	}
	sb.WriteString("\nNext: Use `lore_read` to fetch a document's content.")

	return sb.String(), nil
}

func handleRead(ctx context.Context, library DocLibrary, project, document string) (string, error) {
	if project == "" || document == "" {
		return "No project or document provided", nil
	}

	content, err := library.Read(ctx, project, document)
	if err != nil {
		return fmt.Sprintf("Document '%s' not found in '%s'", document, project), nil
	}

	return content, nil
}

func handleSearch(ctx context.Context, library DocLibrary, project, query string, limit int) (string, error) {
	if project == "" {
		return "No project provided", nil
	}
	if query == "" {
		return "No query provided", nil
	}

	hits, err := library.Search(ctx, project, query, limit)
	if err != nil {
		return fmt.Sprintf("Document set '%s' not found", project), nil
	}
	if len(hits) == 0 {
		return "No results found", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d matching documents for '%s' in '%s':\n\n", len(hits), query, project))

	for i, hit := range hits {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%d hits)\n", i+1, hit.Document, hit.Hits))
		if hit.Snippet != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", hit.Snippet))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Next: Use `lore_read` on a document for its full content.")

	return sb.String(), nil
}

// Resource Handlers

func getOverview(ctx context.Context, library DocLibrary) string {
	var sb strings.Builder
	sb.WriteString("# Lore Document Library\n\n")
	sb.WriteString(fmt.Sprintf("**Output root:** %s\n\n", library.Root()))

	projects, err := library.Projects(ctx)
	if err != nil || len(projects) == 0 {
		sb.WriteString("No document sets generated yet.\n")
		return sb.String()
	}

	total := 0
	for _, p := range projects {
		total += p.Documents
	}
	sb.WriteString(fmt.Sprintf("**Document sets:** %d\n", len(projects)))
	sb.WriteString(fmt.Sprintf("**Documents:** %d\n", total))
	sb.WriteString("\n## Sets\n\n")
	for _, p := range projects {
		sb.WriteString(fmt.Sprintf("- %s (%d documents)\n", p.Name, p.Documents))
	}

	return sb.String()
}

func getLayout() string {
	var sb strings.Builder
	sb.WriteString("# Document Set Layout\n\n")
	sb.WriteString("Each generated set is one directory under the output root.\n\n")
	sb.WriteString("| File | Content |\n")
	sb.WriteString("|------|---------|\n")
	sb.WriteString("| `index.md` | Cross-referenced entry point: summary, component diagram, data flows, interfaces, chapter links |\n")
	sb.WriteString("| `NN_<component>.md` | One chapter per component, numbered in reading order |\n")
	sb.WriteString("| `project_overview.md` | Project-wide development overview |\n")
	sb.WriteString("\nRead `index.md` first, follow the chapters in numeric order, and keep\n")
	sb.WriteString("`project_overview.md` at hand for project-wide conventions.\n")
	return sb.String()
}

// Helper functions

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
