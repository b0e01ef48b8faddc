package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/journal"
	"github.com/starford/scribe/internal/noteservice"
	"github.com/starford/scribe/internal/testutil"
)

func testServer(t *testing.T) (*Server, *testutil.MemStore) {
	t.Helper()

	store := testutil.NewMemStore("/profile")
	store.Put("notes.md", "# Start")
	store.Put(engine.DefaultStyleFile, "{}")

	dbFile, err := os.CreateTemp("", "scribe-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	j, err := journal.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })

	eng := engine.New(
		engine.WithClock(testutil.NewClock()),
		engine.WithLogger(testutil.Logger()),
		engine.WithStorage(store.Opener()),
		engine.WithListener(journal.NewListener(j, testutil.Logger())),
	)
	t.Cleanup(func() { _ = eng.Close(context.Background()) })
	eng.SetProfilePath("/profile")
	if _, err := eng.Status(context.Background()); err != nil {
		t.Fatal(err)
	}

	return New(noteservice.NewService(eng, j), "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper; dispatch to the handlers.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"read_document":    srv.readDocument,
		"replace_document": srv.replaceDocument,
		"append_document":  srv.appendDocument,
		"format_document":  srv.formatDocument,
		"flush_document":   srv.flushDocument,
		"get_status":       srv.getStatus,
		"set_view":         srv.setView,
		"reload_styles":    srv.reloadStyles,
		"recent_attempts":  srv.recentAttempts,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadDocument(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_document", nil)
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"content": "# Start"`) || !strings.Contains(text, `"title": "Start"`) {
		t.Errorf("read result = %s", text)
	}
}

func TestReplaceFlushAndAttempts(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "replace_document", map[string]interface{}{"content": "# Replaced"})
	if r.IsError || !strings.HasPrefix(resultText(r), "replaced: 10 bytes") {
		t.Fatalf("replace = %q", resultText(r))
	}
	if got, _ := store.Content("notes.md"); got != "# Start" {
		t.Errorf("written before flush: %q", got)
	}

	r = callTool(t, srv, "flush_document", nil)
	if r.IsError {
		t.Fatalf("flush: %s", resultText(r))
	}
	if got, _ := store.Content("notes.md"); got != "# Replaced" {
		t.Errorf("after flush = %q", got)
	}

	r = callTool(t, srv, "recent_attempts", map[string]interface{}{"limit": 5})
	if !strings.Contains(resultText(r), `"trigger": "flush"`) {
		t.Errorf("attempts = %s", resultText(r))
	}
}

func TestReplaceIfMatchConflict(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "replace_document", map[string]interface{}{
		"content":  "x",
		"if_match": "not-the-checksum",
	})
	if !r.IsError || !strings.Contains(resultText(r), "checksum mismatch") {
		t.Errorf("expected conflict, got %q", resultText(r))
	}
}

func TestAppendAndFormat(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "append_document", map[string]interface{}{"text": "more"})
	r := callTool(t, srv, "format_document", map[string]interface{}{
		"action": "bold",
		"start":  float64(8),
		"end":    float64(12),
	})
	if r.IsError {
		t.Fatalf("format: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"text": "# Start\n**more**"`) {
		t.Errorf("format result = %s", resultText(r))
	}

	r = callTool(t, srv, "format_document", map[string]interface{}{"action": "link"})
	if !r.IsError {
		t.Error("link without url should fail")
	}
	r = callTool(t, srv, "format_document", map[string]interface{}{"action": "sparkle"})
	if !r.IsError {
		t.Error("unknown action should fail")
	}
}

func TestSetViewAndStatus(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "set_view", map[string]interface{}{"mode": "preview"})
	if resultText(r) != "view: preview" {
		t.Errorf("set_view = %q", resultText(r))
	}
	r = callTool(t, srv, "set_view", map[string]interface{}{"mode": "sideways"})
	if !r.IsError {
		t.Error("invalid mode should fail")
	}

	r = callTool(t, srv, "get_status", nil)
	if !strings.Contains(resultText(r), `"mode": "preview"`) {
		t.Errorf("status = %s", resultText(r))
	}
}

func TestReloadStyles(t *testing.T) {
	srv, store := testServer(t)
	store.Put(engine.DefaultStyleFile, "not json")

	r := callTool(t, srv, "reload_styles", nil)
	if resultText(r) != "styles regenerated" {
		t.Errorf("reload = %q", resultText(r))
	}
	if _, ok := store.Content(engine.DefaultStyleFile + ".bak"); !ok {
		t.Error("broken style file was not moved aside")
	}
}

func TestMissingArguments(t *testing.T) {
	srv, _ := testServer(t)
	for _, name := range []string{"replace_document", "append_document", "format_document", "set_view"} {
		if r := callTool(t, srv, name, map[string]interface{}{}); !r.IsError {
			t.Errorf("%s without arguments should fail", name)
		}
	}
}

func TestResources(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readDocumentResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if tc := contents[0].(mcp.TextResourceContents); tc.Text != "# Start" || tc.URI != documentURI {
		t.Errorf("document resource = %+v", tc)
	}

	contents, _ = srv.readContractResource(context.Background(), mcp.ReadResourceRequest{})
	if tc := contents[0].(mcp.TextResourceContents); !strings.Contains(tc.Text, "- `heading2`") {
		t.Errorf("contract missing actions:\n%s", tc.Text)
	}
}
