package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/warrantdesk/internal/checksum"
	"github.com/starford/warrantdesk/internal/report"
	"github.com/starford/warrantdesk/internal/reviewservice"
	"github.com/starford/warrantdesk/internal/testutil"
)

var mariaID = checksum.RecordID("0002-22.2021", "MARIA SOUZA")

func testServer(t *testing.T, load bool) (*Server, string) {
	t.Helper()

	outDir, out := testutil.TestDir(t)
	svc := reviewservice.NewService(testutil.TestStore(t), report.NewRenderer())
	if load {
		if _, err := svc.LoadWorkbook(context.Background(), "mandados.xlsx",
			bytes.NewReader(testutil.SampleWorkbook(t))); err != nil {
			t.Fatal(err)
		}
	}
	return New(svc, out), outDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are invoked
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_records":
		result, err = srv.listRecords(ctx, req)
	case "get_record":
		result, err = srv.getRecord(ctx, req)
	case "update_notes":
		result, err = srv.updateNotes(ctx, req)
	case "attach_photo":
		result, err = srv.attachPhoto(ctx, req)
	case "render_report":
		result, err = srv.renderReport(ctx, req)
	case "export_workbook":
		result, err = srv.exportWorkbook(ctx, req)
	case "get_column_contract":
		result, err = srv.getColumnContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

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

func TestListRecords(t *testing.T) {
	srv, _ := testServer(t, true)

	r := callTool(t, srv, "list_records", map[string]interface{}{})
	var items []map[string]any
	if err := json.Unmarshal([]byte(resultText(r)), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[0]["display_name"] != "BRUNO ALVES (0003-33.2022)" {
		t.Errorf("first = %v", items[0]["display_name"])
	}

	r = callTool(t, srv, "list_records", map[string]interface{}{"query": "maria"})
	_ = json.Unmarshal([]byte(resultText(r)), &items)
	if len(items) != 1 || items[0]["id"] != mariaID {
		t.Errorf("filtered = %v", items)
	}
}

func TestListRecords_NoSession(t *testing.T) {
	srv, _ := testServer(t, false)
	r := callTool(t, srv, "list_records", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without a loaded workbook")
	}
}

func TestGetAndUpdateNotes(t *testing.T) {
	srv, _ := testServer(t, true)

	r := callTool(t, srv, "get_record", map[string]interface{}{"id": mariaID})
	var rec reviewservice.RecordDetail
	if err := json.Unmarshal([]byte(resultText(r)), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Notes != "vista no centro" {
		t.Errorf("notes = %q", rec.Notes)
	}

	r = callTool(t, srv, "update_notes", map[string]interface{}{
		"id": mariaID, "notes": "nova", "if_match": rec.Checksum,
	})
	if r.IsError {
		t.Fatalf("update failed: %s", resultText(r))
	}
	if !strings.HasPrefix(resultText(r), "updated: "+mariaID) {
		t.Errorf("update result = %q", resultText(r))
	}

	// Same checksum is now stale.
	r = callTool(t, srv, "update_notes", map[string]interface{}{
		"id": mariaID, "notes": "outra", "if_match": rec.Checksum,
	})
	if !r.IsError {
		t.Error("expected conflict for stale if_match")
	}
}

func TestGetRecordMissing(t *testing.T) {
	srv, _ := testServer(t, true)
	r := callTool(t, srv, "get_record", map[string]interface{}{"id": "nope"})
	if !r.IsError || resultText(r) != "not found: nope" {
		t.Errorf("missing record result = %q", resultText(r))
	}
}

func TestAttachPhoto_DataURI(t *testing.T) {
	srv, _ := testServer(t, true)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testutil.PNG(t, 8, 6))

	r := callTool(t, srv, "attach_photo", map[string]interface{}{"id": mariaID, "url": uri})
	if r.IsError {
		t.Fatalf("attach failed: %s", resultText(r))
	}
	var res photoResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.Width != 8 || res.Height != 6 || res.ContentType != "image/png" {
		t.Errorf("photo = %+v", res)
	}
}

func TestAttachPhoto_Rejected(t *testing.T) {
	srv, _ := testServer(t, true)
	for _, uri := range []string{
		"data:image/gif;base64,R0lGODlh",
		"data:image/png,plain",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not a png")),
		"ftp://example.com/a.png",
		"http://127.0.0.1/a.png",
		"http://10.0.0.5/a.png",
		"http://192.168.1.20/a.png",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]/a.png",
		"http://0.0.0.0/a.png",
	} {
		r := callTool(t, srv, "attach_photo", map[string]interface{}{"id": mariaID, "url": uri})
		if !r.IsError {
			t.Errorf("%q should be rejected", uri)
		}
	}
}

func TestCheckBlockedHost(t *testing.T) {
	orig := lookupIP
	t.Cleanup(func() { lookupIP = orig })
	lookupIP = func(host string) ([]net.IP, error) {
		switch host {
		case "photos.example.com":
			return []net.IP{net.ParseIP("93.184.216.34")}, nil
		case "mixed.example.com":
			return []net.IP{net.ParseIP("93.184.216.34"), net.ParseIP("10.1.2.3")}, nil
		case "internal.example.com":
			return []net.IP{net.ParseIP("fd00::1")}, nil
		}
		return nil, errors.New("no such host")
	}

	cases := []struct {
		host    string
		blocked bool
	}{
		{"93.184.216.34", false},
		{"photos.example.com", false},
		{"unknown.example.com", false},
		{"127.0.0.1", true},
		{"::1", true},
		{"10.0.0.5", true},
		{"172.16.4.1", true},
		{"192.168.0.10", true},
		{"169.254.169.254", true},
		{"fe80::1", true},
		{"0.0.0.0", true},
		{"::", true},
		{"metadata.google.internal", true},
		{"mixed.example.com", true},
		{"internal.example.com", true},
	}
	for _, c := range cases {
		err := checkBlockedHost(c.host)
		if (err != nil) != c.blocked {
			t.Errorf("checkBlockedHost(%q) = %v, want blocked=%v", c.host, err, c.blocked)
		}
	}
}

func TestDialControl(t *testing.T) {
	for addr, blocked := range map[string]bool{
		"93.184.216.34:443": false,
		"10.0.0.5:80":       true,
		"[::1]:80":          true,
		"not-an-address":    true,
	} {
		err := dialControl("tcp", addr, nil)
		if (err != nil) != blocked {
			t.Errorf("dialControl(%q) = %v, want blocked=%v", addr, err, blocked)
		}
	}
}

func TestRenderReportAndExport(t *testing.T) {
	srv, outDir := testServer(t, true)

	tests := []struct {
		tool string
		args map[string]interface{}
		file string
	}{
		{"render_report", map[string]interface{}{"id": mariaID}, "relatorio_0002-22.2021.pdf"},
		{"render_report", map[string]interface{}{}, "relatorio_completo.pdf"},
		{"export_workbook", map[string]interface{}{}, "mandados_atualizados.xlsx"},
	}
	for _, tc := range tests {
		r := callTool(t, srv, tc.tool, tc.args)
		if r.IsError {
			t.Errorf("%s failed: %s", tc.tool, resultText(r))
			continue
		}
		var res documentResult
		_ = json.Unmarshal([]byte(resultText(r)), &res)
		if filepath.Base(res.File) != tc.file || res.Size == 0 {
			t.Errorf("%s result = %+v", tc.tool, res)
		}
		if _, err := os.Stat(filepath.Join(outDir, tc.file)); err != nil {
			t.Errorf("%s not written: %v", tc.file, err)
		}
	}
}

func TestColumnContract(t *testing.T) {
	srv, _ := testServer(t, false)
	text := resultText(callTool(t, srv, "get_column_contract", map[string]interface{}{}))
	for _, want := range []string{"`Processo` (required)", "`Nome` (required)", "`Tipificação`", "observa"} {
		if !strings.Contains(text, want) {
			t.Errorf("contract missing %q", want)
		}
	}

	contents, err := srv.readColumnsResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != ColumnsURI || tc.Text != text {
		t.Errorf("resource = %+v", contents[0])
	}
}
