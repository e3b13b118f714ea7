// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the warrant review session to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/warrantdesk/internal/apperr"
	"github.com/starford/warrantdesk/internal/reviewservice"
	"github.com/starford/warrantdesk/internal/storage"
)

// ColumnsURI is the resource URI of the column contract.
const ColumnsURI = "warrantdesk://columns"

// Server wraps the MCP server with review tools.
type Server struct {
	mcp *server.MCPServer
	svc *reviewservice.Service
	out *storage.FS
}

// New creates a new MCP server with all review tools registered. Generated
// documents are written to out.
func New(svc *reviewservice.Service, out *storage.FS) *Server {
	s := &Server{svc: svc, out: out}

	s.mcp = server.NewMCPServer(
		"warrantdesk",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List the loaded warrant records, one per unique ID, sorted by name."),
		mcp.WithString("query", mcp.Description("Optional filter on name, case number, CPF or mother's name")),
	), s.listRecords)

	s.mcp.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Read every field of a record, its notes and the notes checksum."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record ID as returned by list_records")),
	), s.getRecord)

	s.mcp.AddTool(mcp.NewTool("update_notes",
		mcp.WithDescription("Replace the notes of a record. Pass the checksum from get_record as "+
			"if_match to avoid overwriting a concurrent edit."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
		mcp.WithString("notes", mcp.Required(), mcp.Description("New notes text (empty clears)")),
		mcp.WithString("if_match", mcp.Description("Checksum of the notes being replaced")),
	), s.updateNotes)

	s.mcp.AddTool(mcp.NewTool("attach_photo",
		mcp.WithDescription("Attach a JPEG or PNG photo to a record from a base64 data URI "+
			"or an http(s) URL."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
		mcp.WithString("url", mcp.Required(), mcp.Description("data:image/...;base64,... or http(s) URL")),
	), s.attachPhoto)

	s.mcp.AddTool(mcp.NewTool("render_report",
		mcp.WithDescription("Render a PDF report: the individual report of a record when id "+
			"is given, the consolidated report of all records otherwise."),
		mcp.WithString("id", mcp.Description("Record ID (omit for the consolidated report)")),
	), s.renderReport)

	s.mcp.AddTool(mcp.NewTool("export_workbook",
		mcp.WithDescription("Write the loaded spreadsheet with the current notes merged into "+
			"the notes column."),
	), s.exportWorkbook)

	s.mcp.AddTool(mcp.NewTool("get_column_contract",
		mcp.WithDescription("Returns the spreadsheet column contract: recognised headers, "+
			"the notes column and how record IDs are derived."),
	), s.getColumnContract)

	s.mcp.AddResource(
		mcp.NewResource(ColumnsURI, "Column Contract",
			mcp.WithResourceDescription("Spreadsheet columns understood by warrantdesk."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readColumnsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type documentResult struct {
	File string `json:"file"`
	Size int    `json:"size"`
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

// toolError converts service errors into tool error results.
func toolError(err error, id string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id))
	case errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError("notes changed since they were read; call get_record and retry")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := ""
	if q, err := req.RequireString("query"); err == nil {
		query = q
	}
	recs, err := s.svc.ListRecords(ctx, query)
	if err != nil {
		return toolError(err, ""), nil
	}
	type item struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		HasNotes    bool   `json:"has_notes"`
		HasPhoto    bool   `json:"has_photo"`
	}
	items := make([]item, len(recs))
	for i, r := range recs {
		items[i] = item{ID: r.ID, DisplayName: r.DisplayName(), HasNotes: r.Notes != "", HasPhoto: r.HasPhoto}
	}
	return jsonResult(items), nil
}

func (s *Server) getRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.GetRecord(ctx, id)
	if err != nil {
		return toolError(err, id), nil
	}
	return jsonResult(rec), nil
}

func (s *Server) updateNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := req.RequireString("notes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ifMatch := ""
	if v, mErr := req.RequireString("if_match"); mErr == nil {
		ifMatch = v
	}
	rec, err := s.svc.UpdateNotes(ctx, id, notes, ifMatch)
	if err != nil {
		return toolError(err, id), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s (checksum %s)", id, rec.Checksum)), nil
}

func (s *Server) renderReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		doc *reviewservice.Document
		err error
	)
	id, idErr := req.RequireString("id")
	if idErr == nil && id != "" {
		doc, err = s.svc.IndividualReport(ctx, id)
	} else {
		doc, err = s.svc.ConsolidatedReport(ctx)
	}
	if err != nil {
		return toolError(err, id), nil
	}
	return s.save(doc), nil
}

func (s *Server) exportWorkbook(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.svc.ExportWorkbook(ctx)
	if err != nil {
		return toolError(err, ""), nil
	}
	return s.save(doc), nil
}

func (s *Server) save(doc *reviewservice.Document) *mcp.CallToolResult {
	if err := s.out.Write(doc.Filename, doc.Data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save %s: %v", doc.Filename, err))
	}
	return jsonResult(documentResult{
		File: filepath.Join(s.out.Root(), doc.Filename),
		Size: len(doc.Data),
	})
}

func (s *Server) getColumnContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ColumnContract()), nil
}

func (s *Server) readColumnsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ColumnsURI,
			MIMEType: "text/markdown",
			Text:     ColumnContract(),
		},
	}, nil
}
