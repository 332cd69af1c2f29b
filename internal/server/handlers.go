package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/image-editor-mcp/internal/editor"
	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "editor_open", "editor_enhance").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		editor.Logger().Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Drives the editing session
//  4. Returns the session status or the requested data
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session
	case "editor_open":
		return s.handleOpen(args)
	case "editor_state":
		return s.status(), nil
	case "editor_clear":
		s.session.Clear()
		return s.status(), nil

	// Edits
	case "editor_channel_offset":
		return s.handleChannelOffset(args)
	case "editor_enhance":
		return s.handleEnhance(args)
	case "editor_reset_effect":
		return s.handleResetEffect(args)
	case "editor_reset_colors":
		if err := s.session.ResetColors(); err != nil {
			return nil, err
		}
		return s.status(), nil
	case "editor_filter":
		return s.handleFilter(args)
	case "editor_transparency":
		return s.handleTransparency(args)
	case "editor_reset_image":
		s.session.ResetImage()
		return s.status(), nil

	// Output
	case "editor_save":
		return s.handleSave()
	case "editor_save_as":
		return s.handleSaveAs(args)
	case "editor_preview":
		return s.handlePreview(args)

	// Inspection
	case "editor_sample_color":
		return s.handleSampleColor(args)
	case "editor_channel_stats":
		return s.handleChannelStats(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v. Missing or null arguments
// leave v at its zero value so tools without required parameters can be
// called bare.
func decodeArgs(args json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) status() editor.Status {
	return s.session.Status()
}

// === Session Handlers ===

type openArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleOpen(args json.RawMessage) (interface{}, error) {
	var a openArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if err := s.session.Open(a.Path); err != nil {
		return nil, err
	}
	return s.status(), nil
}

// === Edit Handlers ===

type channelOffsetArgs struct {
	Channel string `json:"channel"`
	Value   int    `json:"value"`
}

func (s *Server) handleChannelOffset(args json.RawMessage) (interface{}, error) {
	var a channelOffsetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	ch, err := imaging.ParseChannel(a.Channel)
	if err != nil {
		return nil, err
	}
	if a.Value < editor.OffsetMin || a.Value > editor.OffsetMax {
		return nil, fmt.Errorf("value %d outside %d..%d", a.Value, editor.OffsetMin, editor.OffsetMax)
	}
	if err := s.session.SetChannel(ch, a.Value); err != nil {
		return nil, err
	}
	return s.status(), nil
}

type enhanceArgs struct {
	Effect string   `json:"effect"`
	Factor *float64 `json:"factor"`
}

func (s *Server) handleEnhance(args json.RawMessage) (interface{}, error) {
	var a enhanceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := parseEnhancement(a.Effect)
	if err != nil {
		return nil, err
	}
	factor := editor.FactorNeutral
	if a.Factor != nil {
		factor = *a.Factor
	}
	if err := s.session.SetEnhancement(f, factor); err != nil {
		return nil, err
	}
	return s.status(), nil
}

func (s *Server) handleResetEffect(args json.RawMessage) (interface{}, error) {
	var a enhanceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := parseEnhancement(a.Effect)
	if err != nil {
		return nil, err
	}
	if err := s.session.ResetEnhancement(f); err != nil {
		return nil, err
	}
	return s.status(), nil
}

func parseEnhancement(name string) (editor.Family, error) {
	f, err := editor.ParseFamily(name)
	if err != nil {
		return 0, err
	}
	if !f.IsEnhancement() {
		return 0, fmt.Errorf("%w: %s is not an enhancement", editor.ErrUnknownFamily, name)
	}
	return f, nil
}

type filterArgs struct {
	Filter  string `json:"filter"`
	Enabled *bool  `json:"enabled"`
}

func (s *Server) handleFilter(args json.RawMessage) (interface{}, error) {
	var a filterArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := imaging.ParseFilter(a.Filter)
	if err != nil {
		return nil, err
	}
	enabled := true
	if a.Enabled != nil {
		enabled = *a.Enabled
	}
	if err := s.session.SetFilter(f, enabled); err != nil {
		return nil, err
	}
	return s.status(), nil
}

type transparencyArgs struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleTransparency(args json.RawMessage) (interface{}, error) {
	var a transparencyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	enabled := true
	if a.Enabled != nil {
		enabled = *a.Enabled
	}
	if err := s.session.SetTransparency(enabled); err != nil {
		return nil, err
	}
	return s.status(), nil
}

// === Output Handlers ===

type saveResult struct {
	Path   string        `json:"path"`
	Status editor.Status `json:"status"`
}

func (s *Server) handleSave() (interface{}, error) {
	path, err := s.session.Save()
	if errors.Is(err, editor.ErrNoSaveTarget) {
		return nil, fmt.Errorf("%w: call editor_save_as with a destination path", err)
	}
	if err != nil {
		return nil, err
	}
	return saveResult{Path: path, Status: s.status()}, nil
}

type saveAsArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleSaveAs(args json.RawMessage) (interface{}, error) {
	var a saveAsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	path, err := s.session.SaveAs(a.Path)
	if err != nil {
		return nil, err
	}
	return saveResult{Path: path, Status: s.status()}, nil
}

type previewArgs struct {
	Source    string `json:"source"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
	Region    string `json:"region"`
	X1        *int   `json:"x1"`
	Y1        *int   `json:"y1"`
	X2        *int   `json:"x2"`
	Y2        *int   `json:"y2"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MaxWidth == 0 {
		a.MaxWidth = 512
	}
	if a.MaxHeight == 0 {
		a.MaxHeight = 512
	}

	img, err := s.source(a.Source)
	if err != nil {
		return nil, err
	}

	var rect image.Rectangle
	switch {
	case a.X1 != nil || a.Y1 != nil || a.X2 != nil || a.Y2 != nil:
		if a.X1 == nil || a.Y1 == nil || a.X2 == nil || a.Y2 == nil {
			return nil, errors.New("x1, y1, x2 and y2 must be given together")
		}
		if *a.X1 >= *a.X2 || *a.Y1 >= *a.Y2 {
			return nil, errors.New("invalid region: x1 must be < x2, y1 must be < y2")
		}
		rect = image.Rect(*a.X1, *a.Y1, *a.X2, *a.Y2)
	default:
		rect, err = imaging.NamedRegion(img.Bounds(), a.Region)
		if err != nil {
			return nil, err
		}
	}

	return imaging.Preview(img, rect, a.MaxWidth, a.MaxHeight)
}

// === Inspection Handlers ===

type sampleColorArgs struct {
	Source string `json:"source"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.source(a.Source)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type channelStatsArgs struct {
	Source string `json:"source"`
}

func (s *Server) handleChannelStats(args json.RawMessage) (interface{}, error) {
	var a channelStatsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.source(a.Source)
	if err != nil {
		return nil, err
	}
	return imaging.ChannelStats(img), nil
}

// source picks the displayed image (default) or the original.
func (s *Server) source(name string) (*image.NRGBA, error) {
	img, err := s.session.Display()
	if err != nil {
		return nil, err
	}
	switch name {
	case "", "display":
		return img, nil
	case "original":
		return s.session.State().Original(), nil
	default:
		return nil, fmt.Errorf("unknown source %q: want display or original", name)
	}
}
