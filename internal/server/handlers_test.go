package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image-editor-mcp/internal/editor"
	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// createTestImageFile writes a solid-colour PNG into a temp dir and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// resultText extracts the text content of a successful tool response.
func resultText(t *testing.T, resp *MCPResponse) string {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	return text
}

func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(resultText(t, resp)), v); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
}

func mustSucceed(t *testing.T, s *Server, name string, args interface{}) editor.Status {
	t.Helper()
	var st editor.Status
	decodeResult(t, callTool(t, s, name, args), &st)
	return st
}

func mustFail(t *testing.T, s *Server, name string, args interface{}) *MCPError {
	t.Helper()
	resp := callTool(t, s, name, args)
	if resp.Error == nil {
		t.Fatalf("%s: expected error, got result %v", name, resp.Result)
	}
	return resp.Error
}

func openedServer(t *testing.T, c color.Color) (*Server, string) {
	t.Helper()
	s := newTestServer(t)
	path := createTestImageFile(t, 8, 6, c)
	mustSucceed(t, s, "editor_open", map[string]interface{}{"path": path})
	return s, path
}

func sample(t *testing.T, s *Server, source string, x, y int) imaging.RGBAColor {
	t.Helper()
	var res imaging.ColorResult
	decodeResult(t, callTool(t, s, "editor_sample_color",
		map[string]interface{}{"x": x, "y": y, "source": source}), &res)
	return res.RGBA
}

func TestHandleToolsCall_Open(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 100, 80, color.NRGBA{255, 0, 0, 255})

	st := mustSucceed(t, s, "editor_open", map[string]interface{}{"path": path})

	if !st.Loaded {
		t.Fatal("status should report a loaded image")
	}
	if st.Path != path {
		t.Errorf("path: got %s, want %s", st.Path, path)
	}
	if st.Image == nil || st.Image.Width != 100 || st.Image.Height != 80 {
		t.Errorf("image info: got %+v", st.Image)
	}
	if st.OpenDir != filepath.Dir(path) {
		t.Errorf("open dir: got %s", st.OpenDir)
	}
	if st.Controls.Filter != "none" || st.Controls.Contrast != 1 {
		t.Errorf("controls not neutral: %+v", st.Controls)
	}
}

func TestHandleToolsCall_OpenNonExistentKeepsImage(t *testing.T) {
	s, path := openedServer(t, color.NRGBA{10, 20, 30, 255})

	e := mustFail(t, s, "editor_open", map[string]interface{}{"path": "/nonexistent/image.png"})
	if e.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", e.Code)
	}

	st := mustSucceed(t, s, "editor_state", nil)
	if !st.Loaded || st.Path != path {
		t.Errorf("failed open replaced the image: %+v", st)
	}
}

func TestHandleToolsCall_MissingArguments(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		tool string
		args interface{}
	}{
		{"editor_open", map[string]interface{}{}},
		{"editor_open", nil},
		{"editor_save_as", map[string]interface{}{}},
		{"editor_channel_offset", map[string]interface{}{"value": 4}},
		{"editor_enhance", map[string]interface{}{"factor": 2}},
		{"editor_filter", map[string]interface{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			if e := mustFail(t, s, tt.tool, tt.args); e.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", e.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)

	e := mustFail(t, s, "nonexistent_tool", map[string]interface{}{})
	if !strings.Contains(e.Data.(string), "unknown tool") {
		t.Errorf("Error data: got %v", e.Data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`"not an object"`),
	})

	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_ChannelOffset(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{100, 100, 100, 255})

	st := mustSucceed(t, s, "editor_channel_offset", map[string]interface{}{"channel": "red", "value": 200})
	if st.Controls.Red != 200 {
		t.Errorf("red slider: got %d, want 200", st.Controls.Red)
	}
	if got := sample(t, s, "display", 0, 0); got.R != 255 || got.G != 100 {
		t.Errorf("display pixel: got %+v, want R clamped to 255", got)
	}
	if got := sample(t, s, "original", 0, 0); got.R != 100 {
		t.Errorf("original pixel changed: %+v", got)
	}

	// Offsets are absolute against the original, not cumulative.
	mustSucceed(t, s, "editor_channel_offset", map[string]interface{}{"channel": "r", "value": -50})
	if got := sample(t, s, "display", 0, 0); got.R != 50 {
		t.Errorf("display red: got %d, want 50", got.R)
	}
}

func TestHandleToolsCall_ChannelOffsetRejected(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{100, 100, 100, 255})

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"alpha channel", map[string]interface{}{"channel": "alpha", "value": 10}},
		{"unknown channel", map[string]interface{}{"channel": "cyan", "value": 10}},
		{"above range", map[string]interface{}{"channel": "red", "value": 256}},
		{"below range", map[string]interface{}{"channel": "blue", "value": -256}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, s, "editor_channel_offset", tt.args)
		})
	}
}

func TestHandleToolsCall_EnhanceSwitchResetsSibling(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{100, 150, 200, 255})

	st := mustSucceed(t, s, "editor_enhance", map[string]interface{}{"effect": "contrast", "factor": 2.0})
	if st.Controls.Contrast != 2 {
		t.Errorf("contrast slider: got %v, want 2", st.Controls.Contrast)
	}
	if len(st.Dirty) != 1 || st.Dirty[0] != "contrast" {
		t.Errorf("dirty: got %v, want [contrast]", st.Dirty)
	}

	st = mustSucceed(t, s, "editor_enhance", map[string]interface{}{"effect": "brightness", "factor": 1.5})
	if st.Controls.Contrast != 1 {
		t.Errorf("contrast slider should snap to neutral, got %v", st.Controls.Contrast)
	}
	if st.Controls.Brightness != 1.5 {
		t.Errorf("brightness slider: got %v, want 1.5", st.Controls.Brightness)
	}
	if len(st.Dirty) != 1 || st.Dirty[0] != "brightness" {
		t.Errorf("dirty: got %v, want [brightness]", st.Dirty)
	}
}

func TestHandleToolsCall_EnhanceRejected(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{100, 150, 200, 255})

	mustFail(t, s, "editor_enhance", map[string]interface{}{"effect": "contrast", "factor": 3.5})
	mustFail(t, s, "editor_enhance", map[string]interface{}{"effect": "contrast", "factor": -0.1})
	mustFail(t, s, "editor_enhance", map[string]interface{}{"effect": "filter", "factor": 1.2})
	mustFail(t, s, "editor_enhance", map[string]interface{}{"effect": "glow"})
}

func TestHandleToolsCall_ResetEffect(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{100, 150, 200, 255})

	mustSucceed(t, s, "editor_enhance", map[string]interface{}{"effect": "color_balance", "factor": 0.0})
	if got := sample(t, s, "display", 0, 0); got.R != got.G || got.G != got.B {
		t.Fatalf("factor 0 colour balance should be gray, got %+v", got)
	}

	st := mustSucceed(t, s, "editor_reset_effect", map[string]interface{}{"effect": "color"})
	if st.Controls.ColorBalance != 1 {
		t.Errorf("color balance slider: got %v, want 1", st.Controls.ColorBalance)
	}
	if got := sample(t, s, "display", 0, 0); got.R != 100 || got.G != 150 || got.B != 200 {
		t.Errorf("reset did not restore the baseline: %+v", got)
	}
}

func TestHandleToolsCall_Filter(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{100, 150, 200, 255})

	st := mustSucceed(t, s, "editor_filter", map[string]interface{}{"filter": "find_edges"})
	if st.Controls.Filter != "find_edges" {
		t.Errorf("filter: got %s, want find_edges", st.Controls.Filter)
	}
	// A flat image has no edges.
	if got := sample(t, s, "display", 4, 3); got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("find_edges on flat image: got %+v, want black", got)
	}

	st = mustSucceed(t, s, "editor_filter", map[string]interface{}{"filter": "find_edges", "enabled": false})
	if st.Controls.Filter != "none" {
		t.Errorf("filter: got %s, want none", st.Controls.Filter)
	}
	if got := sample(t, s, "display", 4, 3); got.R != 100 || got.G != 150 || got.B != 200 {
		t.Errorf("disabling the filter did not restore the image: %+v", got)
	}

	mustFail(t, s, "editor_filter", map[string]interface{}{"filter": "posterize"})
}

func TestHandleToolsCall_Transparency(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{255, 255, 255, 255})

	st := mustSucceed(t, s, "editor_transparency", nil)
	if !st.Controls.Transparent {
		t.Error("transparency toggle should be on")
	}
	if st.MattedPixels != 48 {
		t.Errorf("matted pixels: got %d, want 48", st.MattedPixels)
	}
	if got := sample(t, s, "display", 0, 0); got.A != 0 || got.R != 255 {
		t.Errorf("white pixel: got %+v, want alpha 0 with colour kept", got)
	}

	st = mustSucceed(t, s, "editor_transparency", map[string]interface{}{"enabled": false})
	if st.Controls.Transparent || st.MattedPixels != 0 {
		t.Errorf("transparency not cleared: %+v", st.Controls)
	}
	if got := sample(t, s, "display", 0, 0); got.A != 255 {
		t.Errorf("alpha not restored: %+v", got)
	}
}

func TestHandleToolsCall_ResetColors(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{100, 100, 100, 255})

	mustSucceed(t, s, "editor_channel_offset", map[string]interface{}{"channel": "green", "value": 40})
	mustSucceed(t, s, "editor_filter", map[string]interface{}{"filter": "blur"})

	st := mustSucceed(t, s, "editor_reset_colors", nil)
	if st.Controls.Green != 0 || st.Controls.Filter != "none" {
		t.Errorf("controls after reset: %+v", st.Controls)
	}
	if got := sample(t, s, "display", 0, 0); got.G != 100 {
		t.Errorf("green after reset: got %d, want 100", got.G)
	}
}

func TestHandleToolsCall_ResetImageAndClear(t *testing.T) {
	s, path := openedServer(t, color.NRGBA{100, 100, 100, 255})

	mustSucceed(t, s, "editor_channel_offset", map[string]interface{}{"channel": "blue", "value": 10})
	mustSucceed(t, s, "editor_enhance", map[string]interface{}{"effect": "sharpness", "factor": 2.0})

	st := mustSucceed(t, s, "editor_reset_image", nil)
	if st.Controls.Blue != 0 || st.Controls.Sharpness != 1 || len(st.Dirty) != 0 {
		t.Errorf("reset image left state behind: %+v", st)
	}
	if got := sample(t, s, "display", 0, 0); got.B != 100 {
		t.Errorf("blue after reset: got %d, want 100", got.B)
	}

	st = mustSucceed(t, s, "editor_clear", nil)
	if st.Loaded || st.Path != "" {
		t.Errorf("clear left an image: %+v", st)
	}
	if st.OpenDir != filepath.Dir(path) {
		t.Errorf("clear forgot the open folder: %s", st.OpenDir)
	}

	e := mustFail(t, s, "editor_preview", nil)
	if !strings.Contains(e.Data.(string), editor.ErrNoImage.Error()) {
		t.Errorf("preview without image: got %v", e.Data)
	}
}

func TestHandleToolsCall_SaveRequiresTarget(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{1, 2, 3, 255})

	e := mustFail(t, s, "editor_save", nil)
	if !strings.Contains(e.Data.(string), "editor_save_as") {
		t.Errorf("save error should point at editor_save_as: %v", e.Data)
	}
}

func TestHandleToolsCall_SaveAsThenSave(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{100, 100, 100, 255})
	mustSucceed(t, s, "editor_channel_offset", map[string]interface{}{"channel": "red", "value": 20})

	out := filepath.Join(t.TempDir(), "edited.png")
	var res saveResult
	decodeResult(t, callTool(t, s, "editor_save_as", map[string]interface{}{"path": out}), &res)
	if res.Path != out || res.Status.SaveTarget != out {
		t.Errorf("save as: got %+v", res)
	}

	img, _, err := imaging.Load(out)
	if err != nil {
		t.Fatalf("saved file does not load: %v", err)
	}
	if got := img.NRGBAAt(0, 0); got.R != 120 {
		t.Errorf("saved red: got %d, want 120", got.R)
	}

	// A later save goes to the same target.
	mustSucceed(t, s, "editor_channel_offset", map[string]interface{}{"channel": "red", "value": 0})
	decodeResult(t, callTool(t, s, "editor_save", nil), &res)
	if res.Path != out {
		t.Errorf("save path: got %s, want %s", res.Path, out)
	}
	img, _, err = imaging.Load(out)
	if err != nil {
		t.Fatalf("saved file does not load: %v", err)
	}
	if got := img.NRGBAAt(0, 0); got.R != 100 {
		t.Errorf("re-saved red: got %d, want 100", got.R)
	}

	mustFail(t, s, "editor_save_as", map[string]interface{}{"path": filepath.Join(t.TempDir(), "out.xyz")})
}

func decodePreview(t *testing.T, resp *MCPResponse) (*imaging.PreviewResult, image.Image) {
	t.Helper()
	var res imaging.PreviewResult
	decodeResult(t, resp, &res)
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	return &res, img
}

func TestHandleToolsCall_Preview(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{10, 20, 30, 255})

	res, img := decodePreview(t, callTool(t, s, "editor_preview", nil))
	if res.MimeType != "image/png" {
		t.Errorf("mime type: got %s", res.MimeType)
	}
	if res.Width != 8 || res.Height != 6 || img.Bounds().Dx() != 8 {
		t.Errorf("full preview: got %dx%d, want 8x6 unscaled", res.Width, res.Height)
	}

	res, _ = decodePreview(t, callTool(t, s, "editor_preview", map[string]interface{}{"region": "top-left"}))
	if res.Width != 4 || res.Height != 3 {
		t.Errorf("top-left preview: got %dx%d, want 4x3", res.Width, res.Height)
	}

	res, _ = decodePreview(t, callTool(t, s, "editor_preview",
		map[string]interface{}{"x1": 0, "y1": 0, "x2": 8, "y2": 6, "max_width": 4, "max_height": 4}))
	if res.Width != 4 || res.Height != 3 {
		t.Errorf("scaled preview: got %dx%d, want 4x3", res.Width, res.Height)
	}
}

func TestHandleToolsCall_PreviewRejected(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{10, 20, 30, 255})

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"partial coordinates", map[string]interface{}{"x1": 0, "y1": 0}},
		{"inverted region", map[string]interface{}{"x1": 5, "y1": 0, "x2": 2, "y2": 4}},
		{"outside bounds", map[string]interface{}{"x1": 0, "y1": 0, "x2": 20, "y2": 4}},
		{"unknown region", map[string]interface{}{"region": "middle"}},
		{"unknown source", map[string]interface{}{"source": "cache"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, s, "editor_preview", tt.args)
		})
	}
}

func TestHandleToolsCall_SampleColor(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{255, 0, 0, 255})

	var res imaging.ColorResult
	decodeResult(t, callTool(t, s, "editor_sample_color", map[string]interface{}{"x": 3, "y": 2}), &res)
	if res.Hex != "#FF0000" {
		t.Errorf("hex: got %s, want #FF0000", res.Hex)
	}
	if res.X != 3 || res.Y != 2 {
		t.Errorf("coordinates: got (%d,%d)", res.X, res.Y)
	}

	mustFail(t, s, "editor_sample_color", map[string]interface{}{"x": 8, "y": 0})
}

func TestHandleToolsCall_ChannelStats(t *testing.T) {
	s, _ := openedServer(t, color.NRGBA{10, 20, 30, 255})
	mustSucceed(t, s, "editor_channel_offset", map[string]interface{}{"channel": "green", "value": 5})

	var display, original imaging.ChannelStatsResult
	decodeResult(t, callTool(t, s, "editor_channel_stats", nil), &display)
	decodeResult(t, callTool(t, s, "editor_channel_stats", map[string]interface{}{"source": "original"}), &original)

	if display.Green.Min != 25 || display.Green.Max != 25 {
		t.Errorf("display green: got %+v, want 25", display.Green)
	}
	if original.Green.Mean != 20 {
		t.Errorf("original green mean: got %v, want 20", original.Green.Mean)
	}
	if display.Alpha.Min != 255 {
		t.Errorf("alpha: got %+v, want opaque", display.Alpha)
	}
}

// Edits without an image are ignored and report an unloaded session.
func TestHandleToolsCall_EditsWithoutImage(t *testing.T) {
	s := newTestServer(t)

	st := mustSucceed(t, s, "editor_channel_offset", map[string]interface{}{"channel": "red", "value": 10})
	if st.Loaded || st.Controls.Red != 0 {
		t.Errorf("edit without image changed state: %+v", st)
	}
	mustSucceed(t, s, "editor_transparency", nil)
	mustSucceed(t, s, "editor_reset_colors", nil)
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer(t)

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	_, err := s.executeTool("editor_open", json.RawMessage(`{invalid`))
	if err == nil {
		t.Error("executeTool should fail for invalid JSON")
	}
}

func TestDecodeArgs(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"empty", "", "", false},
		{"null", "null", "", false},
		{"whitespace", "  \n", "", false},
		{"object", `{"path":"a.png"}`, "a.png", false},
		{"wrong type", `{"path":5}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a openArgs
			err := decodeArgs(json.RawMessage(tt.in), &a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %t", err, tt.wantErr)
			}
			if a.Path != tt.want {
				t.Errorf("path: got %q, want %q", a.Path, tt.want)
			}
		})
	}
}
