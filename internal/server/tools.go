package server

import (
	"github.com/ironsheep/image-editor-mcp/internal/editor"
	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// noArgs is the schema of a tool that takes no parameters.
func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func sourceProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"display", "original"},
		"default":     "display",
		"description": "Which image to read: the edited display image or the original as loaded",
	}
}

func filterNames() []string {
	names := make([]string, 0, len(imaging.Filters))
	for _, f := range imaging.Filters {
		names = append(names, f.String())
	}
	return names
}

func effectNames() []string {
	names := make([]string, 0, len(editor.Enhancements))
	for _, f := range editor.Enhancements {
		names = append(names, f.String())
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "editor_open",
			Description: "Open an image for editing. Replaces the current image and resets every control, including transparency. Relative paths resolve against the folder of the last opened image. On failure the current image is kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to a PNG, JPEG, GIF, BMP, TIFF, WebP or QOI file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "editor_state",
			Description: "Report the editing session: loaded image, control positions, which edit families are pending in the cache, matted pixel count and remembered folders.",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_clear",
			Description: "Unload the current image. Remembered folders are kept.",
			InputSchema: noArgs(),
		},

		// Edits
		{
			Name:        "editor_channel_offset",
			Description: "Set the offset slider of one colour channel. The channel becomes original + value, clamped to 0..255. Changing a channel resets the enhancement sliders to neutral and turns off any filter.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"channel": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"red", "green", "blue"},
						"description": "Colour channel to offset",
					},
					"value": map[string]interface{}{
						"type":        "integer",
						"minimum":     editor.OffsetMin,
						"maximum":     editor.OffsetMax,
						"description": "Offset added to every pixel of the channel",
					},
				},
				"required": []string{"channel", "value"},
			},
		},
		{
			Name:        "editor_enhance",
			Description: "Apply a global enhancement at the given factor (1.0 is neutral). Switching to a different enhancement keeps the previous one baked in and resets its slider. Turns off any active filter.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"effect": map[string]interface{}{
						"type":        "string",
						"enum":        effectNames(),
						"description": "Enhancement to apply",
					},
					"factor": map[string]interface{}{
						"type":        "number",
						"minimum":     editor.FactorMin,
						"maximum":     editor.FactorMax,
						"default":     editor.FactorNeutral,
						"description": "Enhancement factor: 0 is fully degenerate, 1 is unchanged, above 1 extrapolates",
					},
				},
				"required": []string{"effect"},
			},
		},
		{
			Name:        "editor_reset_effect",
			Description: "Return one enhancement slider to neutral (1.0).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"effect": map[string]interface{}{
						"type":        "string",
						"enum":        effectNames(),
						"description": "Enhancement to reset",
					},
				},
				"required": []string{"effect"},
			},
		},
		{
			Name:        "editor_reset_colors",
			Description: "Return the red, green and blue sliders to zero and turn off any filter.",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_filter",
			Description: "Turn a convolution filter on or off. Only one filter is active at a time; enabling a second one replaces the first. Turning a filter off restores the image as it was before the filter.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filter": map[string]interface{}{
						"type":        "string",
						"enum":        filterNames(),
						"description": "Filter to toggle",
					},
					"enabled": map[string]interface{}{
						"type":        "boolean",
						"default":     true,
						"description": "True to apply the filter, false to remove it",
					},
				},
				"required": []string{"filter"},
			},
		},
		{
			Name:        "editor_transparency",
			Description: "Make pure white pixels fully transparent, or restore their alpha. Colour values are untouched.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"enabled": map[string]interface{}{
						"type":        "boolean",
						"default":     true,
						"description": "True to matte white pixels, false to restore them",
					},
				},
			},
		},
		{
			Name:        "editor_reset_image",
			Description: "Discard every edit and return all controls to neutral.",
			InputSchema: noArgs(),
		},

		// Output
		{
			Name:        "editor_save",
			Description: "Write the edited image to the path chosen by the last editor_save_as. Fails if no save path has been chosen yet.",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_save_as",
			Description: "Write the edited image to a new path and remember it for editor_save. The format follows the extension; JPEG and TIFF output is flattened to RGB. Relative paths resolve against the last save folder.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Destination file (.png, .jpg, .jpeg, .gif, .bmp, .tif, .tiff)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "editor_preview",
			Description: "Return the edited image, or a region of it, as a base64-encoded PNG scaled to fit the given bounds. Use a named region or explicit coordinates to zoom in.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": sourceProperty(),
					"max_width": map[string]interface{}{
						"type":        "integer",
						"default":     512,
						"description": "Maximum preview width in pixels",
					},
					"max_height": map[string]interface{}{
						"type":        "integer",
						"default":     512,
						"description": "Maximum preview height in pixels",
					},
					"region": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"full", "top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
						"default":     "full",
						"description": "Named region to preview",
					},
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based); overrides region",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
				},
			},
		},

		// Inspection
		{
			Name:        "editor_sample_color",
			Description: "Get the colour of a pixel as RGBA, hex and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": sourceProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "editor_channel_stats",
			Description: "Per-channel minimum, maximum and mean of the red, green, blue and alpha planes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": sourceProperty(),
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
