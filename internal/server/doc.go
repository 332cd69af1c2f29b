// Package server implements the MCP (Model Context Protocol) server for the
// image editor.
//
// The server exposes one editing session through JSON-RPC 2.0 tools so that
// Claude and other MCP clients can open an image, adjust it and save the
// result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session:
//   - editor_open: Load an image and reset every control
//   - editor_state: Report controls and cache state
//   - editor_clear: Unload the image
//
// Edits:
//   - editor_channel_offset: Move a red, green or blue slider
//   - editor_enhance: Apply color balance, contrast, brightness or sharpness
//   - editor_reset_effect: Return an enhancement slider to neutral
//   - editor_reset_colors: Zero the channel sliders and drop the filter
//   - editor_filter: Toggle one of the convolution filters
//   - editor_transparency: Matte pure white pixels to transparent
//   - editor_reset_image: Discard every edit
//
// Output:
//   - editor_save: Write to the remembered save path
//   - editor_save_as: Write to a new path
//   - editor_preview: Scaled PNG of the image or a region
//
// Inspection:
//   - editor_sample_color: Colour at one pixel
//   - editor_channel_stats: Per-channel min, max and mean
//
// Edit tools return the session status so clients can track slider
// positions the editor moved on their own, such as sibling enhancements
// snapping back to neutral.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A line that is not valid JSON gets a -32700 parse error with a null id.
//
// # Usage
//
//	session := editor.NewSession(editor.Options{})
//	srv := server.New(session, version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
