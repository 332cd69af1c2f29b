package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/ironsheep/image-editor-mcp/internal/editor"
	"github.com/ironsheep/image-editor-mcp/internal/imaging"
	"github.com/ironsheep/image-editor-mcp/internal/server"
	"github.com/ironsheep/image-editor-mcp/internal/tui"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-editor-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "tui":
			if err := runTUI(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "image-editor-mcp: %v\n", err)
				os.Exit(1)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "image-editor-mcp: unknown argument %q (see --help)\n", os.Args[1])
			os.Exit(2)
		}
	}

	// Log to stderr; stdout is for MCP protocol
	logger := newLogger(os.Stderr, os.Getenv("IMAGE_EDITOR_LOG_LEVEL"))
	editor.SetLogger(logger)
	logger.Info("image editor MCP server starting",
		"version", Version,
		"built", BuildTime,
		"commit", GitCommit)

	srv := server.New(newSession(), Version)
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("image-editor-mcp - MCP server and terminal editor for image adjustments")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  image-editor-mcp              Serve MCP over stdin/stdout")
	fmt.Println("  image-editor-mcp tui [path]   Edit an image in the terminal")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  IMAGE_EDITOR_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  IMAGE_EDITOR_LOG_FILE=<path>    Log file for tui mode (default: none)")
	fmt.Printf("  IMAGE_EDITOR_JPEG_QUALITY=<n>   JPEG save quality 1-100 (default: %d)\n", imaging.DefaultJPEGQuality)
	fmt.Println()
	fmt.Println("In MCP mode configure it in your MCP client (e.g., Claude Desktop).")
}

func runTUI(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("tui takes at most one image path")
	}

	// The terminal belongs to the UI, so logs only go to a file.
	var out io.Writer = io.Discard
	if path := os.Getenv("IMAGE_EDITOR_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	editor.SetLogger(newLogger(out, os.Getenv("IMAGE_EDITOR_LOG_LEVEL")))

	session := newSession()
	if len(args) == 1 {
		if err := session.Open(args[0]); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	return tui.New(screen, session).Run()
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelInfo
	if level == "debug" {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func newSession() *editor.Session {
	opts := editor.Options{
		JPEGQuality: jpegQuality(os.Getenv("IMAGE_EDITOR_JPEG_QUALITY")),
	}
	if home, err := os.UserHomeDir(); err == nil {
		opts.DefaultDir = home
	}
	return editor.NewSession(opts)
}

// jpegQuality parses the quality setting, falling back to the default for
// empty or out-of-range values.
func jpegQuality(s string) int {
	q, err := strconv.Atoi(s)
	if err != nil || q < 1 || q > 100 {
		return imaging.DefaultJPEGQuality
	}
	return q
}
