// ogcard - Portrait share card renderer.
//
// Usage:
//
//	ogcard -o <file.png> [--text <text>] [--font <key>] [--image <url>] [--request <json>]
//	ogcard serve [--port 8080]
//	ogcard explain [--text <text>] [--font <key>] [--image <url>]
//	ogcard fonts
//	ogcard init
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xob0t/ogcard/clients/server"
	"github.com/xob0t/ogcard/pkg/card"
	"github.com/xob0t/ogcard/pkg/fetch"
	"github.com/xob0t/ogcard/pkg/fonts"
	"github.com/xob0t/ogcard/pkg/generator"
	"github.com/xob0t/ogcard/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		if err := runInit(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "explain":
		if err := runExplain(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "fonts":
		if err := runFonts(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "serve":
		if err := server.RunServe(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: render mode (all flags on root).
		if err := run(os.Args[1:]); err != nil {
			fatal(err)
		}
	}
}

// requestFlags registers the request-shaping flags shared by render and explain.
func requestFlags(fs *flag.FlagSet) (over *card.RenderRequest, requestPath *string) {
	over = &card.RenderRequest{}
	requestPath = new(string)
	fs.StringVar(&over.Text, "text", "", "Card text (default \""+card.DefaultText+"\")")
	fs.StringVar(&over.Font, "font", "", "Font key: noto-sans-thai or kanit")
	fs.StringVar(&over.Image, "image", "", "Background image URL (optional)")
	fs.StringVar(requestPath, "request", "", "Path to a request JSON file (flags override it)")
	return over, requestPath
}

func loadRequest(path string, over card.RenderRequest) (card.RenderRequest, error) {
	base := card.DefaultRequest()
	if path != "" {
		var err error
		base, err = card.ParseRequestFile(path)
		if err != nil {
			return card.RenderRequest{}, fmt.Errorf("load request: %w", err)
		}
	}
	return card.MergeRequest(base, over), nil
}

func run(args []string) error {
	fs := flag.NewFlagSet("ogcard", flag.ExitOnError)

	var (
		output       string
		fontDir      string
		fetchTimeout time.Duration
		debug        bool
	)
	over, requestPath := requestFlags(fs)
	fs.StringVar(&output, "o", "", "Output file path (.png)")
	fs.StringVar(&output, "output", "", "Output file path (.png)")
	fs.StringVar(&fontDir, "font-dir", os.Getenv(fonts.EnvDir), "Directory with font overrides")
	fs.DurationVar(&fetchTimeout, "fetch-timeout", 15*time.Second, "Timeout for the background download (0 = none)")
	fs.BoolVar(&debug, "debug", false, "Verbose logging")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	if output == "" {
		printUsage()
		return fmt.Errorf("output file is required (-o)")
	}

	req, err := loadRequest(*requestPath, *over)
	if err != nil {
		return err
	}
	for _, w := range card.ValidateRequest(req) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	log, err := logger.New(debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	r := card.NewRenderer(card.Options{
		Fetcher: fetch.New(fetchTimeout, log.Named("fetch")),
		Fonts:   fonts.NewRegistry(fontDir, log.Named("fonts")),
		Logger:  log.Named("card"),
	})

	fmt.Printf("Rendering: %s\n", output)
	c, err := r.Render(context.Background(), req)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := generator.Generate(output, c.Image); err != nil {
		return err
	}
	log.Debug("card written", zap.String("output", output), zap.Int("lines", len(c.Layout.Lines)))
	fmt.Printf("Done: %s (%gpt, %d lines)\n", output, c.Layout.Size, len(c.Layout.Lines))
	return nil
}

func runExplain(args []string) error {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	over, requestPath := requestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := loadRequest(*requestPath, *over)
	if err != nil {
		return err
	}
	fmt.Print(card.FormatRequest(req))
	for _, w := range card.ValidateRequest(req) {
		fmt.Printf("Warning:     %s\n", w)
	}
	return nil
}

func runFonts(args []string) error {
	fs := flag.NewFlagSet("fonts", flag.ExitOnError)
	var fontDir string
	fs.StringVar(&fontDir, "font-dir", os.Getenv(fonts.EnvDir), "Directory with font overrides")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return listFonts(os.Stdout, fonts.NewRegistry(fontDir, nil))
}

func listFonts(w io.Writer, reg *fonts.Registry) error {
	var standIns []string
	for _, name := range reg.Names() {
		f, err := reg.Load(name)
		if err != nil {
			return err
		}
		marker := ""
		if name == fonts.Default {
			marker = " (default)"
		}
		if reg.Embedded(name) {
			marker += " [embedded stand-in]"
			standIns = append(standIns, name)
		}
		fmt.Fprintf(w, "%-16s %s%s\n", name, fonts.Family(f), marker)
	}
	if len(standIns) > 0 {
		fmt.Fprintf(w, "\nWarning: %s use built-in Latin-only fonts; Thai text renders as boxes.\n", strings.Join(standIns, ", "))
		fmt.Fprintf(w, "Set --font-dir or %s to a directory with noto-sans-thai-bold.ttf and kanit-bold.ttf.\n", fonts.EnvDir)
	}
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var out string
	fs.StringVar(&out, "request", "request.json", "Output path for the sample request")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.WriteFile(out, []byte(card.GetExampleJSON()), 0644); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	fmt.Printf("Created: %s\n", out)
	fmt.Printf("Run: ogcard -o card.png --request %s\n", out)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`ogcard - Portrait Share Card Renderer (800x1200 PNG)

USAGE:
    ogcard -o <file.png> [options]
    ogcard explain [options]
    ogcard fonts [--font-dir <dir>]
    ogcard serve [--port 8080]
    ogcard init [--request request.json]

RENDER:
    -o, --output <path>    Output file (.png)
    --text <text>          Card text (default: "Hello World")
    --font <key>           noto-sans-thai (default) or kanit
    --image <url>          Background image; falls back to gradient on failure
    --request <path>       Request JSON; flags override its fields
    --font-dir <dir>       Font overrides (kanit-bold.ttf, noto-sans-thai-bold.ttf)
    --fetch-timeout <dur>  Background download timeout (default: 15s)
    --debug                Verbose logging

SERVER:
    ogcard serve [--port 8080] [--font-dir <dir>] [--fetch-timeout 15s] [--debug]

EXAMPLES:
    ogcard init
    ogcard -o card.png --request request.json
    ogcard -o card.png --text "Hello World" --font kanit
    ogcard -o card.png --text "Weekend trip" --image https://example.com/beach.jpg
    ogcard explain --text "How big will this be?"
`)
}
