package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: storypdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Render story JSON files to PDF")
	fmt.Fprintln(w, "  preview    Render a story to HTML without a browser")
	fmt.Fprintln(w, "  stats      Show output directory statistics")
	fmt.Fprintln(w, "  prune      Delete old artifacts")
	fmt.Fprintln(w, "  serve      Run the HTTP API")
	fmt.Fprintln(w, "  doctor     Check the browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'storypdf help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing and debug logs")
}

func printEngineFlags(w io.Writer) {
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "      --backend <s>         Rendering backend: rod, chromedp")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome/Chromium binary")
	fmt.Fprintln(w, "      --max-pages <n>       Concurrent browser pages (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Content load timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --sandbox             Enable the Chrome sandbox")
}

func printTemplateFlags(w io.Writer) {
	fmt.Fprintln(w, "Templates:")
	fmt.Fprintln(w, "      --templates <dir>     Template directory")
	fmt.Fprintln(w, "      --template <name>     Template name without .html")
	fmt.Fprintln(w, "      --stylesheet <name>   Stylesheet name without .css")
	fmt.Fprintln(w, "      --images <dir>        Base directory for relative image paths")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: storypdf generate <story.json>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render story JSON files to PDF. Use - to read a story from stdin.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel generations (0 = max pages)")
	fmt.Fprintln(w, "      --name <file>         Artifact file name (single input only)")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	printEngineFlags(w)
	fmt.Fprintln(w)
	printTemplateFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	if !isCommand(args[0]) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}

	w := env.Stdout
	switch args[0] {
	case "generate":
		printGenerateUsage(w)
	case "preview":
		fmt.Fprintln(w, "Usage: storypdf preview <story.json> [--out path] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Render a story to HTML. The default path is <output>/preview_<id>.html.")
		fmt.Fprintln(w)
		printCommonFlags(w)
		fmt.Fprintln(w)
		printTemplateFlags(w)
	case "stats":
		fmt.Fprintln(w, "Usage: storypdf stats [--json] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show the PDF count and sizes in the output directory.")
		fmt.Fprintln(w)
		printCommonFlags(w)
	case "prune":
		fmt.Fprintln(w, "Usage: storypdf prune [--max-age 24h] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Delete files in the output directory at least max-age old.")
		fmt.Fprintln(w, "The default is retention.maxAge from the config.")
		fmt.Fprintln(w)
		printCommonFlags(w)
	case "serve":
		fmt.Fprintln(w, "Usage: storypdf serve [--addr :8080] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run the HTTP API:")
		fmt.Fprintln(w, "  POST /v1/stories/pdf       Generate a PDF from a story document")
		fmt.Fprintln(w, "  POST /v1/stories/preview   Render a story to HTML")
		fmt.Fprintln(w, "  GET  /v1/artifacts/stats   Output directory statistics")
		fmt.Fprintln(w, "  POST /v1/artifacts/prune   Delete artifacts older than ?maxAge")
		fmt.Fprintln(w, "  GET  /healthz              Liveness and engine state")
		fmt.Fprintln(w, "  GET  /metrics              Prometheus metrics")
		fmt.Fprintln(w)
		printCommonFlags(w)
		fmt.Fprintln(w)
		printEngineFlags(w)
		fmt.Fprintln(w)
		printTemplateFlags(w)
	case "doctor":
		fmt.Fprintln(w, "Usage: storypdf doctor [--json]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check Chrome, the sandbox setting, templates and the output directory.")
	case "version":
		fmt.Fprintln(w, "Usage: storypdf version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	case "help":
		fmt.Fprintln(w, "Usage: storypdf help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
	}
	return ExitSuccess
}
