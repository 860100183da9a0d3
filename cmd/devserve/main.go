package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Kush-Singh-26/devserve/internal/config"
	"github.com/Kush-Singh-26/devserve/internal/server"
	"github.com/Kush-Singh-26/devserve/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "serve":
		err := server.Run(ctx, args, stdout, stderr)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, config.ErrUsage):
			_, _ = fmt.Fprintf(stderr, "❌ %v\nRun 'devserve help' for usage.\n", err)
			return 2
		default:
			_, _ = fmt.Fprintf(stderr, "❌ %v\n", err)
			return 1
		}
	case "version":
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	case "help":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage: devserve [command] [flags]")
	_, _ = fmt.Fprintln(w, "\nCommands:")
	_, _ = fmt.Fprintln(w, "  serve          Serve the current directory (default)")
	_, _ = fmt.Fprintln(w, "  version        Print the version")
	_, _ = fmt.Fprintln(w, "  help           Show this help message")
	_, _ = fmt.Fprintln(w, "\nFlags for serve:")
	_, _ = fmt.Fprintf(w, "  -port <n>      Port to listen on (default %d)\n", config.DefaultPort)
	_, _ = fmt.Fprintf(w, "  -host <addr>   Interface to bind (default %s)\n", config.DefaultHost)
	_, _ = fmt.Fprintln(w, "  -root <dir>    Directory to serve (default: current directory)")
	_, _ = fmt.Fprintln(w, "  -gzip          Compress responses")
	_, _ = fmt.Fprintln(w, "  -watch         Print a notice when files change")
	_, _ = fmt.Fprintln(w, "  -quiet         Disable the request log")
	_, _ = fmt.Fprintln(w, "  -lang <en|fr>  Console language")
	_, _ = fmt.Fprintln(w, "  -config <file> YAML config (default: devserve.yaml if present)")
}
