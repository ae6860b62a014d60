package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/cmd/heapexplorer/logger"
)

func main() {
	args := os.Args[1:]
	debugMode := false
	pageSize := os.Getpagesize()

	filteredArgs := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "--debug" || arg == "-d":
			debugMode = true
		case strings.HasPrefix(arg, "--page-size="):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "--page-size="))
			if err != nil || n <= 0 {
				fmt.Fprintf(os.Stderr, "Error: invalid page size %q\n", arg)
				os.Exit(1)
			}
			pageSize = n
		default:
			filteredArgs = append(filteredArgs, arg)
		}
	}

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch filteredArgs[0] {
	case "--help", "-h":
		printHelp()
		os.Exit(0)
	case "--version", "-v":
		fmt.Printf("heapexplorer %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		os.Exit(0)
	}

	heapPath := filteredArgs[0]

	// Must run before any logging calls
	if err := logger.Init(logger.Options{
		Enabled:  debugMode,
		Level:    slog.LevelDebug,
		HeapPath: heapPath,
		PageSize: pageSize,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	}
	logger.Info("starting heapexplorer")

	if _, err := os.Stat(heapPath); err != nil {
		logger.Error("heap file not found", "error", err)
		fmt.Fprintf(os.Stderr, "Error: heap file not found: %s\n", heapPath)
		os.Exit(1)
	}

	p := tea.NewProgram(
		NewModel(heapPath, pageSize),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	if model, ok := finalModel.(Model); ok {
		if err := model.Close(); err != nil {
			logger.Warn("error closing resources", "error", err)
		}
	}

	logger.Info("heapexplorer exited normally")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: heapexplorer [options] <heap-file>\n")
	fmt.Fprintf(os.Stderr, "Try 'heapexplorer --help' for more information.\n")
}

func printHelp() {
	fmt.Println("heapexplorer - Interactive TUI for heap files")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  heapexplorer [options] <heap-file>")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Browses the chunks of a file-backed heap: state, size, tags and a hex")
	fmt.Println("  dump of each payload. The file is copied under a shared lock, so it")
	fmt.Println("  cannot be opened while a process is writing to it.")
	fmt.Println()
	fmt.Println("  Navigation:")
	fmt.Println("    ↑/k, ↓/j    Move between chunks")
	fmt.Println("    Enter       Show the selected chunk's payload")
	fmt.Println("    f           Show free chunks only")
	fmt.Println("    c           Copy the payload offset to the clipboard")
	fmt.Println("    r           Reload the file")
	fmt.Println("    ?           Show help")
	fmt.Println("    q           Quit")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  --page-size=N  Page size the heap was grown with (default: OS page size)")
	fmt.Println("  -d, --debug    Enable debug logging to ~/.heapexplorer/logs/")
	fmt.Println("  -h, --help     Show this help message")
	fmt.Println("  -v, --version  Show version information")
	fmt.Println()
	fmt.Println("For non-interactive inspection, use 'heapctl inspect' instead.")
}
