// Package cmd implements the driftplay CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (play, version).
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/go-drift/player/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(args []string) error
}

var rootCmd = struct {
	Long        string
	Usage       string
	SubCommands []*Command
}{
	Long: `driftplay plays episodes in mpv with scrub previews, ambient colour,
stable voice and auto-advance, and remembers where you stopped.

Use "driftplay <command> --help" for more information about a command.`,
	Usage: "driftplay [--verbose] <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// verbose is set by the global --verbose flag.
var verbose bool

// Execute runs the CLI with the arguments in os.Args.
func Execute() error {
	return execute(os.Args[1:])
}

func execute(args []string) error {
	var filtered []string
	for _, arg := range args {
		switch arg {
		case "-h", "--help", "help":
			if len(filtered) == 0 {
				printHelp()
				return nil
			}
			filtered = append(filtered, arg)
		case "--version":
			if len(filtered) == 0 {
				printVersion()
				return nil
			}
			filtered = append(filtered, arg)
		case "-v", "--verbose":
			verbose = true
		default:
			filtered = append(filtered, arg)
		}
	}
	configureLogging()

	if len(filtered) == 0 {
		printHelp()
		return nil
	}

	name := filtered[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", name)
		printHelp()
		return fmt.Errorf("unknown command: %s", name)
	}

	cmdArgs := filtered[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

func logLevel() zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// configureLogging routes player errors to a zerolog logger on stderr.
func configureLogging() {
	logger := errors.NewLogger(logLevel())
	errors.SetHandler(&errors.LogHandler{Logger: &logger, Verbose: verbose})
}

func printHelp() {
	fmt.Println(rootCmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", rootCmd.Usage)
	fmt.Println()
	fmt.Println("Commands:")
	for _, sub := range rootCmd.SubCommands {
		fmt.Printf("  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -h, --help           Show help for a command")
	fmt.Println("  -v, --verbose        Log debug output and stack traces")
	fmt.Println("  --version            Show version information")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  driftplay play ep1.mp4 ep2.mp4     Play two files in order")
	fmt.Println("  driftplay play -config show.yaml   Play the episodes listed in a config")
}

func printCommandHelp(cmd *Command) {
	fmt.Println(cmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", cmd.Usage)
}
