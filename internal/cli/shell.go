package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewShellCommand creates the interactive shell command. Each line is
// tokenized with shlex and dispatched to a fresh root command, so the
// shell accepts exactly the same syntax as the one-shot CLI.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell over the paramcheck commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveShell(prompt, rootOpts.Verbose, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "paramcheck> ", "shell prompt string")
	return cmd
}

func runInteractiveShell(prompt string, verbose bool, w io.Writer) error {
	historyFile := filepath.Join(os.TempDir(), "paramcheck-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sessionVerbose := verbose
	fmt.Fprintln(w, "Interactive shell. 'help' for usage, 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Fprintln(w)
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(w)
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return nil
		case "help":
			printShellHelp(w)
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(w, "Parse error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == "log" {
			if err := handleShellLog(tokens[1:], &sessionVerbose, w); err != nil {
				fmt.Fprintf(w, "log: %v\n", err)
			}
			continue
		}
		if tokens[0] == "shell" {
			fmt.Fprintln(w, "Already inside the shell. Run another command or 'exit'.")
			continue
		}

		if sessionVerbose {
			tokens = append([]string{"--verbose"}, tokens...)
		}
		if err := executeArgs(tokens, w); err != nil {
			fmt.Fprintf(w, "command error: %v\n", err)
		}
	}
}

// executeArgs dispatches a tokenized line to a fresh root command.
func executeArgs(args []string, w io.Writer) error {
	if len(args) == 0 {
		return nil
	}
	root := NewRootCommand()
	root.SetOut(w)
	root.SetErr(w)
	root.SetArgs(args)
	return root.Execute()
}

// handleShellLog adjusts or shows the session's verbosity.
func handleShellLog(args []string, sessionVerbose *bool, w io.Writer) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var on, off bool
	fs.BoolVar(&on, "on", false, "enable verbose output for this session")
	fs.BoolVar(&off, "off", false, "disable verbose output for this session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case on && off:
		return fmt.Errorf("--on and --off are mutually exclusive")
	case on:
		*sessionVerbose = true
	case off:
		*sessionVerbose = false
	}
	fmt.Fprintf(w, "verbose: %t\n", *sessionVerbose)
	return nil
}

func printShellHelp(w io.Writer) {
	fmt.Fprintln(w, `Examples:
  check ./catalog.cue              # sweep every catalog instance
  check ./catalog.cue --record runs.db
  test ./scenarios                 # run YAML scenarios
  list ./catalog.cue               # enumerate instances
  history runs.db                  # list recorded runs
  history runs.db --run 3          # show one run's checks
  log --on / --off                 # session verbosity (bare log shows it)
  exit / quit                      # leave the shell`)
}
