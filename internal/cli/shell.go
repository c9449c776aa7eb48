package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

const shellBanner = `Inventory shell. Type "help" for commands, "exit" to quit.
Changes stay in memory until you run "save".
`

func newShellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunShell(app)
		},
	}
}

// RunShell reads commands with line editing and history until EOF or exit.
func RunShell(app *App) error {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".inventoryctl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "\033[1;36minventory>\033[0m ",
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            app.Out,
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	return runLines(app, rl.Readline)
}

// runLines drives the session from next until it returns io.EOF.
func runLines(app *App, next func() (string, error)) error {
	app.interactive = true
	defer func() { app.interactive = false }()

	app.printf("%s", shellBanner)
	for {
		line, err := next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		args, err := splitArgs(line)
		if err != nil {
			app.printf("%s\n", Describe(err))
			continue
		}

		root := NewRootCmd(app)
		root.SetArgs(args)
		root.SetOut(app.Out)
		root.SetErr(app.Out)
		if err := root.Execute(); err != nil {
			app.printf("%s\n", Describe(err))
		}
	}
}

// splitArgs splits a line on whitespace, keeping double-quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
