package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jvcmarcenes/wisp/internal/errors"
	"github.com/jvcmarcenes/wisp/internal/interp"
	"github.com/jvcmarcenes/wisp/internal/lexer"
	"github.com/jvcmarcenes/wisp/internal/optimizer"
	"github.com/jvcmarcenes/wisp/internal/parser"
	"github.com/jvcmarcenes/wisp/internal/resolver"
)

var (
	evalExpr string
	trace    bool
	noColor  bool
)

var runCmd = &cobra.Command{
	Use:   "run [file] [args...]",
	Short: "Run a Wisp file or expression",
	Long: `Execute a Wisp program from a file or inline expression.

Arguments after the file path are forwarded to the program's main
function as a list of strings (module mode only). With no file and no
-e flag, an interactive session starts.

Examples:
  # Run a script file
  wisp run script.wsp

  # Evaluate an inline expression
  wisp run -e "writeline(1 + 2)"

  # Run with execution trace
  wisp run --trace script.wsp`,
	Args: cobra.ArbitraryArgs,
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace execution (for debugging)")
	runCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
}

func runScript(_ *cobra.Command, args []string) error {
	var input string
	var filename string
	var programArgs []string

	switch {
	case evalExpr != "":
		input = evalExpr
		filename = "<eval>"
		programArgs = args
	case len(args) >= 1:
		filename = args[0]
		programArgs = args[1:]
		content, err := os.ReadFile(filename)
		if err != nil {
			exitWithError("failed to read file %s: %v", filename, err)
		}
		input = string(content)
	default:
		return repl()
	}

	rootPath := filepath.Dir(filename)
	if filename == "<eval>" {
		rootPath = "."
	}

	code, err := runPipeline(input, filename, rootPath, programArgs)
	if err != nil {
		reportDiagnostics(err)
		os.Exit(1)
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// runPipeline drives a source text through the full pipeline: scan,
// parse, resolve, fold, interpret. Each stage's accumulated errors abort
// before the next stage runs.
func runPipeline(input, filename, rootPath string, programArgs []string) (int, error) {
	lx := lexer.New(input, filename)
	tokens, lexErrs := lx.ScanTokens()
	if lexErrs != nil {
		return 1, lexErrs
	}

	if trace {
		mode := "module"
		for _, d := range lx.Directives() {
			if d == "script" {
				mode = "script"
			}
		}
		fmt.Fprintf(os.Stderr, "[mode: %s]\n", mode)
	}

	mod, parseErrs := parser.New(tokens, input, filename).ParseModule()
	if parseErrs != nil {
		return 1, parseErrs
	}

	if resolveErrs := resolver.New(input, filename).ResolveModule(mod); resolveErrs != nil {
		return 1, resolveErrs
	}

	optimizer.Optimize(mod)

	i := interp.New(input, filename, rootPath)
	i.Trace = trace
	return i.Run(mod, programArgs)
}

func reportDiagnostics(err error) {
	if list, ok := err.(*errors.List); ok {
		fmt.Fprintln(os.Stderr, list.Format(!noColor))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// repl runs an interactive session: each line goes through the same
// pipeline against a persistent resolver and interpreter, so bindings
// from earlier lines stay visible.
func repl() error {
	fmt.Printf("wisp %s — interactive session (ctrl-d to quit)\n", Version)

	res := resolver.New("", "<repl>")
	i := interp.New("", "<repl>", ".")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		lx := lexer.New(line, "<repl>")
		tokens, lexErrs := lx.ScanTokens()
		if lexErrs != nil {
			reportDiagnostics(lexErrs)
			continue
		}

		mod, parseErrs := parser.New(tokens, line, "<repl>").ParseModule()
		if parseErrs != nil {
			reportDiagnostics(parseErrs)
			continue
		}

		if resolveErrs := res.ResolveInteractive(mod, line); resolveErrs != nil {
			reportDiagnostics(resolveErrs)
			continue
		}

		optimizer.Optimize(mod)

		i.SetSource(line)
		if err := i.RunInteractive(mod); err != nil {
			if code, halted := interp.IsHalt(err); halted {
				os.Exit(code)
			}
			reportDiagnostics(err)
		}
	}
}
