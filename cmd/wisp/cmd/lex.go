package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jvcmarcenes/wisp/internal/lexer"
	"github.com/jvcmarcenes/wisp/internal/token"
)

var showPos bool

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Wisp file or expression",
	Long: `Tokenize (lex) a Wisp program and print the resulting tokens.

This command is useful for debugging the lexer and understanding how
Wisp source code is tokenized.

Examples:
  # Tokenize a script file
  wisp lex script.wsp

  # Tokenize an inline expression
  wisp lex -e "let x = 42"

  # Show token positions
  wisp lex --show-pos script.wsp`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
}

func lexScript(_ *cobra.Command, args []string) error {
	input, filename := readInput(args)

	lx := lexer.New(input, filename)
	tokens, lexErrs := lx.ScanTokens()

	for _, d := range lx.Directives() {
		fmt.Printf("[directive: %s]\n", d)
	}
	for _, tok := range tokens {
		printToken(tok, "")
	}

	if lexErrs != nil {
		reportDiagnostics(lexErrs)
		os.Exit(1)
	}
	return nil
}

func printToken(tok token.Token, indent string) {
	output := indent
	switch tok.Type {
	case token.EOF:
		output += "EOF"
	case token.EOL:
		output += "EOL"
	case token.TEMPLATE:
		output += "TEMPLATE"
	case token.STRING, token.NUMBER, token.IDENT:
		output += fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	default:
		output += fmt.Sprintf("%q", tok.Type.String())
	}
	if showPos {
		output += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Col)
	}
	fmt.Println(output)

	if tok.Type == token.TEMPLATE {
		for _, part := range tok.Parts {
			if part.Expr == nil {
				fmt.Printf("%s  chunk %q\n", indent, part.Literal)
				continue
			}
			fmt.Printf("%s  interpolation:\n", indent)
			for _, sub := range part.Expr {
				printToken(sub, indent+"    ")
			}
		}
	}
}

func readInput(args []string) (input, filename string) {
	if evalExpr != "" {
		return evalExpr, "<eval>"
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			exitWithError("failed to read file %s: %v", args[0], err)
		}
		return string(content), args[0]
	}
	exitWithError("either provide a file path or use -e flag for inline code")
	return "", ""
}
