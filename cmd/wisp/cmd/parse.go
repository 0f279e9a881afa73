package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/lexer"
	"github.com/jvcmarcenes/wisp/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Wisp file and dump its syntax tree",
	Long: `Parse a Wisp program and print the resulting syntax tree.

This command is useful for debugging the parser and understanding how
Wisp source code is structured.

Examples:
  # Dump a script file's tree
  wisp parse script.wsp

  # Dump an inline expression's tree
  wisp parse -e "1 + 2 * 3"`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "parse inline code instead of reading from file")
}

func parseScript(_ *cobra.Command, args []string) error {
	input, filename := readInput(args)

	lx := lexer.New(input, filename)
	tokens, lexErrs := lx.ScanTokens()
	if lexErrs != nil {
		reportDiagnostics(lexErrs)
		os.Exit(1)
	}

	mod, parseErrs := parser.New(tokens, input, filename).ParseModule()

	for _, name := range mod.Names {
		fmt.Printf("decl %s:\n", name)
		printStmt(mod.Decls[name], 1)
	}
	if len(mod.Script) > 0 {
		fmt.Println("script:")
		for _, stmt := range mod.Script {
			printStmt(stmt, 1)
		}
	}

	if parseErrs != nil {
		reportDiagnostics(parseErrs)
		os.Exit(1)
	}
	return nil
}

func indentOf(depth int) string { return strings.Repeat("  ", depth) }

func printStmt(stmt ast.Statement, depth int) {
	in := indentOf(depth)
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		fmt.Printf("%sexpr\n", in)
		printExpr(s.Expr, depth+1)
	case *ast.Declaration:
		kind := "let"
		if s.Constant {
			kind = "let const"
		}
		fmt.Printf("%s%s %s\n", in, kind, s.Name.Name)
		printExpr(s.Expr, depth+1)
	case *ast.FuncDeclaration:
		fmt.Printf("%sfn %s\n", in, s.Name.Name)
		printExpr(s.Lambda, depth+1)
	case *ast.AttrDeclaration:
		fmt.Printf("%sattr %s\n", in, s.Name.Name)
		for _, super := range s.Attributes {
			fmt.Printf("%s  is %s\n", in, super.Name)
		}
		for _, f := range s.Fields {
			kind := "field"
			if f.Static {
				kind = "static field"
			}
			fmt.Printf("%s  %s %s\n", in, kind, f.Name.Name)
			if f.Expr != nil {
				printExpr(f.Expr, depth+2)
			}
		}
		for _, m := range s.Methods {
			fmt.Printf("%s  method %s\n", in, m.Name.Name)
			printExpr(m.Lambda, depth+2)
		}
	case *ast.Assignment:
		fmt.Printf("%sassign\n", in)
		printExpr(s.Target, depth+1)
		printExpr(s.Expr, depth+1)
	case *ast.If:
		fmt.Printf("%sif\n", in)
		printExpr(s.Cond, depth+1)
		fmt.Printf("%s  then\n", in)
		for _, st := range s.Then {
			printStmt(st, depth+2)
		}
		if s.Else != nil {
			fmt.Printf("%s  else\n", in)
			for _, st := range s.Else {
				printStmt(st, depth+2)
			}
		}
	case *ast.Loop:
		fmt.Printf("%sloop\n", in)
		for _, st := range s.Body {
			printStmt(st, depth+1)
		}
	case *ast.Break:
		fmt.Printf("%sbreak\n", in)
	case *ast.Continue:
		fmt.Printf("%scontinue\n", in)
	case *ast.Return:
		fmt.Printf("%sreturn\n", in)
		if s.Expr != nil {
			printExpr(s.Expr, depth+1)
		}
	case *ast.Scoped:
		fmt.Printf("%sscoped\n", in)
		for _, st := range s.Body {
			printStmt(st, depth+1)
		}
	case *ast.TypeAlias:
		fmt.Printf("%stype %s\n", in, s.Name.Name)
	}
}

var binaryOpSpellings = map[ast.BinaryOp]string{
	ast.Add: "+", ast.Sub: "-", ast.Mul: "*", ast.Div: "/", ast.Rem: "mod",
	ast.Equ: "==", ast.Neq: "!=", ast.Lst: "<", ast.Lse: "<=", ast.Grt: ">", ast.Gre: ">=",
}

func printExpr(expr ast.Expression, depth int) {
	in := indentOf(depth)
	switch e := expr.(type) {
	case *ast.NoneLiteral:
		fmt.Printf("%snone\n", in)
	case *ast.StrLiteral:
		fmt.Printf("%sstr %q\n", in, e.Value)
	case *ast.NumLiteral:
		fmt.Printf("%snum %v\n", in, e.Value)
	case *ast.BoolLiteral:
		fmt.Printf("%sbool %v\n", in, e.Value)
	case *ast.TemplateLiteral:
		fmt.Printf("%stemplate\n", in)
		for _, c := range e.Chunks {
			printExpr(c, depth+1)
		}
	case *ast.ListLiteral:
		fmt.Printf("%slist\n", in)
		for _, el := range e.Elements {
			printExpr(el, depth+1)
		}
	case *ast.ObjectLiteral:
		fmt.Printf("%sobject\n", in)
		for _, f := range e.Fields {
			fmt.Printf("%s  %s =\n", in, f.Name.Name)
			printExpr(f.Expr, depth+2)
		}
	case *ast.Binary:
		fmt.Printf("%sbinary %s\n", in, binaryOpSpellings[e.Op])
		printExpr(e.Lhs, depth+1)
		printExpr(e.Rhs, depth+1)
	case *ast.Unary:
		op := "!"
		if e.Op == ast.Neg {
			op = "-"
		}
		fmt.Printf("%sunary %s\n", in, op)
		printExpr(e.Expr, depth+1)
	case *ast.Logic:
		op := "and"
		if e.Op == ast.LogicOr {
			op = "or"
		}
		fmt.Printf("%slogic %s\n", in, op)
		printExpr(e.Lhs, depth+1)
		printExpr(e.Rhs, depth+1)
	case *ast.Grouping:
		fmt.Printf("%sgroup\n", in)
		printExpr(e.Expr, depth+1)
	case *ast.Variable:
		fmt.Printf("%svar %s\n", in, e.Ident.Name)
	case *ast.Lambda:
		params := make([]string, 0, len(e.Params)+1)
		if e.SelfBound {
			params = append(params, "self")
		}
		for _, p := range e.Params {
			params = append(params, p.Name)
		}
		fmt.Printf("%sfn (%s)\n", in, strings.Join(params, ", "))
		for _, st := range e.Body {
			printStmt(st, depth+1)
		}
	case *ast.Call:
		fmt.Printf("%scall\n", in)
		printExpr(e.Callee, depth+1)
		for _, a := range e.Args {
			printExpr(a, depth+1)
		}
	case *ast.Index:
		fmt.Printf("%sindex\n", in)
		printExpr(e.Head, depth+1)
		printExpr(e.Index, depth+1)
	case *ast.FieldGet:
		fmt.Printf("%sfield %s\n", in, e.Field)
		printExpr(e.Head, depth+1)
	case *ast.SelfRef:
		fmt.Printf("%sself\n", in)
	}
}
