package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/orderline/pkg/orderline/assemble"
	"github.com/cognicore/orderline/pkg/orderline/internalerr"
)

type parseFunc func(ctx context.Context, utterance string) (assemble.ParseResult, error)

func newParseCmd(c *cli) *cobra.Command {
	var (
		menuPath  string
		key       string
		utterance string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse an order utterance against a menu",
		Long: `Parse matches an utterance against a menu file (--menu) or a stored
restaurant menu (--key with --db or --postgres-dsn). Without --utterance it
reads one utterance per line from stdin.`,
		Example: `  orderline parse --menu menu.yaml --utterance "can I get the chicken parm with extra cheese"
  orderline parse --db menus.db --key +15550100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if menuPath == "" && key == "" {
				return fmt.Errorf("%w: --menu or --key is required", internalerr.ErrInvalidInput)
			}
			if menuPath == "" && !c.persistent() {
				return fmt.Errorf("%w: --key needs --db or --postgres-dsn", internalerr.ErrInvalidInput)
			}
			if format != "text" && format != "json" {
				return fmt.Errorf("%w: output format %q", internalerr.ErrInvalidInput, format)
			}

			engine, cleanup, err := c.buildEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var parse parseFunc
			if menuPath != "" {
				m, err := loadMenuFile(menuPath, key)
				if err != nil {
					return fmt.Errorf("load menu: %w", err)
				}
				parse = func(_ context.Context, u string) (assemble.ParseResult, error) {
					return engine.ParseOrder(m, u), nil
				}
			} else {
				parse = func(ctx context.Context, u string) (assemble.ParseResult, error) {
					return engine.ParseOrderByKey(ctx, key, u)
				}
			}

			out := cmd.OutOrStdout()
			if utterance != "" {
				res, err := parse(cmd.Context(), utterance)
				if err != nil {
					return err
				}
				return printResult(out, res, format)
			}
			return repl(cmd.Context(), cmd.InOrStdin(), out, parse, format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&menuPath, "menu", "", "menu file (.yaml, .json or annotated .html)")
	f.StringVar(&key, "key", "", "restaurant key")
	f.StringVarP(&utterance, "utterance", "u", "", "utterance to parse; reads stdin when empty")
	f.StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

func repl(ctx context.Context, in io.Reader, out io.Writer, parse parseFunc, format string) error {
	fmt.Fprintln(out, "Orderline Interactive Parser")
	fmt.Fprintln(out, "Type an order, or 'quit' to exit")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		res, err := parse(ctx, line)
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			continue
		}
		if err := printResult(out, res, format); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func printResult(w io.Writer, res assemble.ParseResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if !res.Success {
		fmt.Fprintf(w, "No order: %s\n", res.Error)
	} else {
		m := res.Match
		fmt.Fprintf(w, "%s (%s)  confidence %.2f\n", m.Item.Name, m.Item.Category, m.Confidence)
		for _, mod := range m.MatchedModifiers {
			fmt.Fprintf(w, "  + %s [%s] %+.2f\n", mod.OptionName, mod.GroupName, mod.OptionPrice)
		}
		for _, g := range m.RemainingRequiredModifiers {
			names := make([]string, len(g.Options))
			for i, o := range g.Options {
				names[i] = o.Name
			}
			fmt.Fprintf(w, "  ? %s: %s\n", g.GroupName, strings.Join(names, ", "))
		}
		if len(m.UnmatchedTokens) > 0 {
			fmt.Fprintf(w, "  unmatched: %s\n", strings.Join(m.UnmatchedTokens, " "))
		}
		fmt.Fprintf(w, "  price %.2f\n", m.CalculatedPrice)
	}

	for _, alt := range res.AlternativeMatches {
		fmt.Fprintf(w, "  also: %s %.2f\n", alt.Name, alt.Confidence)
	}
	fmt.Fprintln(w)
	return nil
}
