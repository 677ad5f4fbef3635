// cmd/freelancer-analytics/commands.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"freelancer-analytics/internal/analytics/intent"
	"freelancer-analytics/internal/analytics/pipeline"
	"freelancer-analytics/internal/analytics/render"
	"freelancer-analytics/internal/common/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func (a *app) askCmd() *cobra.Command {
	var useCache, verbose bool

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer a question about freelancer earnings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, strings.Join(args, " "), useCache, verbose)
		},
	}
	cmd.Flags().BoolVar(&useCache, "use-cache", true, "serve and store answers in the answer cache")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print the record count and computed statistics")
	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, query string, useCache, verbose bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := config.ValidateLLM(cfg); err != nil {
		a.log.Warn("answers cannot be generated", map[string]interface{}{"error": err.Error()})
	}

	var console zapcore.WriteSyncer
	if verbose {
		console = zapcore.AddSync(cmd.ErrOrStderr())
	}

	ctx := cmd.Context()
	rt, err := pipeline.Open(ctx, cfg, a.log, console, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	ans, err := rt.Service.Ask(ctx, query, pipeline.Options{UseCache: useCache})
	if err != nil {
		return fmt.Errorf("data error: %w", err)
	}

	out := cmd.OutOrStdout()
	if verbose {
		if ans.Cached {
			fmt.Fprintln(out, "Using cached answer")
		} else {
			printDetails(out, ans)
		}
	}
	fmt.Fprintf(out, "\nAnswer:\n%s\n", ans.Text)
	return nil
}

func printDetails(w io.Writer, ans *pipeline.Answer) {
	fmt.Fprintf(w, "Loaded %d records\n", ans.Rows)
	fmt.Fprintln(w, "Statistics:")
	if ans.Result == nil {
		return
	}
	if ans.Result.Failed() {
		fmt.Fprintf(w, "• Error: %s\n", ans.Result.Error)
		return
	}

	keys := make([]string, 0, len(ans.Result.Statistics))
	for k := range ans.Result.Statistics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if line, ok := render.FormatMetric(k, ans.Result.Statistics[k]); ok {
			fmt.Fprintf(w, "• %s\n", line)
		} else {
			fmt.Fprintf(w, "• %s: %v\n", render.Label(k), ans.Result.Statistics[k])
		}
	}
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [query]",
		Short: "Print the intent, parameters and rule trace for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(intent.Classify(strings.Join(args, " ")))
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print earnings summary statistics for the cleaned dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, closeStore, err := pipeline.OpenStore(ctx, cfg, a.log)
			if err != nil {
				return err
			}
			defer closeStore()

			table, err := store.Table(ctx)
			if err != nil {
				return fmt.Errorf("data error: %w", err)
			}
			s, err := table.IncomeStats()
			if err != nil {
				return fmt.Errorf("data error: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Records: %d\n", s.Count)
			fmt.Fprintf(out, "Mean:    %.2f USD\n", s.Mean)
			fmt.Fprintf(out, "Median:  %.2f USD\n", s.Median)
			fmt.Fprintf(out, "Min:     %.2f USD\n", s.Min)
			fmt.Fprintf(out, "Max:     %.2f USD\n", s.Max)
			return nil
		},
	}
}
