package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"babble/internal/markov"
	"babble/internal/server"
	"babble/internal/service"
)

func newRootCmd() *cobra.Command {
	f := &globalFlags{}
	root := &cobra.Command{
		Use:          "babble",
		Short:        "Generate short chat messages from a learned corpus",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.home, "home", "", "Workspace directory (default ~/.babble)")
	root.PersistentFlags().StringVar(&f.config, "config", "", "Config file (default <home>/babble.yaml)")
	root.PersistentFlags().StringVar(&f.db, "db", "", "SQLite database path, overrides the config")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&f.logFormat, "log-format", "", "text or json")

	root.AddCommand(
		newGenerateCmd(f),
		newRelatedCmd(f),
		newReplyCmd(f),
		newImportCmd(f),
		newImportsCmd(f),
		newCleanCmd(f),
		newLearningCmd(f),
		newServeCmd(f),
		newStatsCmd(f),
	)
	return root
}

func newGenerateCmd(f *globalFlags) *cobra.Command {
	var (
		scope     string
		words     int
		hintList  []string
		looksGood bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one message for a scope",
		Args:  cobra.NoArgs,
		RunE: f.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			res, err := a.svc.Generate(cmd.Context(), service.GenerateRequest{
				Scope:            scope,
				MaxWords:         words,
				Hints:            hintList,
				RequireLooksGood: looksGood,
			})
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		}),
	}
	cmd.Flags().StringVar(&scope, "scope", "cli", "Scope the output is remembered under")
	cmd.Flags().IntVar(&words, "words", 0, "Word limit (0 uses the configured default)")
	cmd.Flags().StringSliceVar(&hintList, "hint", nil, "Words to steer the start towards")
	cmd.Flags().BoolVar(&looksGood, "looks-good", false, "Require the plain-text shape check")
	return cmd
}

func newRelatedCmd(f *globalFlags) *cobra.Command {
	var (
		scope string
		words int
	)
	cmd := &cobra.Command{
		Use:   "related [seed text]",
		Short: "Generate a message from the corpus closest to the seed",
		Args:  cobra.MinimumNArgs(1),
		RunE: f.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			res, err := a.svc.Related(cmd.Context(), scope, strings.Join(args, " "), words)
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		}),
	}
	cmd.Flags().StringVar(&scope, "scope", "cli", "Scope the output is remembered under")
	cmd.Flags().IntVar(&words, "words", 0, "Word limit (0 uses the configured default)")
	return cmd
}

func newReplyCmd(f *globalFlags) *cobra.Command {
	var (
		scope string
		words int
	)
	cmd := &cobra.Command{
		Use:   "reply [message]",
		Short: "Answer a message using its own words as hints",
		Args:  cobra.MinimumNArgs(1),
		RunE: f.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			res, err := a.svc.Reply(cmd.Context(), scope, strings.Join(args, " "), words)
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		}),
	}
	cmd.Flags().StringVar(&scope, "scope", "cli", "Scope the output is remembered under")
	cmd.Flags().IntVar(&words, "words", 0, "Word limit (0 uses the configured default)")
	return cmd
}

func newCleanCmd(f *globalFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Re-sanitize and dedupe the stored corpus",
		Args:  cobra.NoArgs,
		RunE: f.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			stats, err := a.svc.Clean(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			prefix := ""
			if dryRun {
				prefix = "(dry run) "
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%stotal=%d kept=%d dropped=%d updated=%d\n",
				prefix, stats.Total, stats.Kept, stats.Dropped, stats.Updated)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report without changing the database")
	return cmd
}

func newLearningCmd(f *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learning",
		Short: "Manage the scopes whose messages are learned",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add [scope]",
			Short: "Start learning from a scope",
			Args:  cobra.ExactArgs(1),
			RunE: f.withApp(func(cmd *cobra.Command, args []string, a *app) error {
				return a.svc.SetLearning(cmd.Context(), args[0], true)
			}),
		},
		&cobra.Command{
			Use:   "remove [scope]",
			Short: "Stop learning from a scope",
			Args:  cobra.ExactArgs(1),
			RunE: f.withApp(func(cmd *cobra.Command, args []string, a *app) error {
				return a.svc.SetLearning(cmd.Context(), args[0], false)
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List learning scopes",
			Args:  cobra.NoArgs,
			RunE: f.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				stats, err := a.svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				for _, g := range stats.LearningGroups {
					fmt.Fprintln(cmd.OutOrStdout(), g)
				}
				return nil
			}),
		},
	)
	return cmd
}

func newServeCmd(f *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: f.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if a.cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			return server.New(a.svc, a.cfg.Server, a.logger).Run(cmd.Context(), addr)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func newStatsCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus and cache statistics",
		Args:  cobra.NoArgs,
		RunE: f.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			stats, err := a.svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}),
	}
}

func printResult(cmd *cobra.Command, res markov.Result) error {
	if !res.OK() {
		return fmt.Errorf("no message could be generated (corpus too small?)")
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return nil
}
