package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"babble/internal/ingest"
	"babble/internal/pipeline"
	"babble/internal/workspace"
)

func newImportCmd(f *globalFlags) *cobra.Command {
	var (
		scope     string
		workers   int
		maxTokens int
	)
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import .txt, .json, .docx or .pdf files into the corpus",
		Long: `Import parses each file and stores its messages after sanitizing.
JSON exports carry their own scopes; other formats need --scope.`,
		Args: cobra.MinimumNArgs(1),
		RunE: f.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			var mu sync.Mutex
			out := cmd.OutOrStdout()
			errs := pipeline.Run(cmd.Context(), args, workers, func(ctx context.Context, path string) error {
				recs, err := importFile(ctx, a, path, scope, maxTokens)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				mu.Lock()
				defer mu.Unlock()
				for _, rec := range recs {
					fmt.Fprintf(out, "%s [%s] entries=%d stored=%d rejected=%d\n",
						filepath.Base(path), rec.Scope, rec.Entries, rec.Stored, rec.Rejected)
				}
				return nil
			})
			failed := pipeline.Failed(errs)
			for _, err := range failed {
				a.logger.Error("import failed", "error", err)
			}
			return errors.Join(failed...)
		}),
	}
	cmd.Flags().StringVar(&scope, "scope", "", "Scope for the imported messages (overrides scopes in JSON exports)")
	cmd.Flags().IntVar(&workers, "workers", 4, "Files parsed in parallel")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 40, "Longest sentence kept from documents, in words")
	return cmd
}

// importFile stores every scope found in path and records each one in the
// workspace import history.
func importFile(ctx context.Context, a *app, path, scope string, maxTokens int) ([]workspace.ImportRecord, error) {
	parsed, err := ingest.ParseFile(path, maxTokens)
	if err != nil {
		return nil, err
	}

	grouped := map[string][]string{}
	for key, texts := range parsed.Entries {
		target := key
		if scope != "" {
			target = scope
		}
		if target == "" {
			return nil, errors.New("file has no scope, pass --scope")
		}
		grouped[target] = append(grouped[target], texts...)
	}

	scopes := make([]string, 0, len(grouped))
	for s := range grouped {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)

	recs := make([]workspace.ImportRecord, 0, len(scopes))
	for _, s := range scopes {
		res, err := a.svc.Import(ctx, s, grouped[s])
		if err != nil {
			return recs, err
		}
		rec := workspace.ImportRecord{
			Scope:    s,
			Source:   parsed.SourcePath,
			Entries:  len(grouped[s]),
			Stored:   res.Stored,
			Rejected: res.Rejected,
			At:       time.Now(),
		}
		if _, err := a.layout.SaveImport(rec); err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func newImportsCmd(f *globalFlags) *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List past imports for a scope",
		Args:  cobra.NoArgs,
		RunE: f.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			recs, err := a.layout.Imports(scope)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s entries=%d stored=%d rejected=%d\n",
					rec.At.Format(time.RFC3339), filepath.Base(rec.Source), rec.Entries, rec.Stored, rec.Rejected)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&scope, "scope", "", "Scope to list")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}
