package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fineprint-dev/fineprint/internal/analyzer"
	"github.com/fineprint-dev/fineprint/internal/document"
	"github.com/fineprint-dev/fineprint/internal/personalize"
	"github.com/fineprint-dev/fineprint/internal/questionnaire"
	"github.com/fineprint-dev/fineprint/internal/render"
	"github.com/fineprint-dev/fineprint/internal/schema"
	"github.com/fineprint-dev/fineprint/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:   "fineprint",
		Short: "Personalized risk analysis for terms-and-conditions documents",
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newProfileCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		provider    string
		model       string
		passes      int
		clause      int
		timeout     time.Duration
		profilePath string
		userID      string
		dbPath      string
		asJSON      bool
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <document-file>",
		Short: "Analyze a terms document against a personalization profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}

			q, computed, err := loadProfile(cmd.Context(), profilePath, userID, dbPath)
			if err != nil {
				return err
			}

			input := string(text)
			isClause := clause >= 0
			if isClause {
				sections := document.Split(input)
				if clause >= len(sections) {
					return fmt.Errorf("clause %d out of range: document has %d sections", clause, len(sections))
				}
				s := sections[clause]
				input = s.Title + "\n\n" + s.Body
			}

			a, err := analyzer.New(0)
			if err != nil {
				return err
			}
			result, err := a.AnalyzeDocument(cmd.Context(), input, q, computed, analyzer.Options{
				Provider: provider,
				Model:    model,
				Passes:   passes,
				Clause:   isClause,
				Timeout:  timeout,
				Debug:    debug,
			})
			if err != nil {
				return err
			}

			if asJSON {
				b, err := render.RenderJSON(result)
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}
			fmt.Print(render.RenderMarkdown(result, computed.AlertThresholds))
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "google", "LLM provider: google, anthropic, openai, fixture")
	cmd.Flags().StringVar(&model, "model", "", "model name (provider default when empty; fixture path for the fixture provider)")
	cmd.Flags().IntVar(&passes, "passes", 1, "number of sequential analysis passes (1-5)")
	cmd.Flags().IntVar(&clause, "clause", -1, "analyze only the numbered document section")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall analysis timeout (default 30s, 10s for --clause)")
	cmd.Flags().StringVar(&profilePath, "profile", "", "path to a questionnaire JSON file")
	cmd.Flags().StringVar(&userID, "user", "", "load the profile for this user id from the store")
	cmd.Flags().StringVar(&dbPath, "db", "fineprint.db", "profile store path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of Markdown")
	cmd.Flags().BoolVar(&debug, "debug", false, "print prompts to stderr")

	return cmd
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Compute and manage personalization profiles",
	}
	cmd.AddCommand(newProfileComputeCmd())
	cmd.AddCommand(newProfileSaveCmd())
	cmd.AddCommand(newProfileGetCmd())
	cmd.AddCommand(newProfileDeleteCmd())
	return cmd
}

func newProfileComputeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "compute <questionnaire-file>",
		Short: "Validate a questionnaire and print its computed profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := readQuestionnaire(args[0])
			if err != nil {
				return err
			}
			if errs := questionnaire.Validate(q); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", e.Field, e.Message)
				}
				return fmt.Errorf("questionnaire has %d invalid fields", len(errs))
			}
			computed := personalize.Compute(q)
			if asJSON {
				b, err := render.RenderJSON(computed)
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}
			fmt.Print(render.RenderProfileMarkdown(computed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of Markdown")
	return cmd
}

func newProfileSaveCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "save <questionnaire-file>",
		Short: "Validate, compute, and persist a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := readQuestionnaire(args[0])
			if err != nil {
				return err
			}
			svc, closeStore, err := openService(dbPath)
			if err != nil {
				return err
			}
			defer closeStore()

			saved, err := svc.Save(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Printf("saved profile for %s (style: %s)\n",
				saved.Questionnaire.UserID, saved.Computed.ExplanationStyle)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "fineprint.db", "profile store path")
	return cmd
}

func newProfileGetCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "get <user-id>",
		Short: "Print a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService(dbPath)
			if err != nil {
				return err
			}
			defer closeStore()

			profile, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if profile == nil {
				return fmt.Errorf("no profile for user %q", args[0])
			}
			b, err := render.RenderJSON(profile)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "fineprint.db", "profile store path")
	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService(dbPath)
			if err != nil {
				return err
			}
			defer closeStore()

			existed, err := svc.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !existed {
				fmt.Printf("no profile for %s\n", args[0])
				return nil
			}
			fmt.Printf("deleted profile for %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "fineprint.db", "profile store path")
	return cmd
}

// loadProfile resolves the questionnaire and computed profile for an analyze
// run, either from a questionnaire file or from the persistent store.
func loadProfile(ctx context.Context, profilePath, userID, dbPath string) (schema.Questionnaire, schema.ComputedProfile, error) {
	switch {
	case profilePath != "":
		q, err := readQuestionnaire(profilePath)
		if err != nil {
			return schema.Questionnaire{}, schema.ComputedProfile{}, err
		}
		if err := questionnaire.AsError(questionnaire.Validate(q)); err != nil {
			return schema.Questionnaire{}, schema.ComputedProfile{}, err
		}
		return q, personalize.Compute(q), nil
	case userID != "":
		sqlStore, err := store.OpenSQLite(dbPath)
		if err != nil {
			return schema.Questionnaire{}, schema.ComputedProfile{}, err
		}
		defer sqlStore.Close()
		profile, err := store.NewService(sqlStore).Get(ctx, userID)
		if err != nil {
			return schema.Questionnaire{}, schema.ComputedProfile{}, err
		}
		if profile == nil {
			return schema.Questionnaire{}, schema.ComputedProfile{}, fmt.Errorf("no profile for user %q", userID)
		}
		return profile.Questionnaire, profile.Computed, nil
	default:
		return schema.Questionnaire{}, schema.ComputedProfile{}, fmt.Errorf("either --profile or --user is required")
	}
}

// openService opens the SQLite-backed profile service.
func openService(dbPath string) (*store.Service, func(), error) {
	sqlStore, err := store.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return store.NewService(sqlStore), func() { sqlStore.Close() }, nil
}

// readQuestionnaire loads and decodes a questionnaire JSON file.
func readQuestionnaire(path string) (schema.Questionnaire, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return schema.Questionnaire{}, fmt.Errorf("read questionnaire: %w", err)
	}
	var q schema.Questionnaire
	if err := json.Unmarshal(b, &q); err != nil {
		return schema.Questionnaire{}, fmt.Errorf("decode questionnaire: %w", err)
	}
	return q, nil
}
