package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tarunkumar2005/fomi/internal/api/authz"
	"github.com/tarunkumar2005/fomi/internal/config"
	"github.com/tarunkumar2005/fomi/internal/db"
	"github.com/tarunkumar2005/fomi/internal/models"
	"github.com/tarunkumar2005/fomi/internal/theming"
)

type rootOptions struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "themectl",
		Short: "Administer the Fomi theme catalog",
		Long: `themectl works directly against the theme database.

Available subcommands:
  seed     - Load the built-in themes into the database
  list     - List built-in themes, or a session's full catalog
  export   - Print a theme as a portable JSON document
  import   - Store an exported theme as a user theme
  validate - Check an exported theme or a built-in themes file`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/app.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to a SQLite database; overrides the configured database")

	root.AddCommand(
		newSeedCmd(opts),
		newListCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newValidateCmd(),
	)
	return root
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the embedded built-in themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := opts.open()
			if err != nil {
				return err
			}
			defer database.Close()

			count, err := db.SeedBuiltInThemes(cmd.Context(), database)
			if err != nil {
				return fmt.Errorf("seed built-in themes: %w", err)
			}
			log.Info().Int("count", count).Msg("Seeded built-in themes")
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d built-in themes\n", count)
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var userID, workspaceID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List themes",
		Long: `Without flags, lists the built-in themes. With --user, lists everything that user
sees in --workspace (their personal workspace when omitted), with user themes shadowing
workspace themes and workspace themes shadowing built-in ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := opts.open()
			if err != nil {
				return err
			}
			defer database.Close()
			store := models.NewStore(database.Queries, nil, 0)

			var themes []models.Theme
			switch {
			case userID == "" && workspaceID != "":
				return fmt.Errorf("--workspace needs --user")
			case userID == "":
				themes, err = store.ListBuiltInThemes(cmd.Context())
			default:
				var catalog theming.Catalog
				catalog, err = theming.LoadCatalog(cmd.Context(), store, session(userID, workspaceID))
				themes = catalog.List()
			}
			if err != nil {
				return err
			}
			return printThemes(cmd.OutOrStdout(), themes)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "List the catalog this user sees")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace the user acts in")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var userID, workspaceID string
	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Print a theme as an exported JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := opts.open()
			if err != nil {
				return err
			}
			defer database.Close()

			svc := theming.NewService(models.NewStore(database.Queries, nil, 0), 0)
			if userID == "" {
				userID = "themectl"
			}
			data, err := svc.ExportTheme(cmd.Context(), session(userID, workspaceID), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Resolve the id in this user's catalog")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace the user acts in")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var userID, workspaceID string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store an exported theme document as a user theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			database, err := opts.open()
			if err != nil {
				return err
			}
			defer database.Close()

			svc := theming.NewService(models.NewStore(database.Queries, nil, 0), 0)
			theme, err := svc.ImportTheme(cmd.Context(), session(userID, workspaceID), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %q as %s\n", theme.Name, theme.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Owner of the imported theme")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace the user acts in")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate an exported theme (.json) or a built-in themes file (.yaml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := validateFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d valid theme(s)\n", args[0], count)
			return nil
		},
	}
}

// validateFile reports how many themes the file holds, or the first problem found.
func validateFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		themes, err := db.ParseThemes(f)
		if err != nil {
			return 0, err
		}
		return len(themes), nil
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			return 0, err
		}
		if _, err := models.DecodeExportedTheme(data); err != nil {
			return 0, err
		}
		return 1, nil
	}
}

func (o *rootOptions) open() (*db.DB, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}

func (o *rootOptions) config() (*config.Config, error) {
	if o.dbPath != "" {
		cfg := config.Default()
		cfg.Database.Driver = "sqlite"
		cfg.Database.Filename = o.dbPath
		return cfg, nil
	}
	return config.Load(o.configPath)
}

func session(userID, workspaceID string) theming.Session {
	user := authz.NewAuthUser(userID, workspaceID, "cli")
	return theming.Session{UserID: user.UserID, WorkspaceID: user.WorkspaceID}
}

func printThemes(w io.Writer, themes []models.Theme) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCOPE\tCATEGORY\tNAME")
	for _, theme := range themes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", theme.ID, theme.Scope, theme.Category, theme.Name)
	}
	return tw.Flush()
}
