package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/vorhaben-backend/internal/app"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/templates"
)

var (
	rootCmd = &cobra.Command{
		Use:   "vorhaben",
		Short: "Vorhabensbeschreibung generation and chat editing backend",
	}
	templatesDir string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	templatesCmd.PersistentFlags().StringVar(&templatesDir, "dir", os.Getenv("TEMPLATES_DIR"), "Directory with YAML template overrides")
	templatesCmd.AddCommand(templatesListCmd, templatesShowCmd)

	rootCmd.AddCommand(serveCmd, migrateCmd, templatesCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New()
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := a.Run(ctx); err != nil {
			return fmt.Errorf("server exited: %w", err)
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := app.NewLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		database, err := app.OpenDatabase(log)
		if err != nil {
			return err
		}
		defer database.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", database.Driver())
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the system template registry",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List system templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range registry.Names() {
			spec, _ := registry.Get(name)
			fmt.Fprintf(out, "%-20s %3d sections  %s\n", name, len(spec.Sections), spec.Description)
		}
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print one system template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		spec, ok := registry.Get(args[0])
		if !ok {
			return fmt.Errorf("system template %q not found", args[0])
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(spec)
	},
}

func openRegistry() (*templates.Registry, error) {
	log, err := app.NewLogger()
	if err != nil {
		return nil, err
	}
	return templates.NewRegistry(log, templatesDir)
}
