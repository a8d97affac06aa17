package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"launchpage/internal/brief"
	"launchpage/internal/config"
	"launchpage/internal/database"
	"launchpage/internal/llm"
	"launchpage/internal/page"
	"launchpage/internal/publish"
	"launchpage/internal/server"
	"launchpage/internal/site"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "launchpage",
	Short:   "LLM-generated single-file landing pages",
	Long:    "Launchpage turns a project brief into a validated single-file landing page, serves it, and publishes it to a remote host.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(sitesCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("launchpage", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/launchpage/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the LLM provider, API key env var, and publish targets.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show site index and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Sites:")
		fmt.Printf("  Total generated: %d\n", stats.TotalSites)
		fmt.Printf("  Fallback pages: %d\n", stats.FallbackSites)
		fmt.Printf("  Published: %d\n", stats.PublishedSites)
		fmt.Printf("\nData directory: %s\n", cfg.GetDataDir())

		provider := llm.CreateProvider(cfg.Generation)
		if provider == nil {
			fmt.Println("LLM provider: NOT CONFIGURED")
		} else {
			fmt.Println("LLM provider: ok")
		}
		return nil
	},
}

// --- serve command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := site.NewStore(cfg.GetDataDir())
		if err != nil {
			return err
		}

		provider := llm.CreateProvider(cfg.Generation)
		if provider == nil {
			return fmt.Errorf("no LLM provider configured")
		}
		generator := page.NewGenerator(provider, cfg.Generation)

		srv := server.New(cfg, db, generator, store, configuredPublishers())

		fmt.Printf("Starting server at http://localhost:%d\n", cfg.Server.Port)
		fmt.Println("Press Ctrl+C to stop")
		return srv.Serve()
	},
}

// --- generate command ---

var genBrief struct {
	name        string
	ticker      string
	description string
	telegram    string
	twitter     string
	primary     string
	accent      string
	logo        string
	background  string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a landing page from flags, without the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := site.NewStore(cfg.GetDataDir())
		if err != nil {
			return err
		}

		provider := llm.CreateProvider(cfg.Generation)
		if provider == nil {
			return fmt.Errorf("no LLM provider configured")
		}

		b := brief.Brief{
			Name:        genBrief.name,
			Ticker:      genBrief.ticker,
			Description: genBrief.description,
			Telegram:    genBrief.telegram,
			Twitter:     genBrief.twitter,
			Colors:      brief.Colors{Primary: genBrief.primary, Accent: genBrief.accent},
			Logo:        genBrief.logo,
			Background:  genBrief.background,
		}.Normalized()
		if err := b.Validate(); err != nil {
			return err
		}

		generator := page.NewGenerator(provider, cfg.Generation)
		result, err := generator.Generate(context.Background(), b)
		if err != nil {
			return err
		}

		id := uuid.NewString()
		if _, err := store.SaveSite(id, result.HTML, b); err != nil {
			return err
		}

		status := database.StatusGenerated
		if result.Fallback {
			status = database.StatusFallback
		}
		if err := db.InsertSite(id, b.Title(), b.Ticker, b.Description, result.Attempts, status); err != nil {
			return err
		}

		fmt.Printf("Generated site %s (%d attempt(s))\n", id, result.Attempts)
		if result.Fallback {
			fmt.Println("Note: generation was exhausted; this is the fallback page.")
		}
		fmt.Printf("  %s\n", filepath.Join(store.SitePath(id), "index.html"))
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genBrief.name, "name", "", "Project name")
	generateCmd.Flags().StringVar(&genBrief.ticker, "ticker", "", "Token ticker")
	generateCmd.Flags().StringVar(&genBrief.description, "description", "", "Project description (markdown allowed)")
	generateCmd.Flags().StringVar(&genBrief.telegram, "telegram", "", "Telegram URL")
	generateCmd.Flags().StringVar(&genBrief.twitter, "twitter", "", "Twitter URL")
	generateCmd.Flags().StringVar(&genBrief.primary, "primary", "", "Primary theme color")
	generateCmd.Flags().StringVar(&genBrief.accent, "accent", "", "Accent theme color")
	generateCmd.Flags().StringVar(&genBrief.logo, "logo", "", "Logo asset (data URI or /uploads/ path)")
	generateCmd.Flags().StringVar(&genBrief.background, "background", "", "Background asset (data URI or /uploads/ path)")
}

// --- publish command ---

var publishTarget string

var publishCmd = &cobra.Command{
	Use:   "publish [site-id]",
	Short: "Publish a generated site to a remote host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := site.NewStore(cfg.GetDataDir())
		if err != nil {
			return err
		}

		id := args[0]
		record, err := db.GetSite(id)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("site %s not found", id)
		}

		pub, ok := configuredPublishers()[publishTarget]
		if !ok {
			return fmt.Errorf("publish target %q is unknown or not configured", publishTarget)
		}

		url, err := pub.Publish(context.Background(), store.SitePath(id), id)
		if err != nil {
			return err
		}
		if err := db.SetPublishedURL(id, url); err != nil {
			return err
		}

		fmt.Printf("Published %s\n", id)
		if url != "" {
			fmt.Printf("  %s\n", url)
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishTarget, "target", "sftp", "Publish target: sftp or cpanel")
}

// --- sites command ---

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List generated sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sites, err := db.ListSites(50)
		if err != nil {
			return err
		}
		if len(sites) == 0 {
			fmt.Println("No sites generated yet. Run 'launchpage generate' or 'launchpage serve'.")
			return nil
		}

		for _, s := range sites {
			line := fmt.Sprintf("  %s  %s", s.ID, s.Name)
			if s.Ticker != "" {
				line += fmt.Sprintf(" ($%s)", s.Ticker)
			}
			if s.Status == database.StatusFallback {
				line += "  [fallback]"
			}
			if s.PublishedURL != nil {
				line += "  -> " + *s.PublishedURL
			}
			fmt.Println(line)
		}
		return nil
	},
}

// --- helpers ---

func openDB() (*database.DB, error) {
	return database.OpenDir(cfg.GetDataDir())
}

// configuredPublishers returns the publish targets that have credentials.
func configuredPublishers() map[string]publish.Publisher {
	pubs := make(map[string]publish.Publisher)
	if p := publish.NewSFTPPublisher(cfg.Publish.SFTP); p.IsConfigured() {
		pubs["sftp"] = p
	}
	if p := publish.NewCPanelPublisher(cfg.Publish.CPanel); p.IsConfigured() {
		pubs["cpanel"] = p
	}
	return pubs
}
