package main

import (
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/Napageneral/profilegen/internal/config"
	"github.com/Napageneral/profilegen/internal/db"
	"github.com/Napageneral/profilegen/internal/logging"
)

var (
	version    = "dev"
	commit     = "none"
	buildDate  = "unknown"
	jsonOutput bool

	cfg     *config.AppConfig
	loggers *logging.Provider
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "profilegen",
		Short: "Profile README and metrics render tooling",
		Long: `Profilegen maintains a GitHub profile: it generates and checks the
metrics workflow, validates README references, and injects AniList
character images into rendered metrics SVGs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			level := cfg.LogLevel
			if jsonOutput {
				level = "error"
			}
			p, err := logging.NewProvider(logging.Config{Level: level, Format: cfg.LogFormat})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v, logging disabled\n", err)
			}
			loggers = p
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	// version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    buildDate,
				})
			} else {
				fmt.Printf("profilegen %s (%s, %s)\n", version, commit, buildDate)
			}
		},
	})

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newInjectCmd())
	rootCmd.AddCommand(newWorkflowCmd())
	rootCmd.AddCommand(newReadmeCmd())
	rootCmd.AddCommand(newHistoryCmd())

	// Commands report their own failures, so anything Execute returns is a
	// bad flag, argument or command name.
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize profilegen config and render ledger",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK        bool   `json:"ok"`
				Message   string `json:"message,omitempty"`
				ConfigDir string `json:"config_dir,omitempty"`
				DataDir   string `json:"data_dir,omitempty"`
				DBPath    string `json:"db_path,omitempty"`
			}

			result := Result{OK: true, ConfigDir: cfg.ConfigDir, DataDir: cfg.DataDir}
			if cfg.ConfigDir == "" || cfg.DataDir == "" {
				fail(Result{Message: "Failed to resolve config or data directory"})
			}

			if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
				fail(Result{Message: fmt.Sprintf("Failed to create config directory: %v", err)})
			}
			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				fail(Result{Message: fmt.Sprintf("Failed to create data directory: %v", err)})
			}

			if err := db.Init(); err != nil {
				fail(Result{Message: fmt.Sprintf("Failed to initialize database: %v", err)})
			}
			dbPath, err := db.GetPath()
			if err != nil {
				fail(Result{Message: fmt.Sprintf("Failed to get database path: %v", err)})
			}
			result.DBPath = dbPath
			result.Message = "Profilegen initialized successfully"

			if jsonOutput {
				printJSON(result)
			} else {
				fmt.Printf("✓ Config directory: %s\n", result.ConfigDir)
				fmt.Printf("✓ Data directory: %s\n", result.DataDir)
				fmt.Printf("✓ Database: %s\n", result.DBPath)
				fmt.Println("\nProfilegen initialized successfully!")
			}
		},
	}
}

// fail prints result as an error and exits 1. The human-readable form is the
// result's `json:"message"` field.
func fail(result any) { exitWith(1, result) }

// failUsage reports a usage error and exits 2.
func failUsage(result any) { exitWith(2, result) }

func exitWith(code int, result any) {
	if jsonOutput {
		printJSON(result)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", messageOf(result))
	}
	os.Exit(code)
}

func messageOf(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &m); err != nil || m.Message == "" {
		return string(raw)
	}
	return m.Message
}

func logger(name string) logging.Logger {
	return loggers.GetLogger(name)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
