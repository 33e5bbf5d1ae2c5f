package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/facerec/internal/camera"
	"github.com/andresmejia3/facerec/internal/config"
	"github.com/andresmejia3/facerec/internal/dataset"
	"github.com/andresmejia3/facerec/internal/store"
	"github.com/andresmejia3/facerec/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// DB is the optional history store shared by subcommands. It is nil when no
	// database is configured or reachable.
	DB *store.Store
	// Cfg is the resolved configuration shared by subcommands.
	Cfg *config.Config

	// dbURL is the connection string
	dbURL        string
	configPath   string
	datasetDir   string
	modelDir     string
	cameraDevice int
	headless     bool
)

// errNoDatabase is returned by commands that only work with the history store.
var errNoDatabase = errors.New("no database configured, use --db, DATABASE_URL or POSTGRES_HOST")

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "facerec",
	Short:   "Webcam face capture, LBPH training and live recognition",
	Long:    "Run without a subcommand to open the interactive menu.",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		Cfg = cfg

		if Cfg.Database.URL == "" {
			return nil
		}
		// Use the command's context (which will be cancellable) for the connection
		DB, err = store.New(cmd.Context(), Cfg.Database.URL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Database unavailable, history is disabled: %v\n", err)
			DB = nil
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			// and we still need to send the "Close" command to the DB.
			DB.Close(context.Background())
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runMenu(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	// Commands report their own errors through fail; anything else (unknown
	// command, bad flag) still gets the error box.
	rootCmd.SilenceErrors = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if isReported(err) {
			os.Exit(1)
		}
		utils.Die("Command failed", err)
	}
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&datasetDir, "dataset-dir", "", "Dataset root holding one folder per person")
	rootCmd.PersistentFlags().StringVar(&modelDir, "model-dir", "", "Directory for the trained model and label map")
	rootCmd.PersistentFlags().IntVar(&cameraDevice, "camera", 0, "Camera device index")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "Do not open a preview window (stop with Ctrl+C)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for the optional history log")
}

// loadConfig resolves defaults, the config file and the environment, then applies
// the flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fail("Invalid configuration", err)
	}
	root := cmd.Root()
	if persistentChanged(root, "dataset-dir") {
		cfg.Dataset.Dir = datasetDir
	}
	if persistentChanged(root, "model-dir") {
		cfg.Model.Dir = modelDir
	}
	if persistentChanged(root, "camera") {
		cfg.Camera.Device = cameraDevice
	}
	if persistentChanged(root, "headless") {
		cfg.Camera.Headless = headless
	}
	if persistentChanged(root, "db") {
		cfg.Database.URL = dbURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fail("Invalid configuration", err)
	}
	return cfg, nil
}

// persistentChanged reports whether a root flag was set. Looking the flag up on the
// root keeps a subcommand's own flag of the same name (reset --db) from counting.
func persistentChanged(root *cobra.Command, name string) bool {
	f := root.PersistentFlags().Lookup(name)
	return f != nil && f.Changed
}

// reportedError marks an error whose box was already printed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// fail prints the error box and hands the error back for cobra.
func fail(context string, err error) error {
	utils.ShowError(os.Stderr, context, err)
	return reportedError{err}
}

func currentDataset() *dataset.Dataset {
	return dataset.New(Cfg.Dataset.Dir)
}

func openDisplay(title string) camera.Display {
	if Cfg.Camera.Headless {
		return camera.Headless{}
	}
	return camera.NewWindow(title)
}
