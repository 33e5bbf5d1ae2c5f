package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmejia3/facerec/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetDataset    bool
	resetModels     bool
	resetRecordings bool
	resetDB         bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset system state (Dataset, Models, Recordings, Database)",
	Long:  "Clears all data. By default, it resets everything. Use flags to clear specific components.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		// If no flags are set, default to clearing EVERYTHING
		if !resetDataset && !resetModels && !resetRecordings && !resetDB {
			resetDataset = true
			resetModels = true
			resetRecordings = true
			resetDB = true
		}

		reader := bufio.NewReader(os.Stdin)

		if resetDataset {
			if utils.Confirm(reader, os.Stdout, fmt.Sprintf("⚠️  Are you sure you want to delete every captured face in %s?", Cfg.Dataset.Dir)) {
				fmt.Println("🗑️  Clearing Dataset...")
				utils.RemoveDir(os.Stderr, Cfg.Dataset.Dir)
			}
		}

		if resetModels {
			if utils.Confirm(reader, os.Stdout, "⚠️  Are you sure you want to delete the trained model and label map?") {
				fmt.Println("🗑️  Clearing Models...")
				removeFile(Cfg.Model.ModelPath())
				removeFile(Cfg.Model.LabelMapPath())
			}
		}

		if resetRecordings {
			// A recording in the working directory only removes itself.
			target := filepath.Dir(Cfg.Recording.Path)
			if target == "." || target == string(filepath.Separator) {
				target = Cfg.Recording.Path
			}
			if utils.Confirm(reader, os.Stdout, fmt.Sprintf("⚠️  Are you sure you want to delete all recordings in %s?", target)) {
				fmt.Println("🗑️  Clearing Recordings...")
				utils.RemoveDir(os.Stderr, target)
			}
		}

		if resetDB {
			if DB == nil {
				fmt.Fprintln(os.Stderr, "⚠️  No database configured, skipping.")
			} else if utils.Confirm(reader, os.Stdout, "⚠️  Are you sure you want to DROP all database tables?") {
				fmt.Println("🗑️  Clearing Database...")
				if err := DB.Reset(cmd.Context()); err != nil {
					return fail("Failed to reset database", err)
				}
			}
		}

		fmt.Println("✨ System Reset Complete.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetDataset, "dataset", false, "Delete the captured face dataset")
	resetCmd.Flags().BoolVar(&resetModels, "models", false, "Delete the trained model and label map")
	resetCmd.Flags().BoolVar(&resetRecordings, "recordings", false, "Delete recorded sessions")
	resetCmd.Flags().BoolVar(&resetDB, "db", false, "Clear PostgreSQL database")
	rootCmd.AddCommand(resetCmd)
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
