package cmd

import (
	"fmt"
	"os"

	"github.com/andresmejia3/facerec/internal/pipeline"
	"github.com/spf13/cobra"
)

var skipCamera bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check OpenCV, cascade files and the camera",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDoctor()
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&skipCamera, "skip-camera", false, "Do not try to open the camera")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor() error {
	checks := pipeline.Doctor(Cfg, skipCamera)
	for _, c := range checks {
		if c.Err != nil {
			fmt.Printf("❌ %-18s %v\n", c.Name, c.Err)
			continue
		}
		fmt.Printf("✅ %-18s %s\n", c.Name, c.Detail)
	}

	if problems := pipeline.Problems(checks); len(problems) > 0 {
		return fail("Environment check failed", fmt.Errorf("%d of %d checks failed", len(problems), len(checks)))
	}
	fmt.Fprintln(os.Stderr, "\n✨ Environment looks good.")
	return nil
}
