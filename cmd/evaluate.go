package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facerec/internal/pipeline"
	"github.com/andresmejia3/facerec/internal/recognizer"
	"github.com/spf13/cobra"
)

var holdoutEvery int

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Estimate recognition accuracy with a hold-out split of the dataset",
	Long:  "Trains a throwaway model on all but every n-th image of each person and scores it on the held-out images. The saved model is not modified.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runEvaluate()
	},
}

func init() {
	evaluateCmd.Flags().IntVarP(&holdoutEvery, "holdout-every", "k", pipeline.DefaultHoldoutEvery, "Hold out every k-th image of each person for testing")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate() error {
	rep, err := pipeline.Evaluate(pipeline.EvaluateOptions{
		Dataset:       currentDataset(),
		NewClassifier: recognizer.LBPHFactory(Cfg.Model),
		HoldoutEvery:  holdoutEvery,
		Log:           os.Stderr,
	})
	if err != nil {
		return fail("Evaluation failed", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PERSON\tTESTED\tCORRECT\tACCURACY")
	fmt.Fprintln(w, "------\t------\t-------\t--------")
	for _, p := range rep.PerPerson {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", p.Name, p.Tested, p.Correct, p.Accuracy*100)
	}
	w.Flush()

	fmt.Printf("\nOverall accuracy: %.1f%% (%d/%d, trained on %d images, %d skipped)\n",
		rep.Accuracy*100, rep.Correct, rep.TestImages, rep.TrainImages, rep.Skipped)
	fmt.Printf("Distance of correct matches:   n=%d mean=%.1f sd=%.1f\n",
		rep.CorrectDistances.N, rep.CorrectDistances.Mean, rep.CorrectDistances.StdDev)
	fmt.Printf("Distance of incorrect matches: n=%d mean=%.1f sd=%.1f\n",
		rep.WrongDistances.N, rep.WrongDistances.Mean, rep.WrongDistances.StdDev)
	return nil
}
