package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facerec/internal/pipeline"
	"github.com/andresmejia3/facerec/internal/recognizer"
	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the LBPH model on the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runTrain(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(ctx context.Context) error {
	clf := recognizer.NewLBPH(Cfg.Model)
	defer clf.Close()

	rep, err := pipeline.Train(pipeline.TrainOptions{
		Dataset:      currentDataset(),
		Classifier:   clf,
		ModelPath:    Cfg.Model.ModelPath(),
		LabelMapPath: Cfg.Model.LabelMapPath(),
		Log:          os.Stderr,
	})
	if err != nil {
		return fail("Training failed", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "LABEL\tPERSON\tIMAGES")
	fmt.Fprintln(w, "-----\t------\t------")
	for _, label := range rep.Labels.Labels() {
		name := rep.Labels[label]
		fmt.Fprintf(w, "%d\t%s\t%d\n", label, name, rep.PerPerson[name])
	}
	w.Flush()
	fmt.Printf("\nTrained on %d images of %d people (%d skipped)\n", rep.Images, rep.People, rep.Skipped)

	if DB != nil {
		if _, err := DB.InsertTrainingRun(ctx, rep.People, rep.Images, rep.Skipped, rep.ModelPath); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to record training run: %v\n", err)
		}
	}
	return nil
}
