package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/andresmejia3/facerec/internal/pipeline"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dataset statistics and whether the model is up to date",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runStatus(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(out io.Writer) error {
	ds := currentDataset()
	stats, err := ds.Stats()
	if err != nil {
		return fail("Failed to read dataset", err)
	}

	fmt.Fprintf(out, "📁 Dataset: %s\n", ds.Root)
	if !ds.Exists() {
		fmt.Fprintln(out, "   (not created yet, run capture first)")
	} else if stats.People == 0 {
		fmt.Fprintln(out, "   (empty)")
	} else {
		people, err := ds.People()
		if err != nil {
			return fail("Failed to read dataset", err)
		}
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PERSON\tIMAGES")
		fmt.Fprintln(w, "------\t------")
		for _, name := range people {
			fmt.Fprintf(w, "%s\t%d\n", name, stats.PerPerson[name])
		}
		w.Flush()
		fmt.Fprintf(out, "Total: %d people, %d images\n", stats.People, stats.TotalImages)
	}

	info, err := pipeline.InspectModel(Cfg.Model.ModelPath(), Cfg.Model.LabelMapPath(), ds)
	if err != nil {
		return fail("Failed to read model", err)
	}
	fmt.Fprintf(out, "\n🧠 Model: %s\n", Cfg.Model.ModelPath())
	if !info.Exists {
		fmt.Fprintln(out, "   not trained yet, run train first")
		return nil
	}
	fmt.Fprintf(out, "   trained %s on %d people: %s\n",
		info.ModelModTime.Local().Format("2006-01-02 15:04"), info.Count, strings.Join(info.People, ", "))
	if info.Stale {
		fmt.Fprintln(out, "⚠️  Model is out of date with the dataset, run train again")
		if len(info.Added) > 0 {
			fmt.Fprintf(out, "   new people:     %s\n", strings.Join(info.Added, ", "))
		}
		if len(info.Removed) > 0 {
			fmt.Fprintf(out, "   removed people: %s\n", strings.Join(info.Removed, ", "))
		}
	}
	return nil
}
