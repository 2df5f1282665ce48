package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/facematch"
	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List enrolled names",
	Long:  `List every enrolled name with the number of descriptors stored for it.`,
	Args:  cobra.NoArgs,
	RunE:  runLabelsList,
}

func init() {
	rootCmd.AddCommand(labelsCmd)

	labelsCmd.Flags().Int("min-count", 0, "Only show names with at least N descriptors")
}

func runLabelsList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	minCount := mustGetInt(cmd, "min-count")

	ctx := context.Background()
	store, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	lister, ok := store.(database.LabelLister)
	if !ok {
		return errors.New("store backend cannot list labels")
	}
	labels, err := lister.Labels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}

	if minCount > 0 {
		var filtered []database.LabelCount
		for _, l := range labels {
			if l.Count >= minCount {
				filtered = append(filtered, l)
			}
		}
		labels = filtered
	}

	if len(labels) == 0 {
		fmt.Println("No faces enrolled.")
		return nil
	}
	facematch.SortLabels(labels)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTORS")
	fmt.Fprintln(w, "----\t-----------")

	total := 0
	for _, l := range labels {
		fmt.Fprintf(w, "%s\t%d\n", l.Label, l.Count)
		total += l.Count
	}
	w.Flush()

	fmt.Printf("\nTotal: %d names, %d descriptors\n", len(labels), total)
	return nil
}
