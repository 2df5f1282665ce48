package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kozaktomas/fras/internal/database"
	"github.com/kozaktomas/fras/internal/enroll"
	"github.com/kozaktomas/fras/internal/facematch"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove all descriptors enrolled under a name",
	Long: `Remove every descriptor stored under a name.

Example:
  fras remove Alice
  fras remove Alice --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)

	removeCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	skipConfirm := mustGetBool(cmd, "yes")

	name := args[0]
	if err := facematch.ValidateLabel(name); err != nil {
		return err
	}

	ctx := context.Background()
	store, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if !skipConfirm {
		if lister, ok := store.(database.LabelLister); ok {
			count, err := labelCount(ctx, lister, name)
			if err != nil {
				return err
			}
			if count == 0 {
				fmt.Printf("Nothing enrolled under %q.\n", name)
				return nil
			}
			fmt.Printf("Delete %d descriptor(s) of %q? [y/N]: ", count, name)
		} else {
			fmt.Printf("Delete all descriptors of %q? [y/N]: ", name)
		}

		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// The service has no extraction work to do on removal.
	removed, err := enroll.NewService(store, nil, logger).Remove(ctx, name)
	if err != nil {
		return err
	}
	fmt.Printf("Features deleted successfully. (%d removed)\n", removed)
	return nil
}

func labelCount(ctx context.Context, lister database.LabelLister, name string) (int, error) {
	labels, err := lister.Labels(ctx)
	if err != nil {
		return 0, err
	}
	for _, l := range labels {
		if l.Label == name {
			return l.Count, nil
		}
	}
	return 0, nil
}
