package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/heritage-moments/album-studio/internal/layout"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the layout template catalog",
	Long:  `Displays the built-in layout templates pages can be arranged with.`,
	RunE:  runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)

	layoutsCmd.Flags().String("category", "", "Filter templates by category")
}

func runLayouts(cmd *cobra.Command, args []string) error {
	category := mustGetString(cmd, "category")

	templates := layout.Catalog()
	if category != "" {
		templates = layout.ByCategory(category)
	}

	if len(templates) == 0 {
		fmt.Println("No layout templates found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tPHOTOS\tSPREAD")
	fmt.Fprintln(w, "----\t--------\t------\t------")

	for i := range templates {
		t := &templates[i]
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\n", t.Name, t.Category, t.PhotoCount, t.Spread)
	}

	w.Flush()

	fmt.Printf("\nTotal: %d templates\n", len(templates))

	return nil
}
