package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/collab-engine/internal/classify"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Print or validate the meeting taxonomy rule table",
	Long: `Taxonomy prints the keyword rule table the classifier evaluates, in
order. With --file it validates and prints a replacement YAML table
instead, so a custom taxonomy can be checked before a run.`,
	RunE: runTaxonomy,
}

func init() {
	taxonomyCmd.Flags().String("file", "", "validate and print this YAML rule table instead of the built-in one")

	rootCmd.AddCommand(taxonomyCmd)
}

func runTaxonomy(cmd *cobra.Command, args []string) error {
	rules := classify.DefaultRules()
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		var err error
		if rules, err = classify.LoadRules(path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s: %d rules OK\n", path, len(rules))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCATEGORY\tWEIGHT\tKEYWORDS")
	for _, r := range rules {
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%v\n",
			r.Type, r.Category, classify.TypeWeight(r.Type, r.Category), r.Keywords)
	}
	return w.Flush()
}
