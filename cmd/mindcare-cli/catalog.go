package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/plan"
)

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List the topic catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, t := range knowledge.Topics() {
				marker := ""
				if knowledge.HasQuestions(t.ID) {
					marker = " *"
				}
				fmt.Fprintf(out, "%2d. %-22s %s%s\n", i+1, t.Name, t.Description, marker)
			}
			fmt.Fprintln(out, "\n* topic has its own questionnaire")
			return nil
		},
	}
}

func newPlanCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "plan <topic>",
		Short: "Print the therapy plan generated for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := plan.Build(args[0], nil)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			fmt.Fprintln(out, plan.Summary(p))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}
