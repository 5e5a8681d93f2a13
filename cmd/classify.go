package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/relief/internal/domain/classify"
)

var errEmptyReport = errors.New("description or --type is required")

func newClassifyCmd(root *rootOptions) *cobra.Command {
	var (
		in     classify.Input
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "classify [description...]",
		Short: "Classify a free-text emergency report",
		RunE: func(cmd *cobra.Command, args []string) error {
			root.applyLogLevel(cmd.Context(), "", "warn")
			in.Description = strings.Join(args, " ")
			if strings.TrimSpace(in.Description) == "" && strings.TrimSpace(in.Type) == "" {
				return errEmptyReport
			}
			res := classify.New().Classify(in)
			if asJSON {
				return writeIndentedJSON(cmd.OutOrStdout(), res)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendRows([]table.Row{
				{"Type", res.EmergencyType},
				{"Priority", res.SuggestedPriority},
				{"Urgency", fmt.Sprintf("%.2f", res.UrgencyScore)},
				{"People", res.EstimatedPeople},
				{"Needs", strings.Join(res.ResourceNeeds, ", ")},
				{"Response", res.ResponseWindow},
			})
			t.Render()
			for _, insight := range res.KeyInsights {
				fmt.Fprintln(cmd.OutOrStdout(), "- "+insight)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Type, "type", "", "reported emergency type")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "reported priority")
	cmd.Flags().IntVar(&in.Victims, "victims", 0, "reported number of people affected")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
