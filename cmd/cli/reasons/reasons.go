package reasons

import (
	"fmt"
	"text/tabwriter"

	"github.com/myrjola/surprise/internal/errors"
	"github.com/myrjola/surprise/internal/wizard"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "reasons",
	Title: "Form reference",
}

var List = &cobra.Command{
	Use:     "reasons",
	GroupID: "reasons",
	Short:   "List accepted reasons",
	Long:    `Lists the values accepted by the "Why did you scan?" slide together with their labels`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // two spaces of padding
		for i, option := range wizard.ReasonOptions() {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, option.Value, option.Label)
		}
		if err := w.Flush(); err != nil {
			return errors.Wrap(err, "flush")
		}
		return nil
	},
}
