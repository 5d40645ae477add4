package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/fetch/weburl"
)

type entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (a *app) queryCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "query <query-string>",
		Short: "Print the parameters of a query string as JSON, in order",
		Long: `query prints each parameter of a query string once, in the order its
name first appears. A repeated name keeps its last value. Candidates without
'=' are skipped, or reported as an error with --strict.`,
		Example: `  fetch query 'a=1&b=2&a=3'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimPrefix(args[0], "?")

			params := weburl.NewSearchParams(query)
			if strict {
				var err error
				if params, err = weburl.ParseSearchParams(query); err != nil {
					return fmt.Errorf("parsing query: %w", err)
				}
			}

			entries := make([]entry, 0, params.Len())
			for name, value := range params.Entries() {
				entries = append(entries, entry{Name: name, Value: value})
			}

			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on parameters without '='")

	return cmd
}
