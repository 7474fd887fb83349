package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Sternrassler/property-listings/pkg/client"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(client.DefaultConfig(baseURL))
			if err != nil {
				return err
			}

			props, err := c.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(props) == 0 {
				fmt.Fprintln(out, "No properties found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tLOCATION\tPRICE\tCREATED")
			for _, p := range props {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					p.ID, p.Title, p.Location, p.Price, p.CreatedAt.Format("2006-01-02T15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "base URL of the property API")
	return cmd
}
