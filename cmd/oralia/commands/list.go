package commands

import (
	"oralia-konnector/internal/billstore"
	"oralia-konnector/internal/scrapers/oralia"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newListCmd(root *rootFlags) *cobra.Command {
	var database string

	listCmd := &cobra.Command{
		Use:   "list [--db <path/to/bills.db>]",
		Short: "Lists the bills stored by previous runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.config)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database = database
			}

			ctx := cmd.Context()
			db, err := billstore.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			bills, err := billstore.NewStore(db, nil).ListBills(ctx, oralia.Vendor)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Date", "Filename", "Amount", "Url"})
			for _, b := range bills {
				t.AppendRow(table.Row{
					b.Date.Format("2006-01-02"),
					b.Filename,
					b.Amount.StringFixed(2) + " " + b.Currency,
					b.FileUrl,
				})
			}
			t.AppendFooter(table.Row{"", "Total", len(bills), ""})
			t.Render()
			return nil
		},
	}
	listCmd.Flags().StringVar(&database, "db", "bills.db", "The database (sqlite path or libsql url) to read bills from.")
	return listCmd
}
