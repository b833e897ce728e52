package commands

import (
	"log/slog"
	"time"

	"oralia-konnector/internal/billstore"
	"oralia-konnector/internal/konnector"
	"oralia-konnector/internal/scrapers/oralia"
	"oralia-konnector/internal/telemetry"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func newRunCmd(root *rootFlags) *cobra.Command {
	var (
		database         string
		downloadDir      string
		firstAccountOnly bool
		dumpHttp         string
	)

	runCmd := &cobra.Command{
		Use:   "run [--db <path/to/bills.db>] [--download-dir <dir>]",
		Short: "Logs in, scrapes every account's documents and stores them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.config)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database = database
			}
			if cmd.Flags().Changed("download-dir") {
				cfg.DownloadDir = downloadDir
			}
			if cmd.Flags().Changed("first-account-only") {
				cfg.FirstAccountOnly = &firstAccountOnly
			}
			err = cfg.validateCredentials()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := billstore.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			tel := telemetry.SlogAPI{}
			client := oralia.NewClient(oralia.ClientOptions{
				BaseUrl:           cfg.BaseUrl,
				FirstAccountOnly:  cfg.firstAccountOnly(),
				BypassCloudflare:  cfg.bypassCloudflare(),
				RequestsPerSecond: rate.Limit(cfg.RequestsPerSecond),
				DumpDir:           dumpHttp,
			}, tel)
			k := konnector.New(client, billstore.NewStore(db, nil), tel)

			slog.Info("scraping using user", "username", cfg.Login)
			t1 := time.Now()
			result, err := k.Run(ctx, konnector.Options{
				Login:       cfg.Login,
				Password:    cfg.Password,
				DownloadDir: cfg.DownloadDir,
			})
			if err != nil {
				return err
			}
			slog.Info(
				"scrape finished",
				"documents", result.Documents,
				"inserted", result.Inserted,
				"skipped", result.Skipped,
				"downloaded", result.Downloaded,
				"seconds", time.Since(t1).Seconds(),
			)
			return nil
		},
	}
	runCmd.Flags().StringVar(&database, "db", "bills.db", "The database (sqlite path or libsql url) to store bills in.")
	runCmd.Flags().StringVar(&downloadDir, "download-dir", "", "Download the files of new documents into this directory.")
	runCmd.Flags().StringVar(&dumpHttp, "dump-http", "", "Write every request/response into this directory for debugging.")
	runCmd.Flags().BoolVar(&firstAccountOnly, "first-account-only", false, "Only scrape the first account.")
	return runCmd
}
