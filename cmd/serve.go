package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/painel-emendas/internal/web"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveNoWatch bool
	serveFilters filterFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive dashboard web server",
	Long: `Start the dashboard on listen_addr. Filters update the page in place and the
page refreshes by itself when the source spreadsheet changes on disk.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		settings, err := serveFilters.settings(c)
		if err != nil {
			return err
		}
		cache, err := newCache(c)
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := web.NewServer(web.Config{
			Cache:         cache,
			Settings:      settings,
			Title:         c.PageTitle(),
			Addr:          addr,
			Watch:         c.Watch && !serveNoWatch,
			SessionSecret: c.SessionSecret,
			Logger:        log,
		})
		return srv.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from listen_addr)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload when the source file changes")
	serveCmd.Flags().StringVar(&serveFilters.modo, "modo", "", "filter matching: exact | contains (default from config)")
	serveCmd.Flags().StringVar(&serveFilters.ranking, "ranking", "", "initial ranking metric: valor | quantidade")
	serveCmd.Flags().IntVar(&serveFilters.limit, "limit", 0, "ranking size (default from config)")
}
