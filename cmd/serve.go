package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/twiced-technology-gmbh/eisen/internal/output"
	"github.com/twiced-technology-gmbh/eisen/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over a JSON HTTP API",
	Long: `Starts an HTTP server exposing the board operations under /tasks and
/stats. The listen address comes from --addr, EISEN_ADDR or server.addr in
config.yml. Ctrl+C drains in-flight requests before exiting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	serveCmd.Flags().String("storage", "", "override storage.driver for this run")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if driver, _ := cmd.Flags().GetString("storage"); driver != "" {
		cfg.Storage.Driver = driver
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	sess, err := openSessionFor(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	addr := viper.GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(sess.board,
		server.WithLogger(sess.logger),
		server.WithBoardName(cfg.Board.Name))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	output.Messagef(os.Stderr, "Serving board %q (%s) on http://%s", cfg.Board.Name, cfg.Storage.Driver, addr)
	return srv.Run(ctx, addr)
}
