package serve

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zvonler/adminreport/cli/common"
	"github.com/zvonler/adminreport/server"
)

var listenAddr string

func NewCommand() *cobra.Command {
	serveCommand := &cobra.Command{
		Use:   "serve",
		Short: "Serves reports over HTTP",
		Args:  cobra.NoArgs,
		Example: "" +
			"  " + os.Args[0] + " serve --listen :8085 --dashboard https://admin.example/stats",
		Run: runServeCommand,
	}

	serveCommand.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from ADMINREPORT_LISTEN_ADDRESS)")
	return serveCommand
}

func runServeCommand(cmd *cobra.Command, args []string) {
	env := common.NewEnv()
	defer env.Close()

	addr := listenAddr
	if addr == "" {
		addr = env.Settings.ListenAddress
	}

	srv := server.New(env.Session, env.Metrics, env.Logger)

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		env.Logger.Infow("shutting down")
		if err := srv.Shutdown(); err != nil {
			env.Logger.Warnw("shutdown failed", "error", err)
		}
	}()

	if err := srv.Listen(addr); err != nil {
		log.Fatal(err)
	}
}
