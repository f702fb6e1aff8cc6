package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"listq/broker"
	"listq/client"
	"listq/config"
	"listq/server"
	"listq/types"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "listq",
	Short:        "Named linked lists driven through a message queue",
	SilenceUsage: true,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Consume list commands and apply them",
	Args:  cobra.NoArgs,
	RunE:  runServer,
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Publish `<clientId> <command>` lines from clientsInputPath or stdin",
	Args:  cobra.NoArgs,
	RunE:  runClients,
}

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Apply a file of JSON commands locally and print the replies",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.yaml", "Path to config file")
	rootCmd.AddCommand(serverCmd, clientsCmd, replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b, err := broker.Open(cfg, newLogger(cfg, "broker"))
	if err != nil {
		return err
	}
	defer b.Close()

	srv, err := server.NewServer(cfg, b)
	if err != nil {
		return err
	}
	go cancelOnSignal(srv.Cancel)
	return srv.StartServer()
}

func runClients(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "broker")
	var replies client.Dialer
	if repliesCfg := cfg.Replies(); repliesCfg != nil {
		replies = func() (broker.Broker, error) {
			return broker.Open(repliesCfg, logger)
		}
	}
	clientsManager, err := client.NewClientsManager(cfg, func() (broker.Broker, error) {
		return broker.Open(cfg, logger)
	}, replies)
	if err != nil {
		return err
	}
	go cancelOnSignal(clientsManager.Cancel)
	return clientsManager.ListenClientActions()
}

// runReplay needs no broker or config: commands go straight to a processor.
func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "open replay file")
	}
	defer f.Close()
	return replay(cmd.Context(), f, cmd.OutOrStdout())
}

func replay(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := server.NewProcessor(config.DefaultMaxListSize)
	lines, errChan := client.SubscribeToInput(ctx, r, false)
	enc := json.NewEncoder(w)
	n := 0
	for line := range lines {
		n++
		var c types.Command
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return errors.Wrapf(err, "line %d", n)
		}
		if c.ID == "" {
			c.ID = fmt.Sprint(n)
		}
		if err := enc.Encode(p.Process(&c)); err != nil {
			return err
		}
	}
	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}

func newLogger(cfg *config.Config, service string) log15.Logger {
	logger := log15.New("service", service)
	logger.SetHandler(log15.LvlFilterHandler(cfg.Level(), log15.StdoutHandler))
	return logger
}

func cancelOnSignal(cancel context.CancelFunc) {
	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)
	<-sigChannel
	cancel()
}
