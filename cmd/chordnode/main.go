// Command chordnode starts one peer of the DHT described by the
// specification, grounded on specter's cmd/server.go command shape:
// a single urfave/cli command with bootstrap/join flags.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"chordhash/chord"
	"chordhash/ring"
	"chordhash/store"
	transporthttp "chordhash/transport/http"
)

func main() {
	app := &cli.App{
		Name:  "chordnode",
		Usage: "run one peer of a Chord-based, erasure-coded key/value ring",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ip",
				Value: "127.0.0.1",
				Usage: "address this peer advertises and binds",
			},
			&cli.IntFlag{
				Name:     "port",
				Required: true,
				Usage:    "port this peer binds",
			},
			&cli.StringFlag{
				Name:  "join",
				Usage: "ip:port of an existing peer to join through; omit to bootstrap a new ring",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug-level logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger, err := newLogger(c.Bool("debug"))
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	ip := c.String("ip")
	port := c.Int("port")

	db := store.NewMemory()
	client := transporthttp.NewClient(chord.NetworkTimeout, 3, logger)
	peer := chord.NewPeer(ip, port, client, db, logger)

	server := transporthttp.NewServer(fmt.Sprintf("%s:%d", ip, port), peer, logger)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	go func() {
		if err := server.ListenAndServe(ctx); err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()

	if joinAddr := c.String("join"); joinAddr != "" {
		gateway, err := parseGateway(joinAddr)
		if err != nil {
			return err
		}
		if err := peer.Join(ctx, gateway); err != nil {
			return fmt.Errorf("joining via %s: %w", joinAddr, err)
		}
		logger.Info("joined ring", zap.String("via", joinAddr))
	} else {
		peer.StartChord(ctx)
		logger.Info("bootstrapped new ring")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	logger.Info("received signal, leaving ring", zap.String("signal", sig.String()))

	return peer.Leave(ctx)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func parseGateway(addr string) (chord.PeerDescriptor, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return chord.PeerDescriptor{}, fmt.Errorf("parsing gateway address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return chord.PeerDescriptor{}, fmt.Errorf("parsing gateway port %q: %w", portStr, err)
	}
	id := ring.FromPlaintext(fmt.Sprintf("%s:%d", host, port))
	return chord.PeerDescriptor{ID: id, MaxKey: id, IPAddr: host, Port: port}, nil
}
