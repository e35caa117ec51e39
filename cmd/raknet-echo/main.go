// Command raknet-echo is a minimal demo peer: it binds a RakNet endpoint,
// echoes every payload it receives back to its sender on the reliable
// ordered channel, and exposes Prometheus metrics over HTTP.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/brackwater/raknet/pkg/logger"
	"github.com/brackwater/raknet/pkg/raknet"
)

const echoChannel = 0

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Fatal(nil, "%v", err)
	}
}

func newRootCommand() *cobra.Command {
	var (
		addr        string
		metricsAddr string
		pingResp    string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "raknet-echo",
		Short: "Bind a RakNet peer and echo back everything it receives",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetLevel(logLevel)
			return run(cmd.Context(), addr, metricsAddr, pingResp)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", ":19132", "local UDP address to bind")
	flags.StringVar(&metricsAddr, "metrics-addr", ":9132", "address to serve /metrics on")
	flags.StringVar(&pingResp, "ping-response", "raknet-echo", "payload attached to unconnected pong replies")
	flags.StringVar(&logLevel, "log-level", "info", "debug, info, warn, or error")

	return cmd
}

func run(ctx context.Context, addr, metricsAddr, pingResp string) error {
	logger.Banner("raknet-echo", "0.1.0")

	cfg, err := raknet.LoadConfig(ctx)
	if err != nil {
		return err
	}

	metrics := raknet.NewMetrics("raknet_echo")
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	peer, err := raknet.Bind(addr, cfg, metrics)
	if err != nil {
		return err
	}
	peer.SetOfflinePingResponse([]byte(pingResp))
	peer.StartProcessing(cfg.ProcessInterval)

	logger.Section("listening")
	logger.Info(logger.Fields{"addr": addr, "guid": peer.GUID()}, "peer bound and processing")

	httpServer := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(nil, "metrics server stopped: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go echoLoop(peer, done)

	<-sigCh
	logger.Info(nil, "shutting down")
	close(done)
	peer.StopProcessing()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// echoLoop reads events off the peer until done is closed, replying to every
// EventPacket with its own payload, reliable and in order.
func echoLoop(peer *raknet.Peer, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev := <-peer.EventReceiver():
			switch ev.Kind {
			case raknet.EventIncomingConnection:
				logger.Success(logger.Fields{"addr": ev.RemoteAddr, "guid": ev.GUID}, "connection established")
			case raknet.EventPacket:
				logger.Debug(logger.Fields{"addr": ev.RemoteAddr, "bytes": len(ev.Payload)}, "echoing payload")
				peer.Send(ev.RemoteAddr, raknet.PriorityMedium, raknet.ReliableOrdered, echoChannel, ev.Payload)
			case raknet.EventDisconnected:
				logger.Info(logger.Fields{"addr": ev.RemoteAddr}, "connection dropped")
			}
		}
	}
}
