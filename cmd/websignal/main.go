package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/mirrorcast/websignal/internal/api"
	"github.com/mirrorcast/websignal/internal/config"
	"github.com/mirrorcast/websignal/internal/ops"
	"github.com/mirrorcast/websignal/internal/registry"
	"github.com/mirrorcast/websignal/internal/signalling"
)

func main() {
	cmd := &cli.Command{
		Name:  "websignal",
		Usage: "WebSocket signalling endpoint for a WebRTC media source",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-dir",
				Value: "conf",
				Usage: "directory holding server/ice/security/ops config files",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "listen host, overrides the configured one",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port, overrides the configured one",
			},
			&cli.IntFlag{
				Name:  "ops-port",
				Usage: "metrics/admin port, overrides the configured one",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))

	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	cfg := manager.Get()
	manager.SetUpdateCallback(func(updated *config.AppConfig) {
		if updated.Server != cfg.Server {
			slog.Warn("server section changed, restart to apply")
		}
	})

	if host := cmd.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Server.Port = int(port)
	}
	if opsPort := cmd.Int("ops-port"); opsPort != 0 {
		cfg.Ops.Port = int(opsPort)
	}

	iceCfg := cfg.ICE.WebRTCConfiguration()
	slog.Info("ice configuration for the media engine", "servers", len(iceCfg.ICEServers))

	server, err := signalling.NewServer(cfg.Server, loggingHandlers())
	if err != nil {
		return err
	}

	var opsApp *ops.App
	if !cfg.Ops.Disabled {
		opsApp = ops.New(cfg.Security, server)
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Ops.Port))
		go func() {
			if err := opsApp.Listen(addr); err != nil {
				slog.Error("ops server stopped", "err", err)
			}
		}()
		slog.Info("ops server listening", "addr", addr)
	}

	server.Start()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	slog.Info("shutting down")

	if opsApp != nil {
		if err := opsApp.Shutdown(); err != nil {
			slog.Error("ops shutdown failed", "err", err)
		}
	}
	server.Stop()
	server.Wait()
	return nil
}

// loggingHandlers stands in for the media engine: it decodes signalling
// payloads and logs them. A real deployment replaces these callbacks with
// the engine's peer connection management.
func loggingHandlers() registry.Handlers {
	return registry.Handlers{
		OnConnected: func(id registry.ClientID) {
			slog.Info("client connected", "client", id)
		},
		OnDisconnected: func(id registry.ClientID) {
			slog.Info("client disconnected", "client", id)
		},
		OnMessage: func(id registry.ClientID, payload []byte) {
			msg, err := api.Decode(payload)
			if err != nil {
				slog.Warn("undecodable signalling payload", "client", id, "err", err)
				return
			}
			slog.Info("signalling message", "client", id, "type", msg.Type)
		},
		OnError: func(msg string) {
			slog.Warn("server error", "msg", msg)
		},
	}
}
