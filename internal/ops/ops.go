// Package ops is the operational surface: Prometheus metrics, an
// authenticated admin API over the client registry and a monitoring
// WebSocket. It runs on its own port, separate from the signalling
// endpoint, so it can be firewalled independently.
package ops

import (
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mirrorcast/websignal/internal/config"
	"github.com/mirrorcast/websignal/internal/registry"
	"github.com/mirrorcast/websignal/internal/signalling"
	"github.com/mirrorcast/websignal/internal/utils"
)

// monitorStatusInterval defines how often a connected monitoring socket
// receives a fresh registry snapshot.
const monitorStatusInterval = time.Second * 5

// App wraps the fiber application serving /metrics, /api/admin and the
// monitoring socket for a running signalling server.
type App struct {
	app      *fiber.App
	server   *signalling.Server
	security config.SecurityConfig
}

type statusMessage struct {
	Clients   []registry.ClientInfo `json:"clients"`
	Allocated int                   `json:"allocated"`
	Timestamp int64                 `json:"timestamp"`
}

func New(security config.SecurityConfig, server *signalling.Server) *App {
	a := &App{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		server:   server,
		security: security,
	}
	a.setupRoutes()
	return a
}

// Listen serves the ops surface on addr, blocking until Shutdown.
func (a *App) Listen(addr string) error {
	return a.app.Listen(addr)
}

func (a *App) Shutdown() error {
	return a.app.Shutdown()
}

func (a *App) setupRoutes() {
	a.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	a.setupAdminApi()
	a.setupMonitorSocket()
}

func (a *App) setupAdminApi() {
	a.app.Route("/api/admin", func(router fiber.Router) {
		router.Use(basicauth.New(basicauth.Config{
			Realm: "Forbidden",
			Authorizer: func(user, pass string) bool {
				return a.security.AdminCredential == nil ||
					user == "admin" && pass == *a.security.AdminCredential
			},
		}))

		router.Get("/clients", func(c *fiber.Ctx) error {
			return c.JSON(a.server.Registry().Snapshot())
		})

		router.Post("/clients/:id/disconnect", func(c *fiber.Ctx) error {
			id, err := c.ParamsInt("id")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).SendString("Bad Request")
			}

			client, ok := a.server.Registry().Get(registry.ClientID(id))
			if !ok {
				return c.Status(fiber.StatusNotFound).SendString("Client not found")
			}
			if !client.Alive() {
				return c.Status(fiber.StatusConflict).SendString("Client already disconnected")
			}

			a.server.Registry().Remove(registry.ClientID(id))
			return c.Status(fiber.StatusOK).SendString("Ok")
		})
	})
}

func (a *App) setupMonitorSocket() {
	a.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	a.app.Get("/ws/monitor", websocket.New(func(c *websocket.Conn) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic in /ws/monitor", "err", err)
			}
		}()

		a.listenMonitorSocket(c)
	}))
}

// listenMonitorSocket pushes a registry snapshot to the connected socket
// immediately and then on every interval tick. It blocks until the client
// disconnects; inbound payloads are read and discarded to detect that.
func (a *App) listenMonitorSocket(c *websocket.Conn) {
	remote := c.NetConn().RemoteAddr().String()
	slog.Info("monitor connected", "remote", remote)

	sendStatus := func() {
		snapshot := a.server.Registry().Snapshot()
		status := statusMessage{
			Clients:   snapshot,
			Allocated: len(snapshot),
			Timestamp: time.Now().Unix(),
		}
		if err := c.WriteJSON(status); err != nil {
			slog.Warn("failed to send status", "remote", remote, "err", err)
		}
	}
	sendStatus()
	timer := utils.SetIntervalTimer(monitorStatusInterval, sendStatus)
	defer timer.Stop()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			slog.Info("monitor disconnected", "remote", remote, "err", err)
			return
		}
	}
}
