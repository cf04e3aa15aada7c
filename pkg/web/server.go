// Package web provides the real-time dashboard and control API for a
// running scene.
package web

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/strideworks/go-stride/pkg/feed"
	"github.com/strideworks/go-stride/pkg/hub"
	"github.com/strideworks/go-stride/pkg/protocol"
	"github.com/strideworks/go-stride/pkg/scene"
	"github.com/strideworks/go-stride/pkg/session"
)

// Server is the dashboard server. It owns the frame hub; the scene
// and the optional session store are attached from outside.
type Server struct {
	app  *fiber.App
	port string

	scene  *scene.Scene
	frames *hub.Hub
	store  *session.Store
	feed   *feed.Hub
}

// NewServer creates a dashboard server for the scene.
func NewServer(port string, sc *scene.Scene) *Server {
	s := &Server{
		port:   port,
		scene:  sc,
		frames: hub.New("frames"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Stride Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)
	api.Get("/sessions", s.handleListSessions)
	api.Get("/sessions/:id/frames", s.handleSessionFrames)

	// Chart page
	app.Get("/charts", s.handleCharts)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/control", websocket.New(s.handleControlWS))

	// Every completed frame goes to the browser stream, encoded once
	sc.AddListener(func(f protocol.FrameData) {
		msg, err := protocol.NewFrameMessage(f)
		if err != nil {
			return
		}
		data, err := msg.Bytes()
		if err != nil {
			return
		}
		s.frames.Broadcast(data)
	})

	s.app = app
	return s
}

// AttachStore enables the session API. Call before Start.
func (s *Server) AttachStore(store *session.Store) {
	s.store = store
}

// AttachFeed mounts the observer feed endpoints. Call before Start.
func (s *Server) AttachFeed(h *feed.Hub) {
	s.feed = h
	h.RegisterRoutes(s.app)
	h.RegisterAPIRoutes(s.app.Group("/api"))
}

// FrameHub returns the browser stream hub.
func (s *Server) FrameHub() *hub.Hub {
	return s.frames
}

// Start starts the web server
func (s *Server) Start() error {
	fmt.Printf("🌐 Dashboard: http://localhost:%s\n", s.port)

	go s.frames.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			fmt.Printf("⚠️  Web server error: %v\n", err)
		}
	}()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
