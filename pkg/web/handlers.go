package web

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/strideworks/go-stride/pkg/character"
	"github.com/strideworks/go-stride/pkg/hub"
	"github.com/strideworks/go-stride/pkg/protocol"
	"github.com/strideworks/go-stride/pkg/report"
	"github.com/strideworks/go-stride/pkg/session"
)

// handleStatus returns the scene state and loop counters
func (s *Server) handleStatus(c *fiber.Ctx) error {
	status := fiber.Map{
		"scene":  s.scene.State(),
		"loop":   s.scene.Stats(),
		"stream": s.frames.Stats(),
	}
	if s.feed != nil {
		status["feed"] = s.feed.GetStats()
	}
	return c.JSON(status)
}

// handleConfig returns the assembled scene configuration
func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(s.scene.Config())
}

// handleListSessions returns the recorded sessions
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(503).JSON(fiber.Map{
			"error": "session store not configured",
		})
	}

	sessions, err := s.store.ListSessions()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// handleSessionFrames returns one recorded session with its frames
func (s *Server) handleSessionFrames(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(503).JSON(fiber.Map{
			"error": "session store not configured",
		})
	}

	id := c.Params("id")
	sess, err := s.store.GetSession(id)
	if errors.Is(err, session.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "session not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	frames, err := s.store.LoadFrames(id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"session": sess,
		"frames":  frames,
	})
}

// handleCharts renders the chart page for the scene history, or for a
// recorded session when ?session=<id> is given.
func (s *Server) handleCharts(c *fiber.Ctx) error {
	var frames []protocol.FrameData
	title := "Live History"

	if id := c.Query("session"); id != "" {
		if s.store == nil {
			return c.Status(503).JSON(fiber.Map{
				"error": "session store not configured",
			})
		}
		sess, err := s.store.GetSession(id)
		if errors.Is(err, session.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		frames, err = s.store.LoadFrames(id)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		title = fmt.Sprintf("Session %s", sess.Label)
	} else {
		frames = s.scene.History()
	}

	if len(frames) == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "no frames to chart"})
	}

	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, title, frames); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// handleFramesWS streams frames to a browser client. The connection
// is primed with the scene state and the latest frame, then fed by
// the hub until it closes.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	if msg, err := protocol.NewStateMessage(s.scene.State()); err == nil {
		if data, err := msg.Bytes(); err == nil {
			c.WriteMessage(websocket.TextMessage, data)
		}
	}
	if f, ok := s.scene.Latest(); ok {
		if msg, err := protocol.NewFrameMessage(f); err == nil {
			if data, err := msg.Bytes(); err == nil {
				c.WriteMessage(websocket.TextMessage, data)
			}
		}
	}

	client := hub.NewClient(s.frames, c)
	client.Run() // Blocks until connection closes
}

// handleControlWS handles the bidirectional control connection
func (s *Server) handleControlWS(c *websocket.Conn) {
	// Send current state on connect
	s.writeState(c)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}

		switch msg.Type {
		case protocol.TypeInput:
			if in, err := msg.GetInputData(); err == nil {
				s.scene.SetInput(character.Input{
					Forward: in.Forward,
					Turn:    in.Turn,
					Stop:    in.Stop,
				})
			}

		case protocol.TypePilot:
			if pilot, err := msg.GetPilotData(); err == nil {
				s.scene.EngagePilot(pilot.Engaged)
				s.writeState(c)
			}

		case protocol.TypeReset:
			s.scene.Reset()
			s.writeState(c)

		case protocol.TypePing:
			if pong, err := protocol.NewPongMessage("", msg.Timestamp, time.Now().UnixMilli()); err == nil {
				s.writeMsg(c, pong)
			}
		}
	}
}

// writeState sends the current scene state on the control connection
func (s *Server) writeState(c *websocket.Conn) {
	if msg, err := protocol.NewStateMessage(s.scene.State()); err == nil {
		s.writeMsg(c, msg)
	}
}

func (s *Server) writeMsg(c *websocket.Conn, msg *protocol.Message) {
	if data, err := msg.Bytes(); err == nil {
		c.WriteMessage(websocket.TextMessage, data)
	}
}
