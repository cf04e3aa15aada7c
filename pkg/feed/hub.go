// Package feed serves the pose stream to remote Go observers over
// WebSocket and accepts their control messages back. The in-browser
// viewer uses pkg/hub instead; this hub tracks viewers by id so the
// API can report who is watching.
package feed

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/strideworks/go-stride/pkg/protocol"
)

// writeWait bounds one viewer write so a stalled connection cannot
// hold up the broadcast.
const writeWait = 10 * time.Second

// ViewerConnection represents a connected observer
type ViewerConnection struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send sends a message to the viewer
func (v *ViewerConnection) Send(msg *protocol.Message) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	v.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return v.Conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages WebSocket connections from observers
type Hub struct {
	mu      sync.RWMutex
	viewers map[string]*ViewerConnection
	debug   bool

	// Callbacks
	onInput func(viewerID string, in *protocol.InputData)
	onPilot func(viewerID string, pilot *protocol.PilotData)
	onReset func(viewerID string)

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	framesSent       atomic.Uint64
}

// NewHub creates a new viewer hub
func NewHub(debug bool) *Hub {
	return &Hub{
		viewers: make(map[string]*ViewerConnection),
		debug:   debug,
	}
}

// OnInput sets the callback for incoming control axes
func (h *Hub) OnInput(callback func(viewerID string, in *protocol.InputData)) {
	h.mu.Lock()
	h.onInput = callback
	h.mu.Unlock()
}

// OnPilot sets the callback for autopilot engage/disengage requests
func (h *Hub) OnPilot(callback func(viewerID string, pilot *protocol.PilotData)) {
	h.mu.Lock()
	h.onPilot = callback
	h.mu.Unlock()
}

// OnReset sets the callback for reset requests
func (h *Hub) OnReset(callback func(viewerID string)) {
	h.mu.Lock()
	h.onReset = callback
	h.mu.Unlock()
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Observer connection endpoint
	app.Get("/ws/feed", websocket.New(h.handleViewer))
	app.Get("/ws/feed/:id", websocket.New(h.handleViewer))
}

// handleViewer handles an observer WebSocket connection
func (h *Hub) handleViewer(c *websocket.Conn) {
	// Get viewer ID from path or generate one
	viewerID := c.Params("id")
	if viewerID == "" {
		viewerID = uuid.New().String()
	}

	viewer := &ViewerConnection{
		ID:        viewerID,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	// Register viewer
	h.mu.Lock()
	h.viewers[viewerID] = viewer
	viewerCount := len(h.viewers)
	h.mu.Unlock()

	if h.debug {
		log.Printf("👀 Viewer connected: %s (total: %d)", viewerID, viewerCount)
	}

	defer func() {
		h.mu.Lock()
		delete(h.viewers, viewerID)
		viewerCount := len(h.viewers)
		h.mu.Unlock()

		if h.debug {
			log.Printf("👀 Viewer disconnected: %s (total: %d)", viewerID, viewerCount)
		}
	}()

	// Read loop
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if h.debug {
				log.Printf("⚠️  Viewer %s read error: %v", viewerID, err)
			}
			return
		}

		viewer.mu.Lock()
		viewer.LastSeen = time.Now()
		viewer.mu.Unlock()

		h.messagesReceived.Add(1)
		h.handleMessage(viewerID, data)
	}
}

// handleMessage processes an incoming message from a viewer
func (h *Hub) handleMessage(viewerID string, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		if h.debug {
			log.Printf("⚠️  Parse error from %s: %v", viewerID, err)
		}
		return
	}

	h.mu.RLock()
	inputCb := h.onInput
	pilotCb := h.onPilot
	resetCb := h.onReset
	h.mu.RUnlock()

	switch msg.Type {
	case protocol.TypeInput:
		if inputCb != nil {
			in, err := msg.GetInputData()
			if err == nil {
				inputCb(viewerID, in)
			}
		}

	case protocol.TypePilot:
		if pilotCb != nil {
			pilot, err := msg.GetPilotData()
			if err == nil {
				pilotCb(viewerID, pilot)
			}
		}

	case protocol.TypeReset:
		if resetCb != nil {
			resetCb(viewerID)
		}

	case protocol.TypePing:
		// Respond with pong
		h.SendPong(viewerID, msg.Timestamp)
	}
}

// Listen broadcasts one frame to every viewer. Attach it to the scene
// with AddListener.
func (h *Hub) Listen(f protocol.FrameData) {
	h.mu.RLock()
	count := len(h.viewers)
	h.mu.RUnlock()
	if count == 0 {
		return
	}

	msg, err := protocol.NewFrameMessage(f)
	if err != nil {
		return
	}
	h.framesSent.Add(uint64(count))
	h.Broadcast(msg)
}

// SendState sends the scene state to a specific viewer
func (h *Hub) SendState(viewerID string, state protocol.SceneState) error {
	msg, err := protocol.NewStateMessage(state)
	if err != nil {
		return err
	}
	return h.sendToViewer(viewerID, msg)
}

// SendPong sends a pong response to a viewer
func (h *Hub) SendPong(viewerID string, pingTS int64) error {
	msg, err := protocol.NewPongMessage("", pingTS, time.Now().UnixMilli())
	if err != nil {
		return err
	}
	return h.sendToViewer(viewerID, msg)
}

// sendToViewer sends a message to a specific viewer
func (h *Hub) sendToViewer(viewerID string, msg *protocol.Message) error {
	h.mu.RLock()
	viewer, ok := h.viewers[viewerID]
	h.mu.RUnlock()

	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "viewer not connected")
	}

	h.messagesSent.Add(1)
	return viewer.Send(msg)
}

// Broadcast sends a message to all connected viewers
func (h *Hub) Broadcast(msg *protocol.Message) {
	h.mu.RLock()
	viewers := make([]*ViewerConnection, 0, len(h.viewers))
	for _, v := range h.viewers {
		viewers = append(viewers, v)
	}
	h.mu.RUnlock()

	for _, viewer := range viewers {
		h.messagesSent.Add(1)
		if err := viewer.Send(msg); err != nil {
			if h.debug {
				log.Printf("⚠️  Broadcast error to %s: %v", viewer.ID, err)
			}
		}
	}
}

// GetViewer returns a viewer connection by ID
func (h *Hub) GetViewer(viewerID string) *ViewerConnection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.viewers[viewerID]
}

// ViewerCount returns the number of connected viewers
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// Stats contains hub statistics
type Stats struct {
	ViewerCount      int    `json:"viewer_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	FramesSent       uint64 `json:"frames_sent"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		ViewerCount:      h.ViewerCount(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		FramesSent:       h.framesSent.Load(),
	}
}

// ViewerInfo contains info about a connected viewer
type ViewerInfo struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// GetViewerInfos returns info about all connected viewers
func (h *Hub) GetViewerInfos() []ViewerInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]ViewerInfo, 0, len(h.viewers))
	for _, v := range h.viewers {
		v.mu.Lock()
		infos = append(infos, ViewerInfo{
			ID:        v.ID,
			Connected: v.Connected,
			LastSeen:  v.LastSeen,
		})
		v.mu.Unlock()
	}
	return infos
}

// RegisterAPIRoutes registers API routes for viewer management
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	viewers := api.Group("/viewers")

	// List connected viewers
	viewers.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"viewers": h.GetViewerInfos(),
			"count":   h.ViewerCount(),
		})
	})

	// Get hub stats
	viewers.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})
}
