// Package protocol defines the WebSocket message types for the stride
// demo surfaces. This package is shared between the server and Go-side
// observers, so it stays self-contained: wire structs mirror internal
// state instead of importing it.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Server → Client messages
	TypeFrame MessageType = "frame" // Animation frame snapshot
	TypeState MessageType = "state" // Scene state

	// Client → Server messages
	TypeInput MessageType = "input" // Control axes
	TypePilot MessageType = "pilot" // Engage/disengage the autopilot
	TypeReset MessageType = "reset" // Put the body back at the origin

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Server → Client Message Types
// =============================================================================

// FrameData is one simulation frame. Positions are centimeters,
// angles degrees, speeds cm/s.
type FrameData struct {
	T     float64 `json:"t"`   // scene clock, seconds
	Index uint64  `json:"idx"` // frame counter

	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Yaw float64 `json:"yaw"`

	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`

	Speed        float64 `json:"speed"`     // planar ground speed
	Direction    float64 `json:"direction"` // degrees relative to facing, + right
	Accelerating bool    `json:"accelerating"`
	Lean         float64 `json:"lean"` // body lean, degrees

	BonePitch      float64 `json:"bone_pitch"`
	BoneYaw        float64 `json:"bone_yaw"`
	ProceduralTime float64 `json:"procedural_time"`

	Pose PosePoints `json:"pose"`
}

// PosePoints is the world-space stick figure, [x, y] centimeter pairs.
type PosePoints struct {
	Hip       [2]float64 `json:"hip"`
	SpineTop  [2]float64 `json:"spine_top"`
	Head      [2]float64 `json:"head"`
	LeftHand  [2]float64 `json:"left_hand"`
	RightHand [2]float64 `json:"right_hand"`
	LeftFoot  [2]float64 `json:"left_foot"`
	RightFoot [2]float64 `json:"right_foot"`

	StridePhase float64 `json:"stride_phase"`
}

// SceneState describes the running scene
type SceneState struct {
	Running   bool    `json:"running"`
	Pilot     bool    `json:"pilot"` // autopilot engaged
	RateHz    float64 `json:"rate_hz"`
	Uptime    float64 `json:"uptime_seconds"`
	Frames    uint64  `json:"frames"`
	SessionID string  `json:"session_id,omitempty"` // active recording, if any
}

// =============================================================================
// Client → Server Message Types
// =============================================================================

// InputData carries control axes for the body
type InputData struct {
	Forward float64 `json:"forward"` // -1..1, positive ahead
	Turn    float64 `json:"turn"`    // -1..1, positive right
	Stop    bool    `json:"stop"`    // zero the velocity this frame
}

// PilotData engages or disengages the figure-8 autopilot
type PilotData struct {
	Engaged bool `json:"engaged"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
