package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewFrameMessage creates a frame message from a frame snapshot
func NewFrameMessage(frame FrameData) (*Message, error) {
	return NewMessage(TypeFrame, frame)
}

// NewStateMessage creates a scene state message
func NewStateMessage(state SceneState) (*Message, error) {
	return NewMessage(TypeState, state)
}

// NewInputMessage creates an input message from control axes
func NewInputMessage(forward, turn float64, stop bool) (*Message, error) {
	return NewMessage(TypeInput, InputData{
		Forward: forward,
		Turn:    turn,
		Stop:    stop,
	})
}

// NewPilotMessage creates an autopilot engage/disengage message
func NewPilotMessage(engaged bool) (*Message, error) {
	return NewMessage(TypePilot, PilotData{Engaged: engaged})
}

// NewResetMessage creates a reset message (no payload)
func NewResetMessage() (*Message, error) {
	return NewMessage(TypeReset, nil)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetFrameData extracts a frame snapshot from a message
func (m *Message) GetFrameData() (*FrameData, error) {
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSceneState extracts scene state from a message
func (m *Message) GetSceneState() (*SceneState, error) {
	var data SceneState
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetInputData extracts control axes from a message
func (m *Message) GetInputData() (*InputData, error) {
	var data InputData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPilotData extracts autopilot state from a message
func (m *Message) GetPilotData() (*PilotData, error) {
	var data PilotData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
