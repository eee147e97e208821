package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgType string, payload interface{})
	BroadcastToPlayer(roomCode, playerID string, msgType string, payload interface{})
	DisconnectRoom(roomCode string)
}

// NopBroadcaster discards everything; used before the hub is attached
// and in tests.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastToRoom(string, string, interface{})           {}
func (NopBroadcaster) BroadcastToPlayer(string, string, string, interface{}) {}
func (NopBroadcaster) DisconnectRoom(string)                                 {}
