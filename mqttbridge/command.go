package mqttbridge

// CommandType identifies a command accepted from an external consumer
// over the command topic (spec.md §6's observer interface is read-only;
// this is the one write path the core exposes, grounded on the
// teacher's common.ServerCommand).
type CommandType string

// ClearDTCs instructs the core to mark every stored fault inactive
// (spec.md §4.7's clear_active operation); the fault history itself is
// kept.
const ClearDTCs CommandType = "clear_dtcs"

// ServerCommand is a command message received on the command topic.
type ServerCommand struct {
	Type CommandType `json:"type"`
}

// CommandAck acknowledges a received command.
type CommandAck struct {
	Type    CommandType `json:"type"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}
