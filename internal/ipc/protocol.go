// Package ipc carries control requests between CLI invocations and
// the running daemon over a loopback socket. Binding the fixed port
// doubles as the single-instance guard.
package ipc

import (
	"github.com/kward/duskmon/internal/sched"
)

// Port is the fixed loopback port. A second daemon instance fails to
// bind it and exits instead.
const Port = 19876

// Request operations.
const (
	OpStatus   = "status"
	OpReset    = "reset"
	OpBlank    = "blank"
	OpToggle   = "toggle"
	OpSchedule = "schedule"
	OpRefresh  = "refresh"
	OpArrange  = "arrange"
	OpInterval = "interval"
)

// Arrange modes.
const (
	ArrangeDuplicate = "duplicate"
	ArrangeExtend    = "extend"
)

// Request is one newline-delimited JSON control message.
type Request struct {
	Op      string `json:"op"`
	Key     string `json:"key,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
}

// Response is the daemon's reply.
type Response struct {
	OK       bool                  `json:"ok"`
	Error    string                `json:"error,omitempty"`
	Enabled  *bool                 `json:"enabled,omitempty"`
	Interval int                   `json:"interval,omitempty"`
	Monitors []sched.MonitorStatus `json:"monitors,omitempty"`
}

// Fail builds an error response.
func Fail(err error) Response {
	return Response{Error: err.Error()}
}

// Handler processes one request from a control client.
type Handler interface {
	Handle(req Request) Response
}
