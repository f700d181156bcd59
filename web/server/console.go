package server

import (
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"golang.org/x/net/websocket"
)

// Console message types.
const (
	MessageState = "state"
	MessageFrame = "frame"
	MessageError = "error"
)

// Console command types.
const (
	CommandState     = "state"
	CommandCamera    = "camera"
	CommandThreshold = "threshold"
)

// ConsoleMessage is sent to websocket clients
type ConsoleMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	State     *State      `json:"state,omitempty"`
	Frame     *FrameEvent `json:"frame,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ConsoleCommand is received from websocket clients
type ConsoleCommand struct {
	Type      string        `json:"type"`
	Camera    CameraRequest `json:"camera"`
	Threshold float64       `json:"threshold"`
}

func (s *Server) consoleHandler() http.Handler {
	return websocket.Server{
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()
			s.serveConsole(conn)
		},
	}
}

// serveConsole pushes presented frames to the client and applies its
// commands. Every command is answered with the resulting state.
func (s *Server) serveConsole(conn *websocket.Conn) {
	remote := conn.Request().RemoteAddr
	logs.WithTag("remote", remote).Info("console connected")
	defer logs.WithTag("remote", remote).Info("console disconnected")

	frames, unsubscribe := s.scheduler.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)

	commands := make(chan ConsoleCommand)
	go func() {
		defer close(commands)
		for {
			var cmd ConsoleCommand
			if err := websocket.JSON.Receive(conn, &cmd); err != nil {
				return
			}
			select {
			case commands <- cmd:
			case <-done:
				return
			}
		}
	}()

	if err := s.sendState(conn); err != nil {
		logs.Warn(err)
		return
	}

	for {
		select {
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			if err := s.handleCommand(conn, cmd); err != nil {
				logs.Warn(err)
				return
			}

		case snap, ok := <-frames:
			if !ok {
				return
			}
			event, err := newFrameEvent(snap)
			if err != nil {
				logs.Warn(err)
				continue
			}
			if err := send(conn, ConsoleMessage{Type: MessageFrame, Frame: &event}); err != nil {
				logs.Warn(err)
				return
			}
		}
	}
}

func (s *Server) handleCommand(conn *websocket.Conn, cmd ConsoleCommand) error {
	switch cmd.Type {
	case CommandState:

	case CommandCamera:
		s.applyCamera(cmd.Camera)

	case CommandThreshold:
		s.scheduler.SetThreshold(cmd.Threshold)

	default:
		return send(conn, ConsoleMessage{
			Type:  MessageError,
			Error: "unknown command: " + cmd.Type,
		})
	}

	return s.sendState(conn)
}

func (s *Server) sendState(conn *websocket.Conn) error {
	state := s.state()
	return send(conn, ConsoleMessage{Type: MessageState, State: &state})
}

func send(conn *websocket.Conn, msg ConsoleMessage) error {
	msg.Timestamp = time.Now()
	if err := websocket.JSON.Send(conn, msg); err != nil {
		return errors.New("sending console message failed").
			WithTag("type", msg.Type).
			Wrap(err)
	}
	return nil
}
