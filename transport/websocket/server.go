package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-peer/internal/usecase"
)

const (
	writeWait   = 10 * time.Second
	sendBufSize = 16
)

type peer interface {
	CreateRoom(ctx context.Context) (string, error)
	JoinRoom(ctx context.Context, roomID string) (string, error)
	Move(ctx context.Context, cell int) error
	Continue(ctx context.Context) error
	Decline(ctx context.Context) error
	Leave(ctx context.Context) error
	Snapshot(ctx context.Context) (usecase.Snapshot, error)
	Subscribe() (<-chan usecase.Snapshot, func())
}

type handlerFunc func(ctx context.Context, msg *Message, conn *connection) error

// Server - bridges the browser UI and the local peer.
type Server struct {
	logger   *slog.Logger
	peer     peer
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, peer peer) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		peer:   peer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionRoomCreate] = server.handleCreateRoom
	server.handlers[actionRoomJoin] = server.handleJoinRoom
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionRoundContinue] = server.handleRoundContinue
	server.handlers[actionRoundEnd] = server.handleRoundEnd
	server.handlers[actionRoomLeave] = server.handleRoomLeave

	return server
}

// Handle - upgrades the request to WebSocket and serves it until the client goes away.
func (that *Server) Handle(ctx *gin.Context) {
	log := that.logger.With("method", "Handle")

	ws, err := that.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// the upgrader has already replied with an error status
		log.Error("failed to upgrade to websocket", "error", err)
		return
	}

	conn := newConnection(ws)
	defer conn.close()

	log.Info("WebSocket connection established", "remote", ws.RemoteAddr().String())

	go conn.writeLoop(that.logger)

	snapshots, cancel := that.peer.Subscribe()
	defer cancel()

	go that.forwardSnapshots(conn, snapshots)

	reqCtx := ctx.Request.Context()

	// the UI sees the current state right away, not just after the next change
	if snap, err := that.peer.Snapshot(reqCtx); err == nil {
		that.sendState(conn, snap)
	}

	if err = that.handleMessages(reqCtx, conn); err != nil {
		log.Info("WebSocket connection closed", "reason", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := conn.ws.ReadJSON(&message); err != nil {
			if isDecodeError(err) {
				log.Error("failed to unmarshal message", "error", err)
				continue
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err := that.sendErrorResponse(conn, message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err := handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// isDecodeError - the frame arrived but its JSON is bad. ReadJSON reports an empty or truncated
// document as io.ErrUnexpectedEOF; a closed socket comes back as a *websocket.CloseError instead.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (that *Server) forwardSnapshots(conn *connection, snapshots <-chan usecase.Snapshot) {
	for {
		select {
		case <-conn.done:
			return
		case snap := <-snapshots:
			that.sendState(conn, snap)
		}
	}
}

func (that *Server) sendState(conn *connection, snap usecase.Snapshot) {
	msg, err := stateMessage(snap)
	if err != nil {
		that.logger.Error("failed to marshal snapshot", "error", err)
		return
	}

	conn.send(msg)
}

func (that *Server) sendMessage(conn *connection, action string, payload Payload) error {
	msg, err := newMessage(action, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if !conn.send(msg) {
		return fmt.Errorf("connection closed before %s was sent", action)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *connection, action, text string) error {
	that.logger.Debug("sending error to client", "action", action, "error", text)

	return that.sendMessage(conn, actionError, Payload{Error: text})
}

// connection - one UI client. gorilla connections allow a single writer, so every frame goes through out.
type connection struct {
	ws   *websocket.Conn
	out  chan Message
	done chan struct{}
	once sync.Once
}

func newConnection(ws *websocket.Conn) *connection {
	return &connection{
		ws:   ws,
		out:  make(chan Message, sendBufSize),
		done: make(chan struct{}),
	}
}

func (that *connection) send(msg Message) bool {
	select {
	case that.out <- msg:
		return true
	case <-that.done:
		return false
	}
}

func (that *connection) writeLoop(logger *slog.Logger) {
	for {
		select {
		case <-that.done:
			return
		case msg := <-that.out:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteJSON(msg); err != nil {
				logger.Error("failed to write message", "method", "writeLoop", "error", err)
				that.close()
				return
			}
		}
	}
}

func (that *connection) close() {
	that.once.Do(func() {
		close(that.done)
		_ = that.ws.Close()
	})
}
