package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-peer/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-peer/internal/entity"
	"github.com/rocketscienceinc/tictactoe-peer/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-peer/internal/pubsub"
	"github.com/rocketscienceinc/tictactoe-peer/internal/tictactoe"
)

var ErrPeerStopped = errors.New("peer is stopped")

const roomCapacity = 2

type PeerOption func(*Peer)

// WithRoomIDGenerator - replaces the random room id source.
func WithRoomIDGenerator(gen func() string) PeerOption {
	return func(p *Peer) {
		p.newRoomID = gen
	}
}

// WithChannelPrefixes - names of the lobby and game channels are prefix + room id.
func WithChannelPrefixes(lobby, game string) PeerOption {
	return func(p *Peer) {
		p.lobbyPrefix = lobby
		p.gamePrefix = game
	}
}

type command struct {
	ctx   context.Context
	run   func(ctx context.Context) error
	reply chan error
}

// Peer - one player's side of the game. All state below the commands channel is owned by Run.
type Peer struct {
	logger *slog.Logger
	broker pubsub.Broker

	lobbyPrefix string
	gamePrefix  string
	newRoomID   func() string

	commands chan command
	stopped  chan struct{}

	session  *entity.Session
	playing  bool
	state    tictactoe.State
	prompt   string
	alert    string
	lobbySub pubsub.Subscription
	gameSub  pubsub.Subscription

	observersMu sync.Mutex
	observers   map[chan Snapshot]struct{}
}

func NewPeer(logger *slog.Logger, broker pubsub.Broker, opts ...PeerOption) *Peer {
	peer := &Peer{
		logger: logger.With("component", "peer"),
		broker: broker,

		lobbyPrefix: "tictactoelobby--",
		gamePrefix:  "tictactoegame--",
		newRoomID:   pkg.GenerateRoomID,

		commands:  make(chan command),
		stopped:   make(chan struct{}),
		observers: make(map[chan Snapshot]struct{}),
	}

	for _, opt := range opts {
		opt(peer)
	}

	return peer
}

// Run - processes UI commands and inbound messages one at a time until ctx is done.
func (that *Peer) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	defer close(that.stopped)
	defer that.endSession()

	for {
		select {
		case <-ctx.Done():
			log.Info("peer stopped")
			return nil

		case cmd := <-that.commands:
			cmd.reply <- cmd.run(cmd.ctx)

		case msg, ok := <-messages(that.lobbySub):
			if !ok {
				log.Warn("lobby subscription closed")
				that.lobbySub = nil
				continue
			}
			that.handleLobbyMessage(ctx, msg)

		case msg, ok := <-messages(that.gameSub):
			if !ok {
				log.Warn("game subscription closed")
				that.gameSub = nil
				continue
			}
			that.handleGameMessage(ctx, msg)
		}

		that.notify()
	}
}

// messages - a nil subscription yields a nil channel, which select never picks.
func messages(sub pubsub.Subscription) <-chan pubsub.Message {
	if sub == nil {
		return nil
	}
	return sub.Messages()
}

// exec - runs fn on the Run goroutine and waits for its result.
func (that *Peer) exec(ctx context.Context, fn func(ctx context.Context) error) error {
	cmd := command{ctx: ctx, run: fn, reply: make(chan error, 1)}

	select {
	case that.commands <- cmd:
	case <-that.stopped:
		return ErrPeerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateRoom - opens a lobby and makes the local player the initiator playing X.
func (that *Peer) CreateRoom(ctx context.Context) (string, error) {
	var roomID string

	err := that.exec(ctx, func(ctx context.Context) error {
		log := that.logger.With("method", "CreateRoom")

		if that.session != nil {
			return apperror.ErrSessionActive
		}

		session := entity.NewSession(that.newRoomID(), that.lobbyPrefix, that.gamePrefix, true)

		sub, err := that.broker.Subscribe(ctx, session.LobbyChannel)
		if err != nil {
			log.Error("failed to subscribe to lobby", "channel", session.LobbyChannel, "error", err)
			return fmt.Errorf("failed to open lobby: %w", err)
		}

		that.startSession(session, sub, nil)
		roomID = session.RoomID

		log.Info("room created", "roomID", roomID)

		return nil
	})

	return roomID, err
}

// JoinRoom - enters the lobby of roomID as the second player, who plays O.
func (that *Peer) JoinRoom(ctx context.Context, roomID string) (string, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return "", apperror.ErrInvalidRoomID
	}

	var piece string

	err := that.exec(ctx, func(ctx context.Context) error {
		log := that.logger.With("method", "JoinRoom", "roomID", roomID)

		if that.session != nil {
			return apperror.ErrSessionActive
		}

		session := entity.NewSession(roomID, that.lobbyPrefix, that.gamePrefix, false)

		occupancy, err := that.broker.Occupancy(ctx, session.LobbyChannel)
		if err != nil {
			log.Error("failed to check lobby occupancy", "error", err)
			return fmt.Errorf("failed to check room: %w", err)
		}

		if occupancy >= roomCapacity {
			that.alert = apperror.ErrRoomFull.Error()
			log.Info("room is full", "occupancy", occupancy)
			return fmt.Errorf("room %s: %w", roomID, apperror.ErrRoomFull)
		}

		lobbySub, err := that.broker.Subscribe(ctx, session.LobbyChannel)
		if err != nil {
			log.Error("failed to subscribe to lobby", "error", err)
			return fmt.Errorf("failed to enter lobby: %w", err)
		}

		// the joiner listens on the game channel before announcing itself, so X's first move can't be missed
		gameSub, err := that.broker.Subscribe(ctx, session.GameChannel)
		if err != nil {
			log.Error("failed to subscribe to game", "error", err)
			that.closeSubscription(lobbySub)
			return fmt.Errorf("failed to open game channel: %w", err)
		}

		if err = that.publish(ctx, session.LobbyChannel, entity.LobbyMessage{NotRoomCreator: true}); err != nil {
			log.Error("failed to announce presence", "error", err)
			that.closeSubscription(gameSub)
			that.closeSubscription(lobbySub)
			return fmt.Errorf("failed to announce presence: %w", err)
		}

		that.startSession(session, lobbySub, gameSub)
		that.playing = true
		piece = session.Piece

		log.Info("joined room", "piece", piece)

		return nil
	})

	return piece, err
}

// Move - the local player clicks a cell. Moves that are not allowed are ignored.
func (that *Peer) Move(ctx context.Context, cell int) error {
	return that.exec(ctx, func(ctx context.Context) error {
		if !that.playing {
			return apperror.ErrNoSession
		}

		if err := that.apply(ctx, tictactoe.LocalMove{Cell: cell}); err != nil {
			that.logger.Debug("move ignored", "method", "Move", "cell", cell, "reason", err)
		}

		return nil
	})
}

// Continue - the initiator starts a new round once the current one is over.
func (that *Peer) Continue(ctx context.Context) error {
	return that.decide(ctx, tictactoe.Continue{})
}

// Decline - the initiator ends the session once the current round is over.
func (that *Peer) Decline(ctx context.Context) error {
	return that.decide(ctx, tictactoe.Decline{})
}

func (that *Peer) decide(ctx context.Context, event tictactoe.Event) error {
	return that.exec(ctx, func(ctx context.Context) error {
		if !that.playing {
			return apperror.ErrNoSession
		}

		return that.apply(ctx, event)
	})
}

// Leave - tells the opponent the session is over and drops it. The notice goes on the lobby
// channel too, since the initiator may not be listening on the game channel yet.
func (that *Peer) Leave(ctx context.Context) error {
	return that.exec(ctx, func(ctx context.Context) error {
		log := that.logger.With("method", "Leave")

		if that.session == nil {
			return apperror.ErrNoSession
		}

		if that.playing {
			if err := that.publish(ctx, that.session.GameChannel, entity.GameMessage{EndGame: true}); err != nil {
				log.Error("failed to publish end of game", "channel", that.session.GameChannel, "error", err)
			}
		}

		if err := that.publish(ctx, that.session.LobbyChannel, entity.LobbyMessage{EndGame: true}); err != nil {
			log.Error("failed to publish end of game", "channel", that.session.LobbyChannel, "error", err)
		}

		that.endSession()

		return nil
	})
}

// Snapshot - current view of the peer.
func (that *Peer) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	err := that.exec(ctx, func(context.Context) error {
		snap = that.snapshot()
		return nil
	})

	return snap, err
}

// Subscribe - returns a channel that always holds the latest snapshot, and a function to stop receiving.
func (that *Peer) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	that.observersMu.Lock()
	that.observers[ch] = struct{}{}
	that.observersMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			that.observersMu.Lock()
			delete(that.observers, ch)
			that.observersMu.Unlock()
		})
	}

	return ch, cancel
}

func (that *Peer) notify() {
	snap := that.snapshot()

	that.observersMu.Lock()
	defer that.observersMu.Unlock()

	for ch := range that.observers {
		// only notify sends, so after draining there is room for the new value
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (that *Peer) handleLobbyMessage(ctx context.Context, msg pubsub.Message) {
	log := that.logger.With("method", "handleLobbyMessage", "channel", msg.Channel)

	lobbyMsg, err := entity.DecodeLobbyMessage(msg.Payload)
	if err != nil {
		log.Warn("dropping lobby message", "error", err)
		return
	}

	if that.session == nil {
		return
	}

	if lobbyMsg.EndGame {
		log.Info("opponent left the room", "roomID", that.session.RoomID)
		that.endSession()
		return
	}

	if !lobbyMsg.NotRoomCreator || that.playing {
		return
	}

	if that.gameSub == nil {
		sub, err := that.broker.Subscribe(ctx, that.session.GameChannel)
		if err != nil {
			log.Error("failed to subscribe to game", "channel", that.session.GameChannel, "error", err)
			return
		}
		that.gameSub = sub
	}

	that.playing = true
	that.state = tictactoe.NewState(that.session.Piece, that.session.IsInitiator)

	log.Info("opponent joined, game started", "roomID", that.session.RoomID, "piece", that.session.Piece)
}

func (that *Peer) handleGameMessage(ctx context.Context, msg pubsub.Message) {
	log := that.logger.With("method", "handleGameMessage", "channel", msg.Channel)

	if !that.playing {
		return
	}

	gameMsg, err := entity.DecodeGameMessage(msg.Payload)
	if err != nil {
		log.Warn("dropping game message", "error", err)
		return
	}

	var event tictactoe.Event
	switch gameMsg.Kind() {
	case entity.KindMove:
		event = tictactoe.RemoteMove{Message: gameMsg}
	case entity.KindReset:
		event = tictactoe.ResetReceived{}
	case entity.KindEndGame:
		event = tictactoe.EndReceived{}
	default:
		return
	}

	if err = that.apply(ctx, event); err != nil {
		log.Debug("message ignored", "error", err)
	}
}

// apply - runs the round state machine and carries out its effects.
func (that *Peer) apply(ctx context.Context, event tictactoe.Event) error {
	log := that.logger.With("method", "apply")

	next, effects, err := tictactoe.Transition(that.state, event)
	if err != nil {
		return err
	}

	that.state = next

	if _, ok := event.(tictactoe.ResetReceived); ok {
		that.prompt = ""
		log.Info("new round", "scoreX", next.Scores.X, "scoreO", next.Scores.O)
	}

	for _, effect := range effects {
		switch eff := effect.(type) {
		case tictactoe.Publish:
			if err = that.publish(ctx, that.session.GameChannel, eff.Message); err != nil {
				log.Error("failed to publish game message", "error", err)
			}
		case tictactoe.RoundOver:
			that.prompt = eff.Prompt
			log.Info("round over",
				"winner", eff.Winner,
				"draw", next.Round.IsDraw(),
				"board", next.Round.Board.String(),
				"scoreX", next.Scores.X,
				"scoreO", next.Scores.O,
			)
		case tictactoe.EndSession:
			log.Info("game ended")
			that.endSession()
		}
	}

	return nil
}

func (that *Peer) publish(ctx context.Context, channel string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err = that.broker.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (that *Peer) startSession(session *entity.Session, lobbySub, gameSub pubsub.Subscription) {
	that.session = session
	that.lobbySub = lobbySub
	that.gameSub = gameSub
	that.playing = false
	that.state = tictactoe.NewState(session.Piece, session.IsInitiator)
	that.prompt = ""
	that.alert = ""
}

// endSession - unsubscribes from both channels without waiting and forgets the session and its score.
func (that *Peer) endSession() {
	that.closeSubscription(that.lobbySub)
	that.closeSubscription(that.gameSub)

	that.session = nil
	that.lobbySub = nil
	that.gameSub = nil
	that.playing = false
	that.state = tictactoe.State{}
	that.prompt = ""
}

func (that *Peer) closeSubscription(sub pubsub.Subscription) {
	if sub == nil {
		return
	}

	if err := sub.Close(); err != nil && !errors.Is(err, pubsub.ErrSubscriptionClosed) {
		that.logger.Error("failed to unsubscribe", "channel", sub.Channel(), "error", err)
	}
}
