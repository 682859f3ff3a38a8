package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultTickInterval はルームの既定のtick間隔 (60Hz) です。
const DefaultTickInterval = time.Second / 60

var ErrRoomBusy = errors.New("room send queue is full")

type Room struct {
	ID       RoomID
	sessions map[SessionID]struct{}

	pubsub      PubSub
	application Application // 外部からアプリケーションロジックを注入できる

	sendCh chan Outgoing

	tickInterval time.Duration
}

func NewRoom(id RoomID, pubsub PubSub, application Application, tickInterval time.Duration) *Room {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return &Room{
		ID:           id,
		sessions:     make(map[SessionID]struct{}),
		pubsub:       pubsub,
		application:  application,
		sendCh:       make(chan Outgoing, 1024),
		tickInterval: tickInterval,
	}
}

func (r *Room) Broadcast(ctx context.Context, data []byte) {
	for sessionID := range r.sessions {
		r.pubsub.Publish(ctx, SessionTopic(sessionID), Message{Data: data})
	}
}

func (r *Room) SendTo(ctx context.Context, sessionID SessionID, data []byte) {
	r.pubsub.Publish(ctx, SessionTopic(sessionID), Message{Data: data})
}

func (r *Room) enqueueSend(ctx context.Context, msg Outgoing) error {
	select {
	case <-ctx.Done():
		return nil
	case r.sendCh <- msg:
		return nil
	default:
		return ErrRoomBusy
	}
}

// Members は参加中のセッション数を返します。tickゴルーチン以外から呼ばないでください。
func (r *Room) Members() int { return len(r.sessions) }

func (r *Room) Run(ctx context.Context) error {
	// room宛のメッセージを購読
	roomTopic := RoomTopic(r.ID)
	msgCh := r.pubsub.Subscribe(roomTopic)
	defer r.pubsub.Unsubscribe(roomTopic, msgCh)

	// room制御用トピックを購読（join/leave）
	ctrlTopic := RoomCtrlTopic(r.ID)
	ctrlCh := r.pubsub.Subscribe(ctrlTopic)
	defer r.pubsub.Unsubscribe(ctrlTopic, ctrlCh)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "room started", "roomID", r.ID, "tick", r.tickInterval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.tick(ctx, ctrlCh, msgCh)
		}
	}
}

func (r *Room) tick(ctx context.Context, ctrlCh, msgCh <-chan Message) {
	// 制御メッセージを処理（join/leave）
CTRL_LOOP:
	for {
		select {
		case ctrl := <-ctrlCh:
			r.handleControlMessage(ctx, ctrl)
		default:
			break CTRL_LOOP
		}
	}
	// 受信メッセージを処理
RECEIVE_LOOP:
	for {
		select {
		case msg := <-msgCh:
			if _, ok := r.sessions[msg.SessionID]; !ok {
				slog.DebugContext(ctx, "room: message from non-member dropped", "sessionID", msg.SessionID)
				continue
			}
			// アプリケーションロジックが担当する
			if err := r.application.HandleMessage(ctx, msg.SessionID, msg.Data); err != nil {
				slog.WarnContext(ctx, "room handle message failed", "sessionID", msg.SessionID, "err", err)
			}
		default:
			break RECEIVE_LOOP
		}
	}
	// 送信するデータがあれば送信する このデータは１フレーム前のデータになる
SEND_LOOP:
	for {
		select {
		case msg := <-r.sendCh:
			r.handleSendMessage(ctx, msg)
		default:
			break SEND_LOOP
		}
	}
	// ApplicationのTick()の戻り値は次のtickで送信する
	for _, out := range r.application.Tick(ctx, r.tickInterval) {
		if err := r.enqueueSend(ctx, out); err != nil {
			slog.WarnContext(ctx, "room: outgoing dropped", "err", err)
		}
	}
}

// handleControlMessage はjoin/leave制御メッセージを処理します。
func (r *Room) handleControlMessage(ctx context.Context, msg Message) {
	frame, err := ParseFrame(msg.Data)
	if err != nil || frame.PayloadHeader.DataType != DataTypeControl {
		slog.WarnContext(ctx, "room: invalid control message", "sessionID", msg.SessionID, "err", err)
		return
	}
	switch ControlSubType(frame.PayloadHeader.SubType) {
	case ControlSubTypeJoin:
		if _, ok := r.sessions[msg.SessionID]; ok {
			return
		}
		if err := r.application.Join(ctx, msg.SessionID); err != nil {
			slog.WarnContext(ctx, "room: join rejected", "sessionID", msg.SessionID, "err", err)
			return
		}
		r.sessions[msg.SessionID] = struct{}{}
		slog.InfoContext(ctx, "room: session joined", "roomID", r.ID, "sessionID", msg.SessionID, "members", len(r.sessions))
	case ControlSubTypeLeave:
		if _, ok := r.sessions[msg.SessionID]; !ok {
			return
		}
		delete(r.sessions, msg.SessionID)
		if err := r.application.Leave(ctx, msg.SessionID); err != nil {
			slog.WarnContext(ctx, "room: leave failed", "sessionID", msg.SessionID, "err", err)
		}
		slog.InfoContext(ctx, "room: session left", "roomID", r.ID, "sessionID", msg.SessionID, "members", len(r.sessions))
	default:
	}
}

func (r *Room) handleSendMessage(ctx context.Context, msg Outgoing) {
	if msg.To.IsZero() {
		r.Broadcast(ctx, msg.Data)
		return
	}
	r.SendTo(ctx, msg.To, msg.Data)
}
