package gameplay

import (
	"context"
	"log/slog"
	"sync"
)

// Field は複製されるプロパティ名です。
type Field string

// FieldCurrentHealth は現在HPの複製フィールドです。発射状態は複製しません。
const FieldCurrentHealth Field = "CurrentHealth"

// RemoteUpdateFunc は複製値の到着時に呼ばれます。
type RemoteUpdateFunc func(ctx context.Context, value float32)

// ReplicationChannel は権限側で確定した値を観測者へ伝搬します。
// 到着順はフィールド間で保証されません。
type ReplicationChannel interface {
	Publish(ctx context.Context, field Field, value float32)
	OnRemoteUpdate(field Field, fn RemoteUpdateFunc)
}

// ReplicaChannel は観測者側のチャネルです。ネットワークなどから受け取った値を
// Deliverで登録済みのコールバックへ渡します。
type ReplicaChannel struct {
	mu       sync.RWMutex
	handlers map[Field][]RemoteUpdateFunc
}

var _ ReplicationChannel = (*ReplicaChannel)(nil)

func NewReplicaChannel() *ReplicaChannel {
	return &ReplicaChannel{handlers: make(map[Field][]RemoteUpdateFunc)}
}

// Publish は観測者側では何もしません。観測者は値を確定できないためです。
func (c *ReplicaChannel) Publish(ctx context.Context, field Field, value float32) {
	slog.DebugContext(ctx, "replica channel: publish ignored on observer", "field", field, "value", value)
}

func (c *ReplicaChannel) OnRemoteUpdate(field Field, fn RemoteUpdateFunc) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[field] = append(c.handlers[field], fn)
}

// Deliver は到着した複製値をコールバックへ渡します。
func (c *ReplicaChannel) Deliver(ctx context.Context, field Field, value float32) {
	c.mu.RLock()
	handlers := append([]RemoteUpdateFunc(nil), c.handlers[field]...)
	c.mu.RUnlock()
	for _, fn := range handlers {
		fn(ctx, value)
	}
}

// Hub は同一プロセス内で権限側チャネルと観測者チャネルをつなぎます。
// リッスンサーバーやテストで使います。
type Hub struct {
	mu        sync.RWMutex
	observers []*ReplicaChannel
	authority *hubAuthority
}

func NewHub() *Hub {
	h := &Hub{}
	h.authority = &hubAuthority{hub: h}
	return h
}

// Authority は権限側が使うチャネルを返します。
func (h *Hub) Authority() ReplicationChannel { return h.authority }

// Observer は新しい観測者チャネルを登録して返します。
func (h *Hub) Observer() *ReplicaChannel {
	c := NewReplicaChannel()
	h.mu.Lock()
	h.observers = append(h.observers, c)
	h.mu.Unlock()
	return c
}

type hubAuthority struct {
	hub *Hub
}

func (a *hubAuthority) Publish(ctx context.Context, field Field, value float32) {
	a.hub.mu.RLock()
	observers := append([]*ReplicaChannel(nil), a.hub.observers...)
	a.hub.mu.RUnlock()
	for _, o := range observers {
		o.Deliver(ctx, field, value)
	}
}

// OnRemoteUpdate は権限側では呼ばれることがないため登録を捨てます。
func (a *hubAuthority) OnRemoteUpdate(Field, RemoteUpdateFunc) {}
