package domain

import (
	"context"
	"time"
)

// Outgoing はアプリケーションがtickごとに返す送信データです。
// To が空の場合はルーム全体へブロードキャストします。
type Outgoing struct {
	To   SessionID
	Data []byte
}

// Application はRoomに注入されるゲームロジックです。
// 全てのメソッドはRoomのtickゴルーチンから呼ばれます。
type Application interface {
	Join(ctx context.Context, sessionID SessionID) error
	Leave(ctx context.Context, sessionID SessionID) error
	HandleMessage(ctx context.Context, sessionID SessionID, data []byte) error
	Tick(ctx context.Context, dt time.Duration) []Outgoing
}
