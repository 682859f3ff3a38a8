package domain

import (
	"context"
	"log/slog"
	"time"
)

// Sender は接続への非同期書き込みです。満杯の場合はErrBackpressureを返します。
type Sender interface {
	Send(data []byte) error
}

// HeartbeatService は定期的にpingメッセージを送信する死活監視サービスです。
type HeartbeatService struct {
	pingInterval time.Duration
	session      *Session
	sender       Sender
}

// NewHeartbeatService は新しいHeartbeatServiceを生成します。
func NewHeartbeatService(pingInterval time.Duration, session *Session, sender Sender) *HeartbeatService {
	return &HeartbeatService{
		pingInterval: pingInterval,
		session:      session,
		sender:       sender,
	}
}

// Run はpingInterval間隔でpingメッセージを送信します。
// ctxがキャンセルされると終了します。pingIntervalが0以下の場合は何もしません。
func (h *HeartbeatService) Run(ctx context.Context) {
	if h.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingMsg := EncodePingMessage(h.session.ID())
			if err := h.sender.Send(pingMsg); err != nil {
				slog.WarnContext(ctx, "heartbeat: ping dropped", "sessionID", h.session.ID(), "err", err)
				continue
			}
			slog.DebugContext(ctx, "heartbeat: ping sent", "sessionID", h.session.ID())
		}
	}
}
