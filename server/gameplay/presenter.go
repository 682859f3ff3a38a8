package gameplay

import (
	"context"
	"log/slog"
	"time"
)

// Perspective は通知を出した視点です。
type Perspective uint8

const (
	// PerspectiveSelf はローカル操作しているエンティティ自身への通知
	PerspectiveSelf Perspective = iota + 1
	// PerspectiveBroadcast は権限側からの全体向け通知
	PerspectiveBroadcast
)

func (p Perspective) String() string {
	switch p {
	case PerspectiveSelf:
		return "self"
	case PerspectiveBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// Severity は通知の重要度です。
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityAlert
)

// NotificationDuration は画面表示向け通知の既定表示時間です。
const NotificationDuration = 5 * time.Second

// Notification は表示層へ渡すステータスメッセージです。
type Notification struct {
	Entity      EntityID
	Perspective Perspective
	Severity    Severity
	Text        string
	Duration    time.Duration
}

// Presenter は通知を表示する外部コラボレーターです。
type Presenter interface {
	Present(ctx context.Context, n Notification)
}

// SlogPresenter は通知をslogへ出力します。
type SlogPresenter struct {
	Logger *slog.Logger
}

var _ Presenter = (*SlogPresenter)(nil)

func (p *SlogPresenter) Present(ctx context.Context, n Notification) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Severity == SeverityAlert {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, n.Text,
		"entity", n.Entity,
		"perspective", n.Perspective,
		"duration", n.Duration,
	)
}

type nopPresenter struct{}

func (nopPresenter) Present(context.Context, Notification) {}
