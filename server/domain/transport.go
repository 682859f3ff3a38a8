package domain

import (
	"context"
)

//go:generate go tool mockgen -destination=./mocks/domain_mock.go -package=mocks . Transport,PubSub,RoomManager

// Transport は Connection（物理接続）が依存するI/O境界です。
type Transport interface {
	Read(ctx context.Context) (data []byte, err error)
	Write(ctx context.Context, data []byte) error
	Close(code int32, reason string) error
}
