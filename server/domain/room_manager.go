package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// RoomID はルームの識別子です。
type RoomID [16]byte

func NewRoomID() RoomID { return RoomID(uuid.New()) }

func (id RoomID) String() string { return uuid.UUID(id).String() }

func (id RoomID) IsEmpty() bool { return id == RoomID{} }

var ErrNoRoomAvailable = errors.New("no room available")

// RoomManager はセッションの参加先ルームを決めます。
type RoomManager interface {
	GetRoom(ctx context.Context, sessionID SessionID) (RoomID, error)
}

// SimpleRoomManager は全てのセッションを既定のルームへ割り当てます。
type SimpleRoomManager struct {
	defaultRoom RoomID
}

var _ RoomManager = (*SimpleRoomManager)(nil)

func NewSimpleRoomManager(defaultRoom RoomID) *SimpleRoomManager {
	return &SimpleRoomManager{defaultRoom: defaultRoom}
}

func (m *SimpleRoomManager) GetRoom(_ context.Context, _ SessionID) (RoomID, error) {
	if m.defaultRoom.IsEmpty() {
		return RoomID{}, ErrNoRoomAvailable
	}
	return m.defaultRoom, nil
}
