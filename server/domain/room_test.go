package domain_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"thirdpersonmp/server/domain"
)

// echoApplication は受信したメッセージを次のtickでそのままブロードキャストするテスト用Application。
type echoApplication struct {
	mu      sync.Mutex
	pending [][]byte
	joined  []domain.SessionID
	left    []domain.SessionID
	joinErr error
}

func (e *echoApplication) Join(_ context.Context, id domain.SessionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.joinErr != nil {
		return e.joinErr
	}
	e.joined = append(e.joined, id)
	return nil
}

func (e *echoApplication) Leave(_ context.Context, id domain.SessionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.left = append(e.left, id)
	return nil
}

func (e *echoApplication) HandleMessage(_ context.Context, _ domain.SessionID, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, data)
	return nil
}

func (e *echoApplication) Tick(context.Context, time.Duration) []domain.Outgoing {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Outgoing, 0, len(e.pending))
	for _, d := range e.pending {
		out = append(out, domain.Outgoing{Data: d})
	}
	e.pending = nil
	return out
}

func (e *echoApplication) counts() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.joined), len(e.left)
}

func runRoom(t *testing.T, app domain.Application) (*domain.SimplePubSub, domain.RoomID) {
	t.Helper()
	ps := domain.NewSimplePubSub()
	roomID := domain.NewRoomID()
	room := domain.NewRoom(roomID, ps, app, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = room.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Run が購読を始めるまで待つ
	deadline := time.Now().Add(time.Second)
	for ps.Subscribers(domain.RoomCtrlTopic(roomID)) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("room did not subscribe")
		}
		time.Sleep(time.Millisecond)
	}
	return ps, roomID
}

func TestRoom_JoinEchoLeave(t *testing.T) {
	app := &echoApplication{}
	ps, roomID := runRoom(t, app)
	ctx := context.Background()

	member := domain.NewSessionID()
	inbox := ps.Subscribe(domain.SessionTopic(member))

	ps.Publish(ctx, domain.RoomCtrlTopic(roomID), domain.Message{SessionID: member, Data: domain.EncodeJoinMessage(member, roomID)})
	input := domain.EncodeMessage(member, domain.DataTypeInput, 0, (&domain.InputPayload{}).Encode())
	// joinが処理されてから入力を送る
	waitFor(t, func() bool { j, _ := app.counts(); return j == 1 })
	ps.Publish(ctx, domain.RoomTopic(roomID), domain.Message{SessionID: member, Data: input})

	select {
	case msg := <-inbox:
		if string(msg.Data) != string(input) {
			t.Fatalf("echo mismatch")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for echo")
	}

	ps.Publish(ctx, domain.RoomCtrlTopic(roomID), domain.Message{SessionID: member, Data: domain.EncodeLeaveMessage(member)})
	waitFor(t, func() bool { _, l := app.counts(); return l == 1 })
}

// 参加していないセッションの入力はアプリケーションに渡さない
func TestRoom_DropsNonMemberMessages(t *testing.T) {
	app := &echoApplication{}
	ps, roomID := runRoom(t, app)

	stranger := domain.NewSessionID()
	inbox := ps.Subscribe(domain.SessionTopic(stranger))
	ps.Publish(context.Background(), domain.RoomTopic(roomID), domain.Message{SessionID: stranger, Data: []byte("x")})

	select {
	case <-inbox:
		t.Fatalf("non-member message should be dropped")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoom_RejectedJoin(t *testing.T) {
	app := &echoApplication{joinErr: errors.New("full")}
	ps, roomID := runRoom(t, app)
	member := domain.NewSessionID()

	ps.Publish(context.Background(), domain.RoomCtrlTopic(roomID), domain.Message{SessionID: member, Data: domain.EncodeJoinMessage(member, roomID)})
	ps.Publish(context.Background(), domain.RoomCtrlTopic(roomID), domain.Message{SessionID: member, Data: domain.EncodeLeaveMessage(member)})

	time.Sleep(30 * time.Millisecond)
	if j, l := app.counts(); j != 0 || l != 0 {
		t.Fatalf("joined=%d left=%d, want 0/0", j, l)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
