package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"thirdpersonmp/server/application"
	"thirdpersonmp/server/domain"
	"thirdpersonmp/server/gameplay"
)

type recordingWriter struct {
	frames []*domain.Frame
}

func (w *recordingWriter) write(_ context.Context, data []byte) error {
	f, err := domain.ParseFrame(data)
	if err != nil {
		return err
	}
	w.frames = append(w.frames, f)
	return nil
}

func (w *recordingWriter) count(dt domain.DataType, sub uint8) int {
	n := 0
	for _, f := range w.frames {
		if f.PayloadHeader.DataType == dt && f.PayloadHeader.SubType == sub {
			n++
		}
	}
	return n
}

type firingBot struct{}

func (firingBot) Decide(*gameplay.Character, []*gameplay.Character, []*gameplay.Projectile) application.BotAction {
	return application.BotAction{MoveDirection: gameplay.Vec3{X: 1}, Fire: true}
}

func testPeer(w *recordingWriter) *peer {
	return newPeer(w.write, firingBot{}, 500*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPeer_AssignJoinsRoom(t *testing.T) {
	ctx := context.Background()
	w := &recordingWriter{}
	p := testPeer(w)
	id := domain.NewSessionID()

	if err := p.handleFrame(ctx, domain.EncodeAssignMessage(id)); err != nil {
		t.Fatalf("handleFrame failed: %v", err)
	}
	if p.session != id || p.replica == nil {
		t.Fatalf("session not assigned")
	}
	if w.count(domain.DataTypeControl, uint8(domain.ControlSubTypeJoin)) != 1 {
		t.Errorf("join not sent: %+v", w.frames)
	}

	if err := p.handleFrame(ctx, domain.EncodePingMessage(domain.SessionID{})); err != nil {
		t.Fatalf("handleFrame failed: %v", err)
	}
	last := w.frames[len(w.frames)-1]
	if domain.ControlSubType(last.PayloadHeader.SubType) != domain.ControlSubTypePong || domain.SessionIDFromBytes(last.Header.SessionID) != id {
		t.Errorf("pong not sent with own session id")
	}
}

func TestPeer_KickEndsSession(t *testing.T) {
	p := testPeer(&recordingWriter{})
	err := p.handleFrame(context.Background(), domain.EncodeControlMessage(domain.SessionID{}, domain.ControlSubTypeKick))
	if !errors.Is(err, errKicked) {
		t.Errorf("err = %v, want errKicked", err)
	}
}

// サーバーから複製を受け取った後、入力を送りクールダウン内で1回だけ発射RPCを送る
func TestPeer_StepSendsInputAndFire(t *testing.T) {
	ctx := context.Background()
	world := application.NewWorld(application.WorldConfig{
		MaxHealth:  100,
		Projectile: gameplay.DefaultProjectileClass(),
	})
	server := application.NewGameApplication(world)
	id := domain.NewSessionID()
	w := &recordingWriter{}
	p := testPeer(w)
	if err := p.handleFrame(ctx, domain.EncodeAssignMessage(id)); err != nil {
		t.Fatalf("handleFrame failed: %v", err)
	}

	if err := server.Join(ctx, id); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	for _, o := range server.Tick(ctx, time.Second/60) {
		if err := p.handleFrame(ctx, o.Data); err != nil {
			t.Fatalf("handleFrame failed: %v", err)
		}
	}
	if _, ok := p.replica.Self(); !ok {
		t.Fatalf("own character not replicated")
	}

	for range 3 {
		if err := p.step(ctx, time.Second/60); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}
	if got := w.count(domain.DataTypeInput, 0); got != 3 {
		t.Errorf("input frames = %d, want 3", got)
	}
	if got := w.count(domain.DataTypeRPC, uint8(domain.RPCServerHandleFire)); got != 1 {
		t.Errorf("fire RPCs = %d, want 1", got)
	}

	// 送ったRPCは権限側で弾になる
	if err := server.HandleMessage(ctx, id, domain.EncodeFireRPC(id)); err != nil {
		t.Fatalf("server rejected fire RPC: %v", err)
	}
	if n := len(world.Projectiles()); n != 1 {
		t.Errorf("server projectiles = %d, want 1", n)
	}
}

func TestPeer_StepBeforeAssignIsNoop(t *testing.T) {
	w := &recordingWriter{}
	if err := testPeer(w).step(context.Background(), time.Second/60); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if len(w.frames) != 0 {
		t.Errorf("frames = %d, want 0", len(w.frames))
	}
}
