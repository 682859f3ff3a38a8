package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"thirdpersonmp/server/domain"
	"thirdpersonmp/server/gameplay"
)

var (
	ErrUnsupportedMessage = errors.New("unsupported message")
	ErrApplicationBusy    = errors.New("application command queue is full")
)

// Command はtickゴルーチン上でワールドに対して実行される処理です。
type Command func(ctx context.Context, w *World)

// Commander はtickゴルーチン外からワールドを操作する手段です。
type Commander interface {
	Do(ctx context.Context, fn Command) error
}

const (
	commandPending int32 = iota
	commandRunning
	commandAbandoned
)

// pendingCommand は実行前に呼び出し側が諦めた場合、実行されずに捨てられます。
type pendingCommand struct {
	fn    Command
	done  chan struct{}
	state atomic.Int32
}

// GameApplication はルームに注入されるサードパーソンシューターのロジックです。
type GameApplication struct {
	world    *World
	commands chan *pendingCommand
}

var (
	_ domain.Application = (*GameApplication)(nil)
	_ Commander          = (*GameApplication)(nil)
)

func NewGameApplication(world *World) *GameApplication {
	return &GameApplication{
		world:    world,
		commands: make(chan *pendingCommand, 64),
	}
}

func (a *GameApplication) Join(ctx context.Context, sessionID domain.SessionID) error {
	if _, err := a.world.AddCharacter(ctx, gameplay.EntityID(sessionID)); err != nil {
		return fmt.Errorf("join %s: %w", sessionID, err)
	}
	a.world.SendSnapshot(sessionID)
	return nil
}

func (a *GameApplication) Leave(ctx context.Context, sessionID domain.SessionID) error {
	if !a.world.RemoveCharacter(ctx, gameplay.EntityID(sessionID)) {
		return fmt.Errorf("leave %s: %w", sessionID, ErrUnknownCharacter)
	}
	return nil
}

// HandleMessage は入力とRPCメッセージを解析し、ワールドへ反映します。
func (a *GameApplication) HandleMessage(ctx context.Context, sessionID domain.SessionID, data []byte) error {
	frame, err := domain.ParseFrame(data)
	if err != nil {
		return err
	}
	entity := gameplay.EntityID(sessionID)

	switch frame.PayloadHeader.DataType {
	case domain.DataTypeInput:
		input, err := domain.ParseInputPayload(frame.Body)
		if err != nil {
			return err
		}
		return a.world.ApplyInput(ctx, entity, input)
	case domain.DataTypeRPC:
		switch domain.RPCSubType(frame.PayloadHeader.SubType) {
		case domain.RPCServerHandleFire:
			return a.world.HandleFire(ctx, entity)
		default:
			return fmt.Errorf("%w: rpc %d", ErrUnsupportedMessage, frame.PayloadHeader.SubType)
		}
	default:
		slog.DebugContext(ctx, "game: unknown data type", "sessionID", sessionID, "dataType", frame.PayloadHeader.DataType)
		return fmt.Errorf("%w: data type %d", ErrUnsupportedMessage, frame.PayloadHeader.DataType)
	}
}

// Tick は保留中のコマンドを実行してからワールドを進め、送信データを返します。
func (a *GameApplication) Tick(ctx context.Context, dt time.Duration) []domain.Outgoing {
COMMAND_LOOP:
	for {
		select {
		case cmd := <-a.commands:
			if cmd.state.CompareAndSwap(commandPending, commandRunning) {
				cmd.fn(ctx, a.world)
			}
			close(cmd.done)
		default:
			break COMMAND_LOOP
		}
	}
	a.world.Step(ctx, dt)
	return a.world.Drain()
}

// Do は次のtickでfnを実行し、完了するまで待ちます。
// ctx が先に終わった場合、fn が未実行なら実行されないことを保証して ctx.Err() を返します。
// 既に実行中なら完了を待って nil を返します。
func (a *GameApplication) Do(ctx context.Context, fn Command) error {
	cmd := &pendingCommand{fn: fn, done: make(chan struct{})}
	select {
	case a.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrApplicationBusy
	}
	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		if cmd.state.CompareAndSwap(commandPending, commandAbandoned) {
			return ctx.Err()
		}
		<-cmd.done
		return nil
	}
}
