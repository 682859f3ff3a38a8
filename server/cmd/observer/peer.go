package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"thirdpersonmp/internal/config"
	"thirdpersonmp/server/application"
	"thirdpersonmp/server/domain"
	"thirdpersonmp/server/gameplay"
)

var errKicked = errors.New("observer: kicked by server")

// runPeer は切断されても ctx が終わるまで再接続を続けます。
func runPeer(ctx context.Context, cfg config.ObserverConfig, id int) {
	logger := slog.With("peer", id)
	for {
		if ctx.Err() != nil {
			return
		}
		err := session(ctx, cfg, logger)
		if err == nil || ctx.Err() != nil {
			continue
		}
		logger.WarnContext(ctx, "session ended, reconnecting", "err", err)
		select {
		case <-ctx.Done():
		case <-time.After(cfg.RetryInterval):
		}
	}
}

func session(ctx context.Context, cfg config.ObserverConfig, logger *slog.Logger) error {
	conn, _, err := websocket.Dial(ctx, cfg.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()
	logger.InfoContext(ctx, "connected")

	write := func(ctx context.Context, data []byte) error {
		return conn.Write(ctx, websocket.MessageBinary, data)
	}
	p := newPeer(write, application.NewRuleBotController(), cfg.FireRate, logger)

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				readErr <- fmt.Errorf("read: %w", err)
				return
			}
			if err := p.handleFrame(ctx, data); err != nil {
				readErr <- err
				return
			}
		}
	}()

	tick := cfg.TickInterval()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	hud := time.NewTicker(cfg.HUDInterval)
	defer hud.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "shutdown")
			return nil
		case err := <-readErr:
			return err
		case <-ticker.C:
			if err := p.step(ctx, tick); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		case <-hud.C:
			p.logHUD(ctx)
		}
	}
}

// writeFunc はサーバーへ1フレームを送ります。
type writeFunc func(ctx context.Context, data []byte) error

// socketFireRouter は自分のキャラクターの発射要求をRPCフレームとして送ります。
type socketFireRouter struct {
	write writeFunc
}

func (r socketFireRouter) ServerHandleFire(ctx context.Context, owner gameplay.EntityID) error {
	return r.write(ctx, domain.EncodeFireRPC(domain.SessionID(owner)))
}

// peer は1接続分の観測者です。受信ゴルーチンとtickループが mu を共有します。
type peer struct {
	write      writeFunc
	controller application.BotController
	fireRate   time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	session domain.SessionID
	replica *application.ReplicaWorld
}

func newPeer(write writeFunc, controller application.BotController, fireRate time.Duration, logger *slog.Logger) *peer {
	return &peer{write: write, controller: controller, fireRate: fireRate, logger: logger}
}

func (p *peer) handleFrame(ctx context.Context, data []byte) error {
	frame, err := domain.ParseFrame(data)
	if err != nil {
		p.logger.DebugContext(ctx, "dropping malformed frame", "err", err)
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch frame.PayloadHeader.DataType {
	case domain.DataTypeControl:
		switch domain.ControlSubType(frame.PayloadHeader.SubType) {
		case domain.ControlSubTypeAssign:
			p.session = domain.SessionIDFromBytes(frame.Header.SessionID)
			p.replica = application.NewReplicaWorld(gameplay.EntityID(p.session), socketFireRouter{write: p.write}, &gameplay.SlogPresenter{Logger: p.logger})
			p.replica.SetFireRate(p.fireRate)
			p.logger.InfoContext(ctx, "session assigned", "session_id", p.session)
			return p.write(ctx, domain.EncodeJoinMessage(p.session, domain.RoomID{}))
		case domain.ControlSubTypePing:
			return p.write(ctx, domain.EncodePongMessage(p.session))
		case domain.ControlSubTypeKick:
			return errKicked
		}
	case domain.DataTypeReplication:
		if p.replica == nil {
			return nil
		}
		if err := p.replica.HandleMessage(ctx, data); err != nil {
			p.logger.WarnContext(ctx, "replication failed", "err", err)
		}
	}
	return nil
}

// step はローカルのクールダウンを進め、ボットの判断を入力として送ります。
func (p *peer) step(ctx context.Context, dt time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.replica == nil {
		return nil
	}
	p.replica.Advance(dt)

	self, ok := p.replica.Self()
	if !ok || self.Health.IsDead() {
		return nil
	}
	action := p.controller.Decide(self, p.replica.Characters(), p.replica.Projectiles())
	in := action.Input(self)
	// 入力はコントロール回転基準なので、サーバーと同じ回転をローカルにも反映する
	self.DoLook(in.LookYaw, in.LookPitch)
	if err := p.write(ctx, domain.EncodeMessage(p.session, domain.DataTypeInput, 0, in.Encode())); err != nil {
		return err
	}
	if action.Fire {
		self.StartFire(ctx)
	}
	return nil
}

func (p *peer) logHUD(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.replica == nil {
		return
	}
	text := gameplay.FormatNetworkDebug(p.replica.DebugEntries())
	p.logger.InfoContext(ctx, "network debug", "hud", strings.TrimSpace(text))
}
