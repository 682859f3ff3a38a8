package application

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"thirdpersonmp/server/domain"
	"thirdpersonmp/server/gameplay"
)

var (
	ErrAlreadyJoined    = errors.New("character already exists")
	ErrUnknownCharacter = errors.New("character not found")
)

const (
	// DefaultHalfExtent はワールドのXY方向の半径です。
	DefaultHalfExtent float32 = 5000
	// SpawnRadius はスポーン地点を並べる円の半径です。
	SpawnRadius float32 = 400
	spawnSlots          = 8
)

// serverOrigin はサーバーが送るフレームのセッションIDです。
var serverOrigin = domain.SessionID{}

// WorldConfig はワールドの設定です。
type WorldConfig struct {
	MaxHealth  float32
	FireRate   time.Duration
	Projectile *gameplay.ProjectileClass
	Movement   gameplay.MovementConfig
	Presenter  gameplay.Presenter
	HalfExtent float32
}

// World は権限側のキャラクターと弾を管理する構造体です。
// 全てのメソッドはルームのtickゴルーチンから呼ばれます。
type World struct {
	cfg    WorldConfig
	timers *gameplay.TimerManager

	characters map[gameplay.EntityID]*gameplay.Character
	order      []gameplay.EntityID

	projectiles     map[gameplay.EntityID]*gameplay.Projectile
	projectileOrder []gameplay.EntityID

	outbox  []domain.Outgoing
	spawned int
}

var _ gameplay.EntityFactory = (*World)(nil)

// NewWorld は設定からワールドを作成します。Projectile が nil の場合は弾を生成しません。
func NewWorld(cfg WorldConfig) *World {
	if cfg.HalfExtent <= 0 {
		cfg.HalfExtent = DefaultHalfExtent
	}
	if cfg.Presenter == nil {
		cfg.Presenter = &gameplay.SlogPresenter{}
	}
	return &World{
		cfg:         cfg,
		timers:      gameplay.NewTimerManager(),
		characters:  make(map[gameplay.EntityID]*gameplay.Character),
		projectiles: make(map[gameplay.EntityID]*gameplay.Projectile),
	}
}

func (w *World) Timers() *gameplay.TimerManager { return w.timers }

// AddCharacter はセッションに対応するキャラクターをスポーン地点に生成し、全員へ通知します。
func (w *World) AddCharacter(ctx context.Context, id gameplay.EntityID) (*gameplay.Character, error) {
	if _, ok := w.characters[id]; ok {
		return nil, ErrAlreadyJoined
	}
	c, err := gameplay.NewCharacter(ctx, gameplay.CharacterConfig{
		ID:          id,
		Roles:       gameplay.ServerRoles(),
		Spawn:       w.spawnPoint(),
		MaxHealth:   w.cfg.MaxHealth,
		FireRate:    w.cfg.FireRate,
		Movement:    w.cfg.Movement,
		Timers:      w.timers,
		Replication: &healthOutbox{world: w, entity: id},
		Presenter:   w.cfg.Presenter,
		Factory:     w,
	})
	if err != nil {
		return nil, err
	}
	w.characters[id] = c
	w.order = append(w.order, id)
	w.broadcast(domain.ReplicationCharacterSpawn, characterPayload(c).Encode())
	slog.InfoContext(ctx, "world: character spawned", "entity", id, "name", c.Name(), "location", c.Location())
	return c, nil
}

// RemoveCharacter はキャラクターを破棄し、全員へ通知します。
func (w *World) RemoveCharacter(ctx context.Context, id gameplay.EntityID) bool {
	c, ok := w.characters[id]
	if !ok {
		return false
	}
	c.Destroy()
	delete(w.characters, id)
	w.order = removeID(w.order, id)
	w.broadcast(domain.ReplicationCharacterDespawn, (&domain.EntityPayload{Entity: [16]byte(id)}).Encode())
	slog.InfoContext(ctx, "world: character removed", "entity", id)
	return true
}

// Character は指定されたIDのキャラクターを取得します。
func (w *World) Character(id gameplay.EntityID) (*gameplay.Character, bool) {
	c, ok := w.characters[id]
	return c, ok
}

// Characters は参加順に並んだキャラクターを返します。
func (w *World) Characters() []*gameplay.Character {
	out := make([]*gameplay.Character, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.characters[id])
	}
	return out
}

func (w *World) Projectiles() []*gameplay.Projectile {
	out := make([]*gameplay.Projectile, 0, len(w.projectileOrder))
	for _, id := range w.projectileOrder {
		out = append(out, w.projectiles[id])
	}
	return out
}

// ApplyInput は移動・視点・ジャンプ入力をキャラクターに反映します。
func (w *World) ApplyInput(ctx context.Context, id gameplay.EntityID, in *domain.InputPayload) error {
	c, ok := w.characters[id]
	if !ok {
		return ErrUnknownCharacter
	}
	c.DoLook(in.LookYaw, in.LookPitch)
	c.DoMove(in.MoveRight, in.MoveForward)
	if in.Jump() {
		c.DoJumpStart()
	} else {
		c.DoJumpEnd()
	}
	return nil
}

// HandleFire はクライアントからの発射要求を処理します。
// クールダウンはクライアント側で管理するため、サーバーは要求ごとに生成を試みます。
func (w *World) HandleFire(ctx context.Context, id gameplay.EntityID) error {
	c, ok := w.characters[id]
	if !ok {
		return ErrUnknownCharacter
	}
	if c.Health.IsDead() {
		slog.DebugContext(ctx, "world: fire from dead character ignored", "entity", id)
		return nil
	}
	c.Fire.RequestSpawn(ctx)
	return nil
}

// SpawnProjectile は生成要求から弾を作り、全員へ通知します。
func (w *World) SpawnProjectile(ctx context.Context, req gameplay.SpawnRequest) (gameplay.EntityID, error) {
	if w.cfg.Projectile == nil {
		return gameplay.EntityID{}, gameplay.ErrNoProjectileClass
	}
	id := gameplay.NewEntityID()
	p := gameplay.NewProjectile(id, w.cfg.Projectile, req)
	w.projectiles[id] = p
	w.projectileOrder = append(w.projectileOrder, id)
	w.broadcast(domain.ReplicationProjectileSpawn, projectilePayload(p).Encode())
	return id, nil
}

// Step はワールドをdtだけ進めます。
func (w *World) Step(ctx context.Context, dt time.Duration) {
	w.timers.Advance(dt)

	sec := float32(dt.Seconds())
	for _, id := range w.order {
		c := w.characters[id]
		c.Step(sec)
		w.clampToBounds(c)
		w.broadcast(domain.ReplicationCharacterUpdate, characterPayload(c).Encode())
	}

	targets := make([]gameplay.Target, 0, len(w.order))
	for _, id := range w.order {
		targets = append(targets, w.characters[id])
	}
	for _, id := range append([]gameplay.EntityID(nil), w.projectileOrder...) {
		p := w.projectiles[id]
		if !p.Step(dt) {
			w.despawnProjectile(ctx, p)
			continue
		}
		if _, hit := p.Impact(ctx, targets); hit {
			w.despawnProjectile(ctx, p)
			continue
		}
		w.broadcast(domain.ReplicationProjectileUpdate, projectilePayload(p).Encode())
	}
}

// SendSnapshot は途中参加したセッションへ既存のエンティティを送ります。
func (w *World) SendSnapshot(to domain.SessionID) {
	for _, id := range w.order {
		if id == gameplay.EntityID(to) {
			continue
		}
		w.send(to, domain.ReplicationCharacterSpawn, characterPayload(w.characters[id]).Encode())
	}
	for _, id := range w.projectileOrder {
		w.send(to, domain.ReplicationProjectileSpawn, projectilePayload(w.projectiles[id]).Encode())
	}
}

// DebugEntries はネットワークデバッグ表示用の値を返します。
func (w *World) DebugEntries() []gameplay.DebugEntry {
	entries := make([]gameplay.DebugEntry, 0, len(w.order))
	for _, c := range w.Characters() {
		entries = append(entries, gameplay.DebugEntryOf(c))
	}
	return entries
}

// Drain は溜まった送信データを取り出します。
func (w *World) Drain() []domain.Outgoing {
	out := w.outbox
	w.outbox = nil
	return out
}

func (w *World) despawnProjectile(ctx context.Context, p *gameplay.Projectile) {
	p.Destroy(ctx)
	delete(w.projectiles, p.ID)
	w.projectileOrder = removeID(w.projectileOrder, p.ID)
	w.broadcast(domain.ReplicationProjectileDespawn, (&domain.ProjectileDespawnPayload{
		Entity:   [16]byte(p.ID),
		Location: toWireVec(p.Location),
	}).Encode())
}

// spawnPoint は円周上のスロットを順番に使い、中心を向いたスポーン地点を返します。
func (w *World) spawnPoint() gameplay.Transform {
	slot := w.spawned % spawnSlots
	w.spawned++
	angle := 2 * math.Pi * float64(slot) / spawnSlots
	yaw := float32(angle*180/math.Pi) + 180
	if yaw > 180 {
		yaw -= 360
	}
	return gameplay.Transform{
		Location: gameplay.Vec3{
			X: SpawnRadius * float32(math.Cos(angle)),
			Y: SpawnRadius * float32(math.Sin(angle)),
		},
		Rotation: gameplay.Rotator{Yaw: yaw},
	}
}

func (w *World) clampToBounds(c *gameplay.Character) {
	loc := c.Location()
	e := w.cfg.HalfExtent
	clamped := gameplay.Vec3{X: clamp(loc.X, -e, e), Y: clamp(loc.Y, -e, e), Z: loc.Z}
	if clamped != loc {
		c.SetLocation(clamped)
	}
}

func (w *World) broadcast(subType domain.ReplicationSubType, body []byte) {
	w.send(domain.SessionID{}, subType, body)
}

func (w *World) send(to domain.SessionID, subType domain.ReplicationSubType, body []byte) {
	w.outbox = append(w.outbox, domain.Outgoing{
		To:   to,
		Data: domain.EncodeMessage(serverOrigin, domain.DataTypeReplication, uint8(subType), body),
	})
}

// healthOutbox は権限側のHP確定値をHealthメッセージとして全員へ送ります。
type healthOutbox struct {
	world  *World
	entity gameplay.EntityID
}

var _ gameplay.ReplicationChannel = (*healthOutbox)(nil)

func (o *healthOutbox) Publish(ctx context.Context, field gameplay.Field, value float32) {
	if field != gameplay.FieldCurrentHealth {
		return
	}
	maxHealth := o.world.cfg.MaxHealth
	if c, ok := o.world.characters[o.entity]; ok {
		maxHealth = c.Health.Max()
	}
	o.world.broadcast(domain.ReplicationHealth, (&domain.HealthPayload{
		Entity:  [16]byte(o.entity),
		Current: value,
		Max:     maxHealth,
	}).Encode())
	slog.DebugContext(ctx, "world: health replicated", "entity", o.entity, "current", value)
}

// OnRemoteUpdate は権限側では使われません。
func (o *healthOutbox) OnRemoteUpdate(gameplay.Field, gameplay.RemoteUpdateFunc) {}

func characterPayload(c *gameplay.Character) *domain.CharacterPayload {
	t := c.Transform()
	return &domain.CharacterPayload{
		Entity: [16]byte(c.EntityID()),
		Transform: domain.Transform{
			Location: toWireVec(t.Location),
			Pitch:    t.Rotation.Pitch,
			Yaw:      t.Rotation.Yaw,
			Roll:     t.Rotation.Roll,
		},
		Health:    c.Health.Current(),
		MaxHealth: c.Health.Max(),
	}
}

func projectilePayload(p *gameplay.Projectile) *domain.ProjectilePayload {
	return &domain.ProjectilePayload{
		Entity:   [16]byte(p.ID),
		Owner:    [16]byte(p.Owner),
		Location: toWireVec(p.Location),
		Velocity: toWireVec(p.Velocity),
	}
}

func toWireVec(v gameplay.Vec3) domain.Vec3 { return domain.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func fromWireVec(v domain.Vec3) gameplay.Vec3 { return gameplay.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func fromWireTransform(t domain.Transform) gameplay.Transform {
	return gameplay.Transform{
		Location: fromWireVec(t.Location),
		Rotation: gameplay.Rotator{Pitch: t.Pitch, Yaw: t.Yaw, Roll: t.Roll},
	}
}

func removeID(ids []gameplay.EntityID, id gameplay.EntityID) []gameplay.EntityID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
