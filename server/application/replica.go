package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"thirdpersonmp/server/domain"
	"thirdpersonmp/server/gameplay"
)

type replicaCharacter struct {
	character *gameplay.Character
	channel   *gameplay.ReplicaChannel
}

// ReplicaWorld は観測者側が持つワールドの複製です。
// 状態はサーバーからの複製メッセージでのみ確定し、自分のキャラクターの発射はrouter経由で権限側へ送られます。
type ReplicaWorld struct {
	self      gameplay.EntityID
	router    gameplay.FireRouter
	presenter gameplay.Presenter
	timers    *gameplay.TimerManager
	fireRate  time.Duration

	characters map[gameplay.EntityID]*replicaCharacter
	order      []gameplay.EntityID

	projectiles     map[gameplay.EntityID]*gameplay.Projectile
	projectileOrder []gameplay.EntityID
}

func NewReplicaWorld(self gameplay.EntityID, router gameplay.FireRouter, presenter gameplay.Presenter) *ReplicaWorld {
	if presenter == nil {
		presenter = &gameplay.SlogPresenter{}
	}
	return &ReplicaWorld{
		self:        self,
		router:      router,
		presenter:   presenter,
		timers:      gameplay.NewTimerManager(),
		characters:  make(map[gameplay.EntityID]*replicaCharacter),
		projectiles: make(map[gameplay.EntityID]*gameplay.Projectile),
	}
}

func (r *ReplicaWorld) Timers() *gameplay.TimerManager { return r.timers }

// SetFireRate は以降に複製されるキャラクターのローカルクールダウンを設定します。
func (r *ReplicaWorld) SetFireRate(d time.Duration) { r.fireRate = d }

// Self は自分が操作するキャラクターを返します。
func (r *ReplicaWorld) Self() (*gameplay.Character, bool) {
	return r.Character(r.self)
}

func (r *ReplicaWorld) Character(id gameplay.EntityID) (*gameplay.Character, bool) {
	rc, ok := r.characters[id]
	if !ok {
		return nil, false
	}
	return rc.character, true
}

func (r *ReplicaWorld) Characters() []*gameplay.Character {
	out := make([]*gameplay.Character, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.characters[id].character)
	}
	return out
}

func (r *ReplicaWorld) Projectiles() []*gameplay.Projectile {
	out := make([]*gameplay.Projectile, 0, len(r.projectileOrder))
	for _, id := range r.projectileOrder {
		out = append(out, r.projectiles[id])
	}
	return out
}

// Advance はローカルのクールダウンタイマーを進めます。
func (r *ReplicaWorld) Advance(dt time.Duration) {
	r.timers.Advance(dt)
}

func (r *ReplicaWorld) DebugEntries() []gameplay.DebugEntry {
	entries := make([]gameplay.DebugEntry, 0, len(r.order))
	for _, c := range r.Characters() {
		entries = append(entries, gameplay.DebugEntryOf(c))
	}
	return entries
}

// HandleMessage は複製メッセージを解析して複製を更新します。
func (r *ReplicaWorld) HandleMessage(ctx context.Context, data []byte) error {
	frame, err := domain.ParseFrame(data)
	if err != nil {
		return err
	}
	if frame.PayloadHeader.DataType != domain.DataTypeReplication {
		return fmt.Errorf("%w: data type %d", ErrUnsupportedMessage, frame.PayloadHeader.DataType)
	}

	switch subType := domain.ReplicationSubType(frame.PayloadHeader.SubType); subType {
	case domain.ReplicationCharacterSpawn, domain.ReplicationCharacterUpdate:
		p, err := domain.ParseCharacterPayload(frame.Body)
		if err != nil {
			return err
		}
		return r.applyCharacter(ctx, p)
	case domain.ReplicationCharacterDespawn:
		p, err := domain.ParseEntityPayload(frame.Body)
		if err != nil {
			return err
		}
		r.removeCharacter(ctx, gameplay.EntityID(p.Entity))
	case domain.ReplicationHealth:
		p, err := domain.ParseHealthPayload(frame.Body)
		if err != nil {
			return err
		}
		rc, ok := r.characters[gameplay.EntityID(p.Entity)]
		if !ok {
			slog.DebugContext(ctx, "replica: health for unknown character", "entity", gameplay.EntityID(p.Entity))
			return nil
		}
		rc.channel.Deliver(ctx, gameplay.FieldCurrentHealth, p.Current)
	case domain.ReplicationProjectileSpawn, domain.ReplicationProjectileUpdate:
		p, err := domain.ParseProjectilePayload(frame.Body)
		if err != nil {
			return err
		}
		r.applyProjectile(p)
	case domain.ReplicationProjectileDespawn:
		p, err := domain.ParseProjectileDespawnPayload(frame.Body)
		if err != nil {
			return err
		}
		id := gameplay.EntityID(p.Entity)
		if proj, ok := r.projectiles[id]; ok {
			proj.Location = fromWireVec(p.Location)
			proj.Destroy(ctx)
			delete(r.projectiles, id)
			r.projectileOrder = removeID(r.projectileOrder, id)
		}
	default:
		return fmt.Errorf("%w: replication %d", ErrUnsupportedMessage, subType)
	}
	return nil
}

func (r *ReplicaWorld) applyCharacter(ctx context.Context, p *domain.CharacterPayload) error {
	id := gameplay.EntityID(p.Entity)
	t := fromWireTransform(p.Transform)

	rc, ok := r.characters[id]
	if !ok {
		roles := gameplay.ProxyRoles()
		if id == r.self {
			roles = gameplay.OwnerRoles()
		}
		channel := gameplay.NewReplicaChannel()
		c, err := gameplay.NewCharacter(ctx, gameplay.CharacterConfig{
			ID:          id,
			Roles:       roles,
			Spawn:       t,
			MaxHealth:   p.MaxHealth,
			FireRate:    r.fireRate,
			Timers:      r.timers,
			Replication: channel,
			Presenter:   r.presenter,
			Router:      r.router,
		})
		if err != nil {
			return err
		}
		rc = &replicaCharacter{character: c, channel: channel}
		r.characters[id] = rc
		r.order = append(r.order, id)
		slog.DebugContext(ctx, "replica: character spawned", "entity", id, "roles", roles)
	}
	rc.character.SetTransform(t)
	if p.Health != rc.character.Health.Current() {
		rc.channel.Deliver(ctx, gameplay.FieldCurrentHealth, p.Health)
	}
	return nil
}

func (r *ReplicaWorld) removeCharacter(ctx context.Context, id gameplay.EntityID) {
	rc, ok := r.characters[id]
	if !ok {
		return
	}
	rc.character.Destroy()
	delete(r.characters, id)
	r.order = removeID(r.order, id)
	slog.DebugContext(ctx, "replica: character removed", "entity", id)
}

func (r *ReplicaWorld) applyProjectile(p *domain.ProjectilePayload) {
	id := gameplay.EntityID(p.Entity)
	if proj, ok := r.projectiles[id]; ok {
		proj.Location = fromWireVec(p.Location)
		proj.Velocity = fromWireVec(p.Velocity)
		return
	}
	r.projectiles[id] = gameplay.NewProjectileReplica(id, gameplay.EntityID(p.Owner), fromWireVec(p.Location), fromWireVec(p.Velocity))
	r.projectileOrder = append(r.projectileOrder, id)
}
