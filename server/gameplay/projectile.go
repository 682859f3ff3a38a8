package gameplay

import (
	"context"
	"log/slog"
	"time"
)

// 弾の既定パラメータ
const (
	ProjectileRadius       float32 = 37.5
	ProjectileInitialSpeed float32 = 1500
	ProjectileGravityScale float32 = 0.6
	ProjectileDamage       float32 = 10
	ProjectileLifeSpan             = 3 * time.Second
	WorldGravity           float32 = 980
)

// ProjectileClass は生成する弾の定義です。
type ProjectileClass struct {
	Radius       float32
	InitialSpeed float32
	GravityScale float32
	Damage       float32
	LifeSpan     time.Duration
}

// DefaultProjectileClass は既定の弾の定義を返します。
func DefaultProjectileClass() *ProjectileClass {
	return &ProjectileClass{
		Radius:       ProjectileRadius,
		InitialSpeed: ProjectileInitialSpeed,
		GravityScale: ProjectileGravityScale,
		Damage:       ProjectileDamage,
		LifeSpan:     ProjectileLifeSpan,
	}
}

// Projectile は権限側で生成され、観測者へ複製される弾です。
type Projectile struct {
	ID         EntityID
	Owner      EntityID
	Instigator EntityID
	Location   Vec3
	Velocity   Vec3
	Radius     float32
	Damage     float32

	gravity  float32
	lifeSpan time.Duration
	age      time.Duration
	dead     bool
}

// NewProjectile はクラス定義と生成要求から弾を作ります。
func NewProjectile(id EntityID, class *ProjectileClass, req SpawnRequest) *Projectile {
	return &Projectile{
		ID:         id,
		Owner:      req.Owner,
		Instigator: req.Instigator,
		Location:   req.Transform.Location,
		Velocity:   req.Transform.Rotation.Vector().Scale(class.InitialSpeed),
		Radius:     class.Radius,
		Damage:     class.Damage,
		gravity:    WorldGravity * class.GravityScale,
		lifeSpan:   class.LifeSpan,
	}
}

// NewProjectileReplica は複製された状態から観測者側の弾を作ります。
func NewProjectileReplica(id, owner EntityID, loc, vel Vec3) *Projectile {
	return &Projectile{ID: id, Owner: owner, Instigator: owner, Location: loc, Velocity: vel, Radius: ProjectileRadius}
}

func (p *Projectile) IsDestroyed() bool { return p.dead }

// Step は弾を進めます。寿命切れまたは地面に当たった場合は false を返します。
func (p *Projectile) Step(dt time.Duration) bool {
	if p.dead {
		return false
	}
	sec := float32(dt.Seconds())
	p.Velocity.Z -= p.gravity * sec
	p.Location = p.Location.Add(p.Velocity.Scale(sec))
	p.age += dt
	if p.Location.Z <= 0 || (p.lifeSpan > 0 && p.age >= p.lifeSpan) {
		return false
	}
	return true
}

// Target は弾が当たる対象です。
type Target interface {
	EntityID() EntityID
	Overlaps(p Vec3, r float32) bool
	TakeDamage(ctx context.Context, amount float32, instigator, causer EntityID) float32
}

// Impact は重なった最初の対象にダメージを与えます。所有者は重なっていても対象から除外され、当たりません。
// 当たった場合は対象を返します。呼び出し側は権限側に限定してください。
func (p *Projectile) Impact(ctx context.Context, targets []Target) (Target, bool) {
	if p.dead {
		return nil, false
	}
	for _, t := range targets {
		if t.EntityID() == p.Owner {
			continue
		}
		if !t.Overlaps(p.Location, p.Radius) {
			continue
		}
		remaining := t.TakeDamage(ctx, p.Damage, p.Instigator, p.ID)
		slog.DebugContext(ctx, "projectile: hit", "projectile", p.ID, "target", t.EntityID(), "remaining", remaining)
		return t, true
	}
	return nil, false
}

// Destroy は弾を破棄します。破棄は全てのコンテキストで爆発として報告されます。
func (p *Projectile) Destroy(ctx context.Context) {
	if p.dead {
		return
	}
	p.dead = true
	slog.InfoContext(ctx, "projectile: explosion", "projectile", p.ID, "location", p.Location)
}
