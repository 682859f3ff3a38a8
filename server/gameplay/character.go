package gameplay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"thirdpersonmp/utils"
)

// MaxLookPitch はカメラのピッチ角の上限です。
const MaxLookPitch float32 = 89

// DefaultMaxHealth はキャラクターの最大HPの既定値です。
const DefaultMaxHealth float32 = 100

// CharacterConfig はキャラクター生成時の設定です。
type CharacterConfig struct {
	ID          EntityID
	Name        string
	Roles       NetRoles
	Spawn       Transform
	MaxHealth   float32
	FireRate    time.Duration
	Movement    MovementConfig
	Timers      Timers
	Replication ReplicationChannel
	Presenter   Presenter
	Factory     EntityFactory
	Router      FireRouter
}

// Character はHP、発射、移動を組み合わせたプレイヤーキャラクターです。
type Character struct {
	id    EntityID
	name  string
	roles NetRoles

	transform Transform
	control   Rotator
	movement  *Movement

	Health *HealthController
	Fire   *FireController

	destroyed bool
}

var _ Pawn = (*Character)(nil)

func NewCharacter(ctx context.Context, cfg CharacterConfig) (*Character, error) {
	if cfg.ID.IsZero() {
		cfg.ID = NewEntityID()
	}
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("Character_%s", cfg.ID.String()[:8])
	}
	if cfg.MaxHealth == 0 {
		cfg.MaxHealth = DefaultMaxHealth
	}

	c := &Character{
		id:        cfg.ID,
		name:      cfg.Name,
		roles:     cfg.Roles,
		transform: cfg.Spawn,
		control:   cfg.Spawn.Rotation.YawOnly(),
		movement:  newMovement(cfg.Movement),
	}
	c.transform.Location.Z = max(c.transform.Location.Z, c.movement.cfg.CapsuleHalfHeight)

	health, err := NewHealthController(ctx, HealthConfig{
		Entity:      c.id,
		Name:        c.name,
		Max:         cfg.MaxHealth,
		Authority:   c.roles,
		Control:     c.roles,
		Replication: cfg.Replication,
		Presenter:   cfg.Presenter,
	})
	if err != nil {
		return nil, fmt.Errorf("new character %s: %w", c.name, err)
	}
	c.Health = health

	fire, err := NewFireController(FireConfig{
		Pawn:      c,
		FireRate:  cfg.FireRate,
		Timers:    cfg.Timers,
		Authority: c.roles,
		Factory:   cfg.Factory,
		Router:    cfg.Router,
	})
	if err != nil {
		return nil, fmt.Errorf("new character %s: %w", c.name, err)
	}
	c.Fire = fire

	if c.roles.IsAuthoritative() && cfg.Factory == nil {
		slog.ErrorContext(ctx, "character: fire input has no projectile factory", "entity", c.id, "name", c.name)
	}
	return c, nil
}

func (c *Character) EntityID() EntityID { return c.id }

func (c *Character) Name() string { return c.name }

func (c *Character) Roles() NetRoles { return c.roles }

func (c *Character) Location() Vec3 { return c.transform.Location }

func (c *Character) Rotation() Rotator { return c.transform.Rotation }

func (c *Character) Transform() Transform { return c.transform }

func (c *Character) ControlRotation() Rotator { return c.control }

func (c *Character) Velocity() Vec3 { return c.movement.Velocity() }

func (c *Character) CapsuleRadius() float32 { return c.movement.cfg.CapsuleRadius }

func (c *Character) CapsuleHalfHeight() float32 { return c.movement.cfg.CapsuleHalfHeight }

func (c *Character) IsDestroyed() bool { return c.destroyed }

// SetTransform は複製されたTransformを反映します。観測者側で使います。
func (c *Character) SetTransform(t Transform) { c.transform = t }

// SetLocation はワールド境界へのクランプなど、ホスト側の補正に使います。
func (c *Character) SetLocation(loc Vec3) { c.transform.Location = loc }

// DoMove はコントロール回転のyawを基準に前後左右の移動入力を加えます。
func (c *Character) DoMove(right, forward float32) {
	if c.destroyed || !utils.FiniteAll(right, forward) {
		return
	}
	yaw := c.control.YawOnly()
	c.movement.AddInput(yaw.Vector(), forward)
	c.movement.AddInput(yaw.RightVector(), right)
}

// DoLook はコントロール回転にyawとpitchを加えます。
func (c *Character) DoLook(yaw, pitch float32) {
	if c.destroyed || !utils.FiniteAll(yaw, pitch) {
		return
	}
	c.control.Yaw = normalizeAxis(c.control.Yaw + yaw)
	c.control.Pitch = clamp(c.control.Pitch+pitch, -MaxLookPitch, MaxLookPitch)
}

func (c *Character) DoJumpStart() {
	if c.destroyed {
		return
	}
	c.movement.SetJump(true)
}

func (c *Character) DoJumpEnd() { c.movement.SetJump(false) }

// StartFire は発射入力です。離したときに対応する入力はありません。
func (c *Character) StartFire(ctx context.Context) bool {
	if c.destroyed || c.Health.IsDead() {
		return false
	}
	return c.Fire.StartFire(ctx)
}

// TakeDamage はダメージをHealthControllerへ渡し、結果のHPを返します。
func (c *Character) TakeDamage(ctx context.Context, amount float32, instigator, causer EntityID) float32 {
	return c.Health.ApplyDamage(ctx, DamageEvent{Amount: amount, Instigator: instigator, Causer: causer})
}

// Step は蓄積した入力をdt秒分の移動として反映します。死亡中は入力を捨てます。
func (c *Character) Step(dt float32) {
	if c.destroyed {
		return
	}
	if c.Health.IsDead() {
		c.movement.pendingInput = Vec3{}
		c.movement.SetJump(false)
	}
	c.transform = c.movement.Step(c.transform, dt)
}

// Destroy は保留中の発射クールダウンを取り消し、以後の入力を無視します。
func (c *Character) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.Fire.Destroy()
}

// Overlaps は点pを中心とする半径rの球がカプセルと重なるかを返します。
func (c *Character) Overlaps(p Vec3, r float32) bool {
	cfg := c.movement.cfg
	segHalf := cfg.CapsuleHalfHeight - cfg.CapsuleRadius
	center := c.transform.Location
	z := clamp(p.Z, center.Z-segHalf, center.Z+segHalf)
	closest := Vec3{X: center.X, Y: center.Y, Z: z}
	limit := cfg.CapsuleRadius + r
	d := p.Sub(closest)
	return d.Dot(d) <= limit*limit
}
