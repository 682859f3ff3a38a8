package gameplay

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"weak"
)

const (
	// DefaultFireRate は発射間隔の既定値です。
	DefaultFireRate = 250 * time.Millisecond
	// MuzzleForwardOffset は前方向への発射位置オフセットです。
	MuzzleForwardOffset float32 = 100
	// MuzzleUpOffset は上方向への発射位置オフセットです。
	MuzzleUpOffset float32 = 50
)

var (
	ErrMissingPawn   = errors.New("gameplay: pawn is required")
	ErrMissingTimers = errors.New("gameplay: timer manager is required")
)

// Pawn は発射位置の計算に使う所有エンティティです。
type Pawn interface {
	EntityID() EntityID
	Location() Vec3
	Rotation() Rotator
}

// Timers はFireControllerが使う単発タイマーです。
type Timers interface {
	SetTimer(delay time.Duration, fn func()) TimerHandle
	ClearTimer(h *TimerHandle)
}

// FireConfig はFireControllerの依存関係です。
// Factory は権限側、Router は非権限側でのみ必要です。
type FireConfig struct {
	Pawn          Pawn
	FireRate      time.Duration
	Timers        Timers
	Authority     AuthorityContext
	Factory       EntityFactory
	Router        FireRouter
	MuzzleForward float32
	MuzzleUp      float32
}

// FireController は発射要求をfireRateごとに最大1回へ制限し、
// 弾の生成を権限側に限定します。
//
//	Idle --StartFire--> Firing --cooldown expiry--> Idle
//
// 発射ボタンを離してもクールダウンは取り消されません。
type FireController struct {
	pawn          Pawn
	fireRate      time.Duration
	timers        Timers
	authority     AuthorityContext
	factory       EntityFactory
	router        FireRouter
	muzzleForward float32
	muzzleUp      float32

	isFiring  bool
	cooldown  TimerHandle
	destroyed bool
}

func NewFireController(cfg FireConfig) (*FireController, error) {
	if cfg.Pawn == nil {
		return nil, ErrMissingPawn
	}
	if cfg.Timers == nil {
		return nil, ErrMissingTimers
	}
	if cfg.Authority == nil {
		return nil, ErrMissingAuthority
	}
	f := &FireController{
		pawn:          cfg.Pawn,
		fireRate:      cfg.FireRate,
		timers:        cfg.Timers,
		authority:     cfg.Authority,
		factory:       cfg.Factory,
		router:        cfg.Router,
		muzzleForward: cfg.MuzzleForward,
		muzzleUp:      cfg.MuzzleUp,
	}
	if f.fireRate <= 0 {
		f.fireRate = DefaultFireRate
	}
	if f.muzzleForward == 0 && f.muzzleUp == 0 {
		f.muzzleForward = MuzzleForwardOffset
		f.muzzleUp = MuzzleUpOffset
	}
	return f, nil
}

func (f *FireController) IsFiring() bool { return f.isFiring }

func (f *FireController) FireRate() time.Duration { return f.fireRate }

// StartFire はクールダウン中でなければ発射し、true を返します。
// クールダウン中の呼び出しは無視します。
func (f *FireController) StartFire(ctx context.Context) bool {
	slog.DebugContext(ctx, "fire: start requested", "entity", f.pawn.EntityID(), "firing", f.isFiring)
	if f.destroyed || f.isFiring {
		return false
	}
	f.isFiring = true

	// タイマーは弱参照だけを保持し、破棄後のコントローラーには触れない
	ref := weak.Make(f)
	f.cooldown = f.timers.SetTimer(f.fireRate, func() {
		if fc := ref.Value(); fc != nil {
			fc.onCooldownExpired()
		}
	})

	f.RequestSpawn(ctx)
	return true
}

// StopFire は発射状態を解除します。通常はクールダウン満了時にのみ呼ばれます。
func (f *FireController) StopFire() {
	f.timers.ClearTimer(&f.cooldown)
	f.isFiring = false
}

func (f *FireController) onCooldownExpired() {
	if f.destroyed {
		return
	}
	// 発火済みのタイマーなのでハンドルだけ無効化する
	f.cooldown.Invalidate()
	f.StopFire()
}

// RequestSpawn は権限側なら弾を生成し、非権限側なら権限側へ要求を転送します。
func (f *FireController) RequestSpawn(ctx context.Context) {
	owner := f.pawn.EntityID()
	if !f.authority.IsAuthoritative() {
		if f.router == nil {
			slog.WarnContext(ctx, "fire: no route to authority, request dropped", "entity", owner)
			return
		}
		if err := f.router.ServerHandleFire(ctx, owner); err != nil {
			slog.WarnContext(ctx, "fire: failed to route request to authority", "entity", owner, "err", err)
		}
		return
	}

	if f.factory == nil {
		slog.WarnContext(ctx, "fire: no entity factory configured", "entity", owner)
		return
	}
	req := SpawnRequest{
		Transform:  f.SpawnTransform(),
		Owner:      owner,
		Instigator: owner,
	}
	id, err := f.factory.SpawnProjectile(ctx, req)
	if err != nil {
		slog.WarnContext(ctx, "fire: projectile not spawned", "entity", owner, "err", err)
		return
	}
	slog.DebugContext(ctx, "fire: projectile spawned", "entity", owner, "projectile", id)
}

// SpawnTransform は所有者の前方と上方にずらした発射位置を返します。
func (f *FireController) SpawnTransform() Transform {
	rot := f.pawn.Rotation()
	loc := f.pawn.Location().
		Add(rot.Vector().Scale(f.muzzleForward)).
		Add(rot.UpVector().Scale(f.muzzleUp))
	return Transform{Location: loc, Rotation: rot}
}

// Destroy は保留中のクールダウンを取り消します。以後の発射要求は無視されます。
func (f *FireController) Destroy() {
	if f.destroyed {
		return
	}
	f.destroyed = true
	f.timers.ClearTimer(&f.cooldown)
	f.isFiring = false
}
