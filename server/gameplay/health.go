package gameplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// MinMaxHealth は最大HPの下限です。0以下の最大HPはこの値に切り上げます。
const MinMaxHealth float32 = 1

// ErrMissingAuthority は権限コンテキストが渡されなかった場合のエラーです。
var ErrMissingAuthority = errors.New("gameplay: authority context is required")

// DamageEvent は一度だけ消費されるダメージ入力です。
type DamageEvent struct {
	Amount     float32
	Instigator EntityID
	Causer     EntityID
}

// HealthConfig はHealthControllerの依存関係です。
// Control, Replication, Presenter は省略可能です。
type HealthConfig struct {
	Entity      EntityID
	Name        string
	Max         float32
	Authority   AuthorityContext
	Control     ControlContext
	Replication ReplicationChannel
	Presenter   Presenter
}

// HealthController は権限側で確定するHPを保持し、変更を通知します。
// 1エンティティにつき1ゴルーチンから操作される前提でロックは持ちません。
type HealthController struct {
	entity EntityID
	name   string

	current float32
	max     float32
	dead    bool

	authority   AuthorityContext
	control     ControlContext
	replication ReplicationChannel
	presenter   Presenter
}

func NewHealthController(ctx context.Context, cfg HealthConfig) (*HealthController, error) {
	if cfg.Authority == nil {
		return nil, ErrMissingAuthority
	}
	h := &HealthController{
		entity:      cfg.Entity,
		name:        cfg.Name,
		authority:   cfg.Authority,
		control:     cfg.Control,
		replication: cfg.Replication,
		presenter:   cfg.Presenter,
	}
	if h.control == nil {
		h.control = NetRoles{}
	}
	if h.presenter == nil {
		h.presenter = nopPresenter{}
	}
	if h.replication != nil {
		h.replication.OnRemoteUpdate(FieldCurrentHealth, h.onRemoteUpdate)
	}
	h.Initialize(ctx, cfg.Max)
	return h, nil
}

// Initialize は最大HPを設定し、現在HPを最大値にします。
func (h *HealthController) Initialize(ctx context.Context, max float32) {
	if math.IsNaN(float64(max)) || max <= 0 {
		slog.WarnContext(ctx, "health: non-positive max health, using minimum",
			"entity", h.entity, "max", max, "min", MinMaxHealth)
		max = MinMaxHealth
	}
	h.max = max
	h.current = max
	h.dead = false
}

func (h *HealthController) Current() float32 { return h.current }

func (h *HealthController) Max() float32 { return h.max }

// IsDead は一度HPが0以下で確定したかを返します。
func (h *HealthController) IsDead() bool { return h.dead }

// ApplyDamage は current - amount を確定させ、結果のHPを返します。
// 負の値は回復として扱います。非権限コンテキストでは何も変わりません。
func (h *HealthController) ApplyDamage(ctx context.Context, ev DamageEvent) float32 {
	slog.DebugContext(ctx, "health: damage received",
		"entity", h.entity, "amount", ev.Amount, "instigator", ev.Instigator, "causer", ev.Causer)
	h.SetCurrent(ctx, h.current-ev.Amount)
	return h.current
}

// SetCurrent は権限側でのみ [0, max] に丸めた値を確定させます。
// 非権限コンテキストからの呼び出しはエラーにせず無視します。
func (h *HealthController) SetCurrent(ctx context.Context, value float32) {
	if !h.authority.IsAuthoritative() {
		return
	}
	if math.IsNaN(float64(value)) {
		slog.WarnContext(ctx, "health: NaN ignored", "entity", h.entity)
		return
	}
	if h.dead {
		slog.DebugContext(ctx, "health: entity already dead, commit ignored", "entity", h.entity)
		return
	}

	prev := h.current
	h.current = clamp(value, 0, h.max)
	if h.current <= 0 {
		h.dead = true
	}
	h.onHealthChanged(ctx)

	if h.replication != nil && h.current != prev {
		h.replication.Publish(ctx, FieldCurrentHealth, h.current)
	}
}

// onRemoteUpdate は観測者側で複製値を受け取ったときに呼ばれます。
func (h *HealthController) onRemoteUpdate(ctx context.Context, value float32) {
	if math.IsNaN(float64(value)) {
		slog.WarnContext(ctx, "health: NaN replicated value ignored", "entity", h.entity)
		return
	}
	h.current = clamp(value, 0, h.max)
	h.dead = h.current <= 0
	h.onHealthChanged(ctx)
}

func (h *HealthController) onHealthChanged(ctx context.Context) {
	// ローカル操作しているクライアント向け
	if h.control.IsLocallyControlled() {
		h.presenter.Present(ctx, Notification{
			Entity:      h.entity,
			Perspective: PerspectiveSelf,
			Text:        fmt.Sprintf("You now have %f health remaining.", h.current),
			Duration:    NotificationDuration,
		})
		if h.current <= 0 {
			h.presenter.Present(ctx, Notification{
				Entity:      h.entity,
				Perspective: PerspectiveSelf,
				Severity:    SeverityAlert,
				Text:        "You have been killed.",
				Duration:    NotificationDuration,
			})
		}
	}
	// サーバー向け
	if h.authority.IsAuthoritative() {
		h.presenter.Present(ctx, Notification{
			Entity:      h.entity,
			Perspective: PerspectiveBroadcast,
			Text:        fmt.Sprintf("%s now has %f health remaining.", h.name, h.current),
			Duration:    NotificationDuration,
		})
	}
}
