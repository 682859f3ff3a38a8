package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"thirdpersonmp/server/gameplay"
	"thirdpersonmp/utils"
)

var ErrInvalidPayload = errors.New("combat: invalid payload")

const tracerName = "thirdpersonmp/server/application"

// DamageRequest は外部からのダメージ要求です。
type DamageRequest struct {
	Target     gameplay.EntityID
	Amount     float32
	Instigator gameplay.EntityID
}

// DamageResult は確定後のHPです。
type DamageResult struct {
	Target  gameplay.EntityID
	Current float32
	Max     float32
	Dead    bool
}

type MetricsRecorder interface {
	RecordLatency(ctx context.Context, endpoint string, duration time.Duration)
	IncrementCounter(ctx context.Context, name string, delta int)
}

type Clock interface {
	Now() time.Time
	Since(time.Time) time.Duration
}

type Validator interface {
	Damage(DamageRequest) error
}

// SystemClock は実時間の Clock です。
type SystemClock struct{}

func (SystemClock) Now() time.Time                  { return time.Now() }
func (SystemClock) Since(t time.Time) time.Duration { return time.Since(t) }

// CombatService はtickゴルーチン外からのダメージ適用とデバッグ表示を提供します。
type CombatService struct {
	commander Commander
	metrics   MetricsRecorder
	clock     Clock
	validate  Validator
	tracer    trace.Tracer
}

func NewCombatService(c Commander, m MetricsRecorder, clock Clock, validator Validator) (*CombatService, error) {
	if c == nil || m == nil || clock == nil || validator == nil {
		return nil, fmt.Errorf("combat: missing dependencies: commander=%v metrics=%v clock=%v validator=%v", c, m, clock, validator)
	}
	return &CombatService{
		commander: c,
		metrics:   m,
		clock:     clock,
		validate:  validator,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// ApplyDamage は次のtickで対象にダメージを与え、確定後のHPを返します。
func (s *CombatService) ApplyDamage(ctx context.Context, req DamageRequest) (DamageResult, error) {
	start := s.clock.Now()
	defer s.record(ctx, "damage", start)

	ctx, span := s.tracer.Start(ctx, "CombatService.ApplyDamage", trace.WithAttributes(
		attribute.String("target", req.Target.String()),
		attribute.Float64("amount", float64(req.Amount)),
	))
	defer span.End()

	if err := s.validate.Damage(req); err != nil {
		span.SetStatus(codes.Error, "invalid payload")
		return DamageResult{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var (
		result DamageResult
		found  bool
	)
	err := s.commander.Do(ctx, func(ctx context.Context, w *World) {
		c, ok := w.Character(req.Target)
		if !ok {
			return
		}
		found = true
		c.TakeDamage(ctx, req.Amount, req.Instigator, gameplay.EntityID{})
		result = DamageResult{
			Target:  req.Target,
			Current: c.Health.Current(),
			Max:     c.Health.Max(),
			Dead:    c.Health.IsDead(),
		}
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DamageResult{}, err
	}
	if !found {
		span.SetStatus(codes.Error, "unknown target")
		return DamageResult{}, fmt.Errorf("damage %s: %w", req.Target, ErrUnknownCharacter)
	}
	span.SetAttributes(attribute.Float64("current", float64(result.Current)), attribute.Bool("dead", result.Dead))
	return result, nil
}

// NetworkDebug は権限側から見た全キャラクターの役割とHPを返します。
func (s *CombatService) NetworkDebug(ctx context.Context) ([]gameplay.DebugEntry, error) {
	start := s.clock.Now()
	defer s.record(ctx, "debug", start)

	var entries []gameplay.DebugEntry
	if err := s.commander.Do(ctx, func(_ context.Context, w *World) {
		entries = w.DebugEntries()
	}); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *CombatService) record(ctx context.Context, endpoint string, started time.Time) {
	duration := s.clock.Since(started)
	ctx = context.WithoutCancel(ctx)
	s.metrics.RecordLatency(ctx, endpoint, duration)
	s.metrics.IncrementCounter(ctx, "requests."+endpoint, 1)
}

// SimpleValidator は最低限の入力検証を提供するデフォルト実装。
type SimpleValidator struct {
	MaxAmount float32
}

func (v SimpleValidator) Damage(req DamageRequest) error {
	if req.Target.IsZero() {
		return errors.New("target id is required")
	}
	if !utils.FiniteAll(req.Amount) {
		return fmt.Errorf("invalid amount: %f", req.Amount)
	}
	if v.MaxAmount > 0 && (req.Amount > v.MaxAmount || req.Amount < -v.MaxAmount) {
		return fmt.Errorf("amount %f exceeds limit %f", req.Amount, v.MaxAmount)
	}
	return nil
}
