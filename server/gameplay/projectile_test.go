package gameplay_test

import (
	"context"
	"testing"
	"time"

	"thirdpersonmp/server/gameplay"
)

func spawnProjectile(owner gameplay.EntityID, loc gameplay.Vec3) *gameplay.Projectile {
	return gameplay.NewProjectile(gameplay.NewEntityID(), gameplay.DefaultProjectileClass(), gameplay.SpawnRequest{
		Transform:  gameplay.Transform{Location: loc},
		Owner:      owner,
		Instigator: owner,
	})
}

func TestProjectile_StepAppliesGravity(t *testing.T) {
	p := spawnProjectile(gameplay.NewEntityID(), gameplay.Vec3{Z: 500})

	if !p.Step(100 * time.Millisecond) {
		t.Fatalf("projectile should still be alive")
	}
	if !approx(p.Location.X, 150) {
		t.Fatalf("X = %f, want 150", p.Location.X)
	}
	wantVZ := -gameplay.WorldGravity * gameplay.ProjectileGravityScale * 0.1
	if !approx(p.Velocity.Z, wantVZ) {
		t.Fatalf("vz = %f, want %f", p.Velocity.Z, wantVZ)
	}
}

func TestProjectile_ExpiresAfterLifeSpan(t *testing.T) {
	p := spawnProjectile(gameplay.NewEntityID(), gameplay.Vec3{Z: 1e6})
	alive := true
	for i := 0; i < 4 && alive; i++ {
		alive = p.Step(time.Second)
	}
	if alive {
		t.Fatalf("projectile should expire after %v", gameplay.ProjectileLifeSpan)
	}
}

func TestProjectile_HitsGround(t *testing.T) {
	p := spawnProjectile(gameplay.NewEntityID(), gameplay.Vec3{Z: 1})
	if p.Step(100 * time.Millisecond) {
		t.Fatalf("projectile should hit the ground")
	}
}

// 所有者には当たらず、他のキャラクターにダメージを与える
func TestProjectile_ImpactSkipsOwner(t *testing.T) {
	timers := gameplay.NewTimerManager()
	shooter := newServerCharacter(t, timers, &countingFactory{})
	victim := newServerCharacter(t, timers, &countingFactory{})
	victim.SetLocation(shooter.Location())

	p := spawnProjectile(shooter.EntityID(), shooter.Location())
	hit, ok := p.Impact(context.Background(), []gameplay.Target{shooter, victim})
	if !ok || hit.EntityID() != victim.EntityID() {
		t.Fatalf("expected victim hit, got %v ok=%v", hit, ok)
	}
	if shooter.Health.Current() != 100 {
		t.Fatalf("owner health = %f, want 100", shooter.Health.Current())
	}
	if victim.Health.Current() != 100-gameplay.ProjectileDamage {
		t.Fatalf("victim health = %f, want %f", victim.Health.Current(), 100-gameplay.ProjectileDamage)
	}

	p.Destroy(context.Background())
	if _, ok := p.Impact(context.Background(), []gameplay.Target{victim}); ok {
		t.Fatalf("destroyed projectile should not hit")
	}
}
