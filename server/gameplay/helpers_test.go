package gameplay_test

import (
	"context"
	"math"
	"sync"

	"thirdpersonmp/server/gameplay"
)

type fakePawn struct {
	id  gameplay.EntityID
	loc gameplay.Vec3
	rot gameplay.Rotator
}

func newFakePawn() *fakePawn { return &fakePawn{id: gameplay.NewEntityID()} }

func (p *fakePawn) EntityID() gameplay.EntityID { return p.id }
func (p *fakePawn) Location() gameplay.Vec3 { return p.loc }
func (p *fakePawn) Rotation() gameplay.Rotator { return p.rot }

type recordingPresenter struct {
	mu    sync.Mutex
	notes []gameplay.Notification
}

func (p *recordingPresenter) Present(_ context.Context, n gameplay.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notes = append(p.notes, n)
}

func (p *recordingPresenter) texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.notes))
	for _, n := range p.notes {
		out = append(out, n.Text)
	}
	return out
}

type countingFactory struct {
	requests []gameplay.SpawnRequest
	err      error
}

func (f *countingFactory) SpawnProjectile(_ context.Context, req gameplay.SpawnRequest) (gameplay.EntityID, error) {
	if f.err != nil {
		return gameplay.EntityID{}, f.err
	}
	f.requests = append(f.requests, req)
	return gameplay.NewEntityID(), nil
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func approxVec(a, b gameplay.Vec3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func clampf(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
