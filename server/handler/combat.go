package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"thirdpersonmp/server/application"
	"thirdpersonmp/server/gameplay"
)

//go:generate go tool mockgen -destination=./mocks/combat_mock.go -package=mocks . CombatService

type CombatService interface {
	ApplyDamage(ctx context.Context, req application.DamageRequest) (application.DamageResult, error)
	NetworkDebug(ctx context.Context) ([]gameplay.DebugEntry, error)
}

// DamagePayload は POST /damage のリクエストです。
type DamagePayload struct {
	Target     string  `json:"target"`
	Amount     float32 `json:"amount"`
	Instigator string  `json:"instigator,omitempty"`
}

type DamageResponse struct {
	Target  string  `json:"target"`
	Current float32 `json:"current"`
	Max     float32 `json:"max"`
	Dead    bool    `json:"dead"`
}

type CombatHandler struct {
	combat CombatService
}

func NewCombatHandler(svc CombatService) *CombatHandler {
	return &CombatHandler{combat: svc}
}

func (h *CombatHandler) HandleDamage(w http.ResponseWriter, r *http.Request) {
	var payload DamagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	req, err := payload.request()
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.combat.ApplyDamage(r.Context(), req)
	if err != nil {
		httpError(w, statusOf(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(DamageResponse{
		Target:  result.Target.String(),
		Current: result.Current,
		Max:     result.Max,
		Dead:    result.Dead,
	})
}

// HandleNetworkDebug は権限側から見たネットワークデバッグ表示をテキストで返します。
func (h *CombatHandler) HandleNetworkDebug(w http.ResponseWriter, r *http.Request) {
	entries, err := h.combat.NetworkDebug(r.Context())
	if err != nil {
		httpError(w, statusOf(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(gameplay.FormatNetworkDebug(entries)))
}

func (p DamagePayload) request() (application.DamageRequest, error) {
	target, err := gameplay.ParseEntityID(p.Target)
	if err != nil {
		return application.DamageRequest{}, fmt.Errorf("invalid target: %w", err)
	}
	req := application.DamageRequest{Target: target, Amount: p.Amount}
	if p.Instigator != "" {
		if req.Instigator, err = gameplay.ParseEntityID(p.Instigator); err != nil {
			return application.DamageRequest{}, fmt.Errorf("invalid instigator: %w", err)
		}
	}
	return req, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, application.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrUnknownCharacter):
		return http.StatusNotFound
	case errors.Is(err, application.ErrApplicationBusy),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func httpError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
