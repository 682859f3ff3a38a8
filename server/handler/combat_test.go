package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"thirdpersonmp/server/application"
	"thirdpersonmp/server/gameplay"
	"thirdpersonmp/server/handler"
	"thirdpersonmp/server/handler/mocks"
)

func postDamage(h *handler.CombatHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/damage", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleDamage(rec, req)
	return rec
}

func TestCombatHandler_Damage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	target := gameplay.NewEntityID()
	svc := mocks.NewMockCombatService(ctrl)
	svc.EXPECT().ApplyDamage(gomock.Any(), application.DamageRequest{Target: target, Amount: 30}).
		Return(application.DamageResult{Target: target, Current: 70, Max: 100}, nil)

	rec := postDamage(handler.NewCombatHandler(svc), fmt.Sprintf(`{"target":%q,"amount":30}`, target))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp handler.DamageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Target != target.String() || resp.Current != 70 || resp.Max != 100 || resp.Dead {
		t.Errorf("response = %+v", resp)
	}
}

func TestCombatHandler_DamageBadRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h := handler.NewCombatHandler(mocks.NewMockCombatService(ctrl))

	cases := []struct {
		name string
		body string
	}{
		{"json", `{"target":`},
		{"target", `{"target":"nope","amount":1}`},
		{"instigator", fmt.Sprintf(`{"target":%q,"amount":1,"instigator":"nope"}`, gameplay.NewEntityID())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := postDamage(h, tc.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCombatHandler_DamageErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", application.ErrInvalidPayload), http.StatusBadRequest},
		{application.ErrUnknownCharacter, http.StatusNotFound},
		{application.ErrApplicationBusy, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			svc := mocks.NewMockCombatService(ctrl)
			svc.EXPECT().ApplyDamage(gomock.Any(), gomock.Any()).Return(application.DamageResult{}, tc.err)

			rec := postDamage(handler.NewCombatHandler(svc), fmt.Sprintf(`{"target":%q,"amount":1}`, gameplay.NewEntityID()))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCombatHandler_NetworkDebug(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mocks.NewMockCombatService(ctrl)
	svc.EXPECT().NetworkDebug(gomock.Any()).Return([]gameplay.DebugEntry{
		{Name: "Character_1", Roles: gameplay.ServerRoles(), Health: 70},
	}, nil)

	rec := httptest.NewRecorder()
	handler.NewCombatHandler(svc).HandleNetworkDebug(rec, httptest.NewRequest(http.MethodGet, "/debug/network", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"=== Network Debug Info ===",
		"[Character_1] LocallyControlled: FALSE | LocalRole: ROLE_Authority | RemoteRole: ROLE_AutonomousProxy",
		"Health: 70.000000",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestHealthHandler(t *testing.T) {
	ready := false
	h := handler.NewHealthHandler(func() bool { return ready })

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	ready = true
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
