package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"thirdpersonmp/server/domain"
	domainmocks "thirdpersonmp/server/domain/mocks"
	"thirdpersonmp/server/handler"
	handlermocks "thirdpersonmp/server/handler/mocks"
)

func TestRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	combat := handlermocks.NewMockCombatService(ctrl)
	combat.EXPECT().NetworkDebug(gomock.Any()).Return(nil, nil)

	h := Route(Routes{
		PubSub:      domainmocks.NewMockPubSub(ctrl),
		RoomManager: domainmocks.NewMockRoomManager(ctrl),
		Endpoint:    domain.EndpointConfig{},
		Combat:      handler.NewCombatHandler(combat),
		Ready:       func() bool { return true },
		AdminSecret: []byte("secret"),
	})

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodPost, "/healthz", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/damage", `{}`, http.StatusUnauthorized},
		{http.MethodGet, "/debug/network", "", http.StatusUnauthorized},
		{http.MethodGet, "/missing", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	// シークレットなしなら認証なしで通る
	open := Route(Routes{Combat: handler.NewCombatHandler(combat)})
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/network", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
