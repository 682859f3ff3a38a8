package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"thirdpersonmp/server/domain"
	"thirdpersonmp/server/handler"
)

// Routes はHTTPハンドラが依存するものをまとめた構造体です。
type Routes struct {
	PubSub      domain.PubSub
	RoomManager domain.RoomManager
	Endpoint    domain.EndpointConfig
	Combat      *handler.CombatHandler
	Ready       func() bool
	// AdminSecret が空でなければ管理用エンドポイントにJWTを要求する
	AdminSecret []byte
}

func Route(r Routes) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", handler.NewAcceptHandler(r.PubSub, r.RoomManager, r.Endpoint))
	mux.Handle("GET /healthz", handler.NewHealthHandler(r.Ready))
	mux.Handle("POST /damage", handler.RequireToken(r.AdminSecret, http.HandlerFunc(r.Combat.HandleDamage)))
	mux.Handle("GET /debug/network", handler.RequireToken(r.AdminSecret, http.HandlerFunc(r.Combat.HandleNetworkDebug)))
	return otelhttp.NewHandler(mux, "thirdpersonmp",
		otelhttp.WithFilter(func(req *http.Request) bool { return req.URL.Path != "/ws" }),
	)
}
