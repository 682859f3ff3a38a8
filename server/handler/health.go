package handler

import "net/http"

// NewHealthHandler はready が false の間 503 を返します。ready が nil の場合は常に 200 です。
func NewHealthHandler(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
