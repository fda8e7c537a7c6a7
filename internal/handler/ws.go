package handler

import (
	"net/http"

	"github.com/spinhall/platform/internal/infra"
)

// WSHandler upgrades authenticated requests to WebSocket connections. Each
// connection joins the caller's user room and receives balance updates as
// they commit.
func WSHandler(hub *infra.WSHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromContext(r)
		if err != nil {
			RespondError(w, err)
			return
		}
		hub.ServeWS(w, r, userID.String())
	}
}
