package providerclient

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
)

// GorillaDialer opens a WebSocket connection with gorilla/websocket (the
// teacher's direct dependency, already used for the control-plane side
// of the interact/REPL route in the original internal/api/handler.go)
// and returns it as the minimal WSConn surface the Cloudflare and
// Daytona adapters' exec-stream readers need. Adapters take a dialer of
// this shape rather than importing gorilla directly, so tests can swap
// in a fake WSConn without opening a real socket.
func GorillaDialer(ctx context.Context, url string, header map[string][]string) (WSConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, http.Header(header))
	if err != nil {
		return nil, err
	}
	return conn, nil
}
