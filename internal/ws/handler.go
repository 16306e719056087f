package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/lightsd/internal/events"
	"github.com/jmylchreest/lightsd/pkg/lights"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// parseFilter reads the comma separated "types" and "lights" query parameters.
// Lights may be given by name or index.
func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	types, err := events.ParseTypes(q.Get("types"))
	if err != nil {
		return Filter{}, err
	}
	f := Filter{Types: types}
	for part := range strings.SplitSeq(q.Get("lights"), ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		id, err := lights.ParseID(part)
		if err != nil {
			return Filter{}, err
		}
		f.Lights = append(f.Lights, id.String())
	}
	return f, nil
}

// Handler upgrades the request and registers the connection with hub.
func Handler(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("ws: upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}

		client := hub.NewClient(conn, filter)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
