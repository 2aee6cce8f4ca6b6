package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/crillab/panoramyx/internal/logx"
)

var upgrader = websocket.Upgrader{}

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// pingPeriod is how often pings are sent to the peer. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// closeGracePeriod is the time to wait before force-closing a connection.
	closeGracePeriod = 10 * time.Second
	// pubResolution bounds how often an event is pushed to a connected client.
	pubResolution = 100 * time.Millisecond
)

// Server serves a single dashboard page and streams Bus events to it over a
// websocket, grounded on server.Server's serveIndex/serveWebsocket/
// publishEleUpdates. Like the teacher's server, this assumes one connected
// client at a time: the Bus view it reads from is exclusively its own.
type Server struct {
	addr string
	bus  *Bus
	log  *logx.Logger
}

// NewServer builds a dashboard Server that streams bus's cube-event view to
// connected clients.
func NewServer(addr string, bus *Bus) *Server {
	return &Server{addr: addr, bus: bus, log: logx.New("dashboard")}
}

// Serve blocks, serving the dashboard until ctx is done or ListenAndServe
// fails.
func (s *Server) Serve(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.serveWebsocket)

	httpServer := &http.Server{Addr: s.addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), closeGracePeriod)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: serve: %w", err)
	}
	return nil
}

// serveWebsocket upgrades the connection and streams events to it until the
// client disconnects or the bus's context is done.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.log.Warnf("upgrade: %v", err)
		return
	}
	defer s.closeWebsocket(ws)
	s.publishEvents(r.Context(), ws)
}

// publishEvents watches the bus for events and pushes them to the client, no
// faster than pubResolution, exactly as server.Server.publishEleUpdates does
// for its own updates channel: same ping/pong health-check loop, same
// read-pump goroutine required to drive the gorilla/websocket control-frame
// handlers.
func (s *Server) publishEvents(ctx context.Context, ws *websocket.Conn) {
	last := time.Now()
	pubCtx, cancelPub := context.WithCancel(ctx)
	defer cancelPub()

	pong := make(chan struct{})
	defer close(pong)
	ws.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancelPub()
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	lastPong := time.Now()

	events := s.bus.CubeEvents()
	for {
		select {
		case <-pubCtx.Done():
			return
		case <-ticker.C:
			if time.Since(lastPong) > pingPeriod*2 {
				s.log.Warnf("client unresponsive, closing")
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-pong:
			lastPong = time.Now()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if time.Since(last) < pubResolution {
				continue
			}
			last = time.Now()
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

func (s *Server) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>panoramyx</title></head>
<body>
<h1>panoramyx run</h1>
<table id="events"></table>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
const table = document.getElementById("events");
ws.onmessage = function(event) {
  const ev = JSON.parse(event.data);
  const row = table.insertRow();
  row.insertCell().innerText = ev.Kind;
  row.insertCell().innerText = ev.Rank;
};
</script>
</body>
</html>`

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := indexTemplate.Execute(w, nil); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
