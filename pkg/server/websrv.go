package server

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/attorneyonline/tsugo/pkg/protocol"
)

// wsDescriptor adapts a WebSocket connection to the game transport.
// WebAO speaks the same frame grammar, one frame per text message.
type wsDescriptor struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func (d *wsDescriptor) SendCommand(name string, args ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	d.conn.WriteMessage(websocket.TextMessage, []byte(protocol.JoinCommand(name, args...)))
}

func (d *wsDescriptor) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.conn.Close()
}

// WebServer serves the WebSocket transport for browser clients.
type WebServer struct {
	srv      *Server
	httpSrv  *http.Server
	upgrader websocket.Upgrader
}

// NewWebServer builds the WebSocket front end over the same game and
// engine the TCP server uses.
func NewWebServer(srv *Server) *WebServer {
	ws := &WebServer{
		srv: srv,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", ws.handleUpgrade)
	ws.httpSrv = &http.Server{Handler: mux}
	return ws
}

// ListenAndServe starts the WebSocket listener. With a configured
// domain it terminates TLS via Let's Encrypt. It blocks.
func (ws *WebServer) ListenAndServe() error {
	cfg := ws.srv.Game.Config
	addr := fmt.Sprintf(":%d", cfg.WSPort)
	ws.httpSrv.Addr = addr

	if cfg.WSDomain != "" {
		tlsRes, err := SetupTLS(cfg.WSDomain, cfg.CertDir)
		if err != nil {
			return err
		}
		ws.httpSrv.TLSConfig = tlsRes.Config
		log.Printf("websocket listening on %s (wss, domain %s)", addr, cfg.WSDomain)
		if err := ws.httpSrv.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
			return err
		}
		return nil
	}

	log.Printf("websocket listening on %s", addr)
	if err := ws.httpSrv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting WebSocket clients.
func (ws *WebServer) Shutdown() {
	ws.httpSrv.Close()
}

func (ws *WebServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade from %s: %v", r.RemoteAddr, err)
		return
	}

	host, _, serr := net.SplitHostPort(r.RemoteAddr)
	if serr != nil {
		host = r.RemoteAddr
	}
	d := &wsDescriptor{conn: conn}
	cl, ok := ws.srv.Game.Clients.New(IPID(host), d, ws.srv.Game)
	if !ok {
		log.Printf("refusing websocket %s: server full", host)
		d.SendCommand("BD", "This server is full.")
		d.Close()
		return
	}
	if ws.srv.Metrics != nil {
		ws.srv.Metrics.ConnectionOpened("websocket")
	}
	log.Printf("[%d] accepted websocket %s", cl.ID, host)

	pc := protocol.NewConn(ws.srv.Engine, cl)
	go func() {
		defer func() {
			pc.Close()
			ws.srv.Game.Clients.Remove(cl.ID)
			d.Close()
			log.Printf("[%d] disconnected", cl.ID)
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if ferr := pc.Feed(data); ferr != nil {
				log.Printf("[%d] dropping connection: %v", cl.ID, ferr)
				return
			}
		}
	}()
}
