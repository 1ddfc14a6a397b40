package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pulseui/pulse/pkg/dom"
	"github.com/pulseui/pulse/pkg/middleware"
	"github.com/pulseui/pulse/pkg/reactive"
	"github.com/pulseui/pulse/pkg/render"
	"github.com/pulseui/pulse/pkg/vdom"
	"github.com/pulseui/pulse/pkg/wire"
)

func serveCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the demo server",
		Long: `Start a server that renders a live reactive document.

The demo page server-renders a counter driven by a signal. The
current tree is available as JSON at /tree and is pushed to
WebSocket clients at /ws on every change. Prometheus metrics
are exposed at /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port)
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "127.0.0.1", "Host to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8420, "Port to listen on")

	return cmd
}

func runServe(host string, port int) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	rt := reactive.NewRuntime(
		reactive.WithLogger(logger),
		reactive.WithMetrics(prometheus.DefaultRegisterer),
	)
	doc := dom.NewDocument(rt, dom.WithDocumentLogger(logger))
	app := buildDemoApp(doc)

	metrics := middleware.NewMetrics()
	hub := newHub(logger, metrics)

	// Push the serialized tree to every client whenever the counter
	// lands a flushed change.
	app.count.Subscribe(func(int) {
		payload, err := wire.Encode(wire.FromVNode(doc.Root()))
		if err != nil {
			logger.Error("serialize tree", "error", err)
			return
		}
		hub.broadcast(payload)
		metrics.RecordPush()
	})

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := app.count.Update(func(n int) int { return n + 1 }); err != nil {
				logger.Error("tick", "error", err)
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Handler)
	r.Use(middleware.OpenTelemetry())

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := render.NewRenderer(render.Config{}).RenderPage(w, render.PageData{
			Title: "Pulse demo",
			Body:  doc.Root(),
		})
		if err != nil {
			logger.Error("render page", "error", err)
		}
	})
	r.Get("/tree", func(w http.ResponseWriter, req *http.Request) {
		payload, err := wire.Encode(wire.FromVNode(doc.Root()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	})
	r.Get("/ws", hub.handleWS)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	printBanner()
	info("serving on http://%s", addr)
	info("metrics on http://%s/metrics", addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.closeAll()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// demoApp is the reactive state behind the demo page.
type demoApp struct {
	count *reactive.State[int]
}

func buildDemoApp(doc *dom.Document) *demoApp {
	app := &demoApp{
		count: reactive.NewState(doc.Runtime(), 0),
	}
	double := reactive.Derive(app.count, func(n int) int { return n * 2 })

	doc.Mount(vdom.Div(vdom.ID("app"),
		vdom.H1(vdom.Text("Pulse demo")),
		dom.Reactive(doc, func() *vdom.VNode {
			return vdom.P(
				vdom.Textf("uptime: %ds, doubled: %d", app.count.Get(), double.Get()),
			)
		}),
	))
	return app
}

// hub fans the serialized tree out to connected WebSocket clients.
type hub struct {
	logger  *slog.Logger
	metrics *middleware.Metrics

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newHub(logger *slog.Logger, metrics *middleware.Metrics) *hub {
	return &hub{
		logger:  logger,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	h.metrics.RecordSessionOpen()
	h.logger.Info("client connected", "remote", conn.RemoteAddr())

	// Reader loop only detects disconnects; clients do not send.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *hub) broadcast(payload []byte) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("write failed, dropping client", "remote", c.RemoteAddr(), "error", err)
			h.drop(c)
		}
	}
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
		h.metrics.RecordSessionClose()
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		h.drop(c)
	}
}
