// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/orientation_node/internal/config"
	"github.com/relabs-tech/orientation_node/internal/telemetry"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// reportHub keeps the latest Report and fans new ones out to websocket clients.
type reportHub struct {
	mu      sync.RWMutex
	last    telemetry.Report
	have    bool
	clients map[chan telemetry.Report]struct{}
}

func newReportHub() *reportHub {
	return &reportHub{clients: make(map[chan telemetry.Report]struct{})}
}

func (h *reportHub) update(r telemetry.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = r
	h.have = true
	for c := range h.clients {
		// slow clients miss reports rather than stall the MQTT callback
		select {
		case c <- r:
		default:
		}
	}
}

func (h *reportHub) latest() (telemetry.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

func (h *reportHub) subscribe() chan telemetry.Report {
	c := make(chan telemetry.Report, 8)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *reportHub) unsubscribe(c chan telemetry.Report) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// handleOrientation serves the latest Report as JSON.
func (h *reportHub) handleOrientation(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleWS streams every Report, starting with the latest one if any.
func (h *reportHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	reports := h.subscribe()
	defer h.unsubscribe(reports)

	if rep, ok := h.latest(); ok {
		if err := writeReport(conn, rep); err != nil {
			return
		}
	}

	// The client never sends anything; reading only notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case rep := <-reports:
			if err := writeReport(conn, rep); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

func writeReport(conn *websocket.Conn, rep telemetry.Report) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(rep)
}

func newWebMux(h *reportHub, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orientation", h.handleOrientation)
	mux.HandleFunc("/ws", h.handleWS)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

// RunWeb subscribes to the node's reports and serves them over HTTP.
func RunWeb() error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return errors.New("web: MQTT_BROKER is not set")
	}

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return fmt.Errorf("web: %w", err)
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	hub := newReportHub()
	if err := telemetry.Subscribe(client, cfg.TopicOrientation, hub.update); err != nil {
		return fmt.Errorf("web: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(hub, "web"))
}
