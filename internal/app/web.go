// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/relabs-tech/vio_computer/internal/config"
	"github.com/relabs-tech/vio_computer/internal/nav"
	"github.com/relabs-tech/vio_computer/internal/publish"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local network tool
	},
}

// liveHub assembles the per-topic navigation messages into one nav.State
// and fans every change out to websocket clients.
type liveHub struct {
	topics publish.Topics
	logger *zap.SugaredLogger

	mu    sync.Mutex
	state nav.State
	have  bool
	subs  map[chan nav.State]struct{}
}

func newLiveHub(topics publish.Topics, logger *zap.SugaredLogger) *liveHub {
	return &liveHub{topics: topics, logger: logger, subs: make(map[chan nav.State]struct{})}
}

// route decodes payload according to topic and merges it into the state.
func (h *liveHub) route(topic string, payload []byte) error {
	var target interface{}
	var apply func(*nav.State)

	switch topic {
	case h.topics.Position:
		var m nav.Position
		target, apply = &m, func(s *nav.State) { s.Position = m }
	case h.topics.Attitude:
		var m nav.Attitude
		target, apply = &m, func(s *nav.State) { s.Attitude = m }
	case h.topics.Heading:
		var m nav.Heading
		target, apply = &m, func(s *nav.State) { s.Heading = m }
	case h.topics.Velocity:
		var m nav.Velocity
		target, apply = &m, func(s *nav.State) { s.Velocity = m }
	case h.topics.Confidence:
		var m nav.Confidence
		target, apply = &m, func(s *nav.State) { s.Confidence = m }
	default:
		return errors.Errorf("unexpected topic %q", topic)
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return errors.Wrapf(err, "decode %s", topic)
	}
	h.update(apply)
	return nil
}

func (h *liveHub) update(apply func(*nav.State)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	apply(&h.state)
	h.have = true
	for ch := range h.subs {
		select {
		case ch <- h.state:
		default:
			// slow client; it will catch up on the next message
		}
	}
}

func (h *liveHub) snapshot() (nav.State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, h.have
}

func (h *liveHub) subscribe() (<-chan nav.State, func()) {
	ch := make(chan nav.State, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// handleAPI serves the latest state as JSON.
func (h *liveHub) handleAPI(w http.ResponseWriter, r *http.Request) {
	state, ok := h.snapshot()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		h.logger.Warnw("json encode error", "error", err)
	}
}

// handleWS streams every state change to the client.
func (h *liveHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.subscribe()
	defer unsubscribe()

	// the client never sends anything useful; reading detects the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debugw("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	if state, ok := h.snapshot(); ok {
		if err := conn.WriteJSON(state); err != nil {
			return
		}
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case state := <-updates:
			if err := conn.WriteJSON(state); err != nil {
				h.logger.Debugw("websocket write error", "error", err)
				return
			}
		}
	}
}

func (h *liveHub) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/navigation", h.handleAPI)
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

// subscribeNavigation feeds every navigation output topic into hub.
func subscribeNavigation(client mqtt.Client, hub *liveHub, logger *zap.SugaredLogger) error {
	topics := hub.topics
	filters := map[string]byte{
		topics.Position:   0,
		topics.Attitude:   0,
		topics.Heading:    0,
		topics.Velocity:   0,
		topics.Confidence: 0,
	}
	token := client.SubscribeMultiple(filters, func(_ mqtt.Client, msg mqtt.Message) {
		if err := hub.route(msg.Topic(), msg.Payload()); err != nil {
			logger.Warnw("MQTT payload error", "error", err)
		}
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return errors.Wrap(err, "subscribe navigation topics")
	}
	logger.Infow("subscribed to navigation topics", "topics", filters)
	return nil
}

// RunWeb subscribes to the navigation topics and serves the latest state
// over HTTP and websocket until ctx is cancelled.
func RunWeb(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	logger = logger.Named("web")
	hub := newLiveHub(cfg.Topics(), logger)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeNavigation(client, hub, logger); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           hub.mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infow("web server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
