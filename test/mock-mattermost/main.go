package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// Post is one incoming-webhook request as received.
type Post struct {
	Key        string          `json:"key"`
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

// PostStore stores received posts for verification
type PostStore struct {
	mu        sync.RWMutex
	posts     []Post
	failUntil int // posts left to answer with failCode
	failCode  int
}

func (s *PostStore) Add(p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, p)
}

func (s *PostStore) GetAll() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Post, len(s.posts))
	copy(result, s.posts)
	return result
}

func (s *PostStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = nil
	s.failUntil = 0
}

// SetFailure makes the next n posts answer with status.
func (s *PostStore) SetFailure(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCode = status
	s.failUntil = n
}

// nextStatus returns the status for the next post and consumes one failure.
func (s *PostStore) nextStatus() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUntil > 0 {
		s.failUntil--
		return s.failCode
	}
	return http.StatusOK
}

var store = &PostStore{}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8065"
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "mock-mattermost healthy")
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	// GET /posts - retrieve all received posts for verification
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		posts := store.GetAll()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"count": len(posts), "posts": posts}); err != nil {
			slog.Error("failed to encode posts response", "error", err)
		}
	})
	mux.HandleFunc("DELETE /posts", func(w http.ResponseWriter, r *http.Request) {
		store.Clear()
		w.WriteHeader(http.StatusNoContent)
		slog.Info("post store cleared")
	})

	// POST /control {"status":503,"count":1} - fail the next posts
	mux.HandleFunc("POST /control", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status int `json:"status"`
			Count  int `json:"count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
			return
		}
		if req.Status < 400 || req.Status > 599 || req.Count < 0 {
			http.Error(w, "status must be 4xx/5xx and count >= 0", http.StatusBadRequest)
			return
		}
		store.SetFailure(req.Status, req.Count)
		slog.Info("failure mode set", "status", req.Status, "count", req.Count)
		w.WriteHeader(http.StatusNoContent)
	})

	// Mattermost incoming webhook endpoint
	mux.HandleFunc("POST /hooks/{key}", func(w http.ResponseWriter, r *http.Request) {
		var payload json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			slog.Warn("400 Bad Request: invalid JSON", "error", err)
			http.Error(w, "Unable to parse incoming data", http.StatusBadRequest)
			return
		}

		status := store.nextStatus()
		if status != http.StatusOK {
			slog.Info("simulated failure", "status", status, "key", r.PathValue("key"))
			http.Error(w, "Service Unavailable", status)
			return
		}

		store.Add(Post{Key: r.PathValue("key"), ReceivedAt: time.Now().UTC(), Payload: payload})
		slog.Info("received webhook post", "key", r.PathValue("key"), "bytes", len(payload))
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "ok")
	})

	slog.Info("Mock Mattermost server starting", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
