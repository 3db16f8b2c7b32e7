package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/sceneview/internal/asset"
	"github.com/inamate/sceneview/internal/config"
	"github.com/inamate/sceneview/internal/export"
	"github.com/inamate/sceneview/internal/geom"
	mw "github.com/inamate/sceneview/internal/middleware"
	"github.com/inamate/sceneview/internal/sample"
	"github.com/inamate/sceneview/internal/scene"
	"github.com/inamate/sceneview/internal/session"
	"github.com/inamate/sceneview/internal/tool"
	"github.com/inamate/sceneview/internal/typeid"
	"github.com/inamate/sceneview/internal/view"
)

// Shared canvas anyone can join without creating one first.
const playgroundCanvasID = "playground"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	lib, err := asset.NewLibrary(cfg.AssetDir)
	if err != nil {
		slog.Error("open asset library", "error", err, "dir", cfg.AssetDir)
		os.Exit(1)
	}

	// Scene factory for canvases opened by the first client
	newScene := func(canvasID string) *scene.Scene {
		sc := scene.New(
			scene.WithMargin(cfg.SceneMargin),
			scene.WithDefaultRect(geom.R(0, 0, cfg.SceneDefaultWidth, cfg.SceneDefaultHeight)),
		)
		if cfg.SampleScene {
			sample.Populate(sc)
		}
		slog.Info("canvas opened", "canvas", canvasID, "items", sc.Len())
		return sc
	}

	hub := session.NewHub(
		session.WithSceneFactory(newScene),
		session.WithImages(lib),
		session.WithViewOptions(
			view.WithSize(cfg.ViewWidth, cfg.ViewHeight),
			view.WithZoomSpeed(cfg.ZoomSpeed),
		),
	)
	go hub.Run()

	assetHandler := asset.NewHandler(lib)
	exportHandler := export.NewHandler(hub, cfg.ExportMaxSize)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Canvas bootstrap: a fresh id plus what the client can offer in its toolbar
	r.HandleFunc("/canvas/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"canvasId": typeid.NewCanvasID(),
			"tools":    tool.Names(),
			"samples":  sample.Kinds(),
		})
	}).Methods("POST", "OPTIONS")

	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	r.HandleFunc("/export/{canvasId}.png", exportHandler.ExportPNG).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/canvas/{canvasId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, cfg.Origins())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "assets", lib.Dir())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *session.Hub, origins []string) {
	canvasID := mux.Vars(r)["canvasId"]
	if canvasID != playgroundCanvasID {
		if err := typeid.Validate(canvasID, typeid.PrefixCanvas); err != nil {
			http.Error(w, "invalid canvas id", http.StatusBadRequest)
			return
		}
	}

	// No accounts: every connection is an anonymous user
	userID := "anon-" + uuid.New().String()[:8]
	displayName := r.URL.Query().Get("name")
	if displayName == "" || len(displayName) > 64 {
		displayName = "Anonymous"
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := typeid.NewClientID()
	client := session.NewClient(hub, conn, userID, displayName, canvasID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
