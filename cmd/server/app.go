package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/DevSidd2006/learnquest/internal/auth"
	"github.com/DevSidd2006/learnquest/internal/config"
	"github.com/DevSidd2006/learnquest/internal/gamification"
	"github.com/DevSidd2006/learnquest/internal/generator"
	"github.com/DevSidd2006/learnquest/internal/httpjson"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/middleware"
	"github.com/DevSidd2006/learnquest/internal/sessions"
	"github.com/DevSidd2006/learnquest/internal/storage"
	"github.com/DevSidd2006/learnquest/internal/tts"
)

// app holds the wired services and the root handler.
type app struct {
	auth    *auth.Service
	handler http.Handler
}

// newApp builds every service from its dependencies and mounts the routes.
// synth may be nil.
func newApp(cfg *config.Config, log *logger.Logger, store storage.Backend, gen *generator.Generator, synth tts.Synthesizer) *app {
	gam := gamification.NewService(store, cfg.XPPerLevel, log)
	authSvc := auth.NewService(store, gam, cfg.JWTSecret, log)
	sessionSvc := sessions.NewService(store, gen, gam, log)
	ttsSvc := tts.NewService(synth, gen, log)

	am := middleware.NewAuthMiddleware(log, authSvc)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok", "storage": store.Name()})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(am.OptionalAuth)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(am.RequireAuth)

	auth.NewHandler(authSvc, log).Register(api, protected)
	sessions.NewHandler(sessionSvc, log).Register(api)
	api.HandleFunc("/progress", gamification.NewHandler(gam, log).GetProgress).Methods("GET")
	tts.NewHandler(ttsSvc, log).Register(api)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return &app{auth: authSvc, handler: c.Handler(r)}
}
