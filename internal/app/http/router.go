package transport

import (
	"fmt"
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nestmind/apps/gateway/internal/observability"
)

type PublicHandlers struct {
	Health     stdhttp.HandlerFunc
	Metrics    stdhttp.HandlerFunc
	Agents     stdhttp.HandlerFunc
	Prometheus stdhttp.Handler
}

type Handlers struct {
	Public PublicHandlers
	Agent  AgentHandlers
}

func NewRouter(handlers Handlers) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestID)
	r.Use(observability.Logging)
	r.Use(cors)

	if handlers.Public.Prometheus == nil {
		panic("transport router missing handler: prometheus")
	}
	r.Handle("/metrics", handlers.Public.Prometheus)

	r.Route("/api", func(api chi.Router) {
		registerPublicRoutes(api, handlers.Public)
		registerAgentRoutes(api, handlers.Agent)
	})

	return r
}

func registerPublicRoutes(r chi.Router, handlers PublicHandlers) {
	r.Get("/health", mustHandler("health", handlers.Health))
	r.Get("/metrics", mustHandler("metrics", handlers.Metrics))
	r.Get("/agents", mustHandler("agents", handlers.Agents))
}

func cors(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Request-Id")
		if r.Method == stdhttp.MethodOptions {
			w.WriteHeader(stdhttp.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func mustHandler(name string, handler stdhttp.HandlerFunc) stdhttp.HandlerFunc {
	if handler != nil {
		return handler
	}
	panic(fmt.Sprintf("transport router missing handler: %s", name))
}
