package transport

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
)

type AgentHandlers struct {
	Housing stdhttp.HandlerFunc
	Budget  stdhttp.HandlerFunc
	Guide   stdhttp.HandlerFunc
	Career  stdhttp.HandlerFunc
	Chat    stdhttp.HandlerFunc
	Stream  stdhttp.HandlerFunc
}

func registerAgentRoutes(api chi.Router, handlers AgentHandlers) {
	api.Route("/agent", func(r chi.Router) {
		r.Post("/housing", mustHandler("agent-housing", handlers.Housing))
		r.Post("/budget", mustHandler("agent-budget", handlers.Budget))
		r.Post("/guide", mustHandler("agent-guide", handlers.Guide))
		r.Post("/career", mustHandler("agent-career", handlers.Career))
		r.Post("/chat", mustHandler("agent-chat", handlers.Chat))
		r.Get("/ws", mustHandler("agent-ws", handlers.Stream))
	})
}
