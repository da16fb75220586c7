package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/websocket"

	"nestmind/apps/gateway/internal/config"
	"nestmind/apps/gateway/internal/domain"
	"nestmind/apps/gateway/internal/provider"
	"nestmind/apps/gateway/internal/runner"
	"nestmind/apps/gateway/internal/service/adapters"
	"nestmind/apps/gateway/internal/service/agent"
	"nestmind/apps/gateway/internal/service/ports"
	"nestmind/apps/gateway/internal/telemetry"

	transport "nestmind/apps/gateway/internal/app/http"
)

const (
	maxBodyBytes      = 1 << 20
	eventBufferSize   = 256
	brokerDialTimeout = 5 * time.Second
)

type Server struct {
	cfg       config.Config
	runner    *runner.Runner
	agents    *agent.Service
	metrics   *telemetry.Metrics
	events    ports.EventSink
	heartbeat *telemetry.Heartbeat
	upgrader  websocket.Upgrader

	closers   []func()
	closeOnce sync.Once
}

func NewServer(cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	srv := &Server{
		cfg: cfg,
		runner: runner.New(runner.Config{
			ProviderID: cfg.Provider,
			Model:      cfg.Model,
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Region:     cfg.Region,
			TimeoutMS:  cfg.TimeoutMS,
		}),
		metrics: telemetry.NewMetrics(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	srv.events = telemetry.Multi(srv.buildSink(), srv.metrics)
	srv.agents = agent.NewService(agent.Dependencies{
		Gateway: adapters.ModelGateway{Runner: srv.runner},
		Events:  srv.events,
		Settings: agent.Settings{
			HistoryWindow: cfg.HistoryWindow,
			MaxTokens:     cfg.MaxTokens,
			ChatMaxTokens: cfg.ChatMaxTokens,
		},
	})

	if cfg.HeartbeatCron != "" {
		hb, err := telemetry.NewHeartbeat(cfg.HeartbeatCron, srv.metrics, srv.events)
		if err != nil {
			srv.Close()
			return nil, err
		}
		srv.heartbeat = hb
		hb.Start()
	}

	desc := srv.runner.Describe()
	log.WithFields(log.Fields{
		"provider":  desc.ID,
		"model":     desc.Model,
		"telemetry": cfg.Telemetry,
	}).Info("gateway ready")
	return srv, nil
}

// buildSink picks the event sink for cfg.Telemetry. An unreachable broker
// degrades to log output rather than blocking startup.
func (s *Server) buildSink() ports.EventSink {
	switch s.cfg.Telemetry {
	case config.TelemetryNone:
		return telemetry.Nop{}
	case config.TelemetryRedis:
		ctx, cancel := context.WithTimeout(context.Background(), brokerDialTimeout)
		defer cancel()
		sink, err := telemetry.NewRedisSink(ctx, s.cfg.RedisURL, s.cfg.TelemetryStream)
		if err != nil {
			log.WithError(err).Warn("redis telemetry unavailable, logging events instead")
			return telemetry.LogSink{}
		}
		return s.async(sink, func() { _ = sink.Close() })
	case config.TelemetryAMQP:
		sink, err := telemetry.NewAMQPSink(s.cfg.AMQPURL, s.cfg.TelemetryExchange)
		if err != nil {
			log.WithError(err).Warn("amqp telemetry unavailable, logging events instead")
			return telemetry.LogSink{}
		}
		return s.async(sink, func() { _ = sink.Close() })
	default:
		return telemetry.LogSink{}
	}
}

func (s *Server) async(sink ports.EventSink, closeSink func()) ports.EventSink {
	queued := telemetry.NewAsync(sink, eventBufferSize)
	// drain before the connection goes away
	s.closers = append(s.closers, queued.Close, closeSink)
	return queued
}

func (s *Server) Agents() *agent.Service {
	return s.agents
}

func (s *Server) Close() {
	s.closeOnce.Do(func() {
		if s.heartbeat != nil {
			s.heartbeat.Stop()
		}
		for _, closeFn := range s.closers {
			closeFn()
		}
	})
}

func (s *Server) Handler() http.Handler {
	return transport.NewRouter(transport.Handlers{
		Public: transport.PublicHandlers{
			Health:     s.handleHealth,
			Metrics:    s.handleMetrics,
			Agents:     s.listAgents,
			Prometheus: s.metrics.Handler(),
		},
		Agent: transport.AgentHandlers{
			Housing: s.handleHousing,
			Budget:  s.handleBudget,
			Guide:   s.handleGuide,
			Career:  s.handleCareer,
			Chat:    s.handleChat,
			Stream:  s.handleStream,
		},
	})
}

type healthBody struct {
	Status    string              `json:"status"`
	Timestamp string              `json:"timestamp"`
	Provider  provider.Descriptor `json:"provider"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Timestamp: nowISO(), Provider: s.runner.Describe()})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

type agentInfo struct {
	ID         domain.AgentKind `json:"id"`
	Structured bool             `json:"structured"`
	MaxTokens  int              `json:"maxTokens"`
}

func (s *Server) listAgents(w http.ResponseWriter, _ *http.Request) {
	kinds := domain.AgentKinds()
	out := make([]agentInfo, 0, len(kinds))
	for _, kind := range kinds {
		req := domain.AgentRequest{Kind: kind, Conversational: !kind.Structured()}
		out = append(out, agentInfo{ID: kind, Structured: req.Structured(), MaxTokens: s.agents.MaxTokensFor(req)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHousing(w http.ResponseWriter, r *http.Request) {
	var body domain.HousingRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.respond(w, r, domain.AgentRequest{Kind: domain.AgentHousing, Housing: body})
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	var body domain.BudgetRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.respond(w, r, domain.AgentRequest{Kind: domain.AgentBudget, Budget: body})
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	var body domain.GuideRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.respond(w, r, domain.AgentRequest{Kind: domain.AgentGuide, Guide: body})
}

func (s *Server) handleCareer(w http.ResponseWriter, r *http.Request) {
	var body domain.CareerRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.respond(w, r, domain.AgentRequest{Kind: domain.AgentCareer, Career: body})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body domain.ChatRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.respond(w, r, domain.ChatAgentRequest(body))
}

// respond always answers 200; model failures are reported in meta only.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, req domain.AgentRequest) {
	writeJSON(w, http.StatusOK, s.agents.Handle(r.Context(), req))
}

// handleStream serves chat over a websocket: one ChatRequest per text frame,
// one ChatResponse per reply, in order.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxBodyBytes)
	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket closed unexpectedly")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var body domain.ChatRequest
		if err := json.Unmarshal(message, &body); err != nil {
			if err := conn.WriteJSON(apiError("invalid_json", "invalid request body")); err != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(s.agents.Handle(r.Context(), domain.ChatAgentRequest(body))); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}
	}
}

// decodeBody reads a JSON request body. An empty body decodes as the zero
// request; malformed JSON answers 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeErr(w, http.StatusBadRequest, "invalid_json", "invalid request body", nil)
	return false
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, code int, errCode, message string, details interface{}) {
	body := apiError(errCode, message)
	body.Error.Details = details
	writeJSON(w, code, body)
}

func apiError(code, message string) domain.APIErrorBody {
	return domain.APIErrorBody{Error: domain.APIError{Code: code, Message: message}}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
