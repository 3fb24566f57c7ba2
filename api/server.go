package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BrianOtieno/quantum-computing/common"
	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const APIServerName = "api"

const (
	DEFAULT_HOST = "localhost"
	DEFAULT_PORT = "8088"

	SHUTDOWN_TIMEOUT = 5 * time.Second
)

// Server is the REST surface of the engine. It runs inside the run
// group as an api_servers entry named "api".
type Server struct {
	Host string `toml:"host"`
	Port string `toml:"port"`

	router *chi.Mux
	server *http.Server
	sysCom *core.SystemComponents
}

func (s *Server) GetEmptyParams() interface{} {
	return &Server{}
}

func (s *Server) SetParams(params interface{}) error {
	if params == nil {
		zap.L().Debug("no params for api server")
		return nil
	}
	pp, ok := params.(map[string]interface{})
	if !ok {
		msg := fmt.Errorf("failed to set params for api server/params: %s", params)
		zap.L().Error(msg.Error())
		return msg
	}
	if v, ok := pp["host"].(string); ok && v != "" {
		s.Host = v
	}
	if v, ok := pp["port"].(string); ok && v != "" {
		s.Port = v
	}
	return nil
}

func (s *Server) Setup() error {
	host := s.Host
	port := s.Port
	if host == "" || port == "" {
		endpoint := DEFAULT_HOST + ":" + DEFAULT_PORT
		if core.CurrentInfo != nil && core.CurrentInfo.Conf.APIEndpoint != "" {
			endpoint = core.CurrentInfo.Conf.APIEndpoint
		}
		parts := strings.Split(endpoint, ":")
		if len(parts) != 2 {
			return fmt.Errorf("%s is an invalid api endpoint", endpoint)
		}
		if host == "" {
			host = parts[0]
		}
		if port == "" {
			port = parts[1]
		}
	}
	addr, err := common.ValidAddress(host, port)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup the api server/reason:%s", err))
		return err
	}

	s.sysCom = core.GetSystemComponents()
	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/device", s.handleDevice)
	s.router.Route("/jobs", func(r chi.Router) {
		r.Post("/", s.handleSubmitJob)
		r.Get("/", s.handleListJobs)
		r.Route("/{jobID}", func(r chi.Router) {
			r.Get("/", s.handleGetJob)
			r.Delete("/", s.handleCancelJob)
		})
	})
}

func (s *Server) Serve() error {
	zap.L().Info(fmt.Sprintf("starting the api server on %s", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zap.L().Error(fmt.Sprintf("failed to serve the api server/reason:%s", err))
		return err
	}
	return nil
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		zap.L().Error(fmt.Sprintf("failed to shut down the api server/reason:%s", err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error(fmt.Sprintf("failed to encode a json response/reason:%s", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"message": message,
	})
}
