// Package server wires the operational HTTP envelope of the billing catalog
// service: request logging, panic recovery, per-request scoped database
// connections, and the version and readiness endpoints.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/offerd/offerd/internal/billingsrv/billcommon"
	"github.com/offerd/offerd/internal/billingsrv/config"
	"github.com/offerd/offerd/internal/billingsrv/db"
	"github.com/offerd/offerd/internal/common/httpx"
	"github.com/offerd/offerd/internal/common/logtrace"
	commonmiddleware "github.com/offerd/offerd/internal/common/middleware"
)

// WorkspaceHeader names the workspace a request operates in. When absent,
// the configured default workspace applies.
const WorkspaceHeader = "X-Offerd-Workspace"

type CatalogServer struct {
	Router *chi.Mux
}

func CreateNewServer() (*CatalogServer, error) {
	s := &CatalogServer{}
	s.Router = chi.NewRouter()
	return s, nil
}

func (s *CatalogServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	s.Router.Use(commonmiddleware.SetTimeout(60 * time.Second))
	if config.Config().HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", WorkspaceHeader},
			MaxAge:         300,
		}))
	}
	s.Router.Use(db.LoadScopedDBMiddleware)
	s.Router.Use(workspaceScopeMiddleware)

	s.Router.Get("/version", s.getVersion)
	s.Router.Get("/ready", s.getReadiness)

	if logtrace.IsTraceEnabled() {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			fmt.Printf("Logging err: %s\n", err.Error())
		}
	}
}

// workspaceScopeMiddleware resolves the workspace for the request and binds
// it to the scoped database connection so row visibility is constrained
// before any handler runs.
func workspaceScopeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID := r.Header.Get(WorkspaceHeader)
		if workspaceID == "" {
			workspaceID = config.Config().DefaultWorkspaceID
		}
		if workspaceID == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx, err := db.SetWorkspaceScope(r.Context(), billcommon.WorkspaceId(workspaceID))
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Str("workspace_id", workspaceID).Msg("unable to set workspace scope")
			httpx.ErrApplicationError("unable to scope request").Send(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *CatalogServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: "Offerd Billing Catalog Server: " + billcommon.ServerVersion,
		ApiVersion:    billcommon.ApiVersion,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}

func (s *CatalogServer) getReadiness(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("Readiness check")

	ctx, err := db.ConnCtx(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Database connection failed during readiness check")
		httpx.SendJsonRsp(r.Context(), w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "database connection failed",
		})
		return
	}
	defer db.DB(ctx).Close(ctx)

	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
