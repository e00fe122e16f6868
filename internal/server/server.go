package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/openorgs/orgd/internal/activeorg"
	activedomain "github.com/openorgs/orgd/internal/activeorg/domain"
	"github.com/openorgs/orgd/internal/audit"
	auditdomain "github.com/openorgs/orgd/internal/audit/domain"
	"github.com/openorgs/orgd/internal/authz"
	"github.com/openorgs/orgd/internal/clock"
	"github.com/openorgs/orgd/internal/config"
	"github.com/openorgs/orgd/internal/identity"
	"github.com/openorgs/orgd/internal/observability"
	obsmiddleware "github.com/openorgs/orgd/internal/observability/logger"
	obsmetrics "github.com/openorgs/orgd/internal/observability/metrics"
	obstracing "github.com/openorgs/orgd/internal/observability/tracing"
	"github.com/openorgs/orgd/internal/organization"
	"github.com/openorgs/orgd/internal/ratelimit"
	"github.com/openorgs/orgd/internal/role"
	roledomain "github.com/openorgs/orgd/internal/role/domain"
	"github.com/openorgs/orgd/internal/tokens"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	fx.Provide(registerGin),
	authz.Module,
	audit.Module,
	identity.Module,
	organization.Module,
	role.Module,
	activeorg.Module,
	tokens.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	authzSvc    authz.Service
	auditSvc    auditdomain.Service
	roleSvc     roledomain.Service
	activeSvc   activedomain.Service
	tokens      *tokens.Manager
	bulkLimiter *ratelimit.BulkLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	AuthzSvc    authz.Service
	AuditSvc    auditdomain.Service
	RoleSvc     roledomain.Service
	ActiveSvc   activedomain.Service
	Tokens      *tokens.Manager
	BulkLimiter *ratelimit.BulkLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		authzSvc:    p.AuthzSvc,
		auditSvc:    p.AuditSvc,
		roleSvc:     p.RoleSvc,
		activeSvc:   p.ActiveSvc,
		tokens:      p.Tokens,
		bulkLimiter: p.BulkLimiter,
	}

	svc.registerOrgRoutes()
	svc.registerUserRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerOrgRoutes() {
	orgs := s.engine.Group("/orgs", s.AuthRequired())

	orgs.GET("/:orgId/roles", s.ListRoles)
	orgs.POST("/:orgId/roles", s.CreateRole)
	orgs.GET("/:orgId/roles/:name", s.GetRole)
	orgs.DELETE("/:orgId/roles/:name", s.DeleteRole)
	orgs.PUT("/:orgId/roles", s.BulkRateLimit(), s.CreateRoles)
	orgs.PATCH("/:orgId/roles", s.BulkRateLimit(), s.DeleteRoles)

	orgs.GET("/:orgId/audit-logs", s.ListAuditLogs)
}

func (s *Server) registerUserRoutes() {
	users := s.engine.Group("/users", s.AuthRequired())

	users.GET("/active-organization", s.GetActiveOrganization)
	users.PUT("/switch-organization", s.SwitchActiveOrganization)

	users.GET("/:userId/orgs", s.ListUserOrgs)
	users.GET("/:userId/orgs/:orgId/roles", s.ListUserOrgRoles)
	users.PUT("/:userId/orgs/:orgId/roles", s.BulkRateLimit(), s.GrantUserOrgRoles)
	users.PATCH("/:userId/orgs/:orgId/roles", s.BulkRateLimit(), s.RevokeUserOrgRoles)
}
