package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Drop/internal/adapters/signal"
	"github.com/dkeye/Drop/internal/app/orch"
	"github.com/dkeye/Drop/internal/config"
	"github.com/dkeye/Drop/internal/core"
	transport "github.com/dkeye/Drop/internal/transport/http"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sessionName    = "DropSessions"
	clientTokenKey = "client_token"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware keeps a stable per-browser token in the session cookie.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			sess.Set(clientTokenKey, token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

// ConnectLimitMiddleware throttles new connections per client IP.
func ConnectLimitMiddleware(rl *signal.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl != nil && !rl.Allow(c.ClientIP()) {
			log.Warn().Str("module", "adapters.http").Str("ip", c.ClientIP()).Msg("connect rate limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many connections"})
			return
		}
		c.Next()
	}
}

type Deps struct {
	Orch     *orch.Orchestrator
	Files    core.FileStore
	Joins    *signal.RateLimiter
	Connects *signal.RateLimiter
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &transport.Handlers{
		Rooms:         deps.Orch.Rooms,
		Files:         deps.Files,
		Codes:         deps.Orch.Codes,
		ListLimit:     cfg.Storage.ListLimit,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
	}
	h.Register(r)

	ctrl := signal.NewSignalWSController(deps.Orch, cfg, deps.Joins)
	r.GET("/api/ws", ConnectLimitMiddleware(deps.Connects), func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString(clientTokenKey)).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
