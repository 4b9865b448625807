// Package api exposes the services over HTTP with gin.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resumehub/internal/account"
	"resumehub/internal/auth"
	"resumehub/internal/hr"
	"resumehub/internal/httpmiddleware"
	"resumehub/internal/model"
	"resumehub/internal/resume"
	"resumehub/internal/stats"
	"resumehub/internal/storage"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Deps is everything the router needs.
type Deps struct {
	Accounts *account.Service
	Resumes  *resume.Service
	HR       *hr.Service
	Stats    *stats.Service
	Files    storage.Backend
	Signer   *auth.Signer
	Limiter  httpmiddleware.Limiter
	Health   map[string]HealthCheck
	Logger   *slog.Logger

	AuthRequired    bool
	MaxUploadBytes  int64
	UploadURLPrefix string
	AllowedOrigins  []string
	RequestLogging  bool
}

type handler struct {
	Deps
	logger *slog.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps) *gin.Engine {
	registerValidators()
	if d.UploadURLPrefix == "" {
		d.UploadURLPrefix = "/uploads/resumes"
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	h := &handler{Deps: d, logger: d.Logger.With("component", "api")}

	r := gin.New()
	r.Use(gin.Recovery())
	if d.RequestLogging {
		r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
			SkipPaths: []string{"/healthz", "/metrics"},
		}))
	}
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.Metrics())
	if d.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(d.Limiter, h.logger))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.health)
	r.GET(d.UploadURLPrefix+"/:name", h.serveUpload)

	// Optional bearer auth for the resume, HR and settings surfaces.
	protect := func(roles ...model.Role) []gin.HandlerFunc {
		if !d.AuthRequired {
			return nil
		}
		mw := []gin.HandlerFunc{auth.Bearer(d.Signer)}
		if len(roles) > 0 {
			mw = append(mw, auth.RequireRole(roles...))
		}
		return mw
	}

	a := r.Group("/api/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/forgot-password", h.forgotPassword)
	a.POST("/reset-password/:token", h.resetPassword)
	a.GET("/hr-list", h.listHR)
	a.GET("/college-list", h.listColleges)
	a.GET("/:id", h.getProfile)
	a.PUT("/:id", h.updateProfile)

	admin := r.Group("/api/admin")
	admin.GET("/hr-list", h.listHR)
	admin.GET("/college-list", h.listColleges)
	admin.GET("/adminstats", h.adminStats)

	r.GET("/api/college", h.listColleges)

	res := r.Group("/api/resume", protect()...)
	res.POST("/upload-base64", h.uploadBase64)
	res.POST("/upload", h.uploadMultipart)
	res.GET("/search", h.searchResumes)
	res.GET("/count/:collegeId", h.countByCollege)
	res.GET("/college/:collegeId", h.listByCollege)
	res.DELETE("/:id", h.deleteResume)

	r.GET("/api/resumes/:collegeId", append(protect(), h.listByCollege)...)

	hrg := r.Group("/api/hr", protect(model.RoleHR)...)
	hrg.GET("/resumes/all/:hrId", h.listAllForHR)
	hrg.GET("/resumes/:hrId", h.listSelectedForHR)
	hrg.POST("/select/:resumeId/:hrId", h.setSelection)
	hrg.PATCH("/:resumeId/viewed", h.markViewed)
	hrg.GET("/download/:resumeId", h.download)
	hrg.GET("/total-resumes", h.totalResumes)
	hrg.GET("/profile/:hrId", h.getHRProfile)
	hrg.PUT("/profile/:hrId", h.updateHRProfile)

	settings := r.Group("/api/settings", protect()...)
	settings.GET("/:email", h.getSettings)
	settings.PUT("/:email", h.updateSettings)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (h *handler) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.Health {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// ensureSelf rejects a path id that differs from the caller's token when auth
// is enforced.
func (h *handler) ensureSelf(c *gin.Context, id string) bool {
	claims, ok := auth.ClaimsFrom(c)
	if !ok || claims.AccountID == id {
		return true
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You may only act on your own account"})
	return false
}

// ensureSelfEmail is ensureSelf for routes keyed by email.
func (h *handler) ensureSelfEmail(c *gin.Context, email string) bool {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return true
	}
	acc, err := h.Accounts.GetProfile(c.Request.Context(), claims.AccountID)
	if err != nil {
		respondError(c, h.logger, err)
		c.Abort()
		return false
	}
	if !strings.EqualFold(acc.Email, strings.TrimSpace(email)) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You may only act on your own account"})
		return false
	}
	return true
}
