// Package router assembles the Gin engine.
package router

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "investment_game/internal/feature/auth/transport/handler"
	portfoliohandler "investment_game/internal/feature/portfolio/transport/handler"
	"investment_game/internal/platform/http/handler"
	jwtmw "investment_game/internal/platform/jwt"
)

// Handlers groups the feature handlers mounted by NewRouter.
type Handlers struct {
	Auth      *authhandler.AuthHandler
	Portfolio *portfoliohandler.PortfolioHandler
	API       *portfoliohandler.APIHandler
	Health    *handler.HealthHandler
}

// NewRouter wires the HTML pages behind requireSession and the JSON API behind JWT auth.
// An empty corsOrigins allows any origin on the API.
func NewRouter(h Handlers, requireSession gin.HandlerFunc, tmpl *template.Template, corsOrigins []string) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(tmpl)

	// readiness probe
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)

	// public pages
	r.GET("/", h.Auth.LoginPage)
	r.POST("/", h.Auth.Login)
	r.GET("/register", h.Auth.RegisterPage)
	r.POST("/register", h.Auth.Register)
	r.GET("/logout", h.Auth.Logout)

	pages := r.Group("/")
	pages.Use(requireSession)
	{
		pages.GET("/main", h.Portfolio.Main)
		pages.POST("/getStockPrice", h.Portfolio.GetStockPrice)
		pages.POST("/buy", h.Portfolio.Buy)
		pages.POST("/sell", h.Portfolio.Sell)
	}

	api := r.Group("/api/v1")
	api.Use(corsMiddleware(corsOrigins))
	// Group middleware only runs on a matched route, so preflights need one.
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.POST("/login", h.Auth.APILogin)

	// Bearer token required
	authed := api.Group("/")
	authed.Use(jwtmw.AuthRequired())
	{
		authed.GET("/portfolio", h.API.GetPortfolio)
		authed.GET("/quotes/:ticker", h.API.GetQuote)
		authed.POST("/trades/buy", h.API.Buy)
		authed.POST("/trades/sell", h.API.Sell)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}
