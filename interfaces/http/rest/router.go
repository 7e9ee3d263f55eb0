// Package rest serves the same API over plain HTTP for local development.
// Each request is adapted into the API Gateway envelope and handed to the
// dispatcher, so both entrypoints share one code path.
package rest

import (
	"io"
	"net/http"

	"users-backend/application/ports"
	"users-backend/infrastructure/config"
	"users-backend/interfaces/apigateway"
	"users-backend/interfaces/http/rest/middleware"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	dispatcher *apigateway.Dispatcher
	validator  ports.AccessTokenValidator
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(dispatcher *apigateway.Dispatcher, validator ports.AccessTokenValidator, cfg *config.Config, logger *zap.Logger) *Router {
	return &Router{
		dispatcher: dispatcher,
		validator:  validator,
		cfg:        cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	router.Use(middleware.Authenticate(rt.cfg.JWTSecret, rt.validator, rt.logger))

	router.Get("/health", rt.dispatch)

	router.Route("/users", func(r chi.Router) {
		r.Get("/", rt.dispatch)
		r.Post("/", rt.dispatch)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", rt.dispatch)
			r.Put("/", rt.dispatch)
			r.Delete("/", rt.dispatch)
		})
	})

	return router
}

// dispatch adapts the HTTP request into the gateway envelope and writes the
// dispatcher's response envelope back verbatim.
func (rt *Router) dispatch(w http.ResponseWriter, r *http.Request) {
	var body string
	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, `{"message":"Failed to read request body","statusCode":400}`, http.StatusBadRequest)
			return
		}
		body = string(raw)
	}

	event := events.APIGatewayV2HTTPRequest{
		Body: body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: r.Method,
				Path:   r.URL.Path,
			},
		},
	}

	if id := chi.URLParam(r, "id"); id != "" {
		event.PathParameters = map[string]string{"id": id}
	}

	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		event.RequestContext.Authorizer = &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
			JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
				Claims: claims,
			},
		}
	}

	resp, _ := rt.dispatcher.Handle(r.Context(), event)

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write([]byte(resp.Body)); err != nil {
		rt.logger.Error("Failed to write response", zap.Error(err))
	}
}
