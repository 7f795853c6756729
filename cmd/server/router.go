package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JDerekLomas/sourcelibrary/internal/api"
	apiMiddleware "github.com/JDerekLomas/sourcelibrary/internal/api/middleware"
	"github.com/JDerekLomas/sourcelibrary/internal/api/shared"
)

// healthResponse is the /health body. Providers lists the AI backends that
// initialized successfully so operators can see at a glance which are live.
type healthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
}

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	chatHandler := api.NewChatHandler(app.orchestrator, app.config.Chat.DefaultMaxContextTurns, app.logger)
	ocrHandler := api.NewOCRHandler(app.registry, app.assets, app.logger)
	translateHandler := api.NewTranslateHandler(app.registry, app.logger)

	r.Route("/api", func(r chi.Router) {
		if app.jwtService != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
		}

		r.Route("/chat", func(r chi.Router) {
			r.Post("/start", chatHandler.StartConversation)
			r.Post("/send", chatHandler.UserSend)
			r.Post("/advance", chatHandler.Advance)
			r.Post("/end", chatHandler.EndConversation)
		})

		r.Post("/ocr", ocrHandler.ProcessOCR)
		r.Post("/translate", translateHandler.ProcessTranslation)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, healthResponse{
			Status:    "ok",
			Providers: app.registry.Names(),
		})
	})

	return r
}
