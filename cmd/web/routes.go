package main

import (
	"net/http"

	"github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/app.css", cacheHeaders(http.HandlerFunc(app.stylesheet)))
	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(middleware.MiddleWare, app.sessionManager.LoadAndSave, app.noSurf, commonContext)

	mux.Handle("GET /{$}", session.ThenFunc(app.home))
	mux.Handle("POST /advance", session.ThenFunc(app.advance))
	mux.Handle("POST /retreat", session.ThenFunc(app.retreat))
	mux.Handle("POST /edit", session.ThenFunc(app.edit))
	mux.Handle("POST /submit", session.ThenFunc(app.submit))
	mux.Handle("POST /unlock", session.ThenFunc(app.unlock))

	standard := alice.New(app.recoverPanic, app.logRequest, app.secureHeaders, maxBodySize)
	return standard.Then(timeoutHandler(mux, defaultTimeout))
}
