package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// GetCatalogParams defines parameters for GetCatalog.
type GetCatalogParams struct {
	Lang *string `form:"lang,omitempty" json:"lang,omitempty"`
}

// GetGraphParams defines parameters for GetGraph.
type GetGraphParams struct {
	Format    *string `form:"format,omitempty" json:"format,omitempty"`
	Lang      *string `form:"lang,omitempty" json:"lang,omitempty"`
	SessionID *string `form:"session_id,omitempty" json:"session_id,omitempty"`
}

// CreateSessionParams defines parameters for CreateSession.
type CreateSessionParams struct {
	// Symptom skips the entry selector, like the ?symptom= link of the home page.
	Symptom *string `form:"symptom,omitempty" json:"symptom,omitempty"`
}

// SubscribeEventsParams defines parameters for SubscribeEvents.
type SubscribeEventsParams struct {
	SessionID *string `form:"session_id,omitempty" json:"session_id,omitempty"`
	Watch     *string `form:"watch,omitempty" json:"watch,omitempty"`
}

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /info)
	GetInfo(w http.ResponseWriter, r *http.Request)
	// (GET /catalog)
	GetCatalog(w http.ResponseWriter, r *http.Request, params GetCatalogParams)
	// (GET /graph)
	GetGraph(w http.ResponseWriter, r *http.Request, params GetGraphParams)
	// (POST /sessions)
	CreateSession(w http.ResponseWriter, r *http.Request, params CreateSessionParams)
	// (GET /sessions/{id})
	GetSession(w http.ResponseWriter, r *http.Request, id string)
	// (DELETE /sessions/{id})
	DeleteSession(w http.ResponseWriter, r *http.Request, id string)
	// (POST /sessions/{id}/book)
	Book(w http.ResponseWriter, r *http.Request, id string)
	// (POST /sessions/{id}/{action})
	ApplyAction(w http.ResponseWriter, r *http.Request, id string, action string)
	// (GET /events)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
}

// ParamError reports a parameter that could not be bound from the request.
type ParamError struct {
	Name string
	Err  error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %v", e.Name, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// ServerInterfaceWrapper binds path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

func (siw *ServerInterfaceWrapper) GetInfo(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetInfo(w, r)
}

func (siw *ServerInterfaceWrapper) GetCatalog(w http.ResponseWriter, r *http.Request) {
	var params GetCatalogParams
	if !siw.query(w, r, "lang", &params.Lang) {
		return
	}
	siw.Handler.GetCatalog(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetGraph(w http.ResponseWriter, r *http.Request) {
	var params GetGraphParams
	if !siw.query(w, r, "format", &params.Format) ||
		!siw.query(w, r, "lang", &params.Lang) ||
		!siw.query(w, r, "session_id", &params.SessionID) {
		return
	}
	siw.Handler.GetGraph(w, r, params)
}

func (siw *ServerInterfaceWrapper) CreateSession(w http.ResponseWriter, r *http.Request) {
	var params CreateSessionParams
	if !siw.query(w, r, "symptom", &params.Symptom) {
		return
	}
	siw.Handler.CreateSession(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetSession(w http.ResponseWriter, r *http.Request) {
	var id string
	if !siw.path(w, r, "id", &id) {
		return
	}
	siw.Handler.GetSession(w, r, id)
}

func (siw *ServerInterfaceWrapper) DeleteSession(w http.ResponseWriter, r *http.Request) {
	var id string
	if !siw.path(w, r, "id", &id) {
		return
	}
	siw.Handler.DeleteSession(w, r, id)
}

func (siw *ServerInterfaceWrapper) Book(w http.ResponseWriter, r *http.Request) {
	var id string
	if !siw.path(w, r, "id", &id) {
		return
	}
	siw.Handler.Book(w, r, id)
}

func (siw *ServerInterfaceWrapper) ApplyAction(w http.ResponseWriter, r *http.Request) {
	var id, action string
	if !siw.path(w, r, "id", &id) || !siw.path(w, r, "action", &action) {
		return
	}
	siw.Handler.ApplyAction(w, r, id, action)
}

func (siw *ServerInterfaceWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if !siw.query(w, r, "session_id", &params.SessionID) || !siw.query(w, r, "watch", &params.Watch) {
		return
	}
	siw.Handler.SubscribeEvents(w, r, params)
}

func (siw *ServerInterfaceWrapper) path(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &ParamError{Name: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) query(w http.ResponseWriter, r *http.Request, name string, dest **string) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.ErrorHandlerFunc(w, r, &ParamError{Name: name, Err: err})
		return false
	}
	return true
}

// HandlerFromMux registers the operations of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, err.Error())
		},
	}

	r.Get("/health", wrapper.GetHealth)
	r.Get("/info", wrapper.GetInfo)
	r.Get("/catalog", wrapper.GetCatalog)
	r.Get("/graph", wrapper.GetGraph)
	r.Get("/events", wrapper.SubscribeEvents)
	r.Post("/sessions", wrapper.CreateSession)
	r.Get("/sessions/{id}", wrapper.GetSession)
	r.Delete("/sessions/{id}", wrapper.DeleteSession)
	r.Post("/sessions/{id}/book", wrapper.Book)
	r.Post("/sessions/{id}/{action}", wrapper.ApplyAction)
	return r
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
