package memapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nicolagi/todoes"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	store *Store
}

// NewRouter returns a router serving the todoes resource under prefix, e.g., /api/todoes for prefix /api:
//
//	GET    {prefix}/todoes          all todoes
//	GET    {prefix}/todoes/?id=&name=  filtered todoes (id exact, name case-insensitive substring)
//	GET    {prefix}/todoes/{id}     one todo, 404 if not found
//	POST   {prefix}/todoes          add, 201 with the added todo
//	PUT    {prefix}/todoes          replace by id, 204
//	DELETE {prefix}/todoes/{id}     delete, 200 with the deleted todo
func NewRouter(prefix string, store *Store) chi.Router {
	h := &handler{store: store}
	todoesRouter := chi.NewRouter()
	todoesRouter.Get("/todoes", h.find)
	todoesRouter.Get("/todoes/", h.find)
	todoesRouter.Get("/todoes/{id}", h.get)
	todoesRouter.Post("/todoes", h.add)
	todoesRouter.Put("/todoes", h.update)
	todoesRouter.Delete("/todoes/{id}", h.delete)
	if prefix == "" || prefix == "/" {
		return todoesRouter
	}
	r := chi.NewRouter()
	r.Mount(prefix, todoesRouter)
	return r
}

func (h *handler) find(w http.ResponseWriter, r *http.Request) {
	var f Filter
	q := r.URL.Query()
	if v := q.Get("id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad id: "+v)
			return
		}
		f.ID = &id
	}
	f.Name = q.Get("name")
	writeJSON(w, http.StatusOK, h.store.Find(f))
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	todo, err := h.store.Get(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (h *handler) add(w http.ResponseWriter, r *http.Request) {
	todo, ok := decodeTodo(w, r)
	if !ok {
		return
	}
	added, err := h.store.Add(todo)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	todo, ok := decodeTodo(w, r)
	if !ok {
		return
	}
	if err := h.store.Update(todo); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.store.Delete(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	v := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id: "+v)
		return 0, false
	}
	return id, true
}

func decodeTodo(w http.ResponseWriter, r *http.Request) (*todoes.Todo, bool) {
	var todo todoes.Todo
	if err := json.NewDecoder(r.Body).Decode(&todo); err != nil {
		writeError(w, http.StatusBadRequest, "bad todo: "+err.Error())
		return nil, false
	}
	return &todo, true
}

type errorBody struct {
	Error string `json:"error"`
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithField("cause", err).Warning("Could not write response")
	}
}
