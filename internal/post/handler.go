package post

import (
	"errors"
	"fmt"
	"net/http"

	"blog-service/internal/shared/httpx"

	"github.com/sirupsen/logrus"
)

const msgCreateWithID = "Identifier of new post must be 0 or null!"

type Handler struct {
	svc Service
	log logrus.FieldLogger
}

func NewHandler(s Service, log logrus.FieldLogger) *Handler {
	return &Handler{svc: s, log: log}
}

// Register mounts the post routes. protect wraps the mutating ones.
func (h *Handler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /posts", httpx.Wrap(h.List))
	mux.Handle("GET /posts/{id}", httpx.Wrap(h.GetByID))

	mux.Handle("PUT /posts", protect(httpx.Wrap(h.Update)))
	mux.Handle("PUT /posts/update", protect(httpx.Wrap(h.Update)))
	mux.Handle("PUT /posts/create", protect(httpx.Wrap(h.Create)))
	mux.Handle("DELETE /posts/{id}", protect(httpx.Wrap(h.Delete)))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	posts, err := h.svc.GetAll(r.Context())
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, posts, http.StatusOK)
	return nil
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return h.fail(httpx.NotFound(fmt.Sprintf("Not found post with id: %d", id)))
	}
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, p, http.StatusOK)
	return nil
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	in, err := httpx.Decode[Post](r)
	if err != nil {
		return err
	}
	p, err := h.svc.Update(r.Context(), in)
	if errors.Is(err, ErrNotFound) {
		return h.fail(httpx.NotAcceptable(failureUpdate(in.ID)))
	}
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, p, http.StatusOK)
	return nil
}

// Delete answers a miss with a plain-text body, unlike the other routes.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		return err
	}
	err = h.svc.DeleteByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		msg := failureUpdate(id)
		h.log.Error(msg)
		httpx.WriteText(w, msg, http.StatusNotAcceptable)
		return nil
	}
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	in, err := httpx.Decode[Post](r)
	if err != nil {
		return err
	}
	if in.ID != 0 {
		return h.fail(httpx.NotAcceptable(msgCreateWithID))
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, p, http.StatusOK)
	return nil
}

// The delete path shares this wording with update.
func failureUpdate(id int64) string {
	return fmt.Sprintf("Failure update post with id: %d", id)
}

func (h *Handler) fail(err error) error {
	h.log.Error(err.Error())
	return err
}
