package httpapi

import (
	"net/http"

	"github.com/VitaminP8/forum/internal/post"
	"github.com/VitaminP8/forum/models"
)

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.List(r.Context(),
		intQuery(r, "per_page", post.DefaultPerPage),
		intQuery(r, "page", 1),
	)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) showPost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataBody{p})
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var input models.PostInput
	if err := decodeJSON(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.posts.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dataBody{p})
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var input models.PostInput
	if err := decodeJSON(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.posts.Update(r.Context(), id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataBody{p})
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
