package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/VitaminP8/forum/models"
)

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	comments, err := h.comments.List(r.Context(), postID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataBody{comments})
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var input models.CommentInput
	if err := decodeJSON(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.comments.Create(r.Context(), postID, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dataBody{c})
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var input models.CommentInput
	if err := decodeJSON(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.comments.Update(r.Context(), id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataBody{c})
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.comments.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// streamComments sends comments created on the post as server-sent events
// until the client goes away.
func (h *Handler) streamComments(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, r, fmt.Errorf("response writer does not support streaming"))
		return
	}

	ch, cancel, err := h.comments.Subscribe(r.Context(), postID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer cancel()
	h.log.Debug(r.Context(), "comment stream opened", "post_id", postID)
	defer h.log.Debug(r.Context(), "comment stream closed", "post_id", postID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.closing:
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case c, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(c)
			if err != nil {
				h.log.Error(r.Context(), "could not encode comment event", "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: comment\ndata: %s\n\n", c.ID, data)
			flusher.Flush()
		}
	}
}
