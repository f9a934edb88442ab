package api

import (
	"net/http"
	"strconv"

	"fishy-friend-storefront/internal/domain"

	"github.com/go-chi/chi/v5"
)

// Blog

func (h *handler) publishedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Blog.Published(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handler) publishedPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Blog.PublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handler) staffPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Blog.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handler) staffPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Blog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handler) createPost(w http.ResponseWriter, r *http.Request) {
	var post domain.BlogPost
	if err := decodeJSON(w, r, &post); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.svc.Blog.Create(r.Context(), &post)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updatePost(w http.ResponseWriter, r *http.Request) {
	var post domain.BlogPost
	if err := decodeJSON(w, r, &post); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	post.ID = chi.URLParam(r, "id")
	updated, err := h.svc.Blog.Update(r.Context(), &post)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Blog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stock alerts

func (h *handler) stockAlerts(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	alerts, err := h.svc.Alerts.List(r.Context(), unreadOnly)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *handler) markAlertRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Alerts.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) markAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Alerts.MarkAllRead(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": n})
}

// Staff team

func (h *handler) listStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.svc.Staff.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

func (h *handler) addStaff(w http.ResponseWriter, r *http.Request) {
	member, err := h.svc.Staff.Add(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *handler) removeStaff(w http.ResponseWriter, r *http.Request) {
	customer, err := h.svc.Staff.Remove(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}
