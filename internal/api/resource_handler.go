package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"

	"travelapp/internal/entities"
	"travelapp/internal/service"
	"travelapp/internal/validation"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// ResourceHandler exposes a service.Resource as the six REST actions.
type ResourceHandler[Req, Resp any] struct {
	Service service.Resource[Req, Resp]
}

func NewResourceHandler[Req, Resp any](svc service.Resource[Req, Resp]) *ResourceHandler[Req, Resp] {
	return &ResourceHandler[Req, Resp]{Service: svc}
}

func (h *ResourceHandler[Req, Resp]) List(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r.URL.Query())
	items, total, err := h.Service.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !q.Paginate {
		writeJSON(w, http.StatusOK, items)
		return
	}
	writeJSON(w, http.StatusOK, entities.Page[Resp]{
		Total:   total,
		Limit:   q.Limit,
		Offset:  q.Offset,
		Results: items,
	})
}

func (h *ResourceHandler[Req, Resp]) Retrieve(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.Retrieve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ResourceHandler[Req, Resp]) Create(w http.ResponseWriter, r *http.Request) {
	var req Req
	if err := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.Service.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ResourceHandler[Req, Resp]) Update(w http.ResponseWriter, r *http.Request) {
	var req Req
	if err := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.Service.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ResourceHandler[Req, Resp]) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, validation.FromReadError(err))
		return
	}
	item, err := h.Service.PartialUpdate(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ResourceHandler[Req, Resp]) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Destroy(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseListQuery turns limit/offset into a page request. Unparseable or out
// of range values fall back to defaults instead of failing the request.
func parseListQuery(values url.Values) entities.ListQuery {
	q := entities.ListQuery{Filters: values}
	rawLimit, hasLimit := values["limit"]
	rawOffset, hasOffset := values["offset"]
	if !hasLimit && !hasOffset {
		return q
	}

	q.Paginate = true
	q.Limit = entities.DefaultLimit
	if hasLimit {
		if n, err := strconv.Atoi(rawLimit[0]); err == nil && n > 0 {
			q.Limit = min(n, entities.MaxLimit)
		}
	}
	if hasOffset {
		if n, err := strconv.Atoi(rawOffset[0]); err == nil && n > 0 {
			q.Offset = n
		}
	}
	return q
}
