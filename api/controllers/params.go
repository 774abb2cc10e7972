package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/api/validators"
	"github.com/angelmondragon/assetdesk-backend/pkg/pagination"
)

const maxSearchLen = 200

type listQuery struct {
	Query  string
	Limit  int
	Cursor string
}

func parseListQuery(r *http.Request) (listQuery, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return listQuery{}, err
	}
	q := r.URL.Query()
	return listQuery{
		Query:  validators.SanitizeString(q.Get("q"), maxSearchLen),
		Limit:  limit,
		Cursor: validators.SanitizeString(q.Get("cursor"), 512),
	}, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
}
