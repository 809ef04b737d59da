package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/customorder-backend/api/responses"
	"github.com/angelmondragon/customorder-backend/api/validators"
	"github.com/angelmondragon/customorder-backend/internal/attempts"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/angelmondragon/customorder-backend/pkg/pagination"
)

type AttemptLister interface {
	ListBySession(ctx context.Context, sessionID string, params pagination.Params) (*attempts.Page, error)
}

// FormAttempts lists the session's recorded submission attempts, newest
// first. Pass the returned nextCursor as ?cursor= for the following page.
func FormAttempts(repo AttemptLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := repo.ListBySession(r.Context(), sessionID(r), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
