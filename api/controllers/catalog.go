package controllers

import (
	"net/http"

	"github.com/angelmondragon/customorder-backend/api/responses"
	"github.com/angelmondragon/customorder-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
)

// CatalogList returns the product categories in display order.
func CatalogList(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": cat.Categories()})
	}
}
