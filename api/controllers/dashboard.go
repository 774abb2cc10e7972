package controllers

import (
	"net/http"

	"github.com/angelmondragon/assetdesk-backend/api/responses"
	"github.com/angelmondragon/assetdesk-backend/internal/dashboard"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
)

func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
