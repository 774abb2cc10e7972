package controllers

import (
	"net/http"

	"github.com/angelmondragon/assetdesk-backend/api/responses"
	"github.com/angelmondragon/assetdesk-backend/api/validators"
	"github.com/angelmondragon/assetdesk-backend/internal/assignments"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
)

// AssignmentsList serves the read-only assignment history.
func AssignmentsList(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryEnum(r, "status", enums.ParseAssignmentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assetID, err := validators.ParseQueryUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employeeID, err := validators.ParseQueryUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), assignments.ListParams{
			Query:      query.Query,
			Status:     status,
			AssetID:    assetID,
			EmployeeID: employeeID,
			Limit:      query.Limit,
			Cursor:     query.Cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AssignmentGet(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assignment, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}
