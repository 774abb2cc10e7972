package controllers

import (
	"net/http"

	"github.com/angelmondragon/assetdesk-backend/api/responses"
	"github.com/angelmondragon/assetdesk-backend/api/validators"
	"github.com/angelmondragon/assetdesk-backend/internal/employees"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
)

type employeeCreateRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Email      string  `json:"email" validate:"required,email"`
	Department string  `json:"department" validate:"required,max=200"`
	Role       string  `json:"role" validate:"required,max=200"`
	Status     *string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

func (r employeeCreateRequest) toInput() employees.CreateInput {
	input := employees.CreateInput{
		Name:       r.Name,
		Email:      r.Email,
		Department: r.Department,
		Role:       r.Role,
	}
	if r.Status != nil {
		status := enums.EmployeeStatus(*r.Status)
		input.Status = &status
	}
	return input
}

type employeeUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=200"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Department *string `json:"department" validate:"omitempty,max=200"`
	Role       *string `json:"role" validate:"omitempty,max=200"`
	Status     *string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

func (r employeeUpdateRequest) toInput() employees.UpdateInput {
	input := employees.UpdateInput{
		Name:       r.Name,
		Email:      r.Email,
		Department: r.Department,
		Role:       r.Role,
	}
	if r.Status != nil {
		status := enums.EmployeeStatus(*r.Status)
		input.Status = &status
	}
	return input
}

func EmployeesList(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryEnum(r, "status", enums.ParseEmployeeStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), employees.ListParams{
			Query:  query.Query,
			Status: status,
			Limit:  query.Limit,
			Cursor: query.Cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func EmployeeGet(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employee, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}

func EmployeeCreate(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body employeeCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employee, err := svc.Create(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, employee)
	}
}

func EmployeeUpdate(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body employeeUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employee, err := svc.Update(r.Context(), id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}

// EmployeeDelete refuses while the employee still holds an asset.
func EmployeeDelete(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
