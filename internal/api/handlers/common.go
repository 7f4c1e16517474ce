package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/errors"
	"github.com/tireserve/platform/internal/models"
)

// actorFromRequest builds the acting identity from the gateway-injected
// headers. Authentication itself happens upstream; the core only needs to
// know who is acting and in what role.
func actorFromRequest(r *http.Request) (models.Actor, *errors.AppError) {
	idStr := r.Header.Get("X-User-ID")
	if idStr == "" {
		return models.Actor{}, errors.UnauthorizedError("User identity is required")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return models.Actor{}, errors.BadRequestError("Invalid user ID")
	}

	role := r.Header.Get("X-User-Role")
	if role == "" {
		role = models.RoleCustomer
	}

	return models.Actor{ID: id, Role: role}, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, *errors.AppError) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, errors.BadRequestError(name + " is required")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.BadRequestError("Invalid " + name)
	}

	return id, nil
}

func pagination(r *http.Request) (page, size int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || size < 1 || size > 100 {
		size = 10
	}

	return page, size
}
