package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/evmotors/dealerhub-backend/api/middleware"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
)

func actorUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func actorRole(r *http.Request) (enums.UserRole, error) {
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
	return role, nil
}

func actorDealerID(r *http.Request) (*uuid.UUID, error) {
	raw := middleware.DealerIDFromContext(r.Context())
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid dealer id")
	}
	return &id, nil
}
