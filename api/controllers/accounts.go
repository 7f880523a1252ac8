package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/api/middleware"
	"github.com/RemyAthisayaa17/mceverse/api/responses"
	"github.com/RemyAthisayaa17/mceverse/api/validators"
	"github.com/RemyAthisayaa17/mceverse/internal/accounts"
	"github.com/RemyAthisayaa17/mceverse/internal/profiles"
	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
	"github.com/RemyAthisayaa17/mceverse/pkg/logger"
)

// AuthSignup provisions a brand new account from the public signup form.
func AuthSignup(svc accounts.Provisioner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "provisioning service unavailable"))
			return
		}

		var body accounts.RegistrationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SignUp(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.AccessToken != "" {
			w.Header().Set("X-MCV-Token", result.AccessToken)
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthRegister lets staff provision a pre-confirmed account on someone's behalf.
func AuthRegister(svc accounts.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		var body accounts.RegistrationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "delegated registration failed", err)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc accounts.LoginService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "login service unavailable"))
			return
		}

		var body accounts.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-MCV-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// ProfileRepair lets a signed-in user rewrite their own base profile row.
func ProfileRepair(svc accounts.RepairService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "repair service unavailable"))
			return
		}

		actorID, err := actorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body accounts.RepairRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Repair(r.Context(), actorID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]*profiles.ProfileDTO{"profile": profile})
	}
}

type baseProfileReader interface {
	FindBase(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// Me returns the signed-in user's base profile.
func Me(repo baseProfileReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles repository unavailable"))
			return
		}

		actorID, err := actorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := repo.FindBase(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "profile not found"))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"profile": profiles.FromModel(profile),
			"role":    middleware.RoleFromContext(r.Context()),
		})
	}
}

func actorIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	actorID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid subject")
	}
	return actorID, nil
}
