package profiles

import (
	"context"

	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
)

// Writer is the subset of repository writes that run with caller scope.
type Writer interface {
	InsertBase(ctx context.Context, dto BaseProfileDTO) (*models.Profile, error)
	EnsureBase(ctx context.Context, dto BaseProfileDTO) (bool, error)
	EnsureStudent(ctx context.Context, dto StudentProfileDTO) (bool, error)
	EnsureStaff(ctx context.Context, dto StaffProfileDTO) (bool, error)
}

// CallerWriter writes profile rows on behalf of one authenticated user and
// refuses rows keyed to anyone else. Elevated writes (UpsertBase) stay on the
// plain Repository.
type CallerWriter struct {
	inner  Writer
	userID uuid.UUID
}

// WriteAs scopes the given writer to userID.
func WriteAs(inner Writer, userID uuid.UUID) *CallerWriter {
	return &CallerWriter{inner: inner, userID: userID}
}

func (w *CallerWriter) check(target uuid.UUID) error {
	if target != w.userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot write another account's profile")
	}
	return nil
}

func (w *CallerWriter) InsertBase(ctx context.Context, dto BaseProfileDTO) (*models.Profile, error) {
	if err := w.check(dto.UserID); err != nil {
		return nil, err
	}
	return w.inner.InsertBase(ctx, dto)
}

func (w *CallerWriter) EnsureBase(ctx context.Context, dto BaseProfileDTO) (bool, error) {
	if err := w.check(dto.UserID); err != nil {
		return false, err
	}
	return w.inner.EnsureBase(ctx, dto)
}

func (w *CallerWriter) EnsureStudent(ctx context.Context, dto StudentProfileDTO) (bool, error) {
	if err := w.check(dto.UserID); err != nil {
		return false, err
	}
	return w.inner.EnsureStudent(ctx, dto)
}

func (w *CallerWriter) EnsureStaff(ctx context.Context, dto StaffProfileDTO) (bool, error) {
	if err := w.check(dto.UserID); err != nil {
		return false, err
	}
	return w.inner.EnsureStaff(ctx, dto)
}
