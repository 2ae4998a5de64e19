package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"travelapp/internal/entities"
	apperrors "travelapp/internal/errors"
	"travelapp/internal/repository"
	"travelapp/internal/validation"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
)

// Resource is the CRUD contract every REST collection implements. Req is
// the writable wire shape, Resp the serialized entity.
type Resource[Req, Resp any] interface {
	// List returns the matching entities and the total number of matches.
	List(ctx context.Context, q entities.ListQuery) ([]Resp, int, error)
	Retrieve(ctx context.Context, id string) (*Resp, error)
	Create(ctx context.Context, req Req) (*Resp, error)
	Update(ctx context.Context, id string, req Req) (*Resp, error)
	// PartialUpdate applies an RFC 7386 merge patch to the current
	// representation and validates the result like Update.
	PartialUpdate(ctx context.Context, id string, patch []byte) (*Resp, error)
	Destroy(ctx context.Context, id string) error
}

// parseID treats a malformed identifier like an unknown one.
func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperrors.ErrNotFound
	}
	return uid, nil
}

// storeError translates repository sentinels into client errors.
func storeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}

// window returns the limit/offset to hand to a store for q.
func window(q entities.ListQuery) (limit, offset int) {
	if !q.Paginate {
		return 0, 0
	}
	return q.Limit, q.Offset
}

func mergePatch[T any](current T, patch []byte) (T, error) {
	var out T
	original, err := json.Marshal(current)
	if err != nil {
		return out, fmt.Errorf("error encoding current state: %w", err)
	}
	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return out, apperrors.ErrBadRequest("JSON parse error - " + err.Error())
	}
	if err := json.Unmarshal(merged, &out); err != nil {
		return out, validation.FromDecodeError(err)
	}
	return out, nil
}
