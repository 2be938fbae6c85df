package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"inncore/infras/otel"
	"inncore/infras/postgres"
	"inncore/internal/domains/room/model"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	gRepo "inncore/shared/repository"

	"github.com/lib/pq"
)

var ErrDuplicateNumber = errors.New("room number already exists in hotel")

type Room interface {
	Insert(ctx context.Context, model model.Room) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Insert maps the (hotel_id, number) unique violation to ErrDuplicateNumber.
func (r *repositoryImpl) Insert(ctx context.Context, room model.Room) error {
	err := r.Repository.Insert(ctx, room)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateNumber, room.Number)
	}

	return err //nolint:wrapcheck
}
