package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"inncore/infras/otel"
	"inncore/infras/postgres"
	"inncore/internal/domains/booking/model"
	roomModel "inncore/internal/domains/room/model"
	"inncore/shared"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	"inncore/shared/logger"
	gRepo "inncore/shared/repository"
	"slices"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	constraintIdempotencyKey = "uq_bookings_idempotency_key"
	constraintBookingNumber  = "uq_bookings_booking_number"

	systemUser = "system"
)

var (
	ErrBookingNotFound         = errors.New("booking not found")
	ErrRoomNotFound            = errors.New("room not found in hotel")
	ErrBlockingOverlap         = errors.New("rooms are held by a blocking booking")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	ErrDuplicateBookingNumber  = errors.New("booking number already exists")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Preparer runs inside the creation transaction once the requested rooms are locked. It receives
// the locked rooms in id order and may reject the booking or derive prices from them.
type Preparer func(rooms []roomModel.Room) error

// Decider mutates a locked booking in place. Recheck locks the booking's rooms and returns the
// bookings blocking them, ignoring the booking itself. Returning an error aborts the transition.
type Decider func(booking *model.Booking, recheck func() ([]model.Booking, error)) error

type Booking interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Find(ctx context.Context, hotelID, id string) (model.Booking, error)
	GetByIdempotencyKey(ctx context.Context, key string) (model.Booking, error)
	Rooms(ctx context.Context, bookingIDs ...string) (map[string][]model.BookingRoom, error)
	FindBlocking(ctx context.Context, q model.OverlapQuery) ([]model.Booking, error)
	Create(ctx context.Context, booking *model.Booking, now time.Time, prepare Preparer) error
	Transition(ctx context.Context, hotelID, id string, now time.Time, decide Decider) (model.Booking, error)
	ExpireHolds(ctx context.Context, now time.Time, limit uint64) ([]model.Booking, error)
	ListPurgeable(ctx context.Context, before time.Time, limit uint64) ([]model.Booking, error)
	Purge(ctx context.Context, ids ...string) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	lines gRepo.Repository[model.BookingRoom]
	rooms gRepo.Repository[roomModel.Room]
	db    *postgres.Connection
	otel  otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		lines:      gRepo.NewRepository[model.BookingRoom](model.RoomEntityName, model.RoomsTableName, model.FieldBookingID, db, otel),
		rooms:      gRepo.NewRepository[roomModel.Room](roomModel.EntityName, roomModel.TableName, roomModel.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) scope(ctx context.Context, name string) (context.Context, otel.Scope) {
	return r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, model.EntityName, name))
}

// Find reads a booking with its rooms from the primary. Bookings of other hotels read as not found.
func (r *repositoryImpl) Find(ctx context.Context, hotelID, id string) (res model.Booking, err error) {
	ctx, scope := r.scope(ctx, "Find")
	defer scope.End()
	defer scope.TraceIfError(err)

	res, err = r.GetPrimary(ctx, shared.FilterByIDInHotel(id, model.FieldID, hotelID, model.FieldHotelID, model.TableName))
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if res.ID == constant.Empty {
		return res, ErrBookingNotFound
	}

	return res, r.attachRooms(ctx, r.db.Write, &res)
}

// GetByIdempotencyKey reads from the primary so a concurrent winner is visible right after its commit.
func (r *repositoryImpl) GetByIdempotencyKey(ctx context.Context, key string) (res model.Booking, err error) {
	ctx, scope := r.scope(ctx, "GetByIdempotencyKey")
	defer scope.End()
	defer scope.TraceIfError(err)

	res, err = r.GetPrimary(ctx, shared.FilterByID(key, model.FieldIdempotencyKey, model.TableName))
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if res.ID == constant.Empty {
		return res, ErrBookingNotFound
	}

	return res, r.attachRooms(ctx, r.db.Write, &res)
}

func (r *repositoryImpl) Rooms(ctx context.Context, bookingIDs ...string) (map[string][]model.BookingRoom, error) {
	ctx, scope := r.scope(ctx, "Rooms")
	defer scope.End()

	return r.loadRooms(ctx, r.db.Read, bookingIDs) //nolint:wrapcheck
}

// FindBlocking selects bookings that block the queried rooms and range at q.Now, with their rooms.
func (r *repositoryImpl) FindBlocking(ctx context.Context, q model.OverlapQuery) (res []model.Booking, err error) {
	ctx, scope := r.scope(ctx, "FindBlocking")
	defer scope.End()
	defer scope.TraceIfError(err)

	return r.findBlocking(ctx, r.db.Read, q) //nolint:wrapcheck
}

// Create persists a pending booking and its rooms in one transaction. The requested rooms are
// locked in id order before the overlap check, so concurrent creations touching a shared room are
// serialized across server instances.
func (r *repositoryImpl) Create(ctx context.Context, booking *model.Booking, now time.Time, prepare Preparer) (err error) {
	ctx, scope := r.scope(ctx, "Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	roomIDs := sortedUnique(booking.RoomIDs())

	err = r.db.WithTx(ctx, nil, func(tx *sqlx.Tx) error {
		rooms, err := r.lockRooms(ctx, tx, booking.HotelID, roomIDs)
		if err != nil {
			return err
		}

		if len(rooms) != len(roomIDs) {
			return fmt.Errorf("%w: %s", ErrRoomNotFound, missingRooms(roomIDs, rooms))
		}

		if booking.IdempotencyKey != nil {
			used, err := r.keyUsed(ctx, tx, *booking.IdempotencyKey)
			if err != nil {
				return err
			}

			if used {
				return ErrDuplicateIdempotencyKey
			}
		}

		if err = prepare(rooms); err != nil {
			return err
		}

		blocking, err := r.findBlocking(ctx, tx, model.OverlapQuery{
			HotelID:  booking.HotelID,
			RoomIDs:  roomIDs,
			CheckIn:  booking.CheckIn,
			CheckOut: booking.CheckOut,
			Now:      now,
		})
		if err != nil {
			return err
		}

		if len(blocking) > 0 {
			return fmt.Errorf("%w: %s", ErrBlockingOverlap, blocking[0].BookingNumber)
		}

		if err = r.InsertTx(ctx, tx, *booking); err != nil {
			return err //nolint:wrapcheck
		}

		return r.lines.InsertBulkTx(ctx, tx, linesOf(booking)) //nolint:wrapcheck
	})

	return mapError(err)
}

// Transition locks one booking, lets decide mutate it and persists the result along with the
// status of its room lines.
func (r *repositoryImpl) Transition(ctx context.Context, hotelID, id string, now time.Time, decide Decider) (res model.Booking, err error) {
	ctx, scope := r.scope(ctx, "Transition")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = r.db.WithTx(ctx, nil, func(tx *sqlx.Tx) error {
		booking, err := r.GetForUpdateTx(ctx, tx, shared.FilterByIDInHotel(id, model.FieldID, hotelID, model.FieldHotelID, model.TableName))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if booking.ID == constant.Empty {
			return ErrBookingNotFound
		}

		if err = r.attachRooms(ctx, tx, &booking); err != nil {
			return err
		}

		before := booking

		recheck := func() ([]model.Booking, error) {
			roomIDs := sortedUnique(booking.RoomIDs())
			if _, err := r.lockRooms(ctx, tx, booking.HotelID, roomIDs); err != nil {
				return nil, err
			}

			return r.findBlocking(ctx, tx, model.OverlapQuery{
				HotelID:          booking.HotelID,
				RoomIDs:          roomIDs,
				CheckIn:          booking.CheckIn,
				CheckOut:         booking.CheckOut,
				ExcludeBookingID: booking.ID,
				Now:              now,
			})
		}

		if err = decide(&booking, recheck); err != nil {
			return err
		}

		if err = r.UpdateTx(ctx, tx, transitionFields(booking), shared.FilterByID(booking.ID, model.FieldID, model.TableName)); err != nil {
			return err //nolint:wrapcheck
		}

		if booking.Status != before.Status {
			if err = r.setLineStatus(ctx, tx, booking.Status, booking.ID); err != nil {
				return err
			}

			for i := range booking.Rooms {
				booking.Rooms[i].Status = booking.Status
			}
		}

		res = booking

		return nil
	})

	return res, mapError(err)
}

// ExpireHolds cancels pending bookings whose hold lapsed at now, oldest first, and returns them.
// Rows locked by an in-flight transition are skipped and picked up by a later sweep.
func (r *repositoryImpl) ExpireHolds(ctx context.Context, now time.Time, limit uint64) (res []model.Booking, err error) {
	ctx, scope := r.scope(ctx, "ExpireHolds")
	defer scope.End()
	defer scope.TraceIfError(err)

	stale := sq.Select(model.FieldID).
		From(model.TableName).
		Where(sq.Eq{model.FieldStatus: model.StatusPending}).
		Where(sq.Or{
			sq.LtOrEq{model.FieldHoldExpiresAt: now},
			sq.Eq{model.FieldHoldExpiresAt: nil},
		}).
		OrderBy(model.FieldHoldExpiresAt + " NULLS FIRST").
		Limit(limit).
		Suffix("FOR UPDATE SKIP LOCKED")

	query, args, err := psql.Update(model.TableName).
		SetMap(map[string]any{
			model.FieldStatus:             model.StatusCancelled,
			model.FieldCancellationReason: model.ReasonHoldExpired,
			model.FieldCancelledAt:        now,
			constant.FieldModifiedAt:      now,
			constant.FieldModifiedBy:      systemUser,
		}).
		Where(sq.Expr(model.FieldID+" IN (?)", stale)).
		Suffix("RETURNING " + strings.Join(r.Columns(), ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build expire holds query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = r.db.WithTx(ctx, nil, func(tx *sqlx.Tx) error {
		if err := sqlx.SelectContext(ctx, tx, &res, query, args...); err != nil {
			logger.ErrorWithStack(err)

			return fmt.Errorf("failed to expire holds: %w", err)
		}

		if len(res) == 0 {
			return nil
		}

		ids := make([]string, len(res))
		for i, booking := range res {
			ids[i] = booking.ID
		}

		return r.setLineStatus(ctx, tx, model.StatusCancelled, ids...)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return res, nil
}

// ListPurgeable returns bookings cancelled by hold expiry before the cutoff, with their rooms.
func (r *repositoryImpl) ListPurgeable(ctx context.Context, before time.Time, limit uint64) (res []model.Booking, err error) {
	ctx, scope := r.scope(ctx, "ListPurgeable")
	defer scope.End()
	defer scope.TraceIfError(err)

	query, args, err := psql.Select(r.Columns()...).
		From(model.TableName).
		Where(sq.Eq{
			model.TableName + "." + model.FieldStatus:             model.StatusCancelled,
			model.TableName + "." + model.FieldCancellationReason: model.ReasonHoldExpired,
		}).
		Where(sq.Lt{model.TableName + "." + model.FieldCancelledAt: before}).
		OrderBy(model.TableName + "." + model.FieldCancelledAt).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build purgeable query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err = sqlx.SelectContext(ctx, r.db.Read, &res, query, args...); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to list purgeable bookings: %w", err)
	}

	return res, r.attachAll(ctx, r.db.Read, res)
}

// Purge deletes expired holds by id. Room lines go with them through the foreign key cascade.
func (r *repositoryImpl) Purge(ctx context.Context, ids ...string) (res int64, err error) {
	ctx, scope := r.scope(ctx, "Purge")
	defer scope.End()
	defer scope.TraceIfError(err)

	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := psql.Delete(model.TableName).
		Where(sq.Eq{
			model.FieldID:                 ids,
			model.FieldStatus:             model.StatusCancelled,
			model.FieldCancellationReason: model.ReasonHoldExpired,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build purge query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := r.db.Write.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to purge bookings: %w", err)
	}

	res, err = result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purged rows: %w", err)
	}

	return res, nil
}

func (r *repositoryImpl) findBlocking(ctx context.Context, db sqlx.QueryerContext, q model.OverlapQuery) ([]model.Booking, error) {
	column := func(field string) string { return model.TableName + "." + field }

	builder := psql.Select(r.Columns()...).
		From(model.TableName).
		Where(sq.Eq{column(model.FieldHotelID): q.HotelID}).
		Where(sq.Lt{column(model.FieldCheckIn): q.CheckOut}).
		Where(sq.Gt{column(model.FieldCheckOut): q.CheckIn}).
		Where(sq.Or{
			sq.Eq{column(model.FieldStatus): []model.Status{model.StatusConfirmed, model.StatusCheckedIn}},
			sq.And{
				sq.Eq{column(model.FieldStatus): model.StatusPending},
				sq.Gt{column(model.FieldHoldExpiresAt): q.Now},
			},
		}).
		OrderBy(column(model.FieldCheckIn), column(model.FieldID))

	if q.ExcludeBookingID != "" {
		builder = builder.Where(sq.NotEq{column(model.FieldID): q.ExcludeBookingID})
	}

	if len(q.RoomIDs) > 0 {
		lines := sq.Select("1").
			From(model.RoomsTableName).
			Where(model.RoomsTableName + "." + model.FieldBookingID + " = " + column(model.FieldID)).
			Where(sq.Eq{model.RoomsTableName + "." + model.FieldRoomID: q.RoomIDs})

		builder = builder.Where(sq.Expr("EXISTS (?)", lines))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build blocking query: %w", err)
	}

	var res []model.Booking
	if err = sqlx.SelectContext(ctx, db, &res, query, args...); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to find blocking bookings: %w", err)
	}

	return res, r.attachAll(ctx, db, res)
}

func (r *repositoryImpl) lockRooms(ctx context.Context, tx *sqlx.Tx, hotelID string, roomIDs []string) ([]roomModel.Room, error) {
	query, args, err := psql.Select(r.rooms.Columns()...).
		From(roomModel.TableName).
		Where(sq.Eq{
			roomModel.TableName + "." + roomModel.FieldHotelID: hotelID,
			roomModel.TableName + "." + roomModel.FieldID:      roomIDs,
		}).
		OrderBy(roomModel.TableName + "." + roomModel.FieldID).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build room lock query: %w", err)
	}

	var rooms []roomModel.Room
	if err = sqlx.SelectContext(ctx, tx, &rooms, query, args...); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to lock rooms: %w", err)
	}

	return rooms, nil
}

func (r *repositoryImpl) keyUsed(ctx context.Context, tx *sqlx.Tx, key string) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From(model.TableName).
		Where(sq.Eq{model.FieldIdempotencyKey: key}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build idempotency query: %w", err)
	}

	var used bool
	if err = tx.GetContext(ctx, &used, query, args...); err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	return used, nil
}

func (r *repositoryImpl) setLineStatus(ctx context.Context, tx *sqlx.Tx, status model.Status, bookingIDs ...string) error {
	query, args, err := psql.Update(model.RoomsTableName).
		Set(model.FieldStatus, status).
		Where(sq.Eq{model.FieldBookingID: bookingIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build room line update: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to update room lines: %w", err)
	}

	return nil
}

func (r *repositoryImpl) loadRooms(ctx context.Context, db sqlx.QueryerContext, bookingIDs []string) (map[string][]model.BookingRoom, error) {
	res := make(map[string][]model.BookingRoom, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return res, nil
	}

	query, args, err := psql.Select(r.lines.Columns()...).
		From(model.RoomsTableName).
		Where(sq.Eq{model.RoomsTableName + "." + model.FieldBookingID: bookingIDs}).
		OrderBy(model.RoomsTableName+"."+model.FieldBookingID, model.RoomsTableName+"."+model.FieldPosition).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build room lines query: %w", err)
	}

	var lines []model.BookingRoom
	if err = sqlx.SelectContext(ctx, db, &lines, query, args...); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to load room lines: %w", err)
	}

	for _, line := range lines {
		res[line.BookingID] = append(res[line.BookingID], line)
	}

	return res, nil
}

func (r *repositoryImpl) attachRooms(ctx context.Context, db sqlx.QueryerContext, booking *model.Booking) error {
	lines, err := r.loadRooms(ctx, db, []string{booking.ID})
	if err != nil {
		return err
	}

	booking.Rooms = lines[booking.ID]

	return nil
}

func (r *repositoryImpl) attachAll(ctx context.Context, db sqlx.QueryerContext, bookings []model.Booking) error {
	ids := make([]string, len(bookings))
	for i, booking := range bookings {
		ids[i] = booking.ID
	}

	lines, err := r.loadRooms(ctx, db, ids)
	if err != nil {
		return err
	}

	for i := range bookings {
		bookings[i].Rooms = lines[bookings[i].ID]
	}

	return nil
}

func transitionFields(b model.Booking) map[string]any {
	return map[string]any{
		model.FieldStatus:             b.Status,
		model.FieldPaymentStatus:      b.PaymentStatus,
		model.FieldHoldExpiresAt:      b.HoldExpiresAt,
		model.FieldCancellationReason: b.CancellationReason,
		model.FieldCancelledAt:        b.CancelledAt,
		constant.FieldModifiedAt:      b.ModifiedAt,
		constant.FieldModifiedBy:      b.ModifiedBy,
	}
}

func linesOf(b *model.Booking) []model.BookingRoom {
	lines := make([]model.BookingRoom, len(b.Rooms))
	for i, room := range b.Rooms {
		room.BookingID = b.ID
		room.HotelID = b.HotelID
		room.CheckIn = b.CheckIn
		room.CheckOut = b.CheckOut
		room.Status = b.Status
		room.Position = i
		lines[i] = room
	}

	b.Rooms = lines

	return lines
}

// mapError translates storage failures into the ledger's sentinel errors. Exclusion violations and
// serialization failures mean a concurrent writer won the rooms.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case constant.PqErrorCodeExclusionViolation, constant.PqErrorCodeSerialization, constant.PqErrorCodeDeadlockDetected:
		return fmt.Errorf("%w: %s", ErrBlockingOverlap, pqErr.Message)
	case constant.PqErrorCodeUniqueViolation:
		switch pqErr.Constraint {
		case constraintIdempotencyKey:
			return ErrDuplicateIdempotencyKey
		case constraintBookingNumber:
			return ErrDuplicateBookingNumber
		}
	}

	return err
}

func sortedUnique(ids []string) []string {
	res := slices.Clone(ids)
	slices.Sort(res)

	return slices.Compact(res)
}

func missingRooms(requested []string, found []roomModel.Room) []string {
	missing := []string{}

	for _, id := range requested {
		if !slices.ContainsFunc(found, func(room roomModel.Room) bool { return room.ID == id }) {
			missing = append(missing, id)
		}
	}

	return missing
}
