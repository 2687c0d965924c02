// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package restaurant

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/taibuivan/tablefinder/internal/platform/apperr"
	"github.com/taibuivan/tablefinder/internal/platform/ctxutil"
	"github.com/taibuivan/tablefinder/internal/platform/telemetry"
	"github.com/taibuivan/tablefinder/internal/platform/validate"
)

// Finder is the lookup contract satisfied by [Client].
type Finder interface {
	ByCity(ctx context.Context, city string) ([]Place, error)
	ByCoordinates(ctx context.Context, lat, lon float64) ([]Place, error)
}

// Service implements the restaurant search use cases.
type Service struct {
	finder       Finder
	transactions TransactionRepository
	storeTimeout time.Duration
	tracer       trace.Tracer
	now          func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(finder Finder, transactions TransactionRepository, storeTimeout time.Duration) *Service {
	return &Service{
		finder:       finder,
		transactions: transactions,
		storeTimeout: storeTimeout,
		tracer:       telemetry.Tracer("tablefinder/restaurant"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

/*
Search returns the names of restaurants around the query origin.

Description: A city takes precedence over coordinates. The result is recorded
as a transaction for userID; a failed write is logged and never fails the
search.

Parameters:
  - context: context.Context
  - userID: int64 (from the verified session)
  - query: Query

Returns:
  - []string: Restaurant names in upstream order
  - err: ValidationError or ExternalService
*/
func (service *Service) Search(ctx context.Context, userID int64, query Query) ([]string, error) {
	ctx, span := service.tracer.Start(ctx, "restaurant.Search", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	city := strings.TrimSpace(query.City)
	if city == "" && !query.HasCoordinates() {
		return nil, apperr.ValidationError(MsgMissingOrigin)
	}

	var (
		places []Place
		err    error
	)

	if city != "" {
		span.SetAttributes(attribute.String("search.city", city))
		places, err = service.finder.ByCity(ctx, city)
	} else {
		validator := &validate.Validator{}
		lat, lon := *query.Lat, *query.Lon
		validator.Custom(FieldLat, !inRange(lat, 90), "Must be between -90 and 90").
			Custom(FieldLon, !inRange(lon, 180), "Must be between -180 and 180")
		if err := validator.ErrWith(MsgInvalidCoordinates); err != nil {
			return nil, err
		}
		places, err = service.finder.ByCoordinates(ctx, lat, lon)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, apperr.ExternalService(MsgSearchFailed, fmt.Errorf("restaurant_service_lookup_failed: %w", err))
	}

	names := make([]string, 0, len(places))
	for _, place := range places {
		names = append(names, place.Name)
	}
	span.SetAttributes(attribute.Int("search.results", len(names)))

	service.record(ctx, userID, names)

	return names, nil
}

// inRange reports whether value is finite and within [-limit, limit].
func inRange(value, limit float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value >= -limit && value <= limit
}

// record writes the search history entry; failures are logged only.
func (service *Service) record(ctx context.Context, userID int64, names []string) {
	storeCtx, cancel := context.WithTimeout(ctx, service.storeTimeout)
	defer cancel()

	transaction := &Transaction{
		UserID:      userID,
		Date:        service.now(),
		Restaurants: names,
	}

	if err := service.transactions.Create(storeCtx, transaction); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "transaction_record_failed",
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
	}
}

/*
Transactions lists the caller's search history, oldest first.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - []Transaction: Possibly empty
  - err: Internal on store failures
*/
func (service *Service) Transactions(ctx context.Context, userID int64) ([]Transaction, error) {
	ctx, span := service.tracer.Start(ctx, "restaurant.Transactions", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	storeCtx, cancel := context.WithTimeout(ctx, service.storeTimeout)
	defer cancel()

	transactions, err := service.transactions.ListByUser(storeCtx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, apperr.Internal(fmt.Errorf("restaurant_service_transactions_failed: %w", err))
	}

	return transactions, nil
}
