// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package restaurant

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tablefinder/internal/platform/apperr"
	requestutil "github.com/taibuivan/tablefinder/internal/platform/request"
	"github.com/taibuivan/tablefinder/internal/platform/respond"
)

// Handler implements the restaurant search endpoints.
type Handler struct {
	service *Service
	guard   func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler]. guard protects every route.
func NewHandler(service *Service, guard func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns a [chi.Router] configured with the search routes.
//
// # Endpoints
//   - GET /restaurants  : ?city=<name> or ?lat=<lat>&lon=<lon>
//   - GET /transactions : The caller's search history
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

// RegisterRoutes attaches the guarded search routes to an existing router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(handler.guard)
		r.Get("/restaurants", handler.search)
		r.Get("/transactions", handler.listTransactions)
	})
}

// # Response Payloads

type searchResponse struct {
	Restaurants []string `json:"restaurants"`
}

type transactionView struct {
	ID          int64    `json:"id"`
	Date        string   `json:"date"`
	Restaurants []string `json:"restaurants"`
}

type transactionsResponse struct {
	Transactions []transactionView `json:"transactions"`
}

/*
Search handles a nearby-restaurant lookup.

GET /restaurants

Response:
  - 200: searchResponse
  - 400: Neither city nor both coordinates, or unparsable coordinates
  - 401: Session guard rejection
  - 500: Upstream lookup failure
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	query, err := parseQuery(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	names, err := handler.service.Search(request.Context(), userID, query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, searchResponse{Restaurants: names})
}

/*
ListTransactions returns the caller's search history.

GET /transactions

Response:
  - 200: transactionsResponse (dates in RFC 3339, UTC)
  - 401: Session guard rejection
*/
func (handler *Handler) listTransactions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	transactions, err := handler.service.Transactions(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views := make([]transactionView, 0, len(transactions))
	for _, transaction := range transactions {
		restaurants := transaction.Restaurants
		if restaurants == nil {
			restaurants = []string{}
		}
		views = append(views, transactionView{
			ID:          transaction.ID,
			Date:        transaction.Date.UTC().Format(time.RFC3339),
			Restaurants: restaurants,
		})
	}

	respond.OK(writer, transactionsResponse{Transactions: views})
}

// parseQuery reads city, lat and lon from the query string.
//
// A city makes the coordinates irrelevant; otherwise each present coordinate must parse.
func parseQuery(request *http.Request) (Query, error) {
	values := request.URL.Query()
	query := Query{City: strings.TrimSpace(values.Get(FieldCity))}
	if query.City != "" {
		return query, nil
	}

	var details []apperr.FieldError
	parse := func(field string) *float64 {
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			details = append(details, apperr.FieldError{Field: field, Message: "Must be a number"})
			return nil
		}
		return &parsed
	}

	query.Lat = parse(FieldLat)
	query.Lon = parse(FieldLon)

	if len(details) > 0 {
		return Query{}, apperr.ValidationError(MsgInvalidCoordinates, details...)
	}
	return query, nil
}
