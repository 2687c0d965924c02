// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package restaurant implements the authenticated nearby-restaurant search.

A search resolves a city (via Nominatim) or takes explicit coordinates, asks
the Overpass API for named restaurant nodes around that point, and records
the resulting names as a per-user transaction.

Architecture:

  - Client: Synchronous pass-through to the two public OpenStreetMap APIs.
  - Service: Input rules, search orchestration and best-effort history writes.
  - Repository: Transaction history in the Credential Store (Postgres or SQLite).
*/
package restaurant

import "time"

// # Domain Entities

// Place is a named restaurant node returned by the POI API.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Transaction records the restaurant names returned to a user by one search.
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Date        time.Time `json:"date"`
	Restaurants []string  `json:"restaurants"`
}

// Query selects the search origin. City wins when both are given.
type Query struct {
	City string
	Lat  *float64
	Lon  *float64
}

// HasCoordinates reports whether both coordinates were supplied.
func (query Query) HasCoordinates() bool {
	return query.Lat != nil && query.Lon != nil
}

// # Field Identifiers

const (
	FieldCity = "city"
	FieldLat  = "lat"
	FieldLon  = "lon"
)

// # Client Messages

const (
	MsgMissingOrigin      = "Please provide a city or coordinates."
	MsgInvalidCoordinates = "Invalid coordinates"
	MsgSearchFailed       = "Failed to get restaurants"
)
