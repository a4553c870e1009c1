// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "math"

// DefaultPerPage is the category page size used by the public site.
const DefaultPerPage = 6

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = 100

// Page is one window of a paginated listing. CurrentPage is 1-indexed.
type Page[T any] struct {
	Items       []T  `json:"items"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NormalizePage clamps page to >= 1, falls back to DefaultPerPage when
// perPage is not positive and caps perPage at MaxPerPage.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return page, min(perPage, MaxPerPage)
}

// Offset returns the number of rows to skip for a 1-indexed page. It
// saturates at math.MaxInt instead of overflowing.
func Offset(page, perPage int) int {
	page, perPage = NormalizePage(page, perPage)
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

// TotalPages returns ceil(totalCount / perPage).
func TotalPages(totalCount, perPage int) int {
	if perPage <= 0 || totalCount <= 0 {
		return 0
	}
	pages := totalCount / perPage
	if totalCount%perPage != 0 {
		pages++
	}
	return pages
}

// NewPage wraps an already-windowed slice with its pagination metadata.
func NewPage[T any](items []T, totalCount, page, perPage int) Page[T] {
	page, perPage = NormalizePage(page, perPage)
	if items == nil {
		items = []T{}
	}
	totalPages := TotalPages(totalCount, perPage)
	return Page[T]{
		Items:       items,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
