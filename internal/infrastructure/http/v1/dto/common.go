// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"fmt"
	"net/url"
	"strconv"

	"shopper/internal/domain/listing"
)

// Meta is the pagination frame of a list response.
type Meta struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
}

// Links carries ready-to-follow page URLs. Prev and Next are null on
// the first and last page respectively.
type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// ListResponse is the envelope for every listing endpoint.
type ListResponse struct {
	Data  []listing.Row `json:"data"`
	Meta  Meta          `json:"meta"`
	Links Links         `json:"links"`
}

// NewListResponse renders a page result against the request URL so the
// links preserve every non-pagination parameter.
func NewListResponse(page *listing.PageResult, requestURL *url.URL) ListResponse {
	return ListResponse{
		Data: page.Data,
		Meta: Meta{
			Total:       page.Total,
			PerPage:     page.PerPage,
			CurrentPage: page.Page,
			LastPage:    page.LastPage,
		},
		Links: buildLinks(page, requestURL),
	}
}

func buildLinks(page *listing.PageResult, requestURL *url.URL) Links {
	links := Links{
		First: pageURL(requestURL, 1),
		Last:  pageURL(requestURL, page.LastPage),
	}
	if page.Page > 1 {
		prev := pageURL(requestURL, page.Page-1)
		links.Prev = &prev
	}
	if page.Page < page.LastPage {
		next := pageURL(requestURL, page.Page+1)
		links.Next = &next
	}
	return links
}

func pageURL(requestURL *url.URL, page int) string {
	u := *requestURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// BulkRequest is the body of a bulk state mutation.
type BulkRequest struct {
	Action string   `json:"action" binding:"required"`
	IDs    []string `json:"ids" binding:"required"`
}

// BulkResponse reports the outcome of a bulk mutation.
type BulkResponse struct {
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	Affected int64  `json:"affected"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Validate performs request-level checks beyond binding tags.
func (r *BulkRequest) Validate() error {
	if len(r.IDs) == 0 {
		return fmt.Errorf("ids must not be empty")
	}
	return nil
}
