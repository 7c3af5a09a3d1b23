package handlers

import (
	"net/http"
	"strconv"

	"github.com/cliptube/backend/internal/pagination"
)

// pageParams reads page and limit from the query string. Malformed or
// missing values fall through to the normalizer's defaults.
func pageParams(r *http.Request) pagination.Params {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	return pagination.Params{Page: page, Limit: limit}.Normalize()
}
