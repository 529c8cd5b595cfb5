package httpapi

import (
	"fmt"
	"net/url"
	"strconv"

	"scrollgrid/internal/domain"
)

// ServersPath is the collection endpoint served by the backend
const ServersPath = "/api/v1/servers"

// Query parameter names
const (
	ParamPage          = "page"
	ParamPageSize      = "pageSize"
	ParamSearchField   = "searchField"
	ParamSearchContent = "searchContent"
	ParamSortField     = "sortField"
	ParamSortOrder     = "sortOrder"
)

// EncodeQuery encodes a page request as backend query parameters. The sort
// parameters are only present when a sort is active.
func EncodeQuery(req domain.PageRequest) url.Values {
	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(req.Page))
	v.Set(ParamPageSize, strconv.Itoa(req.PageSize))
	v.Set(ParamSearchField, req.SearchField)
	v.Set(ParamSearchContent, req.SearchTerm)
	if req.Sort.Active() {
		dir := req.Sort.Direction
		if dir == "" {
			dir = domain.SortAscending
		}
		v.Set(ParamSortField, req.Sort.By)
		v.Set(ParamSortOrder, dir.Wire())
	}
	return v
}

// DecodeQuery is the inverse of EncodeQuery
func DecodeQuery(v url.Values) (domain.PageRequest, error) {
	var req domain.PageRequest

	page, err := strconv.Atoi(v.Get(ParamPage))
	if err != nil {
		return req, fmt.Errorf("invalid %s %q", ParamPage, v.Get(ParamPage))
	}
	size, err := strconv.Atoi(v.Get(ParamPageSize))
	if err != nil {
		return req, fmt.Errorf("invalid %s %q", ParamPageSize, v.Get(ParamPageSize))
	}
	req.Page = page
	req.PageSize = size
	req.SearchField = v.Get(ParamSearchField)
	req.SearchTerm = v.Get(ParamSearchContent)

	if by := v.Get(ParamSortField); by != "" {
		dir, err := domain.ParseSortDirection(v.Get(ParamSortOrder))
		if err != nil {
			return req, fmt.Errorf("invalid %s: %w", ParamSortOrder, err)
		}
		req.Sort = domain.SortSpec{By: by, Direction: dir}
	}
	return req, nil
}
