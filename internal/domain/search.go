package domain

import "strings"

type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// IsDescending accepts both the short and long spelling, case-insensitively.
func (d SortDirection) IsDescending() bool {
	return strings.EqualFold(string(d), "desc") || strings.EqualFold(string(d), "descending")
}

type SortInfo struct {
	SortColumn    string        `json:"sort_column" validate:"required"`
	SortDirection SortDirection `json:"sort_direction"`
}

// DefaultPageSize is the Take applied when a request omits it.
const DefaultPageSize = 20

// SearchCriteria selects a page of notifications.
// Keyword matches as a case-sensitive substring of Type only. An explicit
// Take of 0 returns the count alone; see NewSearchCriteria for the default.
type SearchCriteria struct {
	Keyword   string     `json:"keyword"`
	SortInfos []SortInfo `json:"sort_infos" validate:"dive"`
	Skip      int        `json:"skip" validate:"gte=0"`
	Take      int        `json:"take" validate:"gte=0"`
}

// NewSearchCriteria returns criteria with the default page size, for decoding
// request bodies onto.
func NewSearchCriteria() SearchCriteria {
	return SearchCriteria{Take: DefaultPageSize}
}

// DefaultSortInfos is applied when a search carries no sort.
func DefaultSortInfos() []SortInfo {
	return []SortInfo{{SortColumn: "Type", SortDirection: SortAscending}}
}

type SearchResult struct {
	Results    []Notification `json:"results"`
	TotalCount int            `json:"total_count"`
}
