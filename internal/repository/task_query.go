package repository

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

const (
	defaultLimit = 25
	maxLimit     = 100
)

// reserved parameters are interpreted by the translator itself and never
// become filters.
var reservedParams = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

// filterColumns maps the public parameter names onto task columns.
// Anything outside this map is rejected, which is what keeps the
// ownership scoping clause out of reach of client parameters.
var filterColumns = map[string]string{
	"status":    "status",
	"priority":  "priority",
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"title":     "title",
}

var filterOps = map[string]string{
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
	"in":  "IN",
}

// Filter is a single WHERE condition ready to hand to gorm.
type Filter struct {
	Expr string
	Args []interface{}
}

// SortField is one element of an ORDER BY clause.
type SortField struct {
	Column string
	Desc   bool
}

// TaskQuery is the translated form of a task-list request.
type TaskQuery struct {
	Filters []Filter
	Sort    []SortField
	Page    int
	Limit   int
}

// ParseTaskQuery translates listing query parameters into typed filters,
// sort order and pagination. Malformed input fails with a validation
// error rather than producing an empty filter.
func ParseTaskQuery(values url.Values) (*TaskQuery, error) {
	q := &TaskQuery{Page: 1, Limit: defaultLimit}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return nil, apperr.Validationf("invalid page %q", raw)
		}
		q.Page = page
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, apperr.Validationf("invalid limit %q", raw)
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		q.Limit = limit
	}

	sort, err := parseSort(values.Get("sort"))
	if err != nil {
		return nil, err
	}
	q.Sort = sort

	for name, raw := range values {
		if reservedParams[name] {
			continue
		}
		column, ok := filterColumns[name]
		if !ok {
			return nil, apperr.Validationf("unknown filter field %q", name)
		}
		for _, value := range raw {
			filter, err := parseFilter(name, column, value)
			if err != nil {
				return nil, err
			}
			q.Filters = append(q.Filters, filter)
		}
	}

	return q, nil
}

// Offset returns the row offset implied by page and limit.
func (q *TaskQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// OrderBy renders the sort fields as a single ORDER BY expression.
func (q *TaskQuery) OrderBy() string {
	parts := make([]string, 0, len(q.Sort))
	for _, s := range q.Sort {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, s.Column+" "+dir)
	}
	return strings.Join(parts, ", ")
}

func parseSort(raw string) ([]SortField, error) {
	if raw == "" {
		return []SortField{{Column: "created_at", Desc: true}}, nil
	}
	var fields []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		column, ok := filterColumns[name]
		if !ok {
			return nil, apperr.Validationf("cannot sort by %q", name)
		}
		fields = append(fields, SortField{Column: column, Desc: desc})
	}
	return fields, nil
}

// parseFilter turns a single name=value pair into a condition. Values may
// carry an operator prefix, e.g. dueDate=lte:2025-06-01 or
// priority=in:low,medium; a bare value means equality.
func parseFilter(name, column, value string) (Filter, error) {
	op := "="
	if prefix, rest, found := strings.Cut(value, ":"); found {
		if sqlOp, ok := filterOps[prefix]; ok {
			op = sqlOp
			value = rest
		}
	}

	if op == "IN" {
		parts := strings.Split(value, ",")
		args := make([]interface{}, 0, len(parts))
		for _, part := range parts {
			arg, err := parseValue(name, strings.TrimSpace(part))
			if err != nil {
				return Filter{}, err
			}
			args = append(args, arg)
		}
		if len(args) == 0 {
			return Filter{}, apperr.Validationf("empty list for %q", name)
		}
		return Filter{Expr: column + " IN ?", Args: []interface{}{args}}, nil
	}

	arg, err := parseValue(name, value)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Expr: fmt.Sprintf("%s %s ?", column, op), Args: []interface{}{arg}}, nil
}

// parseValue validates and types the raw value for its field.
func parseValue(name, value string) (interface{}, error) {
	switch name {
	case "status":
		if !model.Status(value).Valid() {
			return nil, apperr.Validationf("invalid status %q", value)
		}
		return value, nil
	case "priority":
		if !model.Priority(value).Valid() {
			return nil, apperr.Validationf("invalid priority %q", value)
		}
		return value, nil
	case "dueDate", "createdAt":
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
		}
		return nil, apperr.Validationf("invalid date %q for %s", value, name)
	default:
		if value == "" {
			return nil, apperr.Validationf("empty value for %q", name)
		}
		return value, nil
	}
}
