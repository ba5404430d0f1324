package filters

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// dimensionColumns is the allow-list of filterable dimensions. Values never
// reach the predicate text; only these column names do.
var dimensionColumns = map[string]string{
	"country":      "client_country",
	"client":       "client_name",
	"product_type": "order_type",
	"brand":        "product_brand",
	"supplier":     "supplier_name",
}

// BuildPredicate canonicalizes criteria into a boolean SQL predicate with
// named bound parameters (@name style). The predicate always excludes test
// rows; date bounds are inclusive on both ends; an empty inclusion list
// contributes no condition for its dimension.
func BuildPredicate(c Criteria) (string, map[string]interface{}, error) {
	conditions := []string{"is_test = 0"}
	params := map[string]interface{}{}

	start, end, err := parseDateRange(c.StartDate, c.EndDate)
	if err != nil {
		return "", nil, err
	}

	switch {
	case start != "" && end != "":
		conditions = append(conditions, "order_date BETWEEN @start_date AND @end_date")
		params["start_date"] = start
		params["end_date"] = end
	case start != "":
		conditions = append(conditions, "order_date >= @start_date")
		params["start_date"] = start
	case end != "":
		conditions = append(conditions, "order_date <= @end_date")
		params["end_date"] = end
	}

	lists := map[string][]string{
		"country":      c.Countries,
		"client":       c.Clients,
		"product_type": c.ProductTypes,
		"brand":        c.Brands,
		"supplier":     c.Suppliers,
	}
	for dim, values := range c.Dimensions {
		if _, ok := dimensionColumns[dim]; !ok {
			return "", nil, &InvalidFilterError{Reason: fmt.Sprintf("unknown dimension %q", dim)}
		}
		lists[dim] = append(lists[dim], values...)
	}

	// Deterministic condition order regardless of map iteration.
	dims := make([]string, 0, len(lists))
	for dim := range lists {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	for _, dim := range dims {
		cond := listCondition(dimensionColumns[dim], dim, lists[dim], params)
		if cond != "" {
			conditions = append(conditions, cond)
		}
	}

	return strings.Join(conditions, " AND "), params, nil
}

func parseDateRange(start, end string) (string, string, error) {
	var startAt, endAt time.Time
	var err error

	if start != "" {
		if startAt, err = time.Parse(dateLayout, start); err != nil {
			return "", "", &InvalidFilterError{Reason: fmt.Sprintf("start_date %q is not a valid date", start)}
		}
	}
	if end != "" {
		if endAt, err = time.Parse(dateLayout, end); err != nil {
			return "", "", &InvalidFilterError{Reason: fmt.Sprintf("end_date %q is not a valid date", end)}
		}
	}
	if start != "" && end != "" && startAt.After(endAt) {
		return "", "", &InvalidFilterError{Reason: "start_date is after end_date"}
	}
	return start, end, nil
}

// listCondition builds an IN (...) predicate over bound parameters. The
// Unassigned sentinel widens the condition to NULL/empty rows.
func listCondition(column, dim string, values []string, params map[string]interface{}) string {
	if len(values) == 0 {
		return ""
	}

	wantUnassigned := false
	named := make([]string, 0, len(values))
	for _, v := range values {
		if v == Unassigned {
			wantUnassigned = true
			continue
		}
		key := fmt.Sprintf("%s_%d", dim, len(named))
		named = append(named, "@"+key)
		params[key] = v
	}

	switch {
	case len(named) == 0 && wantUnassigned:
		return fmt.Sprintf("(%s IS NULL OR %s = '')", column, column)
	case wantUnassigned:
		return fmt.Sprintf("(%s IN (%s) OR %s IS NULL OR %s = '')",
			column, strings.Join(named, ", "), column, column)
	default:
		return fmt.Sprintf("%s IN (%s)", column, strings.Join(named, ", "))
	}
}
