package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/biyonik/datamapper/pkg/database"
)

// FilterOptions, compile ve query komutlarının ortak filtre flag'leridir.
type FilterOptions struct {
	Where  []string // "alan<op>değer" ifadeleri
	Raw    []string // Olduğu gibi eklenen SQL parçaları
	ID     string
	Search string
	Limit  int
	Offset int
}

var (
	wordOperator   = regexp.MustCompile(`(?i)^\s*([\w.]+)\s+(not\s+like|like|not\s+in|in)\s+(.*)$`)
	symbolOperator = []string{">=", "<=", "!=", "<>", "=", ">", "<"}
)

// Filters, flag'leri Filter listesine çevirir. Where ifadeleri önce, Raw
// parçaları sonra gelir.
func (o *FilterOptions) Filters() ([]database.Filter, error) {
	var filters []database.Filter
	for _, expr := range o.Where {
		f, err := ParseWhere(expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	for _, raw := range o.Raw {
		filters = append(filters, database.Raw(raw))
	}
	return filters, nil
}

// LimitArgs, storage Limit argümanlarını döndürür; limit yoksa nil.
func (o *FilterOptions) LimitArgs() []any {
	if o.Limit <= 0 {
		return nil
	}
	if o.Offset > 0 {
		return []any{o.Offset, o.Limit}
	}
	return []any{o.Limit}
}

// ParseWhere, "alan<op>değer" ifadesini Filter'a çevirir.
//
// Örnek:
//
//	ParseWhere("id>=5")              → Compare("id", ">=", int64(5))
//	ParseWhere("userName like jo%")  → Compare("userName", "LIKE", "jo%")
//	ParseWhere("id in 1,2,3")        → Compare("id", "IN", []any{1, 2, 3})
//	ParseWhere("deletedAt=null")     → Equals("deletedAt", nil)
func ParseWhere(expr string) (database.Filter, error) {
	if m := wordOperator.FindStringSubmatch(expr); m != nil {
		op := strings.ToUpper(strings.Join(strings.Fields(m[2]), " "))
		value := strings.TrimSpace(m[3])
		if strings.HasSuffix(op, "IN") {
			var items []any
			for _, part := range strings.Split(value, ",") {
				items = append(items, parseValue(strings.TrimSpace(part)))
			}
			return database.Compare(m[1], op, items), nil
		}
		return database.Compare(m[1], op, value), nil
	}

	for _, op := range symbolOperator {
		idx := strings.Index(expr, op)
		if idx <= 0 {
			continue
		}
		column := strings.TrimSpace(expr[:idx])
		value := parseValue(strings.TrimSpace(expr[idx+len(op):]))
		if op == "=" {
			return database.Equals(column, value), nil
		}
		return database.Compare(column, op, value), nil
	}

	return database.Filter{}, fmt.Errorf("invalid --where %q: expected <field><op><value>", expr)
}

// parseValue, metni int64, float64, nil veya string'e çevirir.
func parseValue(s string) any {
	if strings.EqualFold(s, "null") {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return strings.Trim(s, `"'`)
}
