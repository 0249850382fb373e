package relation

import (
	"fmt"
	"strings"

	"github.com/biyonik/datamapper/pkg/database"
)

// -----------------------------------------------------------------------------
// Join Compiler
// -----------------------------------------------------------------------------
// Set'teki kök ilişkileri depth-first dolaşır:
//
//   - ONE  → dış sorguya inline JOIN; alanları "ref.kolon AS Name" olarak
//            dış SELECT listesine eklenir. Çocukları da aynı kurallarla işlenir.
//   - MANY → bağımsız bir correlated subquery. Hedef tabloda kökler, ONE
//            çocuklarını kendi içine JOIN eder, dış → iç ON koşullarını WHERE
//            olarak yazar ve tüm alanları tek bir GROUP_CONCAT ifadesinde
//            toplar. İç içe MANY, HEX((alt sorgu)) olarak etiketli bir token olur.
//
// Hiç alanı ve çocuğu olmayan MANY ilişki hiçbir katkı yapmaz.
// Aynı seviyedeki her MANY kendi subquery'sini alır.
// -----------------------------------------------------------------------------

// conditionOperators, correlated WHERE ve ON koşullarında izin verilen operatörler.
var conditionOperators = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, ">": true, "<=": true, ">=": true, "<=>": true,
}

// Column, dış sorguya eklenen bir aggregate kolonudur.
type Column struct {
	Name  string
	Query *database.QueryBuilder
	Shape *Shape
}

// Plan, derlenmiş ilişkilerdir: dış sorgu join'leri, ONE join'lerin
// katkı yaptığı alanlar, MANY aggregate kolonları ve ONE filtreleri.
type Plan struct {
	Joins   []database.JoinClause
	Fields  []database.Field
	Columns []Column
	Filters []database.Filter
}

// Apply, planı dış sorguya uygular. Model alanları önceden seçilmiş olmalıdır;
// aksi halde ilk aggregate kolon varsayılan "*" listesinin yerini alır.
func (p *Plan) Apply(qb *database.QueryBuilder) *database.QueryBuilder {
	if p == nil {
		return qb
	}
	for _, j := range p.Joins {
		qb.Join(j)
	}
	if len(p.Filters) > 0 {
		qb.WhereFilters(p.Filters...)
	}
	for _, c := range p.Columns {
		qb.SelectSub(c.Query, c.Name)
	}
	return qb
}

// Shape, adı verilen aggregate kolonun decode şablonunu döndürür.
func (p *Plan) Shape(name string) *Shape {
	if p == nil {
		return nil
	}
	for _, c := range p.Columns {
		if c.Name == name {
			return c.Shape
		}
	}
	return nil
}

// ManyNames, aggregate kolon adlarını sırasıyla döndürür.
func (p *Plan) ManyNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}

// Compiler, ilişki kümesini Plan'a derler.
type Compiler struct {
	grammar database.Grammar
}

// NewCompiler, verilen grammar ile bir Compiler oluşturur (nil ise MySQL).
func NewCompiler(grammar database.Grammar) *Compiler {
	if grammar == nil {
		grammar = database.NewMySQLGrammar()
	}
	return &Compiler{grammar: grammar}
}

// Compile, kümedeki kök ilişkileri derler.
//
// Örnek:
//
//	plan, err := relation.NewCompiler(nil).Compile(set)
//	qb := database.NewBuilder(adapter, nil).Table("users", "u").SelectFields("u", fields...)
//	plan.Apply(qb)
func (c *Compiler) Compile(set *Set) (*Plan, error) {
	plan := &Plan{}
	for _, root := range set.Roots() {
		if err := c.compileOuter(set, root, plan); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (c *Compiler) compileOuter(set *Set, idx int, plan *Plan) error {
	r := set.Get(idx)
	if strings.TrimSpace(r.Table) == "" {
		return fmt.Errorf("%w (relation #%d)", ErrNoRelTable, idx)
	}

	if r.Kind == Many {
		col, ok, err := c.aggregate(set, idx)
		if err != nil {
			return err
		}
		if ok {
			plan.Columns = append(plan.Columns, col)
		}
		return nil
	}

	plan.Joins = append(plan.Joins, database.JoinClause{
		Type:   r.Type,
		Table:  r.Table,
		Alias:  r.Alias,
		On:     r.On,
		Fields: r.Fields,
	})
	plan.Fields = append(plan.Fields, r.Fields...)
	plan.Filters = append(plan.Filters, r.Filters...)

	for _, child := range set.Children(idx) {
		if err := c.compileOuter(set, child, plan); err != nil {
			return err
		}
	}
	return nil
}

// fieldExpr, aggregate içine giren tek bir ifadedir.
type fieldExpr struct {
	name   string
	expr   string
	params []any
}

// aggregate, bir MANY ilişkiyi correlated subquery'ye derler. İkinci dönüş
// değeri false ise ilişkinin katkısı yoktur.
func (c *Compiler) aggregate(set *Set, idx int) (Column, bool, error) {
	r := set.Get(idx)
	if r.Name == "" {
		return Column{}, false, fmt.Errorf("%w (table %q)", ErrNoRelName, r.Table)
	}
	if len(r.Fields) == 0 && len(set.Children(idx)) == 0 {
		return Column{}, false, nil
	}

	sub := database.NewBuilder(nil, c.grammar).Table(r.Table, r.Alias)

	for _, on := range r.On {
		cond, err := c.condition(on)
		if err != nil {
			return Column{}, false, fmt.Errorf("relation %q: %w", r.Name, err)
		}
		sub.WhereRaw(cond)
	}
	if len(r.Filters) > 0 {
		sub.WhereFilters(r.Filters...)
	}

	shape := &Shape{Name: r.Name, Scalar: r.Scalar, Types: map[string]database.FieldType{}}
	var items []fieldExpr
	if err := c.collect(set, idx, sub, shape, &items); err != nil {
		return Column{}, false, err
	}
	if len(items) == 0 {
		return Column{}, false, nil
	}
	if r.Scalar && (len(items) != 1 || len(shape.Nested) > 0) {
		return Column{}, false, fmt.Errorf("%w (relation %q)", ErrScalarFields, r.Name)
	}

	order, err := c.orderSQL(r.Order)
	if err != nil {
		return Column{}, false, fmt.Errorf("relation %q: %w", r.Name, err)
	}

	var row string
	var params []any
	if r.Scalar {
		row = items[0].expr
		params = items[0].params
	} else {
		tagged := make([]string, len(items))
		for i, item := range items {
			tagged[i] = "CONCAT(" + c.grammar.Literal(item.name+TagSeparator) + ", " + item.expr + ")"
			params = append(params, item.params...)
		}
		row = "CONCAT_WS(" + c.grammar.Literal(FieldSeparator) + ", " + strings.Join(tagged, ", ") + ")"
	}

	expr := "GROUP_CONCAT(" + row + order + " SEPARATOR " + c.grammar.Literal(RowSeparator) + ")"
	sub.SelectRaw(expr, params...)

	return Column{Name: r.Name, Query: sub, Shape: shape}, true, nil
}

// collect, bir MANY düğümünün (ve ONE çocuklarının) alanlarını toplar.
// ONE çocuklar subquery'ye JOIN edilir, MANY çocuklar iç içe subquery olur.
func (c *Compiler) collect(set *Set, idx int, sub *database.QueryBuilder, shape *Shape, items *[]fieldExpr) error {
	r := set.Get(idx)

	for _, f := range r.Fields {
		expr, err := c.fieldSQL(r.Ref(), f)
		if err != nil {
			return fmt.Errorf("relation %q: %w", r.Name, err)
		}
		*items = append(*items, fieldExpr{name: f.Name, expr: expr})
		shape.Types[f.Name] = f.Type
	}

	for _, child := range set.Children(idx) {
		cr := set.Get(child)
		if strings.TrimSpace(cr.Table) == "" {
			return fmt.Errorf("%w (relation #%d)", ErrNoRelTable, child)
		}

		if cr.Kind == One {
			sub.Join(database.JoinClause{Type: cr.Type, Table: cr.Table, Alias: cr.Alias, On: cr.On})
			if len(cr.Filters) > 0 {
				sub.WhereFilters(cr.Filters...)
			}
			if err := c.collect(set, child, sub, shape, items); err != nil {
				return err
			}
			continue
		}

		col, ok, err := c.aggregate(set, child)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		nested, params, err := col.Query.ToSQL()
		if err != nil {
			return fmt.Errorf("relation %q: %w", cr.Name, err)
		}
		*items = append(*items, fieldExpr{name: cr.Name, expr: "HEX((" + nested + "))", params: params})
		shape.Nested = append(shape.Nested, col.Shape)
	}

	return nil
}

func (c *Compiler) fieldSQL(prefix string, f database.Field) (string, error) {
	if f.Raw {
		return f.Source, nil
	}
	column := f.Column()
	if prefix != "" && !strings.Contains(column, ".") {
		column = prefix + "." + column
	}
	return c.grammar.Wrap(column)
}

// condition, dış → iç ON koşulunu correlated WHERE parçasına çevirir.
func (c *Compiler) condition(on database.On) (string, error) {
	if on.Raw != "" {
		return on.Raw, nil
	}
	left, err := c.grammar.Wrap(on.Left)
	if err != nil {
		return "", err
	}
	right, err := c.grammar.Wrap(on.Right)
	if err != nil {
		return "", err
	}
	op := strings.TrimSpace(on.Operator)
	if !conditionOperators[op] {
		op = "="
	}
	return left + " " + op + " " + right, nil
}

func (c *Compiler) orderSQL(orders []database.OrderClause) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		if o.Raw != "" {
			parts[i] = o.Raw
			continue
		}
		col, err := c.grammar.Wrap(o.Column)
		if err != nil {
			return "", err
		}
		dir := database.OrderAsc
		if o.Direction == database.OrderDesc {
			dir = database.OrderDesc
		}
		parts[i] = col + " " + string(dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}
