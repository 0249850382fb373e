// -----------------------------------------------------------------------------
// Schema Loader
// -----------------------------------------------------------------------------
// Model tanımları YAML dosyalarında tutulabilir. Bir dosya tek bir modeli
// (tablo + alanlar + ilişki ağacı) tarif eder ve storage.Model'e çevrilir.
//
//	table: users
//	alias: u
//	blacklist: [password]
//	timestamps: {created: createdAt, deleted: deletedAt}
//	fields:
//	  - {name: id, type: int}
//	  - userName
//	relations:
//	  - name: roles
//	    kind: many
//	    table: user_roles
//	    alias: ur
//	    on: ["u.id = ur.user_id"]
//	    relations:
//	      - {kind: one, type: inner, table: roles, alias: r, on: ["ur.role_id = r.id"], fields: [id, name]}
//
// Bilinmeyen anahtarlar, tipler ve ilişki türleri hata üretir.
// -----------------------------------------------------------------------------

package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/biyonik/datamapper/pkg/database"
	"github.com/biyonik/datamapper/pkg/relation"
	"github.com/biyonik/datamapper/pkg/storage"
)

// ErrInvalidSchema, YAML model tanımı geçersiz olduğunda döner.
var ErrInvalidSchema = errors.New("schema: invalid model definition")

// Document, bir YAML model dosyasının ham halidir.
type Document struct {
	Table            string        `yaml:"table"`
	Alias            string        `yaml:"alias"`
	PrimaryKey       string        `yaml:"primaryKey"`
	IDStrategy       string        `yaml:"idStrategy"`
	Fields           []FieldDef    `yaml:"fields"`
	Relations        []RelationDef `yaml:"relations"`
	Blacklist        []string      `yaml:"blacklist"`
	Timestamps       Timestamps    `yaml:"timestamps"`
	ScopeSoftDeleted bool          `yaml:"scopeSoftDeleted"`
	OrderBy          []OrderDef    `yaml:"orderBy"`
	Searchable       []string      `yaml:"searchable"`
}

// Timestamps, zaman damgası alanlarının çıktı adlarıdır.
type Timestamps struct {
	Created string `yaml:"created"`
	Updated string `yaml:"updated"`
	Deleted string `yaml:"deleted"`
}

// FieldDef, bir alan tanımıdır. Kısa yazımda sadece ad verilebilir:
// "- userName".
type FieldDef struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Raw    bool   `yaml:"raw"`
	Hidden bool   `yaml:"hidden"`
	Type   string `yaml:"type"`
}

// UnmarshalYAML, scalar düğümü alan adı olarak kabul eder.
func (f *FieldDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Name = node.Value
		return nil
	}
	type plain FieldDef
	return node.Decode((*plain)(f))
}

// OnDef, bir join koşuludur. Kısa yazım: "u.id = ur.user_id".
// Üç parçaya ayrılamayan metin ham koşul olarak kullanılır.
type OnDef struct {
	Left     string `yaml:"left"`
	Operator string `yaml:"operator"`
	Right    string `yaml:"right"`
	Raw      string `yaml:"raw"`
}

// UnmarshalYAML, "sol op sağ" kısa yazımını çözer.
func (o *OnDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		type plain OnDef
		return node.Decode((*plain)(o))
	}

	parts := strings.Fields(node.Value)
	if len(parts) == 3 {
		o.Left, o.Operator, o.Right = parts[0], parts[1], parts[2]
		return nil
	}
	o.Raw = node.Value
	return nil
}

// OrderDef, bir sıralama tanımıdır. Kısa yazım: "r.id" veya "r.id desc".
type OrderDef struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction"`
	Raw       string `yaml:"raw"`
}

// UnmarshalYAML, "kolon [yön]" kısa yazımını çözer.
func (o *OrderDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		type plain OrderDef
		return node.Decode((*plain)(o))
	}

	parts := strings.Fields(node.Value)
	switch len(parts) {
	case 1:
		o.Column = parts[0]
	case 2:
		o.Column, o.Direction = parts[0], parts[1]
	default:
		return fmt.Errorf("%w: order %q", ErrInvalidSchema, node.Value)
	}
	return nil
}

// RelationDef, ilişki ağacındaki bir düğümdür.
type RelationDef struct {
	Name      string         `yaml:"name"`
	Kind      string         `yaml:"kind"`
	Type      string         `yaml:"type"`
	Table     string         `yaml:"table"`
	Alias     string         `yaml:"alias"`
	On        []OnDef        `yaml:"on"`
	Fields    []FieldDef     `yaml:"fields"`
	Filters   []string       `yaml:"filters"`
	Where     map[string]any `yaml:"where"`
	Order     []OrderDef     `yaml:"order"`
	Scalar    bool           `yaml:"scalar"`
	Relations []RelationDef  `yaml:"relations"`
}

// Parse, YAML içeriğini storage.Model'e çevirir.
func Parse(data []byte) (storage.Model, error) {
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return storage.Model{}, err
	}
	return doc.Model()
}

// Decode, YAML içeriğini Document'e çözer. Bilinmeyen anahtarlar hatadır.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidSchema)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &doc, nil
}

// Load, tek bir YAML dosyasını okur.
//
// Örnek:
//
//	model, err := schema.Load("schemas/users.yaml")
//	if err != nil {
//	    return err
//	}
//	store := storage.New(adapter, model)
func Load(path string) (storage.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return storage.Model{}, fmt.Errorf("schema: %w", err)
	}
	model, err := Parse(data)
	if err != nil {
		return storage.Model{}, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}

// LoadDir, dizindeki tüm .yaml/.yml dosyalarını tablo adına göre yükler.
func LoadDir(dir string) (map[string]storage.Model, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	models := make(map[string]storage.Model, len(files))
	for _, file := range files {
		model, err := Load(file)
		if err != nil {
			return nil, err
		}
		if _, dup := models[model.Table]; dup {
			return nil, fmt.Errorf("%w: table %q defined twice (%s)", ErrInvalidSchema, model.Table, file)
		}
		models[model.Table] = model
	}
	return models, nil
}

// Model, Document'i doğrular ve storage.Model'e çevirir.
func (d *Document) Model() (storage.Model, error) {
	if strings.TrimSpace(d.Table) == "" {
		return storage.Model{}, fmt.Errorf("%w: table is required", ErrInvalidSchema)
	}

	model := storage.Model{
		Table:            d.Table,
		Alias:            d.Alias,
		PrimaryKey:       d.PrimaryKey,
		Blacklist:        d.Blacklist,
		CreatedField:     d.Timestamps.Created,
		UpdatedField:     d.Timestamps.Updated,
		DeletedField:     d.Timestamps.Deleted,
		ScopeSoftDeleted: d.ScopeSoftDeleted,
		Searchable:       d.Searchable,
	}

	switch strings.ToLower(d.IDStrategy) {
	case "", string(storage.IDAuto):
		model.IDStrategy = storage.IDAuto
	case string(storage.IDUUID):
		model.IDStrategy = storage.IDUUID
	default:
		return storage.Model{}, fmt.Errorf("%w: idStrategy %q", ErrInvalidSchema, d.IDStrategy)
	}

	fields, err := convertFields(d.Fields)
	if err != nil {
		return storage.Model{}, err
	}
	model.Fields = fields

	if model.OrderBy, err = convertOrder(d.OrderBy); err != nil {
		return storage.Model{}, err
	}

	if len(d.Relations) > 0 {
		set := relation.NewSet()
		for _, def := range d.Relations {
			if err := addRelation(set, -1, def); err != nil {
				return storage.Model{}, err
			}
		}
		model.Relations = set
	}

	return model, nil
}

// addRelation, tanımı parent altına ekler; parent -1 ise kök olarak.
func addRelation(set *relation.Set, parent int, def RelationDef) error {
	rel, err := convertRelation(def)
	if err != nil {
		return err
	}

	idx := parent
	if parent < 0 {
		idx = set.Add(rel)
	} else if idx, err = set.AddChild(parent, rel); err != nil {
		return err
	}

	for _, child := range def.Relations {
		if err := addRelation(set, idx, child); err != nil {
			return err
		}
	}
	return nil
}

func convertRelation(def RelationDef) (relation.Relation, error) {
	if strings.TrimSpace(def.Table) == "" {
		return relation.Relation{}, fmt.Errorf("%w: relation %q has no table", ErrInvalidSchema, def.Name)
	}

	rel := relation.Relation{
		Name:   def.Name,
		Table:  def.Table,
		Alias:  def.Alias,
		Scalar: def.Scalar,
	}

	switch strings.ToLower(def.Kind) {
	case "", "one":
		rel.Kind = relation.One
	case "many":
		rel.Kind = relation.Many
	default:
		return relation.Relation{}, fmt.Errorf("%w: relation %q kind %q", ErrInvalidSchema, def.Name, def.Kind)
	}

	if def.Type != "" {
		rel.Type = database.ParseJoinType(def.Type)
		if !strings.EqualFold(string(rel.Type), def.Type) {
			return relation.Relation{}, fmt.Errorf("%w: relation %q join type %q", ErrInvalidSchema, def.Name, def.Type)
		}
	}

	for _, on := range def.On {
		rel.On = append(rel.On, database.On{Left: on.Left, Operator: on.Operator, Right: on.Right, Raw: on.Raw})
	}

	fields, err := convertFields(def.Fields)
	if err != nil {
		return relation.Relation{}, fmt.Errorf("relation %q: %w", def.Name, err)
	}
	rel.Fields = fields

	for _, f := range def.Filters {
		rel.Filters = append(rel.Filters, database.Raw(f))
	}
	rel.Filters = append(rel.Filters, database.FromMap(def.Where)...)

	if rel.Order, err = convertOrder(def.Order); err != nil {
		return relation.Relation{}, err
	}
	return rel, nil
}

var fieldTypes = map[string]database.FieldType{
	"":       database.TypeAny,
	"any":    database.TypeAny,
	"string": database.TypeString,
	"int":    database.TypeInt,
	"float":  database.TypeFloat,
	"bool":   database.TypeBool,
	"time":   database.TypeTime,
	"json":   database.TypeJSON,
}

func convertFields(defs []FieldDef) ([]database.Field, error) {
	fields := make([]database.Field, 0, len(defs))
	for _, def := range defs {
		if strings.TrimSpace(def.Name) == "" {
			return nil, fmt.Errorf("%w: field without name", ErrInvalidSchema)
		}
		typ, ok := fieldTypes[strings.ToLower(def.Type)]
		if !ok {
			return nil, fmt.Errorf("%w: field %q type %q", ErrInvalidSchema, def.Name, def.Type)
		}
		if def.Raw && def.Source == "" {
			return nil, fmt.Errorf("%w: raw field %q needs a source", ErrInvalidSchema, def.Name)
		}
		fields = append(fields, database.Field{
			Name:   def.Name,
			Source: def.Source,
			Raw:    def.Raw,
			Hidden: def.Hidden,
			Type:   typ,
		})
	}
	return fields, nil
}

func convertOrder(defs []OrderDef) ([]database.OrderClause, error) {
	var orders []database.OrderClause
	for _, def := range defs {
		switch strings.ToUpper(def.Direction) {
		case "", "ASC", "DESC":
		default:
			return nil, fmt.Errorf("%w: order direction %q", ErrInvalidSchema, def.Direction)
		}
		orders = append(orders, database.OrderClause{
			Column:    def.Column,
			Direction: database.ParseDirection(def.Direction),
			Raw:       def.Raw,
		})
	}
	return orders, nil
}
