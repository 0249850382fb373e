// -----------------------------------------------------------------------------
// Relationship Arena
// -----------------------------------------------------------------------------
// Bir modelin ilişkileri (join'leri) bir ağaç olarak tutulur. Düğümler Set
// içinde index ile adreslenir; her düğüm parent index'ini ve çocuklarının
// index listesini bilir. Pointer ile karşılıklı referans yoktur.
//
// ONE  : tekil ilişki, dış sorguya inline JOIN olarak eklenir.
// MANY : koleksiyon ilişkisi, dış sorguya tek bir aggregate kolon olarak
//        eklenen correlated subquery'ye derlenir.
//
// Bir MANY'nin çocuğu olan ilişki hiçbir zaman kök (top-level) sayılmaz;
// Roots sadece parent'ı olmayan düğümleri döndürür.
// -----------------------------------------------------------------------------

package relation

import (
	"errors"
	"fmt"

	"github.com/biyonik/datamapper/pkg/database"
)

var (
	ErrInvalidParent = errors.New("relation: invalid parent index")
	ErrNoRelTable    = errors.New("relation: table name is required")
	ErrNoRelName     = errors.New("relation: MANY relation needs an output name")
	ErrScalarFields  = errors.New("relation: scalar relation must select exactly one field")
)

// Kind, ilişkinin kardinalitesidir.
type Kind int

const (
	One Kind = iota
	Many
)

func (k Kind) String() string {
	if k == Many {
		return "MANY"
	}
	return "ONE"
}

// ParseKind, "one"/"many" metnini Kind'a çevirir. Bilinmeyen değerler ONE olur.
func ParseKind(value string) Kind {
	switch value {
	case "many", "MANY", "Many", "hasMany":
		return Many
	default:
		return One
	}
}

// Relation, tek bir ilişki tanımıdır.
//
// Alanlar:
//   - Name: MANY için dış sorgudaki aggregate kolonun (ve kaydın) çıktı adı
//   - Kind: ONE veya MANY
//   - Type: JOIN tipi (ONE ilişkiler ve MANY içindeki ONE çocuklar için)
//   - Table, Alias: Hedef tablo ve alias'ı
//   - On: Dış → iç koşullar. ONE'da JOIN ON, MANY'de correlated WHERE olur
//   - Fields: Seçilen alanlar (Source boşsa naming.ToStorage(Name))
//   - Filters: MANY subquery'sine (veya ONE için dış sorguya) eklenen filtreler
//   - Order: GROUP_CONCAT içindeki satır sırası (sadece MANY)
//   - Scalar: MANY tek bir alanı etiketsiz düz liste olarak toplar
//
// Örnek:
//
//	Relation{
//	    Name:  "roles",
//	    Kind:  Many,
//	    Table: "user_roles",
//	    Alias: "ur",
//	    On:    []database.On{{Left: "u.id", Right: "ur.user_id"}},
//	}
type Relation struct {
	Name    string
	Kind    Kind
	Type    database.JoinType
	Table   string
	Alias   string
	On      []database.On
	Fields  []database.Field
	Filters []database.Filter
	Order   []database.OrderClause
	Scalar  bool
}

// Ref, ilişkinin SQL içinde referans alınan adıdır (alias veya tablo).
func (r Relation) Ref() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Table
}

type node struct {
	rel      Relation
	parent   int
	children []int
}

// Set, ilişki ağacının arena'sıdır. Sıfır değeri kullanıma hazırdır.
type Set struct {
	nodes []node
}

// NewSet, boş bir ilişki kümesi oluşturur.
func NewSet() *Set {
	return &Set{}
}

// Add, bir kök ilişki ekler ve index'ini döndürür.
func (s *Set) Add(r Relation) int {
	s.nodes = append(s.nodes, node{rel: r, parent: -1})
	return len(s.nodes) - 1
}

// AddChild, parent index'inin altına bir çocuk ilişki ekler.
//
// Örnek:
//
//	set := relation.NewSet()
//	pivot := set.Add(relation.Relation{Name: "roles", Kind: relation.Many, ...})
//	set.AddChild(pivot, relation.Relation{Kind: relation.One, Table: "roles", ...})
func (s *Set) AddChild(parent int, r Relation) (int, error) {
	if parent < 0 || parent >= len(s.nodes) {
		return -1, fmt.Errorf("%w: %d", ErrInvalidParent, parent)
	}
	s.nodes = append(s.nodes, node{rel: r, parent: parent})
	idx := len(s.nodes) - 1
	s.nodes[parent].children = append(s.nodes[parent].children, idx)
	return idx, nil
}

// Len, kümedeki ilişki sayısı.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.nodes)
}

// Get, index'teki ilişkiyi döndürür.
func (s *Set) Get(idx int) Relation {
	return s.nodes[idx].rel
}

// Parent, düğümün parent index'ini döndürür; kök için -1.
func (s *Set) Parent(idx int) int {
	return s.nodes[idx].parent
}

// Children, düğümün çocuk index'lerini ekleme sırasıyla döndürür.
func (s *Set) Children(idx int) []int {
	return s.nodes[idx].children
}

// Roots, parent'ı olmayan düğümleri ekleme sırasıyla döndürür.
func (s *Set) Roots() []int {
	if s == nil {
		return nil
	}
	var roots []int
	for i, n := range s.nodes {
		if n.parent < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}
