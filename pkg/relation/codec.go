package relation

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// Aggregation Codec
// -----------------------------------------------------------------------------
// MANY ilişkilerin subquery'si, her çocuk satırı tek bir metin kolonunda
// toplar:
//
//	id-:-1-::-name-:-admin-:::-id-:-2-::-name-:-editor
//
// Ayraçlar sabittir ve saklanmış/cache'lenmiş sonuçlarla uyumluluk için
// birebir korunmalıdır.
// -----------------------------------------------------------------------------

const (
	// TagSeparator, alan adı ile değeri ayırır.
	TagSeparator = "-:-"
	// FieldSeparator, bir satırdaki alanları ayırır.
	FieldSeparator = "-::-"
	// RowSeparator, satırları ayırır.
	RowSeparator = "-:::-"
)

// Decode, aggregate metnini kayıt listesine çevirir.
//
// Boş metin boş liste döndürür (nil değil, hata değil). "ad-:-değer"
// biçimindeki token'lar satır başına tek bir map[string]any'de toplanır;
// ayracı olmayan token'lar çıplak değer (string) olarak listeye eklenir.
// Boş token'lar atlanır.
//
// Örnek:
//
//	Decode("id-:-1-::-name-:-admin-:::-id-:-2-::-name-:-editor")
//	// → [{"id": "1", "name": "admin"}, {"id": "2", "name": "editor"}]
//
//	Decode("a-:::-b")
//	// → ["a", "b"]
func Decode(text string) []any {
	out := []any{}
	if text == "" {
		return out
	}

	for _, row := range strings.Split(text, RowSeparator) {
		var record map[string]any

		for _, token := range strings.Split(row, FieldSeparator) {
			if token == "" {
				continue
			}
			key, value, ok := strings.Cut(token, TagSeparator)
			if !ok {
				out = append(out, token)
				continue
			}
			if record == nil {
				record = make(map[string]any)
			}
			record[key] = value
		}

		if record != nil {
			out = append(out, record)
		}
	}

	return out
}

// DecodeValue, driver'dan gelen ham değeri (nil, string, []byte) decode eder.
func DecodeValue(value any) []any {
	switch v := value.(type) {
	case nil:
		return []any{}
	case string:
		return Decode(v)
	case []byte:
		return Decode(string(v))
	default:
		return Decode(fmt.Sprint(v))
	}
}

// Encode, kayıt listesini aggregate metnine çevirir. SQL tarafındaki
// GROUP_CONCAT(CONCAT_WS(...)) çıktısının uygulama tarafı karşılığıdır:
// alanlar ada göre sıralanır, nil değerler atlanır (CONCAT_WS'in NULL
// davranışı gibi).
func Encode(rows []map[string]any) string {
	encoded := make([]string, 0, len(rows))

	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		tokens := make([]string, 0, len(keys))
		for _, k := range keys {
			if row[k] == nil {
				continue
			}
			tokens = append(tokens, k+TagSeparator+fmt.Sprint(row[k]))
		}
		encoded = append(encoded, strings.Join(tokens, FieldSeparator))
	}

	return strings.Join(encoded, RowSeparator)
}

// EncodeValues, etiketsiz (scalar) bir değer listesini encode eder.
func EncodeValues(values []any) string {
	encoded := make([]string, len(values))
	for i, v := range values {
		encoded[i] = fmt.Sprint(v)
	}
	return strings.Join(encoded, RowSeparator)
}

// unhex, iç içe MANY token'ının HEX(...) değerini çözer. Geçerli hex
// değilse metin olduğu gibi döner.
func unhex(value any) string {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case nil:
		return ""
	default:
		text = fmt.Sprint(v)
	}

	decoded, err := hex.DecodeString(text)
	if err != nil {
		return text
	}
	return string(decoded)
}
