// -----------------------------------------------------------------------------
// Naming Translator
// -----------------------------------------------------------------------------
// Bu paket, alan adlarını iki isimlendirme kuralı arasında çevirir:
//
//   - Logical (dış dünya): camelCase   → "userName", "createdAt"
//   - Storage (veritabanı): snake_case → "user_name", "created_at"
//
// Ayrıca SQL metnine gömülecek her tablo/kolon adını temizleyen Sanitize
// fonksiyonunu sağlar. Değerler asla SQL'e gömülmez (sadece placeholder),
// ama identifier'lar gömülür; bu yüzden izin verilen karakter seti dardır.
//
// Her iki çeviri de idempotenttir:
//
//	ToStorage(ToStorage(x)) == ToStorage(x)
//	ToLogical(ToLogical(x)) == ToLogical(x)
// -----------------------------------------------------------------------------

package naming

import "strings"

// ToStorage, camelCase bir identifier'ı snake_case'e çevirir.
//
// İlk karakter hariç her büyük harf "_" + küçük harf olur. Noktayla ayrılmış
// her parça ayrı çevrilir, böylece alias önekleri korunur.
//
// Örnek:
//
//	ToStorage("userName")   → "user_name"
//	ToStorage("u.createdAt") → "u.created_at"
//	ToStorage("user_name")  → "user_name" (no-op)
func ToStorage(name string) string {
	if !strings.Contains(name, ".") {
		return segmentToStorage(name)
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = segmentToStorage(part)
	}
	return strings.Join(parts, ".")
}

func segmentToStorage(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUpper(c) {
			if i > 0 && s[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteByte(c + ('a' - 'A'))
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

// ToLogical, snake_case bir identifier'ı camelCase'e çevirir.
//
// "_" ve ardından gelen harf, o harfin büyüğüne dönüşür. Harf olmayan bir
// karakterden önce gelen "_" olduğu gibi kalır ("line_2" → "line_2").
//
// Örnek:
//
//	ToLogical("user_name")    → "userName"
//	ToLogical("u.created_at") → "u.createdAt"
//	ToLogical("userName")     → "userName" (no-op)
func ToLogical(name string) string {
	if !strings.Contains(name, ".") {
		return segmentToLogical(name)
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = segmentToLogical(part)
	}
	return strings.Join(parts, ".")
}

func segmentToLogical(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' && i > 0 && i+1 < len(s) && isLower(s[i+1]) {
			b.WriteByte(s[i+1] - ('a' - 'A'))
			i++
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Sanitize, [A-Za-z0-9_.] dışındaki tüm karakterleri siler.
//
// GÜVENLİK KRİTİK:
// SQL metnine interpolasyonla giren her tablo ve kolon adı bu fonksiyondan
// geçer. Hata döndürmez; zararlı karakterler sessizce atılır.
//
// Örnek:
//
//	Sanitize("id; DROP TABLE users--") → "idDROPTABLEusers"
//	Sanitize("users.id")               → "users.id"
func Sanitize(name string) string {
	clean := true
	for i := 0; i < len(name); i++ {
		if !isIdentByte(name[i]) {
			clean = false
			break
		}
	}
	if clean {
		return name
	}

	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		if isIdentByte(name[i]) {
			b.WriteByte(name[i])
		}
	}
	return b.String()
}

// IsIdentifier, verilen metnin temizlemeye gerek duymayan düz bir
// identifier (tablo, kolon veya alias.kolon) olup olmadığını söyler.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isIdentByte(name[i]) {
			return false
		}
	}
	return true
}

func isIdentByte(c byte) bool {
	return isUpper(c) || isLower(c) || (c >= '0' && c <= '9') || c == '_' || c == '.'
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
