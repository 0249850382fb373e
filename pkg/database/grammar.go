package database

// -----------------------------------------------------------------------------
// Grammar Interface
// -----------------------------------------------------------------------------
// Grammar, QueryBuilder state'ini tek bir parametreli SQL statement'a çeviren
// lehçe katmanıdır. Builder clause'ları biriktirir, Grammar sadece okur;
// bu yüzden aynı builder istenildiği kadar tekrar render edilebilir.
// -----------------------------------------------------------------------------

// Grammar, SQL lehçesine özgü sorgu üretimini tanımlar.
//
// Farklı veritabanları için farklı implementasyonlar:
// - MySQLGrammar: MySQL/MariaDB için
type Grammar interface {
	// Wrap, identifier'ları (kolon/tablo adları) veritabanı lehçesine göre sarmalar.
	// Identifier önce temizlenir; temizlikten sonra boş kalırsa hata döner.
	//
	// Örnek (MySQL):
	//   Wrap("u.user_name") → "`u`.`user_name`"
	//   Wrap("u.*")         → "`u`.*"
	Wrap(value string) (string, error)

	// WrapTable, tablo adını ve opsiyonel alias'ı sarmalar.
	//
	// Örnek (MySQL):
	//   WrapTable("users", "u") → "`users` AS `u`"
	WrapTable(table, alias string) (string, error)

	// Literal, bir metni SQL string literal'ine çevirir ('...').
	// Sadece iç sabitler (ayraçlar, alan etiketleri) için kullanılır;
	// kullanıcı değerleri her zaman placeholder ile bağlanır.
	Literal(value string) string

	// CompileSelect, SELECT sorgusu üretir.
	//
	// Döndürür:
	//   - string: SQL sorgusu
	//   - []any: Prepared statement parametreleri (SQL'deki "?" sırasıyla)
	//   - error: Sorgu oluşturma hatası
	CompileSelect(qb *QueryBuilder) (string, []any, error)

	// CompileInsert, INSERT veya REPLACE sorgusu üretir.
	CompileInsert(qb *QueryBuilder) (string, []any, error)

	// CompileUpdate, UPDATE sorgusu üretir.
	CompileUpdate(qb *QueryBuilder) (string, []any, error)

	// CompileDelete, DELETE sorgusu üretir.
	CompileDelete(qb *QueryBuilder) (string, []any, error)

	// CompileCreate, CREATE TABLE sorgusu üretir.
	CompileCreate(qb *QueryBuilder) (string, []any, error)

	// CompileAlter, tek bir ALTER TABLE sorgusu üretir.
	CompileAlter(qb *QueryBuilder) (string, []any, error)
}
