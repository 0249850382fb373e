package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNoTable, tablo adı verilmeden render edilen builder'lar için döner.
	ErrNoTable = errors.New("database: table is not set")

	// ErrNoColumns, yazılacak kolonu olmayan INSERT/UPDATE/ALTER için döner.
	ErrNoColumns = errors.New("database: no columns to write")

	// ErrInvalidIdentifier, temizlendikten sonra boş kalan identifier'lar için döner.
	ErrInvalidIdentifier = errors.New("database: invalid identifier")

	// ErrNoAdapter, adapter'sız bir builder çalıştırılmak istendiğinde döner.
	ErrNoAdapter = errors.New("database: builder has no adapter")

	// ErrNestedTransaction, transaction içinden yeni transaction açılmak istendiğinde döner.
	ErrNestedTransaction = errors.New("database: nested transactions are not supported")
)

// mysqlDuplicateEntry, MySQL'in "Duplicate entry ... for key" hata kodudur.
const mysqlDuplicateEntry = 1062

// IsDuplicateEntry, hatanın MySQL unique key ihlali olup olmadığını söyler.
func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}
