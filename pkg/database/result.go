package database

import (
	"database/sql"
)

// -----------------------------------------------------------------------------
// RESULT HELPERS
// -----------------------------------------------------------------------------
// sql.Rows'ı kolon adı → değer biçiminde RawRow listesine çevirir.
// MySQL driver'ı metin kolonlarını (GROUP_CONCAT çıktısı dahil) []byte
// olarak döndürür; bunlar string'e çevrilir. sql.RawBytes bir sonraki
// Scan'de üzerine yazıldığı için kopyalamak zorunludur.
// -----------------------------------------------------------------------------

// rowsToMaps: sql.Rows'ı []RawRow biçimine dönüştürür.
func rowsToMaps(rows *sql.Rows) ([]RawRow, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := make([]RawRow, 0)

	for rows.Next() {
		columns := make([]any, len(cols))
		columnPointers := make([]any, len(cols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}

		if err := rows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		row := make(RawRow, len(cols))
		for i, colName := range cols {
			row[colName] = normalizeValue(columns[i])
		}

		res = append(res, row)
	}

	return res, rows.Err()
}

func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
