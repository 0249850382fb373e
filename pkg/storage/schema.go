package storage

import (
	"context"

	"github.com/biyonik/datamapper/pkg/database"
)

// TableBuilder, modelin alan tiplerinden CREATE TABLE IF NOT EXISTS
// statement'ı kuran builder'ı döndürür. Raw alanlar kolon üretmez;
// zaman damgası, JSON ve tipsiz alanlar NULL kabul eder.
//
// Tip eşlemesi:
//   - int → BIGINT, float → DOUBLE, bool → TINYINT(1)
//   - string → VARCHAR(255), time → TIMESTAMP, json → JSON, tipsiz → TEXT
func (s *Storage) TableBuilder() *database.QueryBuilder {
	if s.registry == nil {
		return s.builder().Table(s.model.Table).CreateTable(nil)
	}
	pk := s.pkColumn()

	return s.builder().Table(s.model.Table).CreateTable(func(b *database.Blueprint) {
		b.IfNotExists()

		for _, f := range s.model.Fields {
			if f.Raw {
				continue
			}
			col := f.Column()

			if col == pk {
				if s.model.IDStrategy == IDUUID {
					b.UUID(col)
				} else {
					b.Add(database.Column{
						Name:          col,
						Type:          database.ColumnUnsignedBigInt,
						AutoIncrement: true,
						Primary:       true,
					})
				}
				continue
			}

			switch f.Type {
			case database.TypeInt:
				b.BigInteger(col)
			case database.TypeFloat:
				b.Double(col)
			case database.TypeBool:
				b.Boolean(col).Default(0)
			case database.TypeString:
				b.String(col, 255)
			case database.TypeTime:
				b.Timestamp(col).Nullable()
			case database.TypeJSON:
				b.JSON(col).Nullable()
			default:
				b.Text(col).Nullable()
			}
		}

		if s.model.DeletedField != "" {
			col, _ := s.registry.Column(s.model.DeletedField)
			b.Index(col)
		}
	})
}

// CreateTable, TableBuilder'ın ürettiği statement'ı çalıştırır.
func (s *Storage) CreateTable(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.exec(ctx, s.TableBuilder()); err != nil {
		return s.fail("create table", err)
	}
	return nil
}
