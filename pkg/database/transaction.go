// pkg/database/transaction.go
//
// Bir transaction, bir grup veritabanı işleminin ya tamamen başarılı
// olmasını ya da hiçbirinin uygulanmamış kabul edilmesini sağlar.
//
// Transaction yapısı, Go'nun sql.Tx tipini sarmalar ve TxAdapter'ı
// uygular; Storage Orchestrator aynı kodla hem havuz hem de transaction
// üzerinde çalışır.
//
// Örnek kullanım:
//
//   tx, _ := BeginTransaction(ctx, db, grammar, logger)
//   qb := tx.NewBuilder() // builder transaction içinde çalışır
//   qb.Table("users").Where("id", "=", 1).Update(values).Exec(ctx)
//   tx.Commit()
//
// Eğer işlem sırasında hata olursa:
//   tx.Rollback()

package database

import (
	"context"
	"database/sql"
	"io"
	"log"
)

// Transaction, veritabanı transaction yapısını temsil eder.
type Transaction struct {
	*SQLAdapter
	Tx     *sql.Tx
	logger *log.Logger
}

// BeginTransaction, yeni bir veritabanı transaction'ı başlatır.
//
// Dönen Transaction mutlaka Commit() veya Rollback() ile sonlandırılmalıdır.
func BeginTransaction(ctx context.Context, db *sql.DB, grammar Grammar, logger *log.Logger) (*Transaction, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if grammar == nil {
		grammar = NewMySQLGrammar()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	logger.Println("🔄 Transaction başladı.")

	return &Transaction{
		SQLAdapter: &SQLAdapter{executor: tx, grammar: grammar},
		Tx:         tx,
		logger:     logger,
	}, nil
}

// Commit, transaction'ı başarılı şekilde sonlandırır.
func (t *Transaction) Commit() error {
	err := t.Tx.Commit()
	if err == nil {
		t.logger.Println("✅ Transaction commit edildi.")
	}
	return err
}

// Rollback, transaction sırasında yapılan tüm değişiklikleri geri alır.
func (t *Transaction) Rollback() error {
	err := t.Tx.Rollback()
	if err == nil {
		t.logger.Println("❌ Transaction geri alındı.")
	}
	return err
}
