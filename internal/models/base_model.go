// internal/models/base_model.go
//
// Bu dosya, örnek modellerin struct binding için paylaştığı temel alanları
// (ID, CreatedAt, UpdatedAt, DeletedAt) içerir.
//
// Kullanım:
//    type User struct {
//        models.BaseModel
//        UserName string
//    }
//
// mapper.Bind gömülü struct'ları özyineli işler; böylece User otomatik
// olarak id, created_at, updated_at ve deleted_at alanlarını alır.

package models

import "time"

// BaseModel
//
// Alanlar:
//   - ID:        int64   → birincil anahtar
//   - CreatedAt: time    → oluşturulma zamanı
//   - UpdatedAt: time    → güncellenme zamanı
//   - DeletedAt: *time   → soft delete zamanı (nil = aktif)
type BaseModel struct {
	ID        int64      `json:"id" db:"id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

// IsDeleted, kaydın soft delete ile silinip silinmediğini söyler.
func (m *BaseModel) IsDeleted() bool {
	return m.DeletedAt != nil
}
