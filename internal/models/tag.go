package models

import "time"

// Tag: Serbest metin etiket. İsme göre global benzersiz, ilk kullanımda
// oluşturulur (upsert) ve transaction_tags üzerinden işlemlere bağlanır.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"` // büyük/küçük harf duyarlı
	CreatedAt time.Time `json:"created_at"`
}
