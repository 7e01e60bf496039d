package models

import "time"

// Attachment: İşleme bağlı belge (örn: kart harcaması slip'i).
// Dosya içeriği dışarıda saklanır, burada yalnızca metadata tutulur.
type Attachment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID uint      `gorm:"index;not null" json:"transaction_id"`
	FileName      string    `gorm:"size:255;not null" json:"file_name"`
	FileKey       string    `gorm:"size:64;uniqueIndex;not null" json:"file_key"` // depolama anahtarı
	ContentType   string    `gorm:"size:100" json:"content_type"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
}
