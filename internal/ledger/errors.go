package ledger

import "errors"

// İş hataları commit'ten önce tespit edilir; handler katmanı bunları
// 4xx'e çevirir. Store kaynaklı hatalar olduğu gibi sarılıp döner.
var (
	ErrNotFound         = errors.New("kayıt bulunamadı")
	ErrValidation       = errors.New("geçersiz istek")
	ErrCheckAlreadyPaid = errors.New("çek zaten ödenmiş")
)
