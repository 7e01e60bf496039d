package ledger

import (
	"fmt"
	"time"
)

// İşlem tarihleri tek bir işletme saat diliminde gün başına normalize edilir.
// Çağıran ister çıplak tarih, ister tam zaman damgası göndersin, defterde hep
// aynı gün başı değeri saklanır.
var businessLocation = mustLoadLocation("Europe/Istanbul")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SetBusinessTimezone işletme saat dilimini değiştirir (main config'den çağırır).
func SetBusinessTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("saat dilimi yüklenemedi (%s): %w", name, err)
	}
	businessLocation = loc
	return nil
}

func BusinessLocation() *time.Location {
	return businessLocation
}

// NormalizeDate "2006-01-02" ya da RFC3339 kabul eder; boşsa bugünü kullanır.
// Dönen değer her zaman işletme saat diliminde gün başıdır.
func NormalizeDate(raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return StartOfDay(time.Now().In(businessLocation)), nil
	}

	if d, err := time.ParseInLocation("2006-01-02", *raw, businessLocation); err == nil {
		return StartOfDay(d), nil
	}

	if ts, err := time.Parse(time.RFC3339, *raw); err == nil {
		return StartOfDay(ts.In(businessLocation)), nil
	}

	return time.Time{}, fmt.Errorf("%w: tarih formatı geçersiz, 'YYYY-MM-DD' veya RFC3339 olmalı", ErrValidation)
}

func StartOfDay(t time.Time) time.Time {
	t = t.In(businessLocation)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, businessLocation)
}

// IsBackdated normalize edilmiş tarih bugünkü iş gününden eskiyse true döner.
// Geriye dönük kayıt bakiye matematiğini değiştirmez, yalnızca bildirim tetikler.
func IsBackdated(d time.Time) bool {
	return d.Before(StartOfDay(time.Now().In(businessLocation)))
}
