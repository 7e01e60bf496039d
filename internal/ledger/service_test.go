package ledger

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
	"kasa-backend/internal/notify"
)

var testActor = Actor{ID: 1, Email: "test@example.com", FullName: "Test Kullanıcı"}

// setupTestDB test başına izole bir in-memory sqlite açar, şemayı kurar ve
// global bağlantıyı geçici olarak değiştirir.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	return db
}

func mustCreateBankAccount(t *testing.T, db *gorm.DB, name string, opening decimal.Decimal) models.BankAccount {
	t.Helper()
	acc := models.BankAccount{Name: name, Currency: "TRY", OpeningBalance: &opening, IsActive: true}
	require.NoError(t, db.Create(&acc).Error)
	return acc
}

func mustCreateCard(t *testing.T, db *gorm.DB, name string) models.Card {
	t.Helper()
	card := models.Card{Name: name, IsActive: true}
	require.NoError(t, db.Create(&card).Error)
	return card
}

func mustCreateCheck(t *testing.T, db *gorm.DB, no string, amount decimal.Decimal, status models.CheckStatus) models.Check {
	t.Helper()
	check := models.Check{
		CheckNo:  no,
		Amount:   amount,
		Currency: "TRY",
		DueDate:  time.Now().AddDate(0, 1, 0),
		Status:   status,
	}
	require.NoError(t, db.Create(&check).Error)
	return check
}

func reloadCard(t *testing.T, db *gorm.DB, id uint) models.Card {
	t.Helper()
	var card models.Card
	require.NoError(t, db.First(&card, id).Error)
	return card
}

func reloadCheck(t *testing.T, db *gorm.DB, id uint) models.Check {
	t.Helper()
	var check models.Check
	require.NoError(t, db.First(&check, id).Error)
	return check
}

func TestCashInCreatesLedgerRow(t *testing.T) {
	db := setupTestDB(t)

	date := "2025-03-10"
	tx, err := CashIn(testActor, CashMovementInput{
		Amount:      d("500"),
		Date:        &date,
		Description: "Gün sonu nakit",
		Tags:        []string{"gün-sonu"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.TxMethodCash, tx.Method)
	assert.Equal(t, models.TxTypeCashIn, tx.Type)
	assert.Equal(t, models.TxDirectionInflow, tx.Direction)
	assert.True(t, d("500").Equal(tx.Inflow))
	assert.True(t, tx.Outflow.IsZero())
	assert.True(t, tx.BankDelta.IsZero())
	assert.Equal(t, "TRY", tx.Currency)
	assert.Equal(t, "F-20250310-0001", tx.TxnNo)
	assert.Equal(t, testActor.FullName, tx.CreatedByName)
	assert.True(t, tx.Backdated, "geçmiş tarihli kayıt işaretlenmeli")

	// Audit satırı düşülmüş olmalı
	var logCount int64
	db.Model(&models.AuditLog{}).Where("entity_type = ? AND entity_id = ?", "transaction", tx.ID).Count(&logCount)
	assert.EqualValues(t, 1, logCount)
}

func TestCashMovementRejectsNonPositiveAmount(t *testing.T) {
	setupTestDB(t)

	_, err := CashIn(testActor, CashMovementInput{Amount: decimal.Zero})
	require.ErrorIs(t, err, ErrValidation)

	_, err = CashOut(testActor, CashMovementInput{Amount: d("-10")})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCashMovementUnknownContact(t *testing.T) {
	db := setupTestDB(t)

	_, err := CashIn(testActor, CashMovementInput{Amount: d("100"), ContactID: uintPtr(99)})
	require.ErrorIs(t, err, ErrNotFound)

	// Hata durumunda hiçbir satır yazılmamış olmalı
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestTxnNoSequencePerDay(t *testing.T) {
	setupTestDB(t)

	date := "2025-03-10"
	first, err := CashIn(testActor, CashMovementInput{Amount: d("10"), Date: &date})
	require.NoError(t, err)
	second, err := CashOut(testActor, CashMovementInput{Amount: d("5"), Date: &date})
	require.NoError(t, err)

	assert.Equal(t, "F-20250310-0001", first.TxnNo)
	assert.Equal(t, "F-20250310-0002", second.TxnNo)

	// Farklı gün sıfırdan başlar
	other := "2025-03-11"
	third, err := CashIn(testActor, CashMovementInput{Amount: d("10"), Date: &other})
	require.NoError(t, err)
	assert.Equal(t, "F-20250311-0001", third.TxnNo)
}

func TestTxnNoSurvivesHardDelete(t *testing.T) {
	setupTestDB(t)

	date := "2025-03-10"
	first, err := CashIn(testActor, CashMovementInput{Amount: d("10"), Date: &date})
	require.NoError(t, err)
	require.NoError(t, DeleteTransaction(testActor, first.ID))

	// Silinen numara tekrar kullanılmaz
	second, err := CashIn(testActor, CashMovementInput{Amount: d("20"), Date: &date})
	require.NoError(t, err)
	assert.Equal(t, "F-20250310-0002", second.TxnNo)
}

func TestApplyTagsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	date := "2025-03-10"
	tx, err := CashIn(testActor, CashMovementInput{
		Amount: d("100"),
		Date:   &date,
		Tags:   []string{"kira", " kira ", "", "fatura"},
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.Tag{}).Count(&count)
	assert.EqualValues(t, 2, count, "aynı isim tek etiket olmalı, boş isim atlanmalı")

	var loaded models.Transaction
	require.NoError(t, db.Preload("Tags").First(&loaded, tx.ID).Error)
	assert.Len(t, loaded.Tags, 2)
}

func TestBankMovementsAffectOnlyBankBalance(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "Ana Hesap", d("1000"))

	date := "2025-03-10"
	in, err := BankIn(testActor, BankMovementInput{BankAccountID: acc.ID, Amount: d("400"), Date: &date})
	require.NoError(t, err)
	out, err := BankOut(testActor, BankMovementInput{BankAccountID: acc.ID, Amount: d("150"), Date: &date})
	require.NoError(t, err)

	assert.True(t, d("400").Equal(in.BankDelta))
	assert.True(t, d("-150").Equal(out.BankDelta))
	assert.True(t, in.Inflow.IsZero(), "banka satırı ham kasa alanlarını doldurmaz")
	assert.True(t, out.Outflow.IsZero())

	balances, err := BankBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, d("1250").Equal(balances[0].CurrentBalance))
}

func TestBankMovementUnknownAccount(t *testing.T) {
	setupTestDB(t)

	_, err := BankIn(testActor, BankMovementInput{BankAccountID: 42, Amount: d("100")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPosCollectionCreatesPair(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "POS Hesabı", decimal.Zero)

	date := "2025-03-10"
	collection, commission, err := PosCollection(testActor, PosCollectionInput{
		Mode:          PosModeNetPlusCommission,
		Net:           d("9800"),
		Komisyon:      d("200"),
		BankAccountID: acc.ID,
		Date:          &date,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TxTypePosCollection, collection.Type)
	assert.True(t, d("9800").Equal(collection.Amount))
	assert.True(t, d("10000").Equal(collection.BankDelta), "tahsilat bankaya brüt yazar")
	require.NotNil(t, collection.PosBrut)
	assert.True(t, d("10000").Equal(*collection.PosBrut))
	require.NotNil(t, collection.PosEffectiveRate)
	assert.True(t, d("0.02").Equal(*collection.PosEffectiveRate))

	assert.Equal(t, models.TxTypePosCommission, commission.Type)
	assert.True(t, d("200").Equal(commission.Amount))
	assert.True(t, d("-200").Equal(commission.BankDelta))

	// İki satır ayrı fiş numarası alır
	assert.NotEqual(t, collection.TxnNo, commission.TxnNo)

	// Banka bakiyesine net etki: brüt - komisyon
	balances, err := BankBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, d("9800").Equal(balances[0].CurrentBalance))

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestPosCollectionGrossMode(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "POS Hesabı", decimal.Zero)

	collection, commission, err := PosCollection(testActor, PosCollectionInput{
		Mode:          PosModeGrossPlusCommission,
		Brut:          d("10000"),
		Komisyon:      d("200"),
		BankAccountID: acc.ID,
	})
	require.NoError(t, err)

	assert.True(t, d("9800").Equal(collection.Amount), "net = brüt - komisyon")
	assert.True(t, d("200").Equal(commission.Amount))
}

func TestPosCollectionValidation(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "POS Hesabı", decimal.Zero)

	_, _, err := PosCollection(testActor, PosCollectionInput{
		Mode: PosModeNetPlusCommission, Net: d("100"), Komisyon: d("-1"), BankAccountID: acc.ID,
	})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = PosCollection(testActor, PosCollectionInput{
		Mode: "bilinmeyen", Net: d("100"), Komisyon: d("2"), BankAccountID: acc.ID,
	})
	require.ErrorIs(t, err, ErrValidation)

	// Komisyon brütten büyükse net negatif olur
	_, _, err = PosCollection(testActor, PosCollectionInput{
		Mode: PosModeGrossPlusCommission, Brut: d("100"), Komisyon: d("150"), BankAccountID: acc.ID,
	})
	require.ErrorIs(t, err, ErrValidation)

	// Hatalı çağrılar tek satır bile bırakmamalı
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestPosCollectionZeroCommission(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "POS Hesabı", decimal.Zero)

	collection, commission, err := PosCollection(testActor, PosCollectionInput{
		Mode: PosModeNetPlusCommission, Net: d("500"), Komisyon: decimal.Zero, BankAccountID: acc.ID,
	})
	require.NoError(t, err)

	// Sıfır komisyonda da çift oluşur, komisyon bacağı sıfır tutarlı
	assert.True(t, d("500").Equal(collection.BankDelta))
	assert.True(t, commission.Amount.IsZero())
	assert.True(t, commission.BankDelta.IsZero())

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestCardExpenseIncreasesRisk(t *testing.T) {
	db := setupTestDB(t)
	card := mustCreateCard(t, db, "Şirket Kartı")

	tx, err := CardExpense(testActor, CardExpenseInput{
		CardID:      card.ID,
		Amount:      d("320"),
		Description: "Akaryakıt",
		Attachments: []AttachmentInput{{FileName: "slip.jpg", ContentType: "image/jpeg", Size: 1024}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.TxMethodCard, tx.Method)
	assert.True(t, d("320").Equal(tx.DisplayOutflow))
	assert.True(t, tx.Outflow.IsZero(), "kart harcaması kasadan düşmez")

	assert.True(t, d("320").Equal(reloadCard(t, db, card.ID).RiskTry))

	var attCount int64
	db.Model(&models.Attachment{}).Where("transaction_id = ?", tx.ID).Count(&attCount)
	assert.EqualValues(t, 1, attCount)
}

func TestCardExpenseRequiresAttachment(t *testing.T) {
	db := setupTestDB(t)
	card := mustCreateCard(t, db, "Şirket Kartı")

	_, err := CardExpense(testActor, CardExpenseInput{CardID: card.ID, Amount: d("100")})
	require.ErrorIs(t, err, ErrValidation)

	// Reddedilen harcama riski oynatmamalı
	assert.True(t, reloadCard(t, db, card.ID).RiskTry.IsZero())
}

func TestCardPaymentClampsRiskAtZero(t *testing.T) {
	db := setupTestDB(t)
	card := mustCreateCard(t, db, "Şirket Kartı")

	_, err := CardExpense(testActor, CardExpenseInput{
		CardID:      card.ID,
		Amount:      d("300"),
		Attachments: []AttachmentInput{{FileName: "slip.jpg"}},
	})
	require.NoError(t, err)

	// Borcu aşan ödeme riski negatife çevirmez
	_, err = CardPayment(testActor, CardPaymentInput{CardID: card.ID, Amount: d("500")})
	require.NoError(t, err)
	assert.True(t, reloadCard(t, db, card.ID).RiskTry.IsZero())

	// Sıfırdayken yeni ödeme de sıfırda kalır
	_, err = CardPayment(testActor, CardPaymentInput{CardID: card.ID, Amount: d("100")})
	require.NoError(t, err)
	assert.True(t, reloadCard(t, db, card.ID).RiskTry.IsZero())
}

func TestCardPaymentFromBankAccount(t *testing.T) {
	db := setupTestDB(t)
	card := mustCreateCard(t, db, "Şirket Kartı")
	acc := mustCreateBankAccount(t, db, "Ana Hesap", d("1000"))

	tx, err := CardPayment(testActor, CardPaymentInput{
		CardID:        card.ID,
		BankAccountID: &acc.ID,
		Amount:        d("400"),
	})
	require.NoError(t, err)

	// Bankadan fonlanan ödeme banka hesabını hareket ettirir
	assert.Equal(t, models.TxMethodBank, tx.Method)
	assert.True(t, d("-400").Equal(tx.BankDelta))

	balances, err := BankBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, d("600").Equal(balances[0].CurrentBalance))
}

func TestCheckPaymentLifecycle(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "Ana Hesap", d("5000"))
	check := mustCreateCheck(t, db, "ÇK-001", d("2500"), models.CheckStatusOdemede)

	tx, err := RegisterCheckPayment(testActor, CheckPaymentInput{
		CheckID:       check.ID,
		BankAccountID: acc.ID,
		Description:   "Çek ödemesi",
	})
	require.NoError(t, err)

	// Tutar çekten gelir, banka etkisi negatiftir
	assert.Equal(t, models.TxTypeCheckPayment, tx.Type)
	assert.True(t, d("2500").Equal(tx.Amount))
	assert.True(t, d("-2500").Equal(tx.BankDelta))

	assert.Equal(t, models.CheckStatusOdemeYapildi, reloadCheck(t, db, check.ID).Status)

	// Tek bir ODEME hareketi düşülmüş olmalı, işlemi referanslar
	var moves []models.CheckMove
	require.NoError(t, db.Where("check_id = ?", check.ID).Find(&moves).Error)
	require.Len(t, moves, 1)
	assert.Equal(t, models.CheckMoveActionOdeme, moves[0].Action)
	assert.Equal(t, models.CheckStatusOdemede, moves[0].FromStatus)
	require.NotNil(t, moves[0].TransactionID)
	assert.Equal(t, tx.ID, *moves[0].TransactionID)
}

func TestCheckPaymentAlreadyPaid(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "Ana Hesap", d("5000"))
	check := mustCreateCheck(t, db, "ÇK-002", d("1000"), models.CheckStatusOdemeYapildi)

	_, err := RegisterCheckPayment(testActor, CheckPaymentInput{CheckID: check.ID, BankAccountID: acc.ID})
	require.ErrorIs(t, err, ErrCheckAlreadyPaid)

	// Reddedilen ödeme hiçbir yazma bırakmaz
	var txCount, moveCount int64
	db.Model(&models.Transaction{}).Count(&txCount)
	db.Model(&models.CheckMove{}).Count(&moveCount)
	assert.EqualValues(t, 0, txCount)
	assert.EqualValues(t, 0, moveCount)
}

func TestCheckPaymentUnknownCheck(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "Ana Hesap", d("5000"))

	_, err := RegisterCheckPayment(testActor, CheckPaymentInput{CheckID: 999, BankAccountID: acc.ID})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTransactionRevertsCardRisk(t *testing.T) {
	db := setupTestDB(t)
	card := mustCreateCard(t, db, "Şirket Kartı")

	expense, err := CardExpense(testActor, CardExpenseInput{
		CardID:      card.ID,
		Amount:      d("300"),
		Attachments: []AttachmentInput{{FileName: "slip.jpg"}},
	})
	require.NoError(t, err)
	require.True(t, d("300").Equal(reloadCard(t, db, card.ID).RiskTry))

	require.NoError(t, DeleteTransaction(testActor, expense.ID))

	// Harcama silinince risk geri düşer, slip kayıtları temizlenir
	assert.True(t, reloadCard(t, db, card.ID).RiskTry.IsZero())

	var attCount int64
	db.Model(&models.Attachment{}).Where("transaction_id = ?", expense.ID).Count(&attCount)
	assert.EqualValues(t, 0, attCount)

	// Kalıcı silme: unscoped aramada da bulunmaz
	var gone models.Transaction
	err = db.Unscoped().First(&gone, expense.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteCardPaymentRestoresRisk(t *testing.T) {
	db := setupTestDB(t)
	card := mustCreateCard(t, db, "Şirket Kartı")

	_, err := CardExpense(testActor, CardExpenseInput{
		CardID:      card.ID,
		Amount:      d("500"),
		Attachments: []AttachmentInput{{FileName: "slip.jpg"}},
	})
	require.NoError(t, err)

	payment, err := CardPayment(testActor, CardPaymentInput{CardID: card.ID, Amount: d("200")})
	require.NoError(t, err)
	require.True(t, d("300").Equal(reloadCard(t, db, card.ID).RiskTry))

	require.NoError(t, DeleteTransaction(testActor, payment.ID))
	assert.True(t, d("500").Equal(reloadCard(t, db, card.ID).RiskTry))
}

func TestDeleteCheckPaymentRevertsCheck(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "Ana Hesap", d("5000"))
	check := mustCreateCheck(t, db, "ÇK-003", d("1500"), models.CheckStatusOdemede)

	tx, err := RegisterCheckPayment(testActor, CheckPaymentInput{CheckID: check.ID, BankAccountID: acc.ID})
	require.NoError(t, err)

	require.NoError(t, DeleteTransaction(testActor, tx.ID))

	// Çek ödeme öncesi durumuna döner, geri alma hareketi düşülür
	assert.Equal(t, models.CheckStatusOdemede, reloadCheck(t, db, check.ID).Status)

	var moves []models.CheckMove
	require.NoError(t, db.Where("check_id = ?", check.ID).Order("id asc").Find(&moves).Error)
	require.Len(t, moves, 2)
	assert.Equal(t, models.CheckMoveActionOdeme, moves[0].Action)
	assert.Equal(t, models.CheckMoveActionOdemeIptal, moves[1].Action)
	assert.Equal(t, models.CheckStatusOdemeYapildi, moves[1].FromStatus)
	assert.Equal(t, models.CheckStatusOdemede, moves[1].ToStatus)
}

func TestDeleteTransactionNotFound(t *testing.T) {
	setupTestDB(t)

	err := DeleteTransaction(testActor, 12345)
	require.ErrorIs(t, err, ErrNotFound)
}

// recorderNotifier bildirim çağrılarını kanala yazar.
type recorderNotifier struct {
	backdated chan notify.Event
	deleted   chan notify.Event
}

func newRecorderNotifier() *recorderNotifier {
	return &recorderNotifier{
		backdated: make(chan notify.Event, 4),
		deleted:   make(chan notify.Event, 4),
	}
}

func (r *recorderNotifier) SendBackdatedTransaction(ev notify.Event) error {
	r.backdated <- ev
	return nil
}

func (r *recorderNotifier) SendHardDelete(ev notify.Event) error {
	r.deleted <- ev
	return nil
}

func waitEvent(t *testing.T, ch chan notify.Event) notify.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("bildirim gelmedi")
		return notify.Event{}
	}
}

func TestBackdatedTransactionNotifies(t *testing.T) {
	setupTestDB(t)

	rec := newRecorderNotifier()
	SetNotifier(rec)
	t.Cleanup(func() { SetNotifier(notify.NewLogNotifier()) })

	date := "2024-01-15"
	tx, err := CashIn(testActor, CashMovementInput{Amount: d("100"), Date: &date})
	require.NoError(t, err)
	require.True(t, tx.Backdated)

	ev := waitEvent(t, rec.backdated)
	assert.Equal(t, tx.TxnNo, ev.TxnNo)
	assert.Equal(t, "100.00", ev.Amount)
	assert.Equal(t, "2024-01-15", ev.TxnDate)
	assert.Equal(t, testActor.FullName, ev.ActorName)
}

func TestTodayTransactionDoesNotNotify(t *testing.T) {
	setupTestDB(t)

	rec := newRecorderNotifier()
	SetNotifier(rec)
	t.Cleanup(func() { SetNotifier(notify.NewLogNotifier()) })

	tx, err := CashIn(testActor, CashMovementInput{Amount: d("100")})
	require.NoError(t, err)
	require.False(t, tx.Backdated)

	select {
	case <-rec.backdated:
		t.Fatal("bugünkü işlem bildirim tetiklememeli")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHardDeleteNotifies(t *testing.T) {
	setupTestDB(t)

	rec := newRecorderNotifier()
	SetNotifier(rec)
	t.Cleanup(func() { SetNotifier(notify.NewLogNotifier()) })

	tx, err := CashIn(testActor, CashMovementInput{Amount: d("250")})
	require.NoError(t, err)

	require.NoError(t, DeleteTransaction(testActor, tx.ID))

	ev := waitEvent(t, rec.deleted)
	assert.Equal(t, tx.TxnNo, ev.TxnNo)
	assert.Equal(t, "250.00", ev.Amount)
}
