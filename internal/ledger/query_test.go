package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasa-backend/internal/models"
)

func TestBankBalancesExcludesLegacySeedRows(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "Ana Hesap", d("1000"))

	date := "2025-03-10"
	_, err := BankIn(testActor, BankMovementInput{BankAccountID: acc.ID, Amount: d("500"), Date: &date})
	require.NoError(t, err)

	// Eski sistemden taşınan açılış satırı: etkisi açılış bakiyesine zaten
	// katılmış, delta toplamına girerse bakiye iki kez sayılır
	legacy := models.Transaction{
		TxnNo:         "F-20200101-0001",
		Method:        models.TxMethodBank,
		Type:          models.TxTypeBankIn,
		Direction:     models.TxDirectionInflow,
		Amount:        d("10000"),
		Currency:      "TRY",
		TxnDate:       time.Date(2020, 1, 1, 0, 0, 0, 0, BusinessLocation()),
		Description:   LegacyOpeningBalanceMarker,
		BankDelta:     d("10000"),
		BankAccountID: &acc.ID,
		CreatedByID:   1,
	}
	require.NoError(t, db.Create(&legacy).Error)

	balances, err := BankBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, d("1500").Equal(balances[0].CurrentBalance),
		"beklenen 1500, bulunan %s", balances[0].CurrentBalance)
}

func TestBankBalancesExcludesSoftDeletedRows(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "Ana Hesap", d("1000"))

	date := "2025-03-10"
	tx, err := BankIn(testActor, BankMovementInput{BankAccountID: acc.ID, Amount: d("500"), Date: &date})
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.Transaction{}, tx.ID).Error)

	balances, err := BankBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, d("1000").Equal(balances[0].CurrentBalance))
}

func TestBankBalancesNilOpeningDefaultsToZero(t *testing.T) {
	db := setupTestDB(t)
	acc := models.BankAccount{Name: "Yeni Hesap", Currency: "TRY", IsActive: true}
	require.NoError(t, db.Create(&acc).Error)

	balances, err := BankBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].CurrentBalance.IsZero())
}

func TestDailyLedgerOrderingAndRange(t *testing.T) {
	setupTestDB(t)

	d1 := "2025-03-10"
	d2 := "2025-03-11"
	d3 := "2025-03-12"

	_, err := CashIn(testActor, CashMovementInput{Amount: d("100"), Date: &d2})
	require.NoError(t, err)
	_, err = CashIn(testActor, CashMovementInput{Amount: d("200"), Date: &d1})
	require.NoError(t, err)
	_, err = CashIn(testActor, CashMovementInput{Amount: d("300"), Date: &d3})
	require.NoError(t, err)

	from, to := "2025-03-10", "2025-03-11"
	txs, err := DailyLedger(&from, &to)
	require.NoError(t, err)
	require.Len(t, txs, 2, "aralık dışındaki gün gelmemeli")

	// Kronolojik sıra: eklenme sırası değil, işlem tarihi belirler
	assert.True(t, d("200").Equal(txs[0].Amount))
	assert.True(t, d("100").Equal(txs[1].Amount))
}

func TestDailyLedgerRejectsInvertedRange(t *testing.T) {
	setupTestDB(t)

	from, to := "2025-03-12", "2025-03-10"
	_, err := DailyLedger(&from, &to)
	require.ErrorIs(t, err, ErrValidation)
}

func TestDailyLedgerExcludesSoftDeleted(t *testing.T) {
	db := setupTestDB(t)

	date := "2025-03-10"
	tx, err := CashIn(testActor, CashMovementInput{Amount: d("100"), Date: &date})
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.Transaction{}, tx.ID).Error)

	from, to := "2025-03-10", "2025-03-10"
	txs, err := DailyLedger(&from, &to)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCashBalanceBefore(t *testing.T) {
	setupTestDB(t)

	d1 := "2025-03-10"
	d2 := "2025-03-12"
	_, err := CashIn(testActor, CashMovementInput{Amount: d("1000"), Date: &d1})
	require.NoError(t, err)
	_, err = CashOut(testActor, CashMovementInput{Amount: d("300"), Date: &d1})
	require.NoError(t, err)
	_, err = CashIn(testActor, CashMovementInput{Amount: d("500"), Date: &d2})
	require.NoError(t, err)

	cutoff := time.Date(2025, 3, 12, 0, 0, 0, 0, BusinessLocation())
	balance, err := CashBalanceBefore(cutoff)
	require.NoError(t, err)
	assert.True(t, d("700").Equal(balance), "beklenen 700, bulunan %s", balance)
}

func TestMonthlySummaryGroupsByMethod(t *testing.T) {
	db := setupTestDB(t)
	acc := mustCreateBankAccount(t, db, "POS Hesabı", decimal.Zero)
	card := mustCreateCard(t, db, "Şirket Kartı")

	date := "2025-03-10"
	_, err := CashIn(testActor, CashMovementInput{Amount: d("1000"), Date: &date})
	require.NoError(t, err)
	_, err = CashOut(testActor, CashMovementInput{Amount: d("200"), Date: &date})
	require.NoError(t, err)
	_, _, err = PosCollection(testActor, PosCollectionInput{
		Mode: PosModeNetPlusCommission, Net: d("9800"), Komisyon: d("200"),
		BankAccountID: acc.ID, Date: &date,
	})
	require.NoError(t, err)
	_, err = CardExpense(testActor, CardExpenseInput{
		CardID: card.ID, Amount: d("300"), Date: &date,
		Attachments: []AttachmentInput{{FileName: "slip.jpg"}},
	})
	require.NoError(t, err)

	// Komşu ay özete girmemeli
	other := "2025-04-02"
	_, err = CashIn(testActor, CashMovementInput{Amount: d("9999"), Date: &other})
	require.NoError(t, err)

	summary, err := MonthlySummary(2025, 3)
	require.NoError(t, err)

	byMethod := make(map[models.TxMethod]MonthlySummaryItem)
	for _, item := range summary.Items {
		byMethod[item.Method] = item
	}

	assert.True(t, d("1000").Equal(byMethod[models.TxMethodCash].Inflow))
	assert.True(t, d("200").Equal(byMethod[models.TxMethodCash].Outflow))

	// POS satırları gösterim tutarlarıyla toplanır: net giriş, komisyon çıkış
	assert.True(t, d("9800").Equal(byMethod[models.TxMethodBank].Inflow))
	assert.True(t, d("200").Equal(byMethod[models.TxMethodBank].Outflow))

	assert.True(t, d("300").Equal(byMethod[models.TxMethodCard].Outflow))

	assert.True(t, d("10800").Equal(summary.TotalInflow))
	assert.True(t, d("700").Equal(summary.TotalOutflow))
}
