package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasa-backend/internal/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func uintPtr(v uint) *uint { return &v }

func TestDeltaCashContext(t *testing.T) {
	cash := models.Transaction{Method: models.TxMethodCash, Inflow: d("150"), Outflow: d("40")}
	assert.True(t, d("110").Equal(Delta(cash, CashContext())))

	// Banka ve kart satırları kasa bakiyesine asla karışmaz
	bank := models.Transaction{Method: models.TxMethodBank, BankDelta: d("500")}
	assert.True(t, Delta(bank, CashContext()).IsZero())

	card := models.Transaction{Method: models.TxMethodCard, DisplayOutflow: d("200")}
	assert.True(t, Delta(card, CashContext()).IsZero())
}

func TestDeltaBankContext(t *testing.T) {
	tx := models.Transaction{Method: models.TxMethodBank, BankAccountID: uintPtr(3), BankDelta: d("-250")}

	assert.True(t, d("-250").Equal(Delta(tx, BankContext(3))))
	assert.True(t, Delta(tx, BankContext(7)).IsZero(), "başka hesabın bağlamına sızmamalı")
	assert.True(t, d("-250").Equal(Delta(tx, BankTotalContext())))

	// Kasa satırı banka bağlamında sıfırdır
	cash := models.Transaction{Method: models.TxMethodCash, Inflow: d("100")}
	assert.True(t, Delta(cash, BankContext(3)).IsZero())
	assert.True(t, Delta(cash, BankTotalContext()).IsZero())
}

func TestDeltaPosPairNetsOut(t *testing.T) {
	// POS çifti: +brüt ve -komisyon, toplam etki brüt - komisyon
	collection := models.Transaction{
		Method:        models.TxMethodBank,
		Type:          models.TxTypePosCollection,
		BankAccountID: uintPtr(1),
		BankDelta:     d("10000"),
	}
	commission := models.Transaction{
		Method:        models.TxMethodBank,
		Type:          models.TxTypePosCommission,
		BankAccountID: uintPtr(1),
		BankDelta:     d("-200"),
	}

	total := Delta(collection, BankContext(1)).Add(Delta(commission, BankContext(1)))
	assert.True(t, d("9800").Equal(total))
}

func TestRunningBalanceFold(t *testing.T) {
	txs := []models.Transaction{
		{ID: 1, Method: models.TxMethodCash, Inflow: d("1000")},
		{ID: 2, Method: models.TxMethodCash, Outflow: d("300")},
		{ID: 3, Method: models.TxMethodBank, BankDelta: d("500")}, // kasaya etkisiz
		{ID: 4, Method: models.TxMethodCash, Inflow: d("50")},
	}

	points := RunningBalance(txs, CashContext(), d("200"))
	require.Len(t, points, 4)

	assert.True(t, d("1200").Equal(points[0].Balance))
	assert.True(t, d("900").Equal(points[1].Balance))
	assert.True(t, points[2].Delta.IsZero())
	assert.True(t, d("900").Equal(points[2].Balance))
	assert.True(t, d("950").Equal(points[3].Balance))

	// Aynı girdiyle tekrar katlamak aynı seriyi verir
	again := RunningBalance(txs, CashContext(), d("200"))
	assert.Equal(t, points, again)
}

func TestRunningBalanceEmpty(t *testing.T) {
	points := RunningBalance(nil, CashContext(), d("100"))
	assert.Empty(t, points)
}

func TestDisplayAmountsForPosRows(t *testing.T) {
	collection := models.Transaction{
		Method:        models.TxMethodBank,
		Type:          models.TxTypePosCollection,
		BankDelta:     d("10000"),
		DisplayInflow: d("9800"),
	}
	da := DisplayAmountsFor(collection)
	assert.True(t, d("9800").Equal(da.Inflow), "POS tahsilat ekranda net gösterilir, brüt değil")
	assert.True(t, da.Outflow.IsZero())

	commission := models.Transaction{
		Method:         models.TxMethodBank,
		Type:           models.TxTypePosCommission,
		BankDelta:      d("-200"),
		DisplayOutflow: d("200"),
	}
	da = DisplayAmountsFor(commission)
	assert.True(t, da.Inflow.IsZero())
	assert.True(t, d("200").Equal(da.Outflow))
}

func TestDisplayAmountsForBankRows(t *testing.T) {
	in := models.Transaction{Method: models.TxMethodBank, Type: models.TxTypeBankIn, BankDelta: d("750")}
	da := DisplayAmountsFor(in)
	assert.True(t, d("750").Equal(da.Inflow))
	assert.True(t, da.Outflow.IsZero())

	out := models.Transaction{Method: models.TxMethodBank, Type: models.TxTypeBankOut, BankDelta: d("-750")}
	da = DisplayAmountsFor(out)
	assert.True(t, da.Inflow.IsZero())
	assert.True(t, d("750").Equal(da.Outflow))
}

func TestDisplayAmountsForCardRows(t *testing.T) {
	expense := models.Transaction{Method: models.TxMethodCard, Type: models.TxTypeCardExpense, DisplayOutflow: d("320")}
	da := DisplayAmountsFor(expense)
	assert.True(t, da.Inflow.IsZero(), "kart satırı asla giriş göstermez")
	assert.True(t, d("320").Equal(da.Outflow))
}

func TestDisplayAmountsForCashRows(t *testing.T) {
	tx := models.Transaction{Method: models.TxMethodCash, Type: models.TxTypeCashIn, Inflow: d("100")}
	da := DisplayAmountsFor(tx)
	assert.True(t, d("100").Equal(da.Inflow))
	assert.True(t, da.Outflow.IsZero())
}

func TestIsLegacySeedRow(t *testing.T) {
	assert.True(t, IsLegacySeedRow(models.Transaction{Description: LegacyOpeningBalanceMarker}))
	assert.False(t, IsLegacySeedRow(models.Transaction{Description: "Açılış bakiyesi"}))
	assert.False(t, IsLegacySeedRow(models.Transaction{Description: "normal işlem"}))
}

func TestNormalizeDate(t *testing.T) {
	raw := "2025-03-10"
	got, err := NormalizeDate(&raw)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, BusinessLocation()), got)

	// RFC3339 damgası da aynı iş gününe normalize edilir
	ts := "2025-03-10T15:30:00+03:00"
	got, err = NormalizeDate(&ts)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, BusinessLocation()), got)

	// Boş tarih bugünü kullanır
	got, err = NormalizeDate(nil)
	require.NoError(t, err)
	assert.Equal(t, StartOfDay(time.Now().In(BusinessLocation())), got)

	bad := "10/03/2025"
	_, err = NormalizeDate(&bad)
	require.ErrorIs(t, err, ErrValidation)
}

func TestIsBackdated(t *testing.T) {
	today := StartOfDay(time.Now().In(BusinessLocation()))
	assert.False(t, IsBackdated(today))
	assert.True(t, IsBackdated(today.AddDate(0, 0, -1)))
	assert.False(t, IsBackdated(today.AddDate(0, 0, 1)))
}
