package paystation

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/paystation/currency"
	"github.com/temoto/paystation/log2"
)

func newTestPayStation(t testing.TB) *PayStation {
	ps := New()
	ps.Log = log2.NewTest(t, log2.LDebug)
	return ps
}

func mustAdd(t testing.TB, ps *PayStation, coins ...currency.Nominal) {
	for _, c := range coins {
		require.NoError(t, ps.AddPayment(c), "coin=%d", c)
	}
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		coins  []currency.Nominal
		expect int
	}{
		{"empty", nil, 0},
		{"5", []currency.Nominal{5}, 2},
		{"10", []currency.Nominal{10}, 4},
		{"25", []currency.Nominal{25}, 10},
		{"10+25", []currency.Nominal{10, 25}, 14},
		{"5+10+25", []currency.Nominal{5, 10, 25}, 16},
		{"100", []currency.Nominal{10, 10, 10, 10, 10, 25, 25}, 40},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			ps := newTestPayStation(t)
			mustAdd(t, ps, c.coins...)
			assert.Equal(t, c.expect, ps.ReadDisplay())
		})
	}
}

func TestDisplayFormula(t *testing.T) {
	t.Parallel()
	ps := newTestPayStation(t)
	sum := currency.Amount(0)
	seq := []currency.Nominal{25, 5, 10, 10, 25, 5, 5, 25, 10}
	for _, c := range seq {
		mustAdd(t, ps, c)
		sum += currency.Amount(c)
		assert.Equal(t, int(sum/5)*2, ps.ReadDisplay())
		assert.Equal(t, sum, ps.Inserted())
	}
}

func TestMinutesFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, MinutesFor(0))
	assert.Equal(t, 0, MinutesFor(4))
	assert.Equal(t, 2, MinutesFor(5))
	assert.Equal(t, 2, MinutesFor(9))
	assert.Equal(t, 40, MinutesFor(100))
}

func TestRejectInvalidCoin(t *testing.T) {
	t.Parallel()

	for _, bad := range []currency.Nominal{0, 1, 2, 17, 20, 50, 100} {
		ps := newTestPayStation(t)
		mustAdd(t, ps, 10, 5)
		err := ps.AddPayment(bad)
		require.Error(t, err)
		assert.True(t, IsInvalidCoin(err), "coin=%d err=%v", bad, err)
		ice, ok := errors.Cause(err).(InvalidCoinError)
		require.True(t, ok)
		assert.Equal(t, bad, ice.Coin)
		assert.Contains(t, err.Error(), "invalid coin")

		// state unchanged
		assert.Equal(t, 6, ps.ReadDisplay())
		assert.Equal(t, currency.Amount(15), ps.Inserted())
		assert.Equal(t, map[currency.Nominal]uint{10: 1, 5: 1}, ps.Cancel())
	}
	assert.False(t, IsInvalidCoin(nil))
	assert.False(t, IsInvalidCoin(errors.New("other")))
}

func TestBuy(t *testing.T) {
	t.Parallel()
	ps := newTestPayStation(t)
	mustAdd(t, ps, 5, 10, 25)
	r := ps.Buy()
	assert.Equal(t, 16, r.Value())
	assert.Equal(t, 0, ps.ReadDisplay())
	assert.Equal(t, currency.Amount(0), ps.Inserted())
	assert.Equal(t, "Receipt(minutes=16)", r.String())
}

func TestClearAfterBuy(t *testing.T) {
	t.Parallel()
	ps := newTestPayStation(t)
	mustAdd(t, ps, 25)
	ps.Buy()
	assert.Equal(t, 0, ps.ReadDisplay())

	mustAdd(t, ps, 10, 25)
	assert.Equal(t, 14, ps.ReadDisplay())
	r := ps.Buy()
	assert.Equal(t, 14, r.Value())
	assert.Equal(t, 0, ps.ReadDisplay())
}

func TestBuyClearsCoins(t *testing.T) {
	t.Parallel()
	ps := newTestPayStation(t)
	mustAdd(t, ps, 10, 25)
	ps.Buy()
	refund := ps.Cancel()
	require.NotNil(t, refund)
	assert.Len(t, refund, 0)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		coins  []currency.Nominal
		expect map[currency.Nominal]uint
	}{
		{"nothing", nil, map[currency.Nominal]uint{}},
		{"one-dime", []currency.Nominal{10}, map[currency.Nominal]uint{10: 1}},
		{"dimes-nickel", []currency.Nominal{10, 10, 5}, map[currency.Nominal]uint{10: 2, 5: 1}},
		{"dime-quarter", []currency.Nominal{10, 25}, map[currency.Nominal]uint{10: 1, 25: 1}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			ps := newTestPayStation(t)
			mustAdd(t, ps, c.coins...)
			refund := ps.Cancel()
			require.NotNil(t, refund)
			assert.Equal(t, c.expect, refund)
			for n, count := range refund {
				assert.NotZero(t, count, "nominal=%d", n)
			}
			assert.Equal(t, 0, ps.ReadDisplay())
		})
	}
}

func TestCancelNoKeyForCoinNotEntered(t *testing.T) {
	t.Parallel()
	ps := newTestPayStation(t)
	mustAdd(t, ps, 10, 10, 5)
	refund := ps.Cancel()
	_, ok := refund[25]
	assert.False(t, ok)
}

func TestClearAfterCancel(t *testing.T) {
	t.Parallel()
	ps := newTestPayStation(t)
	mustAdd(t, ps, 10)
	ps.Cancel()
	assert.Equal(t, 0, ps.ReadDisplay())
	mustAdd(t, ps, 25)
	assert.Equal(t, 10, ps.ReadDisplay())
}

func TestCancelSnapshotIndependent(t *testing.T) {
	t.Parallel()
	ps := newTestPayStation(t)
	mustAdd(t, ps, 10, 5)
	first := ps.Cancel()
	mustAdd(t, ps, 10, 10, 25)
	assert.Equal(t, map[currency.Nominal]uint{10: 1, 5: 1}, first)

	// mutating returned map must not leak into next transaction
	first[25] = 7
	assert.Equal(t, map[currency.Nominal]uint{10: 2, 25: 1}, ps.Cancel())
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	t.Run("two-buys", func(t *testing.T) {
		ps := newTestPayStation(t)
		mustAdd(t, ps, 25, 10, 5)
		ps.Buy()
		mustAdd(t, ps, 25, 25)
		ps.Buy()
		assert.Equal(t, currency.Amount(90), ps.Empty())
	})
	t.Run("cancel-excluded", func(t *testing.T) {
		ps := newTestPayStation(t)
		mustAdd(t, ps, 25, 10, 5)
		ps.Buy()
		mustAdd(t, ps, 25, 25)
		ps.Cancel()
		assert.Equal(t, currency.Amount(40), ps.Empty())
	})
	t.Run("resets-to-zero", func(t *testing.T) {
		ps := newTestPayStation(t)
		mustAdd(t, ps, 25, 10)
		ps.Buy()
		assert.Equal(t, currency.Amount(35), ps.TotalMoney())
		ps.Empty()
		assert.Equal(t, currency.Amount(0), ps.TotalMoney())
		assert.Equal(t, currency.Amount(0), ps.Empty())
	})
	t.Run("open-transaction-untouched", func(t *testing.T) {
		ps := newTestPayStation(t)
		mustAdd(t, ps, 25)
		ps.Buy()
		mustAdd(t, ps, 10)
		assert.Equal(t, currency.Amount(25), ps.Empty())
		assert.Equal(t, 4, ps.ReadDisplay())
		assert.Equal(t, currency.Amount(10), ps.Inserted())
		ps.Buy()
		assert.Equal(t, currency.Amount(10), ps.Empty())
	})
}

func TestCashbox(t *testing.T) {
	t.Parallel()
	ps := newTestPayStation(t)
	assert.Equal(t, map[currency.Nominal]uint{}, ps.Cashbox())

	mustAdd(t, ps, 25, 10, 5)
	ps.Buy()
	mustAdd(t, ps, 5, 5)
	ps.Cancel()
	mustAdd(t, ps, 25, 25)
	ps.Buy()
	assert.Equal(t, map[currency.Nominal]uint{25: 3, 10: 1, 5: 1}, ps.Cashbox())

	sum := currency.Amount(0)
	for n, c := range ps.Cashbox() {
		sum += currency.Amount(n) * currency.Amount(c)
	}
	assert.Equal(t, ps.TotalMoney(), sum)

	ps.Empty()
	assert.Equal(t, map[currency.Nominal]uint{}, ps.Cashbox())
}

func TestZeroValue(t *testing.T) {
	t.Parallel()
	var ps PayStation
	require.NoError(t, ps.AddPayment(25))
	assert.Equal(t, 10, ps.Buy().Value())
	assert.Equal(t, map[currency.Nominal]uint{25: 1}, ps.Cashbox())
	assert.Equal(t, currency.Amount(25), ps.Empty())
}

func TestZeroValueCashbox(t *testing.T) {
	t.Parallel()
	var ps PayStation
	ps.Log = log2.NewTest(t, log2.LDebug)
	ps.Log.SetErrorFunc(func(err error) { t.Errorf("unexpected error: %v", err) })

	assert.Equal(t, map[currency.Nominal]uint{}, ps.Cashbox())
	assert.Equal(t, currency.Amount(0), ps.Empty())
	require.NoError(t, ps.AddPayment(10))
	require.NoError(t, ps.AddPayment(5))
	ps.Buy()
	require.NoError(t, ps.AddPayment(10))
	ps.Buy()
	assert.Equal(t, map[currency.Nominal]uint{5: 1, 10: 2}, ps.Cashbox())
	assert.Equal(t, currency.Amount(25), ps.Empty())
	assert.Equal(t, map[currency.Nominal]uint{}, ps.Cashbox())
}

func TestDenominations(t *testing.T) {
	t.Parallel()
	ds := Denominations()
	assert.Equal(t, []currency.Nominal{5, 10, 25}, ds)
	ds[0] = 1
	assert.Equal(t, []currency.Nominal{5, 10, 25}, Denominations())
}

func TestIndependentStations(t *testing.T) {
	t.Parallel()
	a, b := newTestPayStation(t), newTestPayStation(t)
	mustAdd(t, a, 25)
	mustAdd(t, b, 5)
	a.Buy()
	assert.Equal(t, 2, b.ReadDisplay())
	assert.Equal(t, currency.Amount(0), b.Empty())
	assert.Equal(t, currency.Amount(25), a.Empty())
}
