package paystation

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/temoto/paystation/currency"
)

// Accepted coins, ascending. Index is position in PayStation coin counters.
var denominations = [...]currency.Nominal{5, 10, 25}

const coinKinds = len(denominations)

const (
	centsPerUnit   = 5
	minutesPerUnit = 2
)

func Denominations() []currency.Nominal {
	ds := make([]currency.Nominal, coinKinds)
	copy(ds, denominations[:])
	return ds
}

func coinIndex(n currency.Nominal) (int, bool) {
	for i, d := range denominations {
		if d == n {
			return i, true
		}
	}
	return -1, false
}

// MinutesFor converts money to parking time, 5 cents buy 2 minutes, remainder is lost.
func MinutesFor(a currency.Amount) int {
	return int(a/centsPerUnit) * minutesPerUnit
}

// InvalidCoinError is returned by AddPayment for coin outside accepted set.
type InvalidCoinError struct {
	Coin currency.Nominal
}

func (e InvalidCoinError) Error() string { return fmt.Sprintf("invalid coin: %d", e.Coin) }

func IsInvalidCoin(err error) bool {
	_, ok := errors.Cause(err).(InvalidCoinError)
	return ok
}
