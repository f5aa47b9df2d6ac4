// Package paystation is parking pay station: accepts coins, shows parking
// time bought, issues receipts, refunds coins on cancel and accumulates
// revenue until collected with Empty.
//
// PayStation has no locks. One goroutine must own it, see internal/terminal.
package paystation

import (
	"github.com/juju/errors"
	"github.com/temoto/paystation/currency"
	"github.com/temoto/paystation/log2"
)

type PayStation struct {
	Log *log2.Log

	// current transaction
	insertedSoFar currency.Amount
	timeBought    int
	coins         [coinKinds]uint

	// committed since last Empty
	totalMoney  currency.Amount
	cashbox     currency.NominalGroup
	cashboxInit bool
}

func New() *PayStation {
	ps := &PayStation{}
	ps.initCashbox()
	return ps
}

// initCashbox makes zero PayStation{} usable without New().
func (self *PayStation) initCashbox() {
	if !self.cashboxInit {
		self.cashbox.SetValid(denominations[:])
		self.cashboxInit = true
	}
}

func (self *PayStation) AddPayment(coin currency.Nominal) error {
	idx, ok := coinIndex(coin)
	if !ok {
		self.Log.Debugf("paystation reject coin=%d", coin)
		return errors.Trace(InvalidCoinError{Coin: coin})
	}
	self.coins[idx]++
	self.insertedSoFar += currency.Amount(coin)
	self.timeBought = MinutesFor(self.insertedSoFar)
	self.Log.Debugf("paystation coin=%d inserted=%d display=%d", coin, self.insertedSoFar, self.timeBought)
	return nil
}

func (self *PayStation) ReadDisplay() int { return self.timeBought }

func (self *PayStation) Inserted() currency.Amount { return self.insertedSoFar }

func (self *PayStation) TotalMoney() currency.Amount { return self.totalMoney }

// Buy commits inserted money and returns receipt for time bought.
func (self *PayStation) Buy() Receipt {
	r := Receipt{minutes: self.timeBought}
	self.totalMoney += self.insertedSoFar
	self.initCashbox()
	for i, count := range self.coins {
		if count != 0 {
			if err := self.cashbox.Add(denominations[i], count); err != nil {
				self.Log.Error(errors.Annotate(err, "paystation buy cashbox"))
			}
		}
	}
	self.Log.Debugf("paystation buy paid=%d minutes=%d total=%d", self.insertedSoFar, r.minutes, self.totalMoney)
	self.reset()
	return r
}

// Cancel aborts transaction and returns inserted coins, zero counts omitted.
// Result is never nil and not shared with PayStation.
func (self *PayStation) Cancel() map[currency.Nominal]uint {
	refund := self.coinMap()
	self.Log.Debugf("paystation cancel refund=%s", currency.FormatCounts(refund))
	self.reset()
	return refund
}

// Empty returns revenue committed since previous Empty and resets it.
// Open transaction is not affected.
func (self *PayStation) Empty() currency.Amount {
	total := self.totalMoney
	self.totalMoney = 0
	self.initCashbox()
	self.cashbox.Clear()
	self.Log.Debugf("paystation empty total=%d", total)
	return total
}

// Cashbox returns coins committed since previous Empty, zero counts omitted.
func (self *PayStation) Cashbox() map[currency.Nominal]uint {
	self.initCashbox()
	return self.cashbox.Map()
}

func (self *PayStation) coinMap() map[currency.Nominal]uint {
	m := make(map[currency.Nominal]uint, coinKinds)
	for i, count := range self.coins {
		if count != 0 {
			m[denominations[i]] = count
		}
	}
	return m
}

func (self *PayStation) reset() {
	self.insertedSoFar = 0
	self.timeBought = 0
	self.coins = [coinKinds]uint{}
}
