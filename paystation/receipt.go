package paystation

import "fmt"

// Receipt is proof of parking time bought. Immutable.
type Receipt struct {
	minutes int
}

func NewReceipt(minutes int) Receipt { return Receipt{minutes: minutes} }

// Value is parking minutes bought.
func (r Receipt) Value() int { return r.minutes }

func (r Receipt) String() string { return fmt.Sprintf("Receipt(minutes=%d)", r.minutes) }
