// Package ticket turns paystation receipt into printable parking ticket.
package ticket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/temoto/paystation/currency"
	"github.com/temoto/paystation/paystation"
)

const TimeFormat = "2006-01-02 15:04"

type Ticket struct {
	ID      uuid.UUID
	Station string
	Issued  time.Time
	Minutes int
	Paid    currency.Amount
}

func New(station string, r paystation.Receipt, paid currency.Amount, issued time.Time) Ticket {
	return Ticket{
		ID:      uuid.New(),
		Station: station,
		Issued:  issued,
		Minutes: r.Value(),
		Paid:    paid,
	}
}

func (t Ticket) Receipt() paystation.Receipt { return paystation.NewReceipt(t.Minutes) }

func (t Ticket) ValidUntil() time.Time {
	return t.Issued.Add(time.Duration(t.Minutes) * time.Minute)
}

// Code is machine readable form for QR and enforcement scanners.
// PS1:<id>:<issued unix>:<minutes>
func (t Ticket) Code() string {
	return fmt.Sprintf("PS1:%s:%d:%d", t.ID.String(), t.Issued.Unix(), t.Minutes)
}

func (t Ticket) ShortID() string { return t.ID.String()[:8] }

func (t Ticket) String() string {
	return fmt.Sprintf("ticket.Ticket(id=%s station=%s minutes=%d paid=%s issued=%s)",
		t.ShortID(), t.Station, t.Minutes, t.Paid.Format100I(), t.Issued.Format(time.RFC3339))
}
