package terminal

import (
	"fmt"
	"time"

	"github.com/temoto/paystation/currency"
)

//go:generate stringer -type=EventKind -trimprefix=Event
type EventKind uint8

const (
	EventInvalid EventKind = iota
	EventCredit
	EventReject
	EventBuy
	EventCancel
	EventEmpty
)

type Event struct {
	Created time.Time
	Err     error
	Amount  currency.Amount
	Minutes int
	Kind    EventKind
}

func (e *Event) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Event) String() string {
	return fmt.Sprintf("terminal.Event(kind=%s err='%s' created=%s amount=%s minutes=%d)",
		e.Kind.String(), e.Error(), e.Created.Format(time.RFC3339Nano), e.Amount.Format100I(), e.Minutes)
}
