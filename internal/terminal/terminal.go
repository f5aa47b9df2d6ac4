// Package terminal owns one PayStation and serializes access to it.
// Coin acceptor, console and collection staff may call Terminal from any
// goroutine; every operation runs on the Run goroutine in arrival order.
package terminal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/atomic_clock"
	"github.com/temoto/paystation/currency"
	"github.com/temoto/paystation/internal/ticket"
	"github.com/temoto/paystation/log2"
	"github.com/temoto/paystation/paystation"
)

const DefaultEventBuffer = 32

var (
	ErrStopped        = errors.New("terminal stopped")
	ErrAlreadyRunning = errors.New("terminal already running")
)

type Config struct {
	EventBuffer int `hcl:"event_buffer"`
}

type Options struct {
	Station string
	Config  Config
	Log     *log2.Log
	// nil = wall clock
	Clock clock.Clock
}

type request struct {
	f    func(ps *paystation.PayStation, now time.Time)
	done chan struct{}
}

type Terminal struct {
	Log *log2.Log

	station string
	clock   clock.Clock
	ps      *paystation.PayStation
	reqs    chan request
	events  chan Event
	last    atomic_clock.Clock

	started  uint32
	doneOnce sync.Once
	done     chan struct{}
}

func New(opt Options) *Terminal {
	if opt.Clock == nil {
		opt.Clock = clock.New()
	}
	if opt.Config.EventBuffer <= 0 {
		opt.Config.EventBuffer = DefaultEventBuffer
	}
	ps := paystation.New()
	ps.Log = opt.Log
	t := &Terminal{
		Log:     opt.Log,
		station: opt.Station,
		clock:   opt.Clock,
		ps:      ps,
		reqs:    make(chan request),
		events:  make(chan Event, opt.Config.EventBuffer),
		done:    make(chan struct{}),
	}
	t.last.Set(opt.Clock.Now().UnixNano())
	return t
}

func (t *Terminal) Station() string { return t.station }

// Events are delivered best effort, full buffer drops new events.
func (t *Terminal) Events() <-chan Event { return t.events }

// Run processes requests until ctx is done or alive is stopped.
// Terminal runs once; calls after Run returned fail with ErrStopped.
func (t *Terminal) Run(ctx context.Context, a *alive.Alive) error {
	if !atomic.CompareAndSwapUint32(&t.started, 0, 1) {
		return ErrAlreadyRunning
	}
	defer t.doneOnce.Do(func() { close(t.done) })
	if !a.Add(1) {
		return ErrStopped
	}
	defer a.Done()

	t.Log.Debugf("terminal=%s running", t.station)
	stopch := a.StopChan()
	for {
		select {
		case r := <-t.reqs:
			now := t.clock.Now()
			t.last.Set(now.UnixNano())
			r.f(t.ps, now)
			close(r.done)

		case <-stopch:
			t.Log.Debugf("terminal=%s stop", t.station)
			return nil

		case <-ctx.Done():
			t.Log.Debugf("terminal=%s context done", t.station)
			return ctx.Err()
		}
	}
}

// IdleFor is time since last processed operation or since New.
func (t *Terminal) IdleFor() time.Duration {
	var now atomic_clock.Clock
	now.Set(t.clock.Now().UnixNano())
	d := now.Sub(&t.last)
	if d < 0 {
		return 0
	}
	return d
}

func (t *Terminal) Insert(ctx context.Context, coin currency.Nominal) (int, error) {
	var minutes int
	var err error
	e := t.do(ctx, func(ps *paystation.PayStation, now time.Time) {
		err = ps.AddPayment(coin)
		minutes = ps.ReadDisplay()
		if err != nil {
			t.emit(Event{Created: now, Kind: EventReject, Amount: currency.Amount(coin), Minutes: minutes, Err: err})
			return
		}
		t.emit(Event{Created: now, Kind: EventCredit, Amount: currency.Amount(coin), Minutes: minutes})
	})
	if e != nil {
		return 0, e
	}
	if err != nil {
		return minutes, errors.Annotatef(err, "terminal=%s insert", t.station)
	}
	return minutes, nil
}

func (t *Terminal) Display(ctx context.Context) (int, error) {
	var minutes int
	err := t.do(ctx, func(ps *paystation.PayStation, _ time.Time) { minutes = ps.ReadDisplay() })
	return minutes, err
}

func (t *Terminal) Buy(ctx context.Context) (ticket.Ticket, error) {
	var tk ticket.Ticket
	err := t.do(ctx, func(ps *paystation.PayStation, now time.Time) {
		paid := ps.Inserted()
		r := ps.Buy()
		tk = ticket.New(t.station, r, paid, now)
		t.Log.Infof("terminal=%s buy %s", t.station, tk.String())
		t.emit(Event{Created: now, Kind: EventBuy, Amount: paid, Minutes: r.Value()})
	})
	return tk, err
}

func (t *Terminal) Cancel(ctx context.Context) (map[currency.Nominal]uint, error) {
	var refund map[currency.Nominal]uint
	err := t.do(ctx, func(ps *paystation.PayStation, now time.Time) {
		amount := ps.Inserted()
		refund = ps.Cancel()
		t.Log.Infof("terminal=%s cancel refund=%s", t.station, currency.FormatCounts(refund))
		t.emit(Event{Created: now, Kind: EventCancel, Amount: amount})
	})
	return refund, err
}

func (t *Terminal) Empty(ctx context.Context) (currency.Amount, error) {
	var total currency.Amount
	err := t.do(ctx, func(ps *paystation.PayStation, now time.Time) {
		total = ps.Empty()
		t.Log.Infof("terminal=%s empty total=%s", t.station, total.Format100I())
		t.emit(Event{Created: now, Kind: EventEmpty, Amount: total})
	})
	return total, err
}

func (t *Terminal) Total(ctx context.Context) (currency.Amount, error) {
	var total currency.Amount
	err := t.do(ctx, func(ps *paystation.PayStation, _ time.Time) { total = ps.TotalMoney() })
	return total, err
}

func (t *Terminal) Cashbox(ctx context.Context) (map[currency.Nominal]uint, error) {
	var m map[currency.Nominal]uint
	err := t.do(ctx, func(ps *paystation.PayStation, _ time.Time) { m = ps.Cashbox() })
	return m, err
}

func (t *Terminal) do(ctx context.Context, f func(*paystation.PayStation, time.Time)) error {
	r := request{f: f, done: make(chan struct{})}
	select {
	case t.reqs <- r:
	case <-t.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// Run received request and closes done right after f
	<-r.done
	return nil
}

func (t *Terminal) emit(e Event) {
	select {
	case t.events <- e:
	default:
		t.Log.Errorf("terminal=%s event buffer full, dropped %s", t.station, e.String())
	}
}
