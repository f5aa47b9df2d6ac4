package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/paystation/internal/terminal"
	"github.com/temoto/paystation/internal/ticket"
	"github.com/temoto/paystation/log2"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Clock        clock.Clock
	Config       *Config
	Log          *log2.Log
	Printer      *ticket.Printer
	Terminal     *terminal.Terminal

	runErr  chan error
	runOnce sync.Once
}

const ContextKey = "run/state-global"

func NewContext(log *log2.Log) (context.Context, *Global) {
	g := &Global{
		Alive:        alive.NewAlive(),
		BuildVersion: "unknown",
		Log:          log,
		runErr:       make(chan error, 1),
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, ContextKey, g)
	return ctx, g
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// Init validates config, builds printer and starts terminal.
// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.Config = cfg
	g.Log.SetLevel(cfg.LogLevel())
	g.Log.Infof("build version=%s station=%s", g.BuildVersion, cfg.Station.Name)

	p, err := ticket.NewPrinter(cfg.Receipt, g.Log)
	if err != nil {
		return errors.Annotate(err, "printer init")
	}
	g.Printer = p

	g.Terminal = terminal.New(terminal.Options{
		Station: cfg.Station.Name,
		Config:  cfg.Terminal,
		Log:     g.Log,
		Clock:   g.Clock,
	})
	go func() {
		err := g.Terminal.Run(ctx, g.Alive)
		if err != nil && err != terminal.ErrStopped {
			g.Error(errors.Annotate(err, "terminal run"))
		}
		g.runErr <- err
	}()
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	if err := g.Init(ctx, cfg); err != nil {
		g.Log.Fatal(errors.ErrorStack(err))
	}
}

// Stop terminal and wait until it returns.
func (g *Global) Stop() {
	g.Alive.Stop()
	g.Alive.Wait()
	if g.Terminal != nil {
		g.runOnce.Do(func() { <-g.runErr })
	}
}

func (g *Global) Error(err error) {
	if err == nil {
		return
	}
	g.Log.Error(errors.ErrorStack(err))
}
