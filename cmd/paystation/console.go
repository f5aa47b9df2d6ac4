package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/paystation/currency"
	"github.com/temoto/paystation/helpers"
	"github.com/temoto/paystation/internal/state"
	"github.com/temoto/paystation/paystation"
)

type command struct {
	name  string
	alias string
	args  string
	help  string
	f     func(ctx context.Context, c *console, args []string) error
}

type console struct {
	ctx      context.Context
	g        *state.Global
	out      io.Writer
	commands []command
}

func newConsole(ctx context.Context, out io.Writer) *console {
	c := &console{
		ctx: ctx,
		g:   state.GetGlobal(ctx),
		out: out,
	}
	c.commands = []command{
		{"insert", "i", "COIN", "insert coin 5, 10 or 25", cmdInsert},
		{"display", "d", "", "show parking minutes bought so far", cmdDisplay},
		{"buy", "b", "", "buy parking time and print ticket", cmdBuy},
		{"cancel", "c", "", "cancel and return inserted coins", cmdCancel},
		{"empty", "", "", "collect revenue, reset to zero", cmdEmpty},
		{"total", "", "", "show revenue since last collection", cmdTotal},
		{"idle", "", "", "time since last operation", cmdIdle},
		{"help", "?", "", "this message", cmdHelp},
		{"quit", "q", "", "stop terminal and exit", cmdQuit},
	}
	return c
}

func (c *console) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *console) exec(line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	name, args := parts[0], parts[1:]
	for _, cmd := range c.commands {
		if name == cmd.name || (cmd.alias != "" && name == cmd.alias) {
			if err := cmd.f(c.ctx, c, args); err != nil {
				c.g.Log.Debugf("console line='%s' err=%s", line, errors.ErrorStack(err))
				c.printf("error: %v", err)
			}
			return
		}
	}
	c.printf("error: unknown command '%s', try help", name)
}

func (c *console) complete(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		if strings.HasPrefix(d.TextBeforeCursor(), "insert ") || strings.HasPrefix(d.TextBeforeCursor(), "i ") {
			ss := make([]prompt.Suggest, 0, 3)
			for _, n := range paystation.Denominations() {
				ss = append(ss, prompt.Suggest{Text: strconv.Itoa(int(n))})
			}
			return prompt.FilterHasPrefix(ss, d.GetWordBeforeCursor(), false)
		}
		return nil
	}
	ss := make([]prompt.Suggest, 0, len(c.commands))
	for _, cmd := range c.commands {
		ss = append(ss, prompt.Suggest{Text: cmd.name, Description: cmd.help})
	}
	return prompt.FilterHasPrefix(ss, d.GetWordBeforeCursor(), true)
}

func cmdInsert(ctx context.Context, c *console, args []string) error {
	if len(args) != 1 {
		return errors.Errorf("usage: insert COIN")
	}
	v, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return errors.Annotatef(err, "coin=%s", args[0])
	}
	minutes, err := c.g.Terminal.Insert(ctx, currency.Nominal(v))
	if paystation.IsInvalidCoin(err) {
		c.printf("rejected coin %d, accepted: %s", v, formatDenominations())
		c.printf("display: %d min", minutes)
		return nil
	}
	if err != nil {
		return err
	}
	c.printf("display: %d min", minutes)
	return nil
}

func cmdDisplay(ctx context.Context, c *console, args []string) error {
	minutes, err := c.g.Terminal.Display(ctx)
	if err != nil {
		return err
	}
	c.printf("display: %d min", minutes)
	return nil
}

func cmdBuy(ctx context.Context, c *console, args []string) error {
	tk, err := c.g.Terminal.Buy(ctx)
	if err != nil {
		return err
	}
	b, err := c.g.Printer.Render(tk)
	if err != nil {
		return errors.Annotate(err, "print ticket")
	}
	return helpers.WriteAll(c.out, b)
}

func cmdCancel(ctx context.Context, c *console, args []string) error {
	refund, err := c.g.Terminal.Cancel(ctx)
	if err != nil {
		return err
	}
	if len(refund) == 0 {
		c.printf("refund: none")
		return nil
	}
	c.printf("refund: %s", currency.FormatCounts(refund))
	return nil
}

func cmdEmpty(ctx context.Context, c *console, args []string) error {
	total, err := c.g.Terminal.Empty(ctx)
	if err != nil {
		return err
	}
	c.printf("collected: %s", total.Format100I())
	return nil
}

func cmdTotal(ctx context.Context, c *console, args []string) error {
	total, err := c.g.Terminal.Total(ctx)
	if err != nil {
		return err
	}
	c.printf("total: %s", total.Format100I())
	return nil
}

func cmdIdle(ctx context.Context, c *console, args []string) error {
	c.printf("idle: %s", c.g.Terminal.IdleFor().String())
	return nil
}

func cmdHelp(ctx context.Context, c *console, args []string) error {
	for _, cmd := range c.commands {
		name := cmd.name
		if cmd.args != "" {
			name += " " + cmd.args
		}
		c.printf("  %-14s %s", name, cmd.help)
	}
	return nil
}

func cmdQuit(ctx context.Context, c *console, args []string) error {
	c.g.Alive.Stop()
	return nil
}

func formatDenominations() string {
	ds := paystation.Denominations()
	ss := make([]string, len(ds))
	for i, d := range ds {
		ss[i] = strconv.Itoa(int(d))
	}
	return strings.Join(ss, ",")
}
