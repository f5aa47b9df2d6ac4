package cli

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"
	"github.com/temoto/alive/v2"
)

// MainLoop feeds lines to exec until alive is stopped.
// Interactive prompt with completion when stdin is terminal, plain lines otherwise.
func MainLoop(a *alive.Alive, tag string, exec func(line string), complete prompt.Completer) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		select {
		case <-signalCh:
			a.Stop()
		case <-a.StopChan():
		}
		signal.Stop(signalCh)
	}()

	if isatty.IsTerminal(os.Stdin.Fd()) {
		go func() {
			prompt.New(exec, complete,
				prompt.OptionPrefix(tag+"> "),
				prompt.OptionTitle(tag),
			).Run()
			// Ctrl-D
			a.Stop()
		}()
		<-a.StopChan()
		return
	}
	ReadLines(a, os.Stdin, exec)
}

// ReadLines calls exec for every non-empty line until EOF or alive stop.
func ReadLines(a *alive.Alive, r io.Reader, exec func(line string)) {
	scanner := bufio.NewScanner(r)
	for a.IsRunning() && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		exec(line)
	}
}
