package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/paystation/helpers/cli"
	"github.com/temoto/paystation/internal/state"
	"github.com/temoto/paystation/log2"
)

var BuildVersion string = "unknown" // set by ldflags -X

func main() {
	log := log2.NewStderr(log2.LInfo)
	if sdnotify(log, "STATUS=starting") {
		// we're under systemd, assume journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	env, err := state.ReadEnv()
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	flagConfig := flag.String("config", env.Config, "config file, HCL")
	flag.Parse()
	// default path may be absent, explicit must exist
	explicit := *flagConfig != state.DefaultConfigPath

	fs := state.NewOsFullReader()
	dir, name := filepath.Split(*flagConfig)
	if err := fs.SetBase(dir); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	config := state.MustReadConfig(log, fs, state.ConfigSource{Name: name, Optional: !explicit})
	config.ApplyEnv(env)

	ctx, g := state.NewContext(log)
	g.BuildVersion = BuildVersion
	g.MustInit(ctx, config)
	sdnotify(log, daemon.SdNotifyReady)

	c := newConsole(ctx, os.Stdout)
	c.printf("pay station %s ready, type help", config.Station.Name)
	cli.MainLoop(g.Alive, "paystation", c.exec, c.complete)

	sdnotify(log, daemon.SdNotifyStopping)
	g.Stop()
	log.Infof("stopped")
}

func sdnotify(log *log2.Log, s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
