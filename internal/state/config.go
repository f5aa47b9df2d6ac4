package state

import (
	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/kelseyhightower/envconfig"
	"github.com/temoto/paystation/helpers"
	"github.com/temoto/paystation/internal/terminal"
	"github.com/temoto/paystation/internal/ticket"
	"github.com/temoto/paystation/log2"
)

const (
	DefaultConfigPath  = "paystation.hcl"
	DefaultStationName = "paystation"
	EnvPrefix          = "paystation"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Station struct {
		Name string `hcl:"name"`
	} `hcl:"station"`
	Receipt  ticket.Config   `hcl:"receipt"`
	Terminal terminal.Config `hcl:"terminal"`
	Log      struct {
		Debug bool `hcl:"debug"`
	} `hcl:"log"`
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

// Env is process environment, PAYSTATION_CONFIG, PAYSTATION_DEBUG, PAYSTATION_STATION_NAME.
type Env struct {
	Config      string `default:"paystation.hcl"`
	Debug       bool
	StationName string `split_words:"true"`
}

func ReadEnv() (Env, error) {
	var e Env
	err := envconfig.Process(EnvPrefix, &e)
	return e, errors.Annotate(err, "config env")
}

// ApplyEnv overrides file config with environment.
func (c *Config) ApplyEnv(e Env) {
	if e.StationName != "" {
		c.Station.Name = e.StationName
	}
	if e.Debug {
		c.Log.Debug = true
	}
}

// Validate fills defaults and checks values.
func (c *Config) Validate() error {
	if c.Station.Name == "" {
		c.Station.Name = DefaultStationName
	}
	if c.Receipt.Width == 0 {
		c.Receipt.Width = ticket.DefaultWidth
	}
	if c.Receipt.Width < ticket.MinWidth {
		return errors.NotValidf("config: receipt.width=%d < %d", c.Receipt.Width, ticket.MinWidth)
	}
	if c.Terminal.EventBuffer < 0 {
		return errors.NotValidf("config: terminal.event_buffer=%d < 0", c.Terminal.EventBuffer)
	}
	if c.Terminal.EventBuffer == 0 {
		c.Terminal.EventBuffer = terminal.DefaultEventBuffer
	}
	return nil
}

func (c *Config) LogLevel() log2.Level {
	if c.Log.Debug {
		return log2.LDebug
	}
	return log2.LInfo
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, sources ...ConfigSource) (*Config, error) {
	if len(sources) == 0 {
		return nil, errors.New("code error ReadConfig() without sources")
	}

	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, source := range sources {
		c.read(log, fs, source, &errs)
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, sources ...ConfigSource) *Config {
	c, err := ReadConfig(log, fs, sources...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
