package eeprom

import (
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Duration is a time.Duration written as a string, such as "1ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// PinConfig names the GPIO pins wired to the programmer.
type PinConfig struct {
	ShiftData   string   `toml:"shift_data"`
	ShiftClock  string   `toml:"shift_clock"`
	ShiftLatch  string   `toml:"shift_latch"`
	WriteEnable string   `toml:"write_enable"`
	Data        []string `toml:"data"` // D0 first.
}

// TimingConfig overrides the write delays.
type TimingConfig struct {
	ClockEdge  Duration `toml:"clock_edge"`
	WriteCycle Duration `toml:"write_cycle"`
}

// Config is the programmer configuration file.
//
//	capacity = 8192
//
//	[pins]
//	shift_data = "GPIO17"
//	shift_clock = "GPIO27"
//	shift_latch = "GPIO22"
//	write_enable = "GPIO5"
//	data = ["GPIO6", "GPIO13", "GPIO19", "GPIO26", "GPIO12", "GPIO16", "GPIO20", "GPIO21"]
//
//	[timing]
//	clock_edge = "1us"
//	write_cycle = "1ms"
type Config struct {
	Capacity int          `toml:"capacity"`
	Pins     PinConfig    `toml:"pins"`
	Timing   TimingConfig `toml:"timing"`
}

// DecodeConfig reads a TOML configuration, filling in the defaults.
// Unknown keys are an error.
func DecodeConfig(r io.Reader) (cfg *Config, err error) {
	cfg = &Config{
		Capacity: CAPACITY,
		Timing: TimingConfig{
			ClockEdge:  Duration{CLOCK_EDGE},
			WriteCycle: Duration{WRITE_CYCLE},
		},
	}

	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		cfg = nil
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		cfg = nil
		err = &ErrLine{Line: strings.Join(keys, ","), Err: ErrConfigKey}
		return
	}

	if len(cfg.Pins.Data) != DATA_BITS {
		cfg = nil
		err = &ErrLine{Line: "data", Err: ErrPinMissing}
		return
	}

	return
}

// Programmer creates a programmer, resolving each configured pin name.
func (cfg *Config) Programmer(resolve func(name string) (Line, error)) (pg *Programmer, err error) {
	var pins Pins

	lines := [](struct {
		key  string
		name string
		line *Line
	}){
		{"shift_data", cfg.Pins.ShiftData, &pins.ShiftData},
		{"shift_clock", cfg.Pins.ShiftClock, &pins.ShiftClock},
		{"shift_latch", cfg.Pins.ShiftLatch, &pins.ShiftLatch},
		{"write_enable", cfg.Pins.WriteEnable, &pins.WriteEnable},
	}
	for n := range pins.Data {
		var name string
		if n < len(cfg.Pins.Data) {
			name = cfg.Pins.Data[n]
		}
		lines = append(lines, struct {
			key  string
			name string
			line *Line
		}{dataName(n), name, &pins.Data[n]})
	}

	for _, entry := range lines {
		if entry.name == "" {
			err = &ErrLine{Line: entry.key, Err: ErrPinMissing}
			return
		}
		*entry.line, err = resolve(entry.name)
		if err != nil {
			err = &ErrLine{Line: entry.key, Err: err}
			return
		}
	}

	pg = NewProgrammer(pins)
	pg.Capacity = cfg.Capacity
	pg.Timing = Timing{
		ClockEdge:  cfg.Timing.ClockEdge.Duration,
		WriteCycle: cfg.Timing.WriteCycle.Duration,
	}

	return
}

// Open initialises the host GPIO drivers and creates a programmer on the
// configured pins.
func Open(cfg *Config) (pg *Programmer, err error) {
	_, err = host.Init()
	if err != nil {
		return
	}

	pg, err = cfg.Programmer(resolvePin)
	if err != nil {
		return
	}

	err = pg.Init()
	if err != nil {
		pg = nil
	}
	return
}

// resolvePin looks up a pin in the periph.io registry.
func resolvePin(name string) (line Line, err error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		err = ErrPinMissing
		return
	}

	line = pin
	return
}
