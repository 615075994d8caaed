// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"io"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/prefixtree/v2"

	"github.com/ezrec/ucrom/eeprom"
	"github.com/ezrec/ucrom/emulator"
	"github.com/ezrec/ucrom/microcode"
	"github.com/ezrec/ucrom/rom"
	"github.com/ezrec/ucrom/translate"
)

// session is the state shared by all commands.
type session struct {
	verbose bool
	script  string
	image   string
	output  string
	format  string
	pins    string

	mc  *microcode.Microcode
	img *rom.Image
}

type command struct {
	name  string
	usage string
	run   func(s *session, args []string) error
}

var commands = []command{
	{"image", "write the control store image", (*session).cmdImage},
	{"list", "list every address and its control word", (*session).cmdList},
	{"decode", "decode image addresses", (*session).cmdDecode},
	{"burn", "program an EEPROM over GPIO", (*session).cmdBurn},
	{"run", "run an assembly program on the image", (*session).cmdRun},
}

var commandTree = prefixtree.New[*command]()

func init() {
	for n := range commands {
		commandTree.Add(commands[n].name, &commands[n])
	}
}

func usage() {
	out := flag.CommandLine.Output()
	translate.Fprintf(out, "usage: %v [flags] <command> [args]\n\ncommands:\n", os.Args[0])
	for _, cmd := range commands {
		translate.Fprintf(out, "  %-8v %v\n", cmd.name, translate.From(cmd.usage))
	}
	translate.Fprintf(out, "\nflags:\n")
	flag.PrintDefaults()
}

func main() {
	s := &session{}

	flag.StringVar(&s.script, "m", "", ".star microcode script to use instead of the stock microcode")
	flag.StringVar(&s.image, "i", "", "control store image to read instead of building one")
	flag.StringVar(&s.output, "o", "-", "Output file")
	flag.StringVar(&s.format, "f", "bin", "Image format: bin or hex")
	flag.StringVar(&s.pins, "p", "pins.toml", "EEPROM programmer pin configuration")
	flag.BoolVar(&s.verbose, "v", false, "Verbose mode")
	flag.Usage = usage

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cmd, err := commandTree.FindValue(strings.ToLower(flag.Arg(0)))
	if err != nil {
		log.Fatalf("%v: %v: %v", os.Args[0], flag.Arg(0), err)
	}

	err = cmd.run(s, flag.Args()[1:])
	if err != nil {
		log.Fatalf("%v: %v: %v", os.Args[0], cmd.name, err)
	}
}

// microcode returns the microcode from the script, or the stock microcode.
func (s *session) microcode() (mc *microcode.Microcode, err error) {
	if s.mc != nil {
		return s.mc, nil
	}

	if len(s.script) == 0 {
		s.mc = microcode.DefaultMicrocode()
		return s.mc, nil
	}

	sc := &microcode.Script{Verbose: s.verbose}
	mc, err = sc.Load(s.script, nil)
	if err != nil {
		return
	}

	s.mc = mc
	return
}

// table builds the control word table.
func (s *session) table() (table *microcode.Table, err error) {
	mc, err := s.microcode()
	if err != nil {
		return
	}

	return microcode.Build(mc)
}

// rom returns the image file, or the image emitted from the table.
func (s *session) rom() (img *rom.Image, err error) {
	if s.img != nil {
		return s.img, nil
	}

	if len(s.image) != 0 {
		var inf *os.File
		inf, err = os.Open(s.image)
		if err != nil {
			return
		}
		defer inf.Close()

		img, err = rom.ReadImage(inf)
		if err != nil {
			return
		}
	} else {
		var table *microcode.Table
		table, err = s.table()
		if err != nil {
			return
		}

		img = &rom.Image{}
		em := &rom.Emitter{Verbose: s.verbose}
		err = em.Emit(table, img)
		if err != nil {
			return
		}
	}

	s.img = img
	return
}

type stdout struct{ io.Writer }

func (stdout) Close() error { return nil }

// create opens the output file, where "-" is stdout.
func (s *session) create() (w io.WriteCloser, err error) {
	if s.output == "-" {
		return stdout{os.Stdout}, nil
	}

	return os.Create(s.output)
}

func (s *session) cmdImage(args []string) (err error) {
	if len(args) != 0 {
		err = ErrArgs(args)
		return
	}

	if !slices.Contains([]string{"bin", "hex"}, s.format) {
		err = ErrFormat(s.format)
		return
	}

	img, err := s.rom()
	if err != nil {
		return
	}

	ouf, err := s.create()
	if err != nil {
		return
	}
	defer ouf.Close()

	switch s.format {
	case "bin":
		_, err = img.WriteTo(ouf)
	case "hex":
		err = img.WriteHex(ouf)
	}

	return
}

func (s *session) cmdList(args []string) (err error) {
	if len(args) != 0 {
		err = ErrArgs(args)
		return
	}

	mc, err := s.microcode()
	if err != nil {
		return
	}

	img, err := s.rom()
	if err != nil {
		return
	}

	ouf, err := s.create()
	if err != nil {
		return
	}
	defer ouf.Close()

	return img.Listing(ouf, mc.Mask)
}

func (s *session) cmdDecode(args []string) (err error) {
	mc, err := s.microcode()
	if err != nil {
		return
	}

	img, err := s.rom()
	if err != nil {
		return
	}

	for _, arg := range args {
		var value uint64
		value, err = strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return
		}
		if value >= rom.ADDRESS_COUNT {
			err = rom.ErrAddressRange
			return
		}

		addr := rom.Address(value)
		flags, _, op, step := addr.Decode()
		word := img.Wire(flags, op, step).Decode(mc.Mask)
		translate.Fprintf(os.Stdout, "%v  %02x  %v\n", addr, img[addr], word)
	}

	return
}

func (s *session) cmdBurn(args []string) (err error) {
	if len(args) != 0 {
		err = ErrArgs(args)
		return
	}

	table, err := s.table()
	if err != nil {
		return
	}

	inf, err := os.Open(s.pins)
	if err != nil {
		return
	}
	defer inf.Close()

	cfg, err := eeprom.DecodeConfig(inf)
	if err != nil {
		return
	}

	pg, err := eeprom.Open(cfg)
	if err != nil {
		return
	}
	pg.Verbose = s.verbose

	em := &rom.Emitter{Verbose: s.verbose}
	err = em.Emit(table, pg)
	if err != nil {
		return
	}

	translate.Fprintf(os.Stderr, "%v: %d bytes written\n", s.pins, pg.Writes())
	return
}

func (s *session) cmdRun(args []string) (err error) {
	if len(args) != 1 {
		err = ErrArgs(args)
		return
	}

	mc, err := s.microcode()
	if err != nil {
		return
	}

	img, err := s.rom()
	if err != nil {
		return
	}

	inf, err := os.Open(args[0])
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &emulator.Assembler{Verbose: s.verbose}
	prog, err := asm.Parse(inf)
	if err != nil {
		return
	}

	emu := emulator.NewEmulator(img, mc.Mask)
	emu.Verbose = s.verbose
	err = emu.Load(prog.Data)
	if err != nil {
		return
	}

	err = emu.Run(emulator.TICK_LIMIT)

	ouf, cerr := s.create()
	if cerr != nil {
		return cerr
	}
	defer ouf.Close()

	for _, value := range emu.Output {
		translate.Fprintf(ouf, "%d\n", value)
	}

	return
}
