package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fleetmod/escadra/ammo"
	"github.com/fleetmod/escadra/memory"
	"github.com/fleetmod/escadra/record"
	"github.com/fleetmod/escadra/tll"
)

func main() {
	var (
		recordName  = flag.String("record", "ammo-1.163", "Record type (ammo-"+strings.Join(ammo.Versions(), ", ammo-")+")")
		inFile      = flag.String("in", "", "Record file (JSON or YAML)")
		format      = flag.String("format", "", "Input format: json or yaml (default from extension)")
		addr        = flag.Uint("addr", 0x100, "Address of the record in linear memory")
		configFile  = flag.String("config", "", "Memory configuration (YAML)")
		roundtrip   = flag.Bool("roundtrip", false, "Decode the image back and print it as JSON")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		graph       = flag.Bool("tll", false, "Treat -in as a raw memory image and print the node graph at -addr")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: escadra -in <record.json|yaml> [-record ammo-1.163] [-addr N] [-config memory.yaml]")
		fmt.Fprintln(os.Stderr, "       escadra -in <record.json|yaml> -roundtrip")
		fmt.Fprintln(os.Stderr, "       escadra -in <record.json|yaml> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       escadra -in <memory.bin> -tll -addr N")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		memory.SetLogger(logger)
		record.SetLogger(logger)
		tll.SetLogger(logger)
	}

	recordAddr, err := checkAddr(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := options{
		in:         *inFile,
		record:     *recordName,
		format:     *format,
		configFile: *configFile,
		addr:       recordAddr,
		roundtrip:  *roundtrip,
	}

	run := runReport
	switch {
	case *graph:
		run = runGraph
	case *interactive:
		run = runInteractive
	}
	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// checkAddr rejects addresses outside the 32-bit linear memory.
func checkAddr(addr uint) (uint32, error) {
	if uint64(addr) > math.MaxUint32 {
		return 0, fmt.Errorf("address %#x is beyond the 32-bit address space", addr)
	}
	return uint32(addr), nil
}

type options struct {
	in         string
	record     string
	format     string
	configFile string
	addr       uint32
	roundtrip  bool
}

func (o options) open(ctx context.Context) (*session, error) {
	cfg := memory.DefaultConfig()
	if o.configFile != "" {
		var err error
		if cfg, err = memory.LoadConfig(o.configFile); err != nil {
			return nil, err
		}
	}

	rec, err := loadRecord(o.in, o.record, o.format)
	if err != nil {
		return nil, err
	}
	return newSession(ctx, cfg, rec, o.addr)
}

func runReport(ctx context.Context, o options) error {
	s, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	p := printer{w: os.Stdout, color: term.IsTerminal(int(os.Stdout.Fd()))}
	if err := p.report(s); err != nil {
		return err
	}

	if !o.roundtrip {
		return nil
	}
	out, err := s.decode()
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("\n%s\n", data)
	return nil
}

func runGraph(_ context.Context, o options) error {
	data, err := os.ReadFile(o.in)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	arena, root, err := tll.Load(memory.NewBufferFrom(data), o.addr)
	if err != nil {
		return err
	}
	if root == tll.Nil {
		fmt.Println("empty graph")
		return nil
	}
	return arena.Print(os.Stdout, root)
}
