// Package main provides the command-line entry point for armsim.
// armsim is a functional ARMv5e instruction-set simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/archsim/armv5e/emu"
)

var (
	configPath = flag.String("config", "", "Path to a YAML emulator configuration file")
	verbose    = flag.Bool("v", false, "Enable per-instruction tracing")
	entry      = flag.Uint64("entry", 0, "Load address and initial PC for the program image")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: armsim [options] <program.bin>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	programPath := flag.Arg(0)

	config := emu.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = emu.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	program, err := os.ReadFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading program image: %v\n", err)
		os.Exit(1)
	}

	log := logr.Discard()
	traceLevel := config.TraceLevel
	if *verbose {
		traceLevel = 2
	}
	if traceLevel > 0 {
		stdr.SetVerbosity(traceLevel)
		log = stdr.New(nil)
	}

	exitCode := runEmulation(program, uint32(*entry), config, log)
	os.Exit(int(exitCode))
}

func runEmulation(program []byte, entryAddr uint32, config *emu.Config, log logr.Logger) int32 {
	emulator := emu.NewEmulator(
		emu.WithLogger(log),
	)
	emulator.LoadProgram(entryAddr, program)

	syscallHandler := emu.NewDefaultSyscallHandler(emulator.RegFile(), emulator.Memory(), os.Stdout, os.Stderr)
	syscallHandler.SetStdin(os.Stdin)

	helpers := emu.NewSyscallHelpers(emulator.RegFile(), emulator.Memory())
	helpers.SetProgArgs(config.RAMEnd, config.Args)
	if config.InitialSP != 0 {
		emulator.RegFile().Write(13, config.InitialSP)
	}

	emulator.SetSyscallHandler(syscallHandler)

	return emulator.Run()
}
