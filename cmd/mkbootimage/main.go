// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Mkbootimage compiles BIF boot image descriptions into binary boot
// images for the Xilinx Zynq and ZynqMP platforms.
package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/zynqtools/mkbootimage/internal/bif"
	"github.com/zynqtools/mkbootimage/internal/bootrom"
)

const version = "2.3"

func main() {
	var args arguments
	cmd := &cli.Command{
		Name:      "mkbootimage",
		Usage:     "generate bootloader images for Xilinx Zynq based platforms",
		Version:   version,
		ArgsUsage: "[<input> [<output>]]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "zynqmp",
				Aliases:     []string{"u"},
				Usage:       "generate files for ZynqMP (default is Zynq)",
				Destination: &args.zynqmp,
			},
			&cli.BoolFlag{
				Name:        "parse-only",
				Aliases:     []string{"p"},
				Usage:       "analyze BIF grammar, but don't generate any files",
				Destination: &args.parseOnly,
			},
			&cli.BoolFlag{
				Name:        "bit2bin",
				Aliases:     []string{"b"},
				Usage:       "treat input as bitstream and auto-generate BIF in memory",
				Destination: &args.bit2bin,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the partition report as JSON",
				Destination: &args.jsonOut,
			},
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "input BIF/bit `FILE` (default: positional or derived)",
				Destination: &args.input,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output bin `FILE` (default: derived from input)",
				Destination: &args.output,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := args.resolve(cmd.Args().Slice()); err != nil {
				return err
			}
			return run(&args)
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mkbootimage:", err)
		os.Exit(1)
	}
}

type arguments struct {
	zynqmp    bool
	parseOnly bool
	bit2bin   bool
	jsonOut   bool
	input     string
	output    string
}

// resolve merges positional arguments with flags and derives the
// missing file name from the given one.
func (a *arguments) resolve(pos []string) error {
	switch len(pos) {
	case 0:
	case 1:
		if a.input != "" || a.output != "" {
			return fmt.Errorf("positional input conflicts with -i/-o")
		}
		a.input = pos[0]
	case 2:
		if a.input != "" || a.output != "" {
			return fmt.Errorf("positional arguments conflict with -i/-o")
		}
		a.input, a.output = pos[0], pos[1]
	default:
		return fmt.Errorf("too many arguments")
	}
	if a.input == "" && a.output == "" {
		return fmt.Errorf("no input or output file given")
	}
	if a.input == "" {
		ext := ".bif"
		if a.bit2bin {
			ext = ".bit"
		}
		a.input = deriveFile(a.output, ext)
	}
	if a.output == "" && !a.parseOnly {
		a.output = deriveFile(a.input, ".bin")
	}
	return nil
}

func run(args *arguments) error {
	arch, ops := bif.ArchZynq, bootrom.ZynqOps
	if args.zynqmp {
		arch, ops = bif.ArchZynqMP, bootrom.ZynqMPOps
	}
	if !args.jsonOut {
		fmt.Println("mkbootimage", version)
	}

	var (
		cfg *bif.Config
		err error
	)
	if args.bit2bin {
		src := fmt.Sprintf("all: { %s }\n", args.input)
		cfg, err = bif.Parse([]byte(src), "<bit2bin>", arch)
	} else {
		var src []byte
		src, err = os.ReadFile(args.input)
		if err != nil {
			return err
		}
		cfg, err = bif.Parse(src, args.input, arch)
	}
	if err != nil {
		return err
	}

	if args.jsonOut {
		if err := printJSONReport(os.Stdout, cfg); err != nil {
			return err
		}
	} else {
		printReport(os.Stdout, args.input, cfg)
	}
	if args.parseOnly {
		if !args.jsonOut {
			fmt.Println("The source BIF has a correct syntax")
		}
		return nil
	}

	plan, err := bootrom.Estimate(cfg, ops)
	if err != nil {
		return err
	}
	if plan.Words == 0 {
		return fmt.Errorf("%s: %w", args.input, bootrom.ErrNoPartitions)
	}
	// Allocation convenience only; the written image is truncated to
	// the word count Compose reports.
	img := make([]uint32, nextPow2(plan.Words))
	n, err := bootrom.Compose(img, cfg, ops, plan)
	if err != nil {
		return err
	}

	// The output file is only touched once the image is complete.
	f, err := os.Create(args.output)
	if err != nil {
		return fmt.Errorf("could not open output file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, img[:n]); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if !args.jsonOut {
		fmt.Println("All done, quitting")
	}
	return nil
}

func nextPow2(n int) int {
	p := 2
	for p < n {
		p *= 2
	}
	return p
}
