// Command sixtyasm is the harness around the reference assembler, the
// emulator, and the self-hosting assembler (spec.md section 6, expanded in
// SPEC_FULL.md section 6.2).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/cpu"
	"github.com/retrobuild/sixtyasm/pkg/equiv"
	"github.com/retrobuild/sixtyasm/pkg/lexer"
	"github.com/retrobuild/sixtyasm/pkg/refasm"
	"github.com/retrobuild/sixtyasm/pkg/resolver"
	"github.com/retrobuild/sixtyasm/pkg/result"
	"github.com/retrobuild/sixtyasm/pkg/selfhost"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sixtyasm",
		Short: "Two-pass 6502 assembler, emulator, and self-hosting-assembler harness",
	}
	root.AddCommand(newResolveCmd(), newAssembleCmd(), newRunCmd(), newSelfhostCmd(), newVerifyBatchCmd())
	return root
}

func lexAndTokenize(path string) ([]lexer.Token, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return lexer.New(src).Tokens()
}

// --- resolve ---

func newResolveCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "resolve SRC",
		Short: "Run the label-resolution passes, writing resolved-form source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toks, err := lexAndTokenize(args[0])
			if err != nil {
				return err
			}
			resolved, err := resolver.Resolve(toks, catalog.New())
			if err != nil {
				return err
			}
			if out == "" {
				_, err = os.Stdout.Write(resolved)
				return err
			}
			return os.WriteFile(out, resolved, 0o644)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write resolved source here instead of stdout")
	return cmd
}

// --- assemble ---

func newAssembleCmd() *cobra.Command {
	var loadStr, out string
	var listing bool
	cmd := &cobra.Command{
		Use:   "assemble SRC",
		Short: "Run the full reference path: lex, resolve, assemble",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.New()
			toks, err := lexAndTokenize(args[0])
			if err != nil {
				return err
			}
			resolved, err := resolver.Resolve(toks, cat)
			if err != nil {
				return err
			}
			if loadStr != "" {
				v, err := strconv.ParseUint(loadStr, 16, 16)
				if err != nil {
					return fmt.Errorf("malformed --load: %w", err)
				}
				resolved = append([]byte(fmt.Sprintf("!%04X ", v)), resolved...)
			}
			img, err := refasm.Assemble(resolved, cat)
			if err != nil {
				return err
			}

			if listing {
				lo, hi, wrote := img.Range()
				if wrote {
					for addr := lo; ; addr++ {
						fmt.Printf("%04X: %02X\n", addr, img.At(addr))
						if addr == hi {
							break
						}
					}
				}
				return nil
			}

			if out == "" {
				return fmt.Errorf("assemble: --out is required unless --listing is given")
			}
			return os.WriteFile(out, img.Bytes(), 0o644)
		},
	}
	cmd.Flags().StringVar(&loadStr, "load", "", "hex relocation base applied before assembling")
	cmd.Flags().StringVar(&out, "out", "", "write raw binary image here")
	cmd.Flags().BoolVar(&listing, "listing", false, "print an output-address/byte listing instead of a binary (addresses include any relocation)")
	return cmd
}

// --- run ---

type loadSpec struct {
	path string
	addr uint16
}

func parseLoadSpec(s string) (loadSpec, error) {
	parts := strings.SplitN(s, "@", 2)
	if len(parts) != 2 {
		return loadSpec{}, fmt.Errorf("malformed --load %q, want PATH@HHHH", s)
	}
	addr, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return loadSpec{}, fmt.Errorf("malformed --load address %q: %w", parts[1], err)
	}
	return loadSpec{path: parts[0], addr: uint16(addr)}, nil
}

func parseTrapSpec(s string) (lo, hi uint16, err error) {
	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		l, err := strconv.ParseUint(parts[0], 16, 16)
		if err != nil {
			return 0, 0, err
		}
		h, err := strconv.ParseUint(parts[1], 16, 16)
		if err != nil {
			return 0, 0, err
		}
		return uint16(l), uint16(h), nil
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, 0, err
	}
	return uint16(v), 0xFFFF, nil
}

func newRunCmd() *cobra.Command {
	var loads []string
	var startStr, trapStr, dumpStr, compareStr string
	var maxCycles int
	var trace bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load binary images and run them on the emulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cpu.New(catalog.New())

			for _, l := range loads {
				spec, err := parseLoadSpec(l)
				if err != nil {
					return err
				}
				data, err := os.ReadFile(spec.path)
				if err != nil {
					return err
				}
				c.LoadRegion(spec.addr, data)
			}

			if startStr != "" {
				v, err := strconv.ParseUint(startStr, 16, 16)
				if err != nil {
					return fmt.Errorf("malformed --start: %w", err)
				}
				c.SetPC(uint16(v))
			}

			if trapStr != "" {
				lo, hi, err := parseTrapSpec(trapStr)
				if err != nil {
					return fmt.Errorf("malformed --trap: %w", err)
				}
				c.TrapLow, c.TrapHigh = lo, hi
			}

			if trace {
				c.Trace = func(line string) { fmt.Println(line) }
			}

			res := c.Run(cpu.RunConfig{MaxCycles: maxCycles})
			fmt.Printf("halted: %s at PC=%04X (cycles=%d)\n", res.Reason, res.FinalPC, res.CyclesRun)

			if dumpStr != "" {
				if err := dumpRegion(c, dumpStr); err != nil {
					return err
				}
			}

			exitNonZero := res.Reason == cpu.HaltCycleCap || res.Reason == cpu.HaltUndefinedOpcode

			if compareStr != "" {
				equal, err := compareRegion(c, compareStr)
				if err != nil {
					return err
				}
				if !equal {
					exitNonZero = true
				}
			}

			if exitNonZero {
				return fmt.Errorf("run did not succeed: %s", res.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&loads, "load", nil, "PATH@HHHH, repeatable")
	cmd.Flags().StringVar(&startStr, "start", "", "reset PC, hex")
	cmd.Flags().StringVar(&trapStr, "trap", "", "HHHH or LO:HI trap region, hex")
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "halt after N instructions (0 = unlimited)")
	cmd.Flags().StringVar(&dumpStr, "dump", "", "LO:HI:PATH, dump memory after halt")
	cmd.Flags().StringVar(&compareStr, "compare", "", "LO:HI:PATH, compare memory after halt")
	cmd.Flags().BoolVar(&trace, "trace", false, "emit one line per executed instruction")
	return cmd
}

func parseRangePath(s string) (lo, hi uint16, path string, err error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return 0, 0, "", fmt.Errorf("want LO:HI:PATH, got %q", s)
	}
	l, err := strconv.ParseUint(parts[0], 16, 16)
	if err != nil {
		return 0, 0, "", err
	}
	h, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return 0, 0, "", err
	}
	return uint16(l), uint16(h), parts[2], nil
}

func dumpRegion(c *cpu.CPU, spec string) error {
	lo, hi, path, err := parseRangePath(spec)
	if err != nil {
		return fmt.Errorf("malformed --dump: %w", err)
	}
	return os.WriteFile(path, c.DumpRegion(lo, hi), 0o644)
}

func compareRegion(c *cpu.CPU, spec string) (bool, error) {
	lo, hi, path, err := parseRangePath(spec)
	if err != nil {
		return false, fmt.Errorf("malformed --compare: %w", err)
	}
	want, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	got := c.DumpRegion(lo, hi)
	if len(want) != len(got) {
		return false, nil
	}
	for i := range want {
		if want[i] != got[i] {
			return false, nil
		}
	}
	return true, nil
}

// --- selfhost ---

func newSelfhostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selfhost SRC",
		Short: "Assemble SRC with the self-hosting assembler and compare against the reference assembler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.New()
			toks, err := lexAndTokenize(args[0])
			if err != nil {
				return err
			}
			resolved, err := resolver.Resolve(toks, cat)
			if err != nil {
				return err
			}
			boot, err := selfhost.Default()
			if err != nil {
				return err
			}
			finding := equiv.Check(filepath.Base(args[0]), resolved, cat, boot)
			if !finding.Match {
				fmt.Println(finding.Mismatch)
				return fmt.Errorf("selfhost: mismatch")
			}
			fmt.Printf("match: %d bytes, halted %s\n", finding.Bytes, finding.HaltReason)
			return nil
		},
	}
	return cmd
}

// --- verify-batch ---

func newVerifyBatchCmd() *cobra.Command {
	var workers int
	var verbose bool
	var jsonOut string

	cmd := &cobra.Command{
		Use:   "verify-batch DIR",
		Short: "Check every .s program in DIR with both assemblers concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := os.ReadDir(args[0])
			if err != nil {
				return err
			}
			cat := catalog.New()

			var tasks []equiv.Task
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".s" {
					continue
				}
				path := filepath.Join(args[0], e.Name())
				toks, err := lexAndTokenize(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				resolved, err := resolver.Resolve(toks, cat)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				tasks = append(tasks, equiv.Task{Name: e.Name(), Resolved: resolved})
			}

			pool := equiv.NewWorkerPool(workers)
			if err := pool.RunTasks(tasks, cat, verbose); err != nil {
				return err
			}

			matched, mismatched := pool.Results.Summary()
			fmt.Printf("%d matched, %d mismatched\n", matched, mismatched)

			if jsonOut != "" {
				if err := writeFindingsJSON(jsonOut, pool.Results); err != nil {
					return err
				}
			}

			if mismatched > 0 {
				return fmt.Errorf("verify-batch: %d programs mismatched", mismatched)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "number of workers (0 = NumCPU)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print each mismatch as it is found")
	cmd.Flags().StringVar(&jsonOut, "json", "", "write the finding table as JSON to this path")
	return cmd
}

func writeFindingsJSON(path string, table *result.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return result.WriteJSON(f, table.Findings())
}
