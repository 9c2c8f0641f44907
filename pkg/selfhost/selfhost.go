// Package selfhost builds and drives the self-hosting "punch-card"
// assembler: the in-dialect program in source.go, bootstrapped once by the
// reference assembler and thereafter run entirely on the emulator (spec.md
// sections 4.7 and 9).
package selfhost

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/cpu"
	"github.com/retrobuild/sixtyasm/pkg/lexer"
	"github.com/retrobuild/sixtyasm/pkg/refasm"
	"github.com/retrobuild/sixtyasm/pkg/resolver"
)

var (
	defaultOnce sync.Once
	defaultBoot *Bootstrap
	defaultErr  error
)

// Default lazily builds and caches the bootstrap image for catalog.New(),
// the catalogue every cmd/sixtyasm invocation uses. Tests and callers that
// need a different catalogue should call Build directly instead.
func Default() (*Bootstrap, error) {
	defaultOnce.Do(func() {
		defaultBoot, defaultErr = Build(catalog.New())
	})
	return defaultBoot, defaultErr
}

// Bootstrap holds the assembled self-hosting assembler: the friendly-form
// text it was written in, its resolved form, and the machine-code image
// produced from that resolved form by the reference assembler.
type Bootstrap struct {
	Friendly string
	Resolved []byte
	Image    *refasm.Image
}

// Build renders the self-hosting assembler's source against cat's layout
// and runs it through the resolver and reference assembler, producing the
// bootstrap image. It is deterministic: the same catalogue always yields
// the same image, which is what lets Default build it once and share it.
func Build(cat *catalog.Catalogue) (*Bootstrap, error) {
	catEnd := CatalogueBase + uint16(len(cat.Layout()))

	tmpl, err := template.New("selfhost").Parse(sourceTemplate)
	if err != nil {
		return nil, fmt.Errorf("selfhost: parse source template: %w", err)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		CatEndLow  string
		CatEndHigh string
	}{
		CatEndLow:  fmt.Sprintf("%02X", catEnd&0xFF),
		CatEndHigh: fmt.Sprintf("%02X", catEnd>>8),
	})
	if err != nil {
		return nil, fmt.Errorf("selfhost: render source template: %w", err)
	}
	friendly := buf.String()

	toks, err := lexer.New([]byte(friendly)).Tokens()
	if err != nil {
		return nil, fmt.Errorf("selfhost: lex bootstrap source: %w", err)
	}
	resolved, err := resolver.Resolve(toks, cat)
	if err != nil {
		return nil, fmt.Errorf("selfhost: resolve bootstrap source: %w", err)
	}
	img, err := refasm.Assemble(resolved, cat)
	if err != nil {
		return nil, fmt.Errorf("selfhost: assemble bootstrap source: %w", err)
	}

	return &Bootstrap{Friendly: friendly, Resolved: resolved, Image: img}, nil
}

// Boot loads b's image at LoadBase, cat's byte-laid-out table at
// CatalogueBase, and resolvedInput (the program the self-hosting assembler
// is being asked to assemble) at SourceRegionBase, then points the given
// CPU's program counter at the assembler's entry point.
func Boot(c *cpu.CPU, b *Bootstrap, cat *catalog.Catalogue, resolvedInput []byte) {
	lo, _, wrote := b.Image.Range()
	if wrote {
		bytesOut := b.Image.Bytes()
		for i, v := range bytesOut {
			c.WriteByte(lo+uint16(i), v)
		}
	}

	layout := cat.Layout()
	for i, v := range layout {
		c.WriteByte(CatalogueBase+uint16(i), v)
	}

	for i, v := range resolvedInput {
		c.WriteByte(SourceRegionBase+uint16(i), v)
	}

	c.SetPC(LoadBase)
}

// Run boots and drives the self-hosting assembler on a fresh emulated
// machine until it reaches ProducedEntryPoint (successful END) or halts
// for another reason, returning the resulting RunResult. cfg bounds the
// instruction count so a malformed input cannot loop forever.
func Run(b *Bootstrap, cat *catalog.Catalogue, resolvedInput []byte, cfg cpu.RunConfig) (*cpu.CPU, cpu.RunResult) {
	c := cpu.New(cat)
	c.TrapLow, c.TrapHigh = ProducedEntryPoint, ProducedEntryPoint+1
	c.HaltOnBreak = true
	Boot(c, b, cat, resolvedInput)
	res := c.Run(cfg)
	return c, res
}
