// Package equiv checks that the reference assembler (pkg/refasm) and the
// self-hosting assembler (pkg/selfhost) produce byte-identical output for
// the same resolved-form program, the central equivalence contract of
// spec.md section 9.
package equiv

import (
	"bytes"
	"fmt"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/cpu"
	"github.com/retrobuild/sixtyasm/pkg/refasm"
	"github.com/retrobuild/sixtyasm/pkg/result"
	"github.com/retrobuild/sixtyasm/pkg/selfhost"
)

// MaxCycles bounds how long the self-hosting assembler is allowed to run
// before a check is declared a non-halting failure.
const MaxCycles = 2_000_000

// Check assembles resolved once with the reference assembler and once by
// driving the self-hosting assembler on boot, and reports whether their
// output images agree byte-for-byte over the range from the lowest to the
// highest address the reference assembler wrote. Bytes the self-hosting
// assembler wrote outside that range are not compared.
func Check(name string, resolved []byte, cat *catalog.Catalogue, boot *selfhost.Bootstrap) result.Finding {
	refImg, err := refasm.Assemble(resolved, cat)
	if err != nil {
		return result.Finding{Name: name, Match: false, Mismatch: fmt.Sprintf("reference assembler error: %v", err)}
	}

	c, run := selfhost.Run(boot, cat, resolved, cpu.RunConfig{MaxCycles: MaxCycles})
	if run.Reason != cpu.HaltTrap {
		return result.Finding{
			Name:       name,
			Match:      false,
			Mismatch:   fmt.Sprintf("self-hosting assembler did not complete: halted %s at PC=%04X", run.Reason, run.FinalPC),
			HaltReason: run.Reason.String(),
		}
	}

	lo, hi, wrote := refImg.Range()
	if !wrote {
		return result.Finding{Name: name, Match: true, HaltReason: run.Reason.String()}
	}

	refBytes := refImg.Bytes()
	selfBytes := make([]byte, int(hi)-int(lo)+1)
	for i := range selfBytes {
		selfBytes[i] = c.ReadByte(lo + uint16(i))
	}

	if !bytes.Equal(refBytes, selfBytes) {
		return result.Finding{
			Name:       name,
			Match:      false,
			Mismatch:   fmt.Sprintf("output mismatch over %04X-%04X\n  reference: % X\n  selfhost:  % X", lo, hi, refBytes, selfBytes),
			HaltReason: run.Reason.String(),
			Bytes:      len(refBytes),
		}
	}

	return result.Finding{Name: name, Match: true, HaltReason: run.Reason.String(), Bytes: len(refBytes)}
}
