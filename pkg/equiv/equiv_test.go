package equiv

import (
	"testing"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/lexer"
	"github.com/retrobuild/sixtyasm/pkg/resolver"
	"github.com/retrobuild/sixtyasm/pkg/selfhost"
)

func resolveFriendly(t *testing.T, cat *catalog.Catalogue, src string) []byte {
	t.Helper()
	toks, err := lexer.New([]byte(src)).Tokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	resolved, err := resolver.Resolve(toks, cat)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return resolved
}

func TestCheckMatchesOnValidProgram(t *testing.T) {
	cat := catalog.New()
	boot, err := selfhost.Build(cat)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	resolved := resolveFriendly(t, cat, "@8000\nLDA# 2A\nSTA 0400\nEND ")
	finding := Check("valid", resolved, cat, boot)
	if !finding.Match {
		t.Fatalf("expected match, got mismatch: %s", finding.Mismatch)
	}
}

func TestWorkerPoolAggregatesFindings(t *testing.T) {
	cat := catalog.New()
	tasks := []Task{
		{Name: "a", Resolved: resolveFriendly(t, cat, "@8000\nEND ")},
		{Name: "b", Resolved: resolveFriendly(t, cat, `@8000
"OK"
END `)},
	}
	pool := NewWorkerPool(2)
	if err := pool.RunTasks(tasks, cat, false); err != nil {
		t.Fatalf("RunTasks: %v", err)
	}
	matched, mismatched := pool.Results.Summary()
	if mismatched != 0 || matched != 2 {
		t.Fatalf("Summary = matched=%d mismatched=%d, want 2/0", matched, mismatched)
	}
}
