package lang

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestParseCached_SharesTree(t *testing.T) {
	t.Cleanup(ClearCache)
	ClearCache()

	ctx := context.Background()
	source := `system.init{"type": variable, "name": v, "datatype": number, "value": 1};`

	first, err := ParseCached(ctx, source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	second, err := ParseCached(ctx, source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if first != second {
		t.Error("expected identical cached tree on repeat parse")
	}
}

func TestParseCached_DistinctSources(t *testing.T) {
	t.Cleanup(ClearCache)
	ClearCache()

	ctx := context.Background()

	a, err := ParseCached(ctx, `system.init{"type": variable, "name": a, "datatype": number};`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	b, err := ParseCached(ctx, `system.init{"type": variable, "name": b, "datatype": number};`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if a == b {
		t.Error("expected distinct trees for distinct sources")
	}
}

func TestParseCached_ErrorsAreCached(t *testing.T) {
	t.Cleanup(ClearCache)
	ClearCache()

	ctx := context.Background()
	source := `system.unknown{"name": v};`

	for range 2 {
		if _, err := ParseCached(ctx, source); !errors.Is(err, ErrUnknownVerb) {
			t.Fatalf("expected unknown-verb error, got %v", err)
		}
	}
}

func TestParseCached_Concurrent(t *testing.T) {
	t.Cleanup(ClearCache)
	ClearCache()

	ctx := context.Background()
	source := `system.log{"type": info, "message": "x"};`

	var wg sync.WaitGroup

	trees := make([]*Program, 8)

	for i := range trees {
		wg.Add(1)

		go func() {
			defer wg.Done()

			prog, err := ParseCached(ctx, source)
			if err != nil {
				t.Errorf("parse error: %v", err)

				return
			}

			trees[i] = prog
		}()
	}

	wg.Wait()

	for i := 1; i < len(trees); i++ {
		if trees[i] != trees[0] {
			t.Fatal("expected all goroutines to share one tree")
		}
	}
}

func TestParseReader(t *testing.T) {
	t.Cleanup(ClearCache)
	ClearCache()

	prog, err := ParseReader(context.Background(),
		strings.NewReader(`system.log{"type": info, "message": "from reader"};`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("one"))
	b := Digest([]byte("two"))

	if a == b {
		t.Error("expected distinct digests for distinct content")
	}

	if a != Digest([]byte("one")) {
		t.Error("expected stable digest for identical content")
	}
}
