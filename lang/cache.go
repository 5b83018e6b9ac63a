package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache tracks parse results keyed by source digest. Programs are
// immutable after parsing, so a cached tree can be shared freely between
// interpreters.
var globalCache sync.Map

// cacheState holds the single-flight parse result for one source text.
type cacheState struct {
	once sync.Once
	prog *Program
	err  error
}

// Digest returns the content hash of source used as the cache key and
// recorded in build manifests, formatted as lowercase base-36.
func Digest(source []byte) string {
	return strconv.FormatUint(xxh3.Hash(source), 36)
}

// ParseReader reads all of r and parses it. The reader is wrapped with
// asynchronous read-ahead so input is fetched concurrently with hashing
// and parsing of earlier chunks.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	cfg := makeOptions(opts...)

	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	cfg.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true))

	return ParseCached(ctx, string(data), opts...)
}

// ParseCached parses source with memoization: each distinct source text
// is parsed at most once per process, concurrent callers share the
// single parse, and subsequent calls return the cached tree.
func ParseCached(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Program, error) {
	cfg := makeOptions(opts...)

	key := Digest([]byte(source))

	entry := new(cacheState)
	value, hit := globalCache.LoadOrStore(key, entry)

	st, ok := value.(*cacheState)
	if !ok {
		return nil, ErrReadInput.
			With(slog.String("issue", "invalid cache entry type"))
	}

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("digest", key),
		slog.Bool("cache_hit", hit))

	st.once.Do(func() {
		st.prog, st.err = Parse(ctx, source, opts...)
	})

	return st.prog, st.err
}

// ClearCache discards every cached parse result. This is primarily
// useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache = sync.Map{}
}
