package snapcache

import (
	"encoding/hex"
	"encoding/json"
	"strconv"

	"golang.org/x/crypto/blake2b"

	"github.com/hazyhaar/domsnap/groundtruth"
	"github.com/hazyhaar/domsnap/snapshot"
)

// Key digests a Transform request: the classification tables, markup,
// parameters and options.
func Key(tables *groundtruth.Tables, markup string, p snapshot.Params, opts snapshot.Options) string {
	return digest("transform", encodeTables(tables), markup,
		formatFloat(p.K), formatFloat(p.L), formatFloat(p.M), encodeOptions(opts))
}

// AdaptiveKey digests an AdaptiveTransform request.
func AdaptiveKey(tables *groundtruth.Tables, markup string, maxTokens, maxIterations int, opts snapshot.Options) string {
	return digest("adaptive", encodeTables(tables), markup,
		strconv.Itoa(maxTokens), strconv.Itoa(maxIterations), encodeOptions(opts))
}

// formatFloat keeps Linearize distinct ("+Inf").
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// encodeTables is the JSON form of tables; map keys are sorted by the
// encoder. Nil stands for the built-in tables.
func encodeTables(tables *groundtruth.Tables) string {
	if tables == nil {
		tables = groundtruth.Default()
	}
	b, _ := json.Marshal(tables)
	return string(b)
}

func encodeOptions(opts snapshot.Options) string {
	b, _ := json.Marshal(opts)
	return string(b)
}

// digest is BLAKE2b-256 over the length-prefixed parts, hex encoded.
func digest(parts ...string) string {
	h, _ := blake2b.New256(nil)
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
