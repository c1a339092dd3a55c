package favorites

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/desertthunder/reel/internal/shared"
)

// Parse decodes a persisted favorites value.
//
// A value that is not a JSON array returns [shared.ErrCorruptData]. Entries that are not
// integer-valued numbers are dropped one by one, as are repeated ids after their first occurrence; dropped
// reports how many entries were discarded.
func Parse(raw string) (ids []int, dropped int, err error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, 0, fmt.Errorf("%w: value is null", shared.ErrCorruptData)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrCorruptData, err)
	}

	ids = make([]int, 0, len(entries))
	seen := make(map[int]struct{}, len(entries))
	for _, entry := range entries {
		id, ok := parseID(entry)
		if !ok {
			dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, dropped, nil
}

// parseID accepts number literals whose value is an exact integer, so 2.0 and 1e3 count as
// 2 and 1000. Strings, fractions and values outside the int range are rejected.
func parseID(entry json.RawMessage) (int, bool) {
	entry = bytes.TrimSpace(entry)
	if len(entry) == 0 {
		return 0, false
	}
	if c := entry[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	if id, err := strconv.Atoi(string(entry)); err == nil {
		return id, true
	}

	var n json.Number
	if err := json.Unmarshal(entry, &n); err != nil {
		return 0, false
	}
	f, _, err := big.ParseFloat(n.String(), 10, 256, big.ToNearestEven)
	if err != nil || !f.IsInt() {
		return 0, false
	}
	id, acc := f.Int64()
	if acc != big.Exact || id < math.MinInt || id > math.MaxInt {
		return 0, false
	}
	return int(id), true
}

// Encode renders ids as the persisted JSON array. A nil slice encodes as "[]".
func Encode(ids []int) string {
	if len(ids) == 0 {
		return "[]"
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(id))
	}
	buf.WriteByte(']')
	return buf.String()
}
