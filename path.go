package smartjson

import (
	"fmt"
	"strconv"
	"strings"
)

// Paths are rendered the way error messages show them: dotted field names
// with bracketed indices, for example "items[2].price".

func joinField(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func joinIndex(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}

// renderPath is the inverse of parsePath.
func renderPath(steps []pathStep) string {
	var sb strings.Builder
	for _, st := range steps {
		if st.isIndex {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(st.index))
			sb.WriteByte(']')
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(st.name)
	}
	return sb.String()
}

// pathStep is one element of a parsed path: a field name or an index.
type pathStep struct {
	name    string
	index   int
	isIndex bool
}

// parsePath splits "a.b[0].c" into steps. Field names may not contain '.',
// '[' or ']'.
func parsePath(p string) ([]pathStep, error) {
	var steps []pathStep
	i := 0
	for i < len(p) {
		switch p[i] {
		case '.':
			if i == 0 || i == len(p)-1 {
				return nil, fmt.Errorf("path %q: misplaced '.'", p)
			}
			i++
		case '[':
			end := strings.IndexByte(p[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unterminated index", p)
			}
			n, err := strconv.Atoi(p[i+1 : i+end])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("path %q: invalid index %q", p, p[i+1:i+end])
			}
			steps = append(steps, pathStep{index: n, isIndex: true})
			i += end + 1
		default:
			j := i
			for j < len(p) && p[j] != '.' && p[j] != '[' {
				j++
			}
			steps = append(steps, pathStep{name: p[i:j]})
			i = j
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("path %q: empty", p)
	}
	return steps, nil
}
