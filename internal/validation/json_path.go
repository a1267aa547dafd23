package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"seungpyo.lee/SurveyBuilder/internal/domain"
)

// TranslateBody is Translate for errors from decoding body. The decoder
// reports type errors inside lists without the element index
// ("questions.type"); the index is recovered from the error offset so the
// key matches the ones reported after binding ("questions.1.type").
func TranslateBody(err error, body []byte) *domain.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && len(body) > 0 {
		if path, ok := pathAtOffset(body, typeErr.Offset); ok && withoutIndexes(path) == typeErr.Field {
			return typeError(path, typeErr)
		}
	}
	return Translate(err, "")
}

type pathFrame struct {
	array   bool
	index   int
	key     string
	wantKey bool
}

// pathAtOffset returns the dotted path of the value that ends (or, for
// objects and arrays, opens) at offset.
func pathAtOffset(body []byte, offset int64) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	var stack []*pathFrame
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			if len(stack) == 0 {
				return "", false
			}
			stack = stack[:len(stack)-1]
			nextValue(stack)
			continue
		}
		if n := len(stack); n > 0 && stack[n-1].wantKey {
			stack[n-1].key, _ = tok.(string)
			stack[n-1].wantKey = false
			continue
		}
		if dec.InputOffset() == offset {
			return joinPath(stack), true
		}
		switch tok {
		case json.Delim('{'):
			stack = append(stack, &pathFrame{wantKey: true})
		case json.Delim('['):
			stack = append(stack, &pathFrame{array: true})
		default:
			nextValue(stack)
		}
	}
}

func nextValue(stack []*pathFrame) {
	if len(stack) == 0 {
		return
	}
	top := stack[len(stack)-1]
	if top.array {
		top.index++
		return
	}
	top.wantKey = true
}

func joinPath(stack []*pathFrame) string {
	parts := make([]string, 0, len(stack))
	for _, f := range stack {
		if f.array {
			parts = append(parts, strconv.Itoa(f.index))
		} else {
			parts = append(parts, f.key)
		}
	}
	return strings.Join(parts, ".")
}

func withoutIndexes(path string) string {
	parts := strings.Split(path, ".")
	kept := parts[:0]
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}
