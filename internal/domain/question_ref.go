package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// QuestionRef is the id a client submits for a question. Clients send
// numbers for persisted questions and arbitrary strings (often uuids) for
// questions created in the browser; only a positive integer can refer to a
// stored question.
type QuestionRef struct {
	id  uint
	raw string
}

// ID returns the numeric id and whether the reference is numeric at all.
func (r QuestionRef) ID() (uint, bool) {
	return r.id, r.id > 0
}

func (r QuestionRef) String() string {
	return r.raw
}

func (r *QuestionRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = QuestionRef{}
		return nil
	}
	var raw string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		raw = n.String()
	}
	*r = QuestionRef{raw: raw}
	if id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64); err == nil {
		r.id = uint(id)
	}
	return nil
}

func (r QuestionRef) MarshalJSON() ([]byte, error) {
	if id, ok := r.ID(); ok {
		return []byte(strconv.FormatUint(uint64(id), 10)), nil
	}
	if r.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.raw)
}
