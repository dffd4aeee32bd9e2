package ats

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The External ATS is inconsistent about scalar types: ids and numbers come
// back as JSON numbers, numeric strings, empty strings or null depending on
// the endpoint. The Flex types accept all of those.

type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// Booleans, objects and arrays carry nothing usable as text.
		*s = ""
		return nil
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		raw = strings.TrimSpace(v)
		if raw == "" {
			*f = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Unparseable values are treated as absent.
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

type FlexInt int64

func (i *FlexInt) UnmarshalJSON(b []byte) error {
	var f FlexFloat
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	*i = FlexInt(int64(f))
	return nil
}
