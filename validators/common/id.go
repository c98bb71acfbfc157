package commonValidator

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is a record reference in a request body. The admin console sends ids
// read from form inputs, so both 7 and "7" are accepted.
type ID uint

func (id *ID) UnmarshalJSON(b []byte) error {
	return id.parse(strings.Trim(strings.TrimSpace(string(b)), `"`))
}

func (id *ID) UnmarshalText(b []byte) error {
	return id.parse(string(b))
}

func (id *ID) parse(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", raw)
	}
	*id = ID(n)
	return nil
}
