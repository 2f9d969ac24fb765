package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDecode is returned when a compressed grid string is malformed or does
// not describe exactly the grid's storage length.
var ErrDecode = errors.New("grid decode error")

const (
	tokenSep = ";"
	runSep   = "_"
)

// compress run-length encodes buf as "<value>_<run>" tokens joined by ";".
func compress(buf []byte) string {
	if len(buf) == 0 {
		return ""
	}

	var sb strings.Builder
	current := buf[0]
	count := 0

	for _, b := range buf {
		if b == current {
			count++
			continue
		}
		writeToken(&sb, current, count)
		sb.WriteString(tokenSep)
		current = b
		count = 1
	}
	writeToken(&sb, current, count)

	return sb.String()
}

func writeToken(sb *strings.Builder, value byte, count int) {
	sb.WriteString(strconv.Itoa(int(value)))
	sb.WriteString(runSep)
	sb.WriteString(strconv.Itoa(count))
}

// decompress decodes s into a fresh buffer of exactly n bytes. Every write is
// bounds checked before it happens.
func decompress(s string, n int) ([]byte, error) {
	out := make([]byte, n)
	ind := 0

	for _, token := range strings.Split(s, tokenSep) {
		value, count, err := parseToken(token)
		if err != nil {
			return nil, err
		}

		if count > n-ind {
			return nil, fmt.Errorf("%w: run %q overflows storage of %d cells", ErrDecode, token, n)
		}

		for i := 0; i < count; i++ {
			out[ind] = value
			ind++
		}
	}

	if ind != n {
		return nil, fmt.Errorf("%w: decoded %d cells, expected %d", ErrDecode, ind, n)
	}

	return out, nil
}

func parseToken(token string) (byte, int, error) {
	fields := strings.Split(token, runSep)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: malformed token %q", ErrDecode, token)
	}

	value, err := strconv.ParseUint(fields[0], 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid value in token %q", ErrDecode, token)
	}

	count, err := strconv.Atoi(fields[1])
	if err != nil || count < 1 {
		return 0, 0, fmt.Errorf("%w: invalid run length in token %q", ErrDecode, token)
	}

	return byte(value), count, nil
}
