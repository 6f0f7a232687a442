package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const byteRangePrefix = "bytes="

var errRangeNotSatisfiable = errors.New("range not satisfiable")

// byteRange is an inclusive window of a file.
type byteRange struct {
	start int64
	end   int64
}

func (r byteRange) length() int64 {
	return r.end - r.start + 1
}

func (r byteRange) contentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.start, r.end, size)
}

// parseByteRange understands a single range of the forms a-b, a- and -n.
// ok is false when the whole file should be served instead: no header, a
// multi-range request, another unit or a syntactically broken range.
func parseByteRange(header string, size int64) (byteRange, bool, error) {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, byteRangePrefix) {
		return byteRange{}, false, nil
	}

	spec := strings.TrimSpace(strings.TrimPrefix(header, byteRangePrefix))
	if spec == "" || strings.Contains(spec, ",") {
		return byteRange{}, false, nil
	}

	first, last, found := strings.Cut(spec, "-")
	if !found {
		return byteRange{}, false, nil
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)

	if first == "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n < 0 {
			return byteRange{}, false, nil
		}
		if n == 0 || size == 0 {
			return byteRange{}, false, errRangeNotSatisfiable
		}
		if n > size {
			n = size
		}

		return byteRange{start: size - n, end: size - 1}, true, nil
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, false, nil
	}

	end := size - 1
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return byteRange{}, false, nil
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start >= size {
		return byteRange{}, false, errRangeNotSatisfiable
	}

	return byteRange{start: start, end: end}, true, nil
}
