// Package csvline reads the fixed-layout export files consumed by the import
// passes: one header line, then one record per line, blank lines ignored.
package csvline

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// MaxLineSize is the longest line a Reader returns. Longer lines are
// consumed and reported through TooLong.
const MaxLineSize = 1 << 20

// Reader iterates over data lines, skipping the header and blank lines.
// A line holding only whitespace counts as blank.
type Reader struct {
	br         *bufio.Reader
	line       int
	text       string
	tooLong    bool
	headerSeen bool
	eof        bool
	err        error
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Next advances to the next data line. It returns false at EOF or on error.
// A line longer than MaxLineSize is still returned, with TooLong set and
// an empty Text.
func (r *Reader) Next() bool {
	for !r.eof && r.err == nil {
		raw, tooLong, err := r.readLine()
		switch {
		case errors.Is(err, io.EOF):
			r.eof = true
			if len(raw) == 0 && !tooLong {
				return false
			}
		case err != nil:
			r.err = err
			return false
		}

		r.line++
		if !r.headerSeen {
			r.headerSeen = true
			continue
		}
		if tooLong {
			r.text, r.tooLong = "", true
			return true
		}
		text := strings.TrimRight(string(raw), "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		r.text, r.tooLong = text, false
		return true
	}
	return false
}

// readLine reads one physical line including its terminator. Once the line
// exceeds MaxLineSize the rest of it is discarded.
func (r *Reader) readLine() (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > MaxLineSize+2 {
				line, tooLong = nil, true
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}

// Text returns the current line without its terminator.
func (r *Reader) Text() string { return r.text }

// TooLong reports whether the current line exceeded MaxLineSize.
func (r *Reader) TooLong() bool { return r.tooLong }

// Line returns the 1-based physical line number of the current line.
func (r *Reader) Line() int { return r.line }

// Err returns the first read error, if any. EOF is not an error.
func (r *Reader) Err() error { return r.err }

// SplitQuoted splits a line whose fields are all double-quoted, such as
// "a","b, with comma","c". The outer quotes are stripped and the line is
// split on the "," separator, so commas inside fields are preserved.
func SplitQuoted(line string) []string {
	line = strings.TrimPrefix(line, `"`)
	line = strings.TrimSuffix(line, `"`)
	return strings.Split(line, `","`)
}

// SplitMixed splits on commas outside double quotes and drops the quotes,
// so quoted and bare fields may appear on the same line. A doubled quote
// inside a quoted field is kept as one quote.
func SplitMixed(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		quoted bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && quoted && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			quoted = !quoted
		case c == ',' && !quoted:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}

// SplitPlain splits an unquoted line on commas.
func SplitPlain(line string) []string {
	return strings.Split(line, ",")
}

// Field returns fields[i] trimmed of spaces, or "" when the column is absent.
func Field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
