// Package pdfmeta pre-fills certificate forms from a PDF's document
// information dictionary.
package pdfmeta

import (
	"bytes"
	"encoding/hex"
	"io"
	"regexp"
	"strings"

	"github.com/WaveLink/WL-Backend/internal/utils"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

// MaxScanBytes caps how much of a PDF is read.
const MaxScanBytes = 32 << 20

// Extractor finds a certificate expiry date in a PDF.
type Extractor interface {
	// ExpiryDate returns a YYYY-MM-DD date or "" when the document carries
	// none.
	ExpiryDate(r io.Reader) (string, error)
}

// InfoScanner reads the Author, Creator and Producer entries of the Info
// dictionary straight from the file bytes. Info dictionaries stored inside
// compressed object streams are not seen.
type InfoScanner struct{}

var (
	fieldRe = regexp.MustCompile(`/(Author|Creator|Producer)\s*(\(|<)`)
	dateRe  = regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`)
)

var fieldOrder = []string{"Author", "Creator", "Producer"}

func (InfoScanner) ExpiryDate(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxScanBytes))
	if err != nil {
		return "", errors.Wrap(err, "failed to read pdf")
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\n\r "), []byte("%PDF")) {
		return "", errors.New("not a pdf")
	}

	fields := Fields(data)
	parts := make([]string, 0, len(fieldOrder))
	for _, k := range fieldOrder {
		parts = append(parts, fields[k])
	}
	return FirstDate(strings.Join(parts, " ")), nil
}

// Fields returns the first value found for each of Author, Creator and
// Producer.
func Fields(data []byte) map[string]string {
	out := map[string]string{}
	for _, m := range fieldRe.FindAllSubmatchIndex(data, -1) {
		name := string(data[m[2]:m[3]])
		if _, seen := out[name]; seen {
			continue
		}
		rest := data[m[4]:]
		var v string
		var ok bool
		if rest[0] == '(' {
			v, ok = literal(rest[1:])
		} else {
			v, ok = hexString(rest[1:])
		}
		if ok {
			out[name] = v
		}
	}
	return out
}

// FirstDate returns the first YYYY-M-D in s that is a real calendar date,
// normalised to YYYY-MM-DD, or "".
func FirstDate(s string) string {
	for _, candidate := range dateRe.FindAllString(s, -1) {
		if t, err := utils.ParseDate(candidate); err == nil {
			return t.Format(utils.DateLayout)
		}
	}
	return ""
}

// literal decodes a PDF literal string up to its balancing close paren.
func literal(b []byte) (string, bool) {
	var out []byte
	depth := 0
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == '\\' && i+1 < len(b):
			i++
			switch e := b[i]; e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b', 'f':
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					// At most three digits; overflow above \377 keeps the low byte.
					n, j := 0, i
					for ; j < len(b) && j < i+3 && b[j] >= '0' && b[j] <= '7'; j++ {
						n = n*8 + int(b[j]-'0')
					}
					out = append(out, byte(n&0xff))
					i = j - 1
				} else {
					out = append(out, e)
				}
			}
		case c == '(':
			depth++
			out = append(out, c)
		case c == ')':
			if depth == 0 {
				return decodeText(out), true
			}
			depth--
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return "", false
}

func hexString(b []byte) (string, bool) {
	end := bytes.IndexByte(b, '>')
	if end < 0 {
		return "", false
	}
	digits := strings.Map(func(r rune) rune {
		if strings.ContainsRune(" \t\r\n", r) {
			return -1
		}
		return r
	}, string(b[:end]))
	if len(digits)%2 == 1 {
		digits += "0"
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return "", false
	}
	return decodeText(raw), true
}

// decodeText turns PDF text string bytes into UTF-8. Strings starting with
// a UTF-16BE byte order mark are transcoded; the rest pass through.
func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		if s, err := dec.Bytes(b); err == nil {
			return string(s)
		}
	}
	return string(b)
}
