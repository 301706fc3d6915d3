package pdfmeta

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfWithInfo(info string) []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n" +
		"2 0 obj\n" + info + "\nendobj\ntrailer\n<< /Root 1 0 R /Info 2 0 R >>\n%%EOF\n")
}

func TestInfoScanner_DateInCreator(t *testing.T) {
	doc := pdfWithInfo(`<< /Author (Safety Board) /Creator (expires 2026-4-9 \(renewal\)) /Producer (pdfTeX) >>`)

	got, err := InfoScanner{}.ExpiryDate(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "2026-04-09", got)
}

func TestInfoScanner_AuthorWinsOverProducer(t *testing.T) {
	doc := pdfWithInfo(`<< /Producer (2031-01-01) /Author (2027-12-31) >>`)

	got, err := InfoScanner{}.ExpiryDate(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "2027-12-31", got)
}

func TestInfoScanner_SkipsImpossibleDates(t *testing.T) {
	doc := pdfWithInfo(`<< /Author (2025-13-40) /Creator (2025-06-30) >>`)

	got, err := InfoScanner{}.ExpiryDate(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-30", got)
}

func TestInfoScanner_NoDate(t *testing.T) {
	doc := pdfWithInfo(`<< /Author (Jane) /Title (2025-06-30) >>`)

	got, err := InfoScanner{}.ExpiryDate(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, got, "dates outside Author, Creator and Producer are ignored")
}

func TestInfoScanner_UTF16HexString(t *testing.T) {
	// FEFF then "2028-02-29" in UTF-16BE.
	var hexDate strings.Builder
	hexDate.WriteString("FEFF")
	for _, r := range "2028-02-29" {
		hexDate.WriteString("00")
		hexDate.WriteString(strings.ToUpper(string("0123456789abcdef"[r>>4]) + string("0123456789abcdef"[r&0xF])))
	}
	doc := pdfWithInfo(`<< /Creator <` + hexDate.String() + `> >>`)

	got, err := InfoScanner{}.ExpiryDate(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "2028-02-29", got)
}

func TestInfoScanner_NotAPDF(t *testing.T) {
	_, err := InfoScanner{}.ExpiryDate(strings.NewReader("just text 2025-01-01"))
	assert.Error(t, err)
}

func TestFields_Escapes(t *testing.T) {
	f := Fields([]byte(`/Author (a\)b \101 (nested)) /Creator(x)`))
	assert.Equal(t, "a)b A (nested)", f["Author"])
	assert.Equal(t, "x", f["Creator"])
}

func TestLiteral_OctalEscapes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`\101)`, "A"},
		{`\60\61)`, "01"},
		{`\1234)`, "S4"},
		{`\0)`, "\x00"},
		{`\377)`, "\xff"},
		{`\777)`, "\xff"},
		{`\400)`, "\x00"},
		{`\062\060\062\066-01-02)`, "2026-01-02"},
	}
	for _, tc := range cases {
		got, ok := literal([]byte(tc.in))
		require.True(t, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestFirstDate(t *testing.T) {
	assert.Equal(t, "2025-01-05", FirstDate("valid until 2025-1-5"))
	assert.Equal(t, "", FirstDate("2025-02-29"))
	assert.Equal(t, "", FirstDate(""))
}
