// Package ingest turns raw timetable files into decoded text.
package ingest

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const utf8Name = "utf-8"

// labelAliases maps Windows code page labels the HTML encoding index does
// not know to an equivalent label it does.
var labelAliases = map[string]string{
	"cp950":  "big5",
	"ms950":  "big5",
	"cp936":  "gbk",
	"cp932":  "shift_jis",
	"utf8":   utf8Name,
	"x-utf8": utf8Name,
}

type codec struct {
	label string
	enc   encoding.Encoding
	utf8  bool
}

// Decoded is the text of one file and how it was obtained
type Decoded struct {
	Text     string
	Encoding string // Label of the encoding that decoded strictly, or "utf-8" for the lossy fallback
	Lossy    bool   // True when no encoding decoded strictly
}

// Decoder tries a fixed chain of encodings in strict mode
type Decoder struct {
	chain  []codec
	logger *slog.Logger
}

// NewDecoder resolves encoding labels in priority order. Unknown labels are
// skipped with a warning.
func NewDecoder(labels []string, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Decoder{logger: logger}
	for _, label := range labels {
		c, ok := lookup(label)
		if !ok {
			logger.Warn("unknown encoding skipped", "encoding", label)
			continue
		}
		d.chain = append(d.chain, c)
	}
	return d
}

func lookup(label string) (codec, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	if alias, ok := labelAliases[key]; ok {
		key = alias
	}
	if key == utf8Name {
		return codec{label: label, utf8: true}, true
	}

	enc, name := charset.Lookup(key)
	if enc == nil {
		return codec{}, false
	}
	return codec{label: label, enc: enc, utf8: name == utf8Name}, true
}

// Encodings returns the labels of the resolved chain
func (d *Decoder) Encodings() []string {
	labels := make([]string, len(d.chain))
	for i, c := range d.chain {
		labels[i] = c.label
	}
	return labels
}

// Decode never fails: the first encoding that decodes raw without error or
// substitution wins, otherwise raw is read as UTF-8 with invalid sequences
// replaced by U+FFFD.
func (d *Decoder) Decode(raw []byte) Decoded {
	for _, c := range d.chain {
		if text, ok := c.decodeStrict(raw); ok {
			return Decoded{Text: text, Encoding: c.label}
		}
	}

	d.logger.Debug("no strict decode succeeded, falling back to lossy utf-8", "encodings", d.Encodings())
	return Decoded{
		Text:     strings.ToValidUTF8(string(trimBOM(raw)), string(utf8.RuneError)),
		Encoding: utf8Name,
		Lossy:    true,
	}
}

func (c codec) decodeStrict(raw []byte) (string, bool) {
	if c.utf8 {
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(trimBOM(raw)), true
	}

	out, _, err := transform.Bytes(c.enc.NewDecoder(), raw)
	if err != nil {
		return "", false
	}
	// x/text decoders substitute U+FFFD for invalid input instead of failing
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// ReadFile reads and decodes path. The only error is an I/O error.
func (d *Decoder) ReadFile(path string) (Decoded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Decoded{}, fmt.Errorf("read %s: %w", path, err)
	}
	return d.Decode(raw), nil
}

func trimBOM(raw []byte) []byte {
	return bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
}
