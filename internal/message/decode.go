package message

import (
	"io"
	"mime"
	"regexp"
	"strings"

	"github.com/emersion/go-message/charset"
)

// encodedWord matches a single RFC 2047 encoded-word.
var encodedWord = regexp.MustCompile(`=\?[^?\s]+\?[bBqQ]\?[^?\s]*\?=`)

// headerDecoder decodes encoded-words using go-message's charset table.
// Unknown charsets fall back to passing the raw bytes through instead
// of failing the decode.
var headerDecoder = mime.WordDecoder{
	CharsetReader: func(cs string, input io.Reader) (io.Reader, error) {
		r, err := charset.Reader(cs, input)
		if err != nil {
			return input, nil
		}
		return r, nil
	},
}

// DecodeHeader decodes a raw header value that may contain RFC 2047
// encoded-words. Decoded segments and intervening literal text are
// joined by a single space, in original order. A value with no
// encoded-words passes through unchanged; invalid byte sequences are
// replaced rather than reported.
func DecodeHeader(raw string) string {
	if raw == "" {
		return ""
	}

	locs := encodedWord.FindAllStringIndex(raw, -1)
	if locs == nil {
		return raw
	}

	var segments []string
	last := 0
	for _, loc := range locs {
		if lit := strings.TrimSpace(raw[last:loc[0]]); lit != "" {
			segments = append(segments, lit)
		}
		word := raw[loc[0]:loc[1]]
		decoded, err := headerDecoder.Decode(word)
		if err != nil {
			decoded = word
		}
		segments = append(segments, strings.ToValidUTF8(decoded, "�"))
		last = loc[1]
	}
	if lit := strings.TrimSpace(raw[last:]); lit != "" {
		segments = append(segments, lit)
	}

	return strings.Join(segments, " ")
}
