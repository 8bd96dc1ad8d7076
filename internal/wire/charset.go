package wire

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// Collation ids used by the protocol layer and tests.
const (
	CharsetLatin1  uint16 = 8
	CharsetASCII   uint16 = 11
	CharsetGBK     uint16 = 28
	CharsetUTF8    uint16 = 33
	CharsetUCS2    uint16 = 35
	CharsetUTF8MB4 uint16 = 45
	CharsetUTF16   uint16 = 54
	CharsetBinary  uint16 = 63
)

// Charset names a character set and the decoder for it. A nil Encoding means
// the bytes are UTF-8 already.
type Charset struct {
	Name     string
	Encoding encoding.Encoding
	// Wide is the fixed code unit width for UCS-2/UTF-16, 0 otherwise.
	Wide int
	// SevenBit rejects bytes above 0x7f.
	SevenBit bool
	// C1 maps bytes the code page leaves undefined to U+0080..U+009F, as
	// MySQL's latin1 does for 0x81, 0x8d, 0x8f, 0x90 and 0x9d.
	C1 bool
}

// charsets is filled once at init and only read afterwards, so concurrent
// decoders share it without locking.
var charsets = map[uint16]Charset{}

func init() {
	register := func(cs Charset, ids ...uint16) {
		for _, id := range ids {
			charsets[id] = cs
		}
	}
	register(Charset{Name: "utf8mb3"}, CharsetUTF8, 83, 192, 213)
	register(Charset{Name: "utf8mb4"}, CharsetUTF8MB4, 46, 224, 255, 246)
	register(Charset{Name: "latin1", Encoding: charmap.Windows1252, C1: true}, CharsetLatin1, 5, 15, 31, 47, 48, 49, 94)
	register(Charset{Name: "latin2", Encoding: charmap.ISO8859_2}, 9, 21, 27, 77)
	register(Charset{Name: "cp1251", Encoding: charmap.Windows1251}, 14, 23, 50, 51, 52)
	register(Charset{Name: "koi8r", Encoding: charmap.KOI8R}, 7, 74)
	register(Charset{Name: "ascii", SevenBit: true}, CharsetASCII, 65)
	register(Charset{Name: "gbk", Encoding: simplifiedchinese.GBK}, CharsetGBK, 87)
	register(Charset{Name: "ucs2", Encoding: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), Wide: 2}, CharsetUCS2, 90)
	register(Charset{Name: "utf16", Encoding: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), Wide: 2}, CharsetUTF16, 55)
	register(Charset{Name: "binary"}, CharsetBinary)
}

// LookupCharset returns the charset for a collation id. Unknown ids, and 0
// (not reported), decode as utf8mb4.
func LookupCharset(id uint16) Charset {
	if cs, ok := charsets[id]; ok {
		return cs
	}
	return charsets[CharsetUTF8MB4]
}
