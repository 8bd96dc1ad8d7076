package wire

// Flag is the column definition flag set.
type Flag uint16

const (
	FlagNotNull       Flag = 1
	FlagPrimaryKey    Flag = 2
	FlagUniqueKey     Flag = 4
	FlagMultipleKey   Flag = 8
	FlagBlob          Flag = 16
	FlagUnsigned      Flag = 32
	FlagZeroFill      Flag = 64
	FlagBinary        Flag = 128
	FlagEnum          Flag = 256
	FlagAutoIncrement Flag = 512
	FlagTimestamp     Flag = 1024
	FlagSet           Flag = 2048
	FlagNoDefault     Flag = 4096
	FlagOnUpdateNow   Flag = 8192
	FlagNum           Flag = 32768
)

// Has reports whether all bits of f2 are set.
func (f Flag) Has(f2 Flag) bool { return f&f2 == f2 }

// Column describes one result column. It is produced by the protocol layer,
// is never modified afterwards and lives as long as the result set.
type Column struct {
	Name     string
	Table    string
	Type     Type
	Length   uint32 // declared display length in bytes
	Decimals uint8
	Charset  uint16 // collation id
	Flags    Flag
}

func (c *Column) Unsigned() bool { return c.Flags.Has(FlagUnsigned) }

// Binary reports whether a string-typed column holds bytes rather than text:
// either the binary flag is set or the column uses the binary charset.
func (c *Column) Binary() bool {
	return c.Flags.Has(FlagBinary) || c.Charset == CharsetBinary
}
