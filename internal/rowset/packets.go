package rowset

import (
	"context"
	"io"

	"github.com/bgunnarsson/bincast/internal/wire"
)

// PacketSource replays row packets of one result set, parsing each with the
// text or binary protocol row format.
type PacketSource struct {
	cols    []wire.Column
	format  wire.Format
	packets [][]byte
	i       int
}

// Packets returns a Source over already-received row packets.
func Packets(cols []wire.Column, format wire.Format, packets ...[]byte) *PacketSource {
	return &PacketSource{cols: cols, format: format, packets: packets}
}

func (s *PacketSource) Columns() []wire.Column { return s.cols }

func (s *PacketSource) Next(ctx context.Context) (*wire.RowBuffer, error) {
	if s.i >= len(s.packets) {
		return nil, io.EOF
	}
	p := s.packets[s.i]
	s.i++
	if s.format == wire.FormatBinary {
		return wire.ParseBinaryRow(s.cols, p)
	}
	return wire.ParseTextRow(s.cols, p)
}
