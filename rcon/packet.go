// Package rcon implements a remote console client and a dispatcher that sends
// commands to configured game servers.
package rcon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// PacketType is the type of a remote console packet.
type PacketType int32

// Packet Types.
const (
	TypeResponse PacketType = 0
	TypeCommand  PacketType = 2
	TypeLogin    PacketType = 3

	// TypeLoginResponse shares its value with TypeCommand.
	TypeLoginResponse = TypeCommand
)

// Limits.
const (
	// MaxCommandSize is the maximum command body size a server accepts.
	MaxCommandSize = 1446

	// MaxResponseSize is the maximum amount of characters in the body
	// of a single response packet.
	MaxResponseSize = 4096

	// maxBodySize is the maximum body size of a single packet in bytes.
	maxBodySize = MaxResponseSize * utf8.UTFMax

	// packetHeaderSize is the size of the request ID and type fields.
	packetHeaderSize = 8

	// packetPaddingSize is the size of the NUL terminators after the body.
	packetPaddingSize = 2
)

// Errors.
var (
	ErrMalformedPacket = errors.New("malformed packet")
	ErrCommandTooLong  = errors.New("command too long")
)

// Packet is a single remote console packet.
type Packet struct {
	ID   int32
	Type PacketType
	Body string
}

// WritePacket writes the packet to the writer in a single write.
func WritePacket(w io.Writer, p Packet) error {
	length := packetHeaderSize + len(p.Body) + packetPaddingSize

	buf := bytes.NewBuffer(make([]byte, 0, 4+length))
	_ = binary.Write(buf, binary.LittleEndian, int32(length)) //nolint:gosec
	_ = binary.Write(buf, binary.LittleEndian, p.ID)
	_ = binary.Write(buf, binary.LittleEndian, int32(p.Type))
	buf.WriteString(p.Body)
	buf.Write([]byte{0, 0})

	_, err := w.Write(buf.Bytes())
	return err
}

// ReadPacket reads a single packet from the reader.
func ReadPacket(r io.Reader) (Packet, error) {
	var length int32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return Packet{}, err
	}
	if length < packetHeaderSize+packetPaddingSize || length > packetHeaderSize+maxBodySize+packetPaddingSize {
		return Packet{}, fmt.Errorf("%w: invalid length %d", ErrMalformedPacket, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Packet{}, err
	}

	body := data[packetHeaderSize:]
	if !bytes.HasSuffix(body, []byte{0, 0}) {
		return Packet{}, fmt.Errorf("%w: missing terminator", ErrMalformedPacket)
	}

	return Packet{
		ID:   int32(binary.LittleEndian.Uint32(data[0:4])),
		Type: PacketType(int32(binary.LittleEndian.Uint32(data[4:8]))),
		Body: string(body[:len(body)-packetPaddingSize]),
	}, nil
}
