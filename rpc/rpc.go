package inventoryrpc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Packet is one framed message. Requests carry the function name in
// H["fn"] and msgpack arguments in B["arg"]; responses carry a little-endian
// int32 in H["code"] and either B["result"] or B["error"]. H["id"] is
// echoed back so a client can match responses.
type Packet struct {
	H map[string][]byte `msgpack:"h,omitempty"`
	B map[string][]byte `msgpack:"b,omitempty"`
}

const (
	CodeOK              int32 = 0
	CodeBadRequest      int32 = -1
	CodeValidation      int32 = -2
	CodeMissingChemical int32 = -3
	CodeDuplicate       int32 = -4
	CodeNotFound        int32 = -5
	CodePersistence     int32 = -6
	CodeInternal        int32 = -7
)

// NewRequest builds a request packet with a fresh id.
func NewRequest(fn string, arg any) (*Packet, uuid.UUID, error) {
	id := uuid.New()
	p := &Packet{
		H: map[string][]byte{"fn": []byte(fn), "id": id[:]},
		B: map[string][]byte{},
	}
	if arg != nil {
		b, err := msgpack.Marshal(arg)
		if err != nil {
			return nil, uuid.Nil, err
		}
		p.B["arg"] = b
	}
	return p, id, nil
}

func (p *Packet) Func() string {
	return string(p.H["fn"])
}

func (p *Packet) ID() (uuid.UUID, bool) {
	b, ok := p.H["id"]
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.FromBytes(b)
	return id, err == nil
}

func (p *Packet) Code() (int32, bool) {
	b, ok := p.H["code"]
	if !ok || len(b) != 4 {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(b)), true
}

func newResponse(req *Packet, code int32) *Packet {
	codeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(codeBytes, uint32(code))
	resp := &Packet{H: map[string][]byte{"code": codeBytes}, B: map[string][]byte{}}
	if req != nil {
		if id, ok := req.H["id"]; ok {
			resp.H["id"] = id
		}
	}
	return resp
}

func errorResponse(req *Packet, code int32, msg string) *Packet {
	resp := newResponse(req, code)
	resp.B["error"] = []byte(msg)
	return resp
}

// PacketBuffer reassembles packets from a byte stream.
type PacketBuffer struct {
	buf bytes.Buffer
}

// Feed appends data and returns every complete packet. A trailing partial
// packet stays buffered until more data arrives.
func (pb *PacketBuffer) Feed(data []byte) ([]*Packet, error) {
	pb.buf.Write(data)

	var results []*Packet
	pending := pb.buf.Bytes()
	r := bytes.NewReader(pending)
	dec := msgpack.NewDecoder(r)
	consumed := 0

	for r.Len() > 0 {
		v := new(Packet)
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// not enough data yet, stop
				break
			}
			pb.buf.Reset()
			return results, err
		}
		consumed = len(pending) - r.Len()
		results = append(results, v)
	}
	pb.buf.Next(consumed)
	return results, nil
}

func (pb *PacketBuffer) Buffered() int {
	return pb.buf.Len()
}
