package circuit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/consensys/qnark/internal/ioutils"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/sync/errgroup"
)

// Wire format: a fixed header with section lengths, a CBOR register table and
// an intcomp-compressed operation stream. Two sections so that encoding and
// decoding can run in parallel; the op stream dominates and compresses well as
// uint64 words. Synthesis bookkeeping (bounds, journals) is build-session
// state and is not serialized.

const headerLen = 16

type header struct {
	registersLen uint64
	opsLen       uint64
}

func (h *header) toBytes() []byte {
	buf := make([]byte, 0, headerLen)
	buf = binary.LittleEndian.AppendUint64(buf, h.registersLen)
	buf = binary.LittleEndian.AppendUint64(buf, h.opsLen)
	return buf
}

func (h *header) fromBytes(buf []byte) {
	h.registersLen = binary.LittleEndian.Uint64(buf[:8])
	h.opsLen = binary.LittleEndian.Uint64(buf[8:16])
}

type registerInfo struct {
	Name  string `cbor:"1,keyasint"`
	Label string `cbor:"2,keyasint,omitempty"`
	Role  uint8  `cbor:"3,keyasint"`
	Width uint32 `cbor:"4,keyasint"`
}

// ToBytes serializes the circuit.
func (c *Circuit) ToBytes() ([]byte, error) {
	var registers, ops []byte
	var g errgroup.Group
	g.Go(func() error {
		var err error
		registers, err = c.registersToBytes()
		return err
	})
	g.Go(func() error {
		var err error
		ops, err = c.opsToBytes()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h := header{
		registersLen: uint64(len(registers)),
		opsLen:       uint64(len(ops)),
	}
	buf := h.toBytes()
	buf = append(buf, registers...)
	buf = append(buf, ops...)
	return buf, nil
}

// FromBytes deserializes a circuit produced by ToBytes and returns the number
// of bytes read.
func (c *Circuit) FromBytes(data []byte) (int, error) {
	if len(data) < headerLen {
		return 0, errors.New("invalid data length")
	}
	h := new(header)
	h.fromBytes(data)
	if uint64(len(data)) < headerLen+h.registersLen+h.opsLen {
		return 0, errors.New("invalid data length")
	}

	var g errgroup.Group
	var infos []registerInfo
	var words []uint64
	g.Go(func() error {
		return decodeRegisterTable(data[headerLen:headerLen+int(h.registersLen)], &infos)
	})
	g.Go(func() error {
		_, w, err := ioutils.ReadAndDecompressUints64(bytes.NewReader(data[headerLen+int(h.registersLen):]))
		words = w
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := c.rebuild(infos, words); err != nil {
		return 0, err
	}
	return headerLen + int(h.registersLen) + int(h.opsLen), nil
}

// WriteTo implements io.WriterTo.
func (c *Circuit) WriteTo(w io.Writer) (int64, error) {
	buf, err := c.ToBytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom implements io.ReaderFrom.
func (c *Circuit) ReadFrom(r io.Reader) (int64, error) {
	hb := make([]byte, headerLen)
	if _, err := io.ReadFull(r, hb); err != nil {
		return 0, err
	}
	h := new(header)
	h.fromBytes(hb)
	data := make([]byte, headerLen+h.registersLen+h.opsLen)
	copy(data, hb)
	if _, err := io.ReadFull(r, data[headerLen:]); err != nil {
		return int64(headerLen), err
	}
	n, err := c.FromBytes(data)
	return int64(n), err
}

func (c *Circuit) registersToBytes() ([]byte, error) {
	infos := make([]registerInfo, len(c.registers))
	for i, r := range c.registers {
		infos[i] = registerInfo{
			Name:  r.name,
			Label: r.label,
			Role:  uint8(r.role),
			Width: uint32(r.width),
		}
	}
	return cbor.Marshal(infos)
}

func decodeRegisterTable(data []byte, infos *[]registerInfo) error {
	dm, err := cbor.DecOptions{MaxArrayElements: 2147483647, MaxMapPairs: 2147483647}.DecMode()
	if err != nil {
		return err
	}
	return dm.Unmarshal(data, infos)
}

func (c *Circuit) opsToBytes() ([]byte, error) {
	words := make([]uint64, 0, 4*len(c.ops))
	for _, op := range c.ops {
		words = append(words, uint64(op.Kind), uint64(len(op.Targets)), uint64(len(op.Controls)))
		for _, t := range op.Targets {
			words = append(words, uint64(t))
		}
		for _, q := range op.Controls {
			words = append(words, uint64(q))
		}
		if op.Kind == GatePhase {
			words = append(words, uint64(op.Param.Num), uint64(op.Param.Exp))
		}
	}
	var buf bytes.Buffer
	if err := ioutils.CompressAndWriteUints64(&buf, words); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rebuild replaces the receiver's content with the decoded register table and
// op stream, revalidating geometry and indices.
func (c *Circuit) rebuild(infos []registerInfo, words []uint64) error {
	fresh := New()
	for _, info := range infos {
		if _, err := fresh.NewRegister(info.Name, Role(info.Role), int(info.Width)); err != nil {
			return err
		}
		if info.Label != "" {
			fresh.byName[info.Name].label = info.Label
		}
	}

	next := func() (uint64, error) {
		if len(words) == 0 {
			return 0, errors.New("truncated op stream")
		}
		w := words[0]
		words = words[1:]
		return w, nil
	}
	readQubits := func(n uint64) ([]int, error) {
		if n == 0 {
			return nil, nil
		}
		if n > uint64(fresh.nbQubits) {
			return nil, errors.New("malformed op stream")
		}
		out := make([]int, n)
		for i := range out {
			w, err := next()
			if err != nil {
				return nil, err
			}
			if w >= uint64(fresh.nbQubits) {
				return nil, fmt.Errorf("qubit index %d out of range", w)
			}
			out[i] = int(w)
		}
		return out, nil
	}

	for len(words) > 0 {
		kw, _ := next()
		if kw > uint64(GateMeasure) {
			return fmt.Errorf("unknown gate kind %d", kw)
		}
		kind := GateKind(kw)
		nbT, err := next()
		if err != nil {
			return err
		}
		nbC, err := next()
		if err != nil {
			return err
		}
		targets, err := readQubits(nbT)
		if err != nil {
			return err
		}
		controls, err := readQubits(nbC)
		if err != nil {
			return err
		}
		op := Operation{Kind: kind, Targets: targets, Controls: controls}
		if kind == GatePhase {
			num, err := next()
			if err != nil {
				return err
			}
			exp, err := next()
			if err != nil {
				return err
			}
			if exp > MaxWidth {
				return fmt.Errorf("dyadic exponent %d out of range", exp)
			}
			op.Param = NewDyadic(int64(num), uint8(exp))
		}
		if kind == GateMeasure {
			r := fresh.registerAt(targets)
			if r == nil {
				return errors.New("measurement does not cover a whole register")
			}
			if err := fresh.Measure(r); err != nil {
				return err
			}
			continue
		}
		fresh.ops = append(fresh.ops, op)
	}

	*c = *fresh
	return nil
}

// registerAt returns the register whose qubit range exactly matches targets
// (least significant first), or nil.
func (c *Circuit) registerAt(targets []int) *Register {
	if len(targets) == 0 {
		return nil
	}
	for _, r := range c.registers {
		if r.offset != targets[0] || r.width != len(targets) {
			continue
		}
		ok := true
		for i, t := range targets {
			if t != r.offset+i {
				ok = false
				break
			}
		}
		if ok {
			return r
		}
	}
	return nil
}
