package backend

import (
	"fmt"
	"io"
	"sort"

	"github.com/icza/bitio"
)

// Histogram maps an observed bit pattern to its occurrence count.
//
// Keys are strings over '0'/'1', one group per measured register in
// measurement order, each group most significant bit first. For the discrete
// log oracle the key is the a register followed by the b register.
type Histogram map[string]uint64

// Total returns the total number of recorded outcomes.
func (h Histogram) Total() uint64 {
	var n uint64
	for _, c := range h {
		n += c
	}
	return n
}

// Merge adds the counts of other into h.
func (h Histogram) Merge(other Histogram) {
	for k, c := range other {
		h[k] += c
	}
}

// WriteTo implements io.WriterTo. Outcome keys are bit-packed; entries are
// written in sorted key order so the encoding is deterministic.
func (h Histogram) WriteTo(w io.Writer) (int64, error) {
	keys := make([]string, 0, len(h))
	for k := range h {
		if err := validKey(k); err != nil {
			return 0, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cw := countingWriter{w: w}
	bw := bitio.NewWriter(&cw)
	if err := bw.WriteBits(uint64(len(keys)), 64); err != nil {
		return cw.n, err
	}
	for _, k := range keys {
		if err := bw.WriteBits(uint64(len(k)), 16); err != nil {
			return cw.n, err
		}
		for i := 0; i < len(k); i++ {
			if err := bw.WriteBool(k[i] == '1'); err != nil {
				return cw.n, err
			}
		}
		if err := bw.WriteBits(h[k], 64); err != nil {
			return cw.n, err
		}
	}
	err := bw.Close()
	return cw.n, err
}

// ReadFrom implements io.ReaderFrom, replacing the receiver's entries.
func (h Histogram) ReadFrom(r io.Reader) (int64, error) {
	cr := countingReader{r: r}
	br := bitio.NewReader(&cr)
	clear(h)

	nbEntries, err := br.ReadBits(64)
	if err != nil {
		return cr.n, err
	}
	for i := uint64(0); i < nbEntries; i++ {
		keyLen, err := br.ReadBits(16)
		if err != nil {
			return cr.n, err
		}
		key := make([]byte, keyLen)
		for j := range key {
			b, err := br.ReadBool()
			if err != nil {
				return cr.n, err
			}
			if b {
				key[j] = '1'
			} else {
				key[j] = '0'
			}
		}
		count, err := br.ReadBits(64)
		if err != nil {
			return cr.n, err
		}
		h[string(key)] += count
	}
	return cr.n, nil
}

func validKey(k string) error {
	if len(k) == 0 || len(k) > 1<<16-1 {
		return fmt.Errorf("histogram key length %d out of range", len(k))
	}
	for i := 0; i < len(k); i++ {
		if k[i] != '0' && k[i] != '1' {
			return fmt.Errorf("histogram key %q is not a bit pattern", k)
		}
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
