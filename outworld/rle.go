package outworld

// rleReader walks a packed buffer from its tail toward its head, handing out
// one bit at a time. Chunks are 32-bit big-endian words; the reader keeps a
// running XOR checksum of every chunk it loads after the first.
//
// Grounded on nes/cartridge.go's binary.Read-from-a-fixed-layout-header style:
// same "parse a fixed binary layout, bail with a sentinel error on mismatch"
// shape, adapted to a backwards bit-oriented reader instead of a forwards
// byte-oriented one.
type rleReader struct {
	src    []byte
	cursor int // index one past the next unread byte; decreases toward 0

	currentChunk uint32
	checksum     uint32
	declaredSize uint32

	exhausted bool
}

func newRLEReader(src []byte) (*rleReader, error) {
	r := &rleReader{src: src, cursor: len(src)}

	declared, err := r.popChunk()
	if err != nil {
		return nil, ErrSourceExhausted
	}
	r.declaredSize = declared

	initialChecksum, err := r.popChunk()
	if err != nil {
		return nil, ErrSourceExhausted
	}
	r.checksum = initialChecksum

	first, err := r.popChunk()
	if err != nil {
		return nil, ErrSourceExhausted
	}
	if first == 0 {
		return nil, ErrMissingSentinel
	}
	r.currentChunk = first
	r.checksum ^= first

	return r, nil
}

// popChunk reads the next 32-bit big-endian word from the tail of src,
// moving the cursor backward by 4.
func (r *rleReader) popChunk() (uint32, error) {
	if r.cursor < 4 {
		r.exhausted = true
		return 0, ErrSourceExhausted
	}
	r.cursor -= 4
	b := r.src[r.cursor : r.cursor+4]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// nextBit pops the low bit of the current chunk. When a chunk's bits (and
// its embedded sentinel) are fully consumed, the next chunk is loaded, XORed
// into the running checksum, and its low bit is returned in place of the
// bit the now-empty chunk would have produced; 0x80000000 is then ORed back
// in as the new chunk's sentinel so the next 31 calls behave identically.
func (r *rleReader) nextBit() (uint32, error) {
	bit := r.currentChunk & 1
	r.currentChunk >>= 1
	if r.currentChunk == 0 {
		next, err := r.popChunk()
		if err != nil {
			return 0, err
		}
		r.checksum ^= next
		bit = next & 1
		r.currentChunk = (next >> 1) | 0x80000000
	}
	return bit, nil
}

// getBits reads n bits MSB-first, i.e. the first bit read becomes the
// highest bit of the result.
func (r *rleReader) getBits(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		bit, err := r.nextBit()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | bit
	}
	return v, nil
}

// rleWriter fills dst back-to-front, mirroring how rleReader consumes src
// back-to-front; the two reversals cancel out and the final content reads
// forward.
type rleWriter struct {
	dst    []byte
	cursor int // index of the next byte to write; decreases toward -1
}

func (w *rleWriter) writeByte(v byte) error {
	if w.cursor < 0 {
		return ErrDestinationUnderflow
	}
	w.dst[w.cursor] = v
	w.cursor--
	return nil
}

// copyFromDest copies count bytes already present in dst, each read from
// offset-1 bytes ahead of (at a higher index than) the current write
// cursor, walking both the read and write positions downward together so
// the relative distance — and therefore byte order — is preserved.
func (w *rleWriter) copyFromDest(count, offset int) error {
	for i := 0; i < count; i++ {
		if w.cursor < 0 {
			return ErrDestinationUnderflow
		}
		srcPos := w.cursor + offset - 1
		if srcPos < 0 || srcPos >= len(w.dst) || srcPos <= w.cursor {
			return ErrCopyOutOfRange
		}
		w.dst[w.cursor] = w.dst[srcPos]
		w.cursor--
	}
	return nil
}

// decompressRLE decompresses src into dst in place per distilled spec §4.1.
// src may alias the tail of dst (in-place decompression); dst must already
// be sized to the descriptor's uncompressed_size.
func decompressRLE(dst, src []byte) error {
	reader, err := newRLEReader(src)
	if err != nil {
		return err
	}
	writer := &rleWriter{dst: dst, cursor: len(dst) - 1}

	for writer.cursor >= 0 {
		tag, err := reader.nextBit()
		if err != nil {
			return ErrSourceExhausted
		}

		if tag == 1 {
			tag2, err := reader.nextBit()
			if err != nil {
				return ErrSourceExhausted
			}
			if tag2 == 1 {
				tag3, err := reader.nextBit()
				if err != nil {
					return ErrSourceExhausted
				}
				if tag3 == 1 {
					// 1 1 1 <8-bit count> -> copy count+9 raw bytes
					count, err := reader.getBits(8)
					if err != nil {
						return ErrSourceExhausted
					}
					if err := copyRaw(reader, writer, int(count)+9); err != nil {
						return err
					}
				} else {
					// 1 1 0 <8-bit count> <12-bit offset>
					count, err := reader.getBits(8)
					if err != nil {
						return ErrSourceExhausted
					}
					offset, err := reader.getBits(12)
					if err != nil {
						return ErrSourceExhausted
					}
					if err := writer.copyFromDest(int(count)+1, int(offset)); err != nil {
						return err
					}
				}
			} else {
				tag3, err := reader.nextBit()
				if err != nil {
					return ErrSourceExhausted
				}
				if tag3 == 1 {
					// 1 0 1 <10-bit offset> -> copy 4
					offset, err := reader.getBits(10)
					if err != nil {
						return ErrSourceExhausted
					}
					if err := writer.copyFromDest(4, int(offset)); err != nil {
						return err
					}
				} else {
					// 1 0 0 <9-bit offset> -> copy 3
					offset, err := reader.getBits(9)
					if err != nil {
						return ErrSourceExhausted
					}
					if err := writer.copyFromDest(3, int(offset)); err != nil {
						return err
					}
				}
			}
		} else {
			tag2, err := reader.nextBit()
			if err != nil {
				return ErrSourceExhausted
			}
			if tag2 == 1 {
				// 0 1 <8-bit offset> -> copy 2
				offset, err := reader.getBits(8)
				if err != nil {
					return ErrSourceExhausted
				}
				if err := writer.copyFromDest(2, int(offset)); err != nil {
					return err
				}
			} else {
				// 0 0 <3-bit count> -> copy count+1 raw
				count, err := reader.getBits(3)
				if err != nil {
					return ErrSourceExhausted
				}
				if err := copyRaw(reader, writer, int(count)+1); err != nil {
					return err
				}
			}
		}
	}

	if reader.checksum != 0 {
		return ErrChecksumMismatch
	}
	return nil
}

func copyRaw(r *rleReader, w *rleWriter, count int) error {
	for i := 0; i < count; i++ {
		b, err := r.getBits(8)
		if err != nil {
			return ErrSourceExhausted
		}
		if err := w.writeByte(byte(b)); err != nil {
			return err
		}
	}
	return nil
}
