package domain

import "unicode/utf16"

// The LZ-string codec used by authoring tools to pack suspend data. Strings
// are processed as UTF-16 code units so output is byte-compatible with the
// JavaScript library content ships with.

const keyStrBase64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

var base64Index = func() [256]int {
	var idx [256]int
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(keyStrBase64); i++ {
		idx[keyStrBase64[i]] = i
	}
	return idx
}()

// CompressToBase64 packs input into the LZ-string Base64 alphabet.
func CompressToBase64(input string) string {
	units := compress(utf16.Encode([]rune(input)), 6, func(v int) uint16 {
		return uint16(keyStrBase64[v])
	})
	out := make([]byte, 0, len(units)+3)
	for _, u := range units {
		out = append(out, byte(u))
	}
	switch len(out) % 4 {
	case 1:
		out = append(out, "==="...)
	case 2:
		out = append(out, "=="...)
	case 3:
		out = append(out, '=')
	}
	return string(out)
}

// DecompressFromBase64 reverses CompressToBase64. The boolean is false when
// the stream is truncated or references unknown dictionary entries.
func DecompressFromBase64(input string) (string, bool) {
	if input == "" {
		return "", false
	}
	units, ok := decompress(len(input), 32, func(i int) int {
		if i >= len(input) {
			return 0
		}
		v := base64Index[input[i]]
		if v < 0 {
			return 0
		}
		return v
	})
	if !ok {
		return "", false
	}
	return string(utf16.Decode(units)), true
}

type bitWriter struct {
	bitsPerChar int
	toChar      func(int) uint16
	data        []uint16
	val         int
	pos         int
}

func (w *bitWriter) bit(b int) {
	w.val = (w.val << 1) | b
	if w.pos == w.bitsPerChar-1 {
		w.pos = 0
		w.data = append(w.data, w.toChar(w.val))
		w.val = 0
		return
	}
	w.pos++
}

// bits writes n bits of value, least significant first.
func (w *bitWriter) bits(n, value int) {
	for i := 0; i < n; i++ {
		w.bit(value & 1)
		value >>= 1
	}
}

func (w *bitWriter) flush() {
	for {
		w.val <<= 1
		if w.pos == w.bitsPerChar-1 {
			w.data = append(w.data, w.toChar(w.val))
			return
		}
		w.pos++
	}
}

func unitKey(u uint16) string {
	return string([]byte{byte(u >> 8), byte(u)})
}

func firstUnit(key string) uint16 {
	return uint16(key[0])<<8 | uint16(key[1])
}

func compress(input []uint16, bitsPerChar int, toChar func(int) uint16) []uint16 {
	dict := map[string]int{}
	pending := map[string]bool{}
	enlargeIn := 2
	dictSize := 3
	numBits := 2
	w := ""
	out := &bitWriter{bitsPerChar: bitsPerChar, toChar: toChar}

	grow := func() {
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
	emit := func(key string) {
		if pending[key] {
			first := int(firstUnit(key))
			if first < 256 {
				out.bits(numBits, 0)
				out.bits(8, first)
			} else {
				out.bits(numBits, 1)
				out.bits(16, first)
			}
			grow()
			delete(pending, key)
		} else {
			out.bits(numBits, dict[key])
		}
		grow()
	}

	for _, c := range input {
		ck := unitKey(c)
		if _, ok := dict[ck]; !ok {
			dict[ck] = dictSize
			dictSize++
			pending[ck] = true
		}
		wc := w + ck
		if _, ok := dict[wc]; ok {
			w = wc
			continue
		}
		emit(w)
		dict[wc] = dictSize
		dictSize++
		w = ck
	}
	if w != "" {
		emit(w)
	}
	out.bits(numBits, 2)
	out.flush()
	return out.data
}

func decompress(length, resetValue int, next func(int) int) ([]uint16, bool) {
	dict := make([][]uint16, 4)
	enlargeIn := 4
	numBits := 3
	val := next(0)
	position := resetValue
	index := 1

	read := func(n int) int {
		bits := 0
		for power := 1; power != 1<<n; power <<= 1 {
			resb := val & position
			position >>= 1
			if position == 0 {
				position = resetValue
				val = next(index)
				index++
			}
			if resb > 0 {
				bits |= power
			}
		}
		return bits
	}

	var c []uint16
	switch read(2) {
	case 0:
		c = []uint16{uint16(read(8))}
	case 1:
		c = []uint16{uint16(read(16))}
	case 2:
		return []uint16{}, true
	default:
		return nil, false
	}
	dict[3] = c
	w := c
	result := append([]uint16{}, c...)

	for {
		if index > length {
			return nil, false
		}
		code := read(numBits)
		switch code {
		case 0:
			dict = append(dict, []uint16{uint16(read(8))})
			code = len(dict) - 1
			enlargeIn--
		case 1:
			dict = append(dict, []uint16{uint16(read(16))})
			code = len(dict) - 1
			enlargeIn--
		case 2:
			return result, true
		}
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry []uint16
		switch {
		case code < len(dict) && code >= 3 && dict[code] != nil:
			entry = dict[code]
		case code == len(dict):
			entry = append(append([]uint16{}, w...), w[0])
		default:
			return nil, false
		}
		result = append(result, entry...)
		dict = append(dict, append(append([]uint16{}, w...), entry[0]))
		enlargeIn--
		w = entry
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
}
