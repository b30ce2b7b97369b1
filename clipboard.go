package farm

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Clipboard encoding constants.
const (
	// WordSize is the ABI word size in bytes. Clipboard slots count words.
	WordSize = 32

	// ClipboardNoCopy marks a clipboard that copies nothing.
	ClipboardNoCopy byte = 0x00

	// ClipboardSingleCopy marks a clipboard with one packed copy slot.
	ClipboardSingleCopy byte = 0x01

	// ClipboardMultiCopy marks a clipboard with a bytes32[] of copy slots.
	ClipboardMultiCopy byte = 0x02

	// ClipboardEtherFlag marks a clipboard that carries an ether value.
	ClipboardEtherFlag byte = 0x01

	// MaxClipboardSlot is the largest copy or paste slot whose byte index
	// fits the packed encoding.
	MaxClipboardSlot = (math.MaxUint64-4)/WordSize - 1

	uint80Size = 10
)

// Clipboard copies one word of a tagged step's return data into a word of
// the current step's call data.
//
// CopySlot indexes 32-byte words of the return data. PasteSlot indexes
// 32-byte argument words of the call data, after the selector.
type Clipboard struct {
	Tag       string
	CopySlot  int
	PasteSlot int
}

// ClipboardSlot is a resolved clipboard bound to the position of the step
// whose return data it copies.
type ClipboardSlot struct {
	ReturnIndex int
	CopySlot    int
	PasteSlot   int
}

// CopyByte returns the byte index the executor copies from. It skips the
// length prefix of the return data bytes. Slots outside
// [0, MaxClipboardSlot] have no byte index and return 0.
func (s ClipboardSlot) CopyByte() uint64 {
	if !validSlot(s.CopySlot) {
		return 0
	}
	return WordSize * (uint64(s.CopySlot) + 1)
}

// PasteByte returns the byte index the executor pastes at. It skips the
// length prefix and the selector of the call data. Slots outside
// [0, MaxClipboardSlot] have no byte index and return 0.
func (s ClipboardSlot) PasteByte() uint64 {
	if !validSlot(s.PasteSlot) {
		return 0
	}
	return WordSize*(uint64(s.PasteSlot)+1) + 4
}

func validSlot(slot int) bool {
	return slot >= 0 && uint64(slot) <= MaxClipboardSlot
}

var bytes32SliceArgs = abi.Arguments{{Type: mustType("bytes32[]")}}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// EncodeClipboard produces the on-chain clipboard for the given slots.
//
// Format:
//
//	type 0: [0x00:1][ether:1]
//	type 1: [0x01:1][ether:1][returnIndex:10][copyByte:10][pasteByte:10]
//	type 2: [0x02:1][ether:1][abi.encode(bytes32[] slots)]
//	slot:   [0x0000:2][returnIndex:10][copyByte:10][pasteByte:10]
//
// When etherValue is positive the ether flag is set and the value is
// appended as a 32-byte word.
func EncodeClipboard(slots []ClipboardSlot, etherValue *big.Int) ([]byte, error) {
	for _, s := range slots {
		if s.ReturnIndex < 0 || !validSlot(s.CopySlot) || !validSlot(s.PasteSlot) {
			return nil, ErrSlotOutOfRange
		}
	}

	useEther := etherValue != nil && etherValue.Sign() > 0
	flag := byte(0)
	if useEther {
		flag = ClipboardEtherFlag
	}

	var out []byte
	switch len(slots) {
	case 0:
		out = []byte{ClipboardNoCopy, flag}
	case 1:
		out = make([]byte, WordSize)
		packSlot(out, slots[0])
		out[0] = ClipboardSingleCopy
		out[1] = flag
	default:
		words := make([][32]byte, len(slots))
		for i, s := range slots {
			packSlot(words[i][:], s)
		}
		packed, err := bytes32SliceArgs.Pack(words)
		if err != nil {
			return nil, err
		}
		out = append([]byte{ClipboardMultiCopy, flag}, packed...)
	}

	if useEther {
		out = append(out, common.LeftPadBytes(etherValue.Bytes(), WordSize)...)
	}
	return out, nil
}

// packSlot writes a slot into a 32-byte word.
func packSlot(word []byte, s ClipboardSlot) {
	putUint80(word[2:12], uint64(s.ReturnIndex))
	putUint80(word[12:22], s.CopyByte())
	putUint80(word[22:32], s.PasteByte())
}

func putUint80(b []byte, v uint64) {
	b[0], b[1] = 0, 0
	binary.BigEndian.PutUint64(b[2:uint80Size], v)
}

func getUint80(b []byte) uint64 {
	return binary.BigEndian.Uint64(b[2:uint80Size])
}

func unpackSlot(word []byte) ClipboardSlot {
	return ClipboardSlot{
		ReturnIndex: int(getUint80(word[2:12])),
		CopySlot:    byteToSlot(getUint80(word[12:22]), 0),
		PasteSlot:   byteToSlot(getUint80(word[22:32]), 4),
	}
}

// byteToSlot inverts CopyByte and PasteByte. Offsets that encode no slot
// decode as -1.
func byteToSlot(v, skip uint64) int {
	if v < skip+WordSize {
		return -1
	}
	return int((v-skip)/WordSize - 1)
}

// DecodeClipboard decodes an encoded clipboard into its components.
// Useful for debugging and testing.
func DecodeClipboard(data []byte) (
	clipType byte,
	slots []ClipboardSlot,
	etherValue *big.Int,
	err error,
) {
	if len(data) < 2 {
		err = ErrShortReturn
		return
	}
	clipType = data[0]
	useEther := data[1] == ClipboardEtherFlag
	body := data[2:]
	if useEther {
		if len(body) < WordSize {
			err = ErrShortReturn
			return
		}
		etherValue = new(big.Int).SetBytes(body[len(body)-WordSize:])
		body = body[:len(body)-WordSize]
	}

	switch clipType {
	case ClipboardNoCopy:
	case ClipboardSingleCopy:
		if len(data) < WordSize {
			err = ErrShortReturn
			return
		}
		slots = []ClipboardSlot{unpackSlot(data[:WordSize])}
	case ClipboardMultiCopy:
		var values []any
		values, err = bytes32SliceArgs.Unpack(body)
		if err != nil {
			return
		}
		words, ok := values[0].([][32]byte)
		if !ok {
			err = fmt.Errorf("farm: unexpected clipboard slot type %T", values[0])
			return
		}
		for _, w := range words {
			slots = append(slots, unpackSlot(w[:]))
		}
	default:
		err = fmt.Errorf("farm: unknown clipboard type 0x%02x", clipType)
	}
	return
}

// ResolveClipboard returns the word ref copies and the position of the step
// it copies from. position is the referencing step's index in scope; only
// tags of strictly earlier steps resolve.
func ResolveClipboard(scope *Scope, ref Clipboard, position int, step string) ([]byte, int, error) {
	fail := func(err error) ([]byte, int, error) {
		return nil, 0, &ResolutionError{
			Step:      step,
			Tag:       ref.Tag,
			CopySlot:  ref.CopySlot,
			PasteSlot: ref.PasteSlot,
			Err:       err,
		}
	}

	ret, returnIndex, err := scope.lookup(ref.Tag, position)
	if err != nil {
		return fail(err)
	}
	if ref.CopySlot < 0 || ref.CopySlot >= len(ret)/WordSize {
		return fail(ErrSlotOutOfRange)
	}
	start := ref.CopySlot * WordSize
	word := make([]byte, WordSize)
	copy(word, ret[start:start+WordSize])
	return word, returnIndex, nil
}

// PasteWord returns a copy of callData with word written over argument word
// pasteSlot.
func PasteWord(callData []byte, pasteSlot int, word []byte) ([]byte, error) {
	if pasteSlot < 0 || len(word) != WordSize || len(callData) < 4 || pasteSlot >= (len(callData)-4)/WordSize {
		return nil, ErrSlotOutOfRange
	}
	start := 4 + pasteSlot*WordSize
	out := make([]byte, len(callData))
	copy(out, callData)
	copy(out[start:start+WordSize], word)
	return out, nil
}

// applyClipboards resolves refs against scope, splices the copied words into
// call and returns the finalized call with its encoded clipboard.
func applyClipboards(call *Call, refs []Clipboard, scope *Scope, position int, step string) (*Call, []byte, error) {
	data := call.Data()
	slots := make([]ClipboardSlot, 0, len(refs))

	for _, ref := range refs {
		if err := call.checkPaste(ref.PasteSlot); err != nil {
			return nil, nil, &ResolutionError{
				Step:      step,
				Tag:       ref.Tag,
				CopySlot:  ref.CopySlot,
				PasteSlot: ref.PasteSlot,
				Err:       err,
			}
		}
		word, returnIndex, err := ResolveClipboard(scope, ref, position, step)
		if err != nil {
			return nil, nil, err
		}
		data, err = PasteWord(data, ref.PasteSlot, word)
		if err != nil {
			return nil, nil, &ResolutionError{
				Step:      step,
				Tag:       ref.Tag,
				CopySlot:  ref.CopySlot,
				PasteSlot: ref.PasteSlot,
				Err:       err,
			}
		}
		slots = append(slots, ClipboardSlot{
			ReturnIndex: returnIndex,
			CopySlot:    ref.CopySlot,
			PasteSlot:   ref.PasteSlot,
		})
	}

	clip, err := EncodeClipboard(slots, call.EthValue())
	if err != nil {
		return nil, nil, &StepError{Step: step, Err: err}
	}
	return call.withData(data), clip, nil
}

// Resolve returns the word ref copies, as seen from the step at position.
func (s *Scope) Resolve(ref Clipboard, position int) ([]byte, error) {
	word, _, err := ResolveClipboard(s, ref, position, s.name)
	return word, err
}
