package compile

import (
	"encoding/binary"
	"math"

	"github.com/minio/highwayhash"
)

// fingerprintKey is a fixed 32-byte key; Fingerprint is a content hash, not
// a keyed MAC, so a constant key (rather than a per-call random one) is
// what makes the same instruction stream hash identically across runs and
// processes — the property an incremental-recompile cache needs. Same
// literal-key idiom as the teacher's inspector/graph.Hash.
var fingerprintKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Fingerprint hashes a compiled instruction stream with highwayhash,
// giving a caller doing incremental recompilation (e.g. an editor) a
// cheap key to detect that a variable's bytecode is unchanged and skip
// re-emitting its slot.
func Fingerprint(insts []Instruction) uint64 {
	buf := make([]byte, 0, len(insts)*80)
	var tmp [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(tmp[:], v)
		buf = append(buf, tmp[:]...)
	}
	for _, in := range insts {
		putU64(uint64(in.Op))
		putU64(math.Float64bits(in.Const))
		putU64(uint64(in.Off))
		putU64(uint64(in.BinOp))
		putU64(uint64(in.UnOp))
		putU64(uint64(in.BuiltinID))
		putU64(uint64(in.Argc))
		putU64(uint64(in.ThenLen))
		putU64(uint64(in.ElseLen))
		putU64(uint64(in.TableID))
	}
	hash, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		panic(err) // fingerprintKey is a fixed, valid 32-byte literal
	}
	_, _ = hash.Write(buf)
	return hash.Sum64()
}
