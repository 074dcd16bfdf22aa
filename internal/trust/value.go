package trust

import (
	"fmt"
	"reflect"
	"unsafe"
)

// valueHeader mirrors the three-word layout of reflect.Value. The probe in
// probe.go validates this layout before any surgery is performed; a
// mismatch is bootstrap-fatal for the whole library.
type valueHeader struct {
	typ  unsafe.Pointer
	ptr  unsafe.Pointer
	flag uintptr
}

// Flag bits of reflect.Value, as laid down by the runtime. The two RO bits
// are what the ordinary API consults when it refuses Interface and Set on
// unexported members.
const (
	flagKindMask uintptr = (1 << 5) - 1
	flagStickyRO uintptr = 1 << 5
	flagEmbedRO  uintptr = 1 << 6
	flagRO               = flagStickyRO | flagEmbedRO
	flagAddr     uintptr = 1 << 8
)

func header(v *reflect.Value) *valueHeader {
	return (*valueHeader)(unsafe.Pointer(v))
}

// ClearReadOnly strips the read-only bits from v in place, making the
// ordinary Interface path usable on a handle the runtime had checked.
// Bootstrap-fatal if the runtime layout probe has failed.
func ClearReadOnly(v *reflect.Value) {
	mustBootstrap()
	header(v).flag &^= flagRO
}

// MarkReadOnly restores the sticky read-only bit on v, re-enabling the
// ordinary access checks for this handle.
func MarkReadOnly(v *reflect.Value) {
	mustBootstrap()
	header(v).flag |= flagStickyRO
}

// ReadOnly reports whether v carries either read-only bit.
func ReadOnly(v reflect.Value) bool {
	mustBootstrap()
	return header(&v).flag&flagRO != 0
}

// WritableAlias returns a settable view of v backed by the same storage,
// bypassing the unexported-field write check. v must be addressable.
func WritableAlias(v reflect.Value) (reflect.Value, error) {
	mustBootstrap()
	if !v.CanAddr() {
		return reflect.Value{}, fmt.Errorf("trust: value of type %s is not addressable; obtain the member from a pointer", v.Type())
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem(), nil
}
