package trust

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/prybar-dev/prybar/internal/lazy"
)

// ErrIncompatibleRuntime is wrapped by every probe failure. If the running
// Go runtime ever changes the reflect.Value layout or flag encoding, the
// library cannot provide any guarantee and refuses to start.
var ErrIncompatibleRuntime = errors.New("trust: incompatible Go runtime: reflect.Value layout probe failed")

type probeSpecimen struct {
	hidden  int
	Visible int
}

var bootstrap = lazy.Of(func() (struct{}, error) {
	return struct{}{}, runProbe()
})

// Probe validates the reflect.Value header layout and the two bypass
// primitives against the running runtime. The check runs once per process;
// the cached result is returned on every later call.
func Probe() error {
	_, err := bootstrap.Get()
	return err
}

// mustBootstrap gates every unsafe primitive. Probe failure is a fatal,
// non-recoverable condition surfaced as an unchecked failure on first use.
func mustBootstrap() {
	if _, err := bootstrap.Get(); err != nil {
		panic(err)
	}
}

func runProbe() error {
	if unsafe.Sizeof(reflect.Value{}) != unsafe.Sizeof(valueHeader{}) {
		return fmt.Errorf("%w: reflect.Value is %d bytes, expected %d",
			ErrIncompatibleRuntime, unsafe.Sizeof(reflect.Value{}), unsafe.Sizeof(valueHeader{}))
	}

	// Kind bits must occupy the low five bits of the flag word.
	v := reflect.ValueOf(probeSpecimen{hidden: 41}).Field(0)
	if got := header(&v).flag & flagKindMask; got != uintptr(reflect.Int) {
		return fmt.Errorf("%w: kind bits read %d, expected %d", ErrIncompatibleRuntime, got, uintptr(reflect.Int))
	}

	// The runtime must have marked the unexported field read-only, and
	// clearing the RO bits must make the ordinary path usable.
	if v.CanInterface() {
		return fmt.Errorf("%w: unexported field handle was not access-checked", ErrIncompatibleRuntime)
	}
	header(&v).flag &^= flagRO
	if !v.CanInterface() {
		return fmt.Errorf("%w: read-only bits did not clear", ErrIncompatibleRuntime)
	}
	if got, ok := v.Interface().(int); !ok || got != 41 {
		return fmt.Errorf("%w: forced read returned %v, expected 41", ErrIncompatibleRuntime, v.Interface())
	}

	// Write aliasing through NewAt must reach the same storage.
	var s probeSpecimen
	f := reflect.ValueOf(&s).Elem().Field(0)
	if !f.CanAddr() {
		return fmt.Errorf("%w: field of pointed-to struct is not addressable", ErrIncompatibleRuntime)
	}
	reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem().SetInt(7)
	if s.hidden != 7 {
		return fmt.Errorf("%w: write alias did not reach backing storage", ErrIncompatibleRuntime)
	}

	return nil
}
