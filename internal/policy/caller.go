package policy

import (
	"runtime"
	"strings"
)

// CallerPackage resolves the package path of the function skip frames
// above the caller of CallerPackage. The checked lookup paths use it to
// pin access decisions to the requesting compilation unit.
func CallerPackage(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return ""
	}
	return packageOfFunc(f.Name())
}

// packageOfFunc extracts the package path from a fully qualified function
// symbol such as "example.com/mod/pkg.(*T).Method" or "main.run".
func packageOfFunc(name string) string {
	slash := strings.LastIndexByte(name, '/')
	dot := strings.IndexByte(name[slash+1:], '.')
	if dot < 0 {
		return name
	}
	return name[:slash+1+dot]
}
