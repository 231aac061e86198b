package config

import (
	lua "github.com/yuin/gopher-lua"
)

// safeLibs are the only standard libraries opened in a config VM.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// unsafeBaseFuncs are base library functions that load code or bypass
// metatables.
var unsafeBaseFuncs = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
	"rawset",
	"rawget",
	"rawequal",
	"setfenv",
	"getfenv",
	"setmetatable",
	"getmetatable",
	"collectgarbage",
}

// newSandboxedVM creates a Lua VM without os, io, package or debug, and
// with the code-loading base functions removed.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: 256,
		RegistrySize:  1024 * 8,
	})

	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range unsafeBaseFuncs {
		L.SetGlobal(name, lua.LNil)
	}

	return L
}
