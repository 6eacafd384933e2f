// script_runner.go - Lua harness for driving register programs against a live system

/*
ScriptRunner embeds a Lua interpreter with the register driver and the
memory model bound as globals, so transfer sequences can be written as small
scripts instead of recompiled Go. Register indexes and status codes are
exported as Lua constants; regwrite/regread raise Lua errors on driver
failures so a script aborts at the faulting access.

	memfill(0x1000, 64, 0xAB)
	regwrite(OUT_ADDR, 0x1000)
	regwrite(OUT_LEN, 64)
	if waitstatus(OUT) ~= DONE then error("transfer failed") end
*/

package main

import (
	"github.com/juju/errors"
	lua "github.com/yuin/gopher-lua"
)

type ScriptRunner struct {
	L   *lua.LState
	sys *DMASystem
	drv *RegisterDriver
}

func NewScriptRunner(sys *DMASystem, drv *RegisterDriver) *ScriptRunner {
	r := &ScriptRunner{L: lua.NewState(), sys: sys, drv: drv}
	r.register()
	return r
}

func (r *ScriptRunner) Close() {
	r.L.Close()
}

// RunFile executes a script file against the bound system.
func (r *ScriptRunner) RunFile(path string) error {
	if err := r.L.DoFile(path); err != nil {
		return errors.Annotatef(err, "script %s", path)
	}
	return nil
}

// RunString executes script source against the bound system.
func (r *ScriptRunner) RunString(src string) error {
	return errors.Trace(r.L.DoString(src))
}

func (r *ScriptRunner) register() {
	L := r.L

	consts := map[string]lua.LNumber{
		"OUT_ADDR":   REG_OUT_ADDR,
		"OUT_LEN":    REG_OUT_LEN,
		"OUT_STATUS": REG_OUT_STATUS,
		"IN_ADDR":    REG_IN_ADDR,
		"IN_LEN":     REG_IN_LEN,
		"IN_STATUS":  REG_IN_STATUS,
		"OUT":        DIR_OUT,
		"IN":         DIR_IN,
		"BUSY":       STATUS_BUSY,
		"DONE":       STATUS_DONE,
		"ERROR":      STATUS_ERROR,
	}
	for name, v := range consts {
		L.SetGlobal(name, v)
	}

	L.SetGlobal("regwrite", L.NewFunction(func(L *lua.LState) int {
		reg := L.CheckInt(1)
		val := uint32(L.CheckInt64(2))
		if err := r.drv.WriteReg(reg, val); err != nil {
			L.RaiseError("regwrite: %v", err)
		}
		return 0
	}))

	L.SetGlobal("regread", L.NewFunction(func(L *lua.LState) int {
		reg := L.CheckInt(1)
		val, err := r.drv.ReadReg(reg)
		if err != nil {
			L.RaiseError("regread: %v", err)
		}
		L.Push(lua.LNumber(val))
		return 1
	}))

	L.SetGlobal("waitstatus", L.NewFunction(func(L *lua.LState) int {
		dir := L.CheckInt(1)
		code, err := r.drv.WaitStatus(dir)
		if err != nil {
			L.RaiseError("waitstatus: %v", err)
		}
		L.Push(lua.LNumber(code))
		return 1
	}))

	L.SetGlobal("step", L.NewFunction(func(L *lua.LState) int {
		n := L.OptInt(1, 1)
		r.sys.StepN(n)
		return 0
	}))

	L.SetGlobal("poke8", L.NewFunction(func(L *lua.LState) int {
		r.sys.Mem.Write8(uint32(L.CheckInt64(1)), uint8(L.CheckInt(2)))
		return 0
	}))

	L.SetGlobal("peek8", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(r.sys.Mem.Read8(uint32(L.CheckInt64(1)))))
		return 1
	}))

	L.SetGlobal("memfill", L.NewFunction(func(L *lua.LState) int {
		r.sys.Mem.Fill(uint32(L.CheckInt64(1)), L.CheckInt(2), uint8(L.CheckInt(3)))
		return 0
	}))

	L.SetGlobal("source", L.NewFunction(func(L *lua.LState) int {
		r.sys.LoadSource([]byte(L.CheckString(1)))
		return 0
	}))

	L.SetGlobal("sink", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(string(r.sys.Sink)))
		return 1
	}))

	L.SetGlobal("inject_error", L.NewFunction(func(L *lua.LState) int {
		r.sys.Engine.InjectError(L.CheckInt(1), uint32(L.CheckInt64(2)))
		return 0
	}))
}
