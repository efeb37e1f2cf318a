package shell

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"

	"github.com/valarxu/mahjong-practice/analyzer"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("mahjong_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

func scriptContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type handler func(sc *ShellController, ctx context.Context, cmd *shellcmd) (*Response, error)

// luaCommand exposes a shell command to Lua. The single string argument is
// parsed like the rest of a shell line.
func luaCommand(name string, h handler) lua.LGFunction {
	return func(L *lua.LState) int {
		line := name
		if L.GetTop() > 0 {
			line += " " + L.ToString(1)
		}
		sc := getShell(L)
		cmd, err := extractFields(line)
		if err != nil {
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		r, err := h(sc, scriptContext(L), cmd)
		if err != nil {
			log.Err(err).Str("command", name).Msg("error-executing-script-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(r.message))
		// return number of results pushed to stack.
		return 1
	}
}

func analysisJSON(L *lua.LState) ([]byte, error) {
	sc := getShell(L)
	cmd, err := extractFields("draws " + L.ToString(1))
	if err != nil {
		return nil, err
	}
	k, err := tileArg(cmd)
	if err != nil {
		return nil, err
	}
	res, err := sc.an.AnalyzeDraws(scriptContext(L), sc.hand, sc.river, sc.exposed, k)
	if err != nil {
		return nil, err
	}
	return json.Marshal(analyzer.MakeJSONAnalysis(sc.hand, k, res))
}

// DrawsJSON returns the draw analysis for a discard as a JSON string.
func DrawsJSON(L *lua.LState) int {
	bts, err := analysisJSON(L)
	if err != nil {
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(bts))
	return 1
}

// Analysis returns the draw analysis for a discard as a Lua table, or nil
// and an error message.
func Analysis(L *lua.LState) int {
	bts, err := analysisJSON(L)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	v, err := luajson.Decode(L, bts)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(v)
	return 1
}

func noCtx(f func(*ShellController, *shellcmd) (*Response, error)) handler {
	return func(sc *ShellController, _ context.Context, cmd *shellcmd) (*Response, error) {
		return f(sc, cmd)
	}
}

func (sc *ShellController) script(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("mahjong_shell", lsc)
	L.SetGlobal("hand", L.NewFunction(luaCommand("hand", noCtx((*ShellController).setHand))))
	L.SetGlobal("river", L.NewFunction(luaCommand("river", noCtx((*ShellController).setRiver))))
	L.SetGlobal("exposed", L.NewFunction(luaCommand("exposed", noCtx((*ShellController).setExposed))))
	L.SetGlobal("decompose", L.NewFunction(luaCommand("decompose", noCtx((*ShellController).decompose))))
	L.SetGlobal("draws", L.NewFunction(luaCommand("draws", (*ShellController).draws)))
	L.SetGlobal("best", L.NewFunction(luaCommand("best", (*ShellController).best)))
	L.SetGlobal("draws_json", L.NewFunction(DrawsJSON))
	L.SetGlobal("analysis", L.NewFunction(Analysis))

	// scripts may pass arguments after the file name.
	args := L.NewTable()
	for _, a := range cmd.args[1:] {
		args.Append(lua.LString(a))
	}
	L.SetGlobal("args", args)

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
