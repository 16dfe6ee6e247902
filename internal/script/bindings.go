package script

import (
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cellwin/internal/renderer/core"
)

const windowTypeName = "cellwin.window"

// The bindings run inside LoadString or Tick with e.mu held.

func (e *Engine) registerModule(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"root":    e.luaRoot,
		"refresh": e.luaRefresh,
		"size":    e.luaSize,
		"log":     e.luaLog,
	})
	L.SetGlobal("cellwin", mod)
}

func (e *Engine) registerWindowType(L *lua.LState) {
	mt := L.NewTypeMetatable(windowTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"child":   e.luaChild,
		"move":    luaMove,
		"resize":  luaResize,
		"hide":    luaHide,
		"show":    luaShow,
		"refresh": luaWindowRefresh,
		"write":   luaWrite,
		"put":     luaPut,
		"char":    luaChar,
		"fill":    luaFill,
		"style":   luaStyle,
		"clear":   luaClear,
		"cursor":  luaCursor,
		"width":   luaWidth,
		"height":  luaHeight,
		"visible": luaVisible,
		"id":      luaID,
		"release": e.luaRelease,
	}))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		h := toHandle(L, 1)
		L.Push(lua.LString("window " + h.w.ID()))
		return 1
	}))
}

func pushWindow(L *lua.LState, h *handle) {
	ud := L.NewUserData()
	ud.Value = h
	L.SetMetatable(ud, L.GetTypeMetatable(windowTypeName))
	L.Push(ud)
}

func toHandle(L *lua.LState, n int) *handle {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(*handle)
	if !ok {
		L.ArgError(n, "window expected")
	}
	return h
}

// checkWindow returns the live handle at n, raising a Lua error when the
// script already released it.
func checkWindow(L *lua.LState, n int) *handle {
	h := toHandle(L, n)
	if h.released {
		L.RaiseError("window %s has been released", h.w.ID())
	}
	return h
}

func checkRune(L *lua.LState, n int) rune {
	s := L.CheckString(n)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		L.ArgError(n, "character expected")
	}
	return r
}

// cellwin.root()
func (e *Engine) luaRoot(L *lua.LState) int {
	pushWindow(L, &handle{w: e.wctx.Root()})
	return 1
}

// cellwin.refresh()
func (e *Engine) luaRefresh(L *lua.LState) int {
	e.wctx.Refresh()
	return 0
}

// cellwin.size() -> width, height
func (e *Engine) luaSize(L *lua.LState) int {
	w, h := e.wctx.Size()
	L.Push(lua.LNumber(w))
	L.Push(lua.LNumber(h))
	return 2
}

// cellwin.log(msg)
func (e *Engine) luaLog(L *lua.LState) int {
	e.logger.Info("%s: %s", e.source, L.CheckString(1))
	return 0
}

// w:child(x, y, width, height [, name]) -> window | nil, err
func (e *Engine) luaChild(L *lua.LState) int {
	h := checkWindow(L, 1)
	x, y := L.CheckInt(2), L.CheckInt(3)
	width, height := L.CheckInt(4), L.CheckInt(5)
	name := L.OptString(6, "")

	child, err := h.w.CreateNamedChild(name, x, y, width, height)
	if err != nil {
		e.logger.Warn("%s: %v", e.source, err)
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	ch := &handle{w: child, owned: true}
	e.owned = append(e.owned, ch)
	pushWindow(L, ch)
	return 1
}

// w:release()
func (e *Engine) luaRelease(L *lua.LState) int {
	h := checkWindow(L, 1)
	if !h.owned {
		L.RaiseError("the root window cannot be released")
	}

	h.released = true
	h.w.Release()
	for i, o := range e.owned {
		if o == h {
			e.owned = append(e.owned[:i], e.owned[i+1:]...)
			break
		}
	}
	return 0
}

// w:move(x, y)
func luaMove(L *lua.LState) int {
	h := checkWindow(L, 1)
	h.w.Move(L.CheckInt(2), L.CheckInt(3))
	return 0
}

// w:resize(x, y, width, height) -> true | nil, err
func luaResize(L *lua.LState) int {
	h := checkWindow(L, 1)
	err := h.w.Resize(L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), L.CheckInt(5))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func luaHide(L *lua.LState) int {
	checkWindow(L, 1).w.Hide()
	return 0
}

func luaShow(L *lua.LState) int {
	checkWindow(L, 1).w.Show()
	return 0
}

func luaWindowRefresh(L *lua.LState) int {
	checkWindow(L, 1).w.Refresh()
	return 0
}

// w:write(str) writes at the cursor.
func luaWrite(L *lua.LState) int {
	h := checkWindow(L, 1)
	h.w.AddString(L.CheckString(2))
	return 0
}

// w:put(x, y, str)
func luaPut(L *lua.LState) int {
	h := checkWindow(L, 1)
	h.w.AddStringAt(L.CheckString(4), L.CheckInt(2), L.CheckInt(3))
	return 0
}

// w:char(ch [, x, y])
func luaChar(L *lua.LState) int {
	h := checkWindow(L, 1)
	r := checkRune(L, 2)
	if L.GetTop() >= 4 {
		h.w.AddRuneAt(r, L.CheckInt(3), L.CheckInt(4))
		return 0
	}
	h.w.AddRune(r)
	return 0
}

// w:fill(ch) fills with the window's current style.
func luaFill(L *lua.LState) int {
	h := checkWindow(L, 1)
	h.w.Fill(checkRune(L, 2), h.w.Style())
	return 0
}

var colorNames = map[string]core.Color{
	"default": core.ColorDefault,
	"black":   core.ColorBlack,
	"white":   core.ColorWhite,
	"red":     core.ColorRed,
	"green":   core.ColorGreen,
	"blue":    core.ColorBlue,
	"yellow":  core.ColorYellow,
	"cyan":    core.ColorCyan,
	"magenta": core.ColorMagenta,
}

var attrNames = map[string]core.Attribute{
	"bold":          core.AttrBold,
	"dim":           core.AttrDim,
	"italic":        core.AttrItalic,
	"underline":     core.AttrUnderline,
	"blink":         core.AttrBlink,
	"reverse":       core.AttrReverse,
	"strikethrough": core.AttrStrikethrough,
}

// checkColor reads a color name, a palette index 0-255, or nil for the
// terminal default.
func checkColor(L *lua.LState, n int) core.Color {
	switch v := L.Get(n).(type) {
	case *lua.LNilType:
		return core.ColorDefault
	case lua.LNumber:
		if v < 0 || v > 255 {
			L.ArgError(n, "palette index out of range")
		}
		return core.ColorFromIndex(uint8(v))
	case lua.LString:
		c, ok := colorNames[string(v)]
		if !ok {
			L.ArgError(n, "unknown color "+string(v))
		}
		return c
	default:
		L.ArgError(n, "color expected")
		return core.ColorDefault
	}
}

// w:style(fg [, bg [, attr...]]) sets the style of later writes and fills.
func luaStyle(L *lua.LState) int {
	h := checkWindow(L, 1)

	var attrs core.Attribute
	for i := 4; i <= L.GetTop(); i++ {
		name := L.CheckString(i)
		a, ok := attrNames[name]
		if !ok {
			L.ArgError(i, "unknown attribute "+name)
		}
		attrs = attrs.With(a)
	}

	h.w.SetStyle(core.DefaultStyle().
		WithForeground(checkColor(L, 2)).
		WithBackground(checkColor(L, 3)).
		WithAttributes(attrs))
	return 0
}

func luaClear(L *lua.LState) int {
	checkWindow(L, 1).w.Clear()
	return 0
}

// w:cursor(x, y)
func luaCursor(L *lua.LState) int {
	h := checkWindow(L, 1)
	h.w.MoveCursor(L.CheckInt(2), L.CheckInt(3))
	return 0
}

func luaWidth(L *lua.LState) int {
	L.Push(lua.LNumber(checkWindow(L, 1).w.Width()))
	return 1
}

func luaHeight(L *lua.LState) int {
	L.Push(lua.LNumber(checkWindow(L, 1).w.Height()))
	return 1
}

func luaVisible(L *lua.LState) int {
	L.Push(lua.LBool(checkWindow(L, 1).w.Visible()))
	return 1
}

func luaID(L *lua.LState) int {
	L.Push(lua.LString(toHandle(L, 1).w.ID()))
	return 1
}
