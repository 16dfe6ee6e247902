// Package script runs Lua scene scripts against a window context.
//
// A scene script builds and animates a window tree through the global
// cellwin module:
//
//	local root = cellwin.root()
//	local w = root:child(2, 2, 10, 10)
//	w:write("Hello World!")
//	w:refresh()
//
//	function on_tick(n)
//	    w:move(2 + n % 10, 2)
//	end
//
// Windows created by a script are owned by the engine. Reloading or
// closing the engine releases every window the script still holds.
//
// The Lua state is sandboxed: only the base, table, string and math
// libraries are available, and the file loading functions are removed.
package script
