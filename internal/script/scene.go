package script

// DefaultSceneName identifies the built-in scene in logs and errors.
const DefaultSceneName = "<demo>"

// DefaultScene draws the demo window and keeps a tick counter on the last
// screen row.
const DefaultScene = `
local root = cellwin.root()

local win = root:child(2, 2, 10, 10, "demo")
win:char("F")
win:char("C", 5, 5)
win:write("Hello World!")
win:put(3, 0, "Not me!")

local _, rows = cellwin.size()
local status = root:child(0, rows - 1, 20, 1, "status")

cellwin.refresh()

function on_tick(n)
    status:clear()
    status:write("tick " .. n)
    status:refresh()
end
`

// LoadDefault replaces the current scene with DefaultScene.
func (e *Engine) LoadDefault() error {
	return e.LoadString(DefaultSceneName, DefaultScene)
}
