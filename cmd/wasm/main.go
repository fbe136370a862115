//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/engine"
)

var rec *engine.Recording

func main() {
	animlib := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	animlib.Set("loadScene", js.FuncOf(loadScene))
	animlib.Set("loadSampleScene", js.FuncOf(loadSampleScene))

	// --- Queries (frontend ← backend) ---
	animlib.Set("getFrame", js.FuncOf(getFrame))
	animlib.Set("getFrameCount", js.FuncOf(getFrameCount))
	animlib.Set("getFPS", js.FuncOf(getFPS))
	animlib.Set("getSize", js.FuncOf(getSize))
	animlib.Set("hitTest", js.FuncOf(hitTest))
	animlib.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))

	js.Global().Set("animlib", animlib)
	js.Global().Set("animlibWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// loadScene(script, format) compiles a JSON or YAML scene script.
func loadScene(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing scene script")
	}
	format := document.FormatJSON
	if len(args) > 1 && args[1].String() == string(document.FormatYAML) {
		format = document.FormatYAML
	}

	sc, err := document.Decode([]byte(args[0].String()), format)
	if err != nil {
		return errorResult(err.Error())
	}
	return record(sc)
}

func loadSampleScene(this js.Value, args []js.Value) any {
	return record(document.NewSampleScene())
}

func record(sc *document.Scene) any {
	r, err := engine.Record(context.Background(), sc, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	rec = r
	return js.ValueOf(map[string]any{"ok": true, "frames": len(r.Frames)})
}

func getFrame(this js.Value, args []js.Value) any {
	if rec == nil || len(args) < 1 {
		return js.ValueOf("[]")
	}
	out, err := rec.FrameJSON(args[0].Int())
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(out)
}

func getFrameCount(this js.Value, args []js.Value) any {
	if rec == nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(len(rec.Frames))
}

func getFPS(this js.Value, args []js.Value) any {
	if rec == nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(rec.FPS)
}

func getSize(this js.Value, args []js.Value) any {
	if rec == nil {
		return js.ValueOf(map[string]any{"width": 0, "height": 0})
	}
	return js.ValueOf(map[string]any{"width": rec.Viewport.Width, "height": rec.Viewport.Height})
}

// hitTest(x, y) takes canvas pixels and returns an object id or "".
func hitTest(this js.Value, args []js.Value) any {
	if rec == nil || len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(rec.HitTest(args[0].Float(), args[1].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	if rec == nil || len(args) < 1 || args[0].Type() != js.TypeObject {
		return js.ValueOf("{}")
	}
	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	data, err := json.Marshal(rec.Stage.SelectionBounds(ids))
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func errorResult(msg string) any {
	return js.ValueOf(map[string]any{"error": msg})
}
