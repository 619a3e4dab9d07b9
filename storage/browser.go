//go:build js && wasm

package storage

import (
	"fmt"
	"syscall/js"

	"gbhost/emu/log"
)

// Browser is the storage bridge for the wasm target. Loads go through a
// transient <input type="file"> element and a FileReader; persistence
// triggers a download of a Blob. Nothing here ever blocks: every completion
// is recorded by a JS callback and observed by the loop's next poll. The
// calls themselves must happen on the page's event loop (they are, since the
// loop is driven by the display refresh callback).
type Browser struct {
	t tracker
}

func NewBrowser() *Browser { return &Browser{} }

func (b *Browser) Request(kind Kind) (Handle, error) {
	if kind != LoadROM && kind != LoadState {
		return Handle{}, ErrBadKind
	}
	h, err := b.t.begin(kind)
	if err != nil {
		return Handle{}, err
	}

	accept := ".gb,.gbc"
	if kind == LoadState {
		accept = ".state"
	}
	b.openPicker(h, accept)
	return h, nil
}

// openPicker creates a file input, clicks it, and wires change/cancel events
// to the completion slot. All js.Funcs release themselves once the request
// reaches a terminal state.
func (b *Browser) openPicker(h Handle, accept string) {
	doc := js.Global().Get("document")
	input := doc.Call("createElement", "input")
	input.Set("type", "file")
	input.Set("accept", accept)

	var onChange, onCancel js.Func
	release := func() {
		onChange.Release()
		onCancel.Release()
	}

	onChange = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer release()
		files := input.Get("files")
		if files.Get("length").Int() == 0 {
			b.t.complete(h, nil, ErrCancelled)
			return nil
		}
		b.readFile(h, files.Index(0))
		return nil
	})
	onCancel = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer release()
		b.t.complete(h, nil, ErrCancelled)
		return nil
	})

	input.Call("addEventListener", "change", onChange)
	input.Call("addEventListener", "cancel", onCancel)
	input.Call("click")
}

// readFile drives a FileReader over the picked file and records the buffer.
func (b *Browser) readFile(h Handle, file js.Value) {
	reader := js.Global().Get("FileReader").New()

	var onLoad, onError js.Func
	release := func() {
		onLoad.Release()
		onError.Release()
	}

	onLoad = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer release()
		buf := js.Global().Get("Uint8Array").New(reader.Get("result"))
		data := make([]byte, buf.Get("length").Int())
		js.CopyBytesToGo(data, buf)

		if len(data) == 0 {
			b.t.complete(h, nil, ErrInvalidData)
			return nil
		}
		log.ModStorage.InfoZ("file read").
			String("name", file.Get("name").String()).
			Int("size", len(data)).
			End()
		b.t.complete(h, data, nil)
		return nil
	})
	onError = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer release()
		b.t.complete(h, nil, ioError(fmt.Errorf("FileReader: %s", reader.Get("error").Get("name").String())))
		return nil
	})

	reader.Set("onload", onLoad)
	reader.Set("onerror", onError)
	reader.Call("readAsArrayBuffer", file)
}

// Persist offers the state blob as a download. There is no sandbox-visible
// failure once the download is handed to the browser, so the request
// completes as soon as the click is issued.
func (b *Browser) Persist(data []byte) (Handle, error) {
	h, err := b.t.begin(PersistState)
	if err != nil {
		return Handle{}, err
	}

	buf := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(buf, data)

	array := js.Global().Get("Array").New(buf)
	blob := js.Global().Get("Blob").New(array, map[string]any{
		"type": "application/octet-stream",
	})
	url := js.Global().Get("URL").Call("createObjectURL", blob)

	doc := js.Global().Get("document")
	a := doc.Call("createElement", "a")
	a.Set("href", url)
	a.Set("download", "gbhost.state")
	a.Call("click")

	js.Global().Get("URL").Call("revokeObjectURL", url)

	log.ModStorage.InfoZ("state offered as download").
		Int("size", len(data)).
		End()
	b.t.complete(h, nil, nil)
	return h, nil
}

func (b *Browser) Poll(h Handle) Result { return b.t.poll(h) }
