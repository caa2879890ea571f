//go:build js && wasm

// Package ui wires the receipt app to the browser page: form inputs,
// the signature pad, the live preview and the export actions.
package ui

import (
	"context"
	"image"
	"syscall/js"

	"github.com/inkarsa/kwitansi"
	"github.com/inkarsa/kwitansi/internal"
	"github.com/inkarsa/kwitansi/internal/platform"
	"github.com/inkarsa/kwitansi/internal/signature"
)

var actionButtonIDs = []string{"save-image", "save-pdf", "share", "reset", "clear-signature"}

// UI binds one App instance to the DOM elements of the page shell.
type UI struct {
	app      *kwitansi.App
	document js.Value

	signatureCanvas js.Value
	previewCanvas   js.Value

	handlers []js.Func
}

// Run builds the receipt app against the live page and blocks forever.
func Run() {
	document := js.Global().Get("document")
	if !document.Truthy() {
		internal.ErrorLog("document is not available")
		return
	}

	u := &UI{document: document}
	u.signatureCanvas = document.Call("getElementById", "signature-pad")
	u.previewCanvas = document.Call("getElementById", "preview")
	if !u.signatureCanvas.Truthy() || !u.previewCanvas.Truthy() {
		internal.ErrorLog("page shell is missing the canvas elements")
		return
	}

	width, height := u.canvasSize()
	env := platform.BrowserShareEnv()
	app, err := kwitansi.New(kwitansi.Config{
		SurfaceWidth:  width,
		SurfaceHeight: height,
		PixelRatio:    platform.DevicePixelRatio,
		Saver:         platform.DownloadSaver{},
		Sharer:        platform.NavigatorSharer{},
		Notifier:      platform.AlertNotifier{},
		CanShare:      env.CanShare,
		Probe: func() bool {
			return platform.DetectShareSupport(env)
		},
	})
	if err != nil {
		internal.ErrorLog("start receipt app: %s", err.Error())
		return
	}
	u.app = app

	u.bindInputs()
	u.bindSignaturePad()
	u.bindActions()
	u.syncInputs()
	u.drawSignature()
	u.drawPreview()

	select {}
}

func (u *UI) canvasSize() (width, height float64) {
	rect := u.signatureCanvas.Call("getBoundingClientRect")
	width = rect.Get("width").Float()
	height = rect.Get("height").Float()
	if width <= 0 || height <= 0 {
		return kwitansi.DefaultSurfaceWidth, kwitansi.DefaultSurfaceHeight
	}
	return width, height
}

func (u *UI) bindInputs() {
	for _, id := range []string{"date", "from", "amount"} {
		id := id
		input := u.document.Call("getElementById", id)
		if !input.Truthy() {
			continue
		}
		u.listen(input, "input", func(this js.Value, args []js.Value) any {
			u.app.SetField(id, input.Get("value").String())
			u.drawPreview()
			return nil
		})
	}
}

func (u *UI) bindSignaturePad() {
	pad := u.signatureCanvas
	u.listen(pad, "pointerdown", func(this js.Value, args []js.Value) any {
		evt := args[0]
		evt.Call("preventDefault")
		u.app.Surface().PointerDown(pointerID(evt), eventPoint(evt))
		u.drawSignature()
		return nil
	})
	u.listen(pad, "pointermove", func(this js.Value, args []js.Value) any {
		if !u.app.Surface().Stroking() {
			return nil
		}
		evt := args[0]
		evt.Call("preventDefault")
		u.app.Surface().PointerMove(pointerID(evt), eventPoint(evt))
		u.drawSignature()
		return nil
	})
	u.listen(pad, "pointerup", func(this js.Value, args []js.Value) any {
		u.app.Surface().PointerUp(pointerID(args[0]))
		u.drawPreview()
		return nil
	})
	for _, event := range []string{"pointerleave", "pointercancel"} {
		u.listen(pad, event, func(this js.Value, args []js.Value) any {
			u.app.Surface().PointerCancel(pointerID(args[0]))
			u.drawPreview()
			return nil
		})
	}
	u.listen(js.Global(), "resize", func(this js.Value, args []js.Value) any {
		u.resizeSurface()
		return nil
	})
}

func (u *UI) bindActions() {
	u.bindClick("save-image", func() { u.runAction(u.app.ExportImage) })
	u.bindClick("save-pdf", func() { u.runAction(u.app.ExportPDF) })
	u.bindClick("share", func() {
		u.runAction(func() error { return u.app.ShareImage(context.Background()) })
	})
	u.bindClick("reset", func() {
		u.app.ResetForm()
		u.syncInputs()
		u.drawSignature()
		u.drawPreview()
	})
	u.bindClick("clear-signature", func() {
		width, height := u.canvasSize()
		u.app.Surface().Clear(width, height, platform.DevicePixelRatio())
		u.drawSignature()
		u.drawPreview()
	})

	if u.app.ShareSupported() {
		if share := u.document.Call("getElementById", "share"); share.Truthy() {
			share.Call("removeAttribute", "hidden")
		}
	}
}

func (u *UI) bindClick(id string, action func()) {
	node := u.document.Call("getElementById", id)
	u.listen(node, "click", func(this js.Value, args []js.Value) any {
		action()
		return nil
	})
}

// runAction moves exports off the event loop goroutine; the share flow
// awaits a promise and would deadlock the loop otherwise.
func (u *UI) runAction(op func() error) {
	go func() {
		u.setActionsDisabled(true)
		defer u.setActionsDisabled(false)
		if err := op(); err != nil {
			internal.DebugLog("action not completed: %s", err.Error())
		}
	}()
}

func (u *UI) setActionsDisabled(disabled bool) {
	for _, id := range actionButtonIDs {
		if node := u.document.Call("getElementById", id); node.Truthy() {
			node.Set("disabled", disabled)
		}
	}
}

func (u *UI) syncInputs() {
	data := u.app.FormData()
	for id, value := range map[string]string{
		"date":   data.Date,
		"from":   data.From,
		"amount": data.Amount,
	} {
		if input := u.document.Call("getElementById", id); input.Truthy() {
			input.Set("value", value)
		}
	}
}

func (u *UI) resizeSurface() {
	width, height := u.canvasSize()
	currentW, currentH := u.app.Surface().Size()
	if width == currentW && height == currentH {
		return
	}
	u.app.Surface().Clear(width, height, platform.DevicePixelRatio())
	u.drawSignature()
	u.drawPreview()
}

func (u *UI) drawSignature() {
	blit(u.signatureCanvas, u.app.Surface().Raster())
}

func (u *UI) drawPreview() {
	img, err := u.app.Preview(platform.DevicePixelRatio())
	if err != nil {
		internal.ErrorLog("render preview: %s", err.Error())
		return
	}
	blit(u.previewCanvas, img)
}

func (u *UI) listen(node js.Value, event string, handler func(js.Value, []js.Value) any) {
	if !node.Truthy() {
		return
	}
	fn := js.FuncOf(handler)
	node.Call("addEventListener", event, fn)
	u.handlers = append(u.handlers, fn)
}

// Release drops all registered event handlers.
func (u *UI) Release() {
	for _, fn := range u.handlers {
		fn.Release()
	}
	u.handlers = u.handlers[:0]
}

func pointerID(evt js.Value) int {
	return evt.Get("pointerId").Int()
}

func eventPoint(evt js.Value) signature.Point {
	return signature.Point{
		X: evt.Get("offsetX").Float(),
		Y: evt.Get("offsetY").Float(),
	}
}

// blit copies a raster into a canvas bitmap, resizing the bitmap when
// the raster dimensions changed.
func blit(canvas js.Value, img *image.RGBA) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if canvas.Get("width").Int() != width {
		canvas.Set("width", width)
	}
	if canvas.Get("height").Int() != height {
		canvas.Set("height", height)
	}
	buf := js.Global().Get("Uint8ClampedArray").New(len(img.Pix))
	js.CopyBytesToJS(buf, img.Pix)
	data := js.Global().Get("ImageData").New(buf, width, height)
	canvas.Call("getContext", "2d").Call("putImageData", data, 0, 0)
}
