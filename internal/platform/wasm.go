//go:build js && wasm

package platform

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/inkarsa/kwitansi/internal"
)

// BrowserShareEnv snapshots the navigator's share facilities for the
// capability probe.
func BrowserShareEnv() ShareEnv {
	navigator := js.Global().Get("navigator")
	env := ShareEnv{HasContext: navigator.Truthy()}
	if !env.HasContext {
		return env
	}
	env.HasShare = navigator.Get("share").Type() == js.TypeFunction
	if navigator.Get("canShare").Type() == js.TypeFunction {
		env.CanShare = func(p SharePayload) (bool, error) {
			return jsCanShare(navigator, p)
		}
	}
	return env
}

// DevicePixelRatio reads window.devicePixelRatio, falling back to 1.
func DevicePixelRatio() float64 {
	dpr := js.Global().Get("devicePixelRatio")
	if dpr.Type() != js.TypeNumber || dpr.Float() <= 0 {
		return 1
	}
	return dpr.Float()
}

// DownloadSaver triggers a browser download via a temporary object URL
// and a synthetic anchor click.
type DownloadSaver struct{}

func (DownloadSaver) Save(filename string, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trigger download: %v", r)
		}
	}()
	document := js.Global().Get("document")
	if !document.Truthy() {
		return errors.New("document is not available")
	}
	buf := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(buf, data)
	blob := js.Global().Get("Blob").New([]any{buf})
	url := js.Global().Get("URL").Call("createObjectURL", blob)

	anchor := document.Call("createElement", "a")
	anchor.Set("href", url)
	anchor.Set("download", filename)
	document.Get("body").Call("appendChild", anchor)
	anchor.Call("click")
	anchor.Call("remove")
	js.Global().Get("URL").Call("revokeObjectURL", url)
	return nil
}

// NavigatorSharer hands payloads to navigator.share. Share blocks until
// the share sheet settles, so it must run off the event loop goroutine.
type NavigatorSharer struct{}

func (NavigatorSharer) Share(ctx context.Context, p SharePayload) error {
	navigator := js.Global().Get("navigator")
	if !navigator.Truthy() || navigator.Get("share").Type() != js.TypeFunction {
		return ErrShareUnsupported
	}
	file, err := newJSFile(p)
	if err != nil {
		return err
	}
	promise, err := callShare(navigator, map[string]any{
		"files": []any{file},
		"title": p.Title,
		"text":  p.Text,
	})
	if err != nil {
		return err
	}
	return awaitPromise(ctx, promise)
}

// AlertNotifier shows a blocking window.alert dialog.
type AlertNotifier struct{}

func (AlertNotifier) Notify(message string) {
	window := js.Global()
	if window.Get("alert").Type() == js.TypeFunction {
		window.Call("alert", message)
		return
	}
	internal.WarningLog("%s", message)
}

// jsCanShare builds the synthetic file and asks navigator.canShare
// whether it would be accepted. Thrown exceptions surface as errors.
func jsCanShare(navigator js.Value, p SharePayload) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("canShare threw: %v", r)
		}
	}()
	file, err := newJSFile(p)
	if err != nil {
		return false, err
	}
	result := navigator.Call("canShare", js.ValueOf(map[string]any{"files": []any{file}}))
	return result.Type() == js.TypeBoolean && result.Bool(), nil
}

func newJSFile(p SharePayload) (file js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("construct share file: %v", r)
		}
	}()
	ctor := js.Global().Get("File")
	if ctor.Type() != js.TypeFunction {
		return js.Value{}, errors.New("File constructor is not available")
	}
	buf := js.Global().Get("Uint8Array").New(len(p.Data))
	js.CopyBytesToJS(buf, p.Data)
	return ctor.New([]any{buf}, p.Filename, map[string]any{"type": p.MIME}), nil
}

func callShare(navigator js.Value, opts map[string]any) (promise js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("navigator.share threw: %v", r)
		}
	}()
	return navigator.Call("share", js.ValueOf(opts)), nil
}

// awaitPromise blocks until the promise settles or the context is
// canceled. Callbacks can only fire while the event loop is free, so
// callers must not invoke this from the event loop goroutine.
func awaitPromise(ctx context.Context, promise js.Value) error {
	done := make(chan error, 2)
	then := js.FuncOf(func(this js.Value, args []js.Value) any {
		done <- nil
		return nil
	})
	defer then.Release()
	catch := js.FuncOf(func(this js.Value, args []js.Value) any {
		reason := "share rejected"
		if len(args) > 0 && args[0].Truthy() {
			if msg := args[0].Get("message"); msg.Type() == js.TypeString {
				reason = msg.String()
			} else {
				reason = args[0].String()
			}
		}
		done <- errors.New(reason)
		return nil
	})
	defer catch.Release()
	promise.Call("then", then, catch)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
