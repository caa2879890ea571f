package platform

import (
	"bytes"
	"image"
	"image/png"

	"github.com/inkarsa/kwitansi/internal"
)

// ProbeFunc reports whether the runtime can share file payloads. The
// result is computed once at startup and never re-evaluated.
type ProbeFunc func() bool

// ShareEnv describes the share facilities a runtime exposes, as seen by
// the capability probe.
type ShareEnv struct {
	// HasContext is false when there is no window/navigator context at
	// all, e.g. outside a browser.
	HasContext bool

	// HasShare reports whether a native share function exists.
	HasShare bool

	// CanShare checks whether the runtime accepts the given payload for
	// sharing. Nil means the runtime offers no acceptance check. An
	// error means the check (or the payload construction behind it)
	// threw.
	CanShare func(SharePayload) (bool, error)
}

// DetectShareSupport decides whether the share action is offered:
//
//	no context or no share function          -> unsupported
//	share present, no acceptance check       -> supported
//	acceptance check present                 -> supported iff a synthetic
//	                                            file payload passes it
//	acceptance check throws                  -> unsupported
func DetectShareSupport(env ShareEnv) bool {
	if !env.HasContext {
		return false
	}
	if !env.HasShare {
		return false
	}
	if env.CanShare == nil {
		return true
	}
	ok, err := env.CanShare(probePayload())
	if err != nil {
		internal.WarningLog("share probe rejected: %s", err.Error())
		return false
	}
	return ok
}

// probePayload builds the synthetic file used to test share acceptance.
func probePayload() SharePayload {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		internal.WarningLog("share probe payload encode failed: %s", err.Error())
	}
	return SharePayload{
		Filename: "probe.png",
		MIME:     "image/png",
		Data:     buf.Bytes(),
	}
}
