// Package platform abstracts the runtime services the export pipeline
// calls into: saving bytes as a named file, invoking the native share
// flow, and surfacing blocking notices. Browser and command line builds
// provide their own implementations.
package platform

import "context"

// SharePayload is a named, typed file plus the caption shown by the
// native share sheet.
type SharePayload struct {
	Filename string
	MIME     string
	Data     []byte
	Title    string
	Text     string
}

// Saver persists encoded bytes as a named file in the user's download
// location.
type Saver interface {
	Save(filename string, data []byte) error
}

// Sharer hands a payload to the platform's native share flow. The call
// blocks until the flow completes; a dismissed or rejected share is an
// error.
type Sharer interface {
	Share(ctx context.Context, payload SharePayload) error
}

// Notifier surfaces a blocking notice to the user.
type Notifier interface {
	Notify(message string)
}
