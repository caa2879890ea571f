package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/inkarsa/kwitansi/internal"
)

// ErrShareUnsupported is returned by sharers on platforms without a
// native share flow.
var ErrShareUnsupported = errors.New("native share is not available on this platform")

// DirSaver writes files into a directory, creating it when needed.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(filename string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// UnsupportedSharer rejects every share request. It backs builds that
// have no share sheet to hand a payload to.
type UnsupportedSharer struct{}

func (UnsupportedSharer) Share(context.Context, SharePayload) error {
	return ErrShareUnsupported
}

// LogNotifier routes user notices to the process log. Command line runs
// have no blocking dialog to show.
type LogNotifier struct{}

func (LogNotifier) Notify(message string) {
	internal.WarningLog("%s", message)
}

// NativeShareEnv describes a runtime without a browser context, so the
// probe reports share as unsupported.
func NativeShareEnv() ShareEnv {
	return ShareEnv{}
}
