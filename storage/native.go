//go:build !js

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ncruces/zenity"
	"golang.org/x/sync/errgroup"

	"gbhost/emu/log"
)

// dialogs abstracts the blocking file pickers so tests can run without a
// display server.
type dialogs struct {
	openROM   func(startDir string) (string, error)
	openState func(startDir string) (string, error)
	saveState func(startDir string) (string, error)
}

// Native is the storage bridge for the desktop target. Each request spawns
// one worker goroutine that runs the blocking dialog and the filesystem
// access, then records the completion; the tick path only ever polls. The
// single-flight slots guarantee at most one dialog per kind is ever shown.
type Native struct {
	t tracker
	g errgroup.Group

	// startDir is where pickers open; updated to the directory of the last
	// picked file. OnDirPicked, when set, is notified of that change so the
	// caller can persist it.
	mu          sync.Mutex
	startDir    string
	romTitle    string
	OnDirPicked func(dir string)

	dlg dialogs
}

func NewNative(startDir string) *Native {
	return &Native{
		startDir: startDir,
		dlg: dialogs{
			openROM:   openROMDialog,
			openState: openStateDialog,
			saveState: saveStateDialog,
		},
	}
}

func openROMDialog(startDir string) (string, error) {
	return zenity.SelectFile(
		zenity.Title("Open ROM"),
		zenity.Filename(startDir),
		zenity.FileFilter{Name: "Game Boy ROM", Patterns: []string{"*.gb", "*.gbc"}},
		zenity.FileFilter{Name: "All files", Patterns: []string{"*"}},
	)
}

func openStateDialog(startDir string) (string, error) {
	return zenity.SelectFile(
		zenity.Title("Load state"),
		zenity.Filename(startDir),
		zenity.FileFilter{Name: "Save state", Patterns: []string{"*.state"}},
	)
}

func saveStateDialog(startDir string) (string, error) {
	return zenity.SelectFileSave(
		zenity.Title("Save state"),
		zenity.Filename(filepath.Join(startDir, "gbhost.state")),
		zenity.ConfirmOverwrite(),
		zenity.FileFilter{Name: "Save state", Patterns: []string{"*.state"}},
	)
}

func (n *Native) Request(kind Kind) (Handle, error) {
	if kind != LoadROM && kind != LoadState {
		return Handle{}, ErrBadKind
	}
	h, err := n.t.begin(kind)
	if err != nil {
		return Handle{}, err
	}

	pick := n.dlg.openROM
	if kind == LoadState {
		pick = n.dlg.openState
	}

	n.g.Go(func() error {
		data, err := n.load(kind, pick)
		n.t.complete(h, data, err)
		return nil
	})
	return h, nil
}

func (n *Native) load(kind Kind, pick func(string) (string, error)) ([]byte, error) {
	path, err := pick(n.dir())
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil, ErrCancelled
		}
		return nil, ioError(err)
	}
	n.pickedDir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError(err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	log.ModStorage.InfoZ("file loaded").
		String("path", path).
		Int("size", len(data)).
		End()

	// A save state may carry a manifest sidecar; it is informational, so a
	// missing or unreadable one is not an error.
	if kind == LoadState {
		if m, err := ReadManifest(path + ".json"); err == nil {
			log.ModStorage.InfoZ("state manifest").
				String("rom", m.Rom).
				String("created", m.Created.Format(time.RFC3339)).
				Int("size", m.Size).
				End()
		}
	}
	return data, nil
}

func (n *Native) Persist(data []byte) (Handle, error) {
	h, err := n.t.begin(PersistState)
	if err != nil {
		return Handle{}, err
	}

	n.g.Go(func() error {
		n.t.complete(h, nil, n.save(data))
		return nil
	})
	return h, nil
}

func (n *Native) save(data []byte) error {
	path, err := n.dlg.saveState(n.dir())
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return ErrCancelled
		}
		return ioError(err)
	}
	n.pickedDir(path)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return ioError(err)
	}

	// The manifest sidecar is informational; failing to write it does not
	// fail the persist.
	m := Manifest{Rom: n.rom(), Created: time.Now(), Size: len(data)}
	if err := WriteManifest(path+".json", m); err != nil {
		log.ModStorage.WarnZ("manifest write failed").Error("err", err).End()
	}

	log.ModStorage.InfoZ("state persisted").
		String("path", path).
		Int("size", len(data)).
		End()
	return nil
}

func (n *Native) dir() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.startDir
}

// SetRomTitle records the title of the currently loaded ROM for the save
// state manifest.
func (n *Native) SetRomTitle(title string) {
	n.mu.Lock()
	n.romTitle = title
	n.mu.Unlock()
}

func (n *Native) rom() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.romTitle
}

func (n *Native) pickedDir(path string) {
	dir := filepath.Dir(path)

	n.mu.Lock()
	if dir == n.startDir {
		n.mu.Unlock()
		return
	}
	n.startDir = dir
	notify := n.OnDirPicked
	n.mu.Unlock()

	if notify != nil {
		notify(dir)
	}
}

func (n *Native) Poll(h Handle) Result { return n.t.poll(h) }

// Close waits for in-flight dialog workers. Pending requests still complete;
// their results are simply never polled.
func (n *Native) Close() error { return n.g.Wait() }
