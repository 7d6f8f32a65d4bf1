package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mj1618/aerospace-layouts/internal/config"
	"github.com/mj1618/aerospace-layouts/internal/display"
	"github.com/mj1618/aerospace-layouts/internal/wm"
)

// fakeWM records every operation and simulates workspace membership so
// the reposition and resize passes can look windows up after the move
// pass placed them.
type fakeWM struct {
	ops        []string
	byBundle   map[string][]wm.Window
	workspaces map[string][]wm.Window
	listErr    error
}

func newFakeWM() *fakeWM {
	return &fakeWM{
		byBundle:   map[string][]wm.Window{},
		workspaces: map[string][]wm.Window{},
	}
}

func (f *fakeWM) addWindow(w wm.Window, workspace string) {
	f.byBundle[w.BundleID] = append(f.byBundle[w.BundleID], w)
	if workspace != "" {
		f.workspaces[workspace] = append(f.workspaces[workspace], w)
	}
}

func (f *fakeWM) record(format string, args ...interface{}) {
	f.ops = append(f.ops, fmt.Sprintf(format, args...))
}

func (f *fakeWM) WorkspaceWindows(_ context.Context, workspace string) ([]wm.Window, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.workspaces[workspace], nil
}

func (f *fakeWM) BundleWindows(_ context.Context, bundleID string) ([]wm.Window, error) {
	return f.byBundle[bundleID], nil
}

func (f *fakeWM) MoveToWorkspace(_ context.Context, windowID int, workspace string) bool {
	f.record("move %d %s", windowID, workspace)
	var moved wm.Window
	for ws, windows := range f.workspaces {
		for i, w := range windows {
			if w.ID == windowID {
				moved = w
				f.workspaces[ws] = append(append([]wm.Window{}, windows[:i]...), windows[i+1:]...)
				break
			}
		}
	}
	if moved.ID == 0 {
		for _, windows := range f.byBundle {
			for _, w := range windows {
				if w.ID == windowID {
					moved = w
				}
			}
		}
	}
	moved.ID = windowID
	f.workspaces[workspace] = append(f.workspaces[workspace], moved)
	return true
}

func (f *fakeWM) FlattenWorkspace(_ context.Context, workspace string) bool {
	f.record("flatten %s", workspace)
	return true
}

func (f *fakeWM) SetLayout(_ context.Context, mode string, windowID int) bool {
	f.record("layout %s %d", mode, windowID)
	return true
}

func (f *fakeWM) Focus(_ context.Context, windowID int) bool {
	f.record("focus %d", windowID)
	return true
}

func (f *fakeWM) JoinLeft(_ context.Context, windowID int) bool {
	f.record("join %d", windowID)
	return true
}

func (f *fakeWM) Resize(_ context.Context, dimension string, px int, windowID int) bool {
	f.record("resize %s %d %d", dimension, px, windowID)
	return true
}

func (f *fakeWM) SwitchWorkspace(_ context.Context, workspace string) bool {
	f.record("workspace %s", workspace)
	return true
}

// fakeApps treats every application as already running unless listed.
type fakeApps struct {
	notRunning map[string]bool
	opened     []string
}

func (f *fakeApps) IsRunning(_ context.Context, bundleID string) bool {
	return !f.notRunning[bundleID]
}

func (f *fakeApps) Open(_ context.Context, bundleID string) bool {
	f.opened = append(f.opened, bundleID)
	return true
}

type fakeDisplays struct {
	displays []display.Info
	err      error
}

func (f *fakeDisplays) List(_ context.Context) ([]display.Info, error) {
	return f.displays, f.err
}

func testEngine(client wm.Client, lifecycle *fakeApps, displays []display.Info) *Engine {
	e := New(client, lifecycle, &fakeDisplays{displays: displays}, log.New(io.Discard))
	e.Delay = 0
	return e
}

func window(id int, bundleID string) wm.Window {
	return wm.Window{ID: id, App: bundleID, BundleID: bundleID}
}

func TestApply_EndToEnd(t *testing.T) {
	// Layout {workspace W, h_tiles, horizontal, [com.a, com.b size 1/3]}
	// on a 1200px-wide display, with one stale window parked in W.
	client := newFakeWM()
	client.addWindow(window(99, "com.stale"), "W")
	client.addWindow(window(1, "com.a"), "T1")
	client.addWindow(window(2, "com.b"), "T2")

	layout := &config.Layout{
		Workspace:   "W",
		Mode:        config.ModeHTiles,
		Orientation: config.Horizontal,
		Windows: []config.Node{
			&config.WindowNode{BundleID: "com.a"},
			&config.WindowNode{BundleID: "com.b", Size: &config.Size{Num: 1, Den: 3}},
		},
	}
	e := testEngine(client, &fakeApps{}, []display.Info{{ID: 1, Name: "Main", Width: 1200, Height: 800, Main: true}})

	if err := e.Apply(context.Background(), layout, "S"); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{
		"move 99 S",
		"move 1 W",
		"move 2 W",
		"flatten W",
		"layout h_tiles 1",
		"focus 2",
		"join 2",
		"workspace W",
		"resize width 400 2",
	}
	if !reflect.DeepEqual(client.ops, want) {
		t.Errorf("operation sequence:\n  got  %v\n  want %v", client.ops, want)
	}
}

func TestApply_GroupSizeResolvesToFirstChild(t *testing.T) {
	// A sized vertical group resizes its first child window's height:
	// 900 * 1/2 = 450.
	client := newFakeWM()
	client.addWindow(window(3, "com.c"), "T")

	layout := &config.Layout{
		Workspace:   "W",
		Mode:        config.ModeVTiles,
		Orientation: config.Horizontal,
		Windows: []config.Node{
			&config.GroupNode{
				Orientation: config.Vertical,
				Size:        &config.Size{Num: 1, Den: 2},
				Windows:     []config.Node{&config.WindowNode{BundleID: "com.c"}},
			},
		},
	}
	e := testEngine(client, &fakeApps{}, []display.Info{{Name: "Main", Width: 1440, Height: 900, Main: true}})

	if err := e.Apply(context.Background(), layout, "S"); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	found := false
	for _, op := range client.ops {
		if op == "resize height 450 3" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected \"resize height 450 3\" in %v", client.ops)
	}
}

func TestMovePass_PreOrderDepthFirst(t *testing.T) {
	client := newFakeWM()
	for i, b := range []string{"com.a", "com.b", "com.c", "com.d", "com.e"} {
		client.addWindow(window(i+1, b), "")
	}

	nodes := []config.Node{
		&config.WindowNode{BundleID: "com.a"},
		&config.GroupNode{Orientation: config.Vertical, Windows: []config.Node{
			&config.WindowNode{BundleID: "com.b"},
			&config.GroupNode{Orientation: config.Horizontal, Windows: []config.Node{
				&config.WindowNode{BundleID: "com.c"},
				&config.WindowNode{BundleID: "com.d"},
			}},
		}},
		&config.WindowNode{BundleID: "com.e"},
	}

	e := testEngine(client, &fakeApps{}, nil)
	e.movePass(context.Background(), nodes, "W")

	want := []string{"move 1 W", "move 2 W", "move 3 W", "move 4 W", "move 5 W"}
	if !reflect.DeepEqual(client.ops, want) {
		t.Errorf("move order:\n  got  %v\n  want %v", client.ops, want)
	}
}

func TestRepositionPass_JoinsNonFirstSiblings(t *testing.T) {
	client := newFakeWM()
	for i, b := range []string{"com.a", "com.b", "com.c", "com.d"} {
		client.addWindow(window(i+1, b), "W")
	}

	layout := &config.Layout{
		Workspace:   "W",
		Mode:        config.ModeHTiles,
		Orientation: config.Horizontal,
		Windows: []config.Node{
			&config.WindowNode{BundleID: "com.a"},
			&config.GroupNode{Orientation: config.Vertical, Windows: []config.Node{
				&config.WindowNode{BundleID: "com.b"},
				&config.WindowNode{BundleID: "com.c"},
			}},
			&config.WindowNode{BundleID: "com.d"},
		},
	}

	e := testEngine(client, &fakeApps{}, nil)
	e.repositionPass(context.Background(), layout)

	want := []string{
		"flatten W",
		"layout h_tiles 1",
		// com.a is first at top level: no join. com.b is the group's
		// first child: no join. com.c and com.d are index > 0.
		"focus 3",
		"join 3",
		"focus 4",
		"join 4",
	}
	if !reflect.DeepEqual(client.ops, want) {
		t.Errorf("reposition sequence:\n  got  %v\n  want %v", client.ops, want)
	}
}

func TestRepositionPass_EmptyLayout(t *testing.T) {
	client := newFakeWM()
	e := testEngine(client, &fakeApps{}, nil)
	e.repositionPass(context.Background(), &config.Layout{Workspace: "W", Mode: config.ModeHTiles, Orientation: config.Horizontal})
	if len(client.ops) != 0 {
		t.Errorf("empty layout should issue no operations, got %v", client.ops)
	}
}

func TestResizePass_SkipsUncomputableSizes(t *testing.T) {
	client := newFakeWM()
	client.addWindow(window(1, "com.a"), "W")
	client.addWindow(window(2, "com.b"), "W")
	e := testEngine(client, &fakeApps{}, nil)

	nodes := []config.Node{
		// Zero denominator: skip.
		&config.WindowNode{BundleID: "com.a", Size: &config.Size{Num: 1, Den: 0}},
		// Valid size but the display dimension is 0: skip.
		&config.WindowNode{BundleID: "com.b", Size: &config.Size{Num: 1, Den: 2}},
	}
	e.resizePass(context.Background(), nodes, config.Horizontal, "W", display.Info{})

	if len(client.ops) != 0 {
		t.Errorf("expected no resize commands, got %v", client.ops)
	}
}

func TestResizePass_FloorsPixelTarget(t *testing.T) {
	client := newFakeWM()
	client.addWindow(window(1, "com.a"), "W")
	e := testEngine(client, &fakeApps{}, nil)

	nodes := []config.Node{
		&config.WindowNode{BundleID: "com.a", Size: &config.Size{Num: 1, Den: 3}},
	}
	e.resizePass(context.Background(), nodes, config.Horizontal, "W", display.Info{Width: 1000})

	// floor(1000 * 1/3) = 333
	want := []string{"resize width 333 1"}
	if !reflect.DeepEqual(client.ops, want) {
		t.Errorf("resize ops = %v, want %v", client.ops, want)
	}
}

func TestResizePass_NestedWindowUsesParentOrientation(t *testing.T) {
	client := newFakeWM()
	client.addWindow(window(1, "com.a"), "W")
	e := testEngine(client, &fakeApps{}, nil)

	// The window sits in a vertical group, so its size applies to height
	// even though the layout's top-level orientation is horizontal.
	nodes := []config.Node{
		&config.GroupNode{Orientation: config.Vertical, Windows: []config.Node{
			&config.WindowNode{BundleID: "com.a", Size: &config.Size{Num: 1, Den: 2}},
		}},
	}
	e.resizePass(context.Background(), nodes, config.Horizontal, "W", display.Info{Width: 1200, Height: 900})

	want := []string{"resize height 450 1"}
	if !reflect.DeepEqual(client.ops, want) {
		t.Errorf("resize ops = %v, want %v", client.ops, want)
	}
}

func TestApply_AmbiguousDisplayIsFatal(t *testing.T) {
	client := newFakeWM()
	layout := &config.Layout{
		Workspace:   "W",
		Mode:        config.ModeHTiles,
		Orientation: config.Horizontal,
		Display:     "secondary",
	}
	displays := []display.Info{
		{ID: 1, Name: "A", Main: true},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
	}
	e := testEngine(client, &fakeApps{}, displays)

	if err := e.Apply(context.Background(), layout, "S"); err == nil {
		t.Fatal("expected ambiguity error")
	}
	if len(client.ops) != 0 {
		t.Errorf("fatal display resolution must issue no commands, got %v", client.ops)
	}
}

func TestApply_DisplayListFailureIsFatal(t *testing.T) {
	e := New(newFakeWM(), &fakeApps{}, &fakeDisplays{err: errors.New("boom")}, log.New(io.Discard))
	layout := &config.Layout{Workspace: "W", Mode: config.ModeHTiles, Orientation: config.Horizontal}
	if err := e.Apply(context.Background(), layout, "S"); err == nil {
		t.Fatal("expected error when display enumeration fails")
	}
}

func TestLocateWindow_LaunchesStoppedApp(t *testing.T) {
	client := newFakeWM()
	client.addWindow(window(1, "com.a"), "")
	lifecycle := &fakeApps{notRunning: map[string]bool{"com.a": true}}
	e := testEngine(client, lifecycle, nil)

	w, ok := e.locateWindow(context.Background(), "com.a")
	if !ok || w.ID != 1 {
		t.Fatalf("locateWindow = %+v, %v", w, ok)
	}
	if len(lifecycle.opened) != 1 || lifecycle.opened[0] != "com.a" {
		t.Errorf("expected com.a to be launched, opened = %v", lifecycle.opened)
	}
}

func TestLocateWindow_RunningAppIsNotRelaunched(t *testing.T) {
	client := newFakeWM()
	client.addWindow(window(1, "com.a"), "")
	lifecycle := &fakeApps{}
	e := testEngine(client, lifecycle, nil)

	if _, ok := e.locateWindow(context.Background(), "com.a"); !ok {
		t.Fatal("expected window to be found")
	}
	if len(lifecycle.opened) != 0 {
		t.Errorf("running app should not be relaunched, opened = %v", lifecycle.opened)
	}
}

func TestWaitFor(t *testing.T) {
	calls := 0
	ok := waitFor(context.Background(), 5, 0, func() bool {
		calls++
		return calls == 3
	})
	if !ok || calls != 3 {
		t.Errorf("waitFor = %v after %d calls, want success on call 3", ok, calls)
	}

	calls = 0
	if waitFor(context.Background(), 2, 0, func() bool { calls++; return false }) {
		t.Error("waitFor should fail when the predicate never passes")
	}
	if calls != 2 {
		t.Errorf("expected the attempt budget to be honored, got %d calls", calls)
	}
}
