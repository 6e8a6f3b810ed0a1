package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/domain"
	"github.com/mmcdole/topics/internal/pager"
	"github.com/mmcdole/topics/internal/service"
)

type fakeTopics struct {
	mu    sync.Mutex
	pages map[int][]domain.Topic // offset -> page
	err   error
	calls []int
}

func (f *fakeTopics) ListTopics(ctx context.Context, filter domain.Filter, offset, limit int) ([]domain.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, offset)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[offset], nil
}

type fakeNodes struct{}

func (fakeNodes) GetNode(ctx context.Context, id int64) (*domain.Node, error) {
	return &domain.Node{ID: id, Name: fmt.Sprintf("node-%d", id)}, nil
}

func (fakeNodes) ListNodes(ctx context.Context) ([]domain.Node, error) {
	return []domain.Node{{ID: 1, Name: "Ruby"}, {ID: 2, Name: "Rails"}}, nil
}

type fakeOpener struct {
	paths []string
}

func (o *fakeOpener) Open(path string) error {
	o.paths = append(o.paths, path)
	return nil
}

func makeTopics(from, n int) []domain.Topic {
	out := make([]domain.Topic, n)
	for i := range out {
		id := int64(from + i)
		out[i] = domain.Topic{
			ID:     id,
			Title:  fmt.Sprintf("topic %d", id),
			NodeID: 7,
			User:   domain.User{Login: fmt.Sprintf("user%d", id)},
		}
	}
	return out
}

func newTestModel(t *testing.T, repo *fakeTopics, limit int) (Model, *fakeOpener) {
	t.Helper()
	op := &fakeOpener{}
	deps := Deps{
		Topics:   repo,
		Titles:   service.NewTitleService(fakeNodes{}, zerolog.Nop()),
		Nodes:    service.NewNodeService(fakeNodes{}, zerolog.Nop()),
		Opener:   op,
		Logger:   zerolog.Nop(),
		PageSize: limit,
	}
	m := NewModel(deps, domain.Filter{Type: domain.ListTypePopular})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, op
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// fetch runs a command expected to carry a page fetch, looking inside
// batches
func fetch(t *testing.T, cmd tea.Cmd) PageLoadedMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a fetch command, got nil")
	}
	if msg, ok := findPage(cmd()); ok {
		return msg
	}
	t.Fatal("command did not produce a PageLoadedMsg")
	return PageLoadedMsg{}
}

func findPage(msg tea.Msg) (PageLoadedMsg, bool) {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if page, ok := findPage(c()); ok {
				return page, true
			}
		}
	}
	return PageLoadedMsg{}, false
}

func TestModel_RefreshLoadsFirstPage(t *testing.T) {
	repo := &fakeTopics{pages: map[int][]domain.Topic{0: makeTopics(1, 5)}}
	m, _ := newTestModel(t, repo, 5)

	m, cmd := updateCmd(t, m, keyMsg("r"))
	if !m.Snapshot.Loading {
		t.Fatal("snapshot not loading after refresh")
	}
	if !strings.Contains(m.View(), "Loading") {
		t.Fatal("view does not show loading state")
	}

	m = update(t, m, fetch(t, cmd))
	if m.Snapshot.Loading || m.Snapshot.Len() != 5 || !m.Snapshot.HasMore {
		t.Fatalf("snapshot = %+v", m.Snapshot)
	}
	if m.List.ItemCount() != 5 {
		t.Fatalf("list has %d rows, want 5", m.List.ItemCount())
	}
	if !strings.Contains(m.View(), "topic 1") {
		t.Fatal("view does not render topics")
	}
}

func TestModel_NoOverlappingRefresh(t *testing.T) {
	repo := &fakeTopics{pages: map[int][]domain.Topic{0: makeTopics(1, 5)}}
	m, _ := newTestModel(t, repo, 5)

	m, first := updateCmd(t, m, keyMsg("r"))
	m, second := updateCmd(t, m, keyMsg("r"))
	if first == nil {
		t.Fatal("first refresh did not dispatch")
	}
	if second != nil {
		t.Fatal("second refresh dispatched while loading")
	}
	_ = update(t, m, fetch(t, first))
	if len(repo.calls) != 1 {
		t.Fatalf("repository called %d times, want 1", len(repo.calls))
	}
}

func TestModel_LastRowLoadsMore(t *testing.T) {
	repo := &fakeTopics{pages: map[int][]domain.Topic{
		0: makeTopics(1, 5),
		5: makeTopics(6, 2),
	}}
	m, _ := newTestModel(t, repo, 5)

	m, cmd := updateCmd(t, m, keyMsg("r"))
	m = update(t, m, fetch(t, cmd))

	m, cmd = updateCmd(t, m, keyMsg("G"))
	msg := fetch(t, cmd)
	if msg.Result.Request.Offset != 5 || msg.Result.Request.Trigger != pager.TriggerLoadMore {
		t.Fatalf("request = %+v, want load more at offset 5", msg.Result.Request)
	}
	m = update(t, m, msg)

	if m.Snapshot.Len() != 7 || m.Snapshot.HasMore {
		t.Fatalf("snapshot = %+v, want 7 items and no more", m.Snapshot)
	}
	if m.List.SelectedIndex() != 4 {
		t.Fatalf("cursor = %d, want kept at 4 after append", m.List.SelectedIndex())
	}

	// Last page reached: moving to the end again dispatches nothing
	m, cmd = updateCmd(t, m, keyMsg("G"))
	if cmd != nil {
		if _, ok := findPage(cmd()); ok {
			t.Fatal("load more dispatched after the last page")
		}
	}
	if _, cmd = updateCmd(t, m, keyMsg("n")); cmd != nil {
		t.Fatal("n dispatched after the last page")
	}
}

func TestModel_BlockingErrorShowsRetry(t *testing.T) {
	repo := &fakeTopics{err: fmt.Errorf("%w: dial tcp: refused", domain.ErrServerOffline)}
	m, _ := newTestModel(t, repo, 5)

	m, cmd := updateCmd(t, m, keyMsg("r"))
	m = update(t, m, fetch(t, cmd))

	if !m.ErrorView.IsVisible() {
		t.Fatal("error view not shown for a failure on an empty list")
	}
	if m.Snapshot.Severity() != pager.SeverityBlocking {
		t.Fatalf("severity = %v, want blocking", m.Snapshot.Severity())
	}
	if view := m.View(); !strings.Contains(view, "Network Error") || !strings.Contains(view, "retry") {
		t.Fatalf("view missing error and retry hint:\n%s", view)
	}

	repo.err = nil
	repo.pages = map[int][]domain.Topic{0: makeTopics(1, 3)}
	m, cmd = updateCmd(t, m, keyMsg("r"))
	if m.ErrorView.IsVisible() {
		t.Fatal("error view not cleared when retry was triggered")
	}
	m = update(t, m, fetch(t, cmd))
	if m.Snapshot.Len() != 3 || m.Snapshot.Err != nil {
		t.Fatalf("snapshot after retry = %+v", m.Snapshot)
	}
}

func TestModel_TransientErrorKeepsList(t *testing.T) {
	repo := &fakeTopics{pages: map[int][]domain.Topic{0: makeTopics(1, 5)}}
	m, _ := newTestModel(t, repo, 5)

	m, cmd := updateCmd(t, m, keyMsg("r"))
	m = update(t, m, fetch(t, cmd))

	repo.err = &domain.StatusError{StatusCode: 503}
	m, cmd = updateCmd(t, m, keyMsg("n"))
	m, clearCmd := updateCmd(t, m, fetch(t, cmd))

	if m.ErrorView.IsVisible() {
		t.Fatal("error view shown while items are on screen")
	}
	if m.Snapshot.Len() != 5 {
		t.Fatalf("items = %d, want 5 kept", m.Snapshot.Len())
	}
	if !m.StatusIsErr || !strings.Contains(m.StatusMsg, "503") {
		t.Fatalf("status = %q (err=%v), want transient 503 notice", m.StatusMsg, m.StatusIsErr)
	}
	if clearCmd == nil {
		t.Fatal("transient notice has no auto-clear")
	}

	// The notice clears itself; a stale clear is ignored
	m = update(t, m, ClearStatusMsg{Seq: m.statusSeq - 1})
	if m.StatusMsg == "" {
		t.Fatal("stale clear removed the current notice")
	}
	m = update(t, m, ClearStatusMsg{Seq: m.statusSeq})
	if m.StatusMsg != "" {
		t.Fatalf("status = %q after clear", m.StatusMsg)
	}
}

func TestModel_CycleTypeReplacesController(t *testing.T) {
	repo := &fakeTopics{pages: map[int][]domain.Topic{0: makeTopics(1, 5)}}
	m, _ := newTestModel(t, repo, 5)

	m, cmd := updateCmd(t, m, keyMsg("r"))
	pending := fetch(t, cmd)
	old := m.Controller

	m, _ = updateCmd(t, m, keyMsg("t"))
	if m.Controller == old {
		t.Fatal("controller not replaced on filter change")
	}
	if got := m.Filter().Type; got != domain.ListTypePopular.Next() {
		t.Fatalf("type = %v, want %v", got, domain.ListTypePopular.Next())
	}

	// The old controller's page arrives late and is dropped
	m = update(t, m, pending)
	if m.Snapshot.Len() != 0 || m.List.ItemCount() != 0 {
		t.Fatalf("stale page applied: %d items", m.Snapshot.Len())
	}
	if !m.Snapshot.Loading {
		t.Fatal("new controller should have its own refresh in flight")
	}
}

func TestModel_TitleIgnoresOtherFilters(t *testing.T) {
	repo := &fakeTopics{}
	m, _ := newTestModel(t, repo, 5)
	if m.Title != "Popular" {
		t.Fatalf("title = %q, want Popular", m.Title)
	}

	m = update(t, m, TitleResolvedMsg{Filter: domain.Filter{Type: domain.ListTypePopular, NodeID: 3}, Title: "Rails"})
	if m.Title != "Popular" {
		t.Fatalf("title = %q, want unchanged", m.Title)
	}

	m = update(t, m, TitleResolvedMsg{Filter: m.Filter(), Title: "Hot"})
	if m.Title != "Hot" {
		t.Fatalf("title = %q, want Hot", m.Title)
	}
}

func TestModel_NodePickerScopesList(t *testing.T) {
	repo := &fakeTopics{}
	m, _ := newTestModel(t, repo, 5)

	m, cmd := updateCmd(t, m, keyMsg("N"))
	if !m.NodePicker.IsVisible() {
		t.Fatal("node picker not shown")
	}
	loaded, ok := cmd().(NodesLoadedMsg)
	if !ok {
		t.Fatal("node picker did not load nodes")
	}
	m = update(t, m, loaded)

	for _, r := range "rails" {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = updateCmd(t, m, keyMsg("enter"))

	if m.NodePicker.IsVisible() {
		t.Fatal("node picker still visible after selection")
	}
	if got := m.Filter(); got.NodeID != 2 || got.Type != domain.ListTypePopular {
		t.Fatalf("filter = %+v, want popular in node 2", got)
	}
	if m.Title != "Node" {
		t.Fatalf("title = %q, want placeholder until resolved", m.Title)
	}
}

func TestModel_OpenIntents(t *testing.T) {
	repo := &fakeTopics{pages: map[int][]domain.Topic{0: makeTopics(10, 2)}}
	m, op := newTestModel(t, repo, 5)

	m, cmd := updateCmd(t, m, keyMsg("r"))
	m = update(t, m, fetch(t, cmd))

	for _, k := range []string{"enter", "u", "o"} {
		var c tea.Cmd
		m, c = updateCmd(t, m, keyMsg(k))
		if c == nil {
			t.Fatalf("key %q produced no command", k)
		}
		m = update(t, m, c())
	}

	want := []string{"/topics/10", "/user10", "/topics/node7"}
	if strings.Join(op.paths, ",") != strings.Join(want, ",") {
		t.Fatalf("opened %v, want %v", op.paths, want)
	}
	if m.StatusIsErr || !m.StatusIsOK {
		t.Fatalf("status = %q (err=%v ok=%v), want success notice", m.StatusMsg, m.StatusIsErr, m.StatusIsOK)
	}
}

func TestModel_LocalFilterDoesNotLoadMore(t *testing.T) {
	repo := &fakeTopics{pages: map[int][]domain.Topic{0: {
		{ID: 1, Title: "Rails 8 released"},
		{ID: 2, Title: "Ruby 3.4"},
		{ID: 3, Title: "Hiring"},
	}}}
	m, _ := newTestModel(t, repo, 3)

	m, cmd := updateCmd(t, m, keyMsg("r"))
	m = update(t, m, fetch(t, cmd))

	m = update(t, m, keyMsg("/"))
	for _, r := range "rls" {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if m.List.ItemCount() != 1 {
		t.Fatalf("filtered rows = %d, want 1", m.List.ItemCount())
	}
	if topic, _ := m.List.Selected(); topic.ID != 1 {
		t.Fatalf("selected = %+v, want topic 1", topic)
	}

	m = update(t, m, keyMsg("enter"))
	m, cmd = updateCmd(t, m, keyMsg("G"))
	if cmd != nil {
		t.Fatal("moving inside a filtered list asked for more")
	}

	m = update(t, m, keyMsg("esc"))
	if m.List.IsFiltering() || m.List.ItemCount() != 3 {
		t.Fatal("esc did not clear the filter")
	}
}

func TestModel_QuitClosesController(t *testing.T) {
	repo := &fakeTopics{pages: map[int][]domain.Topic{0: makeTopics(1, 1)}}
	m, _ := newTestModel(t, repo, 5)

	m, cmd := updateCmd(t, m, keyMsg("r"))
	pending := fetch(t, cmd)

	m, quit := updateCmd(t, m, keyMsg("q"))
	if quit == nil {
		t.Fatal("q did not quit")
	}
	if _, applied := m.Controller.Apply(pending.Result); applied {
		t.Fatal("closed controller applied a result")
	}
}

func TestModel_FailedRefreshKeepsCursor(t *testing.T) {
	repo := &fakeTopics{pages: map[int][]domain.Topic{0: makeTopics(1, 5)}}
	m, _ := newTestModel(t, repo, 5)

	m, cmd := updateCmd(t, m, keyMsg("r"))
	m = update(t, m, fetch(t, cmd))
	m = update(t, m, keyMsg("j"))
	m = update(t, m, keyMsg("j"))
	if got := m.List.SelectedIndex(); got != 2 {
		t.Fatalf("cursor = %d, want 2", got)
	}

	repo.err = &domain.StatusError{StatusCode: 500}
	m, cmd = updateCmd(t, m, keyMsg("r"))
	m = update(t, m, fetch(t, cmd))

	if m.Snapshot.Len() != 5 || m.Snapshot.Err == nil {
		t.Fatalf("snapshot = %+v, want 5 items and an error", m.Snapshot)
	}
	if got := m.List.SelectedIndex(); got != 2 {
		t.Fatalf("cursor = %d after failed refresh, want 2", got)
	}

	repo.err = nil
	m, cmd = updateCmd(t, m, keyMsg("r"))
	m = update(t, m, fetch(t, cmd))
	if got := m.List.SelectedIndex(); got != 0 {
		t.Fatalf("cursor = %d after refresh, want 0", got)
	}
}

type stalledTopics struct{}

func (stalledTopics) ListTopics(ctx context.Context, filter domain.Filter, offset, limit int) ([]domain.Topic, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("%w: %w", domain.ErrServerOffline, ctx.Err())
}

func TestModel_FetchTimeoutFromDeps(t *testing.T) {
	deps := Deps{
		Topics:   stalledTopics{},
		Titles:   service.NewTitleService(fakeNodes{}, zerolog.Nop()),
		Nodes:    service.NewNodeService(fakeNodes{}, zerolog.Nop()),
		Opener:   &fakeOpener{},
		Logger:   zerolog.Nop(),
		PageSize: 5,
		Timeout:  20 * time.Millisecond,
	}
	m := NewModel(deps, domain.Filter{Type: domain.ListTypePopular})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, cmd := updateCmd(t, m, keyMsg("r"))
	m = update(t, m, fetch(t, cmd))

	if m.Snapshot.Severity() != pager.SeverityBlocking {
		t.Fatalf("severity = %v, want blocking after deadline", m.Snapshot.Severity())
	}
	if m.Snapshot.Err.Kind != pager.KindNetwork {
		t.Fatalf("kind = %v, want network", m.Snapshot.Err.Kind)
	}
}
