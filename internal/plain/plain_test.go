package plain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/domain"
	"github.com/mmcdole/topics/internal/pager"
	"github.com/mmcdole/topics/internal/service"
)

type pagedRepo struct {
	pages   map[int][]domain.Topic
	failAt  int // offset that fails, -1 for none
	offsets []int
}

func (r *pagedRepo) ListTopics(ctx context.Context, filter domain.Filter, offset, limit int) ([]domain.Topic, error) {
	r.offsets = append(r.offsets, offset)
	if offset == r.failAt {
		return nil, &domain.StatusError{StatusCode: 503}
	}
	return r.pages[offset], nil
}

func topics(from, n int) []domain.Topic {
	out := make([]domain.Topic, n)
	for i := range out {
		id := from + i
		out[i] = domain.Topic{ID: int64(id), Title: fmt.Sprintf("title-%d", id), User: domain.User{Login: "matz"}}
	}
	return out
}

func titled(s string) <-chan string {
	ch := make(chan string, 1)
	ch <- s
	return ch
}

func TestPrint_Pages(t *testing.T) {
	repo := &pagedRepo{failAt: -1, pages: map[int][]domain.Topic{
		0: topics(1, 2),
		2: topics(3, 2),
		4: topics(5, 1),
	}}
	ctrl := pager.New(repo, domain.Filter{Type: domain.ListTypeRecent}, pager.WithLimit(2))

	var out, errOut bytes.Buffer
	err := NewPrinter(&out, &errOut, zerolog.Nop()).Print(context.Background(), ctrl, titled("Recent"), "Fallback", 5)
	if err != nil {
		t.Fatalf("Print returned error: %v", err)
	}

	// The third page is short, so no fourth request
	if got := fmt.Sprint(repo.offsets); got != "[0 2 4]" {
		t.Fatalf("offsets = %s, want [0 2 4]", got)
	}
	text := out.String()
	if !strings.HasPrefix(text, "Recent\n") {
		t.Fatalf("missing title:\n%s", text)
	}
	for i := 1; i <= 5; i++ {
		if c := strings.Count(text, fmt.Sprintf("title-%d\t", i)) + strings.Count(text, fmt.Sprintf("title-%d ", i)); c != 1 {
			t.Fatalf("title-%d printed %d times:\n%s", i, c, text)
		}
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected notices: %s", errOut.String())
	}
}

func TestPrint_RespectsPageCount(t *testing.T) {
	repo := &pagedRepo{failAt: -1, pages: map[int][]domain.Topic{0: topics(1, 2), 2: topics(3, 2)}}
	ctrl := pager.New(repo, domain.Filter{}, pager.WithLimit(2))

	var out bytes.Buffer
	if err := NewPrinter(&out, &out, zerolog.Nop()).Print(context.Background(), ctrl, titled("Popular"), "Fallback", 1); err != nil {
		t.Fatalf("Print returned error: %v", err)
	}
	if len(repo.offsets) != 1 {
		t.Fatalf("offsets = %v, want one request", repo.offsets)
	}
}

func TestPrint_FirstPageFailure(t *testing.T) {
	repo := &pagedRepo{failAt: 0}
	ctrl := pager.New(repo, domain.Filter{}, pager.WithLimit(2))

	var out bytes.Buffer
	err := NewPrinter(&out, &out, zerolog.Nop()).Print(context.Background(), ctrl, titled("Popular"), "Fallback", 3)
	if !errors.Is(err, ErrNothingToPrint) {
		t.Fatalf("err = %v, want ErrNothingToPrint", err)
	}
	var listErr *pager.ListError
	if !errors.As(err, &listErr) || listErr.Kind != pager.KindHTTP {
		t.Fatalf("err = %v, want classified http error", err)
	}
	if out.Len() != 0 {
		t.Fatalf("printed output on failure: %q", out.String())
	}
}

func TestPrint_LaterFailureKeepsRows(t *testing.T) {
	repo := &pagedRepo{failAt: 2, pages: map[int][]domain.Topic{0: topics(1, 2)}}
	ctrl := pager.New(repo, domain.Filter{}, pager.WithLimit(2))

	var out, errOut bytes.Buffer
	if err := NewPrinter(&out, &errOut, zerolog.Nop()).Print(context.Background(), ctrl, titled("Popular"), "Fallback", 3); err != nil {
		t.Fatalf("Print returned error: %v", err)
	}
	if !strings.Contains(out.String(), "title-2") {
		t.Fatalf("first page missing:\n%s", out.String())
	}
	if !strings.Contains(errOut.String(), "503") {
		t.Fatalf("notice = %q, want 503 warning", errOut.String())
	}
}

func TestPrint_Empty(t *testing.T) {
	repo := &pagedRepo{failAt: -1, pages: map[int][]domain.Topic{}}
	ctrl := pager.New(repo, domain.Filter{}, pager.WithLimit(2))

	var out bytes.Buffer
	if err := NewPrinter(&out, &out, zerolog.Nop()).Print(context.Background(), ctrl, titled("Popular"), "Fallback", 2); err != nil {
		t.Fatalf("Print returned error: %v", err)
	}
	if !strings.Contains(out.String(), "No topics.") {
		t.Fatalf("output = %q", out.String())
	}
}

type slowNodes struct {
	release chan struct{}
	done    atomic.Bool
}

func (n *slowNodes) GetNode(ctx context.Context, id int64) (*domain.Node, error) {
	<-n.release
	n.done.Store(true)
	return &domain.Node{ID: id, Name: "Rails"}, nil
}

func (n *slowNodes) ListNodes(ctx context.Context) ([]domain.Node, error) {
	return nil, nil
}

func TestPrint_TitleLookupDoesNotGateList(t *testing.T) {
	nodes := &slowNodes{release: make(chan struct{})}
	defer close(nodes.release)
	titles := service.NewTitleService(nodes, zerolog.Nop())

	filter := domain.Filter{Type: domain.ListTypePopular, NodeID: 5}
	repo := &pagedRepo{failAt: -1, pages: map[int][]domain.Topic{0: topics(1, 1)}}
	ctrl := pager.New(repo, filter, pager.WithLimit(2))

	var out bytes.Buffer
	title := titles.ResolveAsync(context.Background(), filter)
	if err := NewPrinter(&out, &out, zerolog.Nop()).Print(context.Background(), ctrl, title, titles.Placeholder(filter), 1); err != nil {
		t.Fatalf("Print returned error: %v", err)
	}

	if nodes.done.Load() {
		t.Fatal("node lookup finished before release")
	}
	if len(repo.offsets) != 1 {
		t.Fatalf("offsets = %v, want one request", repo.offsets)
	}
	if !strings.HasPrefix(out.String(), service.DefaultNodeLabel+"\n") {
		t.Fatalf("heading = %q, want placeholder", out.String())
	}
	if !strings.Contains(out.String(), "title-1") {
		t.Fatalf("rows missing:\n%s", out.String())
	}
}
