package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/domain"
)

type fakeNodes struct {
	node      *domain.Node
	nodes     []domain.Node
	err       error
	getCalls  int
	listCalls int
}

func (f *fakeNodes) GetNode(ctx context.Context, id int64) (*domain.Node, error) {
	f.getCalls++
	return f.node, f.err
}

func (f *fakeNodes) ListNodes(ctx context.Context) ([]domain.Node, error) {
	f.listCalls++
	return f.nodes, f.err
}

func TestTitleService_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.Filter
		repo      *fakeNodes
		want      string
		wantCalls int
	}{
		{
			name:   "unscoped uses list type",
			filter: domain.Filter{Type: domain.ListTypeExcellent},
			repo:   &fakeNodes{},
			want:   "Excellent",
		},
		{
			name:      "node name",
			filter:    domain.Filter{Type: domain.ListTypePopular, NodeID: 2},
			repo:      &fakeNodes{node: &domain.Node{ID: 2, Name: "Rails"}},
			want:      "Rails",
			wantCalls: 1,
		},
		{
			name:      "lookup failure falls back",
			filter:    domain.Filter{NodeID: 2},
			repo:      &fakeNodes{err: &domain.StatusError{StatusCode: 404}},
			want:      DefaultNodeLabel,
			wantCalls: 1,
		},
		{
			name:      "empty name falls back",
			filter:    domain.Filter{NodeID: 2},
			repo:      &fakeNodes{node: &domain.Node{ID: 2}},
			want:      DefaultNodeLabel,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewTitleService(tt.repo, zerolog.Nop())
			if got := svc.Resolve(context.Background(), tt.filter); got != tt.want {
				t.Fatalf("Resolve() = %q, want %q", got, tt.want)
			}
			if tt.repo.getCalls != tt.wantCalls {
				t.Fatalf("GetNode called %d times, want %d", tt.repo.getCalls, tt.wantCalls)
			}
		})
	}
}

func TestTitleService_Placeholder(t *testing.T) {
	svc := NewTitleService(&fakeNodes{}, zerolog.Nop())
	if got := svc.Placeholder(domain.Filter{NodeID: 3}); got != DefaultNodeLabel {
		t.Fatalf("Placeholder(node) = %q", got)
	}
	if got := svc.Placeholder(domain.Filter{Type: domain.ListTypeRecent}); got != "Recent" {
		t.Fatalf("Placeholder(recent) = %q", got)
	}
}

func TestNodeService_MemoizesSuccessOnly(t *testing.T) {
	repo := &fakeNodes{err: errors.New("offline")}
	svc := NewNodeService(repo, zerolog.Nop())

	if _, err := svc.Nodes(context.Background()); err == nil {
		t.Fatal("Nodes() = nil error, want error")
	}

	repo.err = nil
	repo.nodes = []domain.Node{
		{ID: 3, Name: "rails", SectionName: "Ruby"},
		{ID: 1, Name: "Go", SectionName: "Other"},
		{ID: 2, Name: "Ruby", SectionName: "Ruby"},
	}
	nodes, err := svc.Nodes(context.Background())
	if err != nil {
		t.Fatalf("Nodes() returned error: %v", err)
	}
	if _, err := svc.Nodes(context.Background()); err != nil {
		t.Fatalf("Nodes() returned error: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("ListNodes called %d times, want 2", repo.listCalls)
	}

	wantOrder := []int64{1, 3, 2}
	for i, id := range wantOrder {
		if nodes[i].ID != id {
			t.Fatalf("nodes[%d].ID = %d, want %d (order %+v)", i, nodes[i].ID, id, nodes)
		}
	}
}

func TestMatchNodes(t *testing.T) {
	nodes := []domain.Node{
		{ID: 1, Name: "Ruby"},
		{ID: 2, Name: "Rails"},
		{ID: 3, Name: "RubyGems"},
		{ID: 4, Name: "Go"},
	}

	if got := MatchNodes(nodes, "  "); len(got) != len(nodes) {
		t.Fatalf("empty query returned %d nodes, want all", len(got))
	}

	got := MatchNodes(nodes, "ruby")
	if len(got) != 2 {
		t.Fatalf("MatchNodes(ruby) = %+v, want 2 nodes", got)
	}
	if got[0].ID != 1 {
		t.Fatalf("best match = %+v, want Ruby", got[0])
	}

	if got := MatchNodes(nodes, "rls"); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("MatchNodes(rls) = %+v, want Rails", got)
	}

	if got := MatchNodes(nodes, "python"); len(got) != 0 {
		t.Fatalf("MatchNodes(python) = %+v, want none", got)
	}
}

func TestNodeService_Search(t *testing.T) {
	repo := &fakeNodes{nodes: []domain.Node{
		{ID: 1, Name: "Go"},
		{ID: 2, Name: "Rails"},
		{ID: 3, Name: "Ruby"},
	}}
	svc := NewNodeService(repo, zerolog.Nop())

	got, err := svc.Search(context.Background(), "rub")
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("Search(rub) = %+v, want Ruby", got)
	}

	if _, err := svc.Search(context.Background(), ""); err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("ListNodes called %d times, want 1", repo.listCalls)
	}

	repo.err = errors.New("offline")
	failing := NewNodeService(repo, zerolog.Nop())
	if _, err := failing.Search(context.Background(), "go"); err == nil {
		t.Fatal("Search() = nil error, want error")
	}
}

func TestTitleService_ResolveAsync(t *testing.T) {
	repo := &fakeNodes{node: &domain.Node{ID: 4, Name: "Go"}}
	svc := NewTitleService(repo, zerolog.Nop())

	if got := <-svc.ResolveAsync(context.Background(), domain.Filter{NodeID: 4}); got != "Go" {
		t.Fatalf("ResolveAsync() = %q, want Go", got)
	}
}
