package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cmdbox.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func mustAdd(t *testing.T, st *SQLiteStore, cmd *Command) string {
	t.Helper()

	id, err := st.Add(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return id
}

func strptr(s string) *string { return &s }

func TestAdd_GeneratesID(t *testing.T) {
	st := newTestStore(t)

	cmd := &Command{Command: "docker ps"}
	id := mustAdd(t, st, cmd)

	if id == "" {
		t.Fatal("Add returned empty id")
	}
	if cmd.ID != id {
		t.Errorf("Add should write id back: got %q want %q", cmd.ID, id)
	}
}

func TestAdd_RequiresCommandText(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.Add(context.Background(), &Command{Command: "   "}); err == nil {
		t.Error("Add should reject blank command text")
	}
	if _, err := st.Add(context.Background(), nil); err == nil {
		t.Error("Add should reject nil command")
	}
}

func TestAdd_SanitizesSecrets(t *testing.T) {
	st := newTestStore(t)

	id := mustAdd(t, st, &Command{Command: "mysql -u root --password=hunter2"})

	got, err := st.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if strings.Contains(got.Command, "hunter2") {
		t.Errorf("stored command still contains the secret: %q", got.Command)
	}
}

func TestGet_IncrementsUseCount(t *testing.T) {
	st := newTestStore(t)
	id := mustAdd(t, st, &Command{Command: "git status"})

	first, err := st.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if first.UseCount != 1 {
		t.Errorf("first Get: use_count = %d, want 1", first.UseCount)
	}
	if first.LastUsed == nil {
		t.Error("first Get: last_used should be set")
	}

	second, err := st.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if second.UseCount != 2 {
		t.Errorf("second Get: use_count = %d, want 2", second.UseCount)
	}
}

func TestGet_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing id: err = %v, want ErrNotFound", err)
	}
}

func TestGet_RoundTripsMetadata(t *testing.T) {
	st := newTestStore(t)
	id := mustAdd(t, st, &Command{
		Command:     "terraform plan",
		Description: "preview changes",
		Tags:        []string{"infra", "terraform"},
		OS:          strptr("linux"),
		ProjectType: strptr("terraform"),
		Category:    strptr("infra"),
		Context:     strptr("prod cluster"),
	})

	got, err := st.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Description != "preview changes" {
		t.Errorf("description = %q", got.Description)
	}
	if !reflect.DeepEqual(got.Tags, []string{"infra", "terraform"}) {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.OS == nil || *got.OS != "linux" {
		t.Errorf("os = %v", got.OS)
	}
	if got.Context == nil || *got.Context != "prod cluster" {
		t.Errorf("context = %v", got.Context)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestDelete(t *testing.T) {
	st := newTestStore(t)
	id := mustAdd(t, st, &Command{Command: "ls -la"})

	deleted, err := st.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("Delete should report true for an existing id")
	}

	deleted, err = st.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted {
		t.Error("Delete should report false for a missing id")
	}

	if _, err := st.Get(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestCandidates_ExactFilters(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, &Command{Command: "systemctl restart nginx", OS: strptr("linux"), Category: strptr("ops")})
	mustAdd(t, st, &Command{Command: "brew services restart nginx", OS: strptr("darwin"), Category: strptr("ops")})
	mustAdd(t, st, &Command{Command: "docker restart web", OS: strptr("linux"), Category: strptr("containers")})

	got, err := st.Candidates(context.Background(), Filter{OS: "linux", Category: "ops"})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 1 || got[0].Command != "systemctl restart nginx" {
		t.Errorf("Candidates = %v, want only the linux/ops command", got)
	}
}

func TestCandidates_TagsAllMustMatch(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, &Command{Command: "kubectl get pods", Tags: []string{"k8s", "ops"}})
	mustAdd(t, st, &Command{Command: "kubectl get nodes", Tags: []string{"k8s"}})
	mustAdd(t, st, &Command{Command: "top", Tags: []string{"ops"}})

	got, err := st.Candidates(context.Background(), Filter{Tags: []string{"k8s", "ops"}})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 1 || got[0].Command != "kubectl get pods" {
		t.Errorf("Candidates = %v, want only the command carrying both tags", got)
	}
	if !reflect.DeepEqual(got[0].Tags, []string{"k8s", "ops"}) {
		t.Errorf("tags not attached: %v", got[0].Tags)
	}
}

func TestCandidates_DuplicateFilterTags(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, &Command{Command: "kubectl get pods", Tags: []string{"k8s"}})

	// A repeated tag counts once, not as a second required match.
	got, err := st.Candidates(context.Background(), Filter{Tags: []string{"k8s", "k8s"}})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 1 || got[0].Command != "kubectl get pods" {
		t.Errorf("Candidates = %v, want the k8s command", got)
	}
}

func TestCandidates_SubstringFilter(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, &Command{Command: "docker ps", Description: "list containers"})
	mustAdd(t, st, &Command{Command: "git status", Description: "working tree"})
	mustAdd(t, st, &Command{Command: "free -h", Description: "Docker host memory"})

	// Matches command text and description, case-insensitively.
	got, err := st.Candidates(context.Background(), Filter{Substring: "docker"})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Candidates returned %d rows, want 2", len(got))
	}

	got, err = st.Candidates(context.Background(), Filter{Substring: "doker"})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("misspelled substring should match nothing, got %v", got)
	}
}

func TestCandidates_SubstringFoldsUnicode(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, &Command{Command: "journalctl -u ÖL-pumpe", Description: "pump unit logs"})

	// Case folding covers non-ASCII letters, not just A-Z.
	got, err := st.Candidates(context.Background(), Filter{Substring: "öl"})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Candidates returned %d rows, want 1", len(got))
	}
}

func TestCandidates_SubstringRespectsCap(t *testing.T) {
	st := newTestStore(t)
	keep := mustAdd(t, st, &Command{Command: "docker ps -a"})
	mustAdd(t, st, &Command{Command: "docker images"})

	for i := 0; i < 3; i++ {
		if _, err := st.Get(context.Background(), keep); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}

	got, err := st.Candidates(context.Background(), Filter{Substring: "docker", MaxCandidates: 1})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != keep {
		t.Errorf("cap should keep the most used match, got %v", got)
	}
}

func TestCandidates_NoFilterReturnsAll(t *testing.T) {
	st := newTestStore(t)
	for _, c := range []string{"a", "b", "c"} {
		mustAdd(t, st, &Command{Command: c})
	}

	got, err := st.Candidates(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Candidates returned %d rows, want 3", len(got))
	}
}

func TestCandidates_CapPrefersMostUsed(t *testing.T) {
	st := newTestStore(t)
	keep := mustAdd(t, st, &Command{Command: "often used"})
	mustAdd(t, st, &Command{Command: "rarely used"})

	// Bump use_count on the first command.
	for i := 0; i < 3; i++ {
		if _, err := st.Get(context.Background(), keep); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}

	got, err := st.Candidates(context.Background(), Filter{MaxCandidates: 1})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != keep {
		t.Errorf("cap should keep the most used command, got %v", got)
	}
}

func TestListTags(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, &Command{Command: "docker ps", Tags: []string{"docker", "admin"}})
	id := mustAdd(t, st, &Command{Command: "kubectl get pods", Tags: []string{"k8s"}})

	tags, err := st.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"admin", "docker", "k8s"}) {
		t.Errorf("ListTags = %v", tags)
	}

	// Deleting the only k8s command removes the tag from the listing.
	if _, err := st.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	tags, err = st.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"admin", "docker"}) {
		t.Errorf("ListTags after delete = %v", tags)
	}
}

func TestListCategories(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, &Command{Command: "a", Category: strptr("ops")})
	mustAdd(t, st, &Command{Command: "b", Category: strptr("infra")})
	mustAdd(t, st, &Command{Command: "c", Category: strptr("ops")})
	mustAdd(t, st, &Command{Command: "d"})

	cats, err := st.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if !reflect.DeepEqual(cats, []string{"infra", "ops"}) {
		t.Errorf("ListCategories = %v", cats)
	}
}
