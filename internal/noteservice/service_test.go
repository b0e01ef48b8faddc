package noteservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/format"
	"github.com/starford/scribe/internal/journal"
	"github.com/starford/scribe/internal/testutil"
)

func testService(t *testing.T) (*Service, *testutil.MemStore) {
	t.Helper()
	f, err := os.CreateTemp("", "scribe-svc-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	j, err := journal.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })

	store := testutil.NewMemStore("/p")
	store.Put("notes.md", "# Start")
	eng := engine.New(
		engine.WithClock(testutil.NewClock()),
		engine.WithStorage(store.Opener()),
		engine.WithLogger(testutil.Logger()),
		engine.WithListener(journal.NewListener(j, testutil.Logger())),
	)
	t.Cleanup(func() { _ = eng.Close(context.Background()) })
	eng.SetProfilePath("/p")
	if _, err := eng.Status(context.Background()); err != nil {
		t.Fatal(err)
	}
	return NewService(eng, j), store
}

func TestDocument(t *testing.T) {
	svc, _ := testService(t)
	doc, err := svc.Document(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Content != "# Start" || doc.Profile != "/p" || doc.Dirty {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Outline.Title != "Start" {
		t.Errorf("title = %q", doc.Outline.Title)
	}
	if doc.Checksum != checksum.String("# Start") {
		t.Errorf("checksum = %q", doc.Checksum)
	}
}

func TestReplace_IfMatch(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Replace(ctx, "x", "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("stale If-Match = %v, want ErrConflict", err)
	}
	st, err := svc.Replace(ctx, "fresh", checksum.String("# Start"))
	if err != nil {
		t.Fatal(err)
	}
	if !st.Dirty || !st.SavePending {
		t.Errorf("status = %+v", st)
	}
}

func TestAppendAndFormat(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Append(ctx, "more"); err != nil {
		t.Fatal(err)
	}
	doc, _ := svc.Document(ctx)
	if doc.Content != "# Start\nmore" {
		t.Fatalf("content = %q", doc.Content)
	}

	res, err := svc.Format(ctx, "bold", format.Selection{Start: 8, End: 12}, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "# Start\n**more**" {
		t.Errorf("formatted = %q", res.Text)
	}
	if _, err := svc.Format(ctx, "sparkle", format.Selection{}, ""); !errors.Is(err, apperr.ErrUnknownFormat) {
		t.Errorf("unknown action = %v", err)
	}
	doc, _ = svc.Document(ctx)
	if doc.Content != "# Start\n**more**" {
		t.Errorf("failed format changed content: %q", doc.Content)
	}
}

func TestFlushRecordsAttempt(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	_, _ = svc.Replace(ctx, "saved", "")
	if err := svc.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Content("notes.md"); got != "saved" {
		t.Errorf("stored %q", got)
	}
	entries, err := svc.Attempts(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 || entries[0].Trigger != "flush" || !entries[0].OK {
		t.Errorf("entries = %+v", entries)
	}
}

func TestSetView(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	st, err := svc.SetView(ctx, "preview")
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode != engine.Preview {
		t.Errorf("mode = %v", st.Mode)
	}
	if _, err := svc.SetView(ctx, "split"); !errors.Is(err, apperr.ErrInvalidMode) {
		t.Errorf("invalid mode = %v", err)
	}
	st, _ = svc.Toggle(ctx)
	if st.Mode != engine.Edit {
		t.Errorf("after toggle = %v", st.Mode)
	}
}

func TestStylesAndProfile(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	styles, err := svc.ReloadStyles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if styles.CSS == "" || styles.Outcome == "" {
		t.Errorf("styles = %+v", styles)
	}
	if _, err := svc.SetProfile(ctx, " "); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("empty profile = %v", err)
	}
}

func TestNoJournal(t *testing.T) {
	eng := engine.New(engine.WithLogger(testutil.Logger()))
	defer eng.Close(context.Background())
	svc := NewService(eng, nil)

	entries, err := svc.Attempts(context.Background(), 5)
	if err != nil || len(entries) != 0 {
		t.Errorf("Attempts = %v, %v", entries, err)
	}
	fails, err := svc.Failures(context.Background(), 5)
	if err != nil || len(fails) != 0 {
		t.Errorf("Failures = %v, %v", fails, err)
	}
}

func TestDocument_ChecksumMatchesContentUnderEdits(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			svc.eng.SetText(fmt.Sprintf("# Start\nedit %d", i))
		}
	}()

	for i := 0; i < 500; i++ {
		doc, err := svc.Document(ctx)
		if err != nil {
			close(stop)
			<-done
			t.Fatal(err)
		}
		if doc.Checksum != checksum.String(doc.Content) {
			close(stop)
			<-done
			t.Fatalf("checksum %s does not match content %q", doc.Checksum, doc.Content)
		}
	}
	close(stop)
	<-done
}
