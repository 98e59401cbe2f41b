package source

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestFileReader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("Customer: hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FileReader{}.Read(context.Background(), p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "Customer: hi" {
		t.Errorf("Read = %q", got)
	}

	_, err = FileReader{}.Read(context.Background(), filepath.Join(dir, "missing.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file err = %v, want fs.ErrNotExist", err)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt", "c.TXT", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Discover(dir, ".txt")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"), filepath.Join(dir, "c.TXT")}
	if !slices.Equal(got, want) {
		t.Errorf("Discover = %v, want %v", got, want)
	}

	if _, err := Discover(filepath.Join(dir, "nope"), ".txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing dir err = %v, want fs.ErrNotExist", err)
	}
}

func TestHTTPReader(t *testing.T) {
	t.Parallel()

	var flaky atomic.Int32
	var badCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("Agent: hello"))
		case "/flaky":
			if flaky.Add(1) == 1 {
				http.Error(w, "try again", http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte("Agent: recovered"))
		case "/bad":
			badCalls.Add(1)
			http.Error(w, "nope", http.StatusBadRequest)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	h := NewHTTPReader(5*time.Second, nil)
	ctx := context.Background()

	if got, err := h.Read(ctx, srv.URL+"/ok"); err != nil || got != "Agent: hello" {
		t.Errorf("ok: got %q, %v", got, err)
	}
	if got, err := h.Read(ctx, srv.URL+"/flaky"); err != nil || got != "Agent: recovered" {
		t.Errorf("flaky: got %q, %v", got, err)
	}
	if _, err := h.Read(ctx, srv.URL+"/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing: err = %v, want fs.ErrNotExist", err)
	}
	if _, err := h.Read(ctx, srv.URL+"/bad"); err == nil {
		t.Error("bad: expected error")
	}
	if n := badCalls.Load(); n != 1 {
		t.Errorf("4xx retried: %d calls, want 1", n)
	}
}

func TestWorkbook(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "calls.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"Call ID", "Agent", "Transcript"},
		{"C-1", "amy", "Customer: I want to make a payment"},
		{"C-2", "bob", ""},
		{"", "cat", "Customer: escrow account question"},
		{"C-1", "dup", "ignored"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	wb, err := OpenWorkbook(path)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	if got, want := wb.Refs(), []string{"C-1", "3"}; !slices.Equal(got, want) {
		t.Errorf("Refs = %v, want %v", got, want)
	}
	text, err := wb.Read(context.Background(), "C-1")
	if err != nil || text != "Customer: I want to make a payment" {
		t.Errorf("Read(C-1) = %q, %v", text, err)
	}
	if _, err := wb.Read(context.Background(), "C-9"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read(C-9) err = %v, want fs.ErrNotExist", err)
	}
}

func TestOpenWorkbook_NoTranscriptColumn(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.xlsx")
	f := excelize.NewFile()
	_ = f.SetSheetRow("Sheet1", "A1", &[]any{"Call ID", "Agent"})
	_ = f.SetSheetRow("Sheet1", "A2", &[]any{"C-1", "amy"})
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenWorkbook(path); err == nil {
		t.Error("expected error for workbook without transcript column")
	}
}

func TestMux(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("from http"))
	}))
	defer srv.Close()

	p := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(p, []byte("from disk"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := Mux{HTTP: NewHTTPReader(time.Second, nil)}
	for ref, want := range map[string]string{srv.URL + "/x.txt": "from http", p: "from disk"} {
		got, err := m.Read(context.Background(), ref)
		if err != nil {
			t.Fatalf("Read(%q): %v", ref, err)
		}
		if got != want {
			t.Errorf("Read(%q) = %q, want %q", ref, got, want)
		}
	}

	if !IsURL("HTTPS://example.com/a") || IsURL("transcripts/a.txt") {
		t.Error("IsURL misclassified refs")
	}
}

var (
	_ Reader = FileReader{}
	_ Reader = (*HTTPReader)(nil)
	_ Reader = (*Workbook)(nil)
	_ Reader = Mux{}
)

func TestOpenWorkbook_IDColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []any
		row    []any
		want   string
	}{
		{"call id after lookalikes", []any{"Paid", "Provider", "Transcript", "Call ID"}, []any{"yes", "acme", "hello", "C-7"}, "C-7"},
		{"exact id fallback", []any{"Valid", "ID", "Text"}, []any{"no", "42", "hello"}, "42"},
		{"no id column", []any{"Paid", "Transcript"}, []any{"yes", "hello"}, "1"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "calls.xlsx")
			f := excelize.NewFile()
			if err := f.SetSheetRow("Sheet1", "A1", &tt.header); err != nil {
				t.Fatal(err)
			}
			if err := f.SetSheetRow("Sheet1", "A2", &tt.row); err != nil {
				t.Fatal(err)
			}
			if err := f.SaveAs(path); err != nil {
				t.Fatal(err)
			}

			wb, err := OpenWorkbook(path)
			if err != nil {
				t.Fatalf("OpenWorkbook: %v", err)
			}
			if got := wb.Refs(); !slices.Equal(got, []string{tt.want}) {
				t.Errorf("Refs = %v, want [%s]", got, tt.want)
			}
		})
	}
}
