// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/paperdash/internal/api"
)

// --- fake client ---

// fakeClient records calls and returns canned responses per path.
type fakeClient struct {
	responses map[string]json.RawMessage // path → body
	errs      map[string]error           // path → forced error
	paths     []string                   // every path seen, in order
	lastForm  api.MultipartForm
}

func (f *fakeClient) Get(_ context.Context, path string) (json.RawMessage, error) {
	f.paths = append(f.paths, path)
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	if body, ok := f.responses[path]; ok {
		return body, nil
	}
	return nil, fmt.Errorf("fake: no response for %s", path)
}

func (f *fakeClient) PostMultipart(_ context.Context, path string, form api.MultipartForm) (json.RawMessage, error) {
	f.paths = append(f.paths, path)
	f.lastForm = form
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	if body, ok := f.responses[path]; ok {
		return body, nil
	}
	return nil, fmt.Errorf("fake: no response for %s", path)
}

func (f *fakeClient) Delete(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.errs[path]
}

// --- List ---

func TestList(t *testing.T) {
	fc := &fakeClient{responses: map[string]json.RawMessage{
		"/papers": json.RawMessage(`[{"id":"p1","status":"complete","title":"A"}]`),
	}}
	svc := NewService(fc)

	papers, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("got %d papers, want 1", len(papers))
	}
	if papers[0].Status != "complete" {
		t.Errorf("Status = %q, want %q", papers[0].Status, "complete")
	}
}

func TestListRejectsInvalidElement(t *testing.T) {
	fc := &fakeClient{responses: map[string]json.RawMessage{
		"/papers": json.RawMessage(`[{"id":"p1"}]`),
	}}
	svc := NewService(fc)

	_, err := svc.List(context.Background())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got err %v, want *ValidationError", err)
	}
}

// --- Get ---

func TestGetPropagatesNotFound(t *testing.T) {
	fc := &fakeClient{errs: map[string]error{
		"/papers/p9": &api.NotFoundError{Path: "/papers/p9"},
	}}
	svc := NewService(fc)

	_, err := svc.Get(context.Background(), "p9")

	var nf *api.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got err %v, want *api.NotFoundError", err)
	}
	var he *api.HTTPError
	if errors.As(err, &he) {
		t.Error("NotFoundError must not surface as a generic HTTPError")
	}
}

func TestGetValidatesPayload(t *testing.T) {
	fc := &fakeClient{responses: map[string]json.RawMessage{
		"/papers/p1": json.RawMessage(`{"id":"p1","title":"A","status":"bogus"}`),
	}}
	svc := NewService(fc)

	_, err := svc.Get(context.Background(), "p1")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got err %v, want *ValidationError", err)
	}
}

// --- Upload ---

func TestUploadSourceURLOnly(t *testing.T) {
	fc := &fakeClient{responses: map[string]json.RawMessage{
		"/papers/":    json.RawMessage(`{"paper_id":"p42"}`),
		"/papers/p42": json.RawMessage(`{"id":"p42","title":"Fetched","status":"received"}`),
	}}
	svc := NewService(fc)

	p, err := svc.Upload(context.Background(), UploadInput{SourceURL: "https://arxiv.org/abs/2301.07041"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if p.ID != "p42" {
		t.Errorf("ID = %q, want %q (the backend-issued id)", p.ID, "p42")
	}
	if p.Title != "Fetched" {
		t.Errorf("Title = %q, want the re-fetched record", p.Title)
	}

	if fc.lastForm.Fields["source_url"] != "https://arxiv.org/abs/2301.07041" {
		t.Errorf("form fields = %v, want source_url set", fc.lastForm.Fields)
	}
	if len(fc.lastForm.Files) != 0 {
		t.Errorf("form has %d file parts, want 0", len(fc.lastForm.Files))
	}

	want := []string{"/papers/", "/papers/p42"}
	if len(fc.paths) != 2 || fc.paths[0] != want[0] || fc.paths[1] != want[1] {
		t.Errorf("paths = %v, want %v", fc.paths, want)
	}
}

func TestUploadFileAndDataset(t *testing.T) {
	fc := &fakeClient{responses: map[string]json.RawMessage{
		"/papers/":   json.RawMessage(`{"paper_id":"p7"}`),
		"/papers/p7": json.RawMessage(`{"id":"p7","title":"T","status":"received"}`),
	}}
	svc := NewService(fc)

	in := UploadInput{File: "/tmp/paper.pdf", DatasetFile: "/tmp/data.csv"}
	if _, err := svc.Upload(context.Background(), in); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if len(fc.lastForm.Files) != 2 {
		t.Fatalf("got %d file parts, want 2", len(fc.lastForm.Files))
	}
	fields := map[string]string{}
	for _, fp := range fc.lastForm.Files {
		fields[fp.Field] = fp.Path
	}
	if fields["file"] != "/tmp/paper.pdf" {
		t.Errorf(`file part = %q, want /tmp/paper.pdf`, fields["file"])
	}
	if fields["dataset_file"] != "/tmp/data.csv" {
		t.Errorf(`dataset_file part = %q, want /tmp/data.csv`, fields["dataset_file"])
	}
}

func TestUploadRejectsBadAck(t *testing.T) {
	tests := []struct {
		name string
		ack  string
	}{
		{"missing paper_id", `{"ok":true}`},
		{"ack not an object", `"created"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{responses: map[string]json.RawMessage{
				"/papers/": json.RawMessage(tt.ack),
			}}
			svc := NewService(fc)

			_, err := svc.Upload(context.Background(), UploadInput{SourceURL: "https://x"})
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got err %v, want *ValidationError", err)
			}
		})
	}
}

func TestUploadPropagatesPostError(t *testing.T) {
	fc := &fakeClient{errs: map[string]error{
		"/papers/": &api.HTTPError{StatusCode: 500, Snippet: "disk full"},
	}}
	svc := NewService(fc)

	_, err := svc.Upload(context.Background(), UploadInput{SourceURL: "https://x"})
	var he *api.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("got err %v, want *api.HTTPError", err)
	}
}

// --- Delete ---

func TestDelete(t *testing.T) {
	fc := &fakeClient{}
	svc := NewService(fc)

	if err := svc.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fc.paths) != 1 || fc.paths[0] != "/papers/p1" {
		t.Errorf("paths = %v, want [/papers/p1]", fc.paths)
	}
}

func TestDeletePropagatesError(t *testing.T) {
	fc := &fakeClient{errs: map[string]error{
		"/papers/missing-id": &api.HTTPError{StatusCode: 500, Snippet: "db error"},
	}}
	svc := NewService(fc)

	err := svc.Delete(context.Background(), "missing-id")
	if err == nil || !strings.Contains(err.Error(), "db error") {
		t.Errorf("error = %v, want it to contain %q", err, "db error")
	}
}

// --- Claims ---

func TestClaims(t *testing.T) {
	fc := &fakeClient{responses: map[string]json.RawMessage{
		"/papers/p1/claims": json.RawMessage(`[{"id":"c1","metric_name":"accuracy","metric_value":95.1}]`),
	}}
	svc := NewService(fc)

	claims, err := svc.Claims(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if len(claims) != 1 || claims[0].MetricName != "accuracy" {
		t.Errorf("claims = %+v, want one accuracy claim", claims)
	}
}

// --- Manifest ---

func TestReadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.yaml")
	content := `papers:
  - file: papers/one.pdf
  - source_url: https://arxiv.org/abs/2301.07041
    dataset_file: data/run.csv
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(m.Papers) != 2 {
		t.Fatalf("got %d entries, want 2", len(m.Papers))
	}
	if m.Papers[0].File != "papers/one.pdf" {
		t.Errorf("entry 0 file = %q", m.Papers[0].File)
	}
	if m.Papers[1].DatasetFile != "data/run.csv" {
		t.Errorf("entry 1 dataset_file = %q", m.Papers[1].DatasetFile)
	}
}

func TestReadManifestRejectsEmptyEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.yaml")
	content := `papers:
  - dataset_file: data/run.csv
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "needs file or source_url") {
		t.Errorf("error = %v, want entry rejection", err)
	}
}

func TestUploadInputLabel(t *testing.T) {
	tests := []struct {
		in   UploadInput
		want string
	}{
		{UploadInput{File: "/papers/deep/one.pdf"}, "one.pdf"},
		{UploadInput{SourceURL: "https://arxiv.org/abs/1"}, "https://arxiv.org/abs/1"},
		{UploadInput{File: "a.pdf", SourceURL: "https://x"}, "a.pdf"},
	}
	for _, tt := range tests {
		if got := tt.in.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

// --- UploadBatch ---

func TestUploadBatch(t *testing.T) {
	fc := &fakeClient{responses: map[string]json.RawMessage{
		"/papers/":   json.RawMessage(`{"paper_id":"p1"}`),
		"/papers/p1": json.RawMessage(`{"id":"p1","title":"A","status":"received"}`),
	}}
	// The first entry uploads cleanly; every later POST fails.
	seq := &sequenceClient{inner: fc, failFrom: 2}
	svc := NewService(seq)

	inputs := []UploadInput{
		{SourceURL: "https://arxiv.org/abs/1"},
		{File: "bad.pdf"},
	}

	var buf strings.Builder
	summary, err := svc.UploadBatch(context.Background(), inputs, &buf)
	if err != nil {
		t.Fatalf("UploadBatch: %v", err)
	}

	if summary.Uploaded != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 uploaded 1 failed", summary)
	}
	if summary.Total() != 2 || !summary.HasFailures() {
		t.Errorf("Total/HasFailures = %d/%v", summary.Total(), summary.HasFailures())
	}
	out := buf.String()
	if !strings.Contains(out, "uploaded") || !strings.Contains(out, "failed") {
		t.Errorf("output = %q, want both uploaded and failed lines", out)
	}
}

// sequenceClient fails every multipart POST from the Nth onward.
type sequenceClient struct {
	inner    *fakeClient
	posts    int
	failFrom int
}

func (s *sequenceClient) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return s.inner.Get(ctx, path)
}

func (s *sequenceClient) PostMultipart(ctx context.Context, path string, form api.MultipartForm) (json.RawMessage, error) {
	s.posts++
	if s.posts >= s.failFrom {
		return nil, &api.HTTPError{StatusCode: 500, Snippet: "upload rejected"}
	}
	return s.inner.PostMultipart(ctx, path, form)
}

func (s *sequenceClient) Delete(ctx context.Context, path string) error {
	return s.inner.Delete(ctx, path)
}

func TestUploadBatchStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(&fakeClient{})
	summary, err := svc.UploadBatch(ctx, []UploadInput{{SourceURL: "https://x"}}, &strings.Builder{})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if summary.Total() != 0 {
		t.Errorf("summary = %+v, want nothing processed", summary)
	}
}
