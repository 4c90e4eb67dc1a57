package pipeline

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/jobs"
	"github.com/furnicam/furnicam/internal/settings"
)

func newTestServer(t *testing.T) (*Server, jobs.Repository, *fakeArtifactStore) {
	t.Helper()
	repo := jobs.NewMemoryRepository()
	q := testQueue(t)
	store := newFakeArtifactStore()
	svc := New(repo, q, store, settings.FactorySettings{}, testLogger())
	return NewServer(svc, testLogger(), 0, 5*time.Second), repo, store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleSubmitDXFReturnsAccepted(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), http.MethodPost, "/api/v1/jobs/dxf", SubmitDXFRequest{
		Panels: []jobs.DXFPanelInput{{Name: "Полка", WidthMM: 600, HeightMM: 300, ThicknessMM: 16}},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var handle JobHandle
	if err := json.Unmarshal(rec.Body.Bytes(), &handle); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if handle.JobID == "" || handle.Kind != jobs.KindDXF {
		t.Fatalf("unexpected handle: %+v", handle)
	}
}

func TestHandleSubmitDXFRejectsEmptyBody(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), http.MethodPost, "/api/v1/jobs/dxf", SubmitDXFRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleGetJobNotFound(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), http.MethodGet, "/api/v1/jobs/00000000-0000-0000-0000-000000000000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleGetJobReturnsStatus(t *testing.T) {
	server, _, _ := newTestServer(t)

	submitRec := doJSON(t, server.Router(), http.MethodPost, "/api/v1/jobs/dxf", SubmitDXFRequest{
		Panels: []jobs.DXFPanelInput{{Name: "Дверь", WidthMM: 400, HeightMM: 700, ThicknessMM: 18}},
	})
	var handle JobHandle
	if err := json.Unmarshal(submitRec.Body.Bytes(), &handle); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	rec := doJSON(t, server.Router(), http.MethodGet, "/api/v1/jobs/"+handle.JobID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var status JobStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status response: %v", err)
	}
	if status.JobID != handle.JobID || status.Status != jobs.StatusCreated {
		t.Fatalf("unexpected status response: %+v", status)
	}
}

func TestHandleGetArtifactDownloadReturnsURL(t *testing.T) {
	server, repo, store := newTestServer(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	submitRec := doJSON(t, server.Router(), http.MethodPost, "/api/v1/jobs/dxf", SubmitDXFRequest{
		Panels: []jobs.DXFPanelInput{{Name: "Бок", WidthMM: 600, HeightMM: 400, ThicknessMM: 16}},
	})
	var handle JobHandle
	if err := json.Unmarshal(submitRec.Body.Bytes(), &handle); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	id := mustParseUUID(t, handle.JobID)
	store.put(artifact.Key(artifact.KindDXF, handle.JobID), 4096)
	if err := repo.AttachArtifact(ctx, id, id); err != nil {
		t.Fatalf("attach artifact: %v", err)
	}

	rec := doJSON(t, server.Router(), http.MethodGet, "/api/v1/jobs/"+handle.JobID+"/download?ttl=120", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var download ArtifactDownloadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &download); err != nil {
		t.Fatalf("decode download response: %v", err)
	}
	if download.SizeBytes != 4096 || download.ExpiresIn != 120 {
		t.Fatalf("unexpected download response: %+v", download)
	}
}
