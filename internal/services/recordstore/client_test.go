package recordstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rotulo/internal/inventory"
	"rotulo/internal/services"
	"rotulo/internal/services/recordstore"
	"rotulo/internal/testsupport"
)

func newClient(t *testing.T, serverURL string) *recordstore.Client {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Remote.BaseURL = serverURL
	cfg.Remote.APIToken = "test-token"
	client, err := recordstore.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestWriteSendsRecordAndReturnsID(t *testing.T) {
	var captured inventory.Record
	var gotPath, gotAuth, gotRequestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "rec-123"})
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	record := &inventory.Record{
		Form: inventory.Form{
			Code:        "ROT-0042",
			Floor:       "3",
			ServiceArea: "urgencias",
			SignalType:  "direccional",
			Typology:    "bandera",
			Material:    "acrilico",
			Quantity:    2,
		},
		SubmittedBy: "laura",
	}

	storeID, err := client.Write(context.Background(), record)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if storeID != "rec-123" {
		t.Fatalf("expected store ID rec-123, got %q", storeID)
	}
	if gotPath != "/apps/inventario-test/records" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatal("expected X-Request-ID header")
	}
	if captured.Code != "ROT-0042" {
		t.Fatalf("expected business code to round-trip, got %q", captured.Code)
	}
	if captured.SubmittedBy != "laura" {
		t.Fatalf("expected responsable to round-trip, got %q", captured.SubmittedBy)
	}
}

func TestWriteServerErrorIsWriteFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage backend unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Write(context.Background(), &inventory.Record{})
	if !errors.Is(err, services.ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
	if !services.Retryable(err) {
		t.Fatal("expected write fault to be retryable")
	}
}

func TestWriteCancelledContextIsTimeoutOrCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Write(ctx, &inventory.Record{})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestListDecodesRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[{"id":"rec-1","codigo":"ROT-0001","piso":"1"},{"id":"rec-2","codigo":"ROT-0002","piso":"2"}]}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	records, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Code != "ROT-0001" || records[1].StoreID != "rec-2" {
		t.Fatalf("unexpected records decoded: %+v", records)
	}
}

func TestDeleteMissingRecordIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	err := client.Delete(context.Background(), "rec-404")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSucceeds(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	if err := client.Delete(context.Background(), "rec-9"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotPath != "/apps/inventario-test/records/rec-9" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Remote.BaseURL = ""
	if _, err := recordstore.NewClient(cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
