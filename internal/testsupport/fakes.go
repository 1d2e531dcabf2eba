package testsupport

import (
	"context"
	"fmt"
	"sync"

	"rotulo/internal/inventory"
	"rotulo/internal/services"
)

// FakeRecordStore is an in-memory stand-in for the remote record API.
type FakeRecordStore struct {
	mu      sync.Mutex
	nextID  int
	records []inventory.Record

	// WriteErr, when set, fails every Write call.
	WriteErr error
	// FailCodes fails Write for records whose business code is listed.
	FailCodes map[string]error

	writeCalls int
}

// Write appends the record and returns a fabricated store ID.
func (f *FakeRecordStore) Write(ctx context.Context, record *inventory.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writeCalls++
	if f.WriteErr != nil {
		return "", f.WriteErr
	}
	if err, ok := f.FailCodes[record.Code]; ok {
		return "", err
	}

	f.nextID++
	stored := *record
	stored.StoreID = fmt.Sprintf("rec-%d", f.nextID)
	f.records = append(f.records, stored)
	return stored.StoreID, nil
}

// List returns a copy of the stored records in write order.
func (f *FakeRecordStore) List(ctx context.Context) ([]inventory.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]inventory.Record, len(f.records))
	copy(out, f.records)
	return out, nil
}

// Delete removes a record by store ID.
func (f *FakeRecordStore) Delete(ctx context.Context, storeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, record := range f.records {
		if record.StoreID == storeID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return services.Wrap(services.ErrNotFound, "fake-recordstore", "delete",
		fmt.Sprintf("record %s does not exist", storeID), nil)
}

// WriteCalls reports how many times Write was invoked, including failures.
func (f *FakeRecordStore) WriteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCalls
}

// Records returns a snapshot of the stored records.
func (f *FakeRecordStore) Records() []inventory.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]inventory.Record, len(f.records))
	copy(out, f.records)
	return out
}

// FakeBlobStore is an in-memory stand-in for object storage.
type FakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// UploadErr, when set, fails every Upload call.
	UploadErr error
	// FailPaths fails Upload for the listed object paths.
	FailPaths map[string]error

	uploadCalls int
}

// Upload stores the blob and returns a deterministic fake URL.
func (f *FakeBlobStore) Upload(ctx context.Context, objectPath string, blob []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploadCalls++
	if f.UploadErr != nil {
		return "", f.UploadErr
	}
	if err, ok := f.FailPaths[objectPath]; ok {
		return "", err
	}

	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	stored := make([]byte, len(blob))
	copy(stored, blob)
	f.objects[objectPath] = stored
	return "https://blobs.test/" + objectPath, nil
}

// Object returns the stored blob for a path, if any.
func (f *FakeBlobStore) Object(objectPath string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.objects[objectPath]
	return blob, ok
}

// ObjectCount reports how many distinct paths hold a blob.
func (f *FakeBlobStore) ObjectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// UploadCalls reports how many times Upload was invoked, including failures.
func (f *FakeBlobStore) UploadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadCalls
}

// StubConnectivity reports a fixed, settable reachability state.
type StubConnectivity struct {
	mu     sync.Mutex
	online bool
}

// NewStubConnectivity builds a stub with the given initial state.
func NewStubConnectivity(online bool) *StubConnectivity {
	return &StubConnectivity{online: online}
}

// Online reports the stubbed reachability.
func (s *StubConnectivity) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline flips the stubbed reachability.
func (s *StubConnectivity) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = online
}
