package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	stdsync "sync"
	"time"

	"github.com/tillworks/till/internal/remote"
)

// naturalKeyFields mirrors the backend's uniqueness rules per resource.
var naturalKeyFields = map[string]string{
	"businesses": "code",
	"employees":  "email",
	"customers":  "phone",
	"categories": "name",
	"products":   "sku",
	"orders":     "number",
	"racks":      "slot",
}

// fakeGateway is an in-memory backend. Records are held as decoded JSON
// objects keyed by resource path and backend id, so the fake stays agnostic
// of the per-entity payload types.
type fakeGateway struct {
	mu      stdsync.Mutex
	nextID  int
	records map[string]map[string]map[string]interface{}

	tenant     string
	sessionErr error

	deleteCalls map[string]int
	createCalls map[string]int

	// failCreate forces the next create on a path to fail with err.
	failCreate map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		records:     make(map[string]map[string]map[string]interface{}),
		deleteCalls: make(map[string]int),
		createCalls: make(map[string]int),
		failCreate:  make(map[string]error),
		tenant:      "t1",
	}
}

func (f *fakeGateway) bucket(path string) map[string]map[string]interface{} {
	if f.records[path] == nil {
		f.records[path] = make(map[string]map[string]interface{})
	}
	return f.records[path]
}

// seed inserts a record directly, bypassing the API surface. The caller
// controls id and timestamps.
func (f *fakeGateway) seed(path, id string, fields map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec := map[string]interface{}{"id": id}
	for k, v := range fields {
		rec[k] = v
	}
	if _, ok := rec["updated_at"]; !ok {
		rec["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	f.bucket(path)[id] = rec
}

func decodePayload(payload interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (f *fakeGateway) Create(_ context.Context, path string, payload interface{}) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls[path]++
	if err := f.failCreate[path]; err != nil {
		delete(f.failCreate, path)
		return nil, err
	}

	fields, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}

	if keyField := naturalKeyFields[path]; keyField != "" {
		want := fields[keyField]
		for _, existing := range f.bucket(path) {
			if want != nil && existing[keyField] == want {
				return nil, &remote.Error{
					Kind:       remote.KindDuplicate,
					Message:    fmt.Sprintf("%s %v already exists", keyField, want),
					StatusCode: http.StatusConflict,
				}
			}
		}
	}

	f.nextID++
	id := fmt.Sprintf("r%d", f.nextID)
	fields["id"] = id
	now := time.Now().UTC().Format(time.RFC3339Nano)
	fields["created_at"] = now
	fields["updated_at"] = now
	f.bucket(path)[id] = fields

	return json.Marshal(fields)
}

func (f *fakeGateway) Update(_ context.Context, path, id string, payload interface{}) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.bucket(path)[id]
	if !ok {
		return nil, &remote.Error{Kind: remote.KindNotFound, Message: id, StatusCode: http.StatusNotFound}
	}

	fields, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}

	// Whole-record overwrite; only the envelope survives.
	fields["id"] = id
	fields["created_at"] = existing["created_at"]
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	f.bucket(path)[id] = fields

	return json.Marshal(fields)
}

func (f *fakeGateway) Delete(_ context.Context, path, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls[path+"/"+id]++
	if _, ok := f.bucket(path)[id]; !ok {
		return &remote.Error{Kind: remote.KindNotFound, Message: id, StatusCode: http.StatusNotFound}
	}
	delete(f.bucket(path), id)
	return nil
}

func (f *fakeGateway) Get(_ context.Context, path, id string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.bucket(path)[id]
	if !ok {
		return nil, &remote.Error{Kind: remote.KindNotFound, Message: id, StatusCode: http.StatusNotFound}
	}
	return json.Marshal(rec)
}

func (f *fakeGateway) List(_ context.Context, path, tenantID string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Deterministic order: by backend id assignment.
	bucket := f.bucket(path)
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]json.RawMessage, 0, len(bucket))
	for _, id := range ids {
		raw, err := json.Marshal(bucket[id])
		if err != nil {
			return nil, err
		}
		items = append(items, raw)
	}
	return items, nil
}

func (f *fakeGateway) FindByNaturalKey(_ context.Context, path, field, value string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rec := range f.bucket(path) {
		if rec[field] == value {
			return json.Marshal(rec)
		}
	}
	return nil, &remote.Error{Kind: remote.KindNotFound, Message: value, StatusCode: http.StatusNotFound}
}

func (f *fakeGateway) CurrentSession(context.Context) (*remote.Session, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return &remote.Session{TenantID: f.tenant}, nil
}
