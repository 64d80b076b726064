package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// BackendError records one backend's failure within a Fallback operation.
type BackendError struct {
	Backend string
	Err     error
}

func (e BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e BackendError) Unwrap() error { return e.Err }

// Result describes how a Fallback operation was served.
type Result struct {
	// Backend names the backend that served the operation, empty when none
	// did.
	Backend string

	// Failures lists the backends tried before Backend, or all of them when
	// the operation failed.
	Failures []BackendError

	notFound bool
}

// OK reports whether some backend served the operation.
func (r Result) OK() bool { return r.Backend != "" }

// Degraded reports whether at least one backend failed along the way.
func (r Result) Degraded() bool { return len(r.Failures) > 0 }

// Err returns nil when the operation was served, ErrNotFound when every
// backend answered but none had the document, or the joined failures.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	if r.notFound {
		return ErrNotFound
	}
	if len(r.Failures) == 0 {
		return errors.New("no storage backend configured")
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// syncCollection holds one marker document per backend listing the
// documents that backend missed while it was failing. Markers are written to
// every other backend so a restart still knows which copies are stale.
const syncCollection = "_sync"

var errStale = errors.New("copy is stale, resync pending")

type docRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// Fallback tries its backends in order. Writes go to every backend; a backend
// that misses a write is marked stale for those documents and is skipped by
// reads until the documents have been copied back to it. Reads are served by
// the first up-to-date backend holding data.
type Fallback struct {
	backends []Backend
	log      logrus.FieldLogger

	mu     sync.Mutex
	loaded bool
	stale  map[string]map[docRef]struct{}
}

// NewFallback builds a Fallback over backends in priority order.
func NewFallback(log logrus.FieldLogger, backends ...Backend) *Fallback {
	return &Fallback{
		backends: backends,
		log:      log,
		stale:    make(map[string]map[docRef]struct{}),
	}
}

// Backends returns the backend names in priority order.
func (f *Fallback) Backends() []string {
	names := make([]string, len(f.backends))
	for i, b := range f.backends {
		names[i] = b.Name()
	}
	return names
}

// Get returns the first up-to-date copy of the document found.
func (f *Fallback) Get(ctx context.Context, collection, id string) ([]byte, Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resync(ctx)

	var res Result
	var data []byte
	for _, b := range f.backends {
		if f.isStale(b.Name(), docRef{Collection: collection, ID: id}) {
			res.Failures = append(res.Failures, BackendError{Backend: b.Name(), Err: errStale})
			continue
		}
		got, err := b.Get(ctx, collection, id)
		if errors.Is(err, ErrNotFound) {
			res.notFound = true
			continue
		}
		if err != nil {
			res.Failures = append(res.Failures, BackendError{Backend: b.Name(), Err: err})
			continue
		}
		data = got
		res.Backend = b.Name()
		break
	}
	f.report("get", collection, res)
	return data, res
}

// List returns the collection from the first up-to-date backend holding any
// document of it. Data served by a lower-priority backend is copied up to the
// empty backends before it so later writes do not shadow it with a partial
// set.
func (f *Fallback) List(ctx context.Context, collection string) ([]Document, Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resync(ctx)

	var res Result
	served := -1
	var docs []Document
	var empty []Backend
	for i, b := range f.backends {
		if f.staleIn(b.Name(), collection) {
			res.Failures = append(res.Failures, BackendError{Backend: b.Name(), Err: errStale})
			continue
		}
		got, err := b.List(ctx, collection)
		if err != nil {
			res.Failures = append(res.Failures, BackendError{Backend: b.Name(), Err: err})
			continue
		}
		if served < 0 {
			served = i
			res.Backend = b.Name()
		}
		if len(got) > 0 {
			docs = got
			served = i
			res.Backend = b.Name()
			break
		}
		empty = append(empty, b)
	}
	f.report("list", collection, res)

	if served > 0 && len(docs) > 0 {
		for _, b := range empty {
			if err := b.Put(ctx, collection, docs...); err != nil {
				f.log.WithError(err).WithFields(logrus.Fields{
					"backend":    b.Name(),
					"collection": collection,
				}).Warn("could not promote documents to higher-priority backend")
			}
		}
	}
	return docs, res
}

// Put writes docs to every backend. The result names the highest-priority
// backend that accepted them; backends that failed are marked stale for docs.
func (f *Fallback) Put(ctx context.Context, collection string, docs ...Document) Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resync(ctx)

	refs := make([]docRef, len(docs))
	for i, d := range docs {
		refs[i] = docRef{Collection: collection, ID: d.ID}
	}

	var res Result
	var accepted []string
	for _, b := range f.backends {
		if err := b.Put(ctx, collection, docs...); err != nil {
			res.Failures = append(res.Failures, BackendError{Backend: b.Name(), Err: err})
			continue
		}
		accepted = append(accepted, b.Name())
		if res.Backend == "" {
			res.Backend = b.Name()
		}
	}
	f.report("put", collection, res)

	if !res.OK() {
		return res
	}
	for _, name := range accepted {
		if f.forget(name, refs) {
			f.saveMarker(ctx, name)
		}
	}
	for _, fail := range res.Failures {
		f.remember(fail.Backend, refs)
		f.saveMarker(ctx, fail.Backend)
	}
	return res
}

func (f *Fallback) isStale(backend string, ref docRef) bool {
	_, ok := f.stale[backend][ref]
	return ok
}

func (f *Fallback) staleIn(backend, collection string) bool {
	for ref := range f.stale[backend] {
		if ref.Collection == collection {
			return true
		}
	}
	return false
}

func (f *Fallback) remember(backend string, refs []docRef) {
	set, ok := f.stale[backend]
	if !ok {
		set = make(map[docRef]struct{})
		f.stale[backend] = set
	}
	for _, r := range refs {
		set[r] = struct{}{}
	}
}

// forget clears refs from backend's stale set and reports whether any was
// set.
func (f *Fallback) forget(backend string, refs []docRef) bool {
	set := f.stale[backend]
	changed := false
	for _, r := range refs {
		if _, ok := set[r]; ok {
			delete(set, r)
			changed = true
		}
	}
	if len(set) == 0 {
		delete(f.stale, backend)
	}
	return changed
}

// loadMarkers reads the stale markers once per process.
func (f *Fallback) loadMarkers(ctx context.Context) {
	if f.loaded {
		return
	}
	for _, b := range f.backends {
		markers, err := b.List(ctx, syncCollection)
		if err != nil {
			continue
		}
		f.loaded = true
		for _, m := range markers {
			var refs []docRef
			if err := json.Unmarshal(m.Data, &refs); err != nil {
				f.log.WithError(err).WithField("backend", m.ID).Warn("ignoring unreadable sync marker")
				continue
			}
			if len(refs) > 0 {
				f.remember(m.ID, refs)
			}
		}
	}
}

// saveMarker stores backend's stale set in every other backend.
func (f *Fallback) saveMarker(ctx context.Context, backend string) {
	refs := make([]docRef, 0, len(f.stale[backend]))
	for r := range f.stale[backend] {
		refs = append(refs, r)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Collection != refs[j].Collection {
			return refs[i].Collection < refs[j].Collection
		}
		return refs[i].ID < refs[j].ID
	})
	data, err := json.Marshal(refs)
	if err != nil {
		return
	}
	for _, b := range f.backends {
		if b.Name() == backend {
			continue
		}
		if err := b.Put(ctx, syncCollection, Document{ID: backend, Data: data}); err != nil {
			f.log.WithError(err).WithFields(logrus.Fields{
				"backend": b.Name(),
				"stale":   backend,
			}).Debug("could not store sync marker")
		}
	}
}

// resync copies the documents a backend missed back to it from an
// up-to-date backend. A backend that is still failing is left for the next
// call.
func (f *Fallback) resync(ctx context.Context) {
	f.loadMarkers(ctx)

	for _, target := range f.backends {
		name := target.Name()
		set := f.stale[name]
		if len(set) == 0 {
			continue
		}

		var synced []docRef
		for ref := range set {
			data, err := f.freshCopy(ctx, name, ref)
			if errors.Is(err, ErrNotFound) {
				synced = append(synced, ref)
				continue
			}
			if err != nil {
				continue
			}
			if err := target.Put(ctx, ref.Collection, Document{ID: ref.ID, Data: data}); err != nil {
				break
			}
			synced = append(synced, ref)
		}
		if len(synced) == 0 {
			continue
		}
		f.forget(name, synced)
		f.saveMarker(ctx, name)
		f.log.WithFields(logrus.Fields{
			"backend":   name,
			"documents": len(synced),
		}).Info("resynced storage backend")
	}
}

// freshCopy reads ref from the first backend other than skip that is not
// stale for it. ErrNotFound means no up-to-date backend has the document.
func (f *Fallback) freshCopy(ctx context.Context, skip string, ref docRef) ([]byte, error) {
	var lastErr error = ErrNotFound
	for _, b := range f.backends {
		if b.Name() == skip || f.isStale(b.Name(), ref) {
			continue
		}
		data, err := b.Get(ctx, ref.Collection, ref.ID)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	return nil, lastErr
}

func (f *Fallback) report(op, collection string, res Result) {
	if !res.Degraded() {
		return
	}
	entry := f.log.WithFields(logrus.Fields{
		"op":         op,
		"collection": collection,
		"served_by":  res.Backend,
	})
	for _, fail := range res.Failures {
		entry = entry.WithField("failed_"+fail.Backend, fail.Err.Error())
	}
	if res.OK() {
		entry.Warn("storage backend unavailable, used fallback")
	} else {
		entry.Error("all storage backends failed")
	}
}
