// Package proof orchestrates the I/O-bound operations over timestamps:
// verifying attestations against blockchain explorers, upgrading pending
// calendar commitments, and submitting new digests to calendars.
//
// Each operation fans out its collaborator calls concurrently and joins
// all of them. Partial failure never aborts the rest: collaborator errors
// accumulate per verifier or per calendar URL alongside the successful
// payload, and the aggregated result is order-independent.
package proof

import (
	"context"
	"sort"
	"sync"

	"github.com/javanhut/ots-go/internal/calendar"
	"github.com/javanhut/ots-go/internal/ots"
)

// Verifier checks one attestation leaf against an external source of
// block data.
//
// Verify returns (unixTime, true, nil) when the leaf checks out,
// (0, false, nil) when the verifier does not handle that leaf kind, and
// an error when the source responded but the commitment does not match
// or the response is malformed.
type Verifier interface {
	Name() string
	Verify(ctx context.Context, message []byte, leaf ots.Leaf) (int64, bool, error)
}

// VerifyResult aggregates a verification run. Attestations maps each
// attested Unix time to the names of the verifiers that confirmed it;
// Errors maps verifier names to the errors they produced.
type VerifyResult struct {
	Attestations map[int64][]string
	Errors       map[string][]error
}

// Verify computes the terminal message of every path of ts and asks every
// verifier about each (message, leaf) pair, concurrently. The per-time
// verifier name lists are deduplicated and sorted.
func Verify(ctx context.Context, ts *ots.Timestamp, verifiers []Verifier) *VerifyResult {
	result := &VerifyResult{
		Attestations: make(map[int64][]string),
		Errors:       make(map[string][]error),
	}

	paths := ts.Tree.Paths()
	seen := make(map[int64]map[string]bool)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range paths {
		message := ots.ApplyOps(p.Ops, ts.FileHash.Value)
		for _, v := range verifiers {
			wg.Add(1)
			go func(v Verifier, message []byte, leaf ots.Leaf) {
				defer wg.Done()
				unix, ok, err := v.Verify(ctx, message, leaf)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					result.Errors[v.Name()] = append(result.Errors[v.Name()], err)
				case ok:
					if seen[unix] == nil {
						seen[unix] = make(map[string]bool)
					}
					if !seen[unix][v.Name()] {
						seen[unix][v.Name()] = true
						result.Attestations[unix] = append(result.Attestations[unix], v.Name())
					}
				}
			}(v, message, p.Leaf)
		}
	}
	wg.Wait()

	for _, names := range result.Attestations {
		sort.Strings(names)
	}
	return result
}

// pendingKey identifies one upgradeable commitment: a calendar URL and
// the message committed to it.
type pendingKey struct {
	url     string
	message string
}

// Upgrade fetches the fragment for every pending leaf of ts from its
// calendar and splices the fragment in place of the leaf. Pending leaves
// inside a fetched fragment stay pending. Fetch errors accumulate per
// calendar URL and leave their leaf untouched. The result is normalized.
func Upgrade(ctx context.Context, ts *ots.Timestamp, client *calendar.Client) (*ots.Timestamp, map[string][]error) {
	errs := make(map[string][]error)
	paths := ts.Tree.Paths()

	// One fetch per distinct (calendar, message) pair.
	fragments := make(map[pendingKey]*ots.Tree)
	for _, p := range paths {
		if p.Leaf.Kind != ots.LeafPending {
			continue
		}
		message := ots.ApplyOps(p.Ops, ts.FileHash.Value)
		fragments[pendingKey{url: p.Leaf.URL, message: string(message)}] = nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for key := range fragments {
		wg.Add(1)
		go func(key pendingKey) {
			defer wg.Done()
			fragment, err := client.Timestamp(ctx, key.url, []byte(key.message))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[key.url] = append(errs[key.url], err)
				return
			}
			fragments[key] = fragment
		}(key)
	}
	wg.Wait()

	var upgraded []ots.Path
	for _, p := range paths {
		if p.Leaf.Kind == ots.LeafPending {
			message := ots.ApplyOps(p.Ops, ts.FileHash.Value)
			fragment := fragments[pendingKey{url: p.Leaf.URL, message: string(message)}]
			if fragment != nil {
				for _, q := range fragment.Paths() {
					ops := make([]ots.Op, 0, len(p.Ops)+len(q.Ops))
					ops = append(ops, p.Ops...)
					ops = append(ops, q.Ops...)
					upgraded = append(upgraded, ots.Path{Ops: ops, Leaf: q.Leaf})
				}
				continue
			}
		}
		upgraded = append(upgraded, p)
	}

	out := ots.Normalize(&ots.Timestamp{
		Ver:      ts.Ver,
		FileHash: ts.FileHash,
		Tree:     ots.PathsToTree(upgraded),
	})
	return out, errs
}

// Submit builds a fresh timestamp for the given file hash by posting the
// current message to every calendar and merging the returned fragments.
//
// A non-empty fudge nonce decouples the submitted digest from the file
// hash: the message becomes sha256(digest || fudge) and the resulting
// tree is rooted at append(fudge) -> sha256 -> fragments. Submission
// errors accumulate per calendar URL; when every calendar fails the
// returned timestamp is nil.
func Submit(ctx context.Context, algo ots.HashAlgo, digest, fudge []byte, client *calendar.Client, calendarURLs []string) (*ots.Timestamp, map[string][]error) {
	errs := make(map[string][]error)

	var prefix []ots.Op
	if len(fudge) > 0 {
		prefix = []ots.Op{ots.Append(fudge), {Kind: ots.OpSHA256}}
	}
	message := ots.ApplyOps(prefix, digest)

	fragments := make([]*ots.Tree, len(calendarURLs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, url := range calendarURLs {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			fragment, err := client.Submit(ctx, url, message)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[url] = append(errs[url], err)
				return
			}
			fragments[i] = fragment
		}(i, url)
	}
	wg.Wait()

	var paths []ots.Path
	for _, fragment := range fragments {
		if fragment == nil {
			continue
		}
		for _, q := range fragment.Paths() {
			ops := make([]ots.Op, 0, len(prefix)+len(q.Ops))
			ops = append(ops, prefix...)
			ops = append(ops, q.Ops...)
			paths = append(paths, ots.Path{Ops: ops, Leaf: q.Leaf})
		}
	}
	if len(paths) == 0 {
		return nil, errs
	}

	out := ots.Normalize(&ots.Timestamp{
		Ver:      ots.Version,
		FileHash: ots.FileHash{Algo: algo, Value: digest},
		Tree:     ots.PathsToTree(paths),
	})
	return out, errs
}
