// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-sskr.
//
// go-sskr is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


package shareset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-sskr/pkg/correlation"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/rand"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/metrics"
	"github.com/jeremyhahn/go-sskr/pkg/storage"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

var (
	testSecret = []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
		0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
	}
	testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T, backend storage.Backend) *Service {
	t.Helper()
	svc, err := New(&Config{
		Backend: backend,
		Random:  rand.NewDeterministic(),
		Now:     func() time.Time { return testTime },
	})
	require.NoError(t, err)
	return svc
}

func twoGroupRequest(setID string) *SplitRequest {
	return &SplitRequest{
		SetID:          setID,
		GroupThreshold: 2,
		Groups: []sskr.GroupDescriptor{
			{Threshold: 2, Count: 3},
			{Threshold: 3, Count: 5},
		},
		Secret: testSecret,
	}
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(&Config{})
	assert.Error(t, err)

	svc, err := New(&Config{Backend: storage.NewMemory()})
	require.NoError(t, err)
	assert.Equal(t, "software", sourceName(svc.random))
}

func TestSplitLoadCombine(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	svc := newTestService(t, backend)

	res, err := svc.Split(ctx, twoGroupRequest("vault"))
	require.NoError(t, err)
	assert.Equal(t, "vault", res.SetID)
	require.Len(t, res.Shares, 2)

	m := res.Manifest
	assert.Equal(t, ManifestVersion, m.Version)
	assert.Equal(t, "0011", m.Identifier)
	assert.Equal(t, 8, m.TotalShares())
	assert.Len(t, m.Shares, 8)
	assert.Equal(t, 16, m.SecretLength)
	assert.Equal(t, "deterministic", m.RandomSource)
	assert.True(t, testTime.Equal(m.CreatedAt))

	keys, err := backend.List("vault/")
	require.NoError(t, err)
	assert.Len(t, keys, 9)

	loaded, err := svc.Load(ctx, "vault")
	require.NoError(t, err)
	assert.Empty(t, loaded.Missing)
	assert.Len(t, loaded.Shares, 8)
	assert.Equal(t, m.Identifier, loaded.Manifest.Identifier)
	assert.Equal(t, m.Groups, loaded.Manifest.Groups)
	assert.True(t, testTime.Equal(loaded.Manifest.CreatedAt))

	out, err := svc.Combine(ctx, loaded.Shares)
	require.NoError(t, err)
	assert.Equal(t, testSecret, out.Secret)
	assert.Equal(t, []int{0, 1}, out.Groups)
}

func TestSplit_SetIDFromOperationID(t *testing.T) {
	svc := newTestService(t, storage.NewMemory())
	ctx := correlation.WithOperationID(context.Background(), "op-42")

	req := twoGroupRequest("")
	res, err := svc.Split(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "op-42", res.SetID)
	assert.Equal(t, "op-42/group-01/member-04.share", res.Manifest.Shares[7].Key)
}

func TestSplit_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("set exists", func(t *testing.T) {
		svc := newTestService(t, storage.NewMemory())
		_, err := svc.Split(ctx, twoGroupRequest("dup"))
		require.NoError(t, err)
		_, err = svc.Split(ctx, twoGroupRequest("dup"))
		assert.ErrorIs(t, err, ErrSetExists)
	})

	t.Run("invalid groups store nothing", func(t *testing.T) {
		backend := storage.NewMemory()
		svc := newTestService(t, backend)
		req := twoGroupRequest("bad")
		req.GroupThreshold = 3
		_, err := svc.Split(ctx, req)
		assert.ErrorIs(t, err, sskr.ErrInvalidGroupSet)

		keys, err := backend.List("")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("empty secret", func(t *testing.T) {
		svc := newTestService(t, storage.NewMemory())
		req := twoGroupRequest("empty")
		req.Secret = nil
		_, err := svc.Split(ctx, req)
		assert.ErrorIs(t, err, secretsharing.ErrEmptySecret)
	})

	t.Run("invalid set id", func(t *testing.T) {
		svc := newTestService(t, storage.NewMemory())
		_, err := svc.Split(ctx, twoGroupRequest("../escape"))
		assert.Error(t, err)
	})

	t.Run("nil request", func(t *testing.T) {
		svc := newTestService(t, storage.NewMemory())
		_, err := svc.Split(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		svc := newTestService(t, storage.NewMemory())
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.Split(cctx, twoGroupRequest("c"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// failingBackend fails the Nth Put.
type failingBackend struct {
	*storage.MemoryBackend
	failAt int
	puts   int
}

func (f *failingBackend) Put(key string, value []byte, opts *storage.Options) error {
	f.puts++
	if f.puts == f.failAt {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Put(key, value, opts)
}

func TestSplit_RollbackOnStorageFailure(t *testing.T) {
	for _, failAt := range []int{1, 4, 9} {
		backend := &failingBackend{MemoryBackend: storage.NewMemory(), failAt: failAt}
		svc := newTestService(t, backend)

		_, err := svc.Split(context.Background(), twoGroupRequest("partial"))
		require.Error(t, err)

		keys, err := backend.List("")
		require.NoError(t, err)
		assert.Empty(t, keys, "failAt=%d", failAt)
	}
}

func TestLoad_MissingShares(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	svc := newTestService(t, backend)
	_, err := svc.Split(ctx, twoGroupRequest("lossy"))
	require.NoError(t, err)

	// Lose one share of group 0 and two of group 1; both thresholds still hold.
	for _, k := range []string{
		storage.ShareKey("lossy", 0, 1),
		storage.ShareKey("lossy", 1, 0),
		storage.ShareKey("lossy", 1, 3),
	} {
		require.NoError(t, backend.Delete(k))
	}

	loaded, err := svc.Load(ctx, "lossy")
	require.NoError(t, err)
	assert.Len(t, loaded.Shares, 5)
	require.Len(t, loaded.Missing, 3)
	assert.Equal(t, 0, loaded.Missing[0].Group)
	assert.Equal(t, 1, loaded.Missing[0].Member)

	out, err := svc.Combine(ctx, loaded.Shares)
	require.NoError(t, err)
	assert.Equal(t, testSecret, out.Secret)

	// One more loss in group 1 drops it below threshold.
	require.NoError(t, backend.Delete(storage.ShareKey("lossy", 1, 4)))
	loaded, err = svc.Load(ctx, "lossy")
	require.NoError(t, err)
	_, err = svc.Combine(ctx, loaded.Shares)
	assert.ErrorIs(t, err, sskr.ErrInsufficientGroups)
}

func TestLoad_Corruption(t *testing.T) {
	ctx := context.Background()

	t.Run("digest mismatch", func(t *testing.T) {
		backend := storage.NewMemory()
		svc := newTestService(t, backend)
		_, err := svc.Split(ctx, twoGroupRequest("c1"))
		require.NoError(t, err)

		key := storage.ShareKey("c1", 1, 2)
		raw, err := backend.Get(key)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0x01
		require.NoError(t, backend.Put(key, raw, nil))

		_, err = svc.Load(ctx, "c1")
		assert.ErrorIs(t, err, ErrCorruptShare)
	})

	t.Run("swapped shares", func(t *testing.T) {
		backend := storage.NewMemory()
		svc := newTestService(t, backend)
		res, err := svc.Split(ctx, twoGroupRequest("c2"))
		require.NoError(t, err)

		// Swap two files and fix up the digests so only the header check catches it.
		a, b := storage.ShareKey("c2", 0, 0), storage.ShareKey("c2", 0, 1)
		rawA, _ := backend.Get(a)
		rawB, _ := backend.Get(b)
		require.NoError(t, backend.Put(a, rawB, nil))
		require.NoError(t, backend.Put(b, rawA, nil))
		res.Manifest.Shares[0].SHA256 = digest(rawB)
		res.Manifest.Shares[1].SHA256 = digest(rawA)
		data, err := marshalManifest(res.Manifest)
		require.NoError(t, err)
		require.NoError(t, backend.Put(storage.ManifestKey("c2"), data, nil))

		_, err = svc.Load(ctx, "c2")
		assert.ErrorIs(t, err, ErrCorruptShare)
	})

	t.Run("bad manifest", func(t *testing.T) {
		backend := storage.NewMemory()
		svc := newTestService(t, backend)
		require.NoError(t, backend.Put(storage.ManifestKey("c3"), []byte("version: 1\nset_id: c3\n"), nil))
		_, err := svc.Load(ctx, "c3")
		assert.ErrorIs(t, err, ErrInvalidManifest)

		require.NoError(t, backend.Put(storage.ManifestKey("c4"), []byte("version: [1"), nil))
		_, err = svc.Load(ctx, "c4")
		assert.ErrorIs(t, err, ErrInvalidManifest)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(t, storage.NewMemory())
		_, err := svc.Load(ctx, "nothing")
		assert.ErrorIs(t, err, ErrSetNotFound)
	})
}

func TestListDelete(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	svc := newTestService(t, backend)

	for _, id := range []string{"beta", "alpha"} {
		_, err := svc.Split(ctx, twoGroupRequest(id))
		require.NoError(t, err)
	}
	// incomplete set without a manifest is not listed
	require.NoError(t, backend.Put(storage.ShareKey("gamma", 0, 0), []byte{1}, nil))

	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, ids)

	require.NoError(t, svc.Delete(ctx, "alpha"))
	keys, err := backend.List("alpha/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	assert.ErrorIs(t, svc.Delete(ctx, "alpha"), ErrSetNotFound)
}

func TestCombine_Errors(t *testing.T) {
	svc := newTestService(t, storage.NewMemory())
	_, err := svc.Combine(context.Background(), nil)
	assert.ErrorIs(t, err, secretsharing.ErrNoShares)
}

func TestMetricsRecorded(t *testing.T) {
	metrics.Enable()
	svc := newTestService(t, storage.NewMemory())
	ctx := context.Background()

	success := metrics.OperationsTotal.WithLabelValues(metrics.OpSplit, metrics.SchemeSSKR, metrics.StatusSuccess)
	failures := metrics.ErrorsTotal.WithLabelValues(metrics.OpCombine, "no_shares")
	beforeSuccess := testutil.ToFloat64(success)
	beforeFailures := testutil.ToFloat64(failures)

	_, err := svc.Split(ctx, twoGroupRequest("m"))
	require.NoError(t, err)
	_, err = svc.Combine(ctx, nil)
	require.Error(t, err)

	assert.Equal(t, beforeSuccess+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeFailures+1, testutil.ToFloat64(failures))
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "insufficient_groups", ErrorType(sskr.ErrInsufficientGroups))
	assert.Equal(t, "duplicate_index", ErrorType(sskr.ErrDuplicateIndex))
	assert.Equal(t, "set_exists", ErrorType(ErrSetExists))
	assert.Equal(t, "other", ErrorType(errors.New("x")))
}
