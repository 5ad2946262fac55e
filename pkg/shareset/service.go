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
	"fmt"
	"strings"
	"time"

	"github.com/jeremyhahn/go-sskr/pkg/correlation"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/rand"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/logging"
	"github.com/jeremyhahn/go-sskr/pkg/metrics"
	"github.com/jeremyhahn/go-sskr/pkg/storage"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
	"github.com/jeremyhahn/go-sskr/pkg/validation"
)

// Config configures a Service.
type Config struct {
	// Backend stores shares and manifests. Required.
	Backend storage.Backend

	// Random supplies split randomness. Defaults to the software resolver.
	Random secretsharing.RandomSource

	// Logger defaults to a logger that discards output.
	Logger *logging.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Service splits, stores, loads and combines SSKR share sets.
type Service struct {
	backend storage.Backend
	random  secretsharing.RandomSource
	logger  *logging.Logger
	now     func() time.Time
}

// SplitRequest describes a split.
type SplitRequest struct {
	// SetID names the stored set. Empty uses the operation ID from the
	// context, or a new UUID.
	SetID          string
	GroupThreshold int
	Groups         []sskr.GroupDescriptor
	Secret         []byte
}

// SplitResult is returned by Split.
type SplitResult struct {
	SetID    string
	Manifest *Manifest
	Shares   [][]*sskr.Share
}

// CombineResult is returned by Combine.
type CombineResult struct {
	Secret []byte
	// Groups lists the group indices that reached their member threshold.
	Groups []int
}

// LoadResult is returned by Load.
type LoadResult struct {
	Manifest *Manifest
	Shares   []*sskr.Share
	// Missing lists manifest entries with no stored share.
	Missing []ManifestEntry
}

// New creates a Service.
func New(cfg *Config) (*Service, error) {
	if cfg == nil || cfg.Backend == nil {
		return nil, errors.New("shareset: backend is required")
	}
	svc := &Service{
		backend: cfg.Backend,
		random:  cfg.Random,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if svc.random == nil {
		resolver, err := rand.NewResolver(rand.ModeSoftware)
		if err != nil {
			return nil, fmt.Errorf("shareset: %w", err)
		}
		svc.random = resolver
	}
	if svc.logger == nil {
		svc.logger = logging.Discard()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// Split generates shares for req and stores them with a manifest. The
// manifest is written last, so a set without one is incomplete.
func (s *Service) Split(ctx context.Context, req *SplitRequest) (res *SplitResult, err error) {
	start := time.Now()
	defer func() { s.record(metrics.OpSplit, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.New("shareset: nil request")
	}

	opID := correlation.GetOrGenerate(ctx)
	setID := req.SetID
	if setID == "" {
		setID = opID
	}
	if err := validation.ValidateSetID(setID); err != nil {
		return nil, fmt.Errorf("shareset: %w", err)
	}
	log := s.logger.With("set_id", setID, "operation_id", opID)

	exists, err := s.backend.Exists(storage.ManifestKey(setID))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrSetExists, setID)
	}

	shares, err := sskr.Generate(req.GroupThreshold, req.Groups, req.Secret, s.random)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Version:        ManifestVersion,
		SetID:          setID,
		Identifier:     fmt.Sprintf("%04x", shares[0][0].Identifier),
		GroupThreshold: req.GroupThreshold,
		Groups:         append([]sskr.GroupDescriptor(nil), req.Groups...),
		SecretLength:   len(req.Secret),
		RandomSource:   sourceName(s.random),
		CreatedAt:      s.now().UTC(),
	}

	written := make([]string, 0, manifest.TotalShares()+1)
	defer func() {
		if err != nil {
			s.rollback(written)
		}
	}()

	for g, members := range shares {
		for m, share := range members {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := share.MarshalBinary()
			if err != nil {
				return nil, err
			}
			key := storage.ShareKey(setID, g, m)
			err = s.backend.Put(key, data, storage.DefaultOptions())
			if err != nil {
				return nil, fmt.Errorf("shareset: store %s: %w", key, err)
			}
			written = append(written, key)
			manifest.Shares = append(manifest.Shares, ManifestEntry{
				Group:  g,
				Member: m,
				Key:    key,
				SHA256: digest(data),
			})
		}
	}

	data, err := marshalManifest(manifest)
	if err != nil {
		return nil, fmt.Errorf("shareset: %w", err)
	}
	if err = s.backend.Put(storage.ManifestKey(setID), data, storage.DefaultOptions()); err != nil {
		return nil, fmt.Errorf("shareset: store manifest: %w", err)
	}

	metrics.RecordShares(metrics.OpSplit, metrics.SchemeSSKR, len(manifest.Shares))
	metrics.RecordSecretSize(len(req.Secret))
	log.Info("share set stored",
		"groups", validation.FormatGroupSpecs(req.Groups),
		"group_threshold", req.GroupThreshold,
		"shares", len(manifest.Shares))

	return &SplitResult{SetID: setID, Manifest: manifest, Shares: shares}, nil
}

// Load reads a stored set. Missing shares are reported in LoadResult.Missing;
// a share whose digest or header disagrees with the manifest is an error.
func (s *Service) Load(ctx context.Context, setID string) (res *LoadResult, err error) {
	start := time.Now()
	defer func() { s.record(metrics.OpLoad, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validation.ValidateSetID(setID); err != nil {
		return nil, fmt.Errorf("shareset: %w", err)
	}
	data, err := s.backend.Get(storage.ManifestKey(setID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSetNotFound, setID)
		}
		return nil, err
	}
	manifest, err := unmarshalManifest(data)
	if err != nil {
		return nil, err
	}
	if manifest.SetID != setID {
		return nil, fmt.Errorf("%w: manifest names set %q", ErrInvalidManifest, manifest.SetID)
	}

	res = &LoadResult{Manifest: manifest}
	for _, entry := range manifest.Shares {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := s.backend.Get(entry.Key)
		if errors.Is(err, storage.ErrNotFound) {
			res.Missing = append(res.Missing, entry)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !verifyDigest(raw, entry.SHA256) {
			return nil, fmt.Errorf("%w: %s digest mismatch", ErrCorruptShare, entry.Key)
		}
		share, err := sskr.ParseShare(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptShare, entry.Key, err)
		}
		if share.GroupIndex != entry.Group || share.MemberIndex != entry.Member {
			return nil, fmt.Errorf("%w: %s holds share %d/%d",
				ErrCorruptShare, entry.Key, share.GroupIndex, share.MemberIndex)
		}
		res.Shares = append(res.Shares, share)
	}

	s.logger.Debug("share set loaded",
		"set_id", setID,
		"shares", len(res.Shares),
		"missing", len(res.Missing))
	return res, nil
}

// Combine recovers the secret from shares.
func (s *Service) Combine(ctx context.Context, shares []*sskr.Share) (res *CombineResult, err error) {
	start := time.Now()
	defer func() { s.record(metrics.OpCombine, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	secret, groups, err := sskr.CombineDetailed(shares)
	if err != nil {
		return nil, err
	}
	metrics.RecordShares(metrics.OpCombine, metrics.SchemeSSKR, len(shares))
	metrics.RecordSecretSize(len(secret))
	s.logger.Info("secret recovered",
		"operation_id", correlation.GetOrGenerate(ctx),
		"shares", len(shares),
		"groups", groups)
	return &CombineResult{Secret: secret, Groups: groups}, nil
}

// List returns the IDs of stored sets that have a manifest.
func (s *Service) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := s.backend.List("")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	for _, k := range keys {
		if id, _, ok := strings.Cut(k, "/"); ok && storage.ManifestKey(id) == k {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Delete removes every object belonging to setID.
func (s *Service) Delete(ctx context.Context, setID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validation.ValidateSetID(setID); err != nil {
		return fmt.Errorf("shareset: %w", err)
	}
	keys, err := s.backend.List(setID + "/")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: %s", ErrSetNotFound, setID)
	}
	for _, k := range keys {
		if err := s.backend.Delete(k); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	s.logger.Info("share set deleted", "set_id", setID)
	return nil
}

func (s *Service) rollback(keys []string) {
	for _, k := range keys {
		if err := s.backend.Delete(k); err != nil {
			s.logger.Warn("rollback failed", "key", k, "error", err)
		}
	}
}

func (s *Service) record(op string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		metrics.RecordError(op, ErrorType(err))
		s.logger.Debug("operation failed", "operation", op, "error", err)
	}
	metrics.RecordOperation(op, metrics.SchemeSSKR, status, time.Since(start).Seconds())
}

func sourceName(rng secretsharing.RandomSource) string {
	if m, ok := rng.(interface{ Mode() rand.Mode }); ok {
		return string(m.Mode())
	}
	return "custom"
}
