package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"packhub/internal/logging"
	"packhub/internal/packcache"
	"packhub/internal/trainingpack"
)

// PackStore is the persistent cache consulted by DecodeService.
type PackStore interface {
	Lookup(ctx context.Context, key string) (packcache.Entry, bool, error)
	Store(ctx context.Context, entry packcache.Entry) error
}

// DecodeOptions configures a DecodeService.
type DecodeOptions struct {
	Mode    trainingpack.Mode
	Trace   bool
	LRUSize int
}

// DecodeService decodes training pack metadata through the cache layers.
type DecodeService struct {
	store  PackStore
	memory *lru.Cache[string, memoEntry]
	mode   trainingpack.Mode
	trace  bool
	logger *slog.Logger
}

// memoEntry pairs a decoded pack with the fingerprint of the bytes it came
// from, so a pack ID whose metadata changed misses instead of serving the old
// pack.
type memoEntry struct {
	fingerprint string
	pack        *trainingpack.Pack
}

// NewDecodeService constructs a DecodeService. A nil store disables the
// persistent layer and a non-positive LRUSize disables the in-process one.
func NewDecodeService(opts DecodeOptions, store PackStore, logger *slog.Logger) (*DecodeService, error) {
	svc := &DecodeService{
		store:  store,
		mode:   opts.Mode,
		trace:  opts.Trace,
		logger: logging.NewComponentLogger(logger, "decode"),
	}
	if opts.LRUSize > 0 {
		memory, err := lru.New[string, memoEntry](opts.LRUSize)
		if err != nil {
			return nil, fmt.Errorf("create decode lru: %w", err)
		}
		svc.memory = memory
	}
	return svc, nil
}

// Decode resolves req to a decoded pack.
func (s *DecodeService) Decode(ctx context.Context, req DecodeRequest) (*DecodeResult, error) {
	if s == nil {
		return nil, errors.New("decode service is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID, ok := logging.RequestIDFromContext(ctx)
	if !ok {
		correlationID = uuid.NewString()
		ctx = logging.WithRequestID(ctx, correlationID)
	}

	mode := s.mode
	if req.Mode != "" {
		parsed, err := trainingpack.ParseMode(req.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	raw, err := trainingpack.DecodeBase64(req.Payload)
	if err != nil {
		logging.WithContext(ctx, s.logger).Debug("rejected metadata payload", logging.Error(err))
		return nil, err
	}

	fingerprint := packcache.Fingerprint(raw)
	key := packcache.Key(req.PackID, raw)
	ctx = logging.WithPackKey(ctx, key)
	logger := logging.WithContext(ctx, s.logger)

	result := &DecodeResult{Key: key, CorrelationID: correlationID, Mode: mode.String()}

	if !req.SkipCache {
		if pack, source, found := s.lookup(ctx, logger, key, fingerprint); found {
			result.Pack = pack
			result.Cached = true
			result.Source = source
			logger.Debug("decode served from cache", logging.String("source", source))
			return result, nil
		}
	}

	decodeOpts := []trainingpack.Option{trainingpack.WithMode(mode)}
	if req.Trace || s.trace {
		decodeOpts = append(decodeOpts, trainingpack.WithTrace(func(ev trainingpack.TraceEvent) {
			logger.Debug("decode trace",
				logging.String("field", ev.Field),
				logging.Int("offset", ev.Offset),
				logging.Int("bits", ev.Bits),
				logging.Int("value", ev.Value),
				logging.Bool("column", ev.Column))
		}))
	}

	pack, err := trainingpack.DecodeBytes(raw, decodeOpts...)
	if err != nil {
		kind, _ := trainingpack.KindOf(err)
		logger.Info("training pack rejected",
			logging.String("error_kind", string(kind)),
			logging.Int("payload_bytes", len(raw)),
			logging.Error(err))
		return nil, err
	}

	result.Pack = pack
	result.Source = SourceDecoder

	if !req.SkipCache {
		if s.memory != nil {
			s.memory.Add(key, memoEntry{fingerprint: fingerprint, pack: pack})
		}
		s.persist(ctx, logger, packcache.Entry{
			Key:         key,
			PayloadSize: len(raw),
			Mode:        mode.String(),
			Fingerprint: fingerprint,
			Pack:        pack,
		})
	}

	logger.Info("decoded training pack",
		logging.String("name", pack.Name),
		logging.Int("shot_count", pack.ShotCount),
		logging.Int("bits", pack.Bits),
		logging.String("mode", mode.String()))
	return result, nil
}

func (s *DecodeService) lookup(ctx context.Context, logger *slog.Logger, key, fingerprint string) (*trainingpack.Pack, string, bool) {
	if s.memory != nil {
		if memo, ok := s.memory.Get(key); ok {
			if memo.fingerprint == fingerprint {
				return memo.pack, SourceMemory, true
			}
			s.memory.Remove(key)
			logger.Debug("metadata changed since pack was memoized", logging.String("source", SourceMemory))
		}
	}
	if s.store == nil {
		return nil, "", false
	}
	entry, ok, err := s.store.Lookup(ctx, key)
	if err != nil {
		logging.Warn(logger, "pack cache lookup failed", logging.Remedy{
			Event:  "packcache_lookup_failed",
			Hint:   "run packhub doctor or clear the cache",
			Impact: "pack will be decoded from metadata",
		}, logging.Error(err))
		return nil, "", false
	}
	if !ok || entry.Pack == nil {
		return nil, "", false
	}
	if entry.Fingerprint != fingerprint {
		logger.Debug("metadata changed since pack was cached",
			logging.String("source", SourceCache),
			logging.String("cached_fingerprint", entry.Fingerprint))
		return nil, "", false
	}
	if s.memory != nil {
		s.memory.Add(key, memoEntry{fingerprint: fingerprint, pack: entry.Pack})
	}
	return entry.Pack, SourceCache, true
}

func (s *DecodeService) persist(ctx context.Context, logger *slog.Logger, entry packcache.Entry) {
	if s.store == nil {
		return
	}
	if err := s.store.Store(ctx, entry); err != nil {
		logging.Warn(logger, "pack cache write failed", logging.Remedy{
			Event:  "packcache_store_failed",
			Hint:   "check cache directory permissions",
			Impact: "the next request for this pack decodes again",
		}, logging.Error(err))
	}
}
