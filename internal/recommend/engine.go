// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recdash/internal/cache"
	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/metrics"
)

// TableSource provides the current catalog snapshot. *catalog.Store
// implements it.
type TableSource interface {
	Get(ctx context.Context) (*catalog.Table, error)
}

// Engine trains the registered algorithms on a catalog snapshot and serves
// the four ranking strategies from it. It is safe for concurrent use.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger
	source TableSource

	// Registered algorithms by name
	algorithms map[string]Algorithm
	algMu      sync.RWMutex

	// mu guards the trained snapshot. Ranking holds the read lock for a
	// whole call; Train holds the write lock while it retrains and swaps.
	mu    sync.RWMutex
	table *catalog.Table

	// results memoizes ranking calls for the current snapshot. Nil when
	// caching is disabled. Cleared under mu whenever the snapshot changes.
	results *cache.LRU[*Result]

	// Training state
	trainMu     sync.Mutex
	statusMu    sync.RWMutex
	trainStatus TrainingStatus
}

// NewEngine creates a new recommendation engine reading from source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source TableSource, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("table source is required")
	}

	e := &Engine{
		config:     cfg.Clone(),
		logger:     logger.With().Str("component", "recommend").Logger(),
		source:     source,
		algorithms: make(map[string]Algorithm),
	}
	if cfg.Cache.Enabled {
		e.results = cache.NewLRU[*Result](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// RegisterAlgorithm adds an algorithm, replacing any with the same name.
// It takes part in the next Train.
func (e *Engine) RegisterAlgorithm(alg Algorithm) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	e.algorithms[alg.Name()] = alg
	e.logger.Info().
		Str("algorithm", alg.Name()).
		Msg("registered algorithm")
}

// GetConfig returns a copy of the engine configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// ========== Training ==========

// Train fetches the current catalog and retrains every algorithm on it.
// It is a no-op when the catalog is unchanged and every algorithm is already
// trained on it. An algorithm that fails to train is logged and left
// untrained; its strategies return ErrNotTrained until the next Train.
func (e *Engine) Train(ctx context.Context) error {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	table, err := e.source.Get(ctx)
	if err != nil {
		e.setLastError(err)
		return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	algorithms := e.getAlgorithms()
	if e.isCurrent(table, algorithms) {
		return nil
	}

	start := time.Now()
	e.statusMu.Lock()
	e.trainStatus.IsTraining = true
	e.statusMu.Unlock()

	e.logger.Info().
		Int("items", table.Len()).
		Int("users", len(table.Users())).
		Msg("starting model training")

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	e.mu.Lock()
	failures := e.trainAllAlgorithms(trainCtx, table, algorithms)
	e.table = table
	if e.results != nil {
		e.results.Clear()
	}
	e.mu.Unlock()

	e.completeTraining(table, start, failures)
	return nil
}

func (e *Engine) isCurrent(table *catalog.Table, algorithms []Algorithm) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.table != table {
		return false
	}
	for _, alg := range algorithms {
		if !alg.IsTrained() {
			return false
		}
	}
	return true
}

// trainAllAlgorithms must be called with e.mu held for writing.
func (e *Engine) trainAllAlgorithms(ctx context.Context, table *catalog.Table, algorithms []Algorithm) error {
	var failures []error
	for _, alg := range algorithms {
		algStart := time.Now()
		if err := alg.Train(ctx, table); err != nil {
			e.logger.Error().
				Str("algorithm", alg.Name()).
				Err(err).
				Msg("algorithm training failed")
			failures = append(failures, fmt.Errorf("%s: %w", alg.Name(), err))
			// Continue with other algorithms
			continue
		}
		metrics.RecordTraining(alg.Name(), time.Since(algStart))

		e.logger.Debug().
			Str("algorithm", alg.Name()).
			Dur("duration", time.Since(algStart)).
			Msg("algorithm training complete")
	}
	return errors.Join(failures...)
}

func (e *Engine) completeTraining(table *catalog.Table, start time.Time, failures error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.IsTraining = false
	e.trainStatus.LastTrainedAt = time.Now()
	e.trainStatus.LastTrainingDurationMS = time.Since(start).Milliseconds()
	e.trainStatus.ItemCount = table.Len()
	e.trainStatus.UserCount = len(table.Users())
	e.trainStatus.InteractionCount = table.NumInteractions()
	e.trainStatus.ModelVersion++
	e.trainStatus.LastError = ""
	if failures != nil {
		e.trainStatus.LastError = failures.Error()
	}
	metrics.RecommendModelVersion.Set(float64(e.trainStatus.ModelVersion))

	e.logger.Info().
		Int("version", e.trainStatus.ModelVersion).
		Int64("duration_ms", e.trainStatus.LastTrainingDurationMS).
		Msg("model training complete")
}

func (e *Engine) setLastError(err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.trainStatus.LastError = err.Error()
}

// GetStatus returns the current training status.
func (e *Engine) GetStatus() TrainingStatus {
	e.statusMu.RLock()
	status := e.trainStatus
	e.statusMu.RUnlock()

	status.Algorithms = make(map[string]AlgorithmStatus)
	for _, alg := range e.getAlgorithms() {
		status.Algorithms[alg.Name()] = AlgorithmStatus{
			Trained:       alg.IsTrained(),
			Version:       alg.Version(),
			LastTrainedAt: alg.LastTrainedAt(),
		}
	}
	if e.results != nil {
		hits, misses := e.results.Stats()
		status.ResultCache = &CacheStatus{Entries: e.results.Len(), Hits: hits, Misses: misses}
	}
	return status
}

// Ready reports whether a catalog snapshot has been trained.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.table != nil
}

// getAlgorithms returns the registered algorithms sorted by name.
func (e *Engine) getAlgorithms() []Algorithm {
	e.algMu.RLock()
	defer e.algMu.RUnlock()

	algs := make([]Algorithm, 0, len(e.algorithms))
	for _, alg := range e.algorithms {
		algs = append(algs, alg)
	}
	sort.Slice(algs, func(i, j int) bool { return algs[i].Name() < algs[j].Name() })
	return algs
}

func (e *Engine) algorithm(name string) (Algorithm, error) {
	e.algMu.RLock()
	alg, ok := e.algorithms[name]
	e.algMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrAlgorithmMissing)
	}
	if !alg.IsTrained() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotTrained)
	}
	return alg, nil
}

// acquire returns the trained snapshot with the read lock held, training
// first if nothing has been trained yet. Callers must call release.
func (e *Engine) acquire(ctx context.Context) (table *catalog.Table, release func(), err error) {
	e.mu.RLock()
	if e.table != nil {
		return e.table, e.mu.RUnlock, nil
	}
	e.mu.RUnlock()

	if err := e.Train(ctx); err != nil {
		return nil, nil, err
	}

	e.mu.RLock()
	return e.table, e.mu.RUnlock, nil
}

// ========== Strategies ==========

// TopRated returns the k most popular items. It needs no user.
func (e *Engine) TopRated(ctx context.Context, k int) (res *Result, err error) {
	defer e.observe(ctx, StrategyTopRated, k, time.Now(), &res, &err)

	if k < 1 {
		return nil, ErrInvalidTopN
	}
	table, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	key := cacheKey(StrategyTopRated, strconv.Itoa(k))
	if cached, ok := e.cached(StrategyTopRated, key); ok {
		return cached, nil
	}
	defer e.remember(key, &res, &err)

	alg, err := e.algorithm(AlgorithmPopularity)
	if err != nil {
		return nil, err
	}
	ranker, ok := alg.(GlobalRanker)
	if !ok {
		return nil, fmt.Errorf("%s does not rank globally: %w", alg.Name(), ErrAlgorithmMissing)
	}

	idx, err := ranker.TopK(ctx, k)
	if err != nil {
		return nil, fmt.Errorf("rank by popularity: %w", err)
	}

	items := make([]ScoredItem, len(idx))
	for i, ix := range idx {
		item := table.Item(ix)
		items[i] = ScoredItem{Item: item, Score: item.Popularity}
	}
	return &Result{
		Strategy:        StrategyTopRated,
		Items:           items,
		CatalogLoadedAt: table.LoadedAt(),
	}, nil
}

// ContentBased returns the k items most similar to itemID, never including
// itemID itself. Only items sharing at least one term with the reference
// qualify, so the result may hold fewer than k items, or none, even when
// the catalog is larger than k.
func (e *Engine) ContentBased(ctx context.Context, itemID string, k int) (res *Result, err error) {
	defer e.observe(ctx, StrategyContent, k, time.Now(), &res, &err)

	if k < 1 {
		return nil, ErrInvalidTopN
	}
	table, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	key := cacheKey(StrategyContent, itemID, strconv.Itoa(k))
	if cached, ok := e.cached(StrategyContent, key); ok {
		return cached, nil
	}
	defer e.remember(key, &res, &err)

	ref, ok := table.IndexOf(itemID)
	if !ok {
		return nil, &NotFoundError{ItemID: itemID}
	}
	return e.contentResult(ctx, table, ref, k)
}

func (e *Engine) contentResult(ctx context.Context, table *catalog.Table, ref, k int) (*Result, error) {
	scores, err := e.contentScores(ctx, ref)
	if err != nil {
		return nil, err
	}

	reference := table.Item(ref)
	return &Result{
		Strategy:        StrategyContent,
		Items:           topScored(table, scores, k, nil),
		Reference:       &reference,
		CatalogLoadedAt: table.LoadedAt(),
	}, nil
}

func (e *Engine) contentScores(ctx context.Context, ref int) (map[int]float64, error) {
	alg, err := e.algorithm(AlgorithmContent)
	if err != nil {
		return nil, err
	}
	scorer, ok := alg.(ItemScorer)
	if !ok {
		return nil, fmt.Errorf("%s does not score item similarity: %w", alg.Name(), ErrAlgorithmMissing)
	}
	scores, err := scorer.PredictSimilar(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("content similarity: %w", err)
	}
	return scores, nil
}

// Collaborative returns the k items with the highest predicted rating for
// userID among items the user has not rated. The guest user, unknown users
// and users without similar users get an UnknownUserError.
func (e *Engine) Collaborative(ctx context.Context, userID string, k int) (res *Result, err error) {
	defer e.observe(ctx, StrategyCollaborative, k, time.Now(), &res, &err)

	if k < 1 {
		return nil, ErrInvalidTopN
	}
	table, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	key := cacheKey(StrategyCollaborative, userID, strconv.Itoa(k))
	if cached, ok := e.cached(StrategyCollaborative, key); ok {
		return cached, nil
	}
	defer e.remember(key, &res, &err)

	scores, err := e.collaborativeScores(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Result{
		Strategy:        StrategyCollaborative,
		Items:           topScored(table, scores, k, nil),
		CatalogLoadedAt: table.LoadedAt(),
	}, nil
}

func (e *Engine) collaborativeScores(ctx context.Context, userID string) (map[int]float64, error) {
	alg, err := e.algorithm(AlgorithmUserCF)
	if err != nil {
		return nil, err
	}
	scorer, ok := alg.(UserScorer)
	if !ok {
		return nil, fmt.Errorf("%s does not score users: %w", alg.Name(), ErrAlgorithmMissing)
	}
	scores, err := scorer.Predict(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return nil, err
		}
		return nil, fmt.Errorf("collaborative prediction: %w", err)
	}
	return scores, nil
}

// Hybrid blends content similarity to itemID with collaborative predictions
// for userID. Both score lists are min-max normalized and combined with the
// configured weights; the reference item and items the user already rated
// are excluded. When the user has no collaborative signal the content result
// is returned unchanged except for Strategy, with Degraded set.
func (e *Engine) Hybrid(ctx context.Context, itemID, userID string, k int) (res *Result, err error) {
	defer e.observe(ctx, StrategyHybrid, k, time.Now(), &res, &err)

	if k < 1 {
		return nil, ErrInvalidTopN
	}
	table, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	key := cacheKey(StrategyHybrid, itemID, userID, strconv.Itoa(k))
	if cached, ok := e.cached(StrategyHybrid, key); ok {
		return cached, nil
	}
	defer e.remember(key, &res, &err)

	ref, ok := table.IndexOf(itemID)
	if !ok {
		return nil, &NotFoundError{ItemID: itemID}
	}

	collab, err := e.collaborativeScores(ctx, userID)
	if errors.Is(err, ErrUnknownUser) {
		fallback, cerr := e.contentResult(ctx, table, ref, k)
		if cerr != nil {
			return nil, cerr
		}
		fallback.Strategy = StrategyHybrid
		fallback.Degraded = true
		fallback.Degradation = &DegradedResultError{
			Strategy: StrategyHybrid,
			Fallback: StrategyContent,
			Cause:    err,
		}
		return fallback, nil
	}
	if err != nil {
		return nil, err
	}

	content, err := e.contentScores(ctx, ref)
	if err != nil {
		return nil, err
	}
	content = NormalizeScores(content)
	collab = NormalizeScores(collab)

	rated := make(map[int]struct{})
	for _, r := range table.UserRatings(userID) {
		rated[r.ItemIndex] = struct{}{}
	}
	rated[ref] = struct{}{}

	w := e.config.Weights.Normalize()
	blended := make(map[int]float64, len(content)+len(collab))
	for ix, s := range content {
		blended[ix] += w.Content * s
	}
	for ix, s := range collab {
		blended[ix] += w.Collaborative * s
	}
	for ix := range rated {
		delete(blended, ix)
	}

	breakdown := func(ix int) map[string]float64 {
		return map[string]float64{
			StrategyContent:       content[ix],
			StrategyCollaborative: collab[ix],
		}
	}

	reference := table.Item(ref)
	return &Result{
		Strategy:        StrategyHybrid,
		Items:           topScored(table, blended, k, breakdown),
		Reference:       &reference,
		CatalogLoadedAt: table.LoadedAt(),
	}, nil
}

// topScored orders scores with RankedBefore and keeps the first k.
func topScored(table *catalog.Table, scores map[int]float64, k int, breakdown func(int) map[string]float64) []ScoredItem {
	items := make([]ScoredItem, 0, len(scores))
	for ix, s := range scores {
		si := ScoredItem{Item: table.Item(ix), Score: s}
		if breakdown != nil {
			si.Scores = breakdown(ix)
		}
		items = append(items, si)
	}
	SortScored(items)
	if len(items) > k {
		items = items[:k]
	}
	return items
}

// cacheKey joins the arguments of a ranking call.
func cacheKey(parts ...string) string {
	return strings.Join(parts, "\x00")
}

// cached returns a copy of the memoized result for key. Callers hold e.mu
// for reading.
func (e *Engine) cached(strategy, key string) (*Result, bool) {
	if e.results == nil {
		return nil, false
	}
	res, ok := e.results.Get(key)
	metrics.RecordCacheLookup(strategy, ok)
	if !ok {
		return nil, false
	}
	return res.clone(), true
}

// remember memoizes a successful result. Deferred by the strategies so it
// runs while e.mu is still held for reading.
func (e *Engine) remember(key string, res **Result, err *error) {
	if e.results == nil || *err != nil || *res == nil {
		return
	}
	e.results.Add(key, (*res).clone())
}

// observe records metrics and a debug log line for one strategy call.
func (e *Engine) observe(ctx context.Context, strategy string, k int, start time.Time, res **Result, err *error) {
	duration := time.Since(start)

	outcome := metrics.OutcomeOK
	size := 0
	switch {
	case *err == nil:
		size = len((*res).Items)
		if (*res).Degraded {
			outcome = metrics.OutcomeDegraded
		}
	case errors.Is(*err, ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case errors.Is(*err, ErrUnknownUser):
		outcome = metrics.OutcomeUnknownUser
	default:
		outcome = metrics.OutcomeError
	}
	metrics.RecordRecommendation(strategy, outcome, size, duration)

	logger := e.logger.With().
		Str("strategy", strategy).
		Int("k", k).
		Logger()
	if id := logging.RequestIDFromContext(ctx); id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}
	logger.Debug().
		Str("outcome", outcome).
		Int("returned", size).
		Dur("duration", duration).
		Msg("recommendation complete")
}

// ========== Directory ==========

// Users returns the guest sentinel followed by every known user, sorted.
func (e *Engine) Users(ctx context.Context) ([]string, error) {
	table, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return append([]string{catalog.GuestUserID}, table.Users()...), nil
}

// Strategies returns the strategies that apply to userID. The guest only
// gets the popularity ranking.
func (e *Engine) Strategies(ctx context.Context, userID string) ([]string, error) {
	if userID == catalog.GuestUserID {
		return []string{StrategyTopRated}, nil
	}

	table, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if !table.HasUser(userID) {
		return nil, &UnknownUserError{UserID: userID, Reason: ReasonNoInteractions}
	}
	return []string{StrategyCollaborative, StrategyContent, StrategyHybrid, StrategyTopRated}, nil
}

// RecentActivity returns the user's last n rated rows in file order,
// oldest first. Users without history get an empty list.
func (e *Engine) RecentActivity(ctx context.Context, userID string, n int) ([]HistoryEntry, error) {
	if n < 1 {
		return nil, ErrInvalidTopN
	}
	table, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows := table.RecentActivity(userID, n)
	out := make([]HistoryEntry, len(rows))
	for i, r := range rows {
		out[i] = HistoryEntry{Item: table.Item(r.ItemIndex), Rating: r.Rating, Line: r.Line}
	}
	return out, nil
}

// ItemNames returns the distinct item names, sorted.
func (e *Engine) ItemNames(ctx context.Context) ([]string, error) {
	table, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return table.Names(), nil
}

// SearchItems returns up to limit items whose name or id contains query,
// case-insensitively, in catalog order. An empty query matches everything.
func (e *Engine) SearchItems(ctx context.Context, query string, limit int) ([]catalog.Item, error) {
	if limit < 1 {
		return nil, ErrInvalidTopN
	}
	table, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]catalog.Item, 0, min(limit, table.Len()))
	for i := 0; i < table.Len() && len(out) < limit; i++ {
		item := table.Item(i)
		if query == "" ||
			strings.Contains(strings.ToLower(item.Name), query) ||
			strings.Contains(strings.ToLower(item.ID), query) {
			out = append(out, item)
		}
	}
	return out, nil
}

// ResolveItem finds an item by id, falling back to an exact name match.
func (e *Engine) ResolveItem(ctx context.Context, idOrName string) (catalog.Item, error) {
	table, release, err := e.acquire(ctx)
	if err != nil {
		return catalog.Item{}, err
	}
	defer release()

	if item, ok := table.ItemByID(idOrName); ok {
		return item, nil
	}
	if item, ok := table.ItemByName(idOrName); ok {
		return item, nil
	}
	return catalog.Item{}, &NotFoundError{ItemID: idOrName}
}
