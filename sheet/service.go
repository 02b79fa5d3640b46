// Package sheet loads characters from the database, serves their computed
// sheets through the cache and guards every write with the point budget.
package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gurpsmanager/server/cache"
	"github.com/gurpsmanager/server/config"
	"github.com/gurpsmanager/server/gurps"
	mw "github.com/gurpsmanager/server/middleware"
	"github.com/gurpsmanager/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned for unknown character ids.
var ErrNotFound = errors.New("sheet: character not found")

// SheetKey is the cache key of a character's computed sheet.
func SheetKey(charID int64) string {
	return "sheet:" + strconv.FormatInt(charID, 10)
}

// GenerationKey counts the writes to a character. Cached sheets record the
// generation they were computed at and are ignored once it moves on.
func GenerationKey(charID int64) string {
	return "sheet:gen:" + strconv.FormatInt(charID, 10)
}

// cachedSheet is the cache representation of a sheet.
type cachedSheet struct {
	Gen   int64       `json:"gen"`
	Sheet gurps.Sheet `json:"sheet"`
}

// RankingKey is the sorted set of a campaign's characters by points spent.
func RankingKey(campaignID int64) string {
	return "ranking:campaign:" + strconv.FormatInt(campaignID, 10)
}

// Service is safe for concurrent use.
type Service struct {
	db          *gorm.DB
	cache       cache.Cache
	ttl         time.Duration
	rankingSize int
	logger      *zap.Logger
}

func New(db *gorm.DB, c cache.Cache, cfg config.SheetConfig, logger *zap.Logger) *Service {
	return &Service{db: db, cache: c, ttl: cfg.CacheTTL, rankingSize: cfg.RankingSize, logger: logger}
}

// loadModel reads a character with every row the calculator needs.
func loadModel(tx *gorm.DB, charID int64) (*model.Character, error) {
	var ch model.Character
	err := tx.
		Preload("Skills.Skill").
		Preload("Spells.Spell").
		Preload("Traits").
		Preload("Possessions.Item").
		First(&ch, charID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load character %d: %w", charID, err)
	}
	return &ch, nil
}

// Load returns a consistent snapshot of the character and its rows.
func (s *Service) Load(ctx context.Context, charID int64) (*gurps.Character, error) {
	var snap *gurps.Character
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, err := loadModel(tx, charID)
		if err != nil {
			return err
		}
		snap = ch.Snapshot()
		return nil
	})
	return snap, err
}

// logFor tags log lines with the request's trace ID when there is one.
func (s *Service) logFor(ctx context.Context) *zap.Logger {
	if id := mw.TraceIDFrom(ctx); id != "" {
		return s.logger.With(zap.String("trace_id", id))
	}
	return s.logger
}

// Sheet returns the computed sheet, from cache when possible. The
// generation is read before the snapshot, so a sheet computed from data that
// a concurrent write has since replaced is never served from the cache.
func (s *Service) Sheet(ctx context.Context, charID int64) (*gurps.Sheet, error) {
	key := SheetKey(charID)
	gen, genErr := s.generation(ctx, charID)
	if genErr != nil {
		s.logFor(ctx).Warn("sheet generation read failed", zap.Int64("character_id", charID), zap.Error(genErr))
	} else if raw, err := s.cache.Get(ctx, key); err == nil {
		var cs cachedSheet
		switch err := json.Unmarshal([]byte(raw), &cs); {
		case err != nil:
			s.logFor(ctx).Warn("discarding unreadable cached sheet", zap.Int64("character_id", charID))
		case cs.Gen == gen:
			return &cs.Sheet, nil
		}
	} else if !cache.IsNotFound(err) {
		s.logFor(ctx).Warn("sheet cache read failed", zap.Int64("character_id", charID), zap.Error(err))
	}

	snap, err := s.Load(ctx, charID)
	if err != nil {
		return nil, err
	}
	sh, err := gurps.Compute(snap)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return &sh, nil
	}
	if now, err := s.generation(ctx, charID); err != nil || now != gen {
		return &sh, nil
	}
	if raw, err := json.Marshal(cachedSheet{Gen: gen, Sheet: sh}); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
			s.logFor(ctx).Warn("sheet cache write failed", zap.Int64("character_id", charID), zap.Error(err))
		}
	}
	return &sh, nil
}

// generation returns the character's write count; 0 if none is recorded.
func (s *Service) generation(ctx context.Context, charID int64) (int64, error) {
	raw, err := s.cache.Get(ctx, GenerationKey(charID))
	if cache.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// Invalidate moves the character to a new generation and drops the cached
// sheet.
func (s *Service) Invalidate(ctx context.Context, charID int64) {
	if _, err := s.cache.Incr(ctx, GenerationKey(charID)); err != nil {
		s.logFor(ctx).Warn("sheet generation bump failed", zap.Int64("character_id", charID), zap.Error(err))
	}
	if err := s.cache.Del(ctx, SheetKey(charID)); err != nil {
		s.logFor(ctx).Warn("sheet cache invalidate failed", zap.Int64("character_id", charID), zap.Error(err))
	}
}

// Create inserts a new character and enforces the budget on it.
func (s *Service) Create(ctx context.Context, ch *model.Character) error {
	var snap *gurps.Character
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Skills", "Spells", "Traits", "Possessions", "HitLocations").Create(ch).Error; err != nil {
			return fmt.Errorf("create character: %w", err)
		}
		var err error
		_, snap, err = check(tx, ch.ID)
		return err
	})
	if err != nil {
		return err
	}
	s.afterWrite(ctx, ch.CampaignID, ch.ID, snap)
	return nil
}

// Write runs fn in a transaction and commits only if the character still
// validates and stays within budget afterwards. fn receives the character
// as loaded inside the transaction. The reloaded character is returned.
func (s *Service) Write(ctx context.Context, charID int64, fn func(tx *gorm.DB, ch *model.Character) error) (*model.Character, error) {
	var (
		after *model.Character
		snap  *gurps.Character
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCharacter(tx, charID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		ch, err := loadModel(tx, charID)
		if err != nil {
			return err
		}
		if err := fn(tx, ch); err != nil {
			return err
		}
		after, snap, err = check(tx, charID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, after.CampaignID, charID, snap)
	return after, nil
}

// Delete removes a character with all of its rows.
func (s *Service) Delete(ctx context.Context, ch *model.Character) error {
	if err := s.db.WithContext(ctx).Delete(&model.Character{}, ch.ID).Error; err != nil {
		return fmt.Errorf("delete character %d: %w", ch.ID, err)
	}
	s.Invalidate(ctx, ch.ID)
	if err := s.cache.ZRem(ctx, RankingKey(ch.CampaignID), strconv.FormatInt(ch.ID, 10)); err != nil {
		s.logFor(ctx).Warn("ranking remove failed", zap.Int64("character_id", ch.ID), zap.Error(err))
	}
	return nil
}

// lockCharacter takes the character's row lock. It must be the first
// statement of the write: on MySQL the REPEATABLE READ snapshot is then
// taken after any concurrent writer has committed, so the budget check sees
// its rows. SQLite serialises writers itself and gorm drops the clause.
func lockCharacter(tx *gorm.DB, charID int64) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&model.Character{}, charID)
}

// check reloads the character inside tx and applies the write-time rules.
func check(tx *gorm.DB, charID int64) (*model.Character, *gurps.Character, error) {
	ch, err := loadModel(tx, charID)
	if err != nil {
		return nil, nil, err
	}
	snap := ch.Snapshot()
	if err := snap.ValidateAll(); err != nil {
		return nil, nil, err
	}
	if err := gurps.CheckBudget(snap); err != nil {
		return nil, nil, err
	}
	return ch, snap, nil
}

func (s *Service) afterWrite(ctx context.Context, campaignID, charID int64, snap *gurps.Character) {
	s.Invalidate(ctx, charID)
	member := strconv.FormatInt(charID, 10)
	if err := s.cache.ZAdd(ctx, RankingKey(campaignID), snap.TotalPointsSpent(), member); err != nil {
		s.logFor(ctx).Warn("ranking update failed", zap.Int64("character_id", charID), zap.Error(err))
	}
}

// InvalidateCampaign drops every cached sheet of the campaign and its
// ranking. Catalog edits change scores and spend of characters that were
// not written themselves.
func (s *Service) InvalidateCampaign(ctx context.Context, campaignID int64) error {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&model.Character{}).
		Where("campaign_id = ?", campaignID).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("invalidate campaign %d: %w", campaignID, err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		if _, err := s.cache.Incr(ctx, GenerationKey(id)); err != nil {
			return fmt.Errorf("invalidate campaign %d: %w", campaignID, err)
		}
		keys = append(keys, SheetKey(id))
	}
	keys = append(keys, RankingKey(campaignID))
	return s.cache.Del(ctx, keys...)
}
