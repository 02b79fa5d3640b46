package sheet

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gurpsmanager/server/model"
	"go.uber.org/zap"
)

// RankEntry is one character in a campaign ranking.
type RankEntry struct {
	Rank        int     `json:"rank"`
	CharacterID int64   `json:"character_id"`
	Name        string  `json:"name"`
	Spent       float64 `json:"points_spent"`
}

// Ranking lists a campaign's characters by points spent, highest first.
// A cold ranking (for example after a restart on the local cache) is rebuilt
// from the database.
func (s *Service) Ranking(ctx context.Context, campaignID int64) ([]RankEntry, error) {
	key := RankingKey(campaignID)
	exists, err := s.cache.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("ranking lookup: %w", err)
	}
	if !exists {
		if err := s.RebuildRanking(ctx, campaignID); err != nil {
			return nil, err
		}
	}

	members, err := s.cache.ZRevRange(ctx, key, 0, int64(s.rankingSize)-1)
	if err != nil {
		return nil, fmt.Errorf("ranking range: %w", err)
	}
	if len(members) == 0 {
		return []RankEntry{}, nil
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	var chars []model.Character
	if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&chars).Error; err != nil {
		return nil, fmt.Errorf("ranking names: %w", err)
	}
	names := make(map[int64]string, len(chars))
	for _, c := range chars {
		names[c.ID] = c.Name
	}

	entries := make([]RankEntry, 0, len(ids))
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			// Deleted behind the cache's back.
			continue
		}
		score, err := s.cache.ZScore(ctx, key, strconv.FormatInt(id, 10))
		if err != nil {
			continue
		}
		entries = append(entries, RankEntry{Rank: len(entries) + 1, CharacterID: id, Name: name, Spent: score})
	}
	return entries, nil
}

// RebuildRanking recomputes every character's spend in the campaign and
// replaces the cached set, dropping members that no longer exist.
func (s *Service) RebuildRanking(ctx context.Context, campaignID int64) error {
	var chars []model.Character
	err := s.db.WithContext(ctx).
		Preload("Skills.Skill").
		Preload("Spells.Spell").
		Preload("Traits").
		Where("campaign_id = ?", campaignID).
		Find(&chars).Error
	if err != nil {
		return fmt.Errorf("ranking rebuild: %w", err)
	}
	scores := make(map[string]float64, len(chars))
	for i := range chars {
		scores[strconv.FormatInt(chars[i].ID, 10)] = chars[i].Snapshot().TotalPointsSpent()
	}
	if err := s.cache.ZReplace(ctx, RankingKey(campaignID), scores); err != nil {
		return fmt.Errorf("ranking rebuild: %w", err)
	}
	s.logger.Debug("ranking rebuilt", zap.Int64("campaign_id", campaignID), zap.Int("characters", len(chars)))
	return nil
}

// RefreshRankings rebuilds every campaign's ranking.
func (s *Service) RefreshRankings(ctx context.Context) error {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&model.Campaign{}).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("ranking refresh: %w", err)
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.RebuildRanking(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
