package recall

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rushteam/tastekit/core"
)

// RatingsStore 是协同过滤的评分数据接口（用户 -> 物品 -> 评分）。
type RatingsStore interface {
	// AddRating 写入（覆盖）一条评分
	AddRating(ctx context.Context, userID, itemID string, rating float64) error

	// GetUserRatings 读取单个用户的全部评分；用户不存在返回空 map
	GetUserRatings(ctx context.Context, userID string) (map[string]float64, error)

	// GetAllRatings 读取全部用户的评分
	GetAllRatings(ctx context.Context) (map[string]map[string]float64, error)
}

// StoreRatingsAdapter 基于 core.KeyValueStore 的评分存储。
//
// Key 布局：
//   - {KeyPrefix}:ratings:{userID}  Hash，field 为物品名称，value 为评分
//   - {KeyPrefix}:users             Hash，field 为用户 ID
type StoreRatingsAdapter struct {
	store core.KeyValueStore

	KeyPrefix string
}

var _ RatingsStore = (*StoreRatingsAdapter)(nil)

// NewStoreRatingsAdapter 创建评分存储适配器，keyPrefix 为空时使用 "tastekit"。
func NewStoreRatingsAdapter(s core.KeyValueStore, keyPrefix string) *StoreRatingsAdapter {
	if keyPrefix == "" {
		keyPrefix = "tastekit"
	}
	return &StoreRatingsAdapter{store: s, KeyPrefix: keyPrefix}
}

func (a *StoreRatingsAdapter) userKey(userID string) string {
	return a.KeyPrefix + ":ratings:" + userID
}

func (a *StoreRatingsAdapter) usersKey() string {
	return a.KeyPrefix + ":users"
}

func (a *StoreRatingsAdapter) AddRating(ctx context.Context, userID, itemID string, rating float64) error {
	value := []byte(strconv.FormatFloat(rating, 'f', -1, 64))
	if err := a.store.HSet(ctx, a.userKey(userID), itemID, value); err != nil {
		return fmt.Errorf("store rating: %w", err)
	}
	if err := a.store.HSet(ctx, a.usersKey(), userID, []byte("1")); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

func (a *StoreRatingsAdapter) GetUserRatings(ctx context.Context, userID string) (map[string]float64, error) {
	raw, err := a.store.HGetAll(ctx, a.userKey(userID))
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(raw))
	for item, v := range raw {
		r, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, fmt.Errorf("rating %s/%s: %w", userID, item, err)
		}
		out[item] = r
	}
	return out, nil
}

func (a *StoreRatingsAdapter) GetAllRatings(ctx context.Context) (map[string]map[string]float64, error) {
	users, err := a.store.HGetAll(ctx, a.usersKey())
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]float64, len(users))
	for userID := range users {
		ratings, err := a.GetUserRatings(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(ratings) > 0 {
			out[userID] = ratings
		}
	}
	return out, nil
}
