package recall

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
)

// MFConfig 矩阵分解的训练参数。
type MFConfig struct {
	// Factors 隐向量维度
	Factors int `koanf:"factors" validate:"gte=1,lte=256"`
	// Epochs SGD 迭代轮数
	Epochs int `koanf:"epochs" validate:"gte=1"`
	// LearningRate 学习率
	LearningRate float64 `koanf:"learning_rate" validate:"gt=0"`
	// Regularization L2 正则系数
	Regularization float64 `koanf:"regularization" validate:"gte=0"`
	// Seed 随机种子；相同输入 + 相同种子得到相同模型
	Seed int64 `koanf:"seed"`
	// MaxRating 写入评分的上限，0 表示不限
	MaxRating float64 `koanf:"max_rating" validate:"gte=0"`
}

func DefaultMFConfig() MFConfig {
	return MFConfig{
		Factors:        8,
		Epochs:         50,
		LearningRate:   0.01,
		Regularization: 0.02,
		Seed:           42,
		MaxRating:      5,
	}
}

// MatrixFactorization 训练带偏置项的矩阵分解模型：
//
//	r̂(u,i) = μ + b_u + b_i + p_u · q_i
//
// 物品隐向量用物品属性的占比特征（属性 / total）初始化，
// 没有评分的物品也能得到有区分度的预测。
// 模型按请求训练，不跨请求缓存。
type MatrixFactorization struct {
	Config MFConfig
}

// MFModel 是训练好的模型，只读，可并发访问。
type MFModel struct {
	// scale 是评分最大绝对值（至少为 1）；训练前评分除以它，预测时再乘回
	scale     float64
	mean      float64
	userIndex map[string]int
	itemIndex map[string]int
	userBias  []float64
	itemBias  []float64
	userVecs  [][]float64
	itemVecs  [][]float64
}

type rating struct {
	user, item int
	value      float64
}

// Train 在 ratings 上训练模型。
// items 决定物品集合；对 items 之外物品的评分不参与训练。
func (m *MatrixFactorization) Train(
	ctx context.Context,
	ratings map[string]map[string]float64,
	items []*core.Item,
	schema feature.AttributeSchema,
) (*MFModel, error) {
	cfg := m.Config
	if cfg.Factors <= 0 || cfg.Epochs <= 0 || cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("matrix factorization: invalid config %+v", cfg)
	}

	model := &MFModel{
		scale:     1,
		userIndex: make(map[string]int),
		itemIndex: make(map[string]int, len(items)),
	}

	//nolint:gosec // 模型初始化不需要密码学随机数
	rng := rand.New(rand.NewSource(cfg.Seed))

	for _, it := range items {
		if it == nil {
			continue
		}
		if _, dup := model.itemIndex[it.ID]; dup {
			continue
		}
		model.itemIndex[it.ID] = len(model.itemVecs)
		model.itemVecs = append(model.itemVecs, initItemVector(it, schema, cfg.Factors, rng))
	}
	model.itemBias = make([]float64, len(model.itemVecs))

	// 按用户 ID 排序，保证相同输入得到相同的索引与训练顺序
	userIDs := make([]string, 0, len(ratings))
	for u := range ratings {
		userIDs = append(userIDs, u)
	}
	sort.Strings(userIDs)

	var samples []rating
	var sum float64
	for _, u := range userIDs {
		itemIDs := make([]string, 0, len(ratings[u]))
		for i := range ratings[u] {
			itemIDs = append(itemIDs, i)
		}
		sort.Strings(itemIDs)

		ui := -1
		for _, i := range itemIDs {
			ii, ok := model.itemIndex[i]
			if !ok {
				continue
			}
			if ui < 0 {
				ui = len(model.userVecs)
				model.userIndex[u] = ui
				vec := make([]float64, cfg.Factors)
				for f := range vec {
					vec[f] = (rng.Float64() - 0.5) * 0.1
				}
				model.userVecs = append(model.userVecs, vec)
			}
			v := ratings[u][i]
			samples = append(samples, rating{user: ui, item: ii, value: v})
			sum += v
		}
	}
	model.userBias = make([]float64, len(model.userVecs))
	if len(samples) == 0 {
		return model, nil
	}
	// 归一化到 [-1, 1]，避免大评分让 SGD 发散
	for _, s := range samples {
		if a := math.Abs(s.value); a > model.scale {
			model.scale = a
		}
	}
	if model.scale != 1 {
		sum /= model.scale
		for i := range samples {
			samples[i].value /= model.scale
		}
	}
	model.mean = sum / float64(len(samples))

	lr, reg := cfg.LearningRate, cfg.Regularization
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng.Shuffle(len(samples), func(i, j int) {
			samples[i], samples[j] = samples[j], samples[i]
		})
		for _, s := range samples {
			p, q := model.userVecs[s.user], model.itemVecs[s.item]
			e := s.value - model.predict(s.user, s.item)

			model.userBias[s.user] += lr * (e - reg*model.userBias[s.user])
			model.itemBias[s.item] += lr * (e - reg*model.itemBias[s.item])
			for f := range p {
				pf, qf := p[f], q[f]
				p[f] += lr * (e*qf - reg*pf)
				q[f] += lr * (e*pf - reg*qf)
			}
		}
	}
	if !model.finite() {
		return nil, fmt.Errorf("matrix factorization: training diverged (learning_rate %v)", lr)
	}
	return model, nil
}

// finite 检查所有参数均为有限值。
func (m *MFModel) finite() bool {
	ok := func(vs []float64) bool {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		return true
	}
	if !ok([]float64{m.mean}) || !ok(m.userBias) || !ok(m.itemBias) {
		return false
	}
	for _, vecs := range [][][]float64{m.userVecs, m.itemVecs} {
		for _, v := range vecs {
			if !ok(v) {
				return false
			}
		}
	}
	return true
}

// initItemVector 把占比特征循环投影到 factors 维，再叠加小幅噪声。
func initItemVector(it *core.Item, schema feature.AttributeSchema, factors int, rng *rand.Rand) []float64 {
	ratios := feature.RatioFeatures(it.Attributes, schema)
	vec := make([]float64, factors)
	for f := range vec {
		var side float64
		if len(ratios) > 0 {
			side = ratios[f%len(ratios)]
		}
		vec[f] = 0.1*side + (rng.Float64()-0.5)*0.01
	}
	return vec
}

func (m *MFModel) predict(u, i int) float64 {
	score := m.mean + m.userBias[u] + m.itemBias[i]
	p, q := m.userVecs[u], m.itemVecs[i]
	for f := range p {
		score += p[f] * q[f]
	}
	return score
}

// HasUser 判断用户是否参与了训练。
func (m *MFModel) HasUser(userID string) bool {
	_, ok := m.userIndex[userID]
	return ok
}

// Predict 预测评分；用户或物品未知时 ok 为 false。
func (m *MFModel) Predict(userID, itemID string) (score float64, ok bool) {
	u, ok := m.userIndex[userID]
	if !ok {
		return 0, false
	}
	i, ok := m.itemIndex[itemID]
	if !ok {
		return 0, false
	}
	return m.predict(u, i) * m.scale, true
}

// ForUser 返回绑定到单个用户的打分器，可交给 rank.ModelNode 使用。
func (m *MFModel) ForUser(userID string) *UserScorer {
	return &UserScorer{model: m, userID: userID}
}

// UserScorer 用 MF 模型为固定用户的物品打分。
type UserScorer struct {
	model  *MFModel
	userID string
}

func (s *UserScorer) Name() string { return "mf" }

func (s *UserScorer) Predict(it *core.Item) (float64, error) {
	score, ok := s.model.Predict(s.userID, it.ID)
	if !ok {
		return 0, core.NewDomainError(core.ModuleRank, core.ErrorCodeNotFound,
			fmt.Sprintf("rank: no factors for user %q item %q", s.userID, it.ID))
	}
	return score, nil
}
