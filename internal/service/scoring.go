package service

import (
	"math"

	"biofund/backend/internal/model"
)

// ClampPct 将百分比截断到 [0, 100]
func ClampPct(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// ComputeScorePct 计算加权综合得分
//
// 仅统计 weight > 0 且有评分的评分项；未评分项同时从分子与分母中排除。
// 没有可计分项时返回 nil。同一评分项有多条评分时取第一条。
func ComputeScorePct(criteria []model.Criterion, notes []model.EvaluationNote) *int {
	byCriterion := make(map[string]float64, len(notes))
	for _, n := range notes {
		if _, seen := byCriterion[n.CriterionID]; !seen {
			byCriterion[n.CriterionID] = n.ValuePct
		}
	}

	var sumWeighted, sumWeight float64
	for _, c := range criteria {
		if c.Weight <= 0 {
			continue
		}
		v, ok := byCriterion[c.CriterionID]
		if !ok {
			continue
		}
		sumWeighted += v * c.Weight
		sumWeight += c.Weight
	}

	if sumWeight <= 0 {
		return nil
	}
	score := int(math.Round(sumWeighted / sumWeight))
	return &score
}
