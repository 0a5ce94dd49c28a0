package model

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/rushteam/baikerank/core"
)

// LRModel 实现了二分类逻辑回归 (Logistic Regression)。
//
// 预测原理：
// 1. 线性加权求和: z = Bias + sum(Weight_i * Feature_i)
// 2. Sigmoid 变换: P = 1 / (1 + exp(-z))
//
// Weights 与 Vectorizer 的下标一一对应。特征不做标准化，原始计数与 0/1 直接参与计算。
type LRModel struct {
	Bias    float64   // 偏置项 (Intercept)
	Weights []float64 // 特征权重 (Coefficients)
}

// Decision 返回线性部分 z，按下标顺序累加，保证结果可复现。
func (m *LRModel) Decision(x SparseVector) float64 {
	z := m.Bias
	for k, i := range x.Indices {
		if i < len(m.Weights) {
			z += m.Weights[i] * x.Values[k]
		}
	}
	return z
}

// PredictProba 返回正类概率
func (m *LRModel) PredictProba(x SparseVector) float64 {
	return sigmoid(m.Decision(x))
}

// LRTrainConfig 是训练超参数。默认值：L2 正则 C=1.0，偏置与权重一起正则（liblinear 的做法）。
type LRTrainConfig struct {
	C                 float64 // 正则强度的倒数，越大正则越弱
	MaxIterations     int
	GradientThreshold float64
	FreeIntercept     bool // 为 true 时偏置不参与正则
}

// DefaultLRTrainConfig 返回默认训练参数
func DefaultLRTrainConfig() LRTrainConfig {
	return LRTrainConfig{
		C:                 1.0,
		MaxIterations:     1000,
		GradientThreshold: 1e-6,
	}
}

// FitLR 用 L-BFGS 最小化 L2 正则的对数损失：
//
//	0.5*(||w||^2 + b^2) + C * sum_i log(1 + exp(-s_i * (w·x_i + b)))，s_i ∈ {-1, +1}
//
// FreeIntercept 时去掉 b^2 项。
// 标签只能为 0/1，且两类都必须出现。
func FitLR(X []SparseVector, y []int, dim int, cfg LRTrainConfig) (*LRModel, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("model: need equal non-empty samples and labels, got %d and %d", len(X), len(y)))
	}
	signs := make([]float64, len(y))
	var pos, neg int
	for i, label := range y {
		switch label {
		case 1:
			signs[i] = 1
			pos++
		case 0:
			signs[i] = -1
			neg++
		default:
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
				fmt.Sprintf("model: label must be 0 or 1, got %d", label))
		}
	}
	if pos == 0 || neg == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			"model: training data must contain both relevant and irrelevant samples")
	}
	if cfg.C <= 0 {
		cfg.C = 1.0
	}

	obj := &logisticObjective{X: X, signs: signs, dim: dim, c: cfg.C, penalizeBias: !cfg.FreeIntercept}
	problem := optimize.Problem{
		Func: obj.Func,
		Grad: obj.Grad,
	}
	settings := &optimize.Settings{
		GradientThreshold: cfg.GradientThreshold,
		MajorIterations:   cfg.MaxIterations,
	}

	result, err := optimize.Minimize(problem, make([]float64, dim+1), settings, &optimize.LBFGS{})
	if err != nil {
		if result == nil || len(result.X) != dim+1 {
			return nil, fmt.Errorf("fit logistic regression: %w", err)
		}
		// 线搜索在最优点附近可能无法继续下降，此时结果仍可用
		slog.Debug("logistic regression stopped early", "status", result.Status.String(), "error", err)
	}

	weights := make([]float64, dim)
	copy(weights, result.X[:dim])
	return &LRModel{Bias: result.X[dim], Weights: weights}, nil
}

// logisticObjective 是 FitLR 的目标函数，参数布局为 [w_0 .. w_{dim-1}, b]。
type logisticObjective struct {
	X     []SparseVector
	signs []float64
	dim   int
	c     float64

	penalizeBias bool
}

func (o *logisticObjective) margin(params []float64, i int) float64 {
	x := o.X[i]
	z := params[o.dim]
	for k, j := range x.Indices {
		z += params[j] * x.Values[k]
	}
	return o.signs[i] * z
}

func (o *logisticObjective) Func(params []float64) float64 {
	w := params[:o.dim]
	loss := 0.0
	for i := range o.X {
		loss += logOnePlusExpNeg(o.margin(params, i))
	}
	reg := floats.Dot(w, w)
	if o.penalizeBias {
		reg += params[o.dim] * params[o.dim]
	}
	return 0.5*reg + o.c*loss
}

func (o *logisticObjective) Grad(grad, params []float64) {
	copy(grad[:o.dim], params[:o.dim])
	grad[o.dim] = 0
	if o.penalizeBias {
		grad[o.dim] = params[o.dim]
	}
	for i, x := range o.X {
		// d/dz log(1+exp(-s*z)) = -s * sigmoid(-s*z)
		g := -o.signs[i] * sigmoid(-o.margin(params, i)) * o.c
		for k, j := range x.Indices {
			grad[j] += g * x.Values[k]
		}
		grad[o.dim] += g
	}
}

// logOnePlusExpNeg 数值稳定地计算 log(1 + exp(-m))
func logOnePlusExpNeg(m float64) float64 {
	if m > 0 {
		return math.Log1p(math.Exp(-m))
	}
	return -m + math.Log1p(math.Exp(m))
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
