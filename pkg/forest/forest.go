// Package forest реализует регрессию случайным лесом (бэггинг деревьев решений)
// для небольших табличных наборов данных.
package forest

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand"
	"sort"
)

// Config содержит гиперпараметры леса
type Config struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Seed            int64
}

// DefaultConfig возвращает гиперпараметры по умолчанию
func DefaultConfig() Config {
	return Config{
		NumTrees:        100,
		MaxDepth:        10,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
		Seed:            42,
	}
}

// Node представляет узел дерева решений
type Node struct {
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
	Value     float64
	IsLeaf    bool
}

// Forest представляет обученный ансамбль деревьев
type Forest struct {
	Trees       []*Node
	NumFeatures int
}

// Train обучает лес на матрице признаков и векторе целевых значений.
// Каждое дерево строится на bootstrap-выборке; результат детерминирован при
// фиксированном Config.Seed.
func Train(features [][]float64, labels []float64, cfg Config) (*Forest, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("empty training set")
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("features/labels length mismatch: %d != %d", len(features), len(labels))
	}
	numFeatures := len(features[0])
	for i, row := range features {
		if len(row) != numFeatures {
			return nil, fmt.Errorf("inconsistent feature row %d: %d != %d", i, len(row), numFeatures)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	f := &Forest{
		Trees:       make([]*Node, 0, cfg.NumTrees),
		NumFeatures: numFeatures,
	}

	n := len(features)
	for t := 0; t < cfg.NumTrees; t++ {
		// Bootstrap-выборка: n индексов с возвращением
		indices := make([]int, n)
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		root := buildNode(features, labels, indices, 0, cfg)
		f.Trees = append(f.Trees, root)
	}

	return f, nil
}

// Predict возвращает среднее предсказание по всем деревьям
func (f *Forest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, root := range f.Trees {
		sum += predictNode(root, x)
	}
	return sum / float64(len(f.Trees))
}

// Encode сериализует лес в бинарный вид (gob)
func (f *Forest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("failed to encode forest: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode восстанавливает лес из бинарного вида
func Decode(data []byte) (*Forest, error) {
	var f Forest
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode forest: %w", err)
	}
	return &f, nil
}

func predictNode(n *Node, x []float64) float64 {
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// buildNode рекурсивно строит узел дерева по подмножеству индексов
func buildNode(features [][]float64, labels []float64, indices []int, depth int, cfg Config) *Node {
	mean := meanLabel(labels, indices)

	if depth >= cfg.MaxDepth || len(indices) < cfg.MinSamplesSplit {
		return &Node{IsLeaf: true, Value: mean}
	}

	feature, threshold, ok := bestSplit(features, labels, indices, cfg.MinSamplesLeaf)
	if !ok {
		return &Node{IsLeaf: true, Value: mean}
	}

	var left, right []int
	for _, i := range indices {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildNode(features, labels, left, depth+1, cfg),
		Right:     buildNode(features, labels, right, depth+1, cfg),
	}
}

// bestSplit ищет разбиение с минимальной суммой квадратов отклонений.
// Возвращает ok=false, если допустимого разбиения нет (константные признаки
// или ограничение MinSamplesLeaf).
func bestSplit(features [][]float64, labels []float64, indices []int, minLeaf int) (int, float64, bool) {
	n := len(indices)
	numFeatures := len(features[indices[0]])

	bestSSE := totalSSE(labels, indices)
	bestFeature, bestThreshold := -1, 0.0
	found := false

	values := make([]float64, n)
	targets := make([]float64, n)
	order := make([]int, n)

	for f := 0; f < numFeatures; f++ {
		for i, idx := range indices {
			values[i] = features[idx][f]
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })
		for i, o := range order {
			targets[i] = labels[indices[o]]
		}

		// Сканируем префиксные суммы слева направо
		var sumL, sumSqL float64
		sumR, sumSqR := 0.0, 0.0
		for _, t := range targets {
			sumR += t
			sumSqR += t * t
		}

		for i := 1; i < n; i++ {
			t := targets[i-1]
			sumL += t
			sumSqL += t * t
			sumR -= t
			sumSqR -= t * t

			prev := values[order[i-1]]
			cur := values[order[i]]
			if prev == cur {
				continue
			}
			if i < minLeaf || n-i < minLeaf {
				continue
			}

			sseL := sumSqL - sumL*sumL/float64(i)
			sseR := sumSqR - sumR*sumR/float64(n-i)
			if sse := sseL + sseR; sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = (prev + cur) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func meanLabel(labels []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		sum += labels[i]
	}
	return sum / float64(len(indices))
}

func totalSSE(labels []float64, indices []int) float64 {
	mean := meanLabel(labels, indices)
	var sse float64
	for _, i := range indices {
		d := labels[i] - mean
		sse += d * d
	}
	return sse
}
