package model

import "math"

// MetricStatus flags whether a metric exceeds its threshold.
type MetricStatus int

const (
	StatusOk MetricStatus = iota
	StatusWarning
	StatusError
)

// Metric is a single named metric value.
type Metric struct {
	Name   string
	Value  float64
	Status MetricStatus
}

// MethodMetric groups the metrics of one method.
type MethodMetric struct {
	Name    string
	Line    int
	Metrics []Metric
}

// Method holds the coverage of a single method or function.
type Method struct {
	Name          string
	DisplayName   string
	Signature     string
	FirstLine     int
	LastLine      int
	LineRate      float64
	BranchRate    *float64
	Complexity    float64
	MethodMetrics []MethodMetric
}

// CrapScore computes the CRAP score for a coverage ratio (0..1) and cyclomatic complexity.
// Invalid complexity yields NaN.
func CrapScore(coverage, complexity float64) float64 {
	if math.IsNaN(coverage) || math.IsInf(coverage, 0) || coverage < 0 || coverage > 1 {
		coverage = 0
	}
	if math.IsNaN(complexity) || math.IsInf(complexity, 0) || complexity < 0 {
		return math.NaN()
	}
	uncovered := 1.0 - coverage
	return math.Pow(complexity, 2)*math.Pow(uncovered, 3) + complexity
}

// StandardMetrics builds the complexity, line coverage, branch coverage and CrapScore
// metrics of m. NaN values are skipped. CrapScore prefers branch coverage when known.
func (m *Method) StandardMetrics(name string) []MethodMetric {
	var metrics []Metric
	if !math.IsNaN(m.Complexity) {
		metrics = append(metrics, Metric{Name: "Cyclomatic complexity", Value: m.Complexity})
	}
	metrics = append(metrics, Metric{Name: "Line coverage", Value: m.LineRate * 100})
	if m.BranchRate != nil {
		metrics = append(metrics, Metric{Name: "Branch coverage", Value: *m.BranchRate * 100})
	}
	coverage := m.LineRate
	if m.BranchRate != nil {
		coverage = *m.BranchRate
	}
	if crap := CrapScore(coverage, m.Complexity); !math.IsNaN(crap) {
		metrics = append(metrics, Metric{Name: "CrapScore", Value: crap})
	}
	return []MethodMetric{{Name: name, Line: m.FirstLine, Metrics: metrics}}
}
