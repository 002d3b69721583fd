// Package profile describes the clusters of a partition in terms of the
// original attributes: per-cluster summary statistics plus Kruskal-Wallis
// rank tests showing which attributes differ across clusters.
package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hupe1980/clustgo/feature"
)

// ErrInvalidLabels indicates labels that do not line up with the records.
var ErrInvalidLabels = errors.New("labels do not match records")

// alpha is the significance level for the rank tests.
const alpha = 0.05

// Moments summarizes a continuous attribute within one cluster. Std is the
// sample standard deviation and is NaN for a single observation.
type Moments struct {
	Mean float64
	Std  float64

	// Count is the number of observed values the moments cover.
	Count int
}

// ClusterProfile describes one cluster in terms of the schema's attributes.
type ClusterProfile struct {
	// Cluster is the cluster slot.
	Cluster int

	// Size is the member count.
	Size int

	// Continuous maps attribute names to their within-cluster moments.
	// Attributes with no observed value in the cluster are absent.
	Continuous map[string]Moments

	// BinaryRates maps binary attribute names to the fraction of true
	// values among the cluster's members carrying the attribute.
	BinaryRates map[string]float64

	// Categories maps each categorical attribute to its per-category
	// member counts. Missing values count under the unknown category.
	Categories map[string]map[string]int
}

// VariableTest is the Kruskal-Wallis rank test of one attribute across
// clusters.
type VariableTest struct {
	// Variable is the attribute name.
	Variable string

	// H is the tie-corrected test statistic.
	H float64

	// DF is the degrees of freedom, one less than the cluster count.
	DF int

	// PValue is the chi-squared tail probability of H.
	PValue float64

	// Significant reports PValue < 0.05.
	Significant bool
}

// Summary profiles every cluster of a partition.
type Summary struct {
	// Clusters holds one profile per cluster slot, ascending.
	Clusters []ClusterProfile

	// Tests holds the rank test of each continuous and binary attribute,
	// in schema order. Attributes with identical values everywhere or
	// with a cluster carrying no observation are omitted.
	Tests []VariableTest
}

// Build profiles the clusters that labels induce over recs.
//
// Continuous moments use only observed values. Binary attributes report the
// rate of true values per cluster. Categorical attributes report raw counts
// per category, with missing values mapped to the unknown category.
func Build(schema feature.Schema, recs []feature.Record, labels []int) (*Summary, error) {
	if len(recs) == 0 || len(recs) != len(labels) {
		return nil, fmt.Errorf("%w: %d labels for %d records", ErrInvalidLabels, len(labels), len(recs))
	}

	k := 0
	for i, l := range labels {
		if l < 0 {
			return nil, fmt.Errorf("%w: negative label for record %d", ErrInvalidLabels, i)
		}
		if l+1 > k {
			k = l + 1
		}
	}

	members := make([][]int, k)
	for i, l := range labels {
		members[l] = append(members[l], i)
	}

	s := &Summary{Clusters: make([]ClusterProfile, k)}
	for c, rows := range members {
		s.Clusters[c] = buildProfile(schema, recs, c, rows)
	}

	for _, name := range schema.Continuous {
		groups := continuousGroups(recs, members, name)
		if test, ok := rankTest(name, groups); ok {
			s.Tests = append(s.Tests, test)
		}
	}
	for _, name := range schema.Binary {
		groups := binaryGroups(recs, members, name)
		if test, ok := rankTest(name, groups); ok {
			s.Tests = append(s.Tests, test)
		}
	}

	return s, nil
}

func buildProfile(schema feature.Schema, recs []feature.Record, cluster int, rows []int) ClusterProfile {
	p := ClusterProfile{
		Cluster:     cluster,
		Size:        len(rows),
		Continuous:  make(map[string]Moments),
		BinaryRates: make(map[string]float64),
		Categories:  make(map[string]map[string]int),
	}

	for _, name := range schema.Continuous {
		var vals []float64
		for _, r := range rows {
			if v, ok := recs[r].Continuous[name]; ok && !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		p.Continuous[name] = Moments{
			Mean:  stat.Mean(vals, nil),
			Std:   stat.StdDev(vals, nil),
			Count: len(vals),
		}
	}

	for _, name := range schema.Binary {
		var present, trues int
		for _, r := range rows {
			v, ok := recs[r].Binary[name]
			if !ok {
				continue
			}
			present++
			if v {
				trues++
			}
		}
		if present == 0 {
			continue
		}
		p.BinaryRates[name] = float64(trues) / float64(present)
	}

	for _, name := range schema.Categorical {
		counts := make(map[string]int)
		for _, r := range rows {
			v, ok := recs[r].Categorical[name]
			if !ok || v == "" {
				v = feature.DefaultUnknownCategory
			}
			counts[v]++
		}
		p.Categories[name] = counts
	}

	return p
}

func continuousGroups(recs []feature.Record, members [][]int, name string) [][]float64 {
	groups := make([][]float64, len(members))
	for c, rows := range members {
		for _, r := range rows {
			if v, ok := recs[r].Continuous[name]; ok && !math.IsNaN(v) {
				groups[c] = append(groups[c], v)
			}
		}
	}
	return groups
}

func binaryGroups(recs []feature.Record, members [][]int, name string) [][]float64 {
	groups := make([][]float64, len(members))
	for c, rows := range members {
		for _, r := range rows {
			v, ok := recs[r].Binary[name]
			if !ok {
				continue
			}
			x := 0.0
			if v {
				x = 1
			}
			groups[c] = append(groups[c], x)
		}
	}
	return groups
}

// rankTest runs the Kruskal-Wallis H test over the per-cluster groups.
// ok is false when the test is undefined: fewer than two clusters, a cluster
// with no observations, or all values identical.
func rankTest(name string, groups [][]float64) (VariableTest, bool) {
	if len(groups) < 2 {
		return VariableTest{}, false
	}

	total := 0
	for _, g := range groups {
		if len(g) == 0 {
			return VariableTest{}, false
		}
		total += len(g)
	}

	type obs struct {
		value float64
		group int
	}
	all := make([]obs, 0, total)
	for c, g := range groups {
		for _, v := range g {
			all = append(all, obs{value: v, group: c})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].value < all[j].value })

	// Average ranks over tie runs, tracking the tie correction term.
	rankSums := make([]float64, len(groups))
	var tieSum float64
	for i := 0; i < total; {
		j := i + 1
		for j < total && all[j].value == all[i].value {
			j++
		}
		r := float64(i+j+1) / 2
		for p := i; p < j; p++ {
			rankSums[all[p].group] += r
		}
		if t := float64(j - i); t > 1 {
			tieSum += t*t*t - t
		}
		i = j
	}

	nf := float64(total)
	h := -3 * (nf + 1)
	for c, g := range groups {
		h += 12 / (nf * (nf + 1)) * rankSums[c] * rankSums[c] / float64(len(g))
	}

	correction := 1 - tieSum/(nf*nf*nf-nf)
	if correction == 0 {
		// Every value identical; ranks carry no information.
		return VariableTest{}, false
	}
	h /= correction

	df := len(groups) - 1
	p := distuv.ChiSquared{K: float64(df)}.Survival(h)

	return VariableTest{
		Variable:    name,
		H:           h,
		DF:          df,
		PValue:      p,
		Significant: p < alpha,
	}, true
}
