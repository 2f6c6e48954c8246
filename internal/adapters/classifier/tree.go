package classifier

import (
	"errors"
	"fmt"
	"math"
)

// Node is one entry of a flattened binary decision tree. Index 0 is the root.
// Internal nodes route x[Feature] <= Threshold to Left, otherwise Right.
// Leaves carry Value, the share of positive training samples.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// forest averages the leaf values of its trees. A decision tree is a forest of one.
type forest struct {
	trees [][]Node
}

func newForest(trees [][]Node, nFeatures int) (*forest, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	out := make([][]Node, len(trees))
	for t, nodes := range trees {
		if err := validateTree(nodes, nFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
		out[t] = append([]Node(nil), nodes...)
	}
	return &forest{trees: out}, nil
}

// validateTree checks indices and walks from the root so that every reachable
// path ends in a leaf and no node is visited twice.
func validateTree(nodes []Node, nFeatures int) error {
	if len(nodes) == 0 {
		return errors.New("empty tree")
	}
	visited := make([]bool, len(nodes))
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[i] {
			return fmt.Errorf("node %d is reachable twice", i)
		}
		visited[i] = true
		n := nodes[i]
		if n.Leaf {
			if math.IsNaN(n.Value) || n.Value < 0 || n.Value > 1 {
				return fmt.Errorf("leaf %d value %v outside [0,1]", i, n.Value)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d feature %d out of range", i, n.Feature)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= 0 || child >= len(nodes) {
				return fmt.Errorf("node %d child %d out of range", i, child)
			}
			stack = append(stack, child)
		}
	}
	return nil
}

func (f *forest) probability(x []float64) float64 {
	sum := 0.0
	for _, nodes := range f.trees {
		sum += walk(nodes, x)
	}
	return sum / float64(len(f.trees))
}

func walk(nodes []Node, x []float64) float64 {
	i := 0
	for !nodes[i].Leaf {
		if x[nodes[i].Feature] <= nodes[i].Threshold {
			i = nodes[i].Left
		} else {
			i = nodes[i].Right
		}
	}
	return nodes[i].Value
}
