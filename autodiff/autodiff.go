// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over
// scalar values.
//
// Operations on a Graph build a directed acyclic computation graph; Backward
// then fills in the gradient of one output with respect to every node that
// contributed to it.
//
// Example:
//
//	import "github.com/born-ml/micrograd/autodiff"
//
//	func main() {
//	    g := autodiff.NewGraph()
//	    x := g.Leaf(3)
//	    y := g.Mul(x, x) // y = x²
//
//	    g.Backward(y)
//	    fmt.Println(g.Grad(x)) // dy/dx = 2x = 6
//	}
package autodiff

import (
	"github.com/go-logr/logr"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// Graph is an arena holding every node of one computation.
type Graph = autodiff.Graph

// NodeID is a handle to a node inside one Graph.
type NodeID = autodiff.NodeID

// Node is one scalar in the computation graph.
type Node = autodiff.Node

// Option configures a Graph.
type Option = autodiff.Option

// Rule is the derivative rule stored on a node.
type Rule = ops.Rule

// Kind identifies an operation.
type Kind = ops.Kind

// Operation kinds.
const (
	None = ops.None
	Add  = ops.Add
	Mul  = ops.Mul
	Pow  = ops.Pow
	ReLU = ops.ReLU
)

// Errors.
var (
	ErrUnknownNode      = autodiff.ErrUnknownNode
	ErrInvalidRule      = autodiff.ErrInvalidRule
	ErrResidualGradient = autodiff.ErrResidualGradient
)

// NewGraph creates an empty graph.
//
// Example:
//
//	g := autodiff.NewGraph(autodiff.WithLogger(log))
func NewGraph(opts ...Option) *Graph {
	return autodiff.NewGraph(opts...)
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logr.Logger) Option {
	return autodiff.WithLogger(log)
}

// WithCapacity pre-allocates room for n nodes.
func WithCapacity(n int) Option {
	return autodiff.WithCapacity(n)
}

// Builder constructs an expression over leaves and returns its root.
type Builder = autodiff.Builder

// CheckGradients compares backpropagated gradients with finite differences.
func CheckGradients(build Builder, inputs []float64, eps, tol float64) error {
	return autodiff.CheckGradients(build, inputs, eps, tol)
}
