// Package model provides core abstractions shared by the heartmine estimators.
//
// This package defines the foundation every pipeline stage builds on:
//
//   - BaseEstimator: embeddable fitted-state tracking for simple estimators
//   - StateManager: fitted-state tracking by composition, safe for concurrent reads
//   - Transformer: the common Fit/Transform contract over gonum matrices
//
// All estimators in heartmine either embed BaseEstimator or hold a
// StateManager so that using an untrained stage yields a NotFittedError
// instead of silent garbage.
//
// Example usage:
//
//	type MyStage struct {
//		model.BaseEstimator
//		// stage-specific fields
//	}
//
//	func (s *MyStage) Fit(X mat.Matrix) error {
//		// training logic
//		s.SetFitted()
//		return nil
//	}
package model

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// EstimatorState represents the learning state of an estimator
type EstimatorState int

const (
	// NotFitted indicates the estimator is not yet trained
	NotFitted EstimatorState = iota
	// Fitted indicates the estimator has been trained
	Fitted
)

// Transformer is the contract shared by preprocessing and decomposition
// stages: learn parameters from data, then apply them.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// BaseEstimator is the embeddable base structure for simple estimators
type BaseEstimator struct {
	// State holds the estimator's learning state
	State EstimatorState
}

// IsFitted returns whether the estimator has been fitted with training data.
//
// All estimators must be fitted before they can transform or predict.
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted marks the estimator as fitted (trained).
//
// Called by estimator implementations after successful training; not intended
// for end users.
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset returns the estimator to its initial untrained state.
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}

// StateManager tracks fitted state by composition instead of embedding.
// Estimators whose accessors may be read while another goroutine fits
// (e.g. clustering models exposing Labels) hold one of these.
type StateManager struct {
	mu     sync.RWMutex
	fitted bool
}

// NewStateManager creates a StateManager in the untrained state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether SetFitted has been called.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the state as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// Reset returns the state to untrained.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
}
