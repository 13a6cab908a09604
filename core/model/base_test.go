package model_test

import (
	"sync"
	"testing"

	"github.com/ezoic/heartmine/core/model"
)

func TestBaseEstimator_StateTransitions(t *testing.T) {
	var e model.BaseEstimator

	if e.IsFitted() {
		t.Error("New estimator must not be fitted")
	}

	e.SetFitted()
	if !e.IsFitted() {
		t.Error("SetFitted must mark the estimator fitted")
	}

	e.Reset()
	if e.IsFitted() {
		t.Error("Reset must return the estimator to the untrained state")
	}
}

func TestStateManager_StateTransitions(t *testing.T) {
	s := model.NewStateManager()

	if s.IsFitted() {
		t.Error("New state manager must not be fitted")
	}

	s.SetFitted()
	if !s.IsFitted() {
		t.Error("SetFitted must mark the state fitted")
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset must return the state to untrained")
	}
}

func TestStateManager_ConcurrentReads(t *testing.T) {
	s := model.NewStateManager()
	s.SetFitted()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !s.IsFitted() {
					t.Error("Fitted state must be visible to concurrent readers")
					return
				}
			}
		}()
	}
	wg.Wait()
}
