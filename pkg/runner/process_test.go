// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"slices"
	"testing"
)

func TestPriority_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Priority
		want  bool
	}{
		{PriorityDefault, true},
		{PriorityNormal, true},
		{PriorityHigh, true},
		{"realtime", false},
		{"HIGH", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.value.IsValid()
			if ok != tt.want {
				t.Errorf("IsValid() = %v, want %v", ok, tt.want)
			}
			if !tt.want {
				if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidPriority) {
					t.Errorf("errs = %v, want one ErrInvalidPriority", errs)
				}
			}
		})
	}
}

func TestProcessState_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	ctl := &fakeController{nice: 0, affinity: []int{0, 1}}
	state := acquireProcessState(ctl, PriorityHigh, []int{1}, discardLogger())

	nice, affinity := ctl.snapshot()
	if nice != -5 || !slices.Equal(affinity, []int{1}) {
		t.Fatalf("acquired state = nice %d affinity %v", nice, affinity)
	}

	state.Release()
	calls := ctl.setCalls
	state.Release()
	if ctl.setCalls != calls {
		t.Errorf("second Release made %d extra calls", ctl.setCalls-calls)
	}

	nice, affinity = ctl.snapshot()
	if nice != 0 || !slices.Equal(affinity, []int{0, 1}) {
		t.Errorf("released state = nice %d affinity %v", nice, affinity)
	}
}

func TestProcessState_ReleaseNil(t *testing.T) {
	t.Parallel()

	var s *processState
	s.Release()
}
