package hop

import (
	"testing"

	"github.com/nilswitch/rcbridge/internal/protocol"
)

func TestCandidateEdgeReflection(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  uint8
	}{
		{"upper edge reflects downward", State{Current: protocol.MaxChannel, Direction: 1}, protocol.MaxChannel - 1},
		{"lower edge reflects upward", State{Current: protocol.MinChannel, Direction: -1}, protocol.MinChannel + 1},
		{"interior climbs", State{Current: 7, Direction: 1}, 8},
		{"interior descends", State{Current: 7, Direction: -1}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Candidate(); got != tt.want {
				t.Errorf("Candidate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCandidateNeverEqualsCurrentOrOutOfRange(t *testing.T) {
	for current := protocol.MinChannel; current <= protocol.MaxChannel; current++ {
		for _, dir := range []int8{1, -1} {
			s := State{Current: current, Direction: dir}
			next := s.Candidate()
			if next < protocol.MinChannel || next > protocol.MaxChannel {
				t.Errorf("Candidate() for %+v = %d, out of [%d,%d]", s, next, protocol.MinChannel, protocol.MaxChannel)
			}
			if next == current {
				t.Errorf("Candidate() for %+v = %d, expected a channel change", s, next)
			}
		}
	}
}

func TestCommitRecomputesDirection(t *testing.T) {
	s := NewState()
	next := s.Commit(s.Candidate())
	if next.Current != s.Candidate() {
		t.Errorf("Commit() Current = %d, want %d", next.Current, s.Candidate())
	}
	if next.Direction != 1 {
		t.Errorf("Commit() Direction = %d, want 1 (climbing from InitChannel)", next.Direction)
	}

	descending := State{Current: protocol.MaxChannel, Direction: 1}
	committed := descending.Commit(descending.Candidate())
	if committed.Direction != -1 {
		t.Errorf("Commit() at upper edge Direction = %d, want -1", committed.Direction)
	}
}
