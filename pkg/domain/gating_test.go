package domain_test

import (
	"testing"

	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGatingRule_Proceed(t *testing.T) {
	tests := []struct {
		gate    domain.GatingRule
		success bool
		want    bool
	}{
		{domain.GateAlways, true, true},
		{domain.GateAlways, false, true},
		{domain.GateOnSuccess, true, true},
		{domain.GateOnSuccess, false, false},
		{domain.GateOnFailure, true, false},
		{domain.GateOnFailure, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.gate.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gate.Proceed(tt.success))
		})
	}
}

func TestGateForOperator(t *testing.T) {
	for _, op := range []string{";", "&&", "||"} {
		gate, ok := domain.GateForOperator(op)
		assert.True(t, ok, op)
		assert.Equal(t, op, gate.Operator())
	}

	_, ok := domain.GateForOperator("&")
	assert.False(t, ok)
	_, ok = domain.GateForOperator("&&&")
	assert.False(t, ok)
}
