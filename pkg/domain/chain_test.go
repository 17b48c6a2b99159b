package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func template(verbatim bool) domain.Chain {
	return domain.Chain{
		Verbatim: verbatim,
		Commands: []domain.Command{
			{Name: "cp", Args: []string{"{}", "/tmp/{}.bak"}, Gate: domain.GateOnSuccess},
			{Name: "{}", Args: []string{"x{}y{}z"}, Gate: domain.GateAlways},
		},
	}
}

func TestNewCommand(t *testing.T) {
	cmd, err := domain.NewCommand([]string{"make", "-j", "4"}, domain.GateOnFailure)
	require.NoError(t, err)
	assert.Equal(t, "make", cmd.Name)
	assert.Equal(t, []string{"-j", "4"}, cmd.Args)
	assert.Equal(t, domain.GateOnFailure, cmd.Gate)

	_, err = domain.NewCommand(nil, domain.GateAlways)
	assert.True(t, errors.Is(err, domain.ErrEmptyCommand))
}

func TestChain_Resolve(t *testing.T) {
	t.Run("Substitutes Every Occurrence In Args", func(t *testing.T) {
		tmpl := template(false)
		resolved := tmpl.Resolve("main.c")

		assert.Equal(t, []string{"main.c", "/tmp/main.c.bak"}, resolved.Commands[0].Args)
		assert.Equal(t, []string{"xmain.cymain.cz"}, resolved.Commands[1].Args)
		assert.Equal(t, "main.c", resolved.Trigger)
	})

	t.Run("Never Substitutes Executable Names", func(t *testing.T) {
		resolved := template(false).Resolve("main.c")
		assert.Equal(t, "{}", resolved.Commands[1].Name)
	})

	t.Run("Leaves Template Untouched", func(t *testing.T) {
		tmpl := template(false)
		_ = tmpl.Resolve("main.c")
		assert.Equal(t, template(false), tmpl)
	})

	t.Run("Is Stable For The Same Path", func(t *testing.T) {
		tmpl := template(false)
		assert.Equal(t, tmpl.Resolve("a/b.txt"), tmpl.Resolve("a/b.txt"))
	})

	t.Run("Verbatim Alters Nothing", func(t *testing.T) {
		tmpl := template(true)
		resolved := tmpl.Resolve("main.c")
		for i := range tmpl.Commands {
			assert.Equal(t, tmpl.Commands[i], resolved.Commands[i])
		}
	})

	t.Run("Returns A Deep Copy", func(t *testing.T) {
		tmpl := template(true)
		resolved := tmpl.Resolve("main.c")
		resolved.Commands[0].Args[0] = "mutated"
		assert.Equal(t, "{}", tmpl.Commands[0].Args[0])
	})
}

func TestChain_Tokens(t *testing.T) {
	chain := domain.Chain{Commands: []domain.Command{
		{Name: "make", Gate: domain.GateOnSuccess},
		{Name: "./test", Args: []string{"-v"}, Gate: domain.GateOnFailure},
		{Name: "notify", Args: []string{"failed"}, Gate: domain.GateAlways},
	}}
	assert.Equal(t, []string{"make", "&&", "./test", "-v", "||", "notify", "failed"}, chain.Tokens())
	assert.Equal(t, 3, chain.Len())
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	merged := domain.MergeHooks(
		domain.LifecycleHooks{OnChainDone: func(_ context.Context, _ *domain.ChainEvent) { calls = append(calls, "a") }},
		domain.LifecycleHooks{},
		domain.LifecycleHooks{OnChainDone: func(_ context.Context, _ *domain.ChainEvent) { calls = append(calls, "b") }},
	)

	merged.OnChainStart(context.Background(), &domain.ChainEvent{})
	merged.OnChainDone(context.Background(), &domain.ChainEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestSpawnError_Unwrap(t *testing.T) {
	inner := errors.New("exec: not found")
	err := error(&domain.SpawnError{Command: "nope", Err: inner})

	var spawnErr *domain.SpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.Equal(t, "nope", spawnErr.Command)
	assert.ErrorIs(t, err, inner)
}
