package serviceutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFatalRunsCleanupsBeforeExit(t *testing.T) {
	var calls []string
	exit = func(code int) {
		calls = append(calls, "exit")
		require.Equal(t, 1, code)
	}
	t.Cleanup(func() {
		exit = defaultExit
	})

	Fatal("run failed", errors.New("boom"),
		func() { calls = append(calls, "flush traces") },
		func() { calls = append(calls, "flush metrics") },
	)
	require.Equal(t, []string{"flush traces", "flush metrics", "exit"}, calls)
}
