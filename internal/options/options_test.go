package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	size  int
	name  string
	calls []string
}

func withSize(size int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if size < 0 {
			return errors.New("size cannot be negative")
		}
		c.size = size
		c.calls = append(c.calls, "size")

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.name = name
		c.calls = append(c.calls, "name")
	})
}

func TestApply_InOrder(t *testing.T) {
	cfg := &testConfig{}

	err := Apply(cfg, withName("a"), withSize(3), withName("b"))
	require.NoError(t, err)
	require.Equal(t, 3, cfg.size)
	require.Equal(t, "b", cfg.name, "later options override earlier ones")
	require.Equal(t, []string{"name", "size", "name"}, cfg.calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &testConfig{}

	err := Apply(cfg, withSize(-1), withName("never"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "size cannot be negative")
	require.Empty(t, cfg.name)
	require.Empty(t, cfg.calls)
}

func TestApply_SkipsNil(t *testing.T) {
	cfg := &testConfig{}

	require.NoError(t, Apply[*testConfig](cfg, nil, withSize(1)))
	require.Equal(t, 1, cfg.size)
}

func TestApply_NoOptions(t *testing.T) {
	cfg := &testConfig{size: 7}

	require.NoError(t, Apply(cfg))
	require.Equal(t, 7, cfg.size)
}
