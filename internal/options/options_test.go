package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type settings struct {
	Separator string
	Tolerance int
}

func withSeparator(s string) Option[*settings] {
	return New(func(c *settings) error {
		if s == "" {
			return errors.New("separator must not be empty")
		}
		c.Separator = s

		return nil
	})
}

func withTolerance(n int) Option[*settings] {
	return NoError(func(c *settings) {
		c.Tolerance = n
	})
}

func TestApplyInOrder(t *testing.T) {
	cfg := &settings{}
	err := Apply(cfg, withSeparator("."), withTolerance(5), withSeparator("_"))
	require.NoError(t, err)
	require.Equal(t, "_", cfg.Separator, "later options win")
	require.Equal(t, 5, cfg.Tolerance)
}

func TestApplyStopsAtFirstError(t *testing.T) {
	cfg := &settings{}
	err := Apply(cfg, withTolerance(3), withSeparator(""), withTolerance(9))
	require.Error(t, err)
	require.Contains(t, err.Error(), "separator")
	require.Equal(t, 3, cfg.Tolerance, "options after the failure are not applied")
}

func TestApplyNoOptions(t *testing.T) {
	cfg := &settings{Separator: "_"}
	require.NoError(t, Apply(cfg))
	require.Equal(t, "_", cfg.Separator)
}

func TestNoErrorNeverFails(t *testing.T) {
	cfg := &settings{}
	require.NoError(t, withTolerance(-1).apply(cfg))
	require.Equal(t, -1, cfg.Tolerance)
}
