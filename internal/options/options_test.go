package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/sss/errs"
)

type testConfig struct {
	Limit    int
	Name     string
	LastCall string
}

var errNegative = errors.New("limit cannot be negative")

func withLimit(n int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if n < 0 {
			return errNegative
		}
		c.Limit = n
		c.LastCall = "withLimit"

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.Name = name
		c.LastCall = "withName"
	})
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		c := &testConfig{}
		err := Apply(c, withLimit(10), withName("a"), withName("b"))
		require.NoError(t, err)
		require.Equal(t, 10, c.Limit)
		require.Equal(t, "b", c.Name)
		require.Equal(t, "withName", c.LastCall)
	})

	t.Run("stops at the first error", func(t *testing.T) {
		c := &testConfig{}
		err := Apply(c, withLimit(5), withLimit(-1), withName("skipped"))
		require.ErrorIs(t, err, errs.ErrInvalidOption)
		require.ErrorIs(t, err, errNegative)
		require.Equal(t, 5, c.Limit)
		require.Empty(t, c.Name)
	})

	t.Run("nil options are skipped", func(t *testing.T) {
		c := &testConfig{}
		require.NoError(t, Apply(c, nil, withName("x"), nil))
		require.Equal(t, "x", c.Name)
	})

	t.Run("typed nil options are skipped", func(t *testing.T) {
		c := &testConfig{}
		var typed *Func[*testConfig]
		require.NoError(t, Apply(c, withName("x"), Option[*testConfig](typed), &Func[*testConfig]{}))
		require.Equal(t, "x", c.Name)
	})

	t.Run("no options", func(t *testing.T) {
		c := &testConfig{}
		require.NoError(t, Apply(c))
		require.Equal(t, testConfig{}, *c)
	})

	t.Run("non-pointer targets", func(t *testing.T) {
		seen := 0
		opt := NoError(func(n int) { seen = n })
		require.NoError(t, Apply(7, Option[int](opt)))
		require.Equal(t, 7, seen)
	})
}
