package helpers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyOf(t *testing.T) {
	s := []string{"a", "b"}
	s1 := CopyOf(s)
	assert.Equal(t, s, s1)
	s[0] = "x"
	assert.Equal(t, "a", s1[0])

	assert.Nil(t, CopyOf[string](nil))
}

func TestIfElse(t *testing.T) {
	assert.Equal(t, 3, IfElse(true, 3, 4))
	assert.Equal(t, 4, IfElse(false, 3, 4))
	assert.Equal(t, "a", IfElse(true, "a", "b"))
	assert.Equal(t, "b", IfElse(false, "a", "b"))
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"deviceName": 1, "appiumVersion": 2, "orientation": 3}
	assert.Equal(t, []string{"appiumVersion", "deviceName", "orientation"}, SortedKeys(m))
	assert.Len(t, SortedKeys(map[string]int{}), 0)
}

type target struct {
	a, b string
}

func TestApplyOptions(t *testing.T) {
	var x target
	err := ApplyOptions(&x,
		ConfigOptionFunc[target](func(t *target) error { t.a = "1"; return nil }),
		ConfigOptionFunc[target](func(t *target) error { t.b = "2"; return nil }),
	)
	assert.NoError(t, err)
	assert.Equal(t, target{"1", "2"}, x)

	var y target
	err = ApplyOptions(&y,
		ConfigOptionFunc[target](func(t *target) error { return errors.New("bad") }),
		ConfigOptionFunc[target](func(t *target) error { t.b = "2"; return nil }),
	)
	assert.EqualError(t, err, "bad")
	assert.Equal(t, target{}, y)
}
