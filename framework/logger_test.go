package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapturingLogger(t *testing.T) {
	var l CapturingLogger
	l.Println("a", "b")
	l.Printf("c=%d", 3)

	assert.Equal(t, []string{"a b", "c=3"}, l.Output().Messages())
	assert.Contains(t, l.Output().ToString("> "), "] a b\n> [")
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	var l1, l2 CapturingLogger
	m := MultiLogger(&l1, nil, &l2)
	m.Println("x")
	m.Printf("y %s", "z")

	assert.Equal(t, []string{"x", "y z"}, l1.Output().Messages())
	assert.Equal(t, []string{"x", "y z"}, l2.Output().Messages())
}

func TestLoggerWithPrefix(t *testing.T) {
	var l CapturingLogger
	p := LoggerWithPrefix(&l, "[grid] ")
	p.Printf("session %s", "s1")
	p.Println("done")

	assert.Equal(t, []string{"[grid] session s1", "[grid]  done"}, l.Output().Messages())
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	l := WriterLogger(&buf)
	l.Println("# Running chrome...")
	l.Println()

	assert.Equal(t, "# Running chrome...\n\n", buf.String())
}

func TestCapabilities(t *testing.T) {
	cs := Capabilities{"tunnel", "capture-html"}
	assert.True(t, cs.Has("tunnel"))
	assert.False(t, cs.Has("video"))
}
