package mclog

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(prefix string, debug bool) (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	var out, errBuf bytes.Buffer
	dbg := debug
	return &DefaultLogger{
		mu:     &sync.Mutex{},
		debug:  &dbg,
		prefix: prefix,
		out:    log.New(&out, "", 0),
		err:    log.New(&errBuf, "", 0),
	}, &out, &errBuf
}

func TestWithPrefixChainsOntoExistingPrefix(t *testing.T) {
	l, out, _ := newTestLogger("mcrun", true)
	child := l.WithPrefix("replica-2")
	child.Infof("hello")
	assert.Contains(t, out.String(), "[mcrun/replica-2] INFO: hello")
}

func TestWithPrefixOnEmptyPrefixOmitsLeadingSlash(t *testing.T) {
	l, out, _ := newTestLogger("", true)
	child := l.WithPrefix("replica-2")
	child.Infof("hello")
	assert.Contains(t, out.String(), "[replica-2] INFO: hello")
	assert.False(t, strings.HasPrefix(out.String(), "[/"))
}

func TestWithPrefixSharesDebugFlagWithParent(t *testing.T) {
	l, out, _ := newTestLogger("mcrun", false)
	child := l.WithPrefix("replica-2")
	child.Debugf("should be suppressed")
	assert.Empty(t, out.String())

	l.SetDebug(true)
	child.Debugf("should now print")
	assert.Contains(t, out.String(), "should now print")
}

func TestWarnfAndErrorfWriteToErrStream(t *testing.T) {
	l, _, errBuf := newTestLogger("mcrun", false)
	l.Warnf("watch out")
	l.Errorf("boom")
	assert.Contains(t, errBuf.String(), "WARN: watch out")
	assert.Contains(t, errBuf.String(), "ERROR: boom")
}

func TestNopWithPrefixReturnsItself(t *testing.T) {
	n := NewNop()
	assert.Same(t, n, n.WithPrefix("anything"))
}
