package logfields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSizeIsHumanReadable(t *testing.T) {
	assert.Equal(t, "71 kB", Size(71_000).Value.String())
	assert.Equal(t, "0 B", Size(-5).Value.String())
	assert.Equal(t, KeySize, Size(1).Key)
}

func TestDurationInMilliseconds(t *testing.T) {
	attr := Duration(1500 * time.Microsecond)
	assert.Equal(t, KeyDurationMS, attr.Key)
	assert.InDelta(t, 1.5, attr.Value.Float64(), 0.0001)
}

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}

func TestReasonAttr(t *testing.T) {
	attr := Reason("missing")
	assert.Equal(t, KeyReason, attr.Key)
	assert.Equal(t, "missing", attr.Value.String())
}
