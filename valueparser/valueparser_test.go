package valueparser_test

import (
	"testing"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/valueparser"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_Basic(t *testing.T) {
	port, err := valueparser.ParseValue[uint16]("6379")
	require.Nil(t, err)
	assert.Equal(t, uint16(6379), port)

	ok, err := valueparser.ParseValue[bool]("true")
	require.Nil(t, err)
	assert.True(t, ok)

	_, err = valueparser.ParseValue[int8]("300")
	assert.NotNil(t, err)
}

func TestParseValue_CustomUnmarshal(t *testing.T) {
	level, err := valueparser.ParseValue[yalogger.Level]("trace")

	require.Nil(t, err)
	assert.Equal(t, yalogger.TraceLevel, level)
}

func TestParseValue_Duration(t *testing.T) {
	duration, err := valueparser.ParseValue[time.Duration]("1500ms")

	require.Nil(t, err)
	assert.Equal(t, 1500*time.Millisecond, duration)
}

func TestParseArray(t *testing.T) {
	values, err := valueparser.ParseArray[string]("message, callback_query ,poll", nil)

	require.Nil(t, err)
	assert.Equal(t, []string{"message", "callback_query", "poll"}, values)

	empty, err := valueparser.ParseArray[int]("", nil)
	require.Nil(t, err)
	assert.Empty(t, empty)
}
