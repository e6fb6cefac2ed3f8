package yatgbot_test

import (
	"net/http"
	"testing"

	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotIDFromToken(t *testing.T) {
	id, err := yatgbot.BotIDFromToken("123456:AAE-secret")

	require.Nil(t, err)
	assert.Equal(t, int64(123456), id)

	for _, token := range []string{"", "abc:def", "-5:x", "0:x"} {
		_, err := yatgbot.BotIDFromToken(token)

		require.NotNil(t, err, "token %q", token)
		assert.Equal(t, http.StatusBadRequest, err.Code())
	}
}
