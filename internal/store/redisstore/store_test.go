package redisstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptchaKeyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, "beely:captcha:ayse@beely.app", captchaKey("  Ayse@Beely.app "))
	assert.Equal(t, captchaKey("a@b.c"), captchaKey("A@B.C"))
}
