package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+992900123456", NormalizePhone("+992 (900) 12-34-56"))
	assert.Equal(t, "+992900123456", NormalizePhone("992900123456"))
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestLooksLikePhone(t *testing.T) {
	assert.True(t, LooksLikePhone("+992900123456"))
	assert.False(t, LooksLikePhone("admin@isp.tj"))
	assert.False(t, LooksLikePhone("admin"))
}
