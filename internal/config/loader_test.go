package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("SCHOLAR_TEST_HOST", "db.internal")

	assert.Equal(t, "db.internal", expandEnv("${SCHOLAR_TEST_HOST}"))
	assert.Equal(t, "db.internal", expandEnv("${SCHOLAR_TEST_HOST:localhost}"))
	assert.Equal(t, "host=db.internal port=5432", expandEnv("host=${SCHOLAR_TEST_HOST} port=5432"))
}

func TestExpandEnv_Default(t *testing.T) {
	assert.Equal(t, "localhost", expandEnv("${SCHOLAR_TEST_UNSET:localhost}"))
	assert.Equal(t, "", expandEnv("${SCHOLAR_TEST_UNSET:}"))
	// 无默认值且未定义时原样保留，便于发现漏配
	assert.Equal(t, "${SCHOLAR_TEST_UNSET}", expandEnv("${SCHOLAR_TEST_UNSET}"))
}

func TestExpandEnv_SetButEmpty(t *testing.T) {
	t.Setenv("SCHOLAR_TEST_EMPTY", "")
	// 已定义的空值优先于默认值
	assert.Equal(t, "", expandEnv("${SCHOLAR_TEST_EMPTY:fallback}"))
}
