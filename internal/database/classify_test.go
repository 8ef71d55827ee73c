package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koustreak/mydb/internal/errs"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code uint16
		want errs.Kind
	}{
		{1007, errs.KindDbExists},
		{1008, errs.KindDbDoesNotExist},
		{1046, errs.KindNoDbSelected},
		{1049, errs.KindDbDoesNotExist},
		{1050, errs.KindTableExists},
		{1051, errs.KindTableDoesNotExist},
		{2002, errs.KindServerConnect},
		{2003, errs.KindServerConnect},
		{2006, errs.KindServerConnect},
		{2013, errs.KindServerConnect},
		// Anything unmapped is a generic server error.
		{1045, errs.KindServerError},
		{1064, errs.KindServerError},
		{0, errs.KindServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.code), "code %d", tt.code)
	}
}

func TestIsConnectionCode(t *testing.T) {
	for _, code := range []uint16{2002, 2003, 2006, 2013} {
		assert.True(t, isConnectionCode(code), "code %d", code)
	}
	for _, code := range []uint16{1007, 1045, 1049, 0} {
		assert.False(t, isConnectionCode(code), "code %d", code)
	}
}
