package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testUpstream struct {
	BaseURL string `validate:"required,url"`
	Format  string `validate:"oneof=json console"`
	Port    int    `validate:"gte=1,lte=65535"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := testUpstream{
			BaseURL: "https://openrouter.ai/api/v1",
			Format:  "json",
			Port:    8080,
		}

		err := ValidateStruct(&s)
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		s := testUpstream{
			Format: "json",
			Port:   8080,
		}

		err := ValidateStruct(&s)
		assert.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "testUpstream.BaseURL")
		assert.Contains(t, err.Error(), "testUpstream.BaseURL is required")
	})

	t.Run("invalid url", func(t *testing.T) {
		s := testUpstream{
			BaseURL: "not a url",
			Format:  "json",
			Port:    8080,
		}

		err := ValidateStruct(&s)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "testUpstream.BaseURL must be a valid URL", GetValidationFields(err)["testUpstream.BaseURL"])
	})

	t.Run("several failures", func(t *testing.T) {
		s := testUpstream{
			BaseURL: "https://example.com",
			Format:  "yaml",
			Port:    70000,
		}

		err := ValidateStruct(&s)
		fields := GetValidationFields(err)
		assert.Len(t, fields, 2)
		assert.Contains(t, fields["testUpstream.Format"], "must be one of: json console")
		assert.Contains(t, fields["testUpstream.Port"], "less than or equal to 65535")
	})
}

func TestGetValidationFields(t *testing.T) {
	assert.Nil(t, GetValidationFields(errors.New("plain error")))
	assert.False(t, IsValidationError(errors.New("plain error")))
}
