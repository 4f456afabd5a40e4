package configerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Equal(t, "no plugin: dnspod", New("no plugin: %s", "dnspod").Error())
	assert.Equal(t, "100% literal", New("100% literal").Error())
	err := fmt.Errorf("loading: %w", New("missing email"))
	var configErr *Error
	assert.True(t, errors.As(err, &configErr))
	assert.Equal(t, "missing email", configErr.Reason)
}
