package bulk

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyAllSucceed(t *testing.T) {
	items := []string{"a", "b", "c"}

	outcomes := Apply(items, http.StatusCreated, func(string) error { return nil })

	assert.Len(t, outcomes, 3)
	for i, outcome := range outcomes {
		assert.Equal(t, http.StatusCreated, outcome.Status)
		assert.Empty(t, outcome.Error)
		assert.Equal(t, items[i], outcome.Item)
	}
}

func TestApplyMixedFailuresKeepOrderAndContinue(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	invoked := 0

	outcomes := Apply(items, http.StatusNoContent, func(n int) error {
		invoked++
		if n%2 == 0 {
			return fmt.Errorf("item %d rejected", n)
		}
		return nil
	})

	assert.Equal(t, len(items), invoked, "a failing item must not stop the batch")
	assert.Len(t, outcomes, len(items))

	failed := 0
	for i, outcome := range outcomes {
		assert.Equal(t, items[i], outcome.Item)
		if items[i]%2 == 0 {
			failed++
			assert.Equal(t, http.StatusBadRequest, outcome.Status)
			assert.Equal(t, fmt.Sprintf("item %d rejected", items[i]), outcome.Error)
		} else {
			assert.Equal(t, http.StatusNoContent, outcome.Status)
			assert.Empty(t, outcome.Error)
		}
	}
	assert.Equal(t, 2, failed)
}

func TestApplyEmptyInput(t *testing.T) {
	outcomes := Apply(nil, http.StatusCreated, func(struct{}) error {
		return errors.New("must not run")
	})
	assert.Empty(t, outcomes)
}
