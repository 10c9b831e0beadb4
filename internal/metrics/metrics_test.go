package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	assert.Equal(t, ResultAllowed, Result(true, nil))
	assert.Equal(t, ResultDenied, Result(false, nil))
	assert.Equal(t, ResultError, Result(true, errors.New("boom")))
}

func TestObserveCheck(t *testing.T) {
	before := testutil.ToFloat64(ChecksCounter(CheckWarehouse, ResultDenied))

	ObserveCheck(CheckWarehouse, time.Now(), false, nil)
	ObserveCheck(CheckWarehouse, time.Now(), false, nil)

	assert.Equal(t, before+2, testutil.ToFloat64(ChecksCounter(CheckWarehouse, ResultDenied)))
}
