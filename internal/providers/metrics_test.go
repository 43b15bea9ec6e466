package providers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAPICall(t *testing.T) {
	initMetrics()

	success := apiCallsTotal.WithLabelValues("test", CallGetSecret, StatusSuccess)
	failure := apiCallsTotal.WithLabelValues("test", CallGetSecret, StatusError)
	beforeOK := testutil.ToFloat64(success)
	beforeErr := testutil.ToFloat64(failure)

	ObserveAPICall("test", CallGetSecret, time.Now(), nil)
	ObserveAPICall("test", CallGetSecret, time.Now(), nil)
	ObserveAPICall("test", CallGetSecret, time.Now(), errors.New("boom"))

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(failure))
}

func TestWriteMetrics(t *testing.T) {
	ObserveAPICall("test", CallListSecrets, time.Now(), nil)

	path := filepath.Join(t.TempDir(), "cloudsec.prom")
	require.NoError(t, WriteMetrics(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cloudsec_provider_api_calls_total")
	assert.Contains(t, string(data), `call="ListSecrets"`)
	assert.Contains(t, string(data), "cloudsec_provider_api_call_duration_seconds")
}
