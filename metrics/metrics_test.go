package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	Transactions.WithLabelValues("transfer", Status(nil)).Inc()
	Transactions.WithLabelValues("transfer", Status(errors.New("reverted"))).Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(Transactions.WithLabelValues("transfer", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(Transactions.WithLabelValues("transfer", "error")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "petcoin_token_transactions_total"))
}
