package boxederr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHTTPStatusTable(t *testing.T) {
	ctx := OpContext{Provider: "docker", Operation: "GET /x"}

	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusForbidden, KindAuthentication},
		{http.StatusNotFound, KindNotFound},
		{http.StatusRequestTimeout, KindTimeout},
		{http.StatusGatewayTimeout, KindTimeout},
		{http.StatusConflict, KindConflict},
		{http.StatusRequestEntityTooLarge, KindValidation},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindProvider},
	}

	for _, c := range cases {
		got := ClassifyHTTP(c.status, http.Header{}, []byte("boom"), ctx, PatternSet{Base: DefaultPatterns})
		assert.Equal(t, c.want, got.Kind, "status %d", c.status)
	}
}

func TestClassifyHTTPRetryAfterSeconds(t *testing.T) {
	ctx := OpContext{Provider: "blaxel"}
	h := http.Header{}
	h.Set("Retry-After", "2")
	got := ClassifyHTTP(http.StatusTooManyRequests, h, nil, ctx, PatternSet{Base: DefaultPatterns})
	assert.Equal(t, KindRateLimited, got.Kind)
	assert.Equal(t, int64(2000), got.RetryAfterMs)
}

func TestClassifyHTTPPatternFallback(t *testing.T) {
	ctx := OpContext{Provider: "docker"}
	got := ClassifyHTTP(0, http.Header{}, []byte("Error: No such container: abc123"), ctx, PatternSet{Base: DefaultPatterns})
	assert.Equal(t, KindNotFound, got.Kind)
}

func TestClassifyHTTPProviderOverride(t *testing.T) {
	ctx := OpContext{Provider: "e2b"}
	patterns := PatternSet{
		Base: DefaultPatterns,
		Overrides: map[string][]Pattern{
			"e2b": {{Substring: "sandbox is paused", Kind: KindConflict}},
		},
	}
	got := ClassifyHTTP(0, http.Header{}, []byte("sandbox is paused"), ctx, patterns)
	assert.Equal(t, KindConflict, got.Kind)
}

func TestErrorIsComparesKind(t *testing.T) {
	e1 := New(KindNotFound, OpContext{}, "x")
	e2 := New(KindNotFound, OpContext{}, "y")
	assert.True(t, e1.Is(e2))

	e3 := New(KindConflict, OpContext{}, "z")
	assert.False(t, e1.Is(e3))
}
