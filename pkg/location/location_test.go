package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kass/emergency-locator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		kind Kind
	}{
		{"classified", &Error{Kind: PermissionDenied}, PermissionDenied},
		{"wrapped classified", errors.Join(errors.New("ctx"), &Error{Kind: PositionUnavailable}), PositionUnavailable},
		{"deadline", context.DeadlineExceeded, Timeout},
		{"other", errors.New("boom"), Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, Classify(tc.err))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "permission-denied", PermissionDenied.String())
	assert.Equal(t, "position-unavailable", PositionUnavailable.String())
	assert.Equal(t, "timeout", Timeout.String())
	assert.Equal(t, "unknown", Unknown.String())
}

func TestStatic(t *testing.T) {
	p, err := NewStatic(-15.77972, -47.92972)
	require.NoError(t, err)

	pos, err := p.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Position{Lat: -15.77972, Lon: -47.92972}, pos)
	assert.Equal(t, PermissionGranted, p.Permission(context.Background()))

	_, err = NewStatic(91, 0)
	assert.Error(t, err)
	_, err = NewStatic(0, -181)
	assert.Error(t, err)
}

func TestIPAPI(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		want    models.Position
		errKind Kind
		wantErr bool
	}{
		{"success", http.StatusOK, `{"status":"success","lat":-15.78,"lon":-47.93,"city":"Brasília"}`, models.Position{Lat: -15.78, Lon: -47.93}, Unknown, false},
		{"lookup failed", http.StatusOK, `{"status":"fail","message":"private range"}`, models.Position{}, PositionUnavailable, true},
		{"forbidden", http.StatusForbidden, ``, models.Position{}, PermissionDenied, true},
		{"server error", http.StatusBadGateway, ``, models.Position{}, PositionUnavailable, true},
		{"garbage", http.StatusOK, `not json`, models.Position{}, Unknown, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			pos, err := NewIPAPI(srv.URL, srv.Client()).CurrentPosition(context.Background())
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tc.want, pos)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.errKind, Classify(err))
		})
	}
}

func TestWithTimeout(t *testing.T) {
	slow := ProviderFunc(func(ctx context.Context) (models.Position, error) {
		select {
		case <-ctx.Done():
			return models.Position{}, ctx.Err()
		case <-time.After(5 * time.Second):
			return models.Position{Lat: 1, Lon: 1}, nil
		}
	})

	_, err := WithTimeout(slow, 20*time.Millisecond).CurrentPosition(context.Background())
	require.Error(t, err)
	assert.Equal(t, Timeout, Classify(err))

	var le *Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, Timeout, le.Kind)
}

func TestWithTimeoutPassesThrough(t *testing.T) {
	static, err := NewStatic(1, 2)
	require.NoError(t, err)

	p := WithTimeout(static, time.Second)
	pos, err := p.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Position{Lat: 1, Lon: 2}, pos)

	pc, ok := p.(PermissionChecker)
	require.True(t, ok)
	assert.Equal(t, PermissionGranted, pc.Permission(context.Background()))

	denied := ProviderFunc(func(context.Context) (models.Position, error) {
		return models.Position{}, &Error{Kind: PermissionDenied}
	})
	_, err = WithTimeout(denied, time.Second).CurrentPosition(context.Background())
	assert.Equal(t, PermissionDenied, Classify(err))

	assert.Equal(t, static, WithTimeout(static, 0))
}
