package version

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	rr := httptest.NewRecorder()
	NewService(big.NewInt(137), gov.TallyModeScoped).Current(rr, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Object response `json:"object"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, Version, body.Object.Version)
	require.Equal(t, "137", body.Object.ChainID)
	require.Equal(t, gov.TallyModeScoped, body.Object.TallyMode)
}
