package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
)

type payoutBody struct {
	Amount    decimal.Decimal `json:"amount" validate:"positive"`
	Remarks   string          `json:"remarks" validate:"max=10"`
	PartnerID string          `json:"partner_id" validate:"required"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/v1/partners/PTN1/payouts", strings.NewReader(body))
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, _ := typed.Details().(map[string]string)
	return details
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var dest payoutBody
	require.NoError(t, DecodeJSONBody(post(`{"amount":"6000.50","partner_id":"PTN1"}`), &dest))
	assert.Equal(t, "6000.5", dest.Amount.String())
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	var dest payoutBody
	err := DecodeJSONBody(post(`{"amount":"0","remarks":"far too long remark"}`), &dest)
	details := detailsOf(t, err)
	assert.Equal(t, "must be greater than zero", details["amount"])
	assert.Equal(t, "must be at most 10", details["remarks"])
	assert.Equal(t, "is required", details["partner_id"])
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"amount":"1","partner_id":"P","bank":"x"}`,
		"two objects":   `{"amount":"1","partner_id":"P"}{"amount":"2"}`,
		"blank":         "   ",
		"not json":      `amount=1`,
	}
	for name, body := range cases {
		var dest payoutBody
		err := DecodeJSONBody(post(body), &dest)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), name)
	}
}

func TestReadBodyEnforcesLimit(t *testing.T) {
	_, err := ReadBody(post(`{"event":"payment.captured"}`), 8)
	require.Error(t, err)
	assert.Equal(t, "request body too large", pkgerrors.As(err).Message())

	body, err := ReadBody(post(`{"a":1}`), 64)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(body))
}

func TestPathParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/x", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("bookingId", "  BKG000042 ")
	rc.URLParams.Add("partnerId", " ")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	id, err := PathParam(req, "bookingId")
	require.NoError(t, err)
	assert.Equal(t, "BKG000042", id)

	_, err = PathParam(req, "partnerId")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?refund=true&bad=maybe", nil)
	v, err := ParseQueryBool(req, "refund", false)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = ParseQueryBool(req, "missing", true)
	require.NoError(t, err)
	assert.True(t, v)

	_, err = ParseQueryBool(req, "bad", false)
	assert.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "héllo", SanitizeString("  héllo wörld ", 5))
	assert.Equal(t, "abc", SanitizeString(" abc ", 0))
}
