package services

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHMACSigner(t *testing.T) {
	_, err := NewHMACSigner("not-hex")
	assert.Error(t, err)

	_, err = NewHMACSigner("")
	assert.Error(t, err)

	signer, err := NewHMACSigner(testHMACKey)
	require.NoError(t, err)

	key, _ := hex.DecodeString(testHMACKey)
	mac := hmac.New(sha512.New, key)
	mac.Write([]byte("PBX_SITE=1&PBX_RANG=2"))
	want := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	got := signer.Sign("PBX_SITE=1&PBX_RANG=2")
	assert.Equal(t, want, got)
	assert.Len(t, got, 128)
	assert.Equal(t, strings.ToUpper(got), got)
}

func TestPaymentRequest_KeepsOrder(t *testing.T) {
	req := PaymentRequest{
		{Key: "PBX_SITE", Value: "1999888"},
		{Key: "PBX_TOTAL", Value: "2010"},
		{Key: "PBX_CMD", Value: "7"},
	}

	assert.Equal(t, "PBX_SITE=1999888&PBX_TOTAL=2010&PBX_CMD=7", req.Canonical())
	assert.Equal(t, "2010", req.Get("PBX_TOTAL"))
	assert.Equal(t, "", req.Get("PBX_HMAC"))

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Equal(t, `{"PBX_SITE":"1999888","PBX_TOTAL":"2010","PBX_CMD":"7"}`, string(data))

	data, err = json.Marshal(struct {
		Request PaymentRequest `json:"et_request"`
	}{})
	require.NoError(t, err)
	assert.Equal(t, `{"et_request":null}`, string(data))
}

func TestParsePublicKey(t *testing.T) {
	key := testGatewayKey(t)

	pkix, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	parsed, err := ParsePublicKey(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pkix}))
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(parsed))

	pkcs1 := x509.MarshalPKCS1PublicKey(&key.PublicKey)
	parsed, err = ParsePublicKey(pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: pkcs1}))
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(parsed))

	_, err = ParsePublicKey([]byte("garbage"))
	assert.Error(t, err)
}

func TestCallbackVerifier_Verify(t *testing.T) {
	key := testGatewayKey(t)
	verifier := NewCallbackVerifier(&key.PublicKey)

	valid := signCallback(t, key, "Amount=2010", "BasketID=1", "Auto=XXXXXX", "Error=00000")

	t.Run("valid signature", func(t *testing.T) {
		assert.NoError(t, verifier.Verify(valid))
	})

	t.Run("tampered amount", func(t *testing.T) {
		tampered := strings.Replace(valid, "Amount=2010", "Amount=1", 1)
		assert.ErrorIs(t, verifier.Verify(tampered), ErrInvalidSignature)
	})

	t.Run("reordered pairs", func(t *testing.T) {
		sig := valid[strings.Index(valid, "&Sig="):]
		reordered := "BasketID=1&Amount=2010&Auto=XXXXXX&Error=00000" + sig
		assert.ErrorIs(t, verifier.Verify(reordered), ErrInvalidSignature)
	})

	t.Run("missing signature", func(t *testing.T) {
		assert.ErrorIs(t, verifier.Verify("Amount=2010&BasketID=1"), ErrMissingSignature)
		assert.ErrorIs(t, verifier.Verify("Amount=2010&Sig="), ErrMissingSignature)
	})

	t.Run("signature not base64", func(t *testing.T) {
		assert.ErrorIs(t, verifier.Verify("Amount=2010&Sig=%%%"), ErrInvalidSignature)
		assert.ErrorIs(t, verifier.Verify("Amount=2010&Sig=***"), ErrInvalidSignature)
	})
}
