package services

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"ae-portal/internal/config"
	"ae-portal/internal/fixtures"
	"ae-portal/internal/metrics"
	"ae-portal/internal/repositories"
	"ae-portal/internal/testutil"
)

const testHMACKey = "0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF"

var (
	gatewayKeyOnce sync.Once
	gatewayKey     *rsa.PrivateKey
)

// testGatewayKey returns an RSA key shared by the whole package
func testGatewayKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	gatewayKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		gatewayKey = key
	})
	return gatewayKey
}

// signCallback builds a callback query string the way the gateway does:
// the given pairs in order, followed by the URL-encoded base64 signature.
func signCallback(t *testing.T, key *rsa.PrivateKey, pairs ...string) string {
	t.Helper()
	message := strings.Join(pairs, "&")
	digest := sha1.Sum([]byte(message))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA1, digest[:])
	require.NoError(t, err)
	return message + "&Sig=" + url.QueryEscape(base64.StdEncoding.EncodeToString(sig))
}

type testEnv struct {
	store    *repositories.Store
	data     *fixtures.Eboutic
	metrics  *metrics.Metrics
	catalog  *CatalogService
	baskets  *BasketService
	checkout *CheckoutService
	engine   *SettlementEngine
	accounts *AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, data := testutil.NewStore(t)
	m := metrics.New(prometheus.NewRegistry())

	signer, err := NewHMACSigner(testHMACKey)
	require.NoError(t, err)

	cfg := config.EbouticConfig{
		PBXSite:          "1999888",
		PBXRang:          "32",
		PBXIdentifiant:   "2",
		Currency:         978,
		SubscriptionType: data.SubscriptionType.ID,
		RefillingType:    data.RefillingType.ID,
	}

	catalog := NewCatalogService(store, nil, NewSalesGate())
	baskets := NewBasketService(store, m)
	verifier := NewCallbackVerifier(&testGatewayKey(t).PublicKey)

	return &testEnv{
		store:    store,
		data:     data,
		metrics:  m,
		catalog:  catalog,
		baskets:  baskets,
		checkout: NewCheckoutService(store, catalog, baskets, signer, cfg, m),
		engine:   NewSettlementEngine(store, verifier, data.RefillingType.ID, m),
		accounts: NewAccountService(store),
	}
}

func countRows(t *testing.T, env *testEnv, query string, args ...any) int {
	t.Helper()
	var count int
	require.NoError(t, env.store.DB().QueryRow(query, args...).Scan(&count))
	return count
}
