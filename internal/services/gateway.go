package services

import (
	"bytes"
	"crypto"
	"crypto/hmac"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

var (
	ErrInvalidSignature = errors.New("invalid gateway signature")
	ErrMissingSignature = errors.New("missing gateway signature")
)

// Field is one key/value pair of a payment request.
type Field struct {
	Key   string
	Value string
}

// PaymentRequest is the ordered field set posted to the payment gateway.
// Field order is significant: the MAC is computed over it.
type PaymentRequest []Field

// Get returns the value of key, or "".
func (r PaymentRequest) Get(key string) string {
	for _, f := range r {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Canonical joins the fields as k=v pairs separated by &.
func (r PaymentRequest) Canonical() string {
	pairs := make([]string, len(r))
	for i, f := range r {
		pairs[i] = f.Key + "=" + f.Value
	}
	return strings.Join(pairs, "&")
}

// MarshalJSON encodes the request as a JSON object keeping field order.
func (r PaymentRequest) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// HMACSigner computes the request MAC shared with the gateway.
type HMACSigner struct {
	key []byte
}

// NewHMACSigner decodes the hex encoded pre-shared key
func NewHMACSigner(hexKey string) (*HMACSigner, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway HMAC key: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("gateway HMAC key is empty")
	}
	return &HMACSigner{key: key}, nil
}

// Sign returns the upper-case hex HMAC-SHA512 of message.
func (s *HMACSigner) Sign(message string) string {
	mac := hmac.New(sha512.New, s.key)
	mac.Write([]byte(message))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// CallbackVerifier checks the RSA signature the gateway appends to its
// callback query string.
type CallbackVerifier struct {
	key *rsa.PublicKey
}

func NewCallbackVerifier(key *rsa.PublicKey) *CallbackVerifier {
	return &CallbackVerifier{key: key}
}

// LoadPublicKey reads a PEM encoded RSA public key from disk
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway public key: %w", err)
	}
	return ParsePublicKey(data)
}

// ParsePublicKey accepts PKIX ("PUBLIC KEY") and PKCS#1 ("RSA PUBLIC KEY") PEM blocks.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found in gateway public key")
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse gateway public key: %w", err)
		}
		return key, nil
	default:
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse gateway public key: %w", err)
		}
		key, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("gateway public key is not an RSA key")
		}
		return key, nil
	}
}

// Verify checks the Sig parameter of a raw callback query. The signed
// message is the query with the Sig pair removed, the other pairs kept raw
// and in their original order.
func (v *CallbackVerifier) Verify(rawQuery string) error {
	var (
		signed []string
		sig    string
		found  bool
	)
	for _, pair := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(pair, "Sig=") {
			sig = strings.TrimPrefix(pair, "Sig=")
			found = true
			continue
		}
		signed = append(signed, pair)
	}
	if !found || sig == "" {
		return ErrMissingSignature
	}

	unescaped, err := url.PathUnescape(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	raw, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	digest := sha1.Sum([]byte(strings.Join(signed, "&")))
	if err := rsa.VerifyPKCS1v15(v.key, crypto.SHA1, digest[:], raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
