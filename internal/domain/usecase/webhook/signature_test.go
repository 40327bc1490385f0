package webhook

import "testing"

func TestVerifySignatureRoundTrip(t *testing.T) {
	body := []byte(`{"event":"charge.completed","data":{"tx_ref":"QR-1","id":"12345"}}`)
	secret := "whsec_test"

	sig := ComputeSignature(body, secret)
	if !VerifySignature(body, sig, secret) {
		t.Fatal("expected computed signature to verify")
	}
}

func TestVerifySignatureRejectsMutatedBody(t *testing.T) {
	body := []byte(`{"event":"charge.completed","data":{"tx_ref":"QR-1"}}`)
	secret := "whsec_test"
	sig := ComputeSignature(body, secret)

	mutated := make([]byte, len(body))
	copy(mutated, body)
	mutated[len(mutated)-2] ^= 0x01

	if VerifySignature(mutated, sig, secret) {
		t.Fatal("single-byte mutation must break verification")
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"event":"charge.completed"}`)
	sig := ComputeSignature(body, "whsec_right")

	if VerifySignature(body, sig, "whsec_wrong") {
		t.Fatal("signature from another secret must not verify")
	}
}

func TestVerifySignatureMissingInputs(t *testing.T) {
	body := []byte(`{}`)
	sig := ComputeSignature(body, "s")

	cases := []struct {
		name   string
		body   []byte
		header string
		secret string
	}{
		{"Empty body", nil, sig, "s"},
		{"Empty header", body, "", "s"},
		{"Empty secret", body, sig, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if VerifySignature(tc.body, tc.header, tc.secret) {
				t.Fatal("expected verification to fail")
			}
		})
	}
}
