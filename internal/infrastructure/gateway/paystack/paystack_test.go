package paystack_test

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/gateway"
	"github.com/TechBursterOrg/homehero-sub003/internal/infrastructure/gateway/paystack"
)

const testSecret = "sk_test_secret"

func sign(payload []byte) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestClient_ParseWebhook(t *testing.T) {
	client := paystack.NewClient(testSecret, "", 5*time.Second, zap.NewNop())

	t.Run("charge success", func(t *testing.T) {
		payload := []byte(`{"event":"charge.success","data":{"status":"success","reference":"ref-1","amount":10000}}`)

		event, err := client.ParseWebhook(payload, sign(payload))
		require.NoError(t, err)

		assert.Equal(t, "charge.success", event.EventType)
		assert.Equal(t, gateway.StatusSuccess, event.Status)
		assert.Equal(t, "ref-1", event.Reference)
		assert.Equal(t, int64(10000), event.Amount)
	})

	t.Run("charge failed carries failure details", func(t *testing.T) {
		payload := []byte(`{"event":"charge.failed","data":{"status":"failed","reference":"ref-2","amount":10000,"gateway_response":"Insufficient funds"}}`)

		event, err := client.ParseWebhook(payload, sign(payload))
		require.NoError(t, err)

		assert.Equal(t, gateway.StatusFailed, event.Status)
		assert.Equal(t, "Insufficient funds", event.FailureMessage)
	})

	t.Run("invalid signature rejected", func(t *testing.T) {
		payload := []byte(`{"event":"charge.success","data":{"reference":"ref-3"}}`)

		_, err := client.ParseWebhook(payload, "deadbeef")
		require.Error(t, err)

		var gwErr *gateway.Error
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, "INVALID_SIGNATURE", gwErr.Code)
	})

	t.Run("tampered payload rejected", func(t *testing.T) {
		payload := []byte(`{"event":"charge.success","data":{"reference":"ref-4","amount":10000}}`)
		signature := sign(payload)
		tampered := []byte(`{"event":"charge.success","data":{"reference":"ref-4","amount":99999}}`)

		_, err := client.ParseWebhook(tampered, signature)
		require.Error(t, err)
	})
}
