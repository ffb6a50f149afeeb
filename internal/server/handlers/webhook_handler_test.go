package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

type fakeMessaging struct {
	payloads []models.WebhookPayload
	err      error
}

func (f *fakeMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || token != "verify-me" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (f *fakeMessaging) HandleWebhook(_ context.Context, payload models.WebhookPayload) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

const webhookBody = `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{"messages":[{"from":"221770000000","id":"wamid.1","type":"text","text":{"body":"/today"}}]}}]}]}`

func newWebhookEngine(svc *fakeMessaging, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, secret, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	return r
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerify(t *testing.T) {
	engine := newWebhookEngine(&fakeMessaging{}, "")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=42", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookReceive(t *testing.T) {
	svc := &fakeMessaging{}
	engine := newWebhookEngine(svc, "")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(webhookBody)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.payloads, 1)
	assert.Equal(t, "/today", svc.payloads[0].Entry[0].Changes[0].Value.Messages[0].Text.Body)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = errors.New("reply failed")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(webhookBody)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhookSignature(t *testing.T) {
	svc := &fakeMessaging{}
	engine := newWebhookEngine(svc, "app-secret")

	for name, header := range map[string]string{
		"missing":    "",
		"wrong key":  sign("other-secret", webhookBody),
		"not hex":    "sha256=zz",
		"bad prefix": "sha1=abc",
	} {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(webhookBody))
		if header != "" {
			req.Header.Set(signatureHeader, header)
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
	assert.Empty(t, svc.payloads)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(webhookBody))
	req.Header.Set(signatureHeader, sign("app-secret", webhookBody))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, svc.payloads, 1)
}
