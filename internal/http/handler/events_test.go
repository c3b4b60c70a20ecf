package handler_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"threadscribe.app/bot/internal/http/handler"
	"threadscribe.app/bot/internal/queue"
)

const (
	testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"
	testBotUserID     = "UBOT001"
)

// mockProducer implements queue.Producer.
type mockProducer struct {
	enqueueErr error
	enqueued   []queue.MentionMessage
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.MentionMessage) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, msg)
	return nil
}

func (m *mockProducer) Close() error { return nil }

func signedRequest(body string, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/slack/events", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":" + body))
	signature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", signature)
	return req
}

var _ = Describe("EventsHandler", func() {
	var (
		producer *mockProducer
		router   *gin.Engine
		recorder *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		producer = &mockProducer{}
		eventsHandler := handler.NewEventsHandler(producer, testSigningSecret, testBotUserID)

		router = gin.New()
		router.POST("/slack/events", eventsHandler.HandleEvent)

		recorder = httptest.NewRecorder()
	})

	Context("signature verification", func() {
		It("rejects requests without signature headers", func() {
			req := httptest.NewRequest(http.MethodPost, "/slack/events", bytes.NewBufferString(`{}`))

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
			Expect(producer.enqueued).To(BeEmpty())
		})

		It("rejects requests signed with the wrong secret", func() {
			req := signedRequest(`{"type":"url_verification","challenge":"abc"}`, "wrong-secret")

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("URL verification", func() {
		It("echoes the challenge", func() {
			req := signedRequest(`{"type":"url_verification","challenge":"abc123"}`, testSigningSecret)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(recorder.Body.String()).To(Equal("abc123"))
		})
	})

	Context("app mention callback", func() {
		mentionBody := `{
			"type": "event_callback",
			"event": {
				"type": "app_mention",
				"user": "U123",
				"text": "<@UBOT001> notion",
				"ts": "1700000000.000500",
				"thread_ts": "1700000000.000100",
				"channel": "C001"
			}
		}`

		It("enqueues the mention and acks", func() {
			req := signedRequest(mentionBody, testSigningSecret)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(producer.enqueued).To(HaveLen(1))

			msg := producer.enqueued[0]
			Expect(msg.RequestID).NotTo(BeZero())
			Expect(msg.ChannelID).To(Equal("C001"))
			Expect(msg.ThreadTS).To(Equal("1700000000.000100"))
			Expect(msg.EventTS).To(Equal("1700000000.000500"))
			Expect(msg.UserID).To(Equal("U123"))
			Expect(msg.Text).To(Equal("<@UBOT001> notion"))
			Expect(msg.ReceivedAt).NotTo(BeZero())
		})

		It("enqueues unthreaded mentions with an empty thread ts", func() {
			body := `{
				"type": "event_callback",
				"event": {
					"type": "app_mention",
					"user": "U123",
					"text": "<@UBOT001> hello",
					"ts": "1700000000.000500",
					"channel": "C001"
				}
			}`
			req := signedRequest(body, testSigningSecret)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(producer.enqueued).To(HaveLen(1))
			Expect(producer.enqueued[0].ThreadTS).To(BeEmpty())
		})

		It("ignores the bot's own mentions", func() {
			body := `{
				"type": "event_callback",
				"event": {
					"type": "app_mention",
					"user": "UBOT001",
					"text": "<@UBOT001>",
					"ts": "1700000000.000500",
					"channel": "C001"
				}
			}`
			req := signedRequest(body, testSigningSecret)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(producer.enqueued).To(BeEmpty())
		})

		It("returns 500 when the queue is unavailable so Slack retries", func() {
			producer.enqueueErr = errors.New("xadd: connection refused")
			req := signedRequest(mentionBody, testSigningSecret)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Context("other events", func() {
		It("acks callback events it does not handle", func() {
			body := `{
				"type": "event_callback",
				"event": {
					"type": "reaction_added",
					"user": "U123"
				}
			}`
			req := signedRequest(body, testSigningSecret)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(producer.enqueued).To(BeEmpty())
		})
	})
})
