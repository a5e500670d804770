package llm_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"agentcomm.app/relay/common/llm"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type scriptedClient struct {
	calls   atomic.Int32
	replies []func(ctx context.Context) (string, error)
}

func (c *scriptedClient) Chat(ctx context.Context, _ []llm.Message, _ string, _ ...llm.ChatOption) (string, error) {
	n := int(c.calls.Add(1)) - 1
	if n >= len(c.replies) {
		n = len(c.replies) - 1
	}
	return c.replies[n](ctx)
}

func (c *scriptedClient) Model() string { return "scripted" }

func reply(s string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return s, nil }
}

func fail(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", err }
}

var _ = Describe("New", func() {
	It("returns an unavailable client without an API key", func() {
		client, err := llm.New(llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).NotTo(HaveOccurred())

		_, err = client.Chat(context.Background(), llm.UserMessage("hi"), "")
		Expect(err).To(MatchError(llm.ErrProviderUnavailable))
	})

	It("rejects unknown providers", func() {
		_, err := llm.New(llm.Config{Provider: "mistral", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	It("uses the configured model name", func() {
		client, err := llm.New(llm.Config{Provider: llm.ProviderAnthropic, APIKey: "k", Model: "claude-test"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("claude-test"))
	})
})

var _ = Describe("IsRetryable", func() {
	ctx := context.Background()

	DescribeTable("classifies provider errors",
		func(err error, expected bool) {
			Expect(llm.IsRetryable(ctx, err)).To(Equal(expected))
		},
		Entry("nil", nil, false),
		Entry("unavailable", llm.ErrProviderUnavailable, false),
		Entry("deadline", context.DeadlineExceeded, false),
		Entry("rate limited", &llm.ProviderError{Provider: "openai", StatusCode: http.StatusTooManyRequests, Retryable: true, Err: errors.New("slow down")}, true),
		Entry("server error", &llm.ProviderError{Provider: "openai", StatusCode: 503, Retryable: true, Err: errors.New("down")}, true),
		Entry("auth error", &llm.ProviderError{Provider: "openai", StatusCode: 401, Retryable: false, Err: errors.New("bad key")}, false),
		Entry("unknown network error", errors.New("connection reset"), true),
	)
})

var _ = Describe("WithResilience", func() {
	It("retries retryable failures up to the attempt limit", func() {
		inner := &scriptedClient{replies: []func(context.Context) (string, error){
			fail(&llm.ProviderError{Provider: "test", StatusCode: 500, Retryable: true, Err: errors.New("boom")}),
			reply("ok"),
		}}
		client := llm.WithResilience(inner, time.Second, 2)

		text, err := client.Chat(context.Background(), llm.UserMessage("hi"), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("ok"))
		Expect(inner.calls.Load()).To(Equal(int32(2)))
	})

	It("does not retry non-retryable failures", func() {
		inner := &scriptedClient{replies: []func(context.Context) (string, error){
			fail(&llm.ProviderError{Provider: "test", StatusCode: 400, Err: errors.New("bad request")}),
		}}
		client := llm.WithResilience(inner, time.Second, 3)

		_, err := client.Chat(context.Background(), llm.UserMessage("hi"), "")
		var provErr *llm.ProviderError
		Expect(errors.As(err, &provErr)).To(BeTrue())
		Expect(provErr.StatusCode).To(Equal(400))
		Expect(inner.calls.Load()).To(Equal(int32(1)))
	})

	It("retries an attempt that hits its own timeout", func() {
		inner := &scriptedClient{replies: []func(context.Context) (string, error){
			func(ctx context.Context) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
			reply("ok"),
		}}
		client := llm.WithResilience(inner, 20*time.Millisecond, 3)

		text, err := client.Chat(context.Background(), llm.UserMessage("hi"), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("ok"))
		Expect(inner.calls.Load()).To(Equal(int32(2)))
	})

	It("stops when the caller's deadline expires", func() {
		inner := &scriptedClient{replies: []func(context.Context) (string, error){
			func(ctx context.Context) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
		}}
		client := llm.WithResilience(inner, time.Second, 3)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Chat(ctx, llm.UserMessage("hi"), "")
		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(inner.calls.Load()).To(Equal(int32(1)))
	})
})

var _ = Describe("GenerateSchema", func() {
	type sample struct {
		Intent string `json:"intent" jsonschema:"enum=request,enum=general"`
	}

	It("produces an inline object schema", func() {
		schema := llm.GenerateSchema[sample]()
		Expect(schema).NotTo(BeNil())
	})
})
