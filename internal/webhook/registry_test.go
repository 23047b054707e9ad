package webhook_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/webhook"
)

var _ = Describe("Registry", func() {
	It("registers every supported route", func() {
		registry := webhook.NewRegistry(webhook.NewHandlers(nil, nil, nil, nil))
		routes := registry.Routes()

		Expect(routes).To(ContainElements(
			webhook.Route{Event: "installation", Action: "created"},
			webhook.Route{Event: "installation_repositories", Action: "removed"},
			webhook.Route{Event: "issues", Action: "transferred"},
			webhook.Route{Event: "repository", Action: "privatized"},
		))
		for _, route := range routes {
			Expect(webhook.Supported(route.Event, route.Action)).To(BeTrue(), route.String())
		}
		Expect(routes[0]).To(Equal(webhook.Route{Event: "installation", Action: "created"}))
	})

	It("looks up registered handlers", func() {
		registry := webhook.NewEmptyRegistry()
		called := false
		registry.Register(webhook.Route{Event: "ping"}, func(ctx context.Context, d *model.WebhookDelivery, event any) error {
			called = true
			return nil
		})

		fn, ok := registry.Get(webhook.Route{Event: "ping"})
		Expect(ok).To(BeTrue())
		Expect(fn(context.Background(), &model.WebhookDelivery{}, nil)).To(Succeed())
		Expect(called).To(BeTrue())

		_, ok = registry.Get(webhook.Route{Event: "push"})
		Expect(ok).To(BeFalse())
	})

	It("does not support unsubscribed events", func() {
		Expect(webhook.Supported("push", "")).To(BeFalse())
		Expect(webhook.Supported("issues", "pinned")).To(BeFalse())
		Expect(webhook.Supported("issues", "labeled")).To(BeTrue())
	})
})

var _ = Describe("Peek", func() {
	It("reads the action and installation id", func() {
		env, err := webhook.Peek([]byte(`{"action":"opened","installation":{"id":30560232}}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Action).To(Equal("opened"))
		Expect(env.InstallationID).To(HaveValue(Equal(int64(30560232))))
	})

	It("leaves the installation nil when absent", func() {
		env, err := webhook.Peek([]byte(`{"zen":"Keep it logically awesome."}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Action).To(BeEmpty())
		Expect(env.InstallationID).To(BeNil())
	})

	It("rejects invalid JSON", func() {
		_, err := webhook.Peek([]byte(`{`))
		Expect(err).To(MatchError(webhook.ErrUnexpectedPayload))
	})
})
