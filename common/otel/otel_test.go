package otel_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"polar.sh/ghsync/common/otel"
	"polar.sh/ghsync/core/config"
)

var _ = Describe("ParseHeaders", func() {
	It("splits comma separated pairs", func() {
		Expect(otel.ParseHeaders("authorization=Bearer abc, x-team = ghsync")).To(Equal(map[string]string{
			"authorization": "Bearer abc",
			"x-team":        "ghsync",
		}))
	})

	It("drops malformed pairs", func() {
		Expect(otel.ParseHeaders("novalue,=orphan,k=v")).To(Equal(map[string]string{"k": "v"}))
		Expect(otel.ParseHeaders("")).To(BeEmpty())
	})
})

var _ = Describe("Setup", func() {
	It("is a no-op without an endpoint", func() {
		telemetry, err := otel.Setup(context.Background(), config.OTelConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(telemetry).To(BeNil())
	})
})
