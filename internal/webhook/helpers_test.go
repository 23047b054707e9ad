package webhook_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/gomega"

	"polar.sh/ghsync/internal/badge"
	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/store"
	"polar.sh/ghsync/internal/webhook"
)

type stubFetcher struct {
	repos         []model.Repository
	listCalls     []int64
	profileLogins []string
}

func (s *stubFetcher) ListInstallationRepositories(ctx context.Context, installationID int64) ([]model.Repository, error) {
	s.listCalls = append(s.listCalls, installationID)
	return s.repos, nil
}

func (s *stubFetcher) GetAccountProfile(ctx context.Context, installationID int64, login string, isPersonal bool) (model.AccountProfile, error) {
	s.profileLogins = append(s.profileLogins, login)
	return model.AccountProfile{Login: login}, nil
}

// recordingEmbedder records calls and mirrors the badge state into the
// issue store the way the GitHub embedder does.
type recordingEmbedder struct {
	issues   store.IssueStore
	embedded []badge.EmbedParams
	removed  []badge.EmbedParams
}

func (r *recordingEmbedder) Embed(ctx context.Context, p badge.EmbedParams) error {
	r.embedded = append(r.embedded, p)
	now := time.Now().UTC()
	_, err := r.issues.UpdateBadgeState(ctx, p.Issue.ID, &now, true)
	return err
}

func (r *recordingEmbedder) Remove(ctx context.Context, p badge.EmbedParams) error {
	r.removed = append(r.removed, p)
	_, err := r.issues.UpdateBadgeState(ctx, p.Issue.ID, p.Issue.PledgeBadgeEmbeddedAt, false)
	return err
}

var deliverySeq int64

// load builds a delivery from testdata/<name>.json.
func load(event, name string) *model.WebhookDelivery {
	payload, err := os.ReadFile(filepath.Join("testdata", name+".json"))
	Expect(err).NotTo(HaveOccurred())
	return deliveryFor(event, payload)
}

func deliveryFor(event string, payload []byte) *model.WebhookDelivery {
	env, err := webhook.Peek(payload)
	Expect(err).NotTo(HaveOccurred())

	deliverySeq++
	return &model.WebhookDelivery{
		ID:             deliverySeq,
		DeliveryID:     "delivery-" + event + "-" + env.Action,
		Event:          event,
		Action:         env.Action,
		InstallationID: env.InstallationID,
		Payload:        payload,
		CreatedAt:      time.Date(2022, 10, 2, 9, 0, 0, 0, time.UTC),
	}
}
