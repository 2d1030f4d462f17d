package monitor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/artifacts"
	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/expiry"
	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/notifications"
	"github.com/WatchBeam/clock"
)

const pushCertPath = "deviceManagement/applePushNotificationCertificate"
const depTokenPath = "deviceManagement/depOnboardingSettings"
const vppTokenPath = "deviceAppManagement/vppTokens"

const isoLayout = "2006-01-02T15:04:05Z07:00"
const tokenLayout = "01/02/2006 15:04:05"

type fakeFetcher struct {
	documents map[string]map[string]interface{}
	errs      map[string]error
	requested []string
}

func (f *fakeFetcher) Get(resourcePath string) (map[string]interface{}, error) {
	f.requested = append(f.requested, resourcePath)
	if err, haveErr := f.errs[resourcePath]; haveErr {
		return nil, err
	}
	return f.documents[resourcePath], nil
}

type fakeSender struct {
	sent []notifications.Email
	err  error
}

func (f *fakeSender) Send(mail notifications.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, mail)
	return nil
}

func testConfig() Config {
	return Config{
		ThresholdDays: 14,
		MailFrom:      "monitor@example.com",
		MailTo:        "admins@example.com",
		ClientName:    "Test Client",
	}
}

func pushCertDocument(expiresAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"expirationDateTime": expiresAt.Format(isoLayout),
	}
}

func depTokenDocument(expiresAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"value": []interface{}{
			map[string]interface{}{"tokenExpirationDateTime": expiresAt.Format(tokenLayout)},
		},
	}
}

func emptyCollection() map[string]interface{} {
	return map[string]interface{}{"value": []interface{}{}}
}

func TestRunExpiredArtifactNotifies(t *testing.T) {
	mockClock := clock.NewMockClock()
	now := mockClock.Now()

	client := &fakeFetcher{documents: map[string]map[string]interface{}{
		pushCertPath: pushCertDocument(now.Add(-24 * time.Hour)), //expired yesterday
		depTokenPath: emptyCollection(),
		vppTokenPath: emptyCollection(),
	}}
	sender := &fakeSender{}

	results := Run(client, sender, mockClock, testConfig())

	if len(results) != 3 {
		t.Errorf("Run should evaluate all three artifacts, got %d results", len(results))
		t.FailNow()
	}
	if results[0].Verdict != expiry.Expired {
		t.Errorf("push certificate should be expired, got %s", results[0].Verdict)
	}
	if !results[0].Notified {
		t.Error("an expired artifact should produce a notification")
	}

	if len(sender.sent) != 1 {
		t.Errorf("expected exactly one notification, got %d", len(sender.sent))
		t.FailNow()
	}
	if !strings.Contains(sender.sent[0].Subject, "has expired") {
		t.Errorf("expired notification has wrong subject: '%s'", sender.sent[0].Subject)
	}
}

func TestRunNearExpiryNotifiesWithDayCount(t *testing.T) {
	mockClock := clock.NewMockClock()
	now := mockClock.Now()

	client := &fakeFetcher{documents: map[string]map[string]interface{}{
		pushCertPath: pushCertDocument(now.Add(10*24*time.Hour + time.Hour)), //10 days out
		depTokenPath: emptyCollection(),
		vppTokenPath: emptyCollection(),
	}}
	sender := &fakeSender{}

	results := Run(client, sender, mockClock, testConfig())

	if results[0].Verdict != expiry.NearExpiry {
		t.Errorf("push certificate should be near expiry, got %s", results[0].Verdict)
	}
	if len(sender.sent) != 1 {
		t.Errorf("expected exactly one notification, got %d", len(sender.sent))
		t.FailNow()
	}
	if !strings.Contains(sender.sent[0].Body, "expires in 10 days") {
		t.Errorf("near-expiry notification has wrong body: '%s'", sender.sent[0].Body)
	}
}

func TestRunHealthyArtifactSendsNothing(t *testing.T) {
	mockClock := clock.NewMockClock()
	now := mockClock.Now()

	client := &fakeFetcher{documents: map[string]map[string]interface{}{
		pushCertPath: pushCertDocument(now.Add(30*24*time.Hour + time.Hour)), //30 days out
		depTokenPath: emptyCollection(),
		vppTokenPath: emptyCollection(),
	}}
	sender := &fakeSender{}

	results := Run(client, sender, mockClock, testConfig())

	if results[0].Verdict != expiry.Healthy {
		t.Errorf("push certificate should be healthy, got %s", results[0].Verdict)
	}
	if len(sender.sent) != 0 {
		t.Errorf("a healthy artifact must not produce a notification, got %d", len(sender.sent))
	}
}

func TestRunEmptyResourceDoesNotBlockOthers(t *testing.T) {
	mockClock := clock.NewMockClock()
	now := mockClock.Now()

	//no push certificate at all, but an expired DEP token
	client := &fakeFetcher{documents: map[string]map[string]interface{}{
		depTokenPath: depTokenDocument(now.Add(-48 * time.Hour)),
		vppTokenPath: emptyCollection(),
	}}
	sender := &fakeSender{}

	results := Run(client, sender, mockClock, testConfig())

	if len(client.requested) != 3 {
		t.Errorf("all three artifacts should be fetched, got %d fetches", len(client.requested))
	}
	if results[0].Found {
		t.Error("the absent push certificate should be recorded as not found")
	}
	if results[0].Error != nil {
		t.Error("an absent resource is not an error, got: ", results[0].Error)
	}
	if results[1].Verdict != expiry.Expired || !results[1].Notified {
		t.Error("the expired DEP token should still be evaluated and notified")
	}
}

func TestRunIsolatesPerArtifactFailures(t *testing.T) {
	mockClock := clock.NewMockClock()
	now := mockClock.Now()

	//the DEP token record is corrupt; the VPP token is near expiry
	client := &fakeFetcher{
		documents: map[string]map[string]interface{}{
			pushCertPath: emptyCollection(),
			depTokenPath: {
				"value": []interface{}{
					map[string]interface{}{"tokenExpirationDateTime": "garbage"},
				},
			},
			vppTokenPath: {
				"value": []interface{}{
					map[string]interface{}{"ExpirationDateTime": now.Add(5*24*time.Hour + time.Hour).Format(tokenLayout)},
				},
			},
		},
	}
	sender := &fakeSender{}

	results := Run(client, sender, mockClock, testConfig())

	if results[1].Error == nil {
		t.Error("the corrupt DEP token should be recorded as an error")
	}
	if results[1].Notified {
		t.Error("a failed evaluation must not notify")
	}
	if results[2].Verdict != expiry.NearExpiry || !results[2].Notified {
		t.Error("the VPP token should still be evaluated and notified after the DEP failure")
	}
}

func TestRunFetchFailureDoesNotAbort(t *testing.T) {
	mockClock := clock.NewMockClock()

	client := &fakeFetcher{
		documents: map[string]map[string]interface{}{
			depTokenPath: emptyCollection(),
			vppTokenPath: emptyCollection(),
		},
		errs: map[string]error{
			pushCertPath: errors.New("connection reset"),
		},
	}
	sender := &fakeSender{}

	results := Run(client, sender, mockClock, testConfig())

	if results[0].Error == nil {
		t.Error("the push certificate fetch failure should be recorded")
	}
	if len(client.requested) != 3 {
		t.Errorf("the remaining artifacts should still be fetched, got %d fetches", len(client.requested))
	}
}

func TestRunSendFailureIsOnlyAWarning(t *testing.T) {
	mockClock := clock.NewMockClock()
	now := mockClock.Now()

	client := &fakeFetcher{documents: map[string]map[string]interface{}{
		pushCertPath: pushCertDocument(now.Add(-24 * time.Hour)),
		depTokenPath: depTokenDocument(now.Add(-24 * time.Hour)),
		vppTokenPath: emptyCollection(),
	}}
	sender := &fakeSender{err: errors.New("smtp unreachable")}

	results := Run(client, sender, mockClock, testConfig())

	if results[0].Notified || results[1].Notified {
		t.Error("a failed send must not be recorded as notified")
	}
	if len(client.requested) != 3 {
		t.Errorf("a failed send must not stop the remaining evaluations, got %d fetches", len(client.requested))
	}
}

func TestRunNoRecipientSuppressesNotifications(t *testing.T) {
	mockClock := clock.NewMockClock()
	now := mockClock.Now()

	client := &fakeFetcher{documents: map[string]map[string]interface{}{
		pushCertPath: pushCertDocument(now.Add(-24 * time.Hour)),
		depTokenPath: emptyCollection(),
		vppTokenPath: emptyCollection(),
	}}
	sender := &fakeSender{}

	cfg := testConfig()
	cfg.MailTo = ""
	results := Run(client, sender, mockClock, cfg)

	if len(sender.sent) != 0 {
		t.Error("no notification should be attempted without a recipient")
	}
	if results[0].Verdict != expiry.Expired {
		t.Error("the artifact should still be classified")
	}
}

func TestTrackedArtifactOrder(t *testing.T) {
	expected := []artifacts.Kind{artifacts.PushCertificate, artifacts.EnrollmentToken, artifacts.PurchaseToken}
	if len(artifacts.Tracked) != len(expected) {
		t.Errorf("expected %d tracked artifacts, got %d", len(expected), len(artifacts.Tracked))
		t.FailNow()
	}
	for i, kind := range expected {
		if artifacts.Tracked[i].Kind != kind {
			t.Errorf("tracked artifact %d should be %s, got %s", i, kind, artifacts.Tracked[i].Kind)
		}
	}
}
