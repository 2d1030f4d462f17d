package artifacts

// Kind identifies one of the tracked Apple trust artifacts.
type Kind int

const (
	PushCertificate Kind = iota
	EnrollmentToken
	PurchaseToken
)

// Artifact carries everything that varies between the tracked artifact types:
// where to fetch the record, where the expiry timestamp lives inside it, how the
// timestamp is encoded on the wire and how to describe the artifact to a human.
// Adding a fourth artifact type is a new entry in Tracked, not new control flow.
type Artifact struct {
	Kind             Kind
	DisplayName      string
	DocumentationURL string

	//resource path relative to the management API base URL
	ResourcePath string
	//name of the field holding the expiry timestamp
	ExpiryField string
	//whether the record sits inside the collection wrapper field "value"
	Wrapped bool
	//acceptable time.Parse layouts for the expiry field, tried in order
	DateLayouts []string
}

func (k Kind) String() string {
	switch k {
	case PushCertificate:
		return "push-certificate"
	case EnrollmentToken:
		return "enrollment-token"
	case PurchaseToken:
		return "purchase-token"
	default:
		return "unknown"
	}
}

// The DEP and VPP tokens encode their expiry month-first.  The layout must stay
// explicit; auto-detection would misread day/month order.
const tokenDateLayout = "01/02/2006 15:04:05"

var isoDateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// Tracked is the closed set of artifacts evaluated on every run, in evaluation
// order.
var Tracked = []Artifact{
	{
		Kind:             PushCertificate,
		DisplayName:      "Apple MDM Push certificate",
		DocumentationURL: "https://learn.microsoft.com/en-us/mem/intune/enrollment/apple-mdm-push-certificate-get",
		ResourcePath:     "deviceManagement/applePushNotificationCertificate",
		ExpiryField:      "expirationDateTime",
		Wrapped:          false,
		DateLayouts:      isoDateLayouts,
	},
	{
		Kind:         EnrollmentToken,
		DisplayName:  "Apple DEP token",
		ResourcePath: "deviceManagement/depOnboardingSettings",
		ExpiryField:  "tokenExpirationDateTime",
		Wrapped:      true,
		DateLayouts:  []string{tokenDateLayout},
	},
	{
		Kind:         PurchaseToken,
		DisplayName:  "Apple VPP token",
		ResourcePath: "deviceAppManagement/vppTokens",
		ExpiryField:  "ExpirationDateTime",
		Wrapped:      true,
		DateLayouts:  []string{tokenDateLayout},
	},
}
