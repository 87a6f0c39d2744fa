package checks

type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusError Status = "ERROR"
)

// Kind tells a failure of the project under test apart from a failure of
// the harness itself.
type Kind string

const (
	KindCheck   Kind = "check"
	KindRender  Kind = "render"
	KindCleanup Kind = "cleanup"
	KindHarness Kind = "harness"
)

// BakeCheckID is reported when a configuration is baked without running checks.
const BakeCheckID = "bake"

type Result struct {
	CheckID string            `json:"check_id"`
	Config  string            `json:"config"`
	Axes    map[string]string `json:"axes,omitempty"`
	Status  Status            `json:"status"`
	Kind    Kind              `json:"kind,omitempty"`
	Message string            `json:"message,omitempty"`
}
