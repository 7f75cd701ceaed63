package models

import "strings"

// Role is the closed set of actor roles known to the platform.
type Role string

const (
	RoleStudent             Role = "student"
	RoleSupervisor          Role = "supervisor"
	RoleEvaluationCommittee Role = "evaluation_committee"
	RoleAdminCommittee      Role = "admin_committee"
)

// Capability names a single privileged operation an actor may perform.
type Capability string

const (
	CapSubmitDocument         Capability = "submission.create"
	CapMarkSubmissionFinal    Capability = "submission.mark_final"
	CapReviewSubmission       Capability = "submission.review"
	CapLockSubmission         Capability = "submission.lock"
	CapSubmitSupervisorMarks  Capability = "marks.supervisor"
	CapSubmitEvaluationMarks  Capability = "marks.evaluation"
	CapComputeResult          Capability = "result.compute"
	CapReleaseResult          Capability = "result.release"
	CapViewReleasedResult     Capability = "result.view_released"
	CapManageDocumentCatalog  Capability = "catalog.manage"
	CapManageDeadlines        Capability = "deadlines.manage"
	CapViewEvaluationSummary  Capability = "marks.view_summary"
	CapViewActivityLog        Capability = "activity.view"
	CapViewSubmissionLineage  Capability = "submission.view_lineage"
	CapTriggerDeadlineScan    Capability = "deadlines.scan"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleStudent: capSet(
		CapSubmitDocument,
		CapMarkSubmissionFinal,
		CapViewReleasedResult,
		CapViewSubmissionLineage,
	),
	RoleSupervisor: capSet(
		CapReviewSubmission,
		CapSubmitSupervisorMarks,
		CapViewEvaluationSummary,
		CapViewSubmissionLineage,
	),
	RoleEvaluationCommittee: capSet(
		CapLockSubmission,
		CapSubmitEvaluationMarks,
		CapComputeResult,
		CapReleaseResult,
		CapViewEvaluationSummary,
		CapViewSubmissionLineage,
	),
	RoleAdminCommittee: capSet(
		CapManageDocumentCatalog,
		CapManageDeadlines,
		CapTriggerDeadlineScan,
		CapViewActivityLog,
		CapViewEvaluationSummary,
	),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// ParseRole normalizes a raw role string into a known Role. Unknown values
// yield an empty role, which holds no capabilities.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent
	case RoleSupervisor:
		return RoleSupervisor
	case RoleEvaluationCommittee:
		return RoleEvaluationCommittee
	case RoleAdminCommittee:
		return RoleAdminCommittee
	default:
		return ""
	}
}

// Can reports whether the role holds the given capability.
func (r Role) Can(c Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}
