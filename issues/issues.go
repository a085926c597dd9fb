// Package issues defines the typed mismatch records produced by detailed
// rig validation. An Issue is diagnostic data, not an engine failure:
// validators always complete and return a List, and an empty List means the
// two sources agree.
package issues

import (
	"fmt"
	"strings"
)

// Code identifies a kind of rig mismatch.
type Code string

const (
	// JointCountMismatch indicates the two skeletons have different joint counts.
	JointCountMismatch Code = "joint-count-mismatch"
	// JointNameMismatch indicates a joint name differs at one position.
	JointNameMismatch Code = "joint-name-mismatch"
	// ParentIndexMismatch indicates a joint parent index differs at one position.
	ParentIndexMismatch Code = "parent-index-mismatch"
	// BindTransformMismatch indicates a joint bind transform differs beyond tolerance.
	BindTransformMismatch Code = "bind-transform-mismatch"
	// RestTransformMismatch indicates a joint rest transform differs beyond tolerance.
	RestTransformMismatch Code = "rest-transform-mismatch"
	// WeightCountMismatch indicates the joint-index or weight sequences have different lengths.
	WeightCountMismatch Code = "weight-count-mismatch"
	// JointIndexMismatch indicates a skin sample references different joints.
	JointIndexMismatch Code = "joint-index-mismatch"
	// WeightValueMismatch indicates a skin weight differs beyond tolerance.
	WeightValueMismatch Code = "weight-value-mismatch"
	// GeomBindTransformMismatch indicates the geometry bind transforms differ beyond tolerance.
	GeomBindTransformMismatch Code = "geom-bind-transform-mismatch"
)

// NoIndex marks an issue that is not tied to a joint or sample position,
// such as a count mismatch or a truncation summary.
const NoIndex = -1

// Issue is one detected divergence between a file-sourced and a
// scene-sourced rig structure. Issues are immutable after creation.
type Issue struct {
	Code        Code
	Description string
	Index       int
}

// New builds an issue that is not localized to a position.
func New(code Code, description string) Issue {
	return Issue{Code: code, Description: description, Index: NoIndex}
}

// Newf formats a description and builds an unlocalized issue.
func Newf(code Code, format string, args ...any) Issue {
	return New(code, fmt.Sprintf(format, args...))
}

// NewAt builds an issue localized to a joint or sample position.
func NewAt(code Code, index int, description string) Issue {
	return Issue{Code: code, Description: description, Index: index}
}

// NewAtf formats a description and builds a localized issue.
func NewAtf(code Code, index int, format string, args ...any) Issue {
	return NewAt(code, index, fmt.Sprintf(format, args...))
}

// Localized reports whether the issue points at a specific position.
func (i Issue) Localized() bool {
	return i.Index != NoIndex
}

// String formats the issue for display with its code and description.
func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Code, i.Description)
}

// List is an ordered sequence of issues from one detailed validation call.
// It is append-only during the call, never reordered, never deduplicated.
type List []Issue

// String returns a compact summary of the list.
func (l List) String() string {
	switch len(l) {
	case 0:
		return "no issues"
	case 1:
		return l[0].String()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].String(), len(l)-1)
	}
}

// Count returns how many issues carry the given code.
func (l List) Count(code Code) int {
	n := 0
	for _, issue := range l {
		if issue.Code == code {
			n++
		}
	}
	return n
}

// Format renders every issue on its own line, for host output.
func (l List) Format() string {
	if len(l) == 0 {
		return ""
	}
	var b strings.Builder
	for i, issue := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(issue.String())
	}
	return b.String()
}
