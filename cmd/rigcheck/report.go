package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// runReport is the machine-readable record of one validation run.
type runReport struct {
	RunID       string         `json:"runId"`
	GeneratedAt time.Time      `json:"generatedAt"`
	RigFile     string         `json:"rigFile"`
	Snapshot    string         `json:"snapshot"`
	SkeletonRef string         `json:"skeletonRef,omitempty"`
	RootJoint   string         `json:"rootJoint"`
	Mesh        string         `json:"mesh,omitempty"`
	Detailed    bool           `json:"detailed"`
	Match       bool           `json:"match"`
	IssueCount  int            `json:"issueCount"`
	Targets     []reportTarget `json:"targets"`
}

type reportTarget struct {
	Target string        `json:"target"`
	Match  bool          `json:"match"`
	Issues []reportIssue `json:"issues,omitempty"`
}

// reportIssue flattens one validation issue. Index is -1 when the issue
// is not tied to a joint or sample position.
type reportIssue struct {
	Code        string `json:"code"`
	Index       int    `json:"index"`
	Description string `json:"description"`
}

type reportInputs struct {
	rigFile   string
	snapshot  string
	skelRef   string
	rootJoint string
	mesh      string
	detailed  bool
}

func writeReport(path string, in reportInputs, results []targetResult) error {
	rep := runReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		RigFile:     in.rigFile,
		Snapshot:    in.snapshot,
		SkeletonRef: in.skelRef,
		RootJoint:   in.rootJoint,
		Mesh:        in.mesh,
		Detailed:    in.detailed,
		Match:       true,
	}
	for _, r := range results {
		target := reportTarget{Target: r.name, Match: r.match}
		for _, issue := range r.issues {
			target.Issues = append(target.Issues, reportIssue{
				Code:        string(issue.Code),
				Index:       issue.Index,
				Description: issue.Description,
			})
		}
		if !r.match {
			rep.Match = false
		}
		rep.IssueCount += len(r.issues)
		rep.Targets = append(rep.Targets, target)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
