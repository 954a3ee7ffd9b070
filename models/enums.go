package models

import (
	"encoding/json"
	"fmt"
)

// AuditStatus represents the lifecycle status of a remote audit job
type AuditStatus string

const (
	AuditStatusQueued    AuditStatus = "queued"
	AuditStatusRunning   AuditStatus = "running"
	AuditStatusCompleted AuditStatus = "completed"
	AuditStatusFailed    AuditStatus = "failed"
)

// ParseAuditStatus converts a wire value into an AuditStatus.
// Unknown values are rejected.
func ParseAuditStatus(s string) (AuditStatus, error) {
	switch st := AuditStatus(s); st {
	case AuditStatusQueued, AuditStatusRunning, AuditStatusCompleted, AuditStatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown audit status %q", s)
}

// IsTerminal reports whether no further transitions can occur
func (s AuditStatus) IsTerminal() bool {
	return s == AuditStatusCompleted || s == AuditStatusFailed
}

// IsPending reports whether the job is still waiting or executing
func (s AuditStatus) IsPending() bool {
	return s == AuditStatusQueued || s == AuditStatusRunning
}

// UnmarshalJSON implements json.Unmarshaler
func (s *AuditStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("audit status: %w", err)
	}
	parsed, err := ParseAuditStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Bucket is a remediation time horizon
type Bucket string

const (
	BucketDoNow    Bucket = "do_now"
	BucketThisWeek Bucket = "this_week"
	BucketLater    Bucket = "later"
)

// Buckets lists every bucket in display order
var Buckets = []Bucket{BucketDoNow, BucketThisWeek, BucketLater}

// ParseBucket converts a wire value into a Bucket.
// Unknown values are rejected.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(s); b {
	case BucketDoNow, BucketThisWeek, BucketLater:
		return b, nil
	}
	return "", fmt.Errorf("unknown bucket %q", s)
}

// UnmarshalJSON implements json.Unmarshaler
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("bucket: %w", err)
	}
	parsed, err := ParseBucket(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Severity of a detected issue
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity converts a wire value into a Severity.
// Unknown values are rejected.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(s); sev {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("severity: %w", err)
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
