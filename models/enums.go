package models

import (
	"errors"
	"strings"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "Pending"
	JobStatusInProgress JobStatus = "In Progress"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusCancelled  JobStatus = "Cancelled"
)

// JobStatusFilterAll is the wildcard accepted by the list endpoint.
const JobStatusFilterAll = "All"

func ParseJobStatus(s string) (JobStatus, error) {
	switch s {
	case "Pending":
		return JobStatusPending, nil
	case "In Progress":
		return JobStatusInProgress, nil
	case "Completed":
		return JobStatusCompleted, nil
	case "Cancelled":
		return JobStatusCancelled, nil
	}
	return "", errors.New("invalid job status")
}

// NormalizeStatusFilter converts a display status into the enum-style form
// the list endpoint expects ("In Progress" -> "IN_PROGRESS"). "All" and the
// empty string pass through as the wildcard.
func NormalizeStatusFilter(s string) string {
	if s == "" || s == JobStatusFilterAll {
		return JobStatusFilterAll
	}
	return strings.ReplaceAll(strings.ToUpper(s), " ", "_")
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Defaults used when auto-provisioning products for scanned line items.
const (
	ProductCategoryReceiptItem = "Receipt Item"
	ProductCategoryBarcodeScan = "Barcode Scan"
	ProductSupplierUnknown     = "Unknown"
)
