package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Audit actions.
const (
	AuditActionLogin              = "LOGIN"
	AuditActionLogout             = "LOGOUT"
	AuditActionTokenRefresh       = "TOKEN_REFRESH"
	AuditActionTokenReuse         = "TOKEN_REUSE"
	AuditActionCertificateSubmit  = "CERTIFICATE_SUBMIT"
	AuditActionCertificateApprove = "CERTIFICATE_APPROVE"
	AuditActionCertificateReject  = "CERTIFICATE_REJECT"
	AuditActionCertificateDelete  = "CERTIFICATE_DELETE"
	AuditActionUploadWindowChange = "UPLOAD_WINDOW_CHANGE"
	AuditActionAcademicYearStart  = "ACADEMIC_YEAR_START"
	AuditActionStudentClearance   = "STUDENT_CLEARANCE"
	AuditActionReportRequest      = "REPORT_REQUEST"
)

// AuditLog is one row of the audit trail. NewValues holds a JSON snapshot of
// what the action produced.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  RawJSON   `db:"old_values" json:"oldValues,omitempty"`
	NewValues  RawJSON   `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// RawJSON is a jsonb column rendered inline instead of base64.
type RawJSON []byte

// Value implements driver.Valuer.
func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []byte(r), nil
}

// Scan implements sql.Scanner.
func (r *RawJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append((*r)[:0], v...)
	case string:
		*r = RawJSON(v)
	default:
		return fmt.Errorf("unsupported audit payload type %T", src)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}
